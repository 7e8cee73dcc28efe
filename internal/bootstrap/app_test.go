package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"lexiguard-backend/internal/history"
	"lexiguard-backend/internal/llm"
	"lexiguard-backend/internal/search"
	"lexiguard-backend/internal/shared/config"
	localstore "lexiguard-backend/internal/shared/storage/object/local"
)

func baseConfig(t *testing.T) config.Config {
	return config.Config{
		Env:            "dev",
		LLMProvider:    "none",
		LLMModel:       "test-model",
		SearchProvider: "none",
		HistoryStore:   "memory",
		ArchiveStore:   "none",
		ModelTimeout:   time.Second,
		SearchTimeout:  time.Second,
		StoreTimeout:   time.Second,
		RAGConcurrency: 1,
	}
}

func TestBuildMinimal(t *testing.T) {
	app, err := Build(context.Background(), baseConfig(t))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer app.Close()

	if app.Router == nil || app.Pipeline == nil || app.Chat == nil {
		t.Fatalf("expected router and stages to be wired")
	}
	if app.Archive != nil {
		t.Fatalf("archive should be disabled")
	}
	if _, ok := app.Search.(search.None); !ok {
		t.Fatalf("expected search.None, got %T", app.Search)
	}
	if _, err := app.Model.Generate(context.Background(), llm.Request{}); !errors.Is(err, llm.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured from provider none, got %v", err)
	}

	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", resp.Code)
	}
}

func TestBuildSQLiteHistoryAndLocalArchive(t *testing.T) {
	cfg := baseConfig(t)
	dir := t.TempDir()
	cfg.HistoryStore = "sqlite"
	cfg.SQLitePath = filepath.Join(dir, "lexiguard.db")
	cfg.ArchiveStore = "local"
	cfg.LocalStoreDir = filepath.Join(dir, "uploads")

	app, err := Build(context.Background(), cfg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer app.Close()

	if _, ok := app.History.Repo.(*history.SQLiteRepo); !ok {
		t.Fatalf("expected SQLite history repo, got %T", app.History.Repo)
	}
	if _, ok := app.Archive.(*localstore.Store); !ok {
		t.Fatalf("expected local archive, got %T", app.Archive)
	}
	if _, err := app.History.Save(context.Background(), "u", history.SaveInput{FileName: "a.pdf", AnalysisData: []byte(`{}`)}); err != nil {
		t.Fatalf("save through sqlite: %v", err)
	}
}

func TestBuildFailsFast(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"postgres history without url", func(c *config.Config) { c.HistoryStore = "postgres" }},
		{"postgres search without url", func(c *config.Config) { c.SearchProvider = "postgres" }},
		{"openai without key", func(c *config.Config) { c.LLMProvider = "openai" }},
		{"gemini without credentials", func(c *config.Config) { c.LLMProvider = "gemini" }},
		{"s3 without bucket", func(c *config.Config) { c.ArchiveStore = "s3" }},
		{"minio without endpoint", func(c *config.Config) { c.ArchiveStore = "minio" }},
		{"discovery without datastore", func(c *config.Config) { c.SearchProvider = "discovery"; c.GoogleCloudProject = "p" }},
		{"production without jwt secret", func(c *config.Config) { c.Env = "production" }},
		{"missing personas file", func(c *config.Config) { c.PersonasFile = "/does/not/exist.yaml" }},
		{"misspelled history store", func(c *config.Config) { c.HistoryStore = "postgress" }},
		{"unknown model provider", func(c *config.Config) { c.LLMProvider = "claude" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig(t)
			tt.mutate(&cfg)
			if app, err := Build(context.Background(), cfg); err == nil {
				app.Close()
				t.Fatalf("expected build error")
			}
		})
	}
}

func TestOpenCore(t *testing.T) {
	core, closeFn, err := OpenCore(context.Background(), baseConfig(t))
	if err != nil {
		t.Fatalf("open core: %v", err)
	}
	defer closeFn()
	if core.Pipeline.Extractor != core.Extract || core.Pipeline.Analyzer != core.Analyzer {
		t.Fatalf("pipeline not wired to the core stages")
	}

	cfg := baseConfig(t)
	cfg.SearchProvider = "postgres"
	if _, _, err := OpenCore(context.Background(), cfg); err == nil {
		t.Fatalf("expected error without DATABASE_URL")
	}

	cfg = baseConfig(t)
	cfg.SearchProvider = "elastic"
	if _, _, err := OpenCore(context.Background(), cfg); err == nil {
		t.Fatalf("expected error for unknown search provider")
	}
}
