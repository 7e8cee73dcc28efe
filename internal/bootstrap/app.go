package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"lexiguard-backend/internal/analyses"
	googleauth "lexiguard-backend/internal/auth"
	"lexiguard-backend/internal/chat"
	"lexiguard-backend/internal/extract"
	"lexiguard-backend/internal/history"
	"lexiguard-backend/internal/llm"
	"lexiguard-backend/internal/llm/compat"
	"lexiguard-backend/internal/llm/gemini"
	"lexiguard-backend/internal/llm/openai"
	"lexiguard-backend/internal/rag"
	"lexiguard-backend/internal/search"
	"lexiguard-backend/internal/search/discovery"
	"lexiguard-backend/internal/search/pgsearch"
	"lexiguard-backend/internal/shared/auth"
	"lexiguard-backend/internal/shared/config"
	"lexiguard-backend/internal/shared/server"
	"lexiguard-backend/internal/shared/server/middleware"
	"lexiguard-backend/internal/shared/storage/db"
	"lexiguard-backend/internal/shared/storage/object"
	localstore "lexiguard-backend/internal/shared/storage/object/local"
	miniostore "lexiguard-backend/internal/shared/storage/object/minio"
	s3store "lexiguard-backend/internal/shared/storage/object/s3"
	"lexiguard-backend/internal/shared/telemetry"
	"lexiguard-backend/internal/users"
)

// Core holds the document pipeline without any HTTP or storage concerns.
// The CLI and MCP server use it directly.
type Core struct {
	Model    llm.Gateway
	Search   search.Gateway
	Extract  *extract.Stage
	Analyzer *analyses.Service
	Pipeline *analyses.Pipeline
	Chat     *chat.Stage
}

// App holds shared dependencies for the HTTP binaries.
type App struct {
	*Core
	Config   config.Config
	Router   *gin.Engine
	DB       *sql.DB
	SQLite   *sql.DB
	Archive  object.ObjectStore
	Verifier auth.Verifier
	History  *history.Service
	Users    *users.Service
}

// Build prepares every dependency and the router. It fails when a
// configured gateway or store cannot be constructed.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &App{Config: cfg}
	var err error
	if app.DB, err = buildPostgres(ctx, cfg); err != nil {
		return nil, err
	}
	if cfg.HistoryStore == "sqlite" {
		if app.SQLite, err = buildSQLite(ctx, cfg); err != nil {
			app.Close()
			return nil, err
		}
	}

	searchGW, err := buildSearch(ctx, cfg, app.DB)
	if err != nil {
		app.Close()
		return nil, err
	}
	if app.Core, err = BuildCore(ctx, cfg, searchGW); err != nil {
		app.Close()
		return nil, err
	}
	if app.Archive, err = buildArchive(ctx, cfg); err != nil {
		app.Close()
		return nil, err
	}

	signer, err := auth.NewHS256(cfg.JWTSecret, cfg.Env)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Verifier = signer

	app.History = history.NewService(buildHistoryRepo(cfg, app.DB, app.SQLite), cfg.StoreTimeout)
	var userRepo users.Repo = users.NewMemoryRepo()
	if app.DB != nil {
		userRepo = &users.PGRepo{DB: app.DB}
	}
	app.Users = users.NewService(userRepo)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		Verifier:        signer,
		Limiter:         middleware.NewRateLimiter(nil),
		AnalysisHandler: analyses.NewHandler(app.Pipeline, app.Archive, cfg.MaxUploadBytes),
		ChatHandler:     chat.NewHandler(app.Chat),
		HistoryHandler:  history.NewHandler(app.History),
		UserHandler:     users.NewHandler(app.Users),
		GoogleAuth: googleauth.NewGoogleService(
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleRedirectURL,
			cfg.UIRedirectURL,
			signer,
			app.Users,
		),
	})
	return app, nil
}

// Close releases database handles.
func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
	if a.SQLite != nil {
		a.SQLite.Close()
	}
}

// OpenCore builds a Core with the configured search provider, for binaries
// that do not serve HTTP. The returned func closes any database it opened.
func OpenCore(ctx context.Context, cfg config.Config) (*Core, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	var pg *sql.DB
	if cfg.SearchProvider == "postgres" {
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return nil, nil, errors.New("SEARCH_PROVIDER=postgres requires DATABASE_URL")
		}
		var err error
		if pg, err = db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions())); err != nil {
			return nil, nil, err
		}
	}
	closeFn := func() {
		if pg != nil {
			pg.Close()
		}
	}
	searchGW, err := buildSearch(ctx, cfg, pg)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	core, err := BuildCore(ctx, cfg, searchGW)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return core, closeFn, nil
}

// BuildCore wires the model gateway, personas, and stages. A nil searchGW
// disables retrieval.
func BuildCore(ctx context.Context, cfg config.Config, searchGW search.Gateway) (*Core, error) {
	model, err := BuildModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	personas, err := analyses.LoadPersonas(cfg.PersonasFile)
	if err != nil {
		return nil, err
	}
	if searchGW == nil {
		searchGW = search.None{}
	}

	core := &Core{
		Model:  model,
		Search: searchGW,
		Extract: &extract.Stage{
			Model:     model,
			ModelName: cfg.LLMExtractionModel,
			Mode:      cfg.ExtractionMode,
		},
		Analyzer: &analyses.Service{
			Model:          model,
			ModelName:      cfg.LLMAnalysisModel,
			Personas:       personas,
			RAG:            rag.New(searchGW, cfg.SearchTimeout),
			RAGConcurrency: cfg.RAGConcurrency,
			RepairAttempts: cfg.AnalysisRepairAttempts,
		},
		Chat: &chat.Stage{Model: model, ModelName: cfg.LLMChatModel},
	}
	core.Pipeline = &analyses.Pipeline{Extractor: core.Extract, Analyzer: core.Analyzer}
	return core, nil
}

// BuildModel constructs the configured provider wrapped with a per-call
// timeout, retries, and latency metrics.
func BuildModel(ctx context.Context, cfg config.Config) (llm.Gateway, error) {
	var base llm.Gateway
	switch cfg.LLMProvider {
	case "none":
		telemetry.Warn("bootstrap.model_unconfigured", map[string]any{"provider": cfg.LLMProvider})
		return llm.Unconfigured{}, nil
	case "openai":
		client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, cfg.ModelTimeout)
		if err != nil {
			return nil, fmt.Errorf("openai provider: %w", err)
		}
		base = client
	case "compat":
		client, err := compat.New(cfg.OpenAIAPIKey, cfg.LLMBaseURL, cfg.LLMModel, cfg.ModelTimeout)
		if err != nil {
			return nil, fmt.Errorf("compat provider: %w", err)
		}
		base = client
	default:
		client, err := gemini.New(ctx, gemini.Options{
			APIKey:   cfg.GeminiAPIKey,
			Project:  cfg.GoogleCloudProject,
			Location: cfg.GoogleCloudRegion,
			Model:    cfg.LLMModel,
			BaseURL:  cfg.LLMBaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("gemini provider: %w", err)
		}
		base = client
	}
	gw := llm.WithTimeout(base, cfg.ModelTimeout)
	gw = llm.WithRetry(gw, cfg.LLMMaxRetries)
	return llm.WithMetrics(gw, cfg.LLMProvider), nil
}

func buildSearch(ctx context.Context, cfg config.Config, pg *sql.DB) (search.Gateway, error) {
	switch cfg.SearchProvider {
	case "discovery":
		client, err := discovery.New(ctx, discovery.Options{
			Project:     cfg.GoogleCloudProject,
			Location:    cfg.SearchLocation,
			DatastoreID: cfg.DatastoreID,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	case "postgres":
		if pg == nil {
			return nil, errors.New("SEARCH_PROVIDER=postgres requires DATABASE_URL")
		}
		return pgsearch.New(pg), nil
	default:
		telemetry.Info("bootstrap.search_disabled", nil)
		return search.None{}, nil
	}
}

func needsPostgres(cfg config.Config) bool {
	return cfg.HistoryStore == "postgres" || cfg.SearchProvider == "postgres"
}

func buildPostgres(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if !needsPostgres(cfg) {
		return nil, nil
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultLambdaOptions()))
	} else {
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	}
	if err != nil {
		return nil, err
	}
	if !db.IsLambdaRuntime() {
		if err := db.RunMigrations(ctx, sqlDB, db.Postgres); err != nil {
			sqlDB.Close()
			return nil, err
		}
	}
	return sqlDB, nil
}

func buildSQLite(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	conn, err := db.OpenSQLite(ctx, cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(ctx, conn, db.SQLite); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

func buildHistoryRepo(cfg config.Config, pg, lite *sql.DB) history.Repo {
	switch cfg.HistoryStore {
	case "postgres":
		return &history.PGRepo{DB: pg}
	case "sqlite":
		return &history.SQLiteRepo{DB: lite}
	case "none":
		return history.UnavailableRepo{}
	default:
		return history.NewMemoryRepo()
	}
}

func buildArchive(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ArchiveStore {
	case "local":
		return localstore.New(cfg.LocalStoreDir), nil
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, errors.New("ARCHIVE_STORE=s3 requires S3_BUCKET")
		}
		store, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "minio":
		store, err := miniostore.New(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, nil
	}
}
