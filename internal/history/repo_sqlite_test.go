package history

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"lexiguard-backend/internal/shared/storage/db"
)

func TestSQLiteRepoRoundTrip(t *testing.T) {
	ctx := context.Background()
	conn, err := db.OpenSQLite(ctx, filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer conn.Close()
	if err := db.RunMigrations(ctx, conn, db.SQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	repo := &SQLiteRepo{DB: conn}
	created := time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC)
	for i, name := range []string{"first.pdf", "second.pdf"} {
		rec := Record{
			ID:           name,
			UserID:       "user-1",
			FileName:     name,
			AnalysisData: json.RawMessage(`{"i":` + string(rune('0'+i)) + `}`),
			Timestamp:    "ts",
			CreatedAt:    created,
		}
		if err := repo.Append(ctx, rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	records, err := repo.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 || records[0].FileName != "first.pdf" || records[1].FileName != "second.pdf" {
		t.Fatalf("unexpected records %+v", records)
	}
	if !records[0].CreatedAt.Equal(created) || string(records[1].AnalysisData) != `{"i":1}` {
		t.Fatalf("round trip mismatch %+v", records[1])
	}

	empty, err := repo.ListByUser(ctx, "user-2")
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty slice, got %#v %v", empty, err)
	}
}
