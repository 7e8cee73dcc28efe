package main

// Run database migrations:
//   go run ./cmd/migrate                    # Postgres at DATABASE_URL
//   go run ./cmd/migrate -dialect sqlite3   # SQLite at SQLITE_PATH

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"

	"lexiguard-backend/internal/shared/config"
	"lexiguard-backend/internal/shared/storage/db"
)

func main() {
	cfg := config.Load()
	dialect := flag.String("dialect", string(db.Postgres), "database dialect: postgres or sqlite3")
	flag.Parse()
	ctx := context.Background()

	var (
		sqlDB *sql.DB
		err   error
	)
	switch db.Dialect(*dialect) {
	case db.SQLite:
		sqlDB, err = db.OpenSQLite(ctx, cfg.SQLitePath)
	case db.Postgres:
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	default:
		log.Printf("unknown dialect %q", *dialect)
		os.Exit(2)
	}
	if err != nil {
		log.Printf("failed to connect database: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB, db.Dialect(*dialect)); err != nil {
		log.Printf("failed to run migrations: %v", err)
		os.Exit(1)
	}
	log.Printf("migrations applied (%s)", *dialect)
}
