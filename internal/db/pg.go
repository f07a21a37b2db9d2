package db

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

var Pool *pgxpool.Pool

var (
	newPool = func(ctx context.Context, url string) (*pgxpool.Pool, error) {
		return pgxpool.New(ctx, url)
	}
	pingPool = func(ctx context.Context, pool *pgxpool.Pool) error {
		return pool.Ping(ctx)
	}
)

// InitPostgres connects the package-level pool. A missing database URL
// leaves Pool nil: quote history and the internal model's persisted
// observations are unavailable, everything else keeps working.
func InitPostgres(ctx context.Context, databaseURL string) {
	if databaseURL == "" {
		log.Println("DATABASE_URL not set, quote history disabled")
		return
	}

	pool, err := newPool(ctx, databaseURL)
	if err != nil {
		log.Fatalf("failed to create Postgres pool: %v", err)
	}
	if err := pingPool(ctx, pool); err != nil {
		log.Fatalf("failed to connect to Postgres: %v", err)
	}

	Pool = pool
	log.Println("Connected to Postgres")
}
