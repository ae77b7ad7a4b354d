package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Open connects a pooled *sql.DB to Postgres through the pgx stdlib driver.
// The caller must blank-import github.com/jackc/pgx/v5/stdlib to register it.
func Open(databaseURL string) (*sql.DB, error) {
	pool, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("db: open postgres: %w", err)
	}

	pool.SetMaxOpenConns(10)
	pool.SetMaxIdleConns(10)
	pool.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db: verify postgres connection: %w", err)
	}

	return pool, nil
}
