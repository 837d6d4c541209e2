// Package db provides PostgreSQL storage for resume records.
package db

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	if db.pool == nil {
		return fmt.Errorf("database is not connected")
	}
	return db.pool.Ping(ctx)
}

// Migration is one idempotent schema change.
type Migration struct {
	Name string
	Up   func(ctx context.Context, pool *pgxpool.Pool) error
}

// Migrations returns the schema changes in the order they are applied.
func Migrations() []Migration {
	return []Migration{
		{Name: "create_resumes", Up: execMigration(createResumesSQL)},
		{Name: "index_resumes_owner", Up: execMigration(indexResumesOwnerSQL)},
	}
}

// Migrate applies every migration. Each one is safe to re-run.
func (db *DB) Migrate(ctx context.Context) error {
	for _, m := range Migrations() {
		if err := m.Up(ctx, db.pool); err != nil {
			return fmt.Errorf("migration %s failed: %w", m.Name, err)
		}
		log.Printf("[DB] migration %s applied", m.Name)
	}
	return nil
}

func execMigration(sql string) func(context.Context, *pgxpool.Pool) error {
	return func(ctx context.Context, pool *pgxpool.Pool) error {
		_, err := pool.Exec(ctx, sql)
		return err
	}
}

const createResumesSQL = `
CREATE TABLE IF NOT EXISTS resumes (
	id          BIGSERIAL PRIMARY KEY,
	owner_id    UUID NOT NULL,
	template_id TEXT NOT NULL,
	data        TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const indexResumesOwnerSQL = `
CREATE INDEX IF NOT EXISTS idx_resumes_owner_updated ON resumes (owner_id, updated_at DESC, id DESC)`
