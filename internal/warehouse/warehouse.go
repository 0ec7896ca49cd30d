package warehouse

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Warehouse is a Postgres-backed store for movie snapshots and run history.
type Warehouse struct {
	pool *pgxpool.Pool
}

// New creates a new Warehouse and verifies the connection.
func New(ctx context.Context, dsn string) (*Warehouse, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return &Warehouse{pool: pool}, nil
}

// Migrate runs the schema DDL to create tables and indexes.
func (w *Warehouse) Migrate(ctx context.Context) error {
	_, err := w.pool.Exec(ctx, schemaDDL)
	if err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (w *Warehouse) Ping(ctx context.Context) error {
	return w.pool.Ping(ctx)
}

// Close closes the connection pool.
func (w *Warehouse) Close() {
	w.pool.Close()
}
