package migrations

import (
	"context"
	"embed"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql
var PostgresFS embed.FS

// RunPostgresMigrations applies pending Postgres migrations through a
// database/sql view of pool. Each migration runs in its own transaction.
func RunPostgresMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	return up(ctx, goose.DialectPostgres, db, PostgresFS, "postgres")
}
