// Package migrations ships the Postgres and ClickHouse schemas in the binary
// and applies them with goose. Each database tracks applied versions in its
// own goose_db_version table.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log"

	"github.com/pressly/goose/v3"
)

// up applies every pending migration under dir of fsys.
func up(ctx context.Context, dialect goose.Dialect, db *sql.DB, fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return fmt.Errorf("open embedded %s migrations: %w", dir, err)
	}
	provider, err := goose.NewProvider(dialect, db, sub)
	if err != nil {
		return fmt.Errorf("init %s migrations: %w", dir, err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply %s migrations: %w", dir, err)
	}
	for _, r := range results {
		log.Printf("[migrations] %s: applied %s in %s", dir, r.Source.Path, r.Duration)
	}
	return nil
}
