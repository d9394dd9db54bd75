package repo

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"todoapi/migrations"

	"github.com/charmbracelet/log"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// MigratePostgres applies the embedded Postgres migrations to dsn.
func MigratePostgres(ctx context.Context, dsn string, logger *log.Logger) error {
	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return fmt.Errorf("goose open db: %w", err)
	}
	defer db.Close()
	return migrate(ctx, db, goose.DialectPostgres, migrations.PostgresDir, logger)
}

// MigrateSQLite applies the embedded SQLite migrations to db.
func MigrateSQLite(ctx context.Context, db *sql.DB, logger *log.Logger) error {
	return migrate(ctx, db, goose.DialectSQLite3, migrations.SQLiteDir, logger)
}

func migrate(ctx context.Context, db *sql.DB, dialect goose.Dialect, dir string, logger *log.Logger) error {
	fsys, err := fs.Sub(migrations.FS, dir)
	if err != nil {
		return fmt.Errorf("migrations fs: %w", err)
	}
	p, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	results, err := p.Up(ctx)
	if err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	if logger != nil {
		for _, r := range results {
			logger.Info("migration applied", "version", r.Source.Version, "path", r.Source.Path, "duration", r.Duration)
		}
	}
	return nil
}
