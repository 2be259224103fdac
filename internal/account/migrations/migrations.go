package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"

	"github.com/AlibekovAA/inference-auth/internal/common/logger"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// Up applies the embedded migrations for dialect. A Provider is used instead
// of goose's package-level state so several databases can migrate at once.
func Up(ctx context.Context, log *logger.Logger, db *sql.DB, dialect goose.Dialect) error {
	var dir string
	switch dialect {
	case goose.DialectPostgres:
		dir = "postgres"
	case goose.DialectSQLite3:
		dir = "sqlite"
	default:
		return fmt.Errorf("unsupported migration dialect: %s", dialect)
	}

	sub, err := fs.Sub(files, dir)
	if err != nil {
		return fmt.Errorf("failed to open %s migrations: %w", dir, err)
	}

	provider, err := goose.NewProvider(dialect, db, sub)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	if log != nil {
		for _, r := range results {
			log.WithFields(ctx, logger.Fields{
				"action":   "migration_applied",
				"dialect":  string(dialect),
				"version":  r.Source.Version,
				"duration": r.Duration,
			}).Info("migration applied")
		}
	}

	return nil
}
