package pgstore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"

	"github.com/dbis-ilm/poseidon-go/internal/dbpool"
	"github.com/dbis-ilm/poseidon-go/internal/pgstore/migrations"
)

// RunMigrations applies all pending schema migrations, adapted from
// persistor/internal/db.RunMigrations: goose requires a *sql.DB, so a raw
// connection is opened through the pgx stdlib driver alongside the pgxpool
// used for everything else.
func RunMigrations(ctx context.Context, pool *dbpool.Pool, log *logrus.Logger) error {
	sqlDB, err := sql.Open("pgx", pool.ConnString())
	if err != nil {
		return fmt.Errorf("opening sql.DB for migrations: %w", err)
	}
	defer sqlDB.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, migrations.FS)
	if err != nil {
		return fmt.Errorf("creating goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	for _, r := range results {
		if r.Error != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", r.Source.Version, r.Source.Path, r.Error)
		}
		log.WithFields(logrus.Fields{
			"version":  r.Source.Version,
			"file":     r.Source.Path,
			"duration": r.Duration,
		}).Info("pgstore migration applied")
	}

	if len(results) == 0 {
		log.Debug("pgstore schema already up to date")
	}

	return nil
}
