package migration

import (
	"context"

	"resume-formatter/internal/logger"

	"github.com/jackc/pgx/v4/pgxpool"
)

// Migration represents a database migration
type Migration struct {
	Name string
	Up   func(ctx context.Context, pool *pgxpool.Pool) error
}

// Migrations returns the ordered list applied by RunMigrations.
func Migrations() []Migration {
	return []Migration{
		{Name: "create_artifacts", Up: execStatement(createArtifacts)},
		{Name: "index_artifacts_created_at", Up: execStatement(indexArtifactsCreatedAt)},
	}
}

const createArtifacts = `
	CREATE TABLE IF NOT EXISTS artifacts (
		name         TEXT PRIMARY KEY,
		content      BYTEA NOT NULL,
		content_type TEXT NOT NULL DEFAULT 'application/pdf',
		size         BIGINT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	);
`

const indexArtifactsCreatedAt = `
	CREATE INDEX IF NOT EXISTS artifacts_created_at_idx ON artifacts (created_at);
`

func execStatement(query string) func(ctx context.Context, pool *pgxpool.Pool) error {
	return func(ctx context.Context, pool *pgxpool.Pool) error {
		_, err := pool.Exec(ctx, query)
		return err
	}
}

// RunMigrations executes all necessary database migrations on startup.
// Every statement is idempotent so this is safe to run on each boot.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	logger.Info().Msg("starting database migrations")

	for _, m := range Migrations() {
		if err := m.Up(ctx, pool); err != nil {
			logger.Error().Err(err).Str("name", m.Name).Msg("migration failed")
			return err
		}
		logger.Info().Str("name", m.Name).Msg("migration completed")
	}

	logger.Info().Msg("all migrations completed")
	return nil
}
