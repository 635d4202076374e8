// ===============================
// internal/database/migrations.go - Catalog and account schema
// ===============================

package database

import (
	"context"
	"fmt"

	"animax/internal/logging"

	"github.com/jmoiron/sqlx"
)

type Migration struct {
	Version string
	Query   string
}

// Migrations is the ordered bootstrap DDL. Every statement is idempotent.
var Migrations = []Migration{
	{
		Version: "001_catalog",
		Query: `
			CREATE TABLE IF NOT EXISTS animes (
				id VARCHAR(36) PRIMARY KEY,
				title TEXT NOT NULL,
				description TEXT NOT NULL,
				genres TEXT[] NOT NULL DEFAULT '{}',
				status VARCHAR(16) NOT NULL DEFAULT 'ONGOING',
				release_date TEXT NOT NULL,
				rating DOUBLE PRECISION,
				studio TEXT NOT NULL DEFAULT '',
				anime_cover TEXT NOT NULL,
				season_ids TEXT[] NOT NULL DEFAULT '{}',
				episode_ids TEXT[] NOT NULL DEFAULT '{}',
				media_folder TEXT NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
				CONSTRAINT animes_title_unique UNIQUE (title),
				CONSTRAINT animes_status_check CHECK (status IN ('ONGOING', 'COMPLETED', 'UPCOMING')),
				CONSTRAINT animes_rating_check CHECK (rating IS NULL OR (rating >= 1 AND rating <= 10))
			);

			CREATE TABLE IF NOT EXISTS seasons (
				id VARCHAR(36) PRIMARY KEY,
				anime_id VARCHAR(36) NOT NULL,
				season_number INTEGER NOT NULL,
				season_title TEXT NOT NULL,
				season_cover TEXT NOT NULL,
				episode_ids TEXT[] NOT NULL DEFAULT '{}',
				media_folder TEXT NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
				CONSTRAINT seasons_number_unique UNIQUE (anime_id, season_number)
			);

			CREATE TABLE IF NOT EXISTS episodes (
				id VARCHAR(36) PRIMARY KEY,
				season_id VARCHAR(36) NOT NULL,
				anime_id VARCHAR(36) NOT NULL,
				episode_number INTEGER NOT NULL,
				title TEXT,
				anime_episode TEXT NOT NULL,
				duration TEXT NOT NULL,
				subtitles JSONB NOT NULL DEFAULT '[]',
				released_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
				created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
				CONSTRAINT episodes_number_unique UNIQUE (season_id, episode_number)
			);

			CREATE INDEX IF NOT EXISTS idx_animes_status_title ON animes(status, title);
			CREATE INDEX IF NOT EXISTS idx_seasons_anime ON seasons(anime_id, season_number);
			CREATE INDEX IF NOT EXISTS idx_episodes_season ON episodes(season_id, episode_number);
			CREATE INDEX IF NOT EXISTS idx_animes_episode_ids ON animes USING GIN (episode_ids);
			CREATE INDEX IF NOT EXISTS idx_seasons_episode_ids ON seasons USING GIN (episode_ids);
		`,
	},
	{
		Version: "002_accounts",
		Query: `
			CREATE TABLE IF NOT EXISTS users (
				id VARCHAR(36) PRIMARY KEY,
				user_name TEXT NOT NULL,
				email TEXT NOT NULL,
				password_hash TEXT NOT NULL,
				profile_picture TEXT,
				bio VARCHAR(200) NOT NULL DEFAULT '',
				created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
				CONSTRAINT users_email_unique UNIQUE (email)
			);

			CREATE TABLE IF NOT EXISTS super_admins (
				id VARCHAR(36) PRIMARY KEY,
				user_name TEXT NOT NULL,
				email TEXT NOT NULL,
				password_hash TEXT NOT NULL,
				profile_picture TEXT,
				is_super_admin BOOLEAN NOT NULL DEFAULT true,
				created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
				CONSTRAINT super_admins_email_unique UNIQUE (email)
			);
		`,
	},
	{
		Version: "003_engagement",
		Query: `
			CREATE TABLE IF NOT EXISTS watchlists (
				id VARCHAR(36) PRIMARY KEY,
				user_id VARCHAR(36) NOT NULL,
				anime_id VARCHAR(36) NOT NULL,
				added_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
				CONSTRAINT watchlists_user_anime_unique UNIQUE (user_id, anime_id)
			);

			CREATE TABLE IF NOT EXISTS watch_progress (
				id VARCHAR(36) PRIMARY KEY,
				user_id VARCHAR(36) NOT NULL,
				anime_id VARCHAR(36) NOT NULL,
				season_id VARCHAR(36) NOT NULL,
				episode_id VARCHAR(36) NOT NULL,
				current_time_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
				updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
				CONSTRAINT watch_progress_slot_unique UNIQUE (user_id, anime_id, season_id, episode_id)
			);

			CREATE TABLE IF NOT EXISTS comments (
				id VARCHAR(36) PRIMARY KEY,
				user_id VARCHAR(36) NOT NULL,
				anime_id VARCHAR(36) NOT NULL,
				episode_id VARCHAR(36) NOT NULL,
				comment TEXT NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
			);

			CREATE INDEX IF NOT EXISTS idx_watchlists_user ON watchlists(user_id, added_at DESC);
			CREATE INDEX IF NOT EXISTS idx_watch_progress_user ON watch_progress(user_id, updated_at DESC);
			CREATE INDEX IF NOT EXISTS idx_comments_episode ON comments(episode_id, created_at DESC);
			CREATE INDEX IF NOT EXISTS idx_comments_user ON comments(user_id, created_at DESC);
		`,
	},
}

// RunMigrations applies every migration not yet recorded.
func RunMigrations(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS migrations (
			id SERIAL PRIMARY KEY,
			version VARCHAR(255) UNIQUE NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, migration := range Migrations {
		if err := applyMigration(ctx, db, migration); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", migration.Version, err)
		}
	}

	logging.Info().Int("count", len(Migrations)).Msg("database migrations up to date")
	return nil
}

func applyMigration(ctx context.Context, db *sqlx.DB, migration Migration) error {
	var count int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM migrations WHERE version = $1", migration.Version).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check migration status: %w", err)
	}

	if count > 0 {
		logging.Debug().Str("version", migration.Version).Msg("migration already applied, skipping")
		return nil
	}

	return Transaction(ctx, db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, migration.Query); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", migration.Version, err)
		}

		if _, err := tx.ExecContext(ctx, "INSERT INTO migrations (version) VALUES ($1)", migration.Version); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", migration.Version, err)
		}

		logging.Info().Str("version", migration.Version).Msg("migration applied")
		return nil
	})
}
