// ===============================
// internal/database/migrations.go - Signage schema
// ===============================

package database

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
)

func RunMigrations(db *sqlx.DB) error {
	log.Println("📄 Running signage schema migrations...")

	// Check if migrations table exists
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			id SERIAL PRIMARY KEY,
			version VARCHAR(255) UNIQUE NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	migrations := []Migration{
		{
			Version: "001_signage_media",
			Query: `
				CREATE TABLE IF NOT EXISTS signage_media (
					id UUID PRIMARY KEY,
					service_key VARCHAR(100) NOT NULL,
					organization_id VARCHAR(255),
					name VARCHAR(255) NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					media_type VARCHAR(20) NOT NULL,
					source_type VARCHAR(20) NOT NULL DEFAULT 'external',
					source_url TEXT NOT NULL DEFAULT '',
					thumbnail_url TEXT NOT NULL DEFAULT '',
					duration INTEGER NOT NULL DEFAULT 0,
					mime_type VARCHAR(100) NOT NULL DEFAULT '',
					file_size BIGINT NOT NULL DEFAULT 0,
					category VARCHAR(100) NOT NULL DEFAULT '',
					tags TEXT[] NOT NULL DEFAULT '{}',
					status VARCHAR(20) NOT NULL DEFAULT 'active',
					created_by VARCHAR(255) NOT NULL DEFAULT '',
					created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
					deleted_at TIMESTAMP WITH TIME ZONE,
					CONSTRAINT signage_media_type_check CHECK (media_type IN ('image', 'video', 'html', 'text', 'youtube', 'external')),
					CONSTRAINT signage_media_status_check CHECK (status IN ('active', 'archived'))
				);

				CREATE INDEX IF NOT EXISTS idx_signage_media_scope
					ON signage_media(service_key, organization_id, created_at DESC)
					WHERE deleted_at IS NULL;
			`,
		},
		{
			Version: "002_signage_playlists",
			Query: `
				CREATE TABLE IF NOT EXISTS signage_playlists (
					id UUID PRIMARY KEY,
					service_key VARCHAR(100) NOT NULL,
					organization_id VARCHAR(255),
					name VARCHAR(255) NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					status VARCHAR(20) NOT NULL DEFAULT 'draft',
					loop BOOLEAN NOT NULL DEFAULT true,
					item_count INTEGER NOT NULL DEFAULT 0,
					total_duration INTEGER NOT NULL DEFAULT 0,
					created_by VARCHAR(255) NOT NULL DEFAULT '',
					created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
					deleted_at TIMESTAMP WITH TIME ZONE,
					CONSTRAINT signage_playlists_status_check CHECK (status IN ('draft', 'active', 'archived'))
				);

				CREATE INDEX IF NOT EXISTS idx_signage_playlists_scope
					ON signage_playlists(service_key, organization_id, created_at DESC)
					WHERE deleted_at IS NULL;

				CREATE TABLE IF NOT EXISTS signage_playlist_items (
					id UUID PRIMARY KEY,
					playlist_id UUID NOT NULL REFERENCES signage_playlists(id) ON DELETE CASCADE,
					media_id UUID NOT NULL,
					sort_order INTEGER NOT NULL DEFAULT 0,
					duration INTEGER,
					transition VARCHAR(50) NOT NULL DEFAULT '',
					settings JSONB NOT NULL DEFAULT '{}',
					created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
				);

				CREATE INDEX IF NOT EXISTS idx_signage_playlist_items_order
					ON signage_playlist_items(playlist_id, sort_order);
			`,
		},
		{
			Version: "003_signage_channels",
			Query: `
				CREATE TABLE IF NOT EXISTS signage_channels (
					id UUID PRIMARY KEY,
					service_key VARCHAR(100) NOT NULL,
					organization_id VARCHAR(255),
					name VARCHAR(255) NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					location VARCHAR(255) NOT NULL DEFAULT '',
					orientation VARCHAR(20) NOT NULL DEFAULT 'landscape',
					resolution VARCHAR(20) NOT NULL DEFAULT '',
					default_playlist_id UUID,
					settings JSONB NOT NULL DEFAULT '{}',
					status VARCHAR(20) NOT NULL DEFAULT 'active',
					created_by VARCHAR(255) NOT NULL DEFAULT '',
					created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
					deleted_at TIMESTAMP WITH TIME ZONE,
					CONSTRAINT signage_channels_status_check CHECK (status IN ('active', 'inactive'))
				);

				CREATE INDEX IF NOT EXISTS idx_signage_channels_scope
					ON signage_channels(service_key, organization_id)
					WHERE deleted_at IS NULL;
			`,
		},
		{
			Version: "004_signage_schedules",
			Query: `
				CREATE TABLE IF NOT EXISTS signage_schedules (
					id UUID PRIMARY KEY,
					service_key VARCHAR(100) NOT NULL,
					organization_id VARCHAR(255),
					channel_id UUID,
					playlist_id UUID NOT NULL,
					name VARCHAR(255) NOT NULL,
					recurrence VARCHAR(20) NOT NULL,
					start_time VARCHAR(8) NOT NULL,
					end_time VARCHAR(8) NOT NULL,
					days_of_week INTEGER[] NOT NULL DEFAULT '{}',
					date VARCHAR(10),
					valid_from VARCHAR(10),
					valid_until VARCHAR(10),
					priority INTEGER NOT NULL DEFAULT 0,
					status VARCHAR(20) NOT NULL DEFAULT 'active',
					created_by VARCHAR(255) NOT NULL DEFAULT '',
					created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
					deleted_at TIMESTAMP WITH TIME ZONE,
					CONSTRAINT signage_schedules_recurrence_check CHECK (recurrence IN ('daily', 'weekly', 'one_time')),
					CONSTRAINT signage_schedules_status_check CHECK (status IN ('active', 'inactive'))
				);

				CREATE INDEX IF NOT EXISTS idx_signage_schedules_scope
					ON signage_schedules(service_key, organization_id, status)
					WHERE deleted_at IS NULL;

				CREATE INDEX IF NOT EXISTS idx_signage_schedules_channel
					ON signage_schedules(channel_id)
					WHERE deleted_at IS NULL;
			`,
		},
		{
			Version: "005_signage_overrides",
			Query: `
				CREATE TABLE IF NOT EXISTS signage_overrides (
					id UUID PRIMARY KEY,
					service_key VARCHAR(100) NOT NULL,
					organization_id VARCHAR(255),
					channel_id UUID,
					slot_key VARCHAR(255) NOT NULL,
					mode VARCHAR(20) NOT NULL DEFAULT 'replace',
					playlist_id UUID,
					content JSONB NOT NULL DEFAULT '{}',
					status VARCHAR(20) NOT NULL DEFAULT 'active',
					ended_reason VARCHAR(20) NOT NULL DEFAULT '',
					started_by VARCHAR(255) NOT NULL DEFAULT '',
					started_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
					expires_at TIMESTAMP WITH TIME ZONE,
					ended_at TIMESTAMP WITH TIME ZONE,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
					CONSTRAINT signage_overrides_mode_check CHECK (mode IN ('replace', 'overlay')),
					CONSTRAINT signage_overrides_status_check CHECK (status IN ('active', 'stopped', 'expired')),
					CONSTRAINT signage_overrides_ended_reason_check CHECK (ended_reason IN ('', 'manual', 'superseded'))
				);

				-- One live override per slot. Lazy expiry keeps lapsed rows in
				-- status active until the next read fixes them up, so the
				-- partial unique index is on active alone and Execute
				-- supersedes in the same transaction as the insert.
				CREATE UNIQUE INDEX IF NOT EXISTS idx_signage_overrides_live_slot
					ON signage_overrides(service_key, COALESCE(organization_id, ''), slot_key)
					WHERE status = 'active';

				CREATE INDEX IF NOT EXISTS idx_signage_overrides_scope
					ON signage_overrides(service_key, organization_id, started_at DESC);
			`,
		},
	}

	for _, migration := range migrations {
		if err := applyMigration(db, migration); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", migration.Version, err)
		}
	}

	log.Println("✅ Signage schema migrations completed successfully")
	return nil
}

type Migration struct {
	Version string
	Query   string
}

func applyMigration(db *sqlx.DB, migration Migration) error {
	// Check if migration already applied
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM migrations WHERE version = $1", migration.Version).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check migration status: %w", err)
	}

	if count > 0 {
		log.Printf("⏭️  Migration %s already applied, skipping", migration.Version)
		return nil
	}

	log.Printf("🔧 Applying migration: %s", migration.Version)

	// Apply migration in a transaction
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	// Execute migration
	_, err = tx.Exec(migration.Query)
	if err != nil {
		return fmt.Errorf("failed to execute migration %s: %w", migration.Version, err)
	}

	// Record migration
	_, err = tx.Exec("INSERT INTO migrations (version) VALUES ($1)", migration.Version)
	if err != nil {
		return fmt.Errorf("failed to record migration %s: %w", migration.Version, err)
	}

	// Commit transaction
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %s: %w", migration.Version, err)
	}

	log.Printf("✅ Migration %s applied successfully", migration.Version)
	return nil
}
