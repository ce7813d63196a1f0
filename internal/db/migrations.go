package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE TABLE IF NOT EXISTS plate_records (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		plate VARCHAR(32) NOT NULL,
		company TEXT NOT NULL DEFAULT '',
		association TEXT NOT NULL DEFAULT '',
		registered_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		registered_by VARCHAR(128) NOT NULL DEFAULT 'system'
	);`,
	`DO $$
	BEGIN
		-- Older deployments carried registered_by as nullable; tighten it.
		IF EXISTS (SELECT 1 FROM information_schema.columns
			WHERE table_name = 'plate_records' AND column_name = 'registered_by' AND is_nullable = 'YES') THEN
			UPDATE plate_records SET registered_by = 'system' WHERE registered_by IS NULL;
			ALTER TABLE plate_records ALTER COLUMN registered_by SET NOT NULL;
		END IF;
	END
	$$;`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_plate_records_plate ON plate_records (plate);`,
	`CREATE INDEX IF NOT EXISTS idx_plate_records_registered_at ON plate_records (registered_at);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
