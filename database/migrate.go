package database

import (
	"fmt"

	"gorm.io/gorm"
)

// Migrate applies the idempotent raw migrations AutoMigrate cannot express:
// - listing index on requests (created_at DESC, id ASC)
// - CHECK constraints pinning the status/type enums at the database
// - unique index on idempotency keys
func Migrate() error {
	return DB.Transaction(func(tx *gorm.DB) error {
		// --- Composite / helpful indexes (idempotent) ---
		indexes := []string{
			`CREATE INDEX IF NOT EXISTS idx_requests_created_at_id ON requests (created_at DESC, id ASC)`,
			`CREATE INDEX IF NOT EXISTS idx_requests_status_type ON requests (status, type)`,
			`CREATE INDEX IF NOT EXISTS idx_audit_logs_created_at ON audit_logs (created_at DESC)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_idempotency_keys_key ON idempotency_keys (key)`,
		}
		for _, stmt := range indexes {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("index migration failed on: %s - %w", stmt, err)
			}
		}

		// --- Basic CHECK constraints (idempotent) ---
		checks := []string{
			// Request status is one of the three workflow states
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'requests'::regclass
					  AND conname  = 'chk_requests_status'
				) THEN
					ALTER TABLE requests
					ADD CONSTRAINT chk_requests_status
					CHECK (status IN ('pending', 'approved', 'rejected'));
				END IF;
			END $$;`,
			// Request type is one of the four workflow types
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'requests'::regclass
					  AND conname  = 'chk_requests_type'
				) THEN
					ALTER TABLE requests
					ADD CONSTRAINT chk_requests_type
					CHECK (type IN ('mutation', 'retirement', 'promotion', 'correction'));
				END IF;
			END $$;`,
			// Personnel status
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'personnel'::regclass
					  AND conname  = 'chk_personnel_status'
				) THEN
					ALTER TABLE personnel
					ADD CONSTRAINT chk_personnel_status
					CHECK (status IN ('active', 'pensiun'));
				END IF;
			END $$;`,
		}
		for _, stmt := range checks {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("check constraint migration failed: %w", err)
			}
		}

		return nil
	})
}
