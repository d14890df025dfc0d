package infra

import (
	"fmt"

	"marketrunner/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches GORM
// cannot express (the run-number sequence, partial indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// TranslateError maps pq unique violations to gorm.ErrDuplicatedKey,
		// which the idempotent completion path relies on.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations applies AutoMigrate plus the manual schema patches. Also used
// by integration tests against a throwaway container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Store{},
		&model.Product{},
		&model.User{},
		&model.Order{},
		&model.OrderItem{},
		&model.ReturnRequest{},
		&model.Run{},
		&model.RunItem{},
		&model.RunConfirmation{},
		&model.LedgerEntry{},
		&model.ShipmentNotice{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot handle. Each
// statement uses IF NOT EXISTS semantics so re-running is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// Run numbers come from a dedicated sequence so concurrent
		// consolidations can never allocate the same number.
		{"create runs_run_number_seq",
			`CREATE SEQUENCE IF NOT EXISTS runs_run_number_seq START 1`},
		// Partial index for the shipment retry cron query.
		{"create idx_notices_pending_retry", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_notices_pending_retry') THEN
    CREATE INDEX idx_notices_pending_retry
        ON shipment_notices (next_retry_at)
        WHERE status = 'pending' AND next_retry_at IS NOT NULL;
  END IF;
END $$`},
		// Open run items per run — the completion check runs it on every visit.
		{"create idx_run_items_open", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_run_items_open') THEN
    CREATE INDEX idx_run_items_open
        ON run_items (run_id)
        WHERE status NOT IN ('picked', 'returned', 'not_found', 'cancelled');
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
