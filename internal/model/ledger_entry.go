package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger transaction types. Debit: the store owes the operator (net pickups);
// credit: the operator owes the store (net returns).
const (
	LedgerDebit  = "debit"
	LedgerCredit = "credit"
)

// LedgerEntry is one signed financial record between operator and store.
// The (run_number, store_id) unique index plus upsert-on-write guarantees at
// most one entry per completed store visit — duplicates cannot accumulate,
// so no cleanup pass exists.
type LedgerEntry struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID         uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_ledger_run_store"`
	TransactionType string          `gorm:"type:varchar(10);not null"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Discount        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Date            time.Time       `gorm:"not null;index"`
	// RunNumber is null for manual entries; nulls are not constrained by the
	// composite unique index.
	RunNumber *int `gorm:"uniqueIndex:idx_ledger_run_store"`
	// RunConfirmationID keys manual amendments back to the confirmation.
	RunConfirmationID *uuid.UUID `gorm:"type:uuid;index"`
	Notes             string     `gorm:"type:text"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
