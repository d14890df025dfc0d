package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RunConfirmation closes out one store visit within a run. The composite
// unique index is the idempotency key for CompleteStoreVisit: a retry finds
// the existing row instead of paying the store twice.
type RunConfirmation struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RunID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_confirmations_run_store"`
	StoreID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_confirmations_run_store"`
	// ReceiptImageURL is an opaque reference to the uploaded proof-of-visit.
	ReceiptImageURL string `gorm:"not null"`
	// TotalAmount is signed: pickups minus returns at this store.
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Notes       string          `gorm:"type:text"`
	ConfirmedAt time.Time       `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
