package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReturnRequest statuses.
const (
	ReturnPending       = "pending"
	ReturnAssignedToRun = "assigned_to_run"
	ReturnProcessed     = "processed"
	ReturnRejected      = "rejected"
)

// ReturnRequest is a store-initiated return. The barcode is not guaranteed
// to exist in the catalog, so store and style names are carried on the
// request itself instead of being resolved at consolidation time.
type ReturnRequest struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID      uuid.UUID `gorm:"type:uuid;not null;index"`
	StoreName    string    `gorm:"not null"`
	Barcode      string    `gorm:"not null;index"`
	StyleName    string
	Quantity     int             `gorm:"not null"`
	Reason       string          `gorm:"type:text"`
	ReturnAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Status       string          `gorm:"type:varchar(20);not null;default:'pending';index"`
	RunID        *uuid.UUID      `gorm:"type:uuid;index"`
	RunNumber    *int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
