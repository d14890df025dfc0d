package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is one catalog entry, keyed by barcode. The engine only ever
// mutates Inventory; every other field is maintained by catalog tooling.
type Product struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Barcode   string    `gorm:"uniqueIndex;not null"`
	StoreID   uuid.UUID `gorm:"type:uuid;not null;index"`
	StyleName string    `gorm:"index;not null"`
	Color     string
	Size      string
	Inventory int             `gorm:"not null;default:0"`
	CostPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Store *Store `gorm:"foreignKey:StoreID"`
}
