package model

import (
	"time"

	"github.com/google/uuid"
)

// RunItem types and statuses.
const (
	RunItemPickup = "pickup"
	RunItemReturn = "return"

	RunItemPending   = "pending"
	RunItemPicked    = "picked"
	RunItemReturned  = "returned"
	RunItemNotFound  = "not_found"
	RunItemCancelled = "cancelled"
)

// RunItem is one aggregated line (barcode × store × type) inside a run.
// Pickup items trace back to the OrderItems sharing (barcode, run_id);
// return items trace back to exactly one ReturnRequest.
type RunItem struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RunID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Type    string    `gorm:"type:varchar(10);not null"`
	Barcode string    `gorm:"not null;index"`
	StoreID uuid.UUID `gorm:"type:uuid;not null;index"`
	// Snapshot fields — returns may reference barcodes absent from the catalog.
	StoreName string
	StyleName string
	TargetQty int `gorm:"not null"`
	// PickedQty is clamped to [0, target+slack] atomically in SQL.
	PickedQty int    `gorm:"not null;default:0"`
	Status    string `gorm:"type:varchar(20);not null;default:'pending';index"`
	// OriginalReturnID links a return item back to its ReturnRequest.
	OriginalReturnID *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Terminal reports whether the item has reached a final status. A run may
// close only once every item it owns is terminal.
func (i *RunItem) Terminal() bool {
	switch i.Status {
	case RunItemPicked, RunItemReturned, RunItemNotFound, RunItemCancelled:
		return true
	}
	return false
}
