package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem statuses.
const (
	OrderItemPending       = "pending"
	OrderItemAssignedToRun = "assigned_to_run"
	OrderItemPicked        = "picked"
	OrderItemShipped       = "shipped"
	OrderItemCancelled     = "cancelled"
)

// Derived order statuses (never stored — see DeriveOrderStatus).
const (
	OrderPending          = "pending"
	OrderAssignedToRun    = "assigned_to_run"
	OrderPicked           = "picked"
	OrderShipped          = "shipped"
	OrderPartiallyShipped = "partially_shipped"
	OrderCancelled        = "cancelled"
)

// Order is a marketplace order ingested from the platform. It carries no
// status column of its own — order-level status is always derived from the
// items so the two can never drift.
type Order struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PlatformOrderID string    `gorm:"uniqueIndex;not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Items []OrderItem `gorm:"foreignKey:OrderID"`
}

// OrderItem is one demand line: quantity of one barcode.
type OrderItem struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Barcode  string    `gorm:"not null;index:idx_order_items_barcode_run"`
	Quantity int       `gorm:"not null"`
	Status   string    `gorm:"type:varchar(20);not null;default:'pending';index"`
	// RunID is set while the item is assigned to a run, cleared on reversion.
	RunID     *uuid.UUID `gorm:"type:uuid;index:idx_order_items_barcode_run"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DeriveOrderStatus computes the order-level status from its items.
// Precedence: cancelled < shipped < partially_shipped < picked <
// assigned_to_run < pending. Cancelled items are excluded from the
// shipped/picked tallies.
func DeriveOrderStatus(items []OrderItem) string {
	if len(items) == 0 {
		return OrderPending
	}

	var live, shipped, picked, assigned int
	for _, it := range items {
		if it.Status == OrderItemCancelled {
			continue
		}
		live++
		switch it.Status {
		case OrderItemShipped:
			shipped++
		case OrderItemPicked:
			picked++
		case OrderItemAssignedToRun:
			assigned++
		}
	}

	switch {
	case live == 0:
		return OrderCancelled
	case shipped == live:
		return OrderShipped
	case shipped > 0:
		return OrderPartiallyShipped
	case picked == live:
		return OrderPicked
	case assigned > 0 || picked > 0:
		return OrderAssignedToRun
	default:
		return OrderPending
	}
}
