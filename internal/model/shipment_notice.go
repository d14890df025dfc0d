package model

import (
	"time"

	"github.com/google/uuid"
)

// ShipmentNotice statuses.
const (
	NoticePending      = "pending"
	NoticeAcknowledged = "acknowledged"
	NoticeError        = "error"
)

// ShipmentNotice records one pending shipment acknowledgment to the
// marketplace platform for an order with picked items in a run. Created
// inside the CompleteStoreVisit transaction, delivered asynchronously by the
// worker pool, retried by the retry cron with exponential backoff.
type ShipmentNotice struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_notices_order_run"`
	RunID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_notices_order_run"`
	RunNumber int       `gorm:"not null"`
	Status    string    `gorm:"type:varchar(20);not null;default:'pending';index"`
	// Retry bookkeeping — consumed by the retry cron.
	RetryCount  int `gorm:"not null;default:0"`
	NextRetryAt *time.Time
	LastError   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
