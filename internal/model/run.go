package model

import (
	"time"

	"github.com/google/uuid"
)

// Run statuses.
const (
	RunDraft     = "draft"
	RunActive    = "active"
	RunCompleted = "completed"
	RunCancelled = "cancelled"
)

// Run is one bounded batch of pickup/return work executed by a courier
// across stores. RunNumber comes from a dedicated Postgres sequence so two
// concurrent consolidations can never allocate the same number.
type Run struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RunNumber int       `gorm:"uniqueIndex;not null"`
	Status    string    `gorm:"type:varchar(20);not null;default:'draft';index"`
	// Aggregate counters frozen at consolidation time.
	TotalItems  int  `gorm:"not null;default:0"`
	TotalStores int  `gorm:"not null;default:0"`
	TotalStyles int  `gorm:"not null;default:0"`
	HasReturns  bool `gorm:"not null;default:false"`
	// RunnerID is the courier assigned on activation (optional).
	RunnerID  *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Items []RunItem `gorm:"foreignKey:RunID"`
}
