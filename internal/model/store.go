package model

import (
	"time"

	"github.com/google/uuid"
)

// Store is a supplier store the operator settles with. Read-mostly
// reference data; ledger entries and run confirmations point at it.
type Store struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name         string    `gorm:"index;not null"`
	ContactEmail *string
	Active       bool `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
