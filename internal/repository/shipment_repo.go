package repository

import (
	"context"
	"time"

	"marketrunner/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShipmentRepository interface {
	CreateTx(tx *gorm.DB, notices []model.ShipmentNotice) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ShipmentNotice, error)
	Update(ctx context.Context, n *model.ShipmentNotice) error

	// ListPendingRetries returns pending notices whose next_retry_at has
	// elapsed — consumed by the retry cron in bounded batches.
	ListPendingRetries(ctx context.Context, now time.Time, limit int) ([]model.ShipmentNotice, error)
}

type shipmentRepo struct{ db *gorm.DB }

func NewShipmentRepository(db *gorm.DB) ShipmentRepository { return &shipmentRepo{db: db} }

func (r *shipmentRepo) CreateTx(tx *gorm.DB, notices []model.ShipmentNotice) error {
	if len(notices) == 0 {
		return nil
	}
	return tx.Create(&notices).Error
}

func (r *shipmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ShipmentNotice, error) {
	var n model.ShipmentNotice
	err := r.db.WithContext(ctx).First(&n, id).Error
	return &n, err
}

func (r *shipmentRepo) Update(ctx context.Context, n *model.ShipmentNotice) error {
	return r.db.WithContext(ctx).Save(n).Error
}

func (r *shipmentRepo) ListPendingRetries(ctx context.Context, now time.Time, limit int) ([]model.ShipmentNotice, error) {
	var notices []model.ShipmentNotice
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_retry_at IS NOT NULL AND next_retry_at <= ?", model.NoticePending, now).
		Order("next_retry_at ASC").
		Limit(limit).
		Find(&notices).Error
	return notices, err
}
