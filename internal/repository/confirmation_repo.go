package repository

import (
	"context"

	"marketrunner/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ConfirmationRepository interface {
	CreateTx(tx *gorm.DB, c *model.RunConfirmation) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.RunConfirmation, error)
	// FindByRunAndStore looks up the idempotency key — a retry of a completed
	// visit returns the existing confirmation.
	FindByRunAndStore(ctx context.Context, runID, storeID uuid.UUID) (*model.RunConfirmation, error)
	UpdateAmountTx(tx *gorm.DB, id uuid.UUID, amount decimal.Decimal) error
	ListByRun(ctx context.Context, runID uuid.UUID) ([]model.RunConfirmation, error)
	DB() *gorm.DB
}

type confirmationRepo struct{ db *gorm.DB }

func NewConfirmationRepository(db *gorm.DB) ConfirmationRepository { return &confirmationRepo{db: db} }

func (r *confirmationRepo) DB() *gorm.DB { return r.db }

func (r *confirmationRepo) CreateTx(tx *gorm.DB, c *model.RunConfirmation) error {
	return tx.Create(c).Error
}

func (r *confirmationRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.RunConfirmation, error) {
	var c model.RunConfirmation
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *confirmationRepo) FindByRunAndStore(ctx context.Context, runID, storeID uuid.UUID) (*model.RunConfirmation, error) {
	var c model.RunConfirmation
	err := r.db.WithContext(ctx).Where("run_id = ? AND store_id = ?", runID, storeID).First(&c).Error
	return &c, err
}

func (r *confirmationRepo) UpdateAmountTx(tx *gorm.DB, id uuid.UUID, amount decimal.Decimal) error {
	return tx.Model(&model.RunConfirmation{}).Where("id = ?", id).Update("total_amount", amount).Error
}

func (r *confirmationRepo) ListByRun(ctx context.Context, runID uuid.UUID) ([]model.RunConfirmation, error) {
	var confirmations []model.RunConfirmation
	err := r.db.WithContext(ctx).Where("run_id = ?", runID).Order("confirmed_at ASC").Find(&confirmations).Error
	return confirmations, err
}
