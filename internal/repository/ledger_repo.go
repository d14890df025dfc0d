package repository

import (
	"context"

	"marketrunner/internal/dto"
	"marketrunner/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LedgerRepository interface {
	// UpsertForVisitTx writes the visit's entry with ON CONFLICT on the
	// (run_number, store_id) unique index — a retried completion overwrites
	// instead of duplicating.
	UpsertForVisitTx(tx *gorm.DB, e *model.LedgerEntry) error

	FindByConfirmationTx(tx *gorm.DB, confirmationID uuid.UUID) (*model.LedgerEntry, error)
	UpdateTx(tx *gorm.DB, e *model.LedgerEntry) error
	CreateTx(tx *gorm.DB, e *model.LedgerEntry) error

	List(ctx context.Context, filter dto.LedgerFilter) ([]model.LedgerEntry, int64, error)
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]model.LedgerEntry, error)

	// StoreBalance derives Σcredits − Σdebits for one store, each entry net
	// of its discount.
	StoreBalance(ctx context.Context, storeID uuid.UUID) (decimal.Decimal, error)

	DB() *gorm.DB
}

type ledgerRepo struct{ db *gorm.DB }

func NewLedgerRepository(db *gorm.DB) LedgerRepository { return &ledgerRepo{db: db} }

func (r *ledgerRepo) DB() *gorm.DB { return r.db }

func (r *ledgerRepo) UpsertForVisitTx(tx *gorm.DB, e *model.LedgerEntry) error {
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "run_number"}, {Name: "store_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"transaction_type", "amount", "date", "run_confirmation_id", "notes", "updated_at",
		}),
	}).Create(e).Error
}

func (r *ledgerRepo) FindByConfirmationTx(tx *gorm.DB, confirmationID uuid.UUID) (*model.LedgerEntry, error) {
	var e model.LedgerEntry
	err := tx.Where("run_confirmation_id = ?", confirmationID).First(&e).Error
	return &e, err
}

func (r *ledgerRepo) UpdateTx(tx *gorm.DB, e *model.LedgerEntry) error {
	return tx.Save(e).Error
}

func (r *ledgerRepo) CreateTx(tx *gorm.DB, e *model.LedgerEntry) error {
	return tx.Create(e).Error
}

func (r *ledgerRepo) List(ctx context.Context, filter dto.LedgerFilter) ([]model.LedgerEntry, int64, error) {
	var entries []model.LedgerEntry
	var total int64

	q := r.db.WithContext(ctx).Model(&model.LedgerEntry{})
	if filter.StoreID != "" {
		q = q.Where("store_id = ?", filter.StoreID)
	}
	if filter.Type != "" && filter.Type != "all" {
		q = q.Where("transaction_type = ?", filter.Type)
	}
	if filter.From != "" {
		q = q.Where("date >= ?", filter.From)
	}
	if filter.To != "" {
		q = q.Where("date <= ?", filter.To)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("date DESC").Offset(offset).Limit(filter.Limit).Find(&entries).Error
	return entries, total, err
}

func (r *ledgerRepo) ListByStore(ctx context.Context, storeID uuid.UUID) ([]model.LedgerEntry, error) {
	var entries []model.LedgerEntry
	err := r.db.WithContext(ctx).Where("store_id = ?", storeID).Order("date ASC").Find(&entries).Error
	return entries, err
}

func (r *ledgerRepo) StoreBalance(ctx context.Context, storeID uuid.UUID) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(
			CASE WHEN transaction_type = 'credit' THEN amount - discount
			     ELSE -(amount - discount) END), 0)
		  FROM ledger_entries
		 WHERE store_id = ?`, storeID).Scan(&balance).Error
	return balance, err
}
