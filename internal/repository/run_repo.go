package repository

import (
	"context"

	"marketrunner/internal/dto"
	"marketrunner/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RunRepository interface {
	// NextRunNumber allocates the next run number from a dedicated Postgres
	// sequence — atomic across concurrent consolidations.
	NextRunNumber(ctx context.Context, tx *gorm.DB) (int, error)

	CreateTx(tx *gorm.DB, run *model.Run) error
	CreateItemsTx(tx *gorm.DB, items []model.RunItem) error

	FindByID(ctx context.Context, id uuid.UUID) (*model.Run, error)
	List(ctx context.Context, filter dto.RunFilter) ([]model.Run, int64, error)

	// Activate flips draft → active, guarded by the current status.
	Activate(ctx context.Context, id uuid.UUID, runnerID *uuid.UUID) (int64, error)
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error

	FindItem(ctx context.Context, itemID uuid.UUID) (*model.RunItem, error)
	ItemsByRunTx(tx *gorm.DB, runID uuid.UUID) ([]model.RunItem, error)
	ItemsByRunStoreTx(tx *gorm.DB, runID, storeID uuid.UUID) ([]model.RunItem, error)
	UpdateItemStatusTx(tx *gorm.DB, itemID uuid.UUID, status string, pickedQty int) error

	// AdjustItemQty applies the clamped delta atomically in SQL and returns
	// the resulting picked quantity. The read-modify-write happens inside
	// one UPDATE, so concurrent taps cannot lose updates.
	AdjustItemQty(ctx context.Context, itemID uuid.UUID, delta, slack int) (int, error)

	// SetItemUnavailable zeroes the picked quantity and marks not_found.
	SetItemUnavailable(ctx context.Context, itemID uuid.UUID) error

	// CountOpenItemsTx counts items not yet in a terminal status — zero
	// means the run may close.
	CountOpenItemsTx(tx *gorm.DB, runID uuid.UUID) (int64, error)

	DB() *gorm.DB
}

type runRepo struct{ db *gorm.DB }

func NewRunRepository(db *gorm.DB) RunRepository { return &runRepo{db: db} }

func (r *runRepo) DB() *gorm.DB { return r.db }

func (r *runRepo) NextRunNumber(ctx context.Context, tx *gorm.DB) (int, error) {
	var num int
	err := tx.WithContext(ctx).Raw("SELECT nextval('runs_run_number_seq')").Scan(&num).Error
	return num, err
}

func (r *runRepo) CreateTx(tx *gorm.DB, run *model.Run) error {
	return tx.Create(run).Error
}

func (r *runRepo) CreateItemsTx(tx *gorm.DB, items []model.RunItem) error {
	return tx.Create(&items).Error
}

func (r *runRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Run, error) {
	var run model.Run
	err := r.db.WithContext(ctx).Preload("Items").First(&run, id).Error
	return &run, err
}

func (r *runRepo) List(ctx context.Context, filter dto.RunFilter) ([]model.Run, int64, error) {
	var runs []model.Run
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Run{})
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.RunnerID != "" {
		q = q.Where("runner_id = ?", filter.RunnerID)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("run_number DESC").Offset(offset).Limit(filter.Limit).Find(&runs).Error
	return runs, total, err
}

func (r *runRepo) Activate(ctx context.Context, id uuid.UUID, runnerID *uuid.UUID) (int64, error) {
	updates := map[string]interface{}{"status": model.RunActive}
	if runnerID != nil {
		updates["runner_id"] = *runnerID
	}
	res := r.db.WithContext(ctx).Model(&model.Run{}).
		Where("id = ? AND status = ?", id, model.RunDraft).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *runRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error {
	return tx.Model(&model.Run{}).Where("id = ?", id).Update("status", status).Error
}

func (r *runRepo) FindItem(ctx context.Context, itemID uuid.UUID) (*model.RunItem, error) {
	var item model.RunItem
	err := r.db.WithContext(ctx).First(&item, itemID).Error
	return &item, err
}

func (r *runRepo) ItemsByRunTx(tx *gorm.DB, runID uuid.UUID) ([]model.RunItem, error) {
	var items []model.RunItem
	err := tx.Where("run_id = ?", runID).Order("created_at ASC").Find(&items).Error
	return items, err
}

func (r *runRepo) ItemsByRunStoreTx(tx *gorm.DB, runID, storeID uuid.UUID) ([]model.RunItem, error) {
	var items []model.RunItem
	err := tx.Where("run_id = ? AND store_id = ?", runID, storeID).Order("created_at ASC").Find(&items).Error
	return items, err
}

func (r *runRepo) UpdateItemStatusTx(tx *gorm.DB, itemID uuid.UUID, status string, pickedQty int) error {
	return tx.Model(&model.RunItem{}).Where("id = ?", itemID).Updates(map[string]interface{}{
		"status":     status,
		"picked_qty": pickedQty,
	}).Error
}

func (r *runRepo) AdjustItemQty(ctx context.Context, itemID uuid.UUID, delta, slack int) (int, error) {
	var qty int
	err := r.db.WithContext(ctx).Raw(`
		UPDATE run_items
		   SET picked_qty = LEAST(GREATEST(picked_qty + ?, 0), target_qty + ?),
		       updated_at = now()
		 WHERE id = ?
		 RETURNING picked_qty`, delta, slack, itemID).Scan(&qty).Error
	return qty, err
}

func (r *runRepo) SetItemUnavailable(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.RunItem{}).Where("id = ?", itemID).
		Updates(map[string]interface{}{
			"picked_qty": 0,
			"status":     model.RunItemNotFound,
		}).Error
}

func (r *runRepo) CountOpenItemsTx(tx *gorm.DB, runID uuid.UUID) (int64, error) {
	var count int64
	err := tx.Model(&model.RunItem{}).
		Where("run_id = ? AND status NOT IN ?", runID, []string{
			model.RunItemPicked, model.RunItemReturned, model.RunItemNotFound, model.RunItemCancelled,
		}).
		Count(&count).Error
	return count, err
}
