package repository

import (
	"context"

	"marketrunner/internal/dto"
	"marketrunner/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReturnRepository interface {
	Create(ctx context.Context, rr *model.ReturnRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ReturnRequest, error)
	List(ctx context.Context, filter dto.ReturnFilter) ([]model.ReturnRequest, int64, error)

	// ListPending returns pending requests, optionally narrowed to ids.
	ListPending(ctx context.Context, ids []uuid.UUID) ([]model.ReturnRequest, error)

	// MarkAssignedTx transitions the given requests pending → assigned_to_run,
	// guarded by the current status; reports rows actually updated.
	MarkAssignedTx(tx *gorm.DB, ids []uuid.UUID, runID uuid.UUID, runNumber int) (int64, error)

	// FinalizeTx sets processed/rejected when the store visit closes.
	FinalizeTx(tx *gorm.DB, id uuid.UUID, status string) error

	// RevertAssignedTx returns one still-assigned request to the pending
	// pool: status=pending, run_id=null, run_number=null.
	RevertAssignedTx(tx *gorm.DB, id uuid.UUID) (int64, error)
}

type returnRepo struct{ db *gorm.DB }

func NewReturnRepository(db *gorm.DB) ReturnRepository { return &returnRepo{db: db} }

func (r *returnRepo) Create(ctx context.Context, rr *model.ReturnRequest) error {
	return r.db.WithContext(ctx).Create(rr).Error
}

func (r *returnRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ReturnRequest, error) {
	var rr model.ReturnRequest
	err := r.db.WithContext(ctx).First(&rr, id).Error
	return &rr, err
}

func (r *returnRepo) List(ctx context.Context, filter dto.ReturnFilter) ([]model.ReturnRequest, int64, error) {
	var returns []model.ReturnRequest
	var total int64

	q := r.db.WithContext(ctx).Model(&model.ReturnRequest{})
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.StoreID != "" {
		q = q.Where("store_id = ?", filter.StoreID)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&returns).Error
	return returns, total, err
}

func (r *returnRepo) ListPending(ctx context.Context, ids []uuid.UUID) ([]model.ReturnRequest, error) {
	var returns []model.ReturnRequest
	q := r.db.WithContext(ctx).Where("status = ?", model.ReturnPending)
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	err := q.Order("created_at ASC").Find(&returns).Error
	return returns, err
}

func (r *returnRepo) MarkAssignedTx(tx *gorm.DB, ids []uuid.UUID, runID uuid.UUID, runNumber int) (int64, error) {
	res := tx.Model(&model.ReturnRequest{}).
		Where("id IN ? AND status = ?", ids, model.ReturnPending).
		Updates(map[string]interface{}{
			"status":     model.ReturnAssignedToRun,
			"run_id":     runID,
			"run_number": runNumber,
		})
	return res.RowsAffected, res.Error
}

func (r *returnRepo) FinalizeTx(tx *gorm.DB, id uuid.UUID, status string) error {
	return tx.Model(&model.ReturnRequest{}).Where("id = ?", id).Update("status", status).Error
}

func (r *returnRepo) RevertAssignedTx(tx *gorm.DB, id uuid.UUID) (int64, error) {
	res := tx.Model(&model.ReturnRequest{}).
		Where("id = ? AND status = ?", id, model.ReturnAssignedToRun).
		Updates(map[string]interface{}{
			"status":     model.ReturnPending,
			"run_id":     nil,
			"run_number": nil,
		})
	return res.RowsAffected, res.Error
}
