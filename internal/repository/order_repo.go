package repository

import (
	"context"

	"marketrunner/internal/dto"
	"marketrunner/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context, filter dto.OrderFilter) ([]model.Order, int64, error)

	// ListPendingItems returns OrderItems in status=pending, optionally
	// narrowed to the given ids. Nil/empty ids means the whole pending pool.
	ListPendingItems(ctx context.Context, ids []uuid.UUID) ([]model.OrderItem, error)

	// MarkAssignedTx transitions the given items pending → assigned_to_run,
	// guarded by the current status. Returns the number of rows actually
	// updated so the caller can detect a concurrent assignment.
	MarkAssignedTx(tx *gorm.DB, itemIDs []uuid.UUID, runID uuid.UUID) (int64, error)

	// ItemsByBarcodeRunTx loads the OrderItems matching (barcode, run_id) —
	// the pickup RunItem ↔ OrderItem correspondence.
	ItemsByBarcodeRunTx(tx *gorm.DB, barcode string, runID uuid.UUID) ([]model.OrderItem, error)

	// UpdateStatusByBarcodeRunTx finalizes all items matching (barcode, run_id).
	UpdateStatusByBarcodeRunTx(tx *gorm.DB, barcode string, runID uuid.UUID, status string) error

	// RevertAssignedTx returns still-assigned items matching (barcode, run_id)
	// to the pending pool: status=pending, run_id=null.
	RevertAssignedTx(tx *gorm.DB, barcode string, runID uuid.UUID) (int64, error)

	// MarkShipped advances the picked items of one order in one run to
	// shipped after the marketplace acknowledged the shipment.
	MarkShipped(ctx context.Context, orderID, runID uuid.UUID) error

	DB() *gorm.DB
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) DB() *gorm.DB { return r.db }

func (r *orderRepo) Create(ctx context.Context, o *model.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&o, id).Error
	return &o, err
}

func (r *orderRepo) List(ctx context.Context, filter dto.OrderFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Order{})
	if filter.PlatformOrderID != "" {
		q = q.Where("platform_order_id = ?", filter.PlatformOrderID)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Items").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&orders).Error
	return orders, total, err
}

func (r *orderRepo) ListPendingItems(ctx context.Context, ids []uuid.UUID) ([]model.OrderItem, error) {
	var items []model.OrderItem
	q := r.db.WithContext(ctx).Where("status = ?", model.OrderItemPending)
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	err := q.Order("created_at ASC").Find(&items).Error
	return items, err
}

func (r *orderRepo) MarkAssignedTx(tx *gorm.DB, itemIDs []uuid.UUID, runID uuid.UUID) (int64, error) {
	res := tx.Model(&model.OrderItem{}).
		Where("id IN ? AND status = ?", itemIDs, model.OrderItemPending).
		Updates(map[string]interface{}{
			"status": model.OrderItemAssignedToRun,
			"run_id": runID,
		})
	return res.RowsAffected, res.Error
}

func (r *orderRepo) ItemsByBarcodeRunTx(tx *gorm.DB, barcode string, runID uuid.UUID) ([]model.OrderItem, error) {
	var items []model.OrderItem
	err := tx.Where("barcode = ? AND run_id = ?", barcode, runID).Find(&items).Error
	return items, err
}

func (r *orderRepo) UpdateStatusByBarcodeRunTx(tx *gorm.DB, barcode string, runID uuid.UUID, status string) error {
	return tx.Model(&model.OrderItem{}).
		Where("barcode = ? AND run_id = ?", barcode, runID).
		Update("status", status).Error
}

func (r *orderRepo) RevertAssignedTx(tx *gorm.DB, barcode string, runID uuid.UUID) (int64, error) {
	res := tx.Model(&model.OrderItem{}).
		Where("barcode = ? AND run_id = ? AND status = ?", barcode, runID, model.OrderItemAssignedToRun).
		Updates(map[string]interface{}{
			"status": model.OrderItemPending,
			"run_id": nil,
		})
	return res.RowsAffected, res.Error
}

func (r *orderRepo) MarkShipped(ctx context.Context, orderID, runID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.OrderItem{}).
		Where("order_id = ? AND run_id = ? AND status = ?", orderID, runID, model.OrderItemPicked).
		Update("status", model.OrderItemShipped).Error
}
