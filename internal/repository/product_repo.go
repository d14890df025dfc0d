package repository

import (
	"context"

	"marketrunner/internal/model"

	"gorm.io/gorm"
)

// ProductRepository defines the data access contract for the catalog.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByBarcode(ctx context.Context, barcode string) (*model.Product, error)
	// FindByBarcodes resolves a batch in one query — the planner calls this
	// once per consolidation instead of once per order line.
	FindByBarcodes(ctx context.Context, barcodes []string) (map[string]model.Product, error)

	// AdjustInventoryTx shifts inventory by delta inside a transaction:
	// negative on shipped pickups, positive on accepted returns.
	AdjustInventoryTx(tx *gorm.DB, barcode string, delta int) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByBarcode(ctx context.Context, barcode string) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("barcode = ?", barcode).First(&p).Error
	return &p, err
}

func (r *productRepo) FindByBarcodes(ctx context.Context, barcodes []string) (map[string]model.Product, error) {
	var products []model.Product
	if err := r.db.WithContext(ctx).Where("barcode IN ?", barcodes).Find(&products).Error; err != nil {
		return nil, err
	}
	out := make(map[string]model.Product, len(products))
	for _, p := range products {
		out[p.Barcode] = p
	}
	return out, nil
}

func (r *productRepo) AdjustInventoryTx(tx *gorm.DB, barcode string, delta int) error {
	return tx.Model(&model.Product{}).Where("barcode = ?", barcode).
		Update("inventory", gorm.Expr("inventory + ?", delta)).Error
}

func (r *productRepo) DB() *gorm.DB { return r.db }
