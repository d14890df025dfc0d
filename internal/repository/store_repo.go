package repository

import (
	"context"

	"marketrunner/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StoreRepository interface {
	Create(ctx context.Context, s *model.Store) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Store, error)
	// FindByIDs resolves a batch of store names in one query.
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Store, error)
	List(ctx context.Context) ([]model.Store, error)
}

type storeRepo struct{ db *gorm.DB }

func NewStoreRepository(db *gorm.DB) StoreRepository { return &storeRepo{db: db} }

func (r *storeRepo) Create(ctx context.Context, s *model.Store) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *storeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Store, error) {
	var s model.Store
	err := r.db.WithContext(ctx).First(&s, id).Error
	return &s, err
}

func (r *storeRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Store, error) {
	var stores []model.Store
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&stores).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]model.Store, len(stores))
	for _, s := range stores {
		out[s.ID] = s
	}
	return out, nil
}

func (r *storeRepo) List(ctx context.Context) ([]model.Store, error) {
	var stores []model.Store
	err := r.db.WithContext(ctx).Where("active = true").Order("name ASC").Find(&stores).Error
	return stores, err
}
