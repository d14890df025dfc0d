package service

import (
	"context"

	"marketrunner/internal/dto"
	"marketrunner/internal/model"
	"marketrunner/internal/repository"

	"github.com/google/uuid"
)

type ReturnService interface {
	// Create registers a store-initiated return request. Store and style
	// names are snapshotted onto the row so later reads survive catalog edits.
	Create(ctx context.Context, req dto.CreateReturnRequest) (*model.ReturnRequest, error)
	Get(ctx context.Context, id uuid.UUID) (*model.ReturnRequest, error)
	List(ctx context.Context, filter dto.ReturnFilter) ([]model.ReturnRequest, int64, error)
}

type returnService struct {
	returnRepo  repository.ReturnRepository
	storeRepo   repository.StoreRepository
	productRepo repository.ProductRepository
}

func NewReturnService(returnRepo repository.ReturnRepository, storeRepo repository.StoreRepository, productRepo repository.ProductRepository) ReturnService {
	return &returnService{returnRepo: returnRepo, storeRepo: storeRepo, productRepo: productRepo}
}

func (s *returnService) Create(ctx context.Context, req dto.CreateReturnRequest) (*model.ReturnRequest, error) {
	storeID, err := uuid.Parse(req.StoreID)
	if err != nil {
		return nil, errOf(KindUnknownReference, "invalid store id %q", req.StoreID)
	}
	store, err := s.storeRepo.FindByID(ctx, storeID)
	if err != nil {
		return nil, errOf(KindUnknownReference, "store %s not found", storeID)
	}

	styleName := req.StyleName
	if styleName == "" {
		if p, err := s.productRepo.FindByBarcode(ctx, req.Barcode); err == nil {
			styleName = p.StyleName
		}
	}

	rr := &model.ReturnRequest{
		StoreID:      storeID,
		StoreName:    store.Name,
		Barcode:      req.Barcode,
		StyleName:    styleName,
		Quantity:     req.Quantity,
		Reason:       req.Reason,
		ReturnAmount: req.ReturnAmount,
		Status:       model.ReturnPending,
	}
	if err := s.returnRepo.Create(ctx, rr); err != nil {
		return nil, err
	}
	return rr, nil
}

func (s *returnService) Get(ctx context.Context, id uuid.UUID) (*model.ReturnRequest, error) {
	rr, err := s.returnRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errOf(KindUnknownReference, "return request %s not found", id)
	}
	return rr, nil
}

func (s *returnService) List(ctx context.Context, filter dto.ReturnFilter) ([]model.ReturnRequest, int64, error) {
	return s.returnRepo.List(ctx, filter)
}
