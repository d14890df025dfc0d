package service

import (
	"context"
	"errors"

	"marketrunner/internal/dto"
	"marketrunner/internal/model"
	"marketrunner/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderService interface {
	// Ingest registers one marketplace order with its demand lines. Every
	// barcode must exist in the catalog.
	Ingest(ctx context.Context, req dto.IngestOrderRequest) (*model.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context, filter dto.OrderFilter) ([]model.Order, int64, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
}

func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository) OrderService {
	return &orderService{orderRepo: orderRepo, productRepo: productRepo}
}

func (s *orderService) Ingest(ctx context.Context, req dto.IngestOrderRequest) (*model.Order, error) {
	barcodes := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		barcodes = append(barcodes, item.Barcode)
	}
	products, err := s.productRepo.FindByBarcodes(ctx, barcodes)
	if err != nil {
		return nil, err
	}
	for _, b := range barcodes {
		if _, ok := products[b]; !ok {
			return nil, errOf(KindUnknownReference, "barcode %s not in catalog", b)
		}
	}

	order := &model.Order{
		PlatformOrderID: req.PlatformOrderID,
		Items:           make([]model.OrderItem, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		order.Items = append(order.Items, model.OrderItem{
			Barcode:  item.Barcode,
			Quantity: item.Quantity,
			Status:   model.OrderItemPending,
		})
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errOf(KindConflict, "platform order %s already ingested", req.PlatformOrderID)
		}
		return nil, err
	}
	return order, nil
}

func (s *orderService) Get(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errOf(KindUnknownReference, "order %s not found", id)
	}
	return order, nil
}

func (s *orderService) List(ctx context.Context, filter dto.OrderFilter) ([]model.Order, int64, error) {
	return s.orderRepo.List(ctx, filter)
}
