package service

import (
	"context"
	"errors"
	"testing"

	"marketrunner/internal/dto"
	"marketrunner/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestOrder(t *testing.T) {
	orderRepo := newStubOrderRepo()
	productRepo := newStubProductRepo()
	_ = productRepo.Create(context.Background(), &model.Product{
		Barcode: "B-1", StyleName: "shirt", CostPrice: decimal.NewFromInt(5),
	})
	svc := NewOrderService(orderRepo, productRepo)

	order, err := svc.Ingest(context.Background(), dto.IngestOrderRequest{
		PlatformOrderID: "PO-100",
		Items: []dto.OrderItemRequest{
			{Barcode: "B-1", Quantity: 3},
		},
	})
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, model.OrderItemPending, order.Items[0].Status)
	assert.Equal(t, 3, order.Items[0].Quantity)

	// Re-sending the same platform order conflicts instead of duplicating.
	_, err = svc.Ingest(context.Background(), dto.IngestOrderRequest{
		PlatformOrderID: "PO-100",
		Items:           []dto.OrderItemRequest{{Barcode: "B-1", Quantity: 3}},
	})
	var de *DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, KindConflict, de.Kind)
}

func TestIngestOrderUnknownBarcode(t *testing.T) {
	svc := NewOrderService(newStubOrderRepo(), newStubProductRepo())

	_, err := svc.Ingest(context.Background(), dto.IngestOrderRequest{
		PlatformOrderID: "PO-101",
		Items:           []dto.OrderItemRequest{{Barcode: "GHOST", Quantity: 1}},
	})
	var de *DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, KindUnknownReference, de.Kind)
}
