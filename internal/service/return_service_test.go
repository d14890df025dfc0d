package service

import (
	"context"
	"errors"
	"testing"

	"marketrunner/internal/dto"
	"marketrunner/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateReturnSnapshotsNames(t *testing.T) {
	returnRepo := newStubReturnRepo()
	storeRepo := newStubStoreRepo()
	productRepo := newStubProductRepo()
	store := &model.Store{Name: "Store A", Active: true}
	require.NoError(t, storeRepo.Create(context.Background(), store))
	_ = productRepo.Create(context.Background(), &model.Product{
		Barcode: "B-1", StoreID: store.ID, StyleName: "linen shirt",
		CostPrice: decimal.NewFromInt(5),
	})
	svc := NewReturnService(returnRepo, storeRepo, productRepo)

	rr, err := svc.Create(context.Background(), dto.CreateReturnRequest{
		StoreID:  store.ID.String(),
		Barcode:  "B-1",
		Quantity: 2,
		Reason:   "seasonal rotation",
	})
	require.NoError(t, err)
	assert.Equal(t, "Store A", rr.StoreName)
	assert.Equal(t, "linen shirt", rr.StyleName)
	assert.Equal(t, model.ReturnPending, rr.Status)
}

func TestCreateReturnUncataloguedBarcode(t *testing.T) {
	returnRepo := newStubReturnRepo()
	storeRepo := newStubStoreRepo()
	store := &model.Store{Name: "Store A", Active: true}
	require.NoError(t, storeRepo.Create(context.Background(), store))
	svc := NewReturnService(returnRepo, storeRepo, newStubProductRepo())

	// The barcode never existed in the catalog; the caller-supplied style
	// name is all we get.
	rr, err := svc.Create(context.Background(), dto.CreateReturnRequest{
		StoreID:   store.ID.String(),
		Barcode:   "DISCONTINUED",
		StyleName: "last season coat",
		Quantity:  1,
		Reason:    "defective",
	})
	require.NoError(t, err)
	assert.Equal(t, "last season coat", rr.StyleName)
}

func TestCreateReturnUnknownStore(t *testing.T) {
	svc := NewReturnService(newStubReturnRepo(), newStubStoreRepo(), newStubProductRepo())

	_, err := svc.Create(context.Background(), dto.CreateReturnRequest{
		StoreID:  uuid.NewString(),
		Barcode:  "B-1",
		Quantity: 1,
		Reason:   "damaged",
	})
	var de *DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, KindUnknownReference, de.Kind)
}
