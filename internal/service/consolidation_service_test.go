package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"marketrunner/internal/dto"
	"marketrunner/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type consolidationFixture struct {
	runRepo     *stubRunRepo
	orderRepo   *stubOrderRepo
	returnRepo  *stubReturnRepo
	productRepo *stubProductRepo
	storeRepo   *stubStoreRepo
	svc         ConsolidationService
}

func newConsolidationFixture() *consolidationFixture {
	f := &consolidationFixture{
		runRepo:     newStubRunRepo(),
		orderRepo:   newStubOrderRepo(),
		returnRepo:  newStubReturnRepo(),
		productRepo: newStubProductRepo(),
		storeRepo:   newStubStoreRepo(),
	}
	f.svc = NewConsolidationService(f.orderRepo, f.returnRepo, f.productRepo, f.storeRepo, f.runRepo)
	return f
}

func (f *consolidationFixture) addStore(name string) *model.Store {
	s := &model.Store{Name: name, Active: true}
	_ = f.storeRepo.Create(context.Background(), s)
	return s
}

func (f *consolidationFixture) addProduct(barcode string, storeID uuid.UUID, cost int) *model.Product {
	p := &model.Product{
		Barcode:   barcode,
		StoreID:   storeID,
		StyleName: "style-" + barcode,
		Inventory: 100,
		CostPrice: decimal.NewFromInt(int64(cost)),
	}
	_ = f.productRepo.Create(context.Background(), p)
	return p
}

func (f *consolidationFixture) addOrder(platformID string, items ...model.OrderItem) *model.Order {
	o := &model.Order{PlatformOrderID: platformID, Items: items}
	_ = f.orderRepo.Create(context.Background(), o)
	return o
}

func TestConsolidateGroupsByStoreAndBarcode(t *testing.T) {
	f := newConsolidationFixture()
	store := f.addStore("Store A")
	f.addProduct("B-1", store.ID, 5)
	f.addProduct("B-2", store.ID, 3)

	// Two orders share barcode B-1: their quantities merge into one line.
	f.addOrder("PO-1",
		model.OrderItem{Barcode: "B-1", Quantity: 3, Status: model.OrderItemPending},
		model.OrderItem{Barcode: "B-2", Quantity: 1, Status: model.OrderItemPending},
	)
	f.addOrder("PO-2",
		model.OrderItem{Barcode: "B-1", Quantity: 2, Status: model.OrderItemPending},
	)

	resp, err := f.svc.Consolidate(context.Background(), dto.ConsolidateRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Runs, 1)

	run := resp.Runs[0]
	assert.Equal(t, 1, run.RunNumber)
	assert.Equal(t, 2, run.PickupLines)
	assert.Equal(t, 0, run.ReturnLines)
	assert.Equal(t, 6, run.TotalItems)
	assert.Equal(t, 1, run.TotalStores)
	assert.Equal(t, 2, run.TotalStyles)

	// Aggregated targets conserve the source quantities.
	items, err := f.runRepo.ItemsByRunTx(nil, uuid.MustParse(run.RunID))
	require.NoError(t, err)
	require.Len(t, items, 2)
	targets := map[string]int{}
	for _, item := range items {
		targets[item.Barcode] = item.TargetQty
		assert.Equal(t, model.RunItemPending, item.Status)
		assert.Equal(t, store.ID, item.StoreID)
		assert.Equal(t, "Store A", item.StoreName)
	}
	assert.Equal(t, 5, targets["B-1"])
	assert.Equal(t, 1, targets["B-2"])

	// Every source item is claimed for the run.
	pending, err := f.orderRepo.ListPendingItems(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestConsolidateReturnLinesStayOnePerRequest(t *testing.T) {
	f := newConsolidationFixture()
	store := f.addStore("Store A")

	// Two requests for the same barcode must not merge — each run item keeps
	// its original_return_id link.
	for i := 0; i < 2; i++ {
		require.NoError(t, f.returnRepo.Create(context.Background(), &model.ReturnRequest{
			StoreID:   store.ID,
			StoreName: store.Name,
			Barcode:   "B-RET",
			StyleName: "old style",
			Quantity:  2,
			Status:    model.ReturnPending,
		}))
	}

	resp, err := f.svc.Consolidate(context.Background(), dto.ConsolidateRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Runs, 1)
	assert.Equal(t, 2, resp.Runs[0].ReturnLines)
	assert.True(t, hasReturnsFlag(t, f, resp.Runs[0].RunID))

	items, _ := f.runRepo.ItemsByRunTx(nil, uuid.MustParse(resp.Runs[0].RunID))
	require.Len(t, items, 2)
	seen := map[uuid.UUID]bool{}
	for _, item := range items {
		require.NotNil(t, item.OriginalReturnID)
		assert.False(t, seen[*item.OriginalReturnID], "return id reused across items")
		seen[*item.OriginalReturnID] = true
		rr, err := f.returnRepo.FindByID(context.Background(), *item.OriginalReturnID)
		require.NoError(t, err)
		assert.Equal(t, model.ReturnAssignedToRun, rr.Status)
		require.NotNil(t, rr.RunNumber)
		assert.Equal(t, resp.Runs[0].RunNumber, *rr.RunNumber)
	}
}

func hasReturnsFlag(t *testing.T, f *consolidationFixture, runID string) bool {
	t.Helper()
	run, err := f.runRepo.FindByID(context.Background(), uuid.MustParse(runID))
	require.NoError(t, err)
	return run.HasReturns
}

func TestConsolidateChunksAtLineBound(t *testing.T) {
	f := newConsolidationFixture()
	store := f.addStore("Store A")

	// 620 distinct barcodes become 620 lines: one full run of 500 plus a
	// remainder run of 120.
	items := make([]model.OrderItem, 0, 620)
	for i := 0; i < 620; i++ {
		barcode := fmt.Sprintf("B-%04d", i)
		f.addProduct(barcode, store.ID, 1)
		items = append(items, model.OrderItem{Barcode: barcode, Quantity: 1, Status: model.OrderItemPending})
	}
	f.addOrder("PO-BIG", items...)

	resp, err := f.svc.Consolidate(context.Background(), dto.ConsolidateRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Runs, 2)
	assert.Equal(t, 500, resp.Runs[0].PickupLines)
	assert.Equal(t, 120, resp.Runs[1].PickupLines)
	assert.Equal(t, 1, resp.Runs[0].RunNumber)
	assert.Equal(t, 2, resp.Runs[1].RunNumber)

	total := 0
	for _, run := range resp.Runs {
		assert.LessOrEqual(t, run.PickupLines+run.ReturnLines, 500)
		total += run.TotalItems
	}
	assert.Equal(t, 620, total)
}

func TestConsolidateNoEligibleDemand(t *testing.T) {
	f := newConsolidationFixture()

	_, err := f.svc.Consolidate(context.Background(), dto.ConsolidateRequest{})
	var de *DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, KindNoEligibleDemand, de.Kind)
}

func TestConsolidateRejectsStaleSelection(t *testing.T) {
	f := newConsolidationFixture()
	store := f.addStore("Store A")
	f.addProduct("B-1", store.ID, 5)
	order := f.addOrder("PO-1", model.OrderItem{Barcode: "B-1", Quantity: 1, Status: model.OrderItemPending})

	// First consolidation claims the item.
	_, err := f.svc.Consolidate(context.Background(), dto.ConsolidateRequest{})
	require.NoError(t, err)

	// An operator working from a stale screen selects the same item.
	_, err = f.svc.Consolidate(context.Background(), dto.ConsolidateRequest{
		OrderItemIDs: []string{order.Items[0].ID.String()},
	})
	var de *DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, KindConflictingAssignment, de.Kind)
}

func TestConsolidateUnknownBarcode(t *testing.T) {
	f := newConsolidationFixture()
	f.addOrder("PO-1", model.OrderItem{Barcode: "GHOST", Quantity: 1, Status: model.OrderItemPending})

	_, err := f.svc.Consolidate(context.Background(), dto.ConsolidateRequest{})
	var de *DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, KindUnknownReference, de.Kind)
}

func TestConsolidateCreatesDraftRuns(t *testing.T) {
	f := newConsolidationFixture()
	store := f.addStore("Store A")
	f.addProduct("B-1", store.ID, 5)
	f.addOrder("PO-1", model.OrderItem{Barcode: "B-1", Quantity: 1, Status: model.OrderItemPending})

	resp, err := f.svc.Consolidate(context.Background(), dto.ConsolidateRequest{})
	require.NoError(t, err)

	run, err := f.runRepo.FindByID(context.Background(), uuid.MustParse(resp.Runs[0].RunID))
	require.NoError(t, err)
	assert.Equal(t, model.RunDraft, run.Status)
	assert.False(t, run.HasReturns)
}
