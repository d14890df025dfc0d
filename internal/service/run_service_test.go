package service

import (
	"context"
	"errors"
	"testing"

	"marketrunner/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type runFixture struct {
	runRepo    *stubRunRepo
	orderRepo  *stubOrderRepo
	returnRepo *stubReturnRepo
	svc        RunService
}

func newRunFixture() *runFixture {
	f := &runFixture{
		runRepo:    newStubRunRepo(),
		orderRepo:  newStubOrderRepo(),
		returnRepo: newStubReturnRepo(),
	}
	f.svc = NewRunService(f.runRepo, f.orderRepo, f.returnRepo)
	return f
}

func TestActivateDraftRun(t *testing.T) {
	f := newRunFixture()
	run := &model.Run{RunNumber: 1, Status: model.RunDraft}
	require.NoError(t, f.runRepo.CreateTx(nil, run))

	courier := uuid.New()
	require.NoError(t, f.svc.Activate(context.Background(), run.ID, &courier))

	got, _ := f.runRepo.FindByID(context.Background(), run.ID)
	assert.Equal(t, model.RunActive, got.Status)
	require.NotNil(t, got.RunnerID)
	assert.Equal(t, courier, *got.RunnerID)
}

func TestActivateNonDraftConflicts(t *testing.T) {
	f := newRunFixture()
	run := &model.Run{RunNumber: 1, Status: model.RunActive}
	require.NoError(t, f.runRepo.CreateTx(nil, run))

	err := f.svc.Activate(context.Background(), run.ID, nil)
	var de *DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, KindConflict, de.Kind)
}

func TestActivateUnknownRun(t *testing.T) {
	f := newRunFixture()

	err := f.svc.Activate(context.Background(), uuid.New(), nil)
	var de *DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, KindUnknownReference, de.Kind)
}

// cancelFixture builds an active run holding one picked pickup line, one
// unpicked pickup line backed by an assigned order item, and one unpicked
// return line backed by an assigned request.
func cancelFixture(t *testing.T, withPick bool) (*runFixture, *model.Run, *model.OrderItem, *model.ReturnRequest) {
	t.Helper()
	f := newRunFixture()
	run := &model.Run{RunNumber: 7, Status: model.RunActive}
	require.NoError(t, f.runRepo.CreateTx(nil, run))
	rid := run.ID

	order := &model.Order{PlatformOrderID: "PO-1", Items: []model.OrderItem{
		{Barcode: "B-OPEN", Quantity: 2, Status: model.OrderItemAssignedToRun},
	}}
	require.NoError(t, f.orderRepo.Create(context.Background(), order))
	f.orderRepo.items[0].RunID = &rid

	ret := &model.ReturnRequest{
		StoreID: uuid.New(), StoreName: "Store A", Barcode: "B-RET", Quantity: 1,
		Status: model.ReturnAssignedToRun, RunID: &rid,
	}
	num := run.RunNumber
	ret.RunNumber = &num
	require.NoError(t, f.returnRepo.Create(context.Background(), ret))

	storeID := uuid.New()
	if withPick {
		require.NoError(t, f.runRepo.CreateItemsTx(nil, []model.RunItem{{
			RunID: run.ID, Type: model.RunItemPickup, Barcode: "B-DONE",
			StoreID: storeID, TargetQty: 3, PickedQty: 3, Status: model.RunItemPending,
		}}))
	}
	require.NoError(t, f.runRepo.CreateItemsTx(nil, []model.RunItem{
		{
			RunID: run.ID, Type: model.RunItemPickup, Barcode: "B-OPEN",
			StoreID: storeID, TargetQty: 2, Status: model.RunItemPending,
		},
		{
			RunID: run.ID, Type: model.RunItemReturn, Barcode: "B-RET",
			StoreID: ret.StoreID, TargetQty: 1, Status: model.RunItemPending,
			OriginalReturnID: &ret.ID,
		},
	}))
	return f, run, f.orderRepo.items[0], ret
}

func TestCancelRunWithPicksClosesCompleted(t *testing.T) {
	f, run, orderItem, ret := cancelFixture(t, true)

	resp, err := f.svc.CancelRuns(context.Background(), []uuid.UUID{run.ID})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)

	result := resp.Results[0]
	assert.Empty(t, result.Error)
	assert.Equal(t, model.RunCompleted, result.Status)
	assert.Equal(t, 1, result.PickedCount)
	assert.Equal(t, 2, result.RevertedCount)

	// Unpicked sources go back to the pending pool.
	assert.Equal(t, model.OrderItemPending, orderItem.Status)
	assert.Nil(t, orderItem.RunID)
	got, _ := f.returnRepo.FindByID(context.Background(), ret.ID)
	assert.Equal(t, model.ReturnPending, got.Status)
	assert.Nil(t, got.RunID)
	assert.Nil(t, got.RunNumber)

	// The picked item is left untouched.
	items, _ := f.runRepo.ItemsByRunTx(nil, run.ID)
	for _, item := range items {
		if item.Barcode == "B-DONE" {
			assert.Equal(t, 3, item.PickedQty)
			assert.NotEqual(t, model.RunItemCancelled, item.Status)
		} else {
			assert.Equal(t, model.RunItemCancelled, item.Status)
		}
	}
}

func TestCancelRunWithoutPicksCancels(t *testing.T) {
	f, run, orderItem, ret := cancelFixture(t, false)

	resp, err := f.svc.CancelRuns(context.Background(), []uuid.UUID{run.ID})
	require.NoError(t, err)

	result := resp.Results[0]
	assert.Equal(t, model.RunCancelled, result.Status)
	assert.Equal(t, 0, result.PickedCount)
	assert.Equal(t, 2, result.RevertedCount)

	gotRun, _ := f.runRepo.FindByID(context.Background(), run.ID)
	assert.Equal(t, model.RunCancelled, gotRun.Status)
	assert.Equal(t, model.OrderItemPending, orderItem.Status)
	gotRet, _ := f.returnRepo.FindByID(context.Background(), ret.ID)
	assert.Equal(t, model.ReturnPending, gotRet.Status)
}

func TestCancelRunRevertsNotFoundSources(t *testing.T) {
	f := newRunFixture()
	run := &model.Run{RunNumber: 9, Status: model.RunActive}
	require.NoError(t, f.runRepo.CreateTx(nil, run))
	rid := run.ID

	order := &model.Order{PlatformOrderID: "PO-2", Items: []model.OrderItem{
		{Barcode: "B-GONE", Quantity: 1, Status: model.OrderItemAssignedToRun},
	}}
	require.NoError(t, f.orderRepo.Create(context.Background(), order))
	f.orderRepo.items[0].RunID = &rid

	// The courier flagged the line unavailable but the visit never settled,
	// so the order item is still claimed by the run.
	require.NoError(t, f.runRepo.CreateItemsTx(nil, []model.RunItem{{
		RunID: run.ID, Type: model.RunItemPickup, Barcode: "B-GONE",
		StoreID: uuid.New(), TargetQty: 1, PickedQty: 0, Status: model.RunItemNotFound,
	}}))

	resp, err := f.svc.CancelRuns(context.Background(), []uuid.UUID{run.ID})
	require.NoError(t, err)

	result := resp.Results[0]
	assert.Empty(t, result.Error)
	assert.Equal(t, model.RunCancelled, result.Status)
	assert.Equal(t, 0, result.PickedCount)
	assert.Equal(t, 1, result.RevertedCount)

	orderItem := f.orderRepo.items[0]
	assert.Equal(t, model.OrderItemPending, orderItem.Status)
	assert.Nil(t, orderItem.RunID)
}

func TestCancelRunsBatchIsIndependent(t *testing.T) {
	f, run, _, _ := cancelFixture(t, false)

	done := &model.Run{RunNumber: 8, Status: model.RunCompleted}
	require.NoError(t, f.runRepo.CreateTx(nil, done))
	missing := uuid.New()

	resp, err := f.svc.CancelRuns(context.Background(), []uuid.UUID{missing, done.ID, run.ID})
	require.NoError(t, err)
	require.Len(t, resp.Results, 3)

	assert.Equal(t, "run not found", resp.Results[0].Error)
	assert.NotEmpty(t, resp.Results[1].Error)
	assert.Equal(t, model.RunCompleted, resp.Results[1].Status)

	// The valid run still cancels despite earlier failures.
	assert.Empty(t, resp.Results[2].Error)
	assert.Equal(t, model.RunCancelled, resp.Results[2].Status)
}
