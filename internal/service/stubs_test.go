package service

import (
	"context"
	"time"

	"marketrunner/internal/dto"
	"marketrunner/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────
// In-memory repository implementations. DB() returns nil so runTx invokes the
// body directly instead of opening a transaction.

// stubRunRepo backs RunRepository with maps and an ordered item slice.
type stubRunRepo struct {
	runs    map[uuid.UUID]*model.Run
	items   []*model.RunItem
	nextSeq int
}

func newStubRunRepo() *stubRunRepo {
	return &stubRunRepo{runs: make(map[uuid.UUID]*model.Run)}
}

func (r *stubRunRepo) DB() *gorm.DB { return nil }

func (r *stubRunRepo) NextRunNumber(_ context.Context, _ *gorm.DB) (int, error) {
	r.nextSeq++
	return r.nextSeq, nil
}

func (r *stubRunRepo) CreateTx(_ *gorm.DB, run *model.Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	r.runs[run.ID] = run
	return nil
}

func (r *stubRunRepo) CreateItemsTx(_ *gorm.DB, items []model.RunItem) error {
	for i := range items {
		item := items[i]
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		r.items = append(r.items, &item)
	}
	return nil
}

func (r *stubRunRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Run, error) {
	run, ok := r.runs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return run, nil
}

func (r *stubRunRepo) List(_ context.Context, _ dto.RunFilter) ([]model.Run, int64, error) {
	out := make([]model.Run, 0, len(r.runs))
	for _, run := range r.runs {
		out = append(out, *run)
	}
	return out, int64(len(out)), nil
}

func (r *stubRunRepo) Activate(_ context.Context, id uuid.UUID, runnerID *uuid.UUID) (int64, error) {
	run, ok := r.runs[id]
	if !ok || run.Status != model.RunDraft {
		return 0, nil
	}
	run.Status = model.RunActive
	run.RunnerID = runnerID
	return 1, nil
}

func (r *stubRunRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status string) error {
	run, ok := r.runs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	run.Status = status
	return nil
}

func (r *stubRunRepo) FindItem(_ context.Context, itemID uuid.UUID) (*model.RunItem, error) {
	for _, item := range r.items {
		if item.ID == itemID {
			cp := *item
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubRunRepo) ItemsByRunTx(_ *gorm.DB, runID uuid.UUID) ([]model.RunItem, error) {
	var out []model.RunItem
	for _, item := range r.items {
		if item.RunID == runID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *stubRunRepo) ItemsByRunStoreTx(_ *gorm.DB, runID, storeID uuid.UUID) ([]model.RunItem, error) {
	var out []model.RunItem
	for _, item := range r.items {
		if item.RunID == runID && item.StoreID == storeID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *stubRunRepo) UpdateItemStatusTx(_ *gorm.DB, itemID uuid.UUID, status string, pickedQty int) error {
	for _, item := range r.items {
		if item.ID == itemID {
			item.Status = status
			item.PickedQty = pickedQty
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubRunRepo) AdjustItemQty(_ context.Context, itemID uuid.UUID, delta, slack int) (int, error) {
	for _, item := range r.items {
		if item.ID != itemID {
			continue
		}
		qty := item.PickedQty + delta
		if qty < 0 {
			qty = 0
		}
		if max := item.TargetQty + slack; qty > max {
			qty = max
		}
		item.PickedQty = qty
		return qty, nil
	}
	return 0, gorm.ErrRecordNotFound
}

func (r *stubRunRepo) SetItemUnavailable(_ context.Context, itemID uuid.UUID) error {
	for _, item := range r.items {
		if item.ID == itemID {
			item.PickedQty = 0
			item.Status = model.RunItemNotFound
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubRunRepo) CountOpenItemsTx(_ *gorm.DB, runID uuid.UUID) (int64, error) {
	var open int64
	for _, item := range r.items {
		if item.RunID == runID && !item.Terminal() {
			open++
		}
	}
	return open, nil
}

// stubOrderRepo backs OrderRepository.
type stubOrderRepo struct {
	orders map[uuid.UUID]*model.Order
	byPlat map[string]uuid.UUID
	items  []*model.OrderItem
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{
		orders: make(map[uuid.UUID]*model.Order),
		byPlat: make(map[string]uuid.UUID),
	}
}

func (r *stubOrderRepo) DB() *gorm.DB { return nil }

func (r *stubOrderRepo) Create(_ context.Context, o *model.Order) error {
	if _, dup := r.byPlat[o.PlatformOrderID]; dup {
		return gorm.ErrDuplicatedKey
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	for i := range o.Items {
		if o.Items[i].ID == uuid.Nil {
			o.Items[i].ID = uuid.New()
		}
		o.Items[i].OrderID = o.ID
		item := o.Items[i]
		r.items = append(r.items, &item)
	}
	r.orders[o.ID] = o
	r.byPlat[o.PlatformOrderID] = o.ID
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (r *stubOrderRepo) List(_ context.Context, _ dto.OrderFilter) ([]model.Order, int64, error) {
	out := make([]model.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (r *stubOrderRepo) ListPendingItems(_ context.Context, ids []uuid.UUID) ([]model.OrderItem, error) {
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []model.OrderItem
	for _, item := range r.items {
		if item.Status != model.OrderItemPending {
			continue
		}
		if len(ids) > 0 && !want[item.ID] {
			continue
		}
		out = append(out, *item)
	}
	return out, nil
}

func (r *stubOrderRepo) MarkAssignedTx(_ *gorm.DB, itemIDs []uuid.UUID, runID uuid.UUID) (int64, error) {
	want := make(map[uuid.UUID]bool, len(itemIDs))
	for _, id := range itemIDs {
		want[id] = true
	}
	var affected int64
	for _, item := range r.items {
		if want[item.ID] && item.Status == model.OrderItemPending {
			item.Status = model.OrderItemAssignedToRun
			id := runID
			item.RunID = &id
			affected++
		}
	}
	return affected, nil
}

func (r *stubOrderRepo) ItemsByBarcodeRunTx(_ *gorm.DB, barcode string, runID uuid.UUID) ([]model.OrderItem, error) {
	var out []model.OrderItem
	for _, item := range r.items {
		if item.Barcode == barcode && item.RunID != nil && *item.RunID == runID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *stubOrderRepo) UpdateStatusByBarcodeRunTx(_ *gorm.DB, barcode string, runID uuid.UUID, status string) error {
	for _, item := range r.items {
		if item.Barcode == barcode && item.RunID != nil && *item.RunID == runID {
			item.Status = status
		}
	}
	return nil
}

func (r *stubOrderRepo) RevertAssignedTx(_ *gorm.DB, barcode string, runID uuid.UUID) (int64, error) {
	var affected int64
	for _, item := range r.items {
		if item.Barcode == barcode && item.RunID != nil && *item.RunID == runID &&
			item.Status == model.OrderItemAssignedToRun {
			item.Status = model.OrderItemPending
			item.RunID = nil
			affected++
		}
	}
	return affected, nil
}

func (r *stubOrderRepo) MarkShipped(_ context.Context, orderID, runID uuid.UUID) error {
	for _, item := range r.items {
		if item.OrderID == orderID && item.RunID != nil && *item.RunID == runID &&
			item.Status == model.OrderItemPicked {
			item.Status = model.OrderItemShipped
		}
	}
	return nil
}

// stubReturnRepo backs ReturnRepository.
type stubReturnRepo struct {
	returns map[uuid.UUID]*model.ReturnRequest
	order   []uuid.UUID
}

func newStubReturnRepo() *stubReturnRepo {
	return &stubReturnRepo{returns: make(map[uuid.UUID]*model.ReturnRequest)}
}

func (r *stubReturnRepo) Create(_ context.Context, rr *model.ReturnRequest) error {
	if rr.ID == uuid.Nil {
		rr.ID = uuid.New()
	}
	r.returns[rr.ID] = rr
	r.order = append(r.order, rr.ID)
	return nil
}

func (r *stubReturnRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ReturnRequest, error) {
	rr, ok := r.returns[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return rr, nil
}

func (r *stubReturnRepo) List(_ context.Context, _ dto.ReturnFilter) ([]model.ReturnRequest, int64, error) {
	out := make([]model.ReturnRequest, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.returns[id])
	}
	return out, int64(len(out)), nil
}

func (r *stubReturnRepo) ListPending(_ context.Context, ids []uuid.UUID) ([]model.ReturnRequest, error) {
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []model.ReturnRequest
	for _, id := range r.order {
		rr := r.returns[id]
		if rr.Status != model.ReturnPending {
			continue
		}
		if len(ids) > 0 && !want[rr.ID] {
			continue
		}
		out = append(out, *rr)
	}
	return out, nil
}

func (r *stubReturnRepo) MarkAssignedTx(_ *gorm.DB, ids []uuid.UUID, runID uuid.UUID, runNumber int) (int64, error) {
	var affected int64
	for _, id := range ids {
		rr, ok := r.returns[id]
		if !ok || rr.Status != model.ReturnPending {
			continue
		}
		rr.Status = model.ReturnAssignedToRun
		rid := runID
		rr.RunID = &rid
		num := runNumber
		rr.RunNumber = &num
		affected++
	}
	return affected, nil
}

func (r *stubReturnRepo) FinalizeTx(_ *gorm.DB, id uuid.UUID, status string) error {
	rr, ok := r.returns[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	rr.Status = status
	return nil
}

func (r *stubReturnRepo) RevertAssignedTx(_ *gorm.DB, id uuid.UUID) (int64, error) {
	rr, ok := r.returns[id]
	if !ok || rr.Status != model.ReturnAssignedToRun {
		return 0, nil
	}
	rr.Status = model.ReturnPending
	rr.RunID = nil
	rr.RunNumber = nil
	return 1, nil
}

// stubProductRepo backs ProductRepository, keyed by barcode.
type stubProductRepo struct {
	products map[string]*model.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[string]*model.Product)}
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.Barcode] = p
	return nil
}

func (r *stubProductRepo) FindByBarcode(_ context.Context, barcode string) (*model.Product, error) {
	p, ok := r.products[barcode]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductRepo) FindByBarcodes(_ context.Context, barcodes []string) (map[string]model.Product, error) {
	out := make(map[string]model.Product, len(barcodes))
	for _, b := range barcodes {
		if p, ok := r.products[b]; ok {
			out[b] = *p
		}
	}
	return out, nil
}

func (r *stubProductRepo) AdjustInventoryTx(_ *gorm.DB, barcode string, delta int) error {
	// A missing barcode is a zero-row UPDATE, not an error, matching the
	// gorm implementation.
	if p, ok := r.products[barcode]; ok {
		p.Inventory += delta
	}
	return nil
}

// stubStoreRepo backs StoreRepository.
type stubStoreRepo struct {
	stores map[uuid.UUID]*model.Store
}

func newStubStoreRepo() *stubStoreRepo {
	return &stubStoreRepo{stores: make(map[uuid.UUID]*model.Store)}
}

func (r *stubStoreRepo) Create(_ context.Context, s *model.Store) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.stores[s.ID] = s
	return nil
}

func (r *stubStoreRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Store, error) {
	s, ok := r.stores[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubStoreRepo) FindByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Store, error) {
	out := make(map[uuid.UUID]model.Store, len(ids))
	for _, id := range ids {
		if s, ok := r.stores[id]; ok {
			out[id] = *s
		}
	}
	return out, nil
}

func (r *stubStoreRepo) List(_ context.Context) ([]model.Store, error) {
	out := make([]model.Store, 0, len(r.stores))
	for _, s := range r.stores {
		if s.Active {
			out = append(out, *s)
		}
	}
	return out, nil
}

// stubConfirmationRepo backs ConfirmationRepository with a (run, store)
// uniqueness check mirroring the composite index.
type stubConfirmationRepo struct {
	confirmations map[uuid.UUID]*model.RunConfirmation
}

func newStubConfirmationRepo() *stubConfirmationRepo {
	return &stubConfirmationRepo{confirmations: make(map[uuid.UUID]*model.RunConfirmation)}
}

func (r *stubConfirmationRepo) DB() *gorm.DB { return nil }

func (r *stubConfirmationRepo) CreateTx(_ *gorm.DB, c *model.RunConfirmation) error {
	for _, existing := range r.confirmations {
		if existing.RunID == c.RunID && existing.StoreID == c.StoreID {
			return gorm.ErrDuplicatedKey
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	r.confirmations[c.ID] = &cp
	return nil
}

func (r *stubConfirmationRepo) FindByID(_ context.Context, id uuid.UUID) (*model.RunConfirmation, error) {
	c, ok := r.confirmations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubConfirmationRepo) FindByRunAndStore(_ context.Context, runID, storeID uuid.UUID) (*model.RunConfirmation, error) {
	for _, c := range r.confirmations {
		if c.RunID == runID && c.StoreID == storeID {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubConfirmationRepo) UpdateAmountTx(_ *gorm.DB, id uuid.UUID, amount decimal.Decimal) error {
	c, ok := r.confirmations[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.TotalAmount = amount
	return nil
}

func (r *stubConfirmationRepo) ListByRun(_ context.Context, runID uuid.UUID) ([]model.RunConfirmation, error) {
	var out []model.RunConfirmation
	for _, c := range r.confirmations {
		if c.RunID == runID {
			out = append(out, *c)
		}
	}
	return out, nil
}

// stubLedgerRepo backs LedgerRepository with upsert semantics on
// (run_number, store_id).
type stubLedgerRepo struct {
	entries []*model.LedgerEntry
}

func newStubLedgerRepo() *stubLedgerRepo { return &stubLedgerRepo{} }

func (r *stubLedgerRepo) DB() *gorm.DB { return nil }

func (r *stubLedgerRepo) UpsertForVisitTx(_ *gorm.DB, e *model.LedgerEntry) error {
	for _, existing := range r.entries {
		if existing.RunNumber != nil && e.RunNumber != nil &&
			*existing.RunNumber == *e.RunNumber && existing.StoreID == e.StoreID {
			existing.TransactionType = e.TransactionType
			existing.Amount = e.Amount
			existing.Date = e.Date
			existing.RunConfirmationID = e.RunConfirmationID
			existing.Notes = e.Notes
			return nil
		}
	}
	return r.CreateTx(nil, e)
}

func (r *stubLedgerRepo) CreateTx(_ *gorm.DB, e *model.LedgerEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *stubLedgerRepo) FindByConfirmationTx(_ *gorm.DB, confirmationID uuid.UUID) (*model.LedgerEntry, error) {
	for _, e := range r.entries {
		if e.RunConfirmationID != nil && *e.RunConfirmationID == confirmationID {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubLedgerRepo) UpdateTx(_ *gorm.DB, e *model.LedgerEntry) error {
	for i, existing := range r.entries {
		if existing.ID == e.ID {
			r.entries[i] = e
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubLedgerRepo) List(_ context.Context, _ dto.LedgerFilter) ([]model.LedgerEntry, int64, error) {
	out := make([]model.LedgerEntry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func (r *stubLedgerRepo) ListByStore(_ context.Context, storeID uuid.UUID) ([]model.LedgerEntry, error) {
	var out []model.LedgerEntry
	for _, e := range r.entries {
		if e.StoreID == storeID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *stubLedgerRepo) StoreBalance(_ context.Context, storeID uuid.UUID) (decimal.Decimal, error) {
	balance := decimal.Zero
	for _, e := range r.entries {
		if e.StoreID != storeID {
			continue
		}
		net := e.Amount.Sub(e.Discount)
		if e.TransactionType == model.LedgerCredit {
			balance = balance.Add(net)
		} else {
			balance = balance.Sub(net)
		}
	}
	return balance, nil
}

// stubShipmentRepo backs ShipmentRepository.
type stubShipmentRepo struct {
	notices []*model.ShipmentNotice
}

func newStubShipmentRepo() *stubShipmentRepo { return &stubShipmentRepo{} }

func (r *stubShipmentRepo) CreateTx(_ *gorm.DB, notices []model.ShipmentNotice) error {
	for i := range notices {
		n := notices[i]
		if n.ID == uuid.Nil {
			n.ID = uuid.New()
		}
		r.notices = append(r.notices, &n)
	}
	return nil
}

func (r *stubShipmentRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ShipmentNotice, error) {
	for _, n := range r.notices {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubShipmentRepo) Update(_ context.Context, n *model.ShipmentNotice) error {
	for i, existing := range r.notices {
		if existing.ID == n.ID {
			r.notices[i] = n
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubShipmentRepo) ListPendingRetries(_ context.Context, now time.Time, limit int) ([]model.ShipmentNotice, error) {
	var out []model.ShipmentNotice
	for _, n := range r.notices {
		if n.Status == model.NoticePending && n.NextRetryAt != nil && !n.NextRetryAt.After(now) {
			out = append(out, *n)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}
