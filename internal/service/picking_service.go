package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketrunner/internal/dto"
	"marketrunner/internal/model"
	"marketrunner/internal/repository"
	"marketrunner/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PickingService interface {
	// Adjust shifts an item's picked quantity by delta, clamped to
	// [0, target+slack] atomically in the database.
	Adjust(ctx context.Context, runID, itemID uuid.UUID, delta int) (*dto.AdjustItemResponse, error)

	// ConfirmUnavailable zeroes an item after the courier's sustained
	// confirmation gesture: picked_qty=0, status=not_found.
	ConfirmUnavailable(ctx context.Context, runID, itemID uuid.UUID) error

	// CompleteStoreVisit finalizes one store within an active run: writes the
	// confirmation and ledger entry, settles every item's status, propagates
	// to source records and inventory. Idempotent on (run_id, store_id).
	CompleteStoreVisit(ctx context.Context, runID, storeID uuid.UUID, req dto.CompleteVisitRequest) (*dto.CompleteVisitResponse, error)
}

type pickingService struct {
	runRepo          repository.RunRepository
	orderRepo        repository.OrderRepository
	returnRepo       repository.ReturnRepository
	productRepo      repository.ProductRepository
	storeRepo        repository.StoreRepository
	confirmationRepo repository.ConfirmationRepository
	ledgerRepo       repository.LedgerRepository
	shipmentRepo     repository.ShipmentRepository
	dispatcher       *worker.Dispatcher
	// overpickSlack is the tolerance above target_qty a courier may record
	// (extra units handed over at the store). Configuration, not a UI constant.
	overpickSlack int
}

func NewPickingService(
	runRepo repository.RunRepository,
	orderRepo repository.OrderRepository,
	returnRepo repository.ReturnRepository,
	productRepo repository.ProductRepository,
	storeRepo repository.StoreRepository,
	confirmationRepo repository.ConfirmationRepository,
	ledgerRepo repository.LedgerRepository,
	shipmentRepo repository.ShipmentRepository,
	dispatcher *worker.Dispatcher,
	overpickSlack int,
) PickingService {
	return &pickingService{
		runRepo:          runRepo,
		orderRepo:        orderRepo,
		returnRepo:       returnRepo,
		productRepo:      productRepo,
		storeRepo:        storeRepo,
		confirmationRepo: confirmationRepo,
		ledgerRepo:       ledgerRepo,
		shipmentRepo:     shipmentRepo,
		dispatcher:       dispatcher,
		overpickSlack:    overpickSlack,
	}
}

// ── Adjust ────────────────────────────────────────────────────────────────────

func (s *pickingService) Adjust(ctx context.Context, runID, itemID uuid.UUID, delta int) (*dto.AdjustItemResponse, error) {
	if delta == 0 {
		return nil, errOf(KindInvalidQuantity, "delta must be non-zero")
	}

	item, err := s.runRepo.FindItem(ctx, itemID)
	if err != nil {
		return nil, errOf(KindUnknownReference, "run item %s not found", itemID)
	}
	if item.RunID != runID {
		return nil, errOf(KindUnknownReference, "run item %s does not belong to run %s", itemID, runID)
	}
	if item.Terminal() {
		return nil, errOf(KindConflict, "run item %s is already finalized", itemID)
	}
	if err := s.requireActiveRun(ctx, runID); err != nil {
		return nil, err
	}

	qty, err := s.runRepo.AdjustItemQty(ctx, itemID, delta, s.overpickSlack)
	if err != nil {
		return nil, err
	}
	return &dto.AdjustItemResponse{
		ItemID:    itemID.String(),
		PickedQty: qty,
		TargetQty: item.TargetQty,
	}, nil
}

// ── ConfirmUnavailable ────────────────────────────────────────────────────────
// Permitted at any picked_qty, including a fully-picked line: the courier may
// discover at the counter that the goods cannot be handed over after all.

func (s *pickingService) ConfirmUnavailable(ctx context.Context, runID, itemID uuid.UUID) error {
	item, err := s.runRepo.FindItem(ctx, itemID)
	if err != nil {
		return errOf(KindUnknownReference, "run item %s not found", itemID)
	}
	if item.RunID != runID {
		return errOf(KindUnknownReference, "run item %s does not belong to run %s", itemID, runID)
	}
	if item.Terminal() && item.Status != model.RunItemNotFound {
		return errOf(KindConflict, "run item %s is already finalized", itemID)
	}
	if err := s.requireActiveRun(ctx, runID); err != nil {
		return err
	}
	return s.runRepo.SetItemUnavailable(ctx, itemID)
}

// ── CompleteStoreVisit ────────────────────────────────────────────────────────
// One transaction covers the confirmation, the ledger upsert, item
// finalization, source-record propagation and inventory movement. The
// (run_id, store_id) unique index makes retries return the existing
// confirmation instead of paying the store twice.

func (s *pickingService) CompleteStoreVisit(ctx context.Context, runID, storeID uuid.UUID, req dto.CompleteVisitRequest) (*dto.CompleteVisitResponse, error) {
	if req.ReceiptImageURL == "" {
		return nil, errOf(KindReceiptRequired, "a receipt image is required to complete a store visit")
	}

	run, err := s.runRepo.FindByID(ctx, runID)
	if err != nil {
		return nil, errOf(KindUnknownReference, "run %s not found", runID)
	}
	// Fast path for retries: the visit was already confirmed. Checked before
	// the status gate because the first completion may have closed the run.
	if existing, err := s.confirmationRepo.FindByRunAndStore(ctx, runID, storeID); err == nil && existing != nil && existing.ID != uuid.Nil {
		return s.replayResponse(ctx, run, existing), nil
	}

	if run.Status != model.RunActive {
		return nil, errOf(KindConflict, "run %d is %s, not active", run.RunNumber, run.Status)
	}

	var (
		confirmation model.RunConfirmation
		pickupAmount = decimal.Zero
		returnAmount = decimal.Zero
		notices      []model.ShipmentNotice
		runStatus    = run.Status
	)

	txErr := runTx(ctx, s.runRepo.DB(), func(tx *gorm.DB) error {
		items, err := s.runRepo.ItemsByRunStoreTx(tx, runID, storeID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return errOf(KindUnknownReference, "run %d has no items at store %s", run.RunNumber, storeID)
		}

		// 1. Net amount: pickups owed by the store minus returns owed to it.
		for _, item := range items {
			qty := decimal.NewFromInt(int64(item.PickedQty))
			switch item.Type {
			case model.RunItemPickup:
				p, err := s.productRepo.FindByBarcode(ctx, item.Barcode)
				if err != nil {
					return errOf(KindUnknownReference, "barcode %s not in catalog", item.Barcode)
				}
				pickupAmount = pickupAmount.Add(qty.Mul(p.CostPrice))
			case model.RunItemReturn:
				p, err := s.productRepo.FindByBarcode(ctx, item.Barcode)
				if err != nil {
					// Returns may reference barcodes the catalog never had;
					// they settle at zero cost and only move the request state.
					continue
				}
				returnAmount = returnAmount.Add(qty.Mul(p.CostPrice))
			}
		}
		netAmount := pickupAmount.Sub(returnAmount)

		// 2. Confirmation — the idempotency anchor.
		confirmation = model.RunConfirmation{
			RunID:           runID,
			StoreID:         storeID,
			ReceiptImageURL: req.ReceiptImageURL,
			TotalAmount:     netAmount,
			Notes:           req.Notes,
			ConfirmedAt:     time.Now().UTC(),
		}
		if err := s.confirmationRepo.CreateTx(tx, &confirmation); err != nil {
			return err
		}

		// 3. Ledger entry — skipped for a zero net, upserted otherwise so a
		// replayed completion can never double-book.
		if !netAmount.IsZero() {
			entry := &model.LedgerEntry{
				StoreID:           storeID,
				TransactionType:   model.LedgerDebit,
				Amount:            netAmount.Abs(),
				Date:              confirmation.ConfirmedAt,
				RunNumber:         &run.RunNumber,
				RunConfirmationID: &confirmation.ID,
			}
			if netAmount.IsNegative() {
				entry.TransactionType = model.LedgerCredit
			}
			if err := s.ledgerRepo.UpsertForVisitTx(tx, entry); err != nil {
				return err
			}
		}

		// 4. Finalize items and propagate to source records.
		noticeSeen := make(map[uuid.UUID]bool)
		for _, item := range items {
			status := model.RunItemNotFound
			if item.PickedQty > 0 {
				if item.Type == model.RunItemReturn {
					status = model.RunItemReturned
				} else {
					status = model.RunItemPicked
				}
			}
			if err := s.runRepo.UpdateItemStatusTx(tx, item.ID, status, item.PickedQty); err != nil {
				return err
			}

			switch item.Type {
			case model.RunItemPickup:
				orderItems, err := s.orderRepo.ItemsByBarcodeRunTx(tx, item.Barcode, runID)
				if err != nil {
					return err
				}
				if err := s.orderRepo.UpdateStatusByBarcodeRunTx(tx, item.Barcode, runID, status); err != nil {
					return err
				}
				if status == model.RunItemPicked {
					if err := s.productRepo.AdjustInventoryTx(tx, item.Barcode, -item.PickedQty); err != nil {
						return err
					}
					for _, oi := range orderItems {
						if noticeSeen[oi.OrderID] {
							continue
						}
						noticeSeen[oi.OrderID] = true
						notices = append(notices, model.ShipmentNotice{
							ID:        uuid.New(),
							OrderID:   oi.OrderID,
							RunID:     runID,
							RunNumber: run.RunNumber,
							Status:    model.NoticePending,
						})
					}
				}
			case model.RunItemReturn:
				if item.OriginalReturnID == nil {
					continue
				}
				returnStatus := model.ReturnRejected
				if item.PickedQty > 0 {
					returnStatus = model.ReturnProcessed
				}
				if err := s.returnRepo.FinalizeTx(tx, *item.OriginalReturnID, returnStatus); err != nil {
					return err
				}
				if returnStatus == model.ReturnProcessed {
					if err := s.productRepo.AdjustInventoryTx(tx, item.Barcode, item.PickedQty); err != nil {
						return err
					}
				}
			}
		}

		if err := s.shipmentRepo.CreateTx(tx, notices); err != nil {
			return err
		}

		// 5. Close the run once every item across all stores is terminal.
		open, err := s.runRepo.CountOpenItemsTx(tx, runID)
		if err != nil {
			return err
		}
		if open == 0 {
			if err := s.runRepo.UpdateStatusTx(tx, runID, model.RunCompleted); err != nil {
				return err
			}
			runStatus = model.RunCompleted
		}
		return nil
	})

	if txErr != nil {
		// A concurrent or replayed completion hit the unique index first —
		// the visit is already settled, return it.
		if errors.Is(txErr, gorm.ErrDuplicatedKey) {
			if existing, err := s.confirmationRepo.FindByRunAndStore(ctx, runID, storeID); err == nil {
				return s.replayResponse(ctx, run, existing), nil
			}
		}
		return nil, txErr
	}

	// Post-commit, best effort: marketplace acknowledgments and the store's
	// settlement summary. Failures here never unwind the visit.
	if s.dispatcher != nil {
		for _, n := range notices {
			if err := s.dispatcher.EnqueueShipmentNotice(ctx, worker.ShipmentJobPayload{NoticeID: n.ID.String()}); err != nil {
				log.Warn().Err(err).Str("order_id", n.OrderID.String()).Msg("enqueue shipment notice failed")
			}
		}
		s.enqueueSettlementEmail(ctx, run, storeID, &confirmation)
	}

	return &dto.CompleteVisitResponse{
		ConfirmationID: confirmation.ID.String(),
		RunID:          runID.String(),
		StoreID:        storeID.String(),
		PickupAmount:   pickupAmount,
		ReturnAmount:   returnAmount,
		NetAmount:      confirmation.TotalAmount,
		RunStatus:      runStatus,
		ConfirmedAt:    confirmation.ConfirmedAt.Format(time.RFC3339),
	}, nil
}

func (s *pickingService) requireActiveRun(ctx context.Context, runID uuid.UUID) error {
	run, err := s.runRepo.FindByID(ctx, runID)
	if err != nil {
		return errOf(KindUnknownReference, "run %s not found", runID)
	}
	if run.Status != model.RunActive {
		return errOf(KindConflict, "run %d is %s, not active", run.RunNumber, run.Status)
	}
	return nil
}

func (s *pickingService) replayResponse(ctx context.Context, run *model.Run, c *model.RunConfirmation) *dto.CompleteVisitResponse {
	status := run.Status
	if fresh, err := s.runRepo.FindByID(ctx, run.ID); err == nil {
		status = fresh.Status
	}
	return &dto.CompleteVisitResponse{
		ConfirmationID:   c.ID.String(),
		RunID:            c.RunID.String(),
		StoreID:          c.StoreID.String(),
		NetAmount:        c.TotalAmount,
		AlreadyConfirmed: true,
		RunStatus:        status,
		ConfirmedAt:      c.ConfirmedAt.Format(time.RFC3339),
	}
}

func (s *pickingService) enqueueSettlementEmail(ctx context.Context, run *model.Run, storeID uuid.UUID, c *model.RunConfirmation) {
	store, err := s.storeRepo.FindByID(ctx, storeID)
	if err != nil || store.ContactEmail == nil || *store.ContactEmail == "" {
		return
	}
	payload := worker.EmailJobPayload{
		ToEmail: *store.ContactEmail,
		Subject: fmt.Sprintf("Settlement summary for run #%d", run.RunNumber),
		Body: fmt.Sprintf("Run #%d visit settled. Net amount: %s. Receipt: %s",
			run.RunNumber, c.TotalAmount.StringFixed(2), c.ReceiptImageURL),
	}
	if err := s.dispatcher.EnqueueEmail(ctx, payload); err != nil {
		log.Warn().Err(err).Str("store_id", storeID.String()).Msg("enqueue settlement email failed")
	}
}
