package service

import (
	"context"
	"fmt"
	"sort"

	"marketrunner/internal/dto"
	"marketrunner/internal/model"
	"marketrunner/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// maxRunLines caps the aggregated lines in one physical run. A chunk of the
// consolidated demand list becomes exactly one Run.
const maxRunLines = 500

type ConsolidationService interface {
	Consolidate(ctx context.Context, req dto.ConsolidateRequest) (*dto.ConsolidateResponse, error)
}

type consolidationService struct {
	orderRepo   repository.OrderRepository
	returnRepo  repository.ReturnRepository
	productRepo repository.ProductRepository
	storeRepo   repository.StoreRepository
	runRepo     repository.RunRepository
}

func NewConsolidationService(
	orderRepo repository.OrderRepository,
	returnRepo repository.ReturnRepository,
	productRepo repository.ProductRepository,
	storeRepo repository.StoreRepository,
	runRepo repository.RunRepository,
) ConsolidationService {
	return &consolidationService{
		orderRepo:   orderRepo,
		returnRepo:  returnRepo,
		productRepo: productRepo,
		storeRepo:   storeRepo,
		runRepo:     runRepo,
	}
}

// demandLine is one aggregated unit of work: barcode × store × type.
// Pickup lines merge every pending OrderItem sharing (store, barcode);
// return lines map 1:1 to a ReturnRequest so original_return_id stays exact.
type demandLine struct {
	lineType     string
	storeID      uuid.UUID
	storeName    string
	barcode      string
	styleName    string
	quantity     int
	orderItemIDs []uuid.UUID
	returnID     *uuid.UUID
}

// ── Consolidate ───────────────────────────────────────────────────────────────
// Aggregates the pending pool (optionally narrowed to a caller-supplied
// subset) into bounded draft runs. One transaction per chunk: the Run, its
// RunItems and every source-record assignment commit together or not at all.
// Assignment is a conditional update guarded by status=pending — a concurrent
// consolidation claiming the same rows makes the affected-row count come up
// short, which rolls the chunk back with conflicting_assignment.

func (s *consolidationService) Consolidate(ctx context.Context, req dto.ConsolidateRequest) (*dto.ConsolidateResponse, error) {
	itemIDs, err := parseUUIDs(req.OrderItemIDs)
	if err != nil {
		return nil, errOf(KindUnknownReference, "invalid order item id: %v", err)
	}
	returnIDs, err := parseUUIDs(req.ReturnIDs)
	if err != nil {
		return nil, errOf(KindUnknownReference, "invalid return id: %v", err)
	}

	pendingItems, err := s.orderRepo.ListPendingItems(ctx, itemIDs)
	if err != nil {
		return nil, err
	}
	pendingReturns, err := s.returnRepo.ListPending(ctx, returnIDs)
	if err != nil {
		return nil, err
	}

	// A caller-supplied id that is no longer pending means someone else
	// already claimed it — surface the conflict instead of silently
	// consolidating a smaller set than the operator selected.
	if len(itemIDs) > 0 && len(pendingItems) != len(itemIDs) {
		return nil, errOf(KindConflictingAssignment,
			"%d of %d selected order items are no longer pending", len(itemIDs)-len(pendingItems), len(itemIDs))
	}
	if len(returnIDs) > 0 && len(pendingReturns) != len(returnIDs) {
		return nil, errOf(KindConflictingAssignment,
			"%d of %d selected returns are no longer pending", len(returnIDs)-len(pendingReturns), len(returnIDs))
	}

	if len(pendingItems) == 0 && len(pendingReturns) == 0 {
		return nil, errOf(KindNoEligibleDemand, "no pending order items or returns selected")
	}

	lines, err := s.buildLines(ctx, pendingItems, pendingReturns)
	if err != nil {
		return nil, err
	}

	var created []dto.CreatedRun
	for start := 0; start < len(lines); start += maxRunLines {
		end := start + maxRunLines
		if end > len(lines) {
			end = len(lines)
		}
		summary, err := s.createRun(ctx, lines[start:end])
		if err != nil {
			// Earlier chunks are already committed; their runs stand.
			return nil, err
		}
		created = append(created, *summary)
	}

	log.Info().Int("runs", len(created)).Int("lines", len(lines)).Msg("consolidation complete")
	return &dto.ConsolidateResponse{Runs: created}, nil
}

// buildLines resolves and groups the pending demand into the ordered line
// list that chunking splits: pickup groups first, then return lines.
func (s *consolidationService) buildLines(ctx context.Context, items []model.OrderItem, returns []model.ReturnRequest) ([]demandLine, error) {
	type groupKey struct {
		storeID uuid.UUID
		barcode string
	}

	var lines []demandLine

	if len(items) > 0 {
		barcodes := make([]string, 0, len(items))
		seen := make(map[string]bool, len(items))
		for _, it := range items {
			if !seen[it.Barcode] {
				seen[it.Barcode] = true
				barcodes = append(barcodes, it.Barcode)
			}
		}
		products, err := s.productRepo.FindByBarcodes(ctx, barcodes)
		if err != nil {
			return nil, err
		}

		groups := make(map[groupKey]*demandLine)
		for _, it := range items {
			p, ok := products[it.Barcode]
			if !ok {
				return nil, errOf(KindUnknownReference, "barcode %s not in catalog", it.Barcode)
			}
			key := groupKey{storeID: p.StoreID, barcode: it.Barcode}
			g, ok := groups[key]
			if !ok {
				g = &demandLine{
					lineType:  model.RunItemPickup,
					storeID:   p.StoreID,
					barcode:   it.Barcode,
					styleName: p.StyleName,
				}
				groups[key] = g
			}
			g.quantity += it.Quantity
			g.orderItemIDs = append(g.orderItemIDs, it.ID)
		}

		storeIDs := make([]uuid.UUID, 0, len(groups))
		seenStores := make(map[uuid.UUID]bool)
		for key := range groups {
			if !seenStores[key.storeID] {
				seenStores[key.storeID] = true
				storeIDs = append(storeIDs, key.storeID)
			}
		}
		stores, err := s.storeRepo.FindByIDs(ctx, storeIDs)
		if err != nil {
			return nil, err
		}

		pickups := make([]demandLine, 0, len(groups))
		for key, g := range groups {
			if st, ok := stores[key.storeID]; ok {
				g.storeName = st.Name
			}
			pickups = append(pickups, *g)
		}
		// Map iteration is unordered — sort for deterministic chunking.
		sort.Slice(pickups, func(i, j int) bool {
			if pickups[i].storeID != pickups[j].storeID {
				return pickups[i].storeID.String() < pickups[j].storeID.String()
			}
			return pickups[i].barcode < pickups[j].barcode
		})
		lines = append(lines, pickups...)
	}

	// Return lines carry their own store/style names: the barcode may not
	// exist in the catalog at all. One line per request keeps the
	// original_return_id link exact.
	returnLines := make([]demandLine, 0, len(returns))
	for _, rr := range returns {
		id := rr.ID
		returnLines = append(returnLines, demandLine{
			lineType:  model.RunItemReturn,
			storeID:   rr.StoreID,
			storeName: rr.StoreName,
			barcode:   rr.Barcode,
			styleName: rr.StyleName,
			quantity:  rr.Quantity,
			returnID:  &id,
		})
	}
	sort.Slice(returnLines, func(i, j int) bool {
		if returnLines[i].storeID != returnLines[j].storeID {
			return returnLines[i].storeID.String() < returnLines[j].storeID.String()
		}
		return returnLines[i].barcode < returnLines[j].barcode
	})
	lines = append(lines, returnLines...)

	return lines, nil
}

// createRun materializes one chunk as a draft Run inside one transaction.
func (s *consolidationService) createRun(ctx context.Context, chunk []demandLine) (*dto.CreatedRun, error) {
	var summary dto.CreatedRun

	txErr := runTx(ctx, s.runRepo.DB(), func(tx *gorm.DB) error {
		runNumber, err := s.runRepo.NextRunNumber(ctx, tx)
		if err != nil {
			return fmt.Errorf("allocate run number: %w", err)
		}

		totalItems := 0
		stores := make(map[uuid.UUID]bool)
		styles := make(map[string]bool)
		hasReturns := false
		pickupLines, returnLines := 0, 0
		for _, line := range chunk {
			totalItems += line.quantity
			stores[line.storeID] = true
			styles[line.barcode] = true
			if line.lineType == model.RunItemReturn {
				hasReturns = true
				returnLines++
			} else {
				pickupLines++
			}
		}

		run := &model.Run{
			RunNumber:   runNumber,
			Status:      model.RunDraft,
			TotalItems:  totalItems,
			TotalStores: len(stores),
			TotalStyles: len(styles),
			HasReturns:  hasReturns,
		}
		if err := s.runRepo.CreateTx(tx, run); err != nil {
			return err
		}

		items := make([]model.RunItem, 0, len(chunk))
		var orderItemIDs []uuid.UUID
		var returnIDs []uuid.UUID
		for _, line := range chunk {
			items = append(items, model.RunItem{
				RunID:            run.ID,
				Type:             line.lineType,
				Barcode:          line.barcode,
				StoreID:          line.storeID,
				StoreName:        line.storeName,
				StyleName:        line.styleName,
				TargetQty:        line.quantity,
				Status:           model.RunItemPending,
				OriginalReturnID: line.returnID,
			})
			orderItemIDs = append(orderItemIDs, line.orderItemIDs...)
			if line.returnID != nil {
				returnIDs = append(returnIDs, *line.returnID)
			}
		}
		if err := s.runRepo.CreateItemsTx(tx, items); err != nil {
			return err
		}

		if len(orderItemIDs) > 0 {
			affected, err := s.orderRepo.MarkAssignedTx(tx, orderItemIDs, run.ID)
			if err != nil {
				return err
			}
			if affected != int64(len(orderItemIDs)) {
				return errOf(KindConflictingAssignment,
					"order items claimed by a concurrent consolidation (%d of %d updated)", affected, len(orderItemIDs))
			}
		}
		if len(returnIDs) > 0 {
			affected, err := s.returnRepo.MarkAssignedTx(tx, returnIDs, run.ID, runNumber)
			if err != nil {
				return err
			}
			if affected != int64(len(returnIDs)) {
				return errOf(KindConflictingAssignment,
					"returns claimed by a concurrent consolidation (%d of %d updated)", affected, len(returnIDs))
			}
		}

		summary = dto.CreatedRun{
			RunID:       run.ID.String(),
			RunNumber:   runNumber,
			PickupLines: pickupLines,
			ReturnLines: returnLines,
			TotalItems:  totalItems,
			TotalStores: len(stores),
			TotalStyles: len(styles),
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &summary, nil
}

func parseUUIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
