package service

import (
	"context"
	"fmt"

	"marketrunner/internal/dto"
	"marketrunner/internal/model"
	"marketrunner/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type RunService interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Run, error)
	List(ctx context.Context, filter dto.RunFilter) ([]model.Run, int64, error)

	// Activate moves a draft run to active, optionally assigning a courier.
	Activate(ctx context.Context, id uuid.UUID, runnerID *uuid.UUID) error

	// CancelRuns processes each run independently: a run with picks closes as
	// completed and only its unpicked items revert; a run without picks
	// cancels outright and every item reverts. One run failing never stops
	// the rest of the batch.
	CancelRuns(ctx context.Context, runIDs []uuid.UUID) (*dto.CancelRunsResponse, error)
}

type runService struct {
	runRepo    repository.RunRepository
	orderRepo  repository.OrderRepository
	returnRepo repository.ReturnRepository
}

func NewRunService(runRepo repository.RunRepository, orderRepo repository.OrderRepository, returnRepo repository.ReturnRepository) RunService {
	return &runService{runRepo: runRepo, orderRepo: orderRepo, returnRepo: returnRepo}
}

func (s *runService) Get(ctx context.Context, id uuid.UUID) (*model.Run, error) {
	run, err := s.runRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errOf(KindUnknownReference, "run %s not found", id)
	}
	return run, nil
}

func (s *runService) List(ctx context.Context, filter dto.RunFilter) ([]model.Run, int64, error) {
	return s.runRepo.List(ctx, filter)
}

func (s *runService) Activate(ctx context.Context, id uuid.UUID, runnerID *uuid.UUID) error {
	affected, err := s.runRepo.Activate(ctx, id, runnerID)
	if err != nil {
		return err
	}
	if affected == 0 {
		run, err := s.runRepo.FindByID(ctx, id)
		if err != nil {
			return errOf(KindUnknownReference, "run %s not found", id)
		}
		return errOf(KindConflict, "run %d is %s, only draft runs can be activated", run.RunNumber, run.Status)
	}
	return nil
}

func (s *runService) CancelRuns(ctx context.Context, runIDs []uuid.UUID) (*dto.CancelRunsResponse, error) {
	resp := &dto.CancelRunsResponse{Results: make([]dto.CancelRunResult, 0, len(runIDs))}
	for _, id := range runIDs {
		resp.Results = append(resp.Results, s.cancelOne(ctx, id))
	}
	return resp, nil
}

func (s *runService) cancelOne(ctx context.Context, runID uuid.UUID) dto.CancelRunResult {
	result := dto.CancelRunResult{RunID: runID.String()}

	run, err := s.runRepo.FindByID(ctx, runID)
	if err != nil {
		result.Error = "run not found"
		return result
	}
	if run.Status == model.RunCompleted || run.Status == model.RunCancelled {
		result.Status = run.Status
		result.Error = fmt.Sprintf("run %d is already %s", run.RunNumber, run.Status)
		return result
	}

	txErr := runTx(ctx, s.runRepo.DB(), func(tx *gorm.DB) error {
		items, err := s.runRepo.ItemsByRunTx(tx, runID)
		if err != nil {
			return err
		}

		picked := 0
		for _, item := range items {
			if item.PickedQty > 0 {
				picked++
			}
		}

		finalStatus := model.RunCancelled
		if picked > 0 {
			finalStatus = model.RunCompleted
		}

		reverted := 0
		for _, item := range items {
			// Items with picks stand. A not_found item holds no picks and its
			// sources are still claimed, so it reverts like a pending one.
			if item.PickedQty > 0 || item.Status == model.RunItemPicked || item.Status == model.RunItemReturned {
				continue
			}
			if err := s.revertItem(tx, runID, item); err != nil {
				return err
			}
			reverted++
		}

		if err := s.runRepo.UpdateStatusTx(tx, runID, finalStatus); err != nil {
			return err
		}

		result.Status = finalStatus
		result.PickedCount = picked
		result.RevertedCount = reverted
		return nil
	})
	if txErr != nil {
		log.Error().Err(txErr).Str("run_id", runID.String()).Msg("run cancellation failed")
		result.Error = txErr.Error()
		return result
	}

	log.Info().
		Str("run_id", runID.String()).
		Int("run_number", run.RunNumber).
		Str("status", result.Status).
		Int("picked", result.PickedCount).
		Int("reverted", result.RevertedCount).
		Msg("run cancelled")
	return result
}

// revertItem puts one unpicked run item and its source records back where
// consolidation found them.
func (s *runService) revertItem(tx *gorm.DB, runID uuid.UUID, item model.RunItem) error {
	if err := s.runRepo.UpdateItemStatusTx(tx, item.ID, model.RunItemCancelled, 0); err != nil {
		return err
	}
	switch item.Type {
	case model.RunItemPickup:
		if _, err := s.orderRepo.RevertAssignedTx(tx, item.Barcode, runID); err != nil {
			return err
		}
	case model.RunItemReturn:
		if item.OriginalReturnID != nil {
			if _, err := s.returnRepo.RevertAssignedTx(tx, *item.OriginalReturnID); err != nil {
				return err
			}
		}
	}
	return nil
}
