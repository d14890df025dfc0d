package handler

import (
	"net/http"

	"marketrunner/internal/apierror"
	"marketrunner/internal/dto"
	"marketrunner/internal/model"
	"marketrunner/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RunsHandler struct {
	consolidation service.ConsolidationService
	runs          service.RunService
}

func NewRunsHandler(consolidation service.ConsolidationService, runs service.RunService) *RunsHandler {
	return &RunsHandler{consolidation: consolidation, runs: runs}
}

// Consolidate godoc
// @Summary      Consolidate pending demand into runs
// @Description  Aggregates pending order items and return requests into draft runs of at most 500 lines each. Optional id lists narrow the pool.
// @Tags         runs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ConsolidateRequest true "Optional subset of order item / return ids"
// @Success      201  {object} dto.ConsolidateResponse
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/runs/consolidate [post]
func (h *RunsHandler) Consolidate(c *gin.Context) {
	var req dto.ConsolidateRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.consolidation.Consolidate(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListRuns godoc
// @Summary      List runs
// @Tags         runs
// @Produce      json
// @Security     BearerAuth
// @Param        status    query string false "draft | active | completed | cancelled | all"
// @Param        runner_id query string false "Courier UUID"
// @Param        page      query int    false "Page (default 1)"
// @Param        limit     query int    false "Rows per page (default 50)"
// @Success      200 {object} dto.RunListResponse
// @Router       /v1/runs [get]
func (h *RunsHandler) ListRuns(c *gin.Context) {
	var filter dto.RunFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	runs, total, err := h.runs.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list runs"))
		return
	}
	resp := dto.RunListResponse{
		Data:  make([]dto.RunResponse, len(runs)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range runs {
		resp.Data[i] = toRunResponse(&runs[i], false)
	}
	c.JSON(http.StatusOK, resp)
}

// GetRun godoc
// @Summary      Get one run with its items
// @Tags         runs
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Run UUID"
// @Success      200 {object} dto.RunResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/runs/{id} [get]
func (h *RunsHandler) GetRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid run id"))
		return
	}
	run, err := h.runs.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRunResponse(run, true))
}

// ActivateRun godoc
// @Summary      Activate a draft run
// @Description  Moves a draft run to active, optionally assigning a courier.
// @Tags         runs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                 true  "Run UUID"
// @Param        body body dto.ActivateRunRequest false "Optional courier assignment"
// @Success      204
// @Failure      409 {object} apierror.APIError
// @Router       /v1/runs/{id}/activate [post]
func (h *RunsHandler) ActivateRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid run id"))
		return
	}
	var req dto.ActivateRunRequest
	if !bindAndValidate(c, &req) {
		return
	}
	var runnerID *uuid.UUID
	if req.RunnerID != nil {
		rid, err := uuid.Parse(*req.RunnerID)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid runner id"))
			return
		}
		runnerID = &rid
	}
	if err := h.runs.Activate(c.Request.Context(), id, runnerID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CancelRuns godoc
// @Summary      Cancel a batch of runs
// @Description  Processes each run independently: runs with picked items close as completed and revert only unpicked items, runs without picks cancel and revert everything. Admin only.
// @Tags         runs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CancelRunsRequest true "Run ids to cancel"
// @Success      200 {object} dto.CancelRunsResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/runs/cancel [post]
func (h *RunsHandler) CancelRuns(c *gin.Context) {
	var req dto.CancelRunsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	ids := make([]uuid.UUID, 0, len(req.RunIDs))
	for _, raw := range req.RunIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid run id "+raw))
			return
		}
		ids = append(ids, id)
	}
	resp, err := h.runs.CancelRuns(c.Request.Context(), ids)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func toRunResponse(run *model.Run, withItems bool) dto.RunResponse {
	resp := dto.RunResponse{
		ID:          run.ID.String(),
		RunNumber:   run.RunNumber,
		Status:      run.Status,
		TotalItems:  run.TotalItems,
		TotalStores: run.TotalStores,
		TotalStyles: run.TotalStyles,
		HasReturns:  run.HasReturns,
		CreatedAt:   run.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if run.RunnerID != nil {
		rid := run.RunnerID.String()
		resp.RunnerID = &rid
	}
	if withItems {
		resp.Items = make([]dto.RunItemResponse, len(run.Items))
		for i, item := range run.Items {
			resp.Items[i] = dto.RunItemResponse{
				ID:        item.ID.String(),
				Type:      item.Type,
				Barcode:   item.Barcode,
				StoreID:   item.StoreID.String(),
				StoreName: item.StoreName,
				StyleName: item.StyleName,
				TargetQty: item.TargetQty,
				PickedQty: item.PickedQty,
				Status:    item.Status,
			}
		}
	}
	return resp
}
