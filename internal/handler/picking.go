package handler

import (
	"net/http"

	"marketrunner/internal/apierror"
	"marketrunner/internal/dto"
	"marketrunner/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PickingHandler struct{ svc service.PickingService }

func NewPickingHandler(svc service.PickingService) *PickingHandler {
	return &PickingHandler{svc: svc}
}

// AdjustItem godoc
// @Summary      Adjust an item's picked quantity
// @Description  Shifts picked_qty by delta, clamped to [0, target+slack]. The run must be active.
// @Tags         picking
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        runId  path string                true "Run UUID"
// @Param        itemId path string                true "Run item UUID"
// @Param        body   body dto.AdjustItemRequest true "Signed delta"
// @Success      200 {object} dto.AdjustItemResponse
// @Failure      409 {object} apierror.APIError
// @Failure      422 {object} apierror.APIError
// @Router       /v1/runs/{runId}/items/{itemId}/adjust [post]
func (h *PickingHandler) AdjustItem(c *gin.Context) {
	runID, itemID, ok := pathRunItem(c)
	if !ok {
		return
	}
	var req dto.AdjustItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Adjust(c.Request.Context(), runID, itemID, req.Delta)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ConfirmUnavailable godoc
// @Summary      Mark an item unavailable at the store
// @Description  Requires the client's hold-to-confirm assertion; zeroes picked_qty and sets status not_found.
// @Tags         picking
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        runId  path string                        true "Run UUID"
// @Param        itemId path string                        true "Run item UUID"
// @Param        body   body dto.ConfirmUnavailableRequest true "Confirmation flag"
// @Success      204
// @Failure      409 {object} apierror.APIError
// @Router       /v1/runs/{runId}/items/{itemId}/unavailable [post]
func (h *PickingHandler) ConfirmUnavailable(c *gin.Context) {
	runID, itemID, ok := pathRunItem(c)
	if !ok {
		return
	}
	var req dto.ConfirmUnavailableRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.ConfirmUnavailable(c.Request.Context(), runID, itemID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CompleteStoreVisit godoc
// @Summary      Complete one store's visit within a run
// @Description  Finalizes every item at the store, writes the confirmation and ledger entry, moves inventory and source records. Idempotent per (run, store) — a retry returns the existing confirmation.
// @Tags         picking
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        runId   path string                   true "Run UUID"
// @Param        storeId path string                   true "Store UUID"
// @Param        body    body dto.CompleteVisitRequest true "Receipt URL and optional notes"
// @Success      200 {object} dto.CompleteVisitResponse
// @Failure      400 {object} apierror.APIError
// @Failure      409 {object} apierror.APIError
// @Router       /v1/runs/{runId}/stores/{storeId}/complete [post]
func (h *PickingHandler) CompleteStoreVisit(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("runId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid run id"))
		return
	}
	storeID, err := uuid.Parse(c.Param("storeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid store id"))
		return
	}
	var req dto.CompleteVisitRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CompleteStoreVisit(c.Request.Context(), runID, storeID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func pathRunItem(c *gin.Context) (runID, itemID uuid.UUID, ok bool) {
	runID, err := uuid.Parse(c.Param("runId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid run id"))
		return uuid.Nil, uuid.Nil, false
	}
	itemID, err = uuid.Parse(c.Param("itemId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid item id"))
		return uuid.Nil, uuid.Nil, false
	}
	return runID, itemID, true
}
