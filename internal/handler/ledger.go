package handler

import (
	"net/http"
	"time"

	"marketrunner/internal/apierror"
	"marketrunner/internal/dto"
	"marketrunner/internal/infra"
	"marketrunner/internal/model"
	"marketrunner/internal/repository"
	"marketrunner/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type LedgerHandler struct {
	svc            service.LedgerService
	storeRepo      repository.StoreRepository
	pdfStoragePath string
}

func NewLedgerHandler(svc service.LedgerService, storeRepo repository.StoreRepository, pdfStoragePath string) *LedgerHandler {
	return &LedgerHandler{svc: svc, storeRepo: storeRepo, pdfStoragePath: pdfStoragePath}
}

// ListEntries godoc
// @Summary      List ledger entries
// @Tags         ledger
// @Produce      json
// @Security     BearerAuth
// @Param        store_id query string false "Store UUID"
// @Param        type     query string false "debit | credit | all"
// @Param        from     query string false "Date YYYY-MM-DD"
// @Param        to       query string false "Date YYYY-MM-DD"
// @Param        page     query int    false "Page (default 1)"
// @Param        limit    query int    false "Rows per page (default 50)"
// @Success      200 {object} dto.LedgerListResponse
// @Router       /v1/ledger [get]
func (h *LedgerHandler) ListEntries(c *gin.Context) {
	var filter dto.LedgerFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	entries, total, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list ledger entries"))
		return
	}
	resp := dto.LedgerListResponse{
		Data:  make([]dto.LedgerEntryResponse, len(entries)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range entries {
		resp.Data[i] = toLedgerResponse(&entries[i])
	}
	c.JSON(http.StatusOK, resp)
}

// AmendConfirmation godoc
// @Summary      Amend a confirmed visit's net amount
// @Description  Updates the confirmation and its linked ledger entry in place, recording the prior value in the entry's notes. Never creates a second entry.
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                       true "Confirmation UUID"
// @Param        body body dto.AmendConfirmationRequest true "New signed net amount"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /v1/confirmations/{id}/amount [put]
func (h *LedgerHandler) AmendConfirmation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid confirmation id"))
		return
	}
	var req dto.AmendConfirmationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.Amend(c.Request.Context(), id, req.TotalAmount); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// StoreBalance godoc
// @Summary      Current balance for a store
// @Description  Σ credits − Σ debits, each net of discount.
// @Tags         ledger
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Store UUID"
// @Success      200 {object} dto.StoreBalanceResponse
// @Router       /v1/stores/{id}/balance [get]
func (h *LedgerHandler) StoreBalance(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid store id"))
		return
	}
	balance, err := h.svc.StoreBalance(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to compute balance"))
		return
	}
	c.JSON(http.StatusOK, dto.StoreBalanceResponse{StoreID: id.String(), Balance: balance})
}

// StatementPDF godoc
// @Summary      Download a store's settlement statement as PDF
// @Tags         ledger
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id path string true "Store UUID"
// @Success      200 {file} file
// @Failure      404 {object} apierror.APIError
// @Router       /v1/stores/{id}/statement [get]
func (h *LedgerHandler) StatementPDF(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid store id"))
		return
	}
	store, err := h.storeRepo.FindByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("store not found"))
		return
	}
	entries, err := h.svc.ListByStore(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to load ledger entries"))
		return
	}
	path, err := infra.GenerateStatementPDF(store, entries, h.pdfStoragePath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to render statement"))
		return
	}
	c.FileAttachment(path, "statement_"+store.ID.String()+".pdf")
}

func toLedgerResponse(e *model.LedgerEntry) dto.LedgerEntryResponse {
	resp := dto.LedgerEntryResponse{
		ID:              e.ID.String(),
		StoreID:         e.StoreID.String(),
		TransactionType: e.TransactionType,
		Amount:          e.Amount,
		Discount:        e.Discount,
		Date:            e.Date.Format(time.RFC3339),
		RunNumber:       e.RunNumber,
		Notes:           e.Notes,
	}
	if e.RunConfirmationID != nil {
		cid := e.RunConfirmationID.String()
		resp.RunConfirmationID = &cid
	}
	return resp
}
