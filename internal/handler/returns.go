package handler

import (
	"net/http"
	"time"

	"marketrunner/internal/apierror"
	"marketrunner/internal/dto"
	"marketrunner/internal/model"
	"marketrunner/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReturnsHandler struct{ svc service.ReturnService }

func NewReturnsHandler(svc service.ReturnService) *ReturnsHandler { return &ReturnsHandler{svc: svc} }

// CreateReturn godoc
// @Summary      Register a store-initiated return
// @Tags         returns
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateReturnRequest true "Return request"
// @Success      201 {object} dto.ReturnResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/returns [post]
func (h *ReturnsHandler) CreateReturn(c *gin.Context) {
	var req dto.CreateReturnRequest
	if !bindAndValidate(c, &req) {
		return
	}
	rr, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toReturnResponse(rr))
}

// ListReturns godoc
// @Summary      List return requests
// @Tags         returns
// @Produce      json
// @Security     BearerAuth
// @Param        status   query string false "pending | assigned_to_run | processed | rejected | all (default pending)"
// @Param        store_id query string false "Store UUID"
// @Param        page     query int    false "Page (default 1)"
// @Param        limit    query int    false "Rows per page (default 50)"
// @Success      200 {object} dto.ReturnListResponse
// @Router       /v1/returns [get]
func (h *ReturnsHandler) ListReturns(c *gin.Context) {
	var filter dto.ReturnFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	returns, total, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list returns"))
		return
	}
	resp := dto.ReturnListResponse{
		Data:  make([]dto.ReturnResponse, len(returns)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range returns {
		resp.Data[i] = toReturnResponse(&returns[i])
	}
	c.JSON(http.StatusOK, resp)
}

// GetReturn godoc
// @Summary      Get one return request
// @Tags         returns
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Return request UUID"
// @Success      200 {object} dto.ReturnResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/returns/{id} [get]
func (h *ReturnsHandler) GetReturn(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid return id"))
		return
	}
	rr, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReturnResponse(rr))
}

func toReturnResponse(rr *model.ReturnRequest) dto.ReturnResponse {
	resp := dto.ReturnResponse{
		ID:           rr.ID.String(),
		StoreID:      rr.StoreID.String(),
		StoreName:    rr.StoreName,
		Barcode:      rr.Barcode,
		StyleName:    rr.StyleName,
		Quantity:     rr.Quantity,
		Reason:       rr.Reason,
		ReturnAmount: rr.ReturnAmount,
		Status:       rr.Status,
		RunNumber:    rr.RunNumber,
		CreatedAt:    rr.CreatedAt.Format(time.RFC3339),
	}
	if rr.RunID != nil {
		rid := rr.RunID.String()
		resp.RunID = &rid
	}
	return resp
}
