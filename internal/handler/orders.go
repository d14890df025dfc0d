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

type OrdersHandler struct{ svc service.OrderService }

func NewOrdersHandler(svc service.OrderService) *OrdersHandler { return &OrdersHandler{svc: svc} }

// IngestOrder godoc
// @Summary      Ingest a marketplace order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.IngestOrderRequest true "Order with demand lines"
// @Success      201 {object} dto.OrderResponse
// @Failure      404 {object} apierror.APIError
// @Failure      409 {object} apierror.APIError
// @Router       /v1/orders [post]
func (h *OrdersHandler) IngestOrder(c *gin.Context) {
	var req dto.IngestOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	order, err := h.svc.Ingest(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(order))
}

// ListOrders godoc
// @Summary      List orders with derived status
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        platform_order_id query string false "Platform order id"
// @Param        page  query int false "Page (default 1)"
// @Param        limit query int false "Rows per page (default 50)"
// @Success      200 {object} dto.OrderListResponse
// @Router       /v1/orders [get]
func (h *OrdersHandler) ListOrders(c *gin.Context) {
	var filter dto.OrderFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	orders, total, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list orders"))
		return
	}
	resp := dto.OrderListResponse{
		Data:  make([]dto.OrderResponse, len(orders)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range orders {
		resp.Data[i] = toOrderResponse(&orders[i])
	}
	c.JSON(http.StatusOK, resp)
}

// GetOrder godoc
// @Summary      Get one order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Order UUID"
// @Success      200 {object} dto.OrderResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/orders/{id} [get]
func (h *OrdersHandler) GetOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid order id"))
		return
	}
	order, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

func toOrderResponse(order *model.Order) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:              order.ID.String(),
		PlatformOrderID: order.PlatformOrderID,
		Status:          model.DeriveOrderStatus(order.Items),
		Items:           make([]dto.OrderItemResponse, len(order.Items)),
		CreatedAt:       order.CreatedAt.Format(time.RFC3339),
	}
	for i, item := range order.Items {
		ir := dto.OrderItemResponse{
			ID:       item.ID.String(),
			Barcode:  item.Barcode,
			Quantity: item.Quantity,
			Status:   item.Status,
		}
		if item.RunID != nil {
			rid := item.RunID.String()
			ir.RunID = &rid
		}
		resp.Items[i] = ir
	}
	return resp
}
