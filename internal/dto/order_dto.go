package dto

// OrderFilter is bound from the query string of GET /v1/orders.
type OrderFilter struct {
	PlatformOrderID string `form:"platform_order_id"`
	Page            int    `form:"page,default=1"   validate:"min=1"`
	Limit           int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type OrderItemRequest struct {
	Barcode  string `json:"barcode"  validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

// IngestOrderRequest creates one marketplace order with its demand lines.
type IngestOrderRequest struct {
	PlatformOrderID string             `json:"platform_order_id" validate:"required"`
	Items           []OrderItemRequest `json:"items"             validate:"required,min=1,dive"`
}

type OrderItemResponse struct {
	ID       string  `json:"id"`
	Barcode  string  `json:"barcode"`
	Quantity int     `json:"quantity"`
	Status   string  `json:"status"`
	RunID    *string `json:"run_id,omitempty"`
}

type OrderResponse struct {
	ID              string              `json:"id"`
	PlatformOrderID string              `json:"platform_order_id"`
	// Status is derived from the items on every read, never stored.
	Status    string              `json:"status"`
	Items     []OrderItemResponse `json:"items"`
	CreatedAt string              `json:"created_at"`
}

type OrderListResponse struct {
	Data  []OrderResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
