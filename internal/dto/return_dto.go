package dto

import "github.com/shopspring/decimal"

type ReturnFilter struct {
	Status  string `form:"status,default=pending"` // pending | assigned_to_run | processed | rejected | all
	StoreID string `form:"store_id"`
	Page    int    `form:"page,default=1"   validate:"min=1"`
	Limit   int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type CreateReturnRequest struct {
	StoreID      string          `json:"store_id"      validate:"required,uuid"`
	Barcode      string          `json:"barcode"       validate:"required"`
	StyleName    string          `json:"style_name"`
	Quantity     int             `json:"quantity"      validate:"required,min=1"`
	Reason       string          `json:"reason"        validate:"required"`
	ReturnAmount decimal.Decimal `json:"return_amount" validate:"min=0"`
}

type ReturnResponse struct {
	ID           string          `json:"id"`
	StoreID      string          `json:"store_id"`
	StoreName    string          `json:"store_name"`
	Barcode      string          `json:"barcode"`
	StyleName    string          `json:"style_name"`
	Quantity     int             `json:"quantity"`
	Reason       string          `json:"reason"`
	ReturnAmount decimal.Decimal `json:"return_amount"`
	Status       string          `json:"status"`
	RunID        *string         `json:"run_id,omitempty"`
	RunNumber    *int            `json:"run_number,omitempty"`
	CreatedAt    string          `json:"created_at"`
}

type ReturnListResponse struct {
	Data  []ReturnResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}
