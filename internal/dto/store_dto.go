package dto

import "github.com/shopspring/decimal"

type CreateStoreRequest struct {
	Name         string  `json:"name"          validate:"required"`
	ContactEmail *string `json:"contact_email" validate:"omitempty,email"`
}

type StoreResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	ContactEmail *string `json:"contact_email,omitempty"`
	Active       bool    `json:"active"`
}

// CatalogLookupResponse is the courier quick-check payload, served from the
// Redis cache when warm.
type CatalogLookupResponse struct {
	Barcode   string          `json:"barcode"`
	StyleName string          `json:"style_name"`
	Color     string          `json:"color,omitempty"`
	Size      string          `json:"size,omitempty"`
	StoreID   string          `json:"store_id"`
	StoreName string          `json:"store_name,omitempty"`
	Inventory int             `json:"inventory"`
	CostPrice decimal.Decimal `json:"cost_price"`
}
