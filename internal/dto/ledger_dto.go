package dto

import "github.com/shopspring/decimal"

type LedgerFilter struct {
	StoreID string `form:"store_id"`
	Type    string `form:"type"` // debit | credit | all
	From    string `form:"from"` // YYYY-MM-DD
	To      string `form:"to"`
	Page    int    `form:"page,default=1"   validate:"min=1"`
	Limit   int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type LedgerEntryResponse struct {
	ID                string          `json:"id"`
	StoreID           string          `json:"store_id"`
	TransactionType   string          `json:"transaction_type"`
	Amount            decimal.Decimal `json:"amount"`
	Discount          decimal.Decimal `json:"discount"`
	Date              string          `json:"date"`
	RunNumber         *int            `json:"run_number,omitempty"`
	RunConfirmationID *string         `json:"run_confirmation_id,omitempty"`
	Notes             string          `json:"notes,omitempty"`
}

type LedgerListResponse struct {
	Data  []LedgerEntryResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

// AmendConfirmationRequest replaces a finalized confirmation's net amount.
// The linked ledger entry is updated in place with an audit note — no
// second entry is created.
type AmendConfirmationRequest struct {
	TotalAmount decimal.Decimal `json:"total_amount" validate:"required"`
}

type StoreBalanceResponse struct {
	StoreID string          `json:"store_id"`
	Balance decimal.Decimal `json:"balance"`
}
