package dto

import "github.com/shopspring/decimal"

// AdjustItemRequest shifts picked_qty by Delta (±1 from courier taps, larger
// jumps from the numeric input). Zero is rejected.
type AdjustItemRequest struct {
	Delta int `json:"delta" validate:"required"`
}

type AdjustItemResponse struct {
	ItemID    string `json:"item_id"`
	PickedQty int    `json:"picked_qty"`
	TargetQty int    `json:"target_qty"`
}

// ConfirmUnavailableRequest carries the client's assertion that the courier
// completed the sustained hold-to-confirm gesture. Zeroing a line must not
// happen on a stray tap.
type ConfirmUnavailableRequest struct {
	Confirmed bool `json:"confirmed" validate:"required"`
}

type CompleteVisitRequest struct {
	ReceiptImageURL string `json:"receipt_image_url" validate:"required,url"`
	Notes           string `json:"notes"`
}

type CompleteVisitResponse struct {
	ConfirmationID string          `json:"confirmation_id"`
	RunID          string          `json:"run_id"`
	StoreID        string          `json:"store_id"`
	PickupAmount   decimal.Decimal `json:"pickup_amount"`
	ReturnAmount   decimal.Decimal `json:"return_amount"`
	NetAmount      decimal.Decimal `json:"net_amount"`
	// AlreadyConfirmed is true when a retry found the existing confirmation.
	AlreadyConfirmed bool   `json:"already_confirmed"`
	RunStatus        string `json:"run_status"`
	ConfirmedAt      string `json:"confirmed_at"`
}
