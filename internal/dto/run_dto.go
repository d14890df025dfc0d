package dto

// ─── Consolidation ───────────────────────────────────────────────────────────

// ConsolidateRequest narrows the pending pool to an explicit subset when
// either id list is non-empty; empty lists mean "everything pending".
type ConsolidateRequest struct {
	OrderItemIDs []string `json:"order_item_ids" validate:"omitempty,dive,uuid"`
	ReturnIDs    []string `json:"return_ids"     validate:"omitempty,dive,uuid"`
}

// CreatedRun summarizes one run produced by a consolidation call.
type CreatedRun struct {
	RunID       string `json:"run_id"`
	RunNumber   int    `json:"run_number"`
	PickupLines int    `json:"pickup_lines"`
	ReturnLines int    `json:"return_lines"`
	TotalItems  int    `json:"total_items"`
	TotalStores int    `json:"total_stores"`
	TotalStyles int    `json:"total_styles"`
}

type ConsolidateResponse struct {
	Runs []CreatedRun `json:"runs"`
}

// ─── Lifecycle ───────────────────────────────────────────────────────────────

type RunFilter struct {
	Status   string `form:"status"` // draft | active | completed | cancelled | all
	RunnerID string `form:"runner_id"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type ActivateRunRequest struct {
	RunnerID *string `json:"runner_id" validate:"omitempty,uuid"`
}

type CancelRunsRequest struct {
	RunIDs []string `json:"run_ids" validate:"required,min=1,dive,uuid"`
}

// CancelRunResult reports one run's outcome: completed when it had picked
// items (partially fulfilled and closed), cancelled when nothing was picked.
type CancelRunResult struct {
	RunID         string `json:"run_id"`
	Status        string `json:"status,omitempty"`
	PickedCount   int    `json:"picked_count"`
	RevertedCount int    `json:"reverted_count"`
	Error         string `json:"error,omitempty"`
}

type CancelRunsResponse struct {
	Results []CancelRunResult `json:"results"`
}

// ─── Read shapes ─────────────────────────────────────────────────────────────

type RunItemResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Barcode   string `json:"barcode"`
	StoreID   string `json:"store_id"`
	StoreName string `json:"store_name"`
	StyleName string `json:"style_name"`
	TargetQty int    `json:"target_qty"`
	PickedQty int    `json:"picked_qty"`
	Status    string `json:"status"`
}

type RunResponse struct {
	ID          string            `json:"id"`
	RunNumber   int               `json:"run_number"`
	Status      string            `json:"status"`
	TotalItems  int               `json:"total_items"`
	TotalStores int               `json:"total_stores"`
	TotalStyles int               `json:"total_styles"`
	HasReturns  bool              `json:"has_returns"`
	RunnerID    *string           `json:"runner_id,omitempty"`
	Items       []RunItemResponse `json:"items,omitempty"`
	CreatedAt   string            `json:"created_at"`
}

type RunListResponse struct {
	Data  []RunResponse `json:"data"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}
