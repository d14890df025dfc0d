package service

import "fmt"

// Kind is the machine-readable error classification surfaced to callers.
// The handler layer maps kinds to HTTP statuses; clients switch on the kind,
// never on the message text.
type Kind string

const (
	// KindNoEligibleDemand — consolidation found nothing to assign.
	KindNoEligibleDemand Kind = "no_eligible_demand"
	// KindReceiptRequired — store visit completion without proof-of-visit.
	KindReceiptRequired Kind = "receipt_required"
	// KindUnknownReference — barcode, store, run or item id not found.
	KindUnknownReference Kind = "unknown_reference"
	// KindInvalidQuantity — negative or out-of-bounds adjustment.
	KindInvalidQuantity Kind = "invalid_quantity"
	// KindConflictingAssignment — a source record was no longer pending when
	// the planner tried to claim it. Retry with fresh data, not a resend.
	KindConflictingAssignment Kind = "conflicting_assignment"
	// KindConflict — an optimistic precondition failed (e.g. run not active).
	KindConflict Kind = "conflict"
	// KindPartialFailure — a multi-step unit failed after partial writes.
	// Unreachable while every unit runs inside one transaction; kept so the
	// contract names it.
	KindPartialFailure Kind = "partial_failure"
)

// DomainError pairs a Kind with human-readable detail and an optional cause.
type DomainError struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *DomainError) Unwrap() error { return e.Err }

func errOf(kind Kind, format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}
