package billing

import "slices"

// Status is the workflow status of a financial document.
// The set of allowed values depends on the document kind.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusConfirmed Status = "CONFIRMED"
	StatusCompleted Status = "COMPLETED"
	StatusSent      Status = "SENT"
	StatusPaid      Status = "PAID"
	StatusOverdue   Status = "OVERDUE"
	StatusReceived  Status = "RECEIVED"
	StatusApproved  Status = "APPROVED"
	StatusCancelled Status = "CANCELLED"
	StatusSubmitted Status = "SUBMITTED"
	StatusRejected  Status = "REJECTED"
)

var allowedStatuses = map[DocumentKind][]Status{
	KindSalesOrder:    {StatusDraft, StatusConfirmed, StatusCompleted, StatusCancelled},
	KindInvoice:       {StatusDraft, StatusSent, StatusPaid, StatusOverdue, StatusCancelled},
	KindPurchaseOrder: {StatusDraft, StatusSent, StatusConfirmed, StatusReceived, StatusCancelled},
	KindVendorBill:    {StatusDraft, StatusApproved, StatusPaid, StatusCancelled},
	KindExpense:       {StatusDraft, StatusSubmitted, StatusApproved, StatusRejected, StatusPaid},
}

// AllowedStatuses returns the statuses a document of the given kind may hold
func AllowedStatuses(kind DocumentKind) []Status {
	return slices.Clone(allowedStatuses[kind])
}

// IsAllowedFor checks the status against the kind's allow-list.
// Transitions between allowed values are not otherwise restricted.
func (s Status) IsAllowedFor(kind DocumentKind) bool {
	return slices.Contains(allowedStatuses[kind], s)
}

// CountsTowardRollup reports whether a document of the given kind in this
// status contributes to its project's financials.
func (s Status) CountsTowardRollup(kind DocumentKind) bool {
	if kind == KindExpense {
		return s == StatusApproved || s == StatusPaid
	}
	return s.IsAllowedFor(kind) && s != StatusCancelled
}

// RollupStatuses returns the statuses of the kind that count toward the roll-up
func RollupStatuses(kind DocumentKind) []Status {
	var out []Status
	for _, s := range allowedStatuses[kind] {
		if s.CountsTowardRollup(kind) {
			out = append(out, s)
		}
	}
	return out
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}
