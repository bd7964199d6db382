package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Approval represents a request routed to a single designated higher-level
// employee for an accept/reject/hold decision. Once the status leaves
// PENDING, the decision fields (ActionBy, ActionAt, ActionNote) are
// append-only.
type Approval struct {
	ApprovalID    string          `json:"approval_id"`
	SenderID      string          `json:"sender_id"`
	ApproverID    string          `json:"approver_id"`
	Category      string          `json:"category"`
	Reason        string          `json:"reason"`
	Priority      string          `json:"priority"`
	ExpenseMin    decimal.Decimal `json:"expense_min"`
	ExpenseMax    decimal.Decimal `json:"expense_max"`
	TentativeDate time.Time       `json:"tentative_date"`
	Status        string          `json:"status"`
	SubmittedAt   time.Time       `json:"submitted_at"`
	ActionBy      *string         `json:"action_by,omitempty"`
	ActionAt      *time.Time      `json:"action_at,omitempty"`
	ActionNote    *string         `json:"action_note,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CategoryLabel returns the display name for the approval's category
func (a *Approval) CategoryLabel() string {
	return CategoryLabel(a.Category)
}

// IsDecided reports whether the approval has reached a terminal decision
func (a *Approval) IsDecided() bool {
	return a.Status == StatusApproved || a.Status == StatusRejected
}

// ApprovalFilter narrows approval listings
type ApprovalFilter struct {
	Status   string // empty means any
	Priority string // empty means any
	SortDesc bool   // sort by submitted_at descending when true
	Limit    int
	Offset   int
}
