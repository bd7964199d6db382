package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DepartmentBudget is a monetary allocation to a department for a date range.
// A budget is created only as the side effect of an approved
// DEPARTMENT_BUDGET approval; the approval ID is unique per budget so retried
// allocations cannot double-spend.
type DepartmentBudget struct {
	BudgetID        string          `json:"budget_id"`
	DepartmentID    string          `json:"department_id"`
	ApprovalID      string          `json:"approval_id"`
	PeriodFrom      time.Time       `json:"period_from"`
	PeriodTo        time.Time       `json:"period_to"`
	AllocatedAmount decimal.Decimal `json:"allocated_amount"`
	UsedAmount      decimal.Decimal `json:"used_amount"`
	Notes           string          `json:"notes,omitempty"`
	CreatedBy       string          `json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Remaining returns the unspent portion of the allocation
func (b *DepartmentBudget) Remaining() decimal.Decimal {
	return b.AllocatedAmount.Sub(b.UsedAmount)
}
