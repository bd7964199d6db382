package port

import (
	"context"

	"github.com/vittalogic/approval-engine/internal/domain/entity"
)

// EmployeeDirectory resolves employee identity for hierarchy routing. The
// employee service owns the data; this engine only reads it.
type EmployeeDirectory interface {
	GetEmployee(ctx context.Context, employeeID string) (*entity.Employee, error)
}

// Notification event types
const (
	EventApprovalSubmitted = "APPROVAL_SUBMITTED"
	EventApprovalDecided   = "APPROVAL_DECIDED"
	EventBudgetAllocated   = "BUDGET_ALLOCATED"
)

// Notification is a fire-and-forget message to an employee
type Notification struct {
	EmployeeID string
	Event      string
	Payload    map[string]string
}

// Notifier delivers notifications. Delivery failure must never roll back the
// workflow transition that produced the event.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}
