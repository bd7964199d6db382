package port

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vittalogic/approval-engine/internal/domain/entity"
)

// ApprovalRepository defines persistence operations for Approval
type ApprovalRepository interface {
	Create(ctx context.Context, approval *entity.Approval) error
	GetByID(ctx context.Context, approvalID string) (*entity.Approval, error)
	List(ctx context.Context, filter entity.ApprovalFilter) ([]*entity.Approval, error)

	// RecordDecision conditionally moves the approval from one of fromStatuses
	// to toStatus, stamping the decision fields in the same statement. Returns
	// false (and no error) when the row was not in any of fromStatuses, which
	// is how concurrent deciders lose the race.
	RecordDecision(ctx context.Context, approvalID string, fromStatuses []string, toStatus, actionBy, actionNote string, actionAt time.Time) (bool, error)
}

// DepartmentRepository defines persistence operations for Department
type DepartmentRepository interface {
	Create(ctx context.Context, department *entity.Department) error
	GetByID(ctx context.Context, departmentID string) (*entity.Department, error)
	GetByName(ctx context.Context, name string) (*entity.Department, error)
	Update(ctx context.Context, department *entity.Department) error
	List(ctx context.Context, limit, offset int) ([]*entity.Department, error)
}

// BudgetRepository defines persistence operations for DepartmentBudget
type BudgetRepository interface {
	Create(ctx context.Context, budget *entity.DepartmentBudget) error
	GetByID(ctx context.Context, budgetID string) (*entity.DepartmentBudget, error)
	GetByApprovalID(ctx context.Context, approvalID string) (*entity.DepartmentBudget, error)
	ListByDepartment(ctx context.Context, departmentID string) ([]*entity.DepartmentBudget, error)

	// AddUsage atomically increments used_amount, guarded so the result never
	// exceeds allocated_amount. Returns entity.ErrOverBudget when the ceiling
	// would be crossed.
	AddUsage(ctx context.Context, budgetID string, delta decimal.Decimal) (*entity.DepartmentBudget, error)
}
