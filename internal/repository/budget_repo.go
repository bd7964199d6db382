package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vittalogic/approval-engine/internal/application/port"
	"github.com/vittalogic/approval-engine/internal/domain/entity"
)

// usageRetryAttempts bounds the optimistic-update loop in AddUsage
const usageRetryAttempts = 3

// BudgetRepository implements port.BudgetRepository on SQLite
type BudgetRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewBudgetRepository creates a new budget repository
func NewBudgetRepository(db *sql.DB, logger *zap.Logger) port.BudgetRepository {
	return &BudgetRepository{db: db, logger: logger}
}

const budgetColumns = `
	budget_id, department_id, approval_id, period_from, period_to,
	allocated_amount, used_amount, notes, created_by, created_at
`

// Create persists a new budget. The unique index on approval_id makes
// allocation idempotent per approval: a retried insert fails instead of
// double-spending.
func (r *BudgetRepository) Create(ctx context.Context, budget *entity.DepartmentBudget) error {
	query := `
		INSERT INTO department_budgets (` + budgetColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		budget.BudgetID,
		budget.DepartmentID,
		budget.ApprovalID,
		budget.PeriodFrom,
		budget.PeriodTo,
		budget.AllocatedAmount,
		budget.UsedAmount,
		budget.Notes,
		budget.CreatedBy,
		budget.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("approval %s: %w", budget.ApprovalID, entity.ErrDuplicateAllocation)
	}
	if err != nil {
		r.logger.Error("Failed to create budget", zap.String("budget_id", budget.BudgetID), zap.Error(err))
		return fmt.Errorf("failed to create budget: %w", err)
	}

	return nil
}

// GetByID retrieves a budget by its ID
func (r *BudgetRepository) GetByID(ctx context.Context, budgetID string) (*entity.DepartmentBudget, error) {
	query := `SELECT ` + budgetColumns + ` FROM department_budgets WHERE budget_id = ?`

	budget, err := scanBudget(r.db.QueryRowContext(ctx, query, budgetID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("budget %s: %w", budgetID, entity.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get budget", zap.String("budget_id", budgetID), zap.Error(err))
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}

	return budget, nil
}

// GetByApprovalID retrieves the budget allocated from an approval, if any
func (r *BudgetRepository) GetByApprovalID(ctx context.Context, approvalID string) (*entity.DepartmentBudget, error) {
	query := `SELECT ` + budgetColumns + ` FROM department_budgets WHERE approval_id = ?`

	budget, err := scanBudget(r.db.QueryRowContext(ctx, query, approvalID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("budget for approval %s: %w", approvalID, entity.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get budget by approval", zap.String("approval_id", approvalID), zap.Error(err))
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}

	return budget, nil
}

// ListByDepartment retrieves all budgets for a department, newest period first
func (r *BudgetRepository) ListByDepartment(ctx context.Context, departmentID string) ([]*entity.DepartmentBudget, error) {
	query := `SELECT ` + budgetColumns + ` FROM department_budgets WHERE department_id = ? ORDER BY period_from DESC`

	rows, err := r.db.QueryContext(ctx, query, departmentID)
	if err != nil {
		r.logger.Error("Failed to list budgets", zap.String("department_id", departmentID), zap.Error(err))
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []*entity.DepartmentBudget
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, budget)
	}

	return budgets, rows.Err()
}

// AddUsage increments used_amount under an optimistic guard: the UPDATE only
// applies when used_amount still equals the value just read, so concurrent
// postings cannot lose updates. Amounts are compared in decimal arithmetic,
// never floats.
func (r *BudgetRepository) AddUsage(ctx context.Context, budgetID string, delta decimal.Decimal) (*entity.DepartmentBudget, error) {
	for attempt := 0; attempt < usageRetryAttempts; attempt++ {
		budget, err := r.GetByID(ctx, budgetID)
		if err != nil {
			return nil, err
		}

		newUsed := budget.UsedAmount.Add(delta)
		if newUsed.GreaterThan(budget.AllocatedAmount) {
			return nil, fmt.Errorf("budget %s: used %s of %s: %w",
				budgetID, budget.UsedAmount, budget.AllocatedAmount, entity.ErrOverBudget)
		}

		result, err := r.db.ExecContext(ctx,
			`UPDATE department_budgets SET used_amount = ? WHERE budget_id = ? AND used_amount = ?`,
			newUsed, budgetID, budget.UsedAmount,
		)
		if err != nil {
			r.logger.Error("Failed to add usage", zap.String("budget_id", budgetID), zap.Error(err))
			return nil, fmt.Errorf("failed to add usage: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to read affected rows: %w", err)
		}
		if affected == 1 {
			budget.UsedAmount = newUsed
			return budget, nil
		}

		// Lost the race against a concurrent posting, re-read and retry
		r.logger.Debug("Usage update conflicted, retrying", zap.String("budget_id", budgetID))
	}

	return nil, fmt.Errorf("failed to add usage to budget %s: too many concurrent updates", budgetID)
}

func scanBudget(row rowScanner) (*entity.DepartmentBudget, error) {
	var budget entity.DepartmentBudget

	err := row.Scan(
		&budget.BudgetID,
		&budget.DepartmentID,
		&budget.ApprovalID,
		&budget.PeriodFrom,
		&budget.PeriodTo,
		&budget.AllocatedAmount,
		&budget.UsedAmount,
		&budget.Notes,
		&budget.CreatedBy,
		&budget.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &budget, nil
}

// Verify interface compliance
var _ port.BudgetRepository = (*BudgetRepository)(nil)
