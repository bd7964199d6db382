package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vittalogic/approval-engine/internal/application/port"
	"github.com/vittalogic/approval-engine/internal/domain/entity"
	"github.com/vittalogic/approval-engine/pkg/utils"
)

// AllocateBudgetInput carries a budget allocation request
type AllocateBudgetInput struct {
	DepartmentID string
	ApprovalID   string
	PeriodFrom   time.Time
	PeriodTo     time.Time
	Amount       decimal.Decimal
	Notes        string
	CreatedBy    string
}

// UpdateDepartmentInput carries optional department changes
type UpdateDepartmentInput struct {
	Name        *string
	Description *string
}

// DepartmentService manages departments and their budgets: unique-name
// departments, approval-gated budget allocation and ceiling-checked usage
// postings.
type DepartmentService interface {
	CreateDepartment(ctx context.Context, name, description, createdBy string) (*entity.Department, error)
	UpdateDepartment(ctx context.Context, departmentID string, input UpdateDepartmentInput, updatedBy string) (*entity.Department, error)
	GetDepartment(ctx context.Context, departmentID string) (*entity.Department, error)
	AllocateBudget(ctx context.Context, input AllocateBudgetInput) (*entity.DepartmentBudget, error)
	RecordUsage(ctx context.Context, budgetID string, delta decimal.Decimal) (*entity.DepartmentBudget, error)
	ListBudgets(ctx context.Context, departmentID string) ([]*entity.DepartmentBudget, error)
}

type departmentServiceImpl struct {
	departmentRepo port.DepartmentRepository
	budgetRepo     port.BudgetRepository
	approvalRepo   port.ApprovalRepository
	notifier       port.Notifier
	logger         *zap.Logger
}

// NewDepartmentService creates a new DepartmentService
func NewDepartmentService(
	departmentRepo port.DepartmentRepository,
	budgetRepo port.BudgetRepository,
	approvalRepo port.ApprovalRepository,
	notifier port.Notifier,
	logger *zap.Logger,
) DepartmentService {
	return &departmentServiceImpl{
		departmentRepo: departmentRepo,
		budgetRepo:     budgetRepo,
		approvalRepo:   approvalRepo,
		notifier:       notifier,
		logger:         logger,
	}
}

// CreateDepartment creates a department with a unique, exact-match name
func (s *departmentServiceImpl) CreateDepartment(ctx context.Context, name, description, createdBy string) (*entity.Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("department name is required: %w", entity.ErrValidation)
	}
	if createdBy == "" {
		return nil, fmt.Errorf("created_by is required: %w", entity.ErrValidation)
	}

	// Pre-check for a clean error message; the unique index still catches
	// creates that race past this read.
	if existing, err := s.departmentRepo.GetByName(ctx, name); err == nil && existing != nil {
		return nil, fmt.Errorf("department name %q: %w", name, entity.ErrDuplicateName)
	}

	department := &entity.Department{
		DepartmentID: utils.GenerateID(utils.PrefixDepartment),
		Name:         name,
		Description:  description,
		CreatedBy:    createdBy,
		CreatedAt:    time.Now(),
	}

	if err := s.departmentRepo.Create(ctx, department); err != nil {
		s.logger.Error("Failed to create department", zap.String("name", name), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Department created",
		zap.String("department_id", department.DepartmentID),
		zap.String("name", name))

	return department, nil
}

// UpdateDepartment applies name/description changes and stamps the updater
func (s *departmentServiceImpl) UpdateDepartment(ctx context.Context, departmentID string, input UpdateDepartmentInput, updatedBy string) (*entity.Department, error) {
	department, err := s.departmentRepo.GetByID(ctx, departmentID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("department name is required: %w", entity.ErrValidation)
		}
		if name != department.Name {
			if existing, err := s.departmentRepo.GetByName(ctx, name); err == nil && existing != nil {
				return nil, fmt.Errorf("department name %q: %w", name, entity.ErrDuplicateName)
			}
		}
		department.Name = name
	}
	if input.Description != nil {
		department.Description = *input.Description
	}

	now := time.Now()
	department.UpdatedBy = &updatedBy
	department.LastUpdated = &now

	if err := s.departmentRepo.Update(ctx, department); err != nil {
		s.logger.Error("Failed to update department", zap.String("department_id", departmentID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Department updated",
		zap.String("department_id", departmentID),
		zap.String("updated_by", updatedBy))

	return department, nil
}

// GetDepartment retrieves a department by ID
func (s *departmentServiceImpl) GetDepartment(ctx context.Context, departmentID string) (*entity.Department, error) {
	return s.departmentRepo.GetByID(ctx, departmentID)
}

// AllocateBudget creates a budget from an approved DEPARTMENT_BUDGET
// approval. Allocation is idempotent per approval: the unique index on
// approval_id rejects a second budget for the same request.
func (s *departmentServiceImpl) AllocateBudget(ctx context.Context, input AllocateBudgetInput) (*entity.DepartmentBudget, error) {
	if !input.Amount.IsPositive() {
		return nil, fmt.Errorf("allocation amount must be positive: %w", entity.ErrValidation)
	}
	if !input.PeriodTo.After(input.PeriodFrom) {
		return nil, fmt.Errorf("period end must be after period start: %w", entity.ErrInvalidPeriod)
	}

	department, err := s.departmentRepo.GetByID(ctx, input.DepartmentID)
	if err != nil {
		return nil, err
	}

	approval, err := s.approvalRepo.GetByID(ctx, input.ApprovalID)
	if err != nil {
		return nil, err
	}
	if approval.Status != entity.StatusApproved || approval.Category != entity.CategoryDepartmentBudget {
		return nil, fmt.Errorf("approval %s has status %s and category %s: %w",
			approval.ApprovalID, approval.Status, approval.Category, entity.ErrInvalidApproval)
	}

	if _, err := s.budgetRepo.GetByApprovalID(ctx, input.ApprovalID); err == nil {
		return nil, fmt.Errorf("approval %s: %w", input.ApprovalID, entity.ErrDuplicateAllocation)
	} else if !errors.Is(err, entity.ErrNotFound) {
		return nil, err
	}

	budget := &entity.DepartmentBudget{
		BudgetID:        utils.GenerateID(utils.PrefixBudget),
		DepartmentID:    department.DepartmentID,
		ApprovalID:      input.ApprovalID,
		PeriodFrom:      input.PeriodFrom,
		PeriodTo:        input.PeriodTo,
		AllocatedAmount: input.Amount,
		UsedAmount:      decimal.Zero,
		Notes:           input.Notes,
		CreatedBy:       input.CreatedBy,
		CreatedAt:       time.Now(),
	}

	if err := s.budgetRepo.Create(ctx, budget); err != nil {
		s.logger.Error("Failed to allocate budget",
			zap.String("department_id", input.DepartmentID),
			zap.String("approval_id", input.ApprovalID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Budget allocated",
		zap.String("budget_id", budget.BudgetID),
		zap.String("department_id", budget.DepartmentID),
		zap.String("approval_id", budget.ApprovalID),
		zap.String("amount", budget.AllocatedAmount.String()))

	s.notifier.Notify(ctx, port.Notification{
		EmployeeID: approval.SenderID,
		Event:      port.EventBudgetAllocated,
		Payload: map[string]string{
			"budget_id":     budget.BudgetID,
			"department_id": budget.DepartmentID,
			"approval_id":   budget.ApprovalID,
			"amount":        budget.AllocatedAmount.String(),
		},
	})

	return budget, nil
}

// RecordUsage posts spending against a budget; the repository guarantees the
// ceiling check happens atomically.
func (s *departmentServiceImpl) RecordUsage(ctx context.Context, budgetID string, delta decimal.Decimal) (*entity.DepartmentBudget, error) {
	if !delta.IsPositive() {
		return nil, fmt.Errorf("usage delta must be positive: %w", entity.ErrValidation)
	}

	budget, err := s.budgetRepo.AddUsage(ctx, budgetID, delta)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Budget usage recorded",
		zap.String("budget_id", budgetID),
		zap.String("delta", delta.String()),
		zap.String("used", budget.UsedAmount.String()))

	return budget, nil
}

// ListBudgets retrieves all budgets for a department
func (s *departmentServiceImpl) ListBudgets(ctx context.Context, departmentID string) ([]*entity.DepartmentBudget, error) {
	if _, err := s.departmentRepo.GetByID(ctx, departmentID); err != nil {
		return nil, err
	}
	return s.budgetRepo.ListByDepartment(ctx, departmentID)
}
