package service

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vittalogic/approval-engine/internal/application/port"
	"github.com/vittalogic/approval-engine/internal/domain/entity"
)

// Mock repositories with overridable behavior per test

type mockApprovalRepo struct {
	createFunc         func(ctx context.Context, approval *entity.Approval) error
	getByIDFunc        func(ctx context.Context, approvalID string) (*entity.Approval, error)
	listFunc           func(ctx context.Context, filter entity.ApprovalFilter) ([]*entity.Approval, error)
	recordDecisionFunc func(ctx context.Context, approvalID string, fromStatuses []string, toStatus, actionBy, actionNote string, actionAt time.Time) (bool, error)

	created []*entity.Approval
}

func (m *mockApprovalRepo) Create(ctx context.Context, approval *entity.Approval) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, approval)
	}
	m.created = append(m.created, approval)
	return nil
}

func (m *mockApprovalRepo) GetByID(ctx context.Context, approvalID string) (*entity.Approval, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, approvalID)
	}
	return nil, entity.ErrNotFound
}

func (m *mockApprovalRepo) List(ctx context.Context, filter entity.ApprovalFilter) ([]*entity.Approval, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter)
	}
	return nil, nil
}

func (m *mockApprovalRepo) RecordDecision(ctx context.Context, approvalID string, fromStatuses []string, toStatus, actionBy, actionNote string, actionAt time.Time) (bool, error) {
	if m.recordDecisionFunc != nil {
		return m.recordDecisionFunc(ctx, approvalID, fromStatuses, toStatus, actionBy, actionNote, actionAt)
	}
	return true, nil
}

type mockDepartmentRepo struct {
	createFunc    func(ctx context.Context, department *entity.Department) error
	getByIDFunc   func(ctx context.Context, departmentID string) (*entity.Department, error)
	getByNameFunc func(ctx context.Context, name string) (*entity.Department, error)
	updateFunc    func(ctx context.Context, department *entity.Department) error

	created []*entity.Department
}

func (m *mockDepartmentRepo) Create(ctx context.Context, department *entity.Department) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, department)
	}
	m.created = append(m.created, department)
	return nil
}

func (m *mockDepartmentRepo) GetByID(ctx context.Context, departmentID string) (*entity.Department, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, departmentID)
	}
	return nil, entity.ErrNotFound
}

func (m *mockDepartmentRepo) GetByName(ctx context.Context, name string) (*entity.Department, error) {
	if m.getByNameFunc != nil {
		return m.getByNameFunc(ctx, name)
	}
	return nil, entity.ErrNotFound
}

func (m *mockDepartmentRepo) Update(ctx context.Context, department *entity.Department) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, department)
	}
	return nil
}

func (m *mockDepartmentRepo) List(ctx context.Context, limit, offset int) ([]*entity.Department, error) {
	return nil, nil
}

type mockBudgetRepo struct {
	createFunc           func(ctx context.Context, budget *entity.DepartmentBudget) error
	getByIDFunc          func(ctx context.Context, budgetID string) (*entity.DepartmentBudget, error)
	getByApprovalIDFunc  func(ctx context.Context, approvalID string) (*entity.DepartmentBudget, error)
	listByDepartmentFunc func(ctx context.Context, departmentID string) ([]*entity.DepartmentBudget, error)
	addUsageFunc         func(ctx context.Context, budgetID string, delta decimal.Decimal) (*entity.DepartmentBudget, error)

	created []*entity.DepartmentBudget
}

func (m *mockBudgetRepo) Create(ctx context.Context, budget *entity.DepartmentBudget) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, budget)
	}
	m.created = append(m.created, budget)
	return nil
}

func (m *mockBudgetRepo) GetByID(ctx context.Context, budgetID string) (*entity.DepartmentBudget, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, budgetID)
	}
	return nil, entity.ErrNotFound
}

func (m *mockBudgetRepo) GetByApprovalID(ctx context.Context, approvalID string) (*entity.DepartmentBudget, error) {
	if m.getByApprovalIDFunc != nil {
		return m.getByApprovalIDFunc(ctx, approvalID)
	}
	return nil, entity.ErrNotFound
}

func (m *mockBudgetRepo) ListByDepartment(ctx context.Context, departmentID string) ([]*entity.DepartmentBudget, error) {
	if m.listByDepartmentFunc != nil {
		return m.listByDepartmentFunc(ctx, departmentID)
	}
	return nil, nil
}

func (m *mockBudgetRepo) AddUsage(ctx context.Context, budgetID string, delta decimal.Decimal) (*entity.DepartmentBudget, error) {
	if m.addUsageFunc != nil {
		return m.addUsageFunc(ctx, budgetID, delta)
	}
	return nil, entity.ErrNotFound
}

// mockDirectory resolves employees from a fixed map
type mockDirectory struct {
	employees map[string]*entity.Employee
}

func (m *mockDirectory) GetEmployee(ctx context.Context, employeeID string) (*entity.Employee, error) {
	if employee, ok := m.employees[employeeID]; ok {
		return employee, nil
	}
	return nil, entity.ErrNotFound
}

// mockNotifier records notifications
type mockNotifier struct {
	mu     sync.Mutex
	events []port.Notification
}

func (m *mockNotifier) Notify(ctx context.Context, n port.Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, n)
}

func (m *mockNotifier) sent() []port.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]port.Notification(nil), m.events...)
}
