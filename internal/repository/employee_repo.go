package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/vittalogic/approval-engine/internal/application/port"
	"github.com/vittalogic/approval-engine/internal/domain/entity"
)

// EmployeeRepository implements port.EmployeeDirectory over the employees
// table. The table is populated by the employee service; this engine never
// writes to it.
type EmployeeRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewEmployeeRepository creates a new read-only employee directory
func NewEmployeeRepository(db *sql.DB, logger *zap.Logger) port.EmployeeDirectory {
	return &EmployeeRepository{db: db, logger: logger}
}

// GetEmployee resolves an employee by ID
func (r *EmployeeRepository) GetEmployee(ctx context.Context, employeeID string) (*entity.Employee, error) {
	query := `
		SELECT employee_id, name, designation, department_id, level
		FROM employees
		WHERE employee_id = ?
	`

	var employee entity.Employee
	err := r.db.QueryRowContext(ctx, query, employeeID).Scan(
		&employee.EmployeeID,
		&employee.Name,
		&employee.Designation,
		&employee.DepartmentID,
		&employee.Level,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("employee %s: %w", employeeID, entity.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get employee", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}

	return &employee, nil
}

// Verify interface compliance
var _ port.EmployeeDirectory = (*EmployeeRepository)(nil)
