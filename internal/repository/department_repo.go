package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/vittalogic/approval-engine/internal/application/port"
	"github.com/vittalogic/approval-engine/internal/domain/entity"
)

// DepartmentRepository implements port.DepartmentRepository on SQLite
type DepartmentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDepartmentRepository creates a new department repository
func NewDepartmentRepository(db *sql.DB, logger *zap.Logger) port.DepartmentRepository {
	return &DepartmentRepository{db: db, logger: logger}
}

// Create persists a new department. The unique index on name backs the
// duplicate-name rule even when two creates race.
func (r *DepartmentRepository) Create(ctx context.Context, department *entity.Department) error {
	query := `
		INSERT INTO departments (department_id, name, description, created_by, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		department.DepartmentID,
		department.Name,
		department.Description,
		department.CreatedBy,
		department.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("department name %q: %w", department.Name, entity.ErrDuplicateName)
	}
	if err != nil {
		r.logger.Error("Failed to create department", zap.String("department_id", department.DepartmentID), zap.Error(err))
		return fmt.Errorf("failed to create department: %w", err)
	}

	return nil
}

// GetByID retrieves a department by its ID
func (r *DepartmentRepository) GetByID(ctx context.Context, departmentID string) (*entity.Department, error) {
	return r.getOne(ctx, "department_id = ?", departmentID)
}

// GetByName retrieves a department by exact name match
func (r *DepartmentRepository) GetByName(ctx context.Context, name string) (*entity.Department, error) {
	return r.getOne(ctx, "name = ?", name)
}

func (r *DepartmentRepository) getOne(ctx context.Context, where string, arg interface{}) (*entity.Department, error) {
	query := `
		SELECT department_id, name, description, created_by, updated_by, created_at, last_updated
		FROM departments
		WHERE ` + where

	var department entity.Department
	var updatedBy sql.NullString
	var lastUpdated sql.NullTime

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&department.DepartmentID,
		&department.Name,
		&department.Description,
		&department.CreatedBy,
		&updatedBy,
		&department.CreatedAt,
		&lastUpdated,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("department: %w", entity.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get department", zap.Error(err))
		return nil, fmt.Errorf("failed to get department: %w", err)
	}

	if updatedBy.Valid {
		department.UpdatedBy = &updatedBy.String
	}
	if lastUpdated.Valid {
		department.LastUpdated = &lastUpdated.Time
	}

	return &department, nil
}

// Update persists name/description changes and stamps the audit fields
func (r *DepartmentRepository) Update(ctx context.Context, department *entity.Department) error {
	query := `
		UPDATE departments
		SET name = ?, description = ?, updated_by = ?, last_updated = ?
		WHERE department_id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		department.Name,
		department.Description,
		department.UpdatedBy,
		department.LastUpdated,
		department.DepartmentID,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("department name %q: %w", department.Name, entity.ErrDuplicateName)
	}
	if err != nil {
		r.logger.Error("Failed to update department", zap.String("department_id", department.DepartmentID), zap.Error(err))
		return fmt.Errorf("failed to update department: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("department %s: %w", department.DepartmentID, entity.ErrNotFound)
	}

	return nil
}

// List retrieves departments ordered by creation time
func (r *DepartmentRepository) List(ctx context.Context, limit, offset int) ([]*entity.Department, error) {
	query := `
		SELECT department_id, name, description, created_by, updated_by, created_at, last_updated
		FROM departments
		ORDER BY created_at ASC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list departments", zap.Error(err))
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	defer rows.Close()

	var departments []*entity.Department
	for rows.Next() {
		var department entity.Department
		var updatedBy sql.NullString
		var lastUpdated sql.NullTime

		err := rows.Scan(
			&department.DepartmentID,
			&department.Name,
			&department.Description,
			&department.CreatedBy,
			&updatedBy,
			&department.CreatedAt,
			&lastUpdated,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}

		if updatedBy.Valid {
			department.UpdatedBy = &updatedBy.String
		}
		if lastUpdated.Valid {
			department.LastUpdated = &lastUpdated.Time
		}

		departments = append(departments, &department)
	}

	return departments, rows.Err()
}

// isUniqueViolation reports whether err is a SQLite unique constraint failure
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// Verify interface compliance
var _ port.DepartmentRepository = (*DepartmentRepository)(nil)
