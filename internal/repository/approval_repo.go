package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vittalogic/approval-engine/internal/application/port"
	"github.com/vittalogic/approval-engine/internal/domain/entity"
)

// ApprovalRepository implements port.ApprovalRepository on SQLite
type ApprovalRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewApprovalRepository creates a new approval repository
func NewApprovalRepository(db *sql.DB, logger *zap.Logger) port.ApprovalRepository {
	return &ApprovalRepository{db: db, logger: logger}
}

const approvalColumns = `
	approval_id, sender_id, approver_id, category, reason, priority,
	expense_min, expense_max, tentative_date, status, submitted_at,
	action_by, action_at, action_note, created_at, updated_at
`

// Create persists a new approval
func (r *ApprovalRepository) Create(ctx context.Context, approval *entity.Approval) error {
	query := `
		INSERT INTO approvals (` + approvalColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		approval.ApprovalID,
		approval.SenderID,
		approval.ApproverID,
		approval.Category,
		approval.Reason,
		approval.Priority,
		approval.ExpenseMin,
		approval.ExpenseMax,
		approval.TentativeDate,
		approval.Status,
		approval.SubmittedAt,
		approval.ActionBy,
		approval.ActionAt,
		approval.ActionNote,
		approval.CreatedAt,
		approval.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create approval", zap.String("approval_id", approval.ApprovalID), zap.Error(err))
		return fmt.Errorf("failed to create approval: %w", err)
	}

	return nil
}

// GetByID retrieves an approval by its ID
func (r *ApprovalRepository) GetByID(ctx context.Context, approvalID string) (*entity.Approval, error) {
	query := `SELECT ` + approvalColumns + ` FROM approvals WHERE approval_id = ?`

	approval, err := scanApproval(r.db.QueryRowContext(ctx, query, approvalID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("approval %s: %w", approvalID, entity.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get approval", zap.String("approval_id", approvalID), zap.Error(err))
		return nil, fmt.Errorf("failed to get approval: %w", err)
	}

	return approval, nil
}

// List retrieves approvals matching the filter, sorted by submitted_at
func (r *ApprovalRepository) List(ctx context.Context, filter entity.ApprovalFilter) ([]*entity.Approval, error) {
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Priority != "" {
		conditions = append(conditions, "priority = ?")
		args = append(args, filter.Priority)
	}

	query := `SELECT ` + approvalColumns + ` FROM approvals`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	if filter.SortDesc {
		query += " ORDER BY submitted_at DESC"
	} else {
		query += " ORDER BY submitted_at ASC"
	}

	query += " LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list approvals", zap.Error(err))
		return nil, fmt.Errorf("failed to list approvals: %w", err)
	}
	defer rows.Close()

	var approvals []*entity.Approval
	for rows.Next() {
		approval, err := scanApproval(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan approval: %w", err)
		}
		approvals = append(approvals, approval)
	}

	return approvals, rows.Err()
}

// RecordDecision conditionally transitions the approval status, stamping the
// decision fields in the same statement. The WHERE clause on the previous
// status makes the update a compare-and-set: of two concurrent deciders only
// one finds the row in a decidable state.
func (r *ApprovalRepository) RecordDecision(ctx context.Context, approvalID string, fromStatuses []string, toStatus, actionBy, actionNote string, actionAt time.Time) (bool, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(fromStatuses)), ", ")
	query := fmt.Sprintf(`
		UPDATE approvals
		SET status = ?, action_by = ?, action_at = ?, action_note = ?, updated_at = ?
		WHERE approval_id = ? AND status IN (%s)
	`, placeholders)

	args := []interface{}{toStatus, actionBy, actionAt, actionNote, actionAt, approvalID}
	for _, status := range fromStatuses {
		args = append(args, status)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to record decision",
			zap.String("approval_id", approvalID),
			zap.String("to_status", toStatus),
			zap.Error(err))
		return false, fmt.Errorf("failed to record decision: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected == 1, nil
}

// rowScanner covers *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApproval(row rowScanner) (*entity.Approval, error) {
	var approval entity.Approval
	var actionBy, actionNote sql.NullString
	var actionAt sql.NullTime

	err := row.Scan(
		&approval.ApprovalID,
		&approval.SenderID,
		&approval.ApproverID,
		&approval.Category,
		&approval.Reason,
		&approval.Priority,
		&approval.ExpenseMin,
		&approval.ExpenseMax,
		&approval.TentativeDate,
		&approval.Status,
		&approval.SubmittedAt,
		&actionBy,
		&actionAt,
		&actionNote,
		&approval.CreatedAt,
		&approval.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if actionBy.Valid {
		approval.ActionBy = &actionBy.String
	}
	if actionAt.Valid {
		approval.ActionAt = &actionAt.Time
	}
	if actionNote.Valid {
		approval.ActionNote = &actionNote.String
	}

	return &approval, nil
}

// Verify interface compliance
var _ port.ApprovalRepository = (*ApprovalRepository)(nil)
