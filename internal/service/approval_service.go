package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vittalogic/approval-engine/internal/application/port"
	"github.com/vittalogic/approval-engine/internal/domain/entity"
	"github.com/vittalogic/approval-engine/internal/domain/workflow"
	"github.com/vittalogic/approval-engine/pkg/utils"
)

const (
	maxReasonLength     = 500
	maxActionNoteLength = 100
)

// SubmitApprovalInput carries a new approval request
type SubmitApprovalInput struct {
	SenderID      string
	ApproverID    string
	Category      string
	Reason        string
	Priority      string
	ExpenseMin    decimal.Decimal
	ExpenseMax    decimal.Decimal
	TentativeDate time.Time
}

// ApprovalService coordinates approval submission and decisions: hierarchy
// routing on submit, state-machine guarded transitions on decide, and
// fire-and-forget notifications either way.
type ApprovalService interface {
	Submit(ctx context.Context, input SubmitApprovalInput) (*entity.Approval, error)
	Decide(ctx context.Context, approvalID, actorID, action, note string) (*entity.Approval, error)
	Get(ctx context.Context, approvalID string) (*entity.Approval, error)
	List(ctx context.Context, filter entity.ApprovalFilter) ([]*entity.Approval, error)
}

type approvalServiceImpl struct {
	approvalRepo port.ApprovalRepository
	directory    port.EmployeeDirectory
	notifier     port.Notifier
	logger       *zap.Logger
}

// NewApprovalService creates a new ApprovalService
func NewApprovalService(
	approvalRepo port.ApprovalRepository,
	directory port.EmployeeDirectory,
	notifier port.Notifier,
	logger *zap.Logger,
) ApprovalService {
	return &approvalServiceImpl{
		approvalRepo: approvalRepo,
		directory:    directory,
		notifier:     notifier,
		logger:       logger,
	}
}

// Submit validates the request, enforces the one-level-up routing rule and
// persists the approval in PENDING state.
func (s *approvalServiceImpl) Submit(ctx context.Context, input SubmitApprovalInput) (*entity.Approval, error) {
	if err := validateSubmitInput(input); err != nil {
		return nil, err
	}

	sender, err := s.directory.GetEmployee(ctx, input.SenderID)
	if err != nil {
		return nil, fmt.Errorf("resolve sender: %w", err)
	}
	approver, err := s.directory.GetEmployee(ctx, input.ApproverID)
	if err != nil {
		return nil, fmt.Errorf("resolve approver: %w", err)
	}

	// Level-1 employees have no level above them and cannot submit; everyone
	// else routes to exactly one level up.
	if sender.Level < 2 {
		return nil, fmt.Errorf("sender %s is at level %d: %w", sender.EmployeeID, sender.Level, entity.ErrHierarchyViolation)
	}
	if approver.Level != sender.Level+1 {
		return nil, fmt.Errorf("approver %s at level %d, sender at level %d: %w",
			approver.EmployeeID, approver.Level, sender.Level, entity.ErrHierarchyViolation)
	}

	now := time.Now()
	approval := &entity.Approval{
		ApprovalID:    utils.GenerateID(utils.PrefixApproval),
		SenderID:      input.SenderID,
		ApproverID:    input.ApproverID,
		Category:      input.Category,
		Reason:        strings.TrimSpace(input.Reason),
		Priority:      input.Priority,
		ExpenseMin:    input.ExpenseMin,
		ExpenseMax:    input.ExpenseMax,
		TentativeDate: input.TentativeDate,
		Status:        entity.StatusPending,
		SubmittedAt:   now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.approvalRepo.Create(ctx, approval); err != nil {
		s.logger.Error("Failed to submit approval",
			zap.String("sender_id", input.SenderID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Approval submitted",
		zap.String("approval_id", approval.ApprovalID),
		zap.String("sender_id", approval.SenderID),
		zap.String("approver_id", approval.ApproverID),
		zap.String("category", approval.Category))

	s.notifier.Notify(ctx, port.Notification{
		EmployeeID: approval.ApproverID,
		Event:      port.EventApprovalSubmitted,
		Payload: map[string]string{
			"approval_id": approval.ApprovalID,
			"sender_id":   approval.SenderID,
			"category":    approval.CategoryLabel(),
			"priority":    approval.Priority,
		},
	})

	return approval, nil
}

// Decide applies an approve/reject/hold action. Only the designated approver
// may act, the state machine guards the transition, and persistence uses a
// conditional update so concurrent deciders cannot both win.
func (s *approvalServiceImpl) Decide(ctx context.Context, approvalID, actorID, action, note string) (*entity.Approval, error) {
	if len(note) > maxActionNoteLength {
		return nil, fmt.Errorf("action note exceeds %d characters: %w", maxActionNoteLength, entity.ErrValidation)
	}

	approval, err := s.approvalRepo.GetByID(ctx, approvalID)
	if err != nil {
		return nil, err
	}

	if actorID != approval.ApproverID {
		return nil, fmt.Errorf("actor %s is not the designated approver: %w", actorID, entity.ErrPermissionDenied)
	}

	trigger, err := workflow.TriggerForAction(action)
	if err != nil {
		return nil, fmt.Errorf("action %q: %w", action, entity.ErrValidation)
	}

	machine, err := workflow.NewApprovalMachine(workflow.State(approval.Status))
	if err != nil {
		return nil, fmt.Errorf("approval %s has unknown status %q: %w", approvalID, approval.Status, err)
	}
	if err := machine.Fire(trigger); err != nil {
		return nil, err
	}

	toStatus := machine.State().String()
	actionAt := time.Now()

	// Compare-and-set: the update only applies while the approval is still in
	// a decidable state. A concurrent decider that committed first leaves
	// this one with zero affected rows.
	ok, err := s.approvalRepo.RecordDecision(ctx, approvalID,
		[]string{entity.StatusPending, entity.StatusOnHold},
		toStatus, actorID, note, actionAt)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("approval %s was decided concurrently: %w", approvalID, workflow.ErrInvalidTransition)
	}

	approval.Status = toStatus
	approval.ActionBy = &actorID
	approval.ActionAt = &actionAt
	approval.ActionNote = &note
	approval.UpdatedAt = actionAt

	s.logger.Info("Approval decided",
		zap.String("approval_id", approvalID),
		zap.String("action", action),
		zap.String("status", toStatus),
		zap.String("action_by", actorID))

	s.notifier.Notify(ctx, port.Notification{
		EmployeeID: approval.SenderID,
		Event:      port.EventApprovalDecided,
		Payload: map[string]string{
			"approval_id": approvalID,
			"status":      toStatus,
			"action_by":   actorID,
			"note":        note,
		},
	})

	return approval, nil
}

// Get retrieves an approval by ID
func (s *approvalServiceImpl) Get(ctx context.Context, approvalID string) (*entity.Approval, error) {
	return s.approvalRepo.GetByID(ctx, approvalID)
}

// List retrieves approvals matching the filter
func (s *approvalServiceImpl) List(ctx context.Context, filter entity.ApprovalFilter) ([]*entity.Approval, error) {
	if filter.Status != "" && filter.Status != entity.StatusPending &&
		filter.Status != entity.StatusApproved && filter.Status != entity.StatusRejected &&
		filter.Status != entity.StatusOnHold {
		return nil, fmt.Errorf("unknown status %q: %w", filter.Status, entity.ErrValidation)
	}
	if filter.Priority != "" && !entity.IsValidPriority(filter.Priority) {
		return nil, fmt.Errorf("unknown priority %q: %w", filter.Priority, entity.ErrValidation)
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	return s.approvalRepo.List(ctx, filter)
}

func validateSubmitInput(input SubmitApprovalInput) error {
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return fmt.Errorf("reason is required: %w", entity.ErrValidation)
	}
	if len(reason) > maxReasonLength {
		return fmt.Errorf("reason exceeds %d characters: %w", maxReasonLength, entity.ErrValidation)
	}
	if input.SenderID == "" || input.ApproverID == "" {
		return fmt.Errorf("sender and approver are required: %w", entity.ErrValidation)
	}
	if !entity.IsValidCategory(input.Category) {
		return fmt.Errorf("unknown category %q: %w", input.Category, entity.ErrValidation)
	}
	if !entity.IsValidPriority(input.Priority) {
		return fmt.Errorf("unknown priority %q: %w", input.Priority, entity.ErrValidation)
	}
	if input.ExpenseMin.IsNegative() {
		return fmt.Errorf("expense minimum must not be negative: %w", entity.ErrValidation)
	}
	if input.ExpenseMax.LessThan(input.ExpenseMin) {
		return fmt.Errorf("expense maximum below minimum: %w", entity.ErrValidation)
	}
	if input.TentativeDate.IsZero() {
		return fmt.Errorf("tentative date is required: %w", entity.ErrValidation)
	}
	today := time.Now().Truncate(24 * time.Hour)
	if input.TentativeDate.Before(today) {
		return fmt.Errorf("tentative date is in the past: %w", entity.ErrValidation)
	}
	return nil
}
