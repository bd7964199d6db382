package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vittalogic/approval-engine/internal/application/port"
	"github.com/vittalogic/approval-engine/internal/domain/entity"
	"github.com/vittalogic/approval-engine/internal/domain/workflow"
)

func testDirectory() *mockDirectory {
	return &mockDirectory{employees: map[string]*entity.Employee{
		"EMP-1": {EmployeeID: "EMP-1", Name: "Asha", Level: 1},
		"EMP-2": {EmployeeID: "EMP-2", Name: "Ben", Level: 2},
		"EMP-3": {EmployeeID: "EMP-3", Name: "Carla", Level: 3},
		"EMP-4": {EmployeeID: "EMP-4", Name: "Dev", Level: 4},
	}}
}

func validSubmitInput() SubmitApprovalInput {
	return SubmitApprovalInput{
		SenderID:      "EMP-2",
		ApproverID:    "EMP-3",
		Category:      entity.CategoryDepartmentBudget,
		Reason:        "Q1 budget for engineering",
		Priority:      entity.PriorityHigh,
		ExpenseMin:    decimal.NewFromInt(100000),
		ExpenseMax:    decimal.NewFromInt(150000),
		TentativeDate: time.Now().AddDate(0, 1, 0),
	}
}

func TestApprovalService_Submit(t *testing.T) {
	repo := &mockApprovalRepo{}
	notifier := &mockNotifier{}
	svc := NewApprovalService(repo, testDirectory(), notifier, zap.NewNop())

	approval, err := svc.Submit(context.Background(), validSubmitInput())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(approval.ApprovalID, "APR-"))
	assert.Equal(t, entity.StatusPending, approval.Status)
	assert.Equal(t, "EMP-2", approval.SenderID)
	assert.Equal(t, "EMP-3", approval.ApproverID)
	assert.Nil(t, approval.ActionBy)
	require.Len(t, repo.created, 1)

	events := notifier.sent()
	require.Len(t, events, 1)
	assert.Equal(t, "EMP-3", events[0].EmployeeID)
	assert.Equal(t, port.EventApprovalSubmitted, events[0].Event)
}

func TestApprovalService_Submit_HierarchyViolations(t *testing.T) {
	tests := []struct {
		name       string
		senderID   string
		approverID string
	}{
		{"level 1 sender cannot submit", "EMP-1", "EMP-2"},
		{"approver two levels up", "EMP-2", "EMP-4"},
		{"approver at same level", "EMP-2", "EMP-2"},
		{"approver below sender", "EMP-3", "EMP-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewApprovalService(&mockApprovalRepo{}, testDirectory(), &mockNotifier{}, zap.NewNop())

			input := validSubmitInput()
			input.SenderID = tt.senderID
			input.ApproverID = tt.approverID

			_, err := svc.Submit(context.Background(), input)
			assert.ErrorIs(t, err, entity.ErrHierarchyViolation)
		})
	}
}

func TestApprovalService_Submit_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SubmitApprovalInput)
	}{
		{"empty reason", func(i *SubmitApprovalInput) { i.Reason = "   " }},
		{"reason too long", func(i *SubmitApprovalInput) { i.Reason = strings.Repeat("x", 501) }},
		{"unknown category", func(i *SubmitApprovalInput) { i.Category = "GADGETS" }},
		{"unknown priority", func(i *SubmitApprovalInput) { i.Priority = "URGENT" }},
		{"negative expense min", func(i *SubmitApprovalInput) { i.ExpenseMin = decimal.NewFromInt(-1) }},
		{"max below min", func(i *SubmitApprovalInput) {
			i.ExpenseMin = decimal.NewFromInt(100)
			i.ExpenseMax = decimal.NewFromInt(50)
		}},
		{"tentative date in the past", func(i *SubmitApprovalInput) { i.TentativeDate = time.Now().AddDate(0, 0, -2) }},
		{"missing tentative date", func(i *SubmitApprovalInput) { i.TentativeDate = time.Time{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewApprovalService(&mockApprovalRepo{}, testDirectory(), &mockNotifier{}, zap.NewNop())

			input := validSubmitInput()
			tt.mutate(&input)

			_, err := svc.Submit(context.Background(), input)
			assert.ErrorIs(t, err, entity.ErrValidation)
		})
	}
}

func TestApprovalService_Submit_UnknownSender(t *testing.T) {
	svc := NewApprovalService(&mockApprovalRepo{}, testDirectory(), &mockNotifier{}, zap.NewNop())

	input := validSubmitInput()
	input.SenderID = "EMP-404"

	_, err := svc.Submit(context.Background(), input)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func pendingApproval() *entity.Approval {
	return &entity.Approval{
		ApprovalID:  "APR-1",
		SenderID:    "EMP-2",
		ApproverID:  "EMP-3",
		Category:    entity.CategoryDepartmentBudget,
		Priority:    entity.PriorityHigh,
		Status:      entity.StatusPending,
		SubmittedAt: time.Now(),
	}
}

func TestApprovalService_Decide_Approve(t *testing.T) {
	repo := &mockApprovalRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Approval, error) {
			return pendingApproval(), nil
		},
	}
	notifier := &mockNotifier{}
	svc := NewApprovalService(repo, testDirectory(), notifier, zap.NewNop())

	approval, err := svc.Decide(context.Background(), "APR-1", "EMP-3", entity.ActionApprove, "looks good")
	require.NoError(t, err)

	assert.Equal(t, entity.StatusApproved, approval.Status)
	require.NotNil(t, approval.ActionBy)
	assert.Equal(t, "EMP-3", *approval.ActionBy)
	require.NotNil(t, approval.ActionNote)
	assert.Equal(t, "looks good", *approval.ActionNote)

	events := notifier.sent()
	require.Len(t, events, 1)
	assert.Equal(t, "EMP-2", events[0].EmployeeID)
	assert.Equal(t, port.EventApprovalDecided, events[0].Event)
}

func TestApprovalService_Decide_WrongActor(t *testing.T) {
	repo := &mockApprovalRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Approval, error) {
			return pendingApproval(), nil
		},
		recordDecisionFunc: func(ctx context.Context, id string, from []string, to, by, note string, at time.Time) (bool, error) {
			t.Fatal("decision must not be recorded for the wrong actor")
			return false, nil
		},
	}
	svc := NewApprovalService(repo, testDirectory(), &mockNotifier{}, zap.NewNop())

	_, err := svc.Decide(context.Background(), "APR-1", "EMP-4", entity.ActionApprove, "")
	assert.ErrorIs(t, err, entity.ErrPermissionDenied)
}

func TestApprovalService_Decide_TerminalState(t *testing.T) {
	for _, status := range []string{entity.StatusApproved, entity.StatusRejected} {
		t.Run(status, func(t *testing.T) {
			repo := &mockApprovalRepo{
				getByIDFunc: func(ctx context.Context, id string) (*entity.Approval, error) {
					approval := pendingApproval()
					approval.Status = status
					return approval, nil
				},
			}
			svc := NewApprovalService(repo, testDirectory(), &mockNotifier{}, zap.NewNop())

			for _, action := range []string{entity.ActionApprove, entity.ActionReject, entity.ActionHold} {
				_, err := svc.Decide(context.Background(), "APR-1", "EMP-3", action, "")
				assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
			}
		})
	}
}

func TestApprovalService_Decide_OnHoldCanBeReDecided(t *testing.T) {
	repo := &mockApprovalRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Approval, error) {
			approval := pendingApproval()
			approval.Status = entity.StatusOnHold
			return approval, nil
		},
	}
	svc := NewApprovalService(repo, testDirectory(), &mockNotifier{}, zap.NewNop())

	approval, err := svc.Decide(context.Background(), "APR-1", "EMP-3", entity.ActionReject, "no funds")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRejected, approval.Status)
}

func TestApprovalService_Decide_LosesRace(t *testing.T) {
	repo := &mockApprovalRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Approval, error) {
			return pendingApproval(), nil
		},
		recordDecisionFunc: func(ctx context.Context, id string, from []string, to, by, note string, at time.Time) (bool, error) {
			// Another decider committed first
			return false, nil
		},
	}
	svc := NewApprovalService(repo, testDirectory(), &mockNotifier{}, zap.NewNop())

	_, err := svc.Decide(context.Background(), "APR-1", "EMP-3", entity.ActionApprove, "")
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
}

func TestApprovalService_Decide_UnknownAction(t *testing.T) {
	repo := &mockApprovalRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Approval, error) {
			return pendingApproval(), nil
		},
	}
	svc := NewApprovalService(repo, testDirectory(), &mockNotifier{}, zap.NewNop())

	_, err := svc.Decide(context.Background(), "APR-1", "EMP-3", "escalate", "")
	assert.ErrorIs(t, err, entity.ErrValidation)
}

func TestApprovalService_Decide_NoteTooLong(t *testing.T) {
	svc := NewApprovalService(&mockApprovalRepo{}, testDirectory(), &mockNotifier{}, zap.NewNop())

	_, err := svc.Decide(context.Background(), "APR-1", "EMP-3", entity.ActionApprove, strings.Repeat("x", 101))
	assert.ErrorIs(t, err, entity.ErrValidation)
}

func TestApprovalService_List_ValidatesFilter(t *testing.T) {
	svc := NewApprovalService(&mockApprovalRepo{}, testDirectory(), &mockNotifier{}, zap.NewNop())

	_, err := svc.List(context.Background(), entity.ApprovalFilter{Status: "SLEEPING"})
	assert.ErrorIs(t, err, entity.ErrValidation)

	_, err = svc.List(context.Background(), entity.ApprovalFilter{Priority: "EXTREME"})
	assert.ErrorIs(t, err, entity.ErrValidation)
}

func TestApprovalService_List_AppliesDefaults(t *testing.T) {
	var captured entity.ApprovalFilter
	repo := &mockApprovalRepo{
		listFunc: func(ctx context.Context, filter entity.ApprovalFilter) ([]*entity.Approval, error) {
			captured = filter
			return nil, nil
		},
	}
	svc := NewApprovalService(repo, testDirectory(), &mockNotifier{}, zap.NewNop())

	_, err := svc.List(context.Background(), entity.ApprovalFilter{Limit: -5, Offset: -1})
	require.NoError(t, err)
	assert.Equal(t, 20, captured.Limit)
	assert.Equal(t, 0, captured.Offset)
}
