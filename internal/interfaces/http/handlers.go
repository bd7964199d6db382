package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vittalogic/approval-engine/internal/domain/entity"
	"github.com/vittalogic/approval-engine/internal/domain/workflow"
	"github.com/vittalogic/approval-engine/internal/report"
	"github.com/vittalogic/approval-engine/internal/service"
)

const dateLayout = "2006-01-02"

// Handlers contains all HTTP request handlers
type Handlers struct {
	approvalService   service.ApprovalService
	departmentService service.DepartmentService
	exporter          *report.BudgetExporter
	logger            *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	approvalService service.ApprovalService,
	departmentService service.DepartmentService,
	exporter *report.BudgetExporter,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		approvalService:   approvalService,
		departmentService: departmentService,
		exporter:          exporter,
		logger:            logger,
	}
}

// Response is the standard JSON envelope
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// SubmitApprovalRequest is the body of POST /approval
type SubmitApprovalRequest struct {
	SenderID      string `json:"sender_id" binding:"required"`
	ApproverID    string `json:"approver_id" binding:"required"`
	Category      string `json:"category" binding:"required"`
	Reason        string `json:"reason" binding:"required"`
	Priority      string `json:"priority" binding:"required"`
	ExpenseMin    string `json:"expense_min" binding:"required"`
	ExpenseMax    string `json:"expense_max" binding:"required"`
	TentativeDate string `json:"tentative_date" binding:"required"`
}

// DecisionRequest is the body of PUT /approval/:id/decision
type DecisionRequest struct {
	ActorID string `json:"actor_id" binding:"required"`
	Action  string `json:"action" binding:"required"`
	Note    string `json:"note"`
}

// CreateDepartmentRequest is the body of POST /department
type CreateDepartmentRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	CreatedBy   string `json:"created_by" binding:"required"`
}

// UpdateDepartmentRequest is the body of PUT /department/:id
type UpdateDepartmentRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	UpdatedBy   string  `json:"updated_by" binding:"required"`
}

// AllocateBudgetRequest is the body of POST /department/:id/budget
type AllocateBudgetRequest struct {
	ApprovalID string `json:"approval_id" binding:"required"`
	PeriodFrom string `json:"period_from" binding:"required"`
	PeriodTo   string `json:"period_to" binding:"required"`
	Amount     string `json:"amount" binding:"required"`
	Notes      string `json:"notes"`
	CreatedBy  string `json:"created_by" binding:"required"`
}

// RecordUsageRequest is the body of POST /budget/:id/usage
type RecordUsageRequest struct {
	Delta string `json:"delta" binding:"required"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"status":  "healthy",
			"service": "approval-engine",
			"time":    time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// SubmitApproval handles POST /approval
func (h *Handlers) SubmitApproval(c *gin.Context) {
	var req SubmitApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	expenseMin, err := decimal.NewFromString(req.ExpenseMin)
	if err != nil {
		h.badRequest(c, fmt.Errorf("invalid expense_min: %w", err))
		return
	}
	expenseMax, err := decimal.NewFromString(req.ExpenseMax)
	if err != nil {
		h.badRequest(c, fmt.Errorf("invalid expense_max: %w", err))
		return
	}
	tentativeDate, err := time.Parse(dateLayout, req.TentativeDate)
	if err != nil {
		h.badRequest(c, fmt.Errorf("invalid tentative_date: %w", err))
		return
	}

	approval, err := h.approvalService.Submit(c.Request.Context(), service.SubmitApprovalInput{
		SenderID:      req.SenderID,
		ApproverID:    req.ApproverID,
		Category:      req.Category,
		Reason:        req.Reason,
		Priority:      req.Priority,
		ExpenseMin:    expenseMin,
		ExpenseMax:    expenseMax,
		TentativeDate: tentativeDate,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: approval})
}

// GetApproval handles GET /approval/:id
func (h *Handlers) GetApproval(c *gin.Context) {
	approval, err := h.approvalService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: approval})
}

// ListApprovals handles GET /approval
func (h *Handlers) ListApprovals(c *gin.Context) {
	var query struct {
		Status   string `form:"status"`
		Priority string `form:"priority"`
		Sort     string `form:"sort"`
		Limit    int    `form:"limit"`
		Offset   int    `form:"offset"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		h.badRequest(c, err)
		return
	}

	approvals, err := h.approvalService.List(c.Request.Context(), entity.ApprovalFilter{
		Status:   query.Status,
		Priority: query.Priority,
		SortDesc: query.Sort == "desc",
		Limit:    query.Limit,
		Offset:   query.Offset,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: approvals})
}

// DecideApproval handles PUT /approval/:id/decision
func (h *Handlers) DecideApproval(c *gin.Context) {
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	approval, err := h.approvalService.Decide(c.Request.Context(), c.Param("id"), req.ActorID, req.Action, req.Note)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: approval})
}

// CreateDepartment handles POST /department
func (h *Handlers) CreateDepartment(c *gin.Context) {
	var req CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	department, err := h.departmentService.CreateDepartment(c.Request.Context(), req.Name, req.Description, req.CreatedBy)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: department})
}

// UpdateDepartment handles PUT /department/:id
func (h *Handlers) UpdateDepartment(c *gin.Context) {
	var req UpdateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	department, err := h.departmentService.UpdateDepartment(c.Request.Context(), c.Param("id"), service.UpdateDepartmentInput{
		Name:        req.Name,
		Description: req.Description,
	}, req.UpdatedBy)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: department})
}

// AllocateBudget handles POST /department/:id/budget
func (h *Handlers) AllocateBudget(c *gin.Context) {
	var req AllocateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.badRequest(c, fmt.Errorf("invalid amount: %w", err))
		return
	}
	periodFrom, err := time.Parse(dateLayout, req.PeriodFrom)
	if err != nil {
		h.badRequest(c, fmt.Errorf("invalid period_from: %w", err))
		return
	}
	periodTo, err := time.Parse(dateLayout, req.PeriodTo)
	if err != nil {
		h.badRequest(c, fmt.Errorf("invalid period_to: %w", err))
		return
	}

	budget, err := h.departmentService.AllocateBudget(c.Request.Context(), service.AllocateBudgetInput{
		DepartmentID: c.Param("id"),
		ApprovalID:   req.ApprovalID,
		PeriodFrom:   periodFrom,
		PeriodTo:     periodTo,
		Amount:       amount,
		Notes:        req.Notes,
		CreatedBy:    req.CreatedBy,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: budget})
}

// ListBudgets handles GET /department/:id/budgets
func (h *Handlers) ListBudgets(c *gin.Context) {
	budgets, err := h.departmentService.ListBudgets(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: budgets})
}

// ExportBudgetReport handles GET /department/:id/budget/report
func (h *Handlers) ExportBudgetReport(c *gin.Context) {
	departmentID := c.Param("id")

	department, err := h.departmentService.GetDepartment(c.Request.Context(), departmentID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	budgets, err := h.departmentService.ListBudgets(c.Request.Context(), departmentID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	data, err := h.exporter.Export(c.Request.Context(), department, budgets)
	if err != nil {
		h.respondError(c, err)
		return
	}

	filename := fmt.Sprintf("budget-report-%s.xlsx", departmentID)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// RecordUsage handles POST /budget/:id/usage
func (h *Handlers) RecordUsage(c *gin.Context) {
	var req RecordUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	delta, err := decimal.NewFromString(req.Delta)
	if err != nil {
		h.badRequest(c, fmt.Errorf("invalid delta: %w", err))
		return
	}

	budget, err := h.departmentService.RecordUsage(c.Request.Context(), c.Param("id"), delta)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: budget})
}

func (h *Handlers) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Message: err.Error()})
}

// respondError maps domain errors to HTTP status codes
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, entity.ErrValidation), errors.Is(err, entity.ErrInvalidPeriod):
		status = http.StatusBadRequest
	case errors.Is(err, entity.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, entity.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, entity.ErrHierarchyViolation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, entity.ErrDuplicateName),
		errors.Is(err, entity.ErrDuplicateAllocation),
		errors.Is(err, entity.ErrOverBudget),
		errors.Is(err, entity.ErrInvalidApproval):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, Response{Success: false, Message: "internal error"})
		return
	}

	c.JSON(status, Response{Success: false, Message: err.Error()})
}
