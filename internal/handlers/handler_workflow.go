package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/SscSPs/budget_approval_app/internal/core/domain"
	portssvc "github.com/SscSPs/budget_approval_app/internal/core/ports/services"
	"github.com/SscSPs/budget_approval_app/internal/dto"
	"github.com/SscSPs/budget_approval_app/internal/middleware"
	"github.com/SscSPs/budget_approval_app/internal/utils"
	"github.com/gin-gonic/gin"
)

// workflowHandler moves items through submission and review.
type workflowHandler struct {
	workflowService portssvc.WorkflowSvcFacade
	analytics       *utils.PosthogClientWrapper
}

func registerWorkflowRoutes(rg *gin.RouterGroup, workflowService portssvc.WorkflowSvcFacade, analytics *utils.PosthogClientWrapper) {
	h := &workflowHandler{workflowService: workflowService, analytics: analytics}
	reviewers := middleware.RequireRole(approverRoles...)

	units := rg.Group("/units/:id")
	{
		units.POST("/submit", h.submit)
		units.POST("/forward", reviewers, h.forward)
		units.GET("/submissions", h.listSubmissions)
		units.POST("/years/:year/approve", reviewers, h.approveGroup)
		units.POST("/years/:year/reject", reviewers, h.rejectGroup)
		units.POST("/years/:year/return", reviewers, h.returnGroup)
	}
	items := rg.Group("/items/:id", reviewers)
	{
		items.POST("/approve", h.approveItem)
		items.POST("/reject", h.rejectItem)
		items.POST("/return", h.returnItem)
	}
}

// submit godoc
// @Summary Submit a unit's drafts
// @Description Sends every draft item of the unit to its parent unit. Submission is null when nothing was sent.
// @Tags workflow
// @Produce json
// @Param id path string true "Unit ID"
// @Success 200 {object} dto.SubmissionResponse
// @Failure 400 {object} ErrorResponse "Unit has no parent"
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /units/{id}/submit [post]
func (h *workflowHandler) submit(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	submission, err := h.workflowService.SubmitUnitBudget(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to submit budget")
		return
	}
	h.trackSubmission(c, "budget_submitted", submission)
	c.JSON(http.StatusOK, dto.SubmissionResponse{Submission: submission})
}

// forward godoc
// @Summary Forward approved items to the parent unit
// @Tags workflow
// @Produce json
// @Param id path string true "Unit ID"
// @Success 200 {object} dto.SubmissionResponse
// @Failure 400 {object} ErrorResponse "Unit has no parent"
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /units/{id}/forward [post]
func (h *workflowHandler) forward(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	submission, err := h.workflowService.ForwardToParent(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to forward budget")
		return
	}
	h.trackSubmission(c, "budget_forwarded", submission)
	c.JSON(http.StatusOK, dto.SubmissionResponse{Submission: submission})
}

// listSubmissions godoc
// @Summary Submission batches sent from or to a unit
// @Tags workflow
// @Produce json
// @Param id path string true "Unit ID"
// @Success 200 {object} dto.ListSubmissionsResponse
// @Security BearerAuth
// @Router /units/{id}/submissions [get]
func (h *workflowHandler) listSubmissions(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	subs, err := h.workflowService.ListSubmissions(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to list submissions")
		return
	}
	c.JSON(http.StatusOK, dto.ListSubmissionsResponse{Submissions: subs})
}

// groupTarget reads the unit and year path parameters of a group decision.
func groupTarget(c *gin.Context) (string, int, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < domain.MinBudgetYear || year > domain.MaxBudgetYear {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid year"})
		return "", 0, false
	}
	return c.Param("id"), year, true
}

// approveGroup godoc
// @Summary Approve a unit's pending items for a year
// @Description Refused while a clarification is open. An optional limit is recorded for the unit.
// @Tags workflow
// @Accept json
// @Produce json
// @Param id path string true "Unit ID"
// @Param year path int true "Fiscal year"
// @Param decision body dto.GroupApproveRequest false "Comment and limit"
// @Success 200 {object} dto.GroupDecisionResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Unresolved clarifications"
// @Security BearerAuth
// @Router /units/{id}/years/{year}/approve [post]
func (h *workflowHandler) approveGroup(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	unitID, year, ok := groupTarget(c)
	if !ok {
		return
	}
	var req dto.GroupApproveRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindFailed(c, err)
			return
		}
	}
	items, err := h.workflowService.ApproveGroup(c.Request.Context(), actor, unitID, year, req.Comment, req.Limit)
	if err != nil {
		respondError(c, err, "Failed to approve group")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Group approved",
		slog.String("unit_id", unitID), slog.Int("year", year), slog.Int("count", len(items)))
	h.trackGroup(c, "group_approved", unitID, year, items)
	c.JSON(http.StatusOK, dto.GroupDecisionResponse{UnitID: unitID, Year: year, Items: items})
}

// rejectGroup godoc
// @Summary Reject a unit's pending items for a year
// @Tags workflow
// @Accept json
// @Produce json
// @Param id path string true "Unit ID"
// @Param year path int true "Fiscal year"
// @Param decision body dto.CommentedDecisionRequest true "Reason"
// @Success 200 {object} dto.GroupDecisionResponse
// @Failure 400 {object} ErrorResponse "Comment required"
// @Security BearerAuth
// @Router /units/{id}/years/{year}/reject [post]
func (h *workflowHandler) rejectGroup(c *gin.Context) {
	h.commentedGroupDecision(c, h.workflowService.RejectGroup, "group_rejected", "Failed to reject group")
}

// returnGroup godoc
// @Summary Return a unit's pending items for a year to draft
// @Tags workflow
// @Accept json
// @Produce json
// @Param id path string true "Unit ID"
// @Param year path int true "Fiscal year"
// @Param decision body dto.CommentedDecisionRequest true "Reason"
// @Success 200 {object} dto.GroupDecisionResponse
// @Failure 400 {object} ErrorResponse "Comment required"
// @Security BearerAuth
// @Router /units/{id}/years/{year}/return [post]
func (h *workflowHandler) returnGroup(c *gin.Context) {
	h.commentedGroupDecision(c, h.workflowService.ReturnGroup, "group_returned", "Failed to return group")
}

type groupDecision func(ctx context.Context, actor *domain.User, unitID string, year int, comment string) ([]domain.BudgetItem, error)

func (h *workflowHandler) commentedGroupDecision(c *gin.Context, decide groupDecision, event, failure string) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	unitID, year, ok := groupTarget(c)
	if !ok {
		return
	}
	var req dto.CommentedDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	items, err := decide(c.Request.Context(), actor, unitID, year, req.Comment)
	if err != nil {
		respondError(c, err, failure)
		return
	}
	h.trackGroup(c, event, unitID, year, items)
	c.JSON(http.StatusOK, dto.GroupDecisionResponse{UnitID: unitID, Year: year, Items: items})
}

func (h *workflowHandler) trackSubmission(c *gin.Context, event string, submission *domain.BudgetSubmission) {
	if submission == nil {
		return
	}
	middleware.PosthogEvent(c, h.analytics, event, map[string]any{
		"from_unit_id": submission.FromUnitID,
		"to_unit_id":   submission.ToUnitID,
		"item_count":   len(submission.BudgetItemIDs),
	})
}

func (h *workflowHandler) trackGroup(c *gin.Context, event, unitID string, year int, items []domain.BudgetItem) {
	if len(items) == 0 {
		return
	}
	middleware.PosthogEvent(c, h.analytics, event, map[string]any{
		"unit_id":    unitID,
		"year":       year,
		"item_count": len(items),
		"amount":     domain.SumAmounts(items).StringFixed(2),
	})
}

// approveItem godoc
// @Summary Approve a single pending item
// @Tags workflow
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param decision body dto.ApproveRequest false "Optional comment"
// @Success 200 {object} domain.BudgetItem
// @Failure 409 {object} ErrorResponse "Item is not pending"
// @Security BearerAuth
// @Router /items/{id}/approve [post]
func (h *workflowHandler) approveItem(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.ApproveRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindFailed(c, err)
			return
		}
	}
	item, err := h.workflowService.ApproveItem(c.Request.Context(), actor, c.Param("id"), req.Comment)
	if err != nil {
		respondError(c, err, "Failed to approve item")
		return
	}
	c.JSON(http.StatusOK, item)
}

// rejectItem godoc
// @Summary Reject a single pending item
// @Tags workflow
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param decision body dto.CommentedDecisionRequest true "Reason"
// @Success 200 {object} domain.BudgetItem
// @Failure 400 {object} ErrorResponse "Comment required"
// @Security BearerAuth
// @Router /items/{id}/reject [post]
func (h *workflowHandler) rejectItem(c *gin.Context) {
	h.commentedItemDecision(c, h.workflowService.RejectItem, "Failed to reject item")
}

// returnItem godoc
// @Summary Return a single pending item to draft
// @Tags workflow
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param decision body dto.CommentedDecisionRequest true "Reason"
// @Success 200 {object} domain.BudgetItem
// @Failure 400 {object} ErrorResponse "Comment required"
// @Security BearerAuth
// @Router /items/{id}/return [post]
func (h *workflowHandler) returnItem(c *gin.Context) {
	h.commentedItemDecision(c, h.workflowService.ReturnItem, "Failed to return item")
}

type itemDecision func(ctx context.Context, actor *domain.User, itemID string, comment string) (*domain.BudgetItem, error)

func (h *workflowHandler) commentedItemDecision(c *gin.Context, decide itemDecision, failure string) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.CommentedDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	item, err := decide(c.Request.Context(), actor, c.Param("id"), req.Comment)
	if err != nil {
		respondError(c, err, failure)
		return
	}
	c.JSON(http.StatusOK, item)
}
