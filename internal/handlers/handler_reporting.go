package handlers

import (
	"net/http"

	"github.com/SscSPs/budget_approval_app/internal/core/domain"
	portssvc "github.com/SscSPs/budget_approval_app/internal/core/ports/services"
	"github.com/SscSPs/budget_approval_app/internal/dto"
	"github.com/SscSPs/budget_approval_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests related to budget reports
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

// registerReportingRoutes registers routes related to budget reports
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := &reportingHandler{reportingService: reportingService}

	reports := rg.Group("/reports", middleware.RequireRole(domain.RoleAdmin, domain.RoleApprover))
	{
		reports.GET("/overview", h.overview)
	}
}

// overview godoc
// @Summary Budget overview
// @Description Item counts and amounts by status, overall and per unit. Approvers see their own subtree.
// @Tags reports
// @Produce json
// @Param year query int false "Fiscal year"
// @Success 200 {object} domain.BudgetOverview
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /reports/overview [get]
func (h *reportingHandler) overview(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	var params dto.ReportingParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindFailed(c, err)
		return
	}
	overview, err := h.reportingService.Overview(c.Request.Context(), actor, params.Year)
	if err != nil {
		respondError(c, err, "Failed to build overview")
		return
	}
	c.JSON(http.StatusOK, overview)
}
