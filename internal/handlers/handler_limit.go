package handlers

import (
	"net/http"
	"strconv"

	portssvc "github.com/SscSPs/budget_approval_app/internal/core/ports/services"
	"github.com/SscSPs/budget_approval_app/internal/dto"
	"github.com/SscSPs/budget_approval_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// limitHandler drives the limit cascade from the top level unit down to items.
type limitHandler struct {
	limitService portssvc.LimitSvcFacade
}

func registerLimitRoutes(rg *gin.RouterGroup, limitService portssvc.LimitSvcFacade) {
	h := &limitHandler{limitService: limitService}
	reviewers := middleware.RequireRole(approverRoles...)

	units := rg.Group("/units/:id")
	{
		units.GET("/child-requests", h.childRequests)
		units.GET("/limits/received", h.receivedLimits)
		units.GET("/limits/assigned", h.assignedLimits)
	}
	limits := rg.Group("/limits", reviewers)
	{
		limits.POST("/children", h.assignChildLimits)
		limits.POST("/items", h.assignItemLimits)
		limits.POST("/:id/distribute", h.distributeLimit)
		limits.POST("/:id/distribute-items", h.distributeToItems)
	}
}

// childRequests godoc
// @Summary Requested totals of direct children
// @Description Sum of approved amounts in each direct child's subtree for a fiscal year.
// @Tags limits
// @Produce json
// @Param id path string true "Unit ID"
// @Param year query int true "Fiscal year"
// @Success 200 {object} dto.ChildRequestsResponse
// @Security BearerAuth
// @Router /units/{id}/child-requests [get]
func (h *limitHandler) childRequests(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	var params dto.ChildRequestsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindFailed(c, err)
		return
	}
	children, err := h.limitService.ListChildRequests(c.Request.Context(), actor, c.Param("id"), params.Year)
	if err != nil {
		respondError(c, err, "Failed to list child requests")
		return
	}
	c.JSON(http.StatusOK, dto.ChildRequestsResponse{Children: children})
}

// receivedLimits godoc
// @Summary Limits received by a unit
// @Tags limits
// @Produce json
// @Param id path string true "Unit ID"
// @Success 200 {object} dto.ListLimitsResponse
// @Security BearerAuth
// @Router /units/{id}/limits/received [get]
func (h *limitHandler) receivedLimits(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	limits, err := h.limitService.ListReceivedLimits(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to list limits")
		return
	}
	c.JSON(http.StatusOK, dto.ListLimitsResponse{Limits: limits})
}

// assignedLimits godoc
// @Summary Limits assigned by a unit
// @Tags limits
// @Produce json
// @Param id path string true "Unit ID"
// @Param year query int false "Fiscal year"
// @Success 200 {object} dto.ListLimitsResponse
// @Security BearerAuth
// @Router /units/{id}/limits/assigned [get]
func (h *limitHandler) assignedLimits(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	var year *int
	if raw := c.Query("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid year"})
			return
		}
		year = &y
	}
	limits, err := h.limitService.ListAssignedLimits(c.Request.Context(), actor, c.Param("id"), year)
	if err != nil {
		respondError(c, err, "Failed to list limits")
		return
	}
	c.JSON(http.StatusOK, dto.ListLimitsResponse{Limits: limits})
}

// assignChildLimits godoc
// @Summary Assign limits to direct children
// @Description Used by a top level unit. Existing limits for the year are overwritten.
// @Tags limits
// @Accept json
// @Produce json
// @Param limits body dto.AssignChildLimitsRequest true "Year and allocations"
// @Success 200 {object} dto.ListLimitsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /limits/children [post]
func (h *limitHandler) assignChildLimits(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.AssignChildLimitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	limits, err := h.limitService.AssignChildLimits(c.Request.Context(), actor, req.Year, dto.ToAllocations(req.Allocations))
	if err != nil {
		respondError(c, err, "Failed to assign limits")
		return
	}
	c.JSON(http.StatusOK, dto.ListLimitsResponse{Limits: limits})
}

// distributeLimit godoc
// @Summary Pass a received limit on to children
// @Tags limits
// @Accept json
// @Produce json
// @Param id path string true "Limit ID"
// @Param allocations body dto.DistributeLimitRequest true "Allocations"
// @Success 200 {object} dto.ListLimitsResponse
// @Failure 400 {object} ErrorResponse "Limit exceeded"
// @Security BearerAuth
// @Router /limits/{id}/distribute [post]
func (h *limitHandler) distributeLimit(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.DistributeLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	limits, err := h.limitService.DistributeLimit(c.Request.Context(), actor, c.Param("id"), dto.ToAllocations(req.Allocations))
	if err != nil {
		respondError(c, err, "Failed to distribute limit")
		return
	}
	c.JSON(http.StatusOK, dto.ListLimitsResponse{Limits: limits})
}

// distributeToItems godoc
// @Summary Spread a received limit over the unit's items
// @Tags limits
// @Accept json
// @Produce json
// @Param id path string true "Limit ID"
// @Param allocations body dto.DistributeLimitRequest true "Allocations by item"
// @Success 200 {object} dto.ListItemsResponse
// @Failure 400 {object} ErrorResponse "Limit exceeded"
// @Security BearerAuth
// @Router /limits/{id}/distribute-items [post]
func (h *limitHandler) distributeToItems(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.DistributeLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	items, err := h.limitService.DistributeLimitToItems(c.Request.Context(), actor, c.Param("id"), dto.ToAllocations(req.Allocations))
	if err != nil {
		respondError(c, err, "Failed to distribute limit")
		return
	}
	c.JSON(http.StatusOK, dto.ToListItemsResponse(items))
}

// assignItemLimits godoc
// @Summary Set per-item limits on approved items
// @Description Used by a top level unit on items it holds. With approve set every amount must be positive.
// @Tags limits
// @Accept json
// @Produce json
// @Param allocations body dto.AssignItemLimitsRequest true "Allocations by item"
// @Success 200 {object} dto.ListItemsResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /limits/items [post]
func (h *limitHandler) assignItemLimits(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.AssignItemLimitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	items, err := h.limitService.AssignItemLimits(c.Request.Context(), actor, dto.ToAllocations(req.Allocations), req.Approve)
	if err != nil {
		respondError(c, err, "Failed to assign item limits")
		return
	}
	c.JSON(http.StatusOK, dto.ToListItemsResponse(items))
}
