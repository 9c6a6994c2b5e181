package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/budget_approval_app/internal/core/ports/services"
	"github.com/SscSPs/budget_approval_app/internal/dto"
	"github.com/SscSPs/budget_approval_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// itemHandler handles budget item drafting and listing.
type itemHandler struct {
	itemService portssvc.BudgetItemSvcFacade
}

func registerItemRoutes(rg *gin.RouterGroup, itemService portssvc.BudgetItemSvcFacade) {
	h := &itemHandler{itemService: itemService}

	items := rg.Group("/items")
	{
		items.POST("", h.createItem)
		items.GET("", h.listItems)
		items.GET("/:id", h.getItem)
		items.PUT("/:id", h.updateItem)
	}
	rg.GET("/review-queue", middleware.RequireRole(approverRoles...), h.reviewQueue)
}

// createItem godoc
// @Summary Draft a budget item
// @Description Creates a draft item in the caller's unit. Units with child units cannot hold items.
// @Tags items
// @Accept json
// @Produce json
// @Param item body dto.BudgetItemRequest true "Item fields"
// @Success 201 {object} domain.BudgetItem
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Unit has children"
// @Security BearerAuth
// @Router /items [post]
func (h *itemHandler) createItem(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.BudgetItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	item, err := h.itemService.CreateItem(c.Request.Context(), actor, req.ToFields())
	if err != nil {
		respondError(c, err, "Failed to create item")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Item created", slog.String("item_id", item.ItemID))
	c.JSON(http.StatusCreated, item)
}

// updateItem godoc
// @Summary Edit a draft item
// @Tags items
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param item body dto.BudgetItemRequest true "Item fields"
// @Success 200 {object} domain.BudgetItem
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Item is not a draft"
// @Security BearerAuth
// @Router /items/{id} [put]
func (h *itemHandler) updateItem(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.BudgetItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	item, err := h.itemService.UpdateItem(c.Request.Context(), actor, c.Param("id"), req.ToFields())
	if err != nil {
		respondError(c, err, "Failed to update item")
		return
	}
	c.JSON(http.StatusOK, item)
}

// getItem godoc
// @Summary Get a budget item
// @Tags items
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} domain.BudgetItem
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /items/{id} [get]
func (h *itemHandler) getItem(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	item, err := h.itemService.GetItem(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get item")
		return
	}
	c.JSON(http.StatusOK, item)
}

// listItems godoc
// @Summary List budget items
// @Description Lists items visible to the caller, narrowed by unit, year, status and holder.
// @Tags items
// @Produce json
// @Param unitID query string false "Unit ID"
// @Param year query int false "Fiscal year"
// @Param status query string false "draft, pending, approved or rejected"
// @Param submittedTo query string false "Holding unit ID"
// @Success 200 {object} dto.ListItemsResponse
// @Security BearerAuth
// @Router /items [get]
func (h *itemHandler) listItems(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	var params dto.ListItemsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindFailed(c, err)
		return
	}
	items, err := h.itemService.ListItems(c.Request.Context(), actor, params.ToFilter())
	if err != nil {
		respondError(c, err, "Failed to list items")
		return
	}
	c.JSON(http.StatusOK, dto.ToListItemsResponse(items))
}

// reviewQueue godoc
// @Summary Items awaiting the caller's unit
// @Description Pending and approved items held by the caller's unit, grouped by source unit and year.
// @Tags items
// @Produce json
// @Success 200 {object} dto.ReviewQueueResponse
// @Security BearerAuth
// @Router /review-queue [get]
func (h *itemHandler) reviewQueue(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	groups, err := h.itemService.ListReviewQueue(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err, "Failed to load review queue")
		return
	}
	c.JSON(http.StatusOK, dto.ReviewQueueResponse{Groups: groups})
}
