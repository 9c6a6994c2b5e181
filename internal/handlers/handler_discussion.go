package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/budget_approval_app/internal/core/ports/services"
	"github.com/SscSPs/budget_approval_app/internal/dto"
	"github.com/SscSPs/budget_approval_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// discussionHandler exposes the clarification thread of an item.
type discussionHandler struct {
	discussionService portssvc.DiscussionSvcFacade
}

func registerDiscussionRoutes(rg *gin.RouterGroup, discussionService portssvc.DiscussionSvcFacade) {
	h := &discussionHandler{discussionService: discussionService}

	item := rg.Group("/items/:id")
	{
		item.GET("/comments", h.listComments)
		item.POST("/comments", h.addComment)
		item.POST("/comments/read", h.markRead)
		item.POST("/clarification", middleware.RequireRole(approverRoles...), h.requestClarification)
		item.POST("/clarification/resolve", middleware.RequireRole(approverRoles...), h.resolve)
	}
}

// requestClarification godoc
// @Summary Ask the item's unit for a clarification
// @Tags discussion
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param question body dto.ClarificationRequest true "Question"
// @Success 201 {object} domain.BudgetComment
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /items/{id}/clarification [post]
func (h *discussionHandler) requestClarification(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.ClarificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	comment, err := h.discussionService.RequestClarification(c.Request.Context(), actor, c.Param("id"), req.Content)
	if err != nil {
		respondError(c, err, "Failed to request clarification")
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// addComment godoc
// @Summary Comment on an item
// @Description Adds a top level comment or a reply to one. Replies cannot be nested.
// @Tags discussion
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param comment body dto.AddCommentRequest true "Comment"
// @Success 201 {object} domain.BudgetComment
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /items/{id}/comments [post]
func (h *discussionHandler) addComment(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	comment, err := h.discussionService.AddComment(c.Request.Context(), actor, c.Param("id"), req.Content, req.ParentCommentID)
	if err != nil {
		respondError(c, err, "Failed to add comment")
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// listComments godoc
// @Summary Discussion thread of an item
// @Tags discussion
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} dto.ListCommentsResponse
// @Security BearerAuth
// @Router /items/{id}/comments [get]
func (h *discussionHandler) listComments(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	comments, err := h.discussionService.ListComments(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to list comments")
		return
	}
	c.JSON(http.StatusOK, dto.ListCommentsResponse{Comments: comments})
}

// markRead godoc
// @Summary Mark an item's comments as read
// @Tags discussion
// @Param id path string true "Item ID"
// @Success 204 "No Content"
// @Security BearerAuth
// @Router /items/{id}/comments/read [post]
func (h *discussionHandler) markRead(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.discussionService.MarkCommentsRead(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondError(c, err, "Failed to mark comments read")
		return
	}
	c.Status(http.StatusNoContent)
}

// resolve godoc
// @Summary Close an item's clarification
// @Tags discussion
// @Param id path string true "Item ID"
// @Success 204 "No Content"
// @Security BearerAuth
// @Router /items/{id}/clarification/resolve [post]
func (h *discussionHandler) resolve(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.discussionService.ResolveClarification(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondError(c, err, "Failed to resolve clarification")
		return
	}
	c.Status(http.StatusNoContent)
}
