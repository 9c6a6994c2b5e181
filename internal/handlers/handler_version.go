package handlers

import (
	"net/http"

	"github.com/SscSPs/budget_approval_app/internal/core/domain"
	portssvc "github.com/SscSPs/budget_approval_app/internal/core/ports/services"
	"github.com/SscSPs/budget_approval_app/internal/dto"
	"github.com/gin-gonic/gin"
)

// versionHandler serves budget snapshots and their comparisons.
type versionHandler struct {
	versionService portssvc.VersionSvcFacade
}

func registerVersionRoutes(rg *gin.RouterGroup, versionService portssvc.VersionSvcFacade) {
	h := &versionHandler{versionService: versionService}

	rg.GET("/units/:id/versions", h.listVersions)
	versions := rg.Group("/versions")
	{
		versions.GET("/:id", h.getVersion)
		versions.GET("/:id/compare", h.compare)
	}
}

// listVersions godoc
// @Summary Snapshots of a unit, newest first
// @Tags versions
// @Produce json
// @Param id path string true "Unit ID"
// @Param limit query int false "Page size" default(20)
// @Param pageToken query string false "Token from a previous page"
// @Success 200 {object} dto.ListVersionsResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /units/{id}/versions [get]
func (h *versionHandler) listVersions(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	var params dto.ListVersionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindFailed(c, err)
		return
	}
	page, err := h.versionService.ListVersions(c.Request.Context(), actor, c.Param("id"), params.Limit, params.PageToken)
	if err != nil {
		respondError(c, err, "Failed to list versions")
		return
	}
	c.JSON(http.StatusOK, dto.ListVersionsResponse{Versions: page.Versions, NextPageToken: page.NextPageToken})
}

// getVersion godoc
// @Summary Get a snapshot
// @Tags versions
// @Produce json
// @Param id path string true "Version ID"
// @Success 200 {object} domain.BudgetVersion
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /versions/{id} [get]
func (h *versionHandler) getVersion(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	version, err := h.versionService.GetVersion(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get version")
		return
	}
	c.JSON(http.StatusOK, version)
}

// compare godoc
// @Summary Compare a snapshot
// @Description Diffs the snapshot against another snapshot of the same unit, or against the current items when with is empty.
// @Tags versions
// @Produce json
// @Param id path string true "Version ID"
// @Param with query string false "Newer version ID"
// @Success 200 {object} dto.ComparisonResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /versions/{id}/compare [get]
func (h *versionHandler) compare(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	var params dto.CompareVersionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindFailed(c, err)
		return
	}
	ctx := c.Request.Context()
	var (
		result []domain.ItemComparison
		err    error
	)
	if params.With == "" {
		result, err = h.versionService.CompareWithCurrent(ctx, actor, c.Param("id"))
	} else {
		result, err = h.versionService.CompareVersions(ctx, actor, c.Param("id"), params.With)
	}
	if err != nil {
		respondError(c, err, "Failed to compare versions")
		return
	}
	c.JSON(http.StatusOK, dto.ToComparisonResponse(result))
}
