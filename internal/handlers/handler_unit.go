package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/SscSPs/budget_approval_app/internal/core/domain"
	portssvc "github.com/SscSPs/budget_approval_app/internal/core/ports/services"
	"github.com/SscSPs/budget_approval_app/internal/dto"
	"github.com/SscSPs/budget_approval_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// unitHandler handles HTTP requests for the organizational hierarchy.
type unitHandler struct {
	orgService  portssvc.OrganizationSvcFacade
	userService portssvc.UserSvcFacade
}

func registerUnitRoutes(rg *gin.RouterGroup, orgService portssvc.OrganizationSvcFacade, userService portssvc.UserSvcFacade) {
	h := &unitHandler{orgService: orgService, userService: userService}

	rg.GET("/me", h.me)
	units := rg.Group("/units")
	{
		units.GET("", h.listUnits)
		units.POST("", middleware.RequireRole(domain.RoleAdmin), h.createUnit)
		units.GET("/:id", h.getUnit)
		units.GET("/:id/children", h.listChildren)
		units.GET("/:id/descendants", h.listDescendants)
		units.GET("/:id/path", h.unitPath)
	}
}

// me godoc
// @Summary Current user
// @Description Returns the authenticated user and the path from the root to their unit.
// @Tags units
// @Produce json
// @Success 200 {object} dto.MeResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /me [get]
func (h *unitHandler) me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	path, err := h.orgService.UnitPath(c.Request.Context(), user.UnitID)
	if err != nil {
		respondError(c, err, "Failed to load unit")
		return
	}
	c.JSON(http.StatusOK, dto.MeResponse{
		User:     dto.ToUserResponse(user),
		UnitPath: dto.ToListUnitsResponse(path).Units,
	})
}

// createUnit godoc
// @Summary Create a unit
// @Description Adds a unit to the hierarchy (admin only).
// @Tags units
// @Accept json
// @Produce json
// @Param unit body dto.CreateUnitRequest true "Unit details"
// @Success 201 {object} dto.UnitResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /units [post]
func (h *unitHandler) createUnit(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.CreateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	unit, err := h.orgService.CreateUnit(c.Request.Context(), req, user)
	if err != nil {
		respondError(c, err, "Failed to create unit")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Unit created", slog.String("new_unit_id", unit.UnitID))
	c.JSON(http.StatusCreated, dto.ToUnitResponse(unit))
}

// listUnits godoc
// @Summary List units
// @Tags units
// @Produce json
// @Success 200 {object} dto.ListUnitsResponse
// @Security BearerAuth
// @Router /units [get]
func (h *unitHandler) listUnits(c *gin.Context) {
	units, err := h.orgService.ListUnits(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list units")
		return
	}
	c.JSON(http.StatusOK, dto.ToListUnitsResponse(units))
}

// getUnit godoc
// @Summary Get a unit
// @Tags units
// @Produce json
// @Param id path string true "Unit ID"
// @Success 200 {object} dto.UnitResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /units/{id} [get]
func (h *unitHandler) getUnit(c *gin.Context) {
	unit, err := h.orgService.GetUnit(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get unit")
		return
	}
	c.JSON(http.StatusOK, dto.ToUnitResponse(unit))
}

// listChildren godoc
// @Summary List direct children of a unit
// @Tags units
// @Produce json
// @Param id path string true "Unit ID"
// @Success 200 {object} dto.ListUnitsResponse
// @Security BearerAuth
// @Router /units/{id}/children [get]
func (h *unitHandler) listChildren(c *gin.Context) {
	h.respondUnits(c, h.orgService.ListChildren)
}

// listDescendants godoc
// @Summary List all units below a unit
// @Tags units
// @Produce json
// @Param id path string true "Unit ID"
// @Success 200 {object} dto.ListUnitsResponse
// @Security BearerAuth
// @Router /units/{id}/descendants [get]
func (h *unitHandler) listDescendants(c *gin.Context) {
	h.respondUnits(c, h.orgService.ListDescendants)
}

// unitPath godoc
// @Summary Breadcrumb path of a unit
// @Description Units from the root down to the given unit.
// @Tags units
// @Produce json
// @Param id path string true "Unit ID"
// @Success 200 {object} dto.ListUnitsResponse
// @Security BearerAuth
// @Router /units/{id}/path [get]
func (h *unitHandler) unitPath(c *gin.Context) {
	h.respondUnits(c, h.orgService.UnitPath)
}

func (h *unitHandler) respondUnits(c *gin.Context, load func(ctx context.Context, unitID string) ([]domain.OrganizationalUnit, error)) {
	units, err := load(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to list units")
		return
	}
	c.JSON(http.StatusOK, dto.ToListUnitsResponse(units))
}
