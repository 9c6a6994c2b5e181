package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/budget_approval_app/internal/core/domain"
	portssvc "github.com/SscSPs/budget_approval_app/internal/core/ports/services"
	"github.com/SscSPs/budget_approval_app/internal/dto"
	"github.com/SscSPs/budget_approval_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// exportHandler renders approved budgets as documents.
type exportHandler struct {
	exportService portssvc.ExportSvcFacade
}

func registerExportRoutes(rg *gin.RouterGroup, exportService portssvc.ExportSvcFacade) {
	h := &exportHandler{exportService: exportService}

	exports := rg.Group("/exports")
	{
		exports.GET("/summary", h.summary)
		exports.GET("", h.download)
	}
}

// exportTarget binds the query and defaults the unit to the caller's own.
func exportTarget(c *gin.Context, actor *domain.User) (dto.ExportParams, bool) {
	var params dto.ExportParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindFailed(c, err)
		return params, false
	}
	if params.UnitID == "" {
		params.UnitID = actor.UnitID
	}
	return params, true
}

// summary godoc
// @Summary Classification summary of approved items
// @Description Approved amounts in thousands grouped by section, division, chapter and category, one column per year.
// @Tags exports
// @Produce json
// @Param unitID query string false "Unit ID, defaults to the caller's unit"
// @Param year query int false "Fiscal year"
// @Success 200 {object} domain.BudgetSummary
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /exports/summary [get]
func (h *exportHandler) summary(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	params, ok := exportTarget(c, actor)
	if !ok {
		return
	}
	summary, err := h.exportService.BuildSummary(c.Request.Context(), actor, params.UnitID, params.Year)
	if err != nil {
		respondError(c, err, "Failed to build summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// download godoc
// @Summary Download an export
// @Description Generates a DOCX letter, an XLSX workbook or a TREZOR XML file from approved items.
// @Tags exports
// @Produce application/octet-stream
// @Param unitID query string false "Unit ID, defaults to the caller's unit"
// @Param year query int false "Fiscal year"
// @Param format query string false "docx, xlsx or trezor" default(docx)
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /exports [get]
func (h *exportHandler) download(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	params, ok := exportTarget(c, actor)
	if !ok {
		return
	}
	file, err := h.exportService.Export(c.Request.Context(), actor, params.UnitID, params.Year, portssvc.ExportFormat(params.Format))
	if err != nil {
		respondError(c, err, "Failed to generate export")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Export generated",
		slog.String("file", file.FileName), slog.String("archive_key", file.ArchiveKey))
	if file.ArchiveKey != "" {
		c.Header("X-Archive-Key", file.ArchiveKey)
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.FileName+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
