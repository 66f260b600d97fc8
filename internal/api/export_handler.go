package api

import (
	"github.com/gin-gonic/gin"

	"planner-backend-go/internal/core"
	"planner-backend-go/internal/models"
)

// ExportHandler starts and tracks PDF and calendar exports.
type ExportHandler struct {
	exportService core.ExportService
}

func NewExportHandler(es core.ExportService) *ExportHandler {
	return &ExportHandler{exportService: es}
}

// ExportPlannerPDF handles POST /export/pdf/planner/:plannerId
func (h *ExportHandler) ExportPlannerPDF(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.ExportPDFRequest
	if !bindJSON(c, &req) {
		return
	}
	job, err := h.exportService.ExportPlannerPDF(c.Request.Context(), c.Param("plannerId"), uid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, job)
}

// ExportDateRangePDF handles POST /export/pdf/date-range
func (h *ExportHandler) ExportDateRangePDF(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.ExportDateRangeRequest
	if !bindJSON(c, &req) {
		return
	}
	job, err := h.exportService.ExportDateRangePDF(c.Request.Context(), uid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, job)
}

// ExportStatus handles GET /export/status/:exportId
func (h *ExportHandler) ExportStatus(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	record, err := h.exportService.Status(c.Request.Context(), c.Param("exportId"), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	data := gin.H{"status": record.Status}
	if record.Error != "" {
		data["error"] = record.Error
	}
	respondOK(c, data)
}

// DownloadExport handles GET /export/download/:exportId
func (h *ExportHandler) DownloadExport(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	download, err := h.exportService.Download(c.Request.Context(), c.Param("exportId"), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, download)
}

// ExportCalendar handles POST /export/calendar/:plannerId
func (h *ExportHandler) ExportCalendar(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.CalendarExportRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.exportService.ExportCalendar(c.Request.Context(), c.Param("plannerId"), uid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}
