package api

import (
	"github.com/gin-gonic/gin"

	"planner-backend-go/internal/core"
	"planner-backend-go/internal/models"
)

// SectionHandler handles API endpoints related to planner sections.
type SectionHandler struct {
	sectionService core.SectionService
}

func NewSectionHandler(ss core.SectionService) *SectionHandler {
	return &SectionHandler{sectionService: ss}
}

// ListByDate handles GET /sections/planner/:plannerId/date/:date
func (h *SectionHandler) ListByDate(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	sections, err := h.sectionService.ListByDate(c.Request.Context(), c.Param("plannerId"), uid, c.Param("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"sections": listOf(sections)})
}

// ListInRange handles GET /sections/planner/:plannerId/range?startDate=&endDate=
func (h *SectionHandler) ListInRange(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	sections, err := h.sectionService.ListInRange(c.Request.Context(), c.Param("plannerId"), uid, c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"sections": listOf(sections)})
}

// ListByType handles GET /sections/planner/:plannerId/type/:type
func (h *SectionHandler) ListByType(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	sections, err := h.sectionService.ListByType(c.Request.Context(), c.Param("plannerId"), uid, models.SectionType(c.Param("type")))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"sections": listOf(sections)})
}

// CreateSection handles POST /sections/planner/:plannerId
func (h *SectionHandler) CreateSection(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.CreateSectionRequest
	if !bindJSON(c, &req) {
		return
	}
	section, err := h.sectionService.Create(c.Request.Context(), c.Param("plannerId"), uid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, gin.H{"section": section})
}

// GetSection handles GET /sections/:id
func (h *SectionHandler) GetSection(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	section, err := h.sectionService.Get(c.Request.Context(), c.Param("id"), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"section": section})
}

// UpdateSection handles PUT /sections/:id
func (h *SectionHandler) UpdateSection(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.UpdateSectionRequest
	if !bindJSON(c, &req) {
		return
	}
	section, err := h.sectionService.Update(c.Request.Context(), c.Param("id"), uid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"section": section})
}

// DeleteSection handles DELETE /sections/:id
func (h *SectionHandler) DeleteSection(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.sectionService.Delete(c.Request.Context(), c.Param("id"), uid); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Section deleted successfully")
}

// ToggleCollapse handles PUT /sections/:id/collapse
func (h *SectionHandler) ToggleCollapse(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	section, err := h.sectionService.ToggleCollapse(c.Request.Context(), c.Param("id"), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"section": section})
}

// DuplicateSection handles POST /sections/:id/duplicate
func (h *SectionHandler) DuplicateSection(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.DuplicateSectionRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	section, err := h.sectionService.Duplicate(c.Request.Context(), c.Param("id"), uid, req.TargetDate)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, gin.H{"section": section})
}

// Reorder handles PUT /sections/reorder
func (h *SectionHandler) Reorder(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.ReorderSectionsRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.sectionService.Reorder(c.Request.Context(), uid, req); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Sections reordered successfully")
}

// BulkUpdate handles PUT /sections/bulk-update
func (h *SectionHandler) BulkUpdate(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.BulkUpdateSectionsRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.sectionService.BulkUpdate(c.Request.Context(), uid, req); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Sections updated successfully")
}
