package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"planner-backend-go/internal/core"
	"planner-backend-go/internal/models"
)

// PlannerHandler handles API endpoints related to planners.
type PlannerHandler struct {
	plannerService core.PlannerService
}

// NewPlannerHandler creates a new PlannerHandler.
func NewPlannerHandler(ps core.PlannerService) *PlannerHandler {
	return &PlannerHandler{plannerService: ps}
}

// ListPlanners handles GET /planners
func (h *PlannerHandler) ListPlanners(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	includeArchived := c.Query("includeArchived") == "true"
	planners, err := h.plannerService.List(c.Request.Context(), uid, includeArchived)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"planners": listOf(planners)})
}

// ListPlannersForDate handles GET /planners/date/:date
func (h *PlannerHandler) ListPlannersForDate(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	planners, err := h.plannerService.ListForDate(c.Request.Context(), uid, c.Param("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"planners": listOf(planners)})
}

// CreatePlanner handles POST /planners
func (h *PlannerHandler) CreatePlanner(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.CreatePlannerRequest
	if !bindJSON(c, &req) {
		return
	}
	planner, err := h.plannerService.Create(c.Request.Context(), uid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, gin.H{"planner": planner})
}

// GetPlanner handles GET /planners/:id
func (h *PlannerHandler) GetPlanner(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	planner, err := h.plannerService.Get(c.Request.Context(), c.Param("id"), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"planner": planner})
}

// UpdatePlanner handles PUT /planners/:id
func (h *PlannerHandler) UpdatePlanner(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.UpdatePlannerRequest
	if !bindJSON(c, &req) {
		return
	}
	planner, err := h.plannerService.Update(c.Request.Context(), c.Param("id"), uid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"planner": planner})
}

// DeletePlanner handles DELETE /planners/:id
func (h *PlannerHandler) DeletePlanner(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.plannerService.Delete(c.Request.Context(), c.Param("id"), uid); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Planner deleted successfully")
}

// DuplicatePlanner handles POST /planners/:id/duplicate
func (h *PlannerHandler) DuplicatePlanner(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.DuplicatePlannerRequest
	// The body is optional.
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	planner, err := h.plannerService.Duplicate(c.Request.Context(), c.Param("id"), uid, req.Title)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, gin.H{"planner": planner})
}

// SetDefault handles PUT /planners/:id/default
func (h *PlannerHandler) SetDefault(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	planner, err := h.plannerService.SetDefault(c.Request.Context(), c.Param("id"), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: gin.H{"planner": planner}, Message: "Default planner updated"})
}

// ArchivePlanner handles PUT /planners/:id/archive
func (h *PlannerHandler) ArchivePlanner(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	planner, err := h.plannerService.Archive(c.Request.Context(), c.Param("id"), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: gin.H{"planner": planner}, Message: "Planner archived successfully"})
}

// RestorePlanner handles PUT /planners/:id/restore
func (h *PlannerHandler) RestorePlanner(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	planner, err := h.plannerService.Restore(c.Request.Context(), c.Param("id"), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: gin.H{"planner": planner}, Message: "Planner restored successfully"})
}
