package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"planner-backend-go/internal/core"
	"planner-backend-go/internal/models"
)

// ActivityHandler serves planner and user activity history.
type ActivityHandler struct {
	activityService core.ActivityService
}

func NewActivityHandler(as core.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: as}
}

// pageFromQuery reads ?limit=&startAfter=. A missing or malformed limit
// falls back to the default page size.
func pageFromQuery(c *gin.Context) models.Page {
	limit, _ := strconv.Atoi(c.Query("limit"))
	return models.Page{Limit: limit, StartAfter: c.Query("startAfter")}.Normalize()
}

// PlannerActivity handles GET /activity/planner/:plannerId
func (h *ActivityHandler) PlannerActivity(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	activities, err := h.activityService.ListForPlanner(c.Request.Context(), c.Param("plannerId"), uid, pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"activities": listOf(activities)})
}

// ClearPlannerActivity handles DELETE /activity/planner/:plannerId
func (h *ActivityHandler) ClearPlannerActivity(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	n, err := h.activityService.ClearForPlanner(c.Request.Context(), c.Param("plannerId"), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: gin.H{"deleted": n}, Message: "Activity log cleared successfully"})
}

// UserActivity handles GET /activity/user
func (h *ActivityHandler) UserActivity(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	activities, err := h.activityService.ListForUser(c.Request.Context(), uid, pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"activities": listOf(activities)})
}

// GetActivity handles GET /activity/:activityId
func (h *ActivityHandler) GetActivity(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	activity, err := h.activityService.Get(c.Request.Context(), c.Param("activityId"), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"activity": activity})
}
