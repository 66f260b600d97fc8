package api

import (
	"github.com/gin-gonic/gin"

	"planner-backend-go/internal/core"
	"planner-backend-go/internal/models"
)

// SharingHandler handles planner sharing and invitations.
type SharingHandler struct {
	sharingService core.SharingService
}

func NewSharingHandler(ss core.SharingService) *SharingHandler {
	return &SharingHandler{sharingService: ss}
}

// SharePlanner handles POST /sharing/planner/:plannerId
func (h *SharingHandler) SharePlanner(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.SharePlannerRequest
	if !bindJSON(c, &req) {
		return
	}
	share, err := h.sharingService.Share(c.Request.Context(), c.Param("plannerId"), uid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, gin.H{"share": share})
}

// ListShares handles GET /sharing/planner/:plannerId
func (h *SharingHandler) ListShares(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	shares, err := h.sharingService.ListShares(c.Request.Context(), c.Param("plannerId"), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"shares": listOf(shares)})
}

// LeavePlanner handles POST /sharing/planner/:plannerId/leave
func (h *SharingHandler) LeavePlanner(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.sharingService.Leave(c.Request.Context(), c.Param("plannerId"), uid); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Left planner successfully")
}

// PendingInvitations handles GET /sharing/invitations
func (h *SharingHandler) PendingInvitations(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	invitations, err := h.sharingService.PendingInvitations(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"invitations": listOf(invitations)})
}

// SharedWithMe handles GET /sharing/shared-with-me
func (h *SharingHandler) SharedWithMe(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	planners, err := h.sharingService.SharedWithMe(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"planners": listOf(planners)})
}

// UpdatePermission handles PUT /sharing/:shareId/permission
func (h *SharingHandler) UpdatePermission(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.UpdatePermissionRequest
	if !bindJSON(c, &req) {
		return
	}
	share, err := h.sharingService.UpdatePermission(c.Request.Context(), c.Param("shareId"), uid, req.Permission)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"share": share})
}

// RemoveShare handles DELETE /sharing/:shareId
func (h *SharingHandler) RemoveShare(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.sharingService.Remove(c.Request.Context(), c.Param("shareId"), uid); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Share removed successfully")
}

// AcceptInvitation handles POST /sharing/:shareId/accept
func (h *SharingHandler) AcceptInvitation(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	share, err := h.sharingService.Accept(c.Request.Context(), c.Param("shareId"), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"share": share})
}

// RejectInvitation handles POST /sharing/:shareId/reject
func (h *SharingHandler) RejectInvitation(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.sharingService.Reject(c.Request.Context(), c.Param("shareId"), uid); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Invitation rejected")
}
