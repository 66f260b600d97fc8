package api

import (
	"github.com/gin-gonic/gin"

	"planner-backend-go/internal/core"
	"planner-backend-go/internal/models"
)

// HandwritingHandler handles drawing uploads and recognition.
type HandwritingHandler struct {
	handwritingService core.HandwritingService
}

func NewHandwritingHandler(hs core.HandwritingService) *HandwritingHandler {
	return &HandwritingHandler{handwritingService: hs}
}

// Convert handles POST /handwriting/convert
func (h *HandwritingHandler) Convert(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.HandwritingRequest
	if !bindJSON(c, &req) {
		return
	}
	record, err := h.handwritingService.Convert(c.Request.Context(), uid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"id": record.ID, "text": record.Text, "confidence": record.Confidence})
}

// Save handles POST /handwriting/save
func (h *HandwritingHandler) Save(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.SaveHandwritingRequest
	if !bindJSON(c, &req) {
		return
	}
	record, err := h.handwritingService.Save(c.Request.Context(), uid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, gin.H{"id": record.ID, "imageUrl": record.ImageURL})
}

// Get handles GET /handwriting/:id
func (h *HandwritingHandler) Get(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	record, err := h.handwritingService.Get(c.Request.Context(), c.Param("id"), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"handwriting": record})
}

// Delete handles DELETE /handwriting/:id
func (h *HandwritingHandler) Delete(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.handwritingService.Delete(c.Request.Context(), c.Param("id"), uid); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Handwriting deleted successfully")
}
