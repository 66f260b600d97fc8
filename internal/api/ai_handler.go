package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"planner-backend-go/internal/core"
	"planner-backend-go/internal/models"
)

// AIHandler exposes the assistant workflows.
type AIHandler struct {
	aiService core.AIService
}

func NewAIHandler(as core.AIService) *AIHandler {
	return &AIHandler{aiService: as}
}

// Chat handles POST /ai/chat
func (h *AIHandler) Chat(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.ChatRequest
	if !bindJSON(c, &req) {
		return
	}
	reply, err := h.aiService.Chat(c.Request.Context(), uid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, reply)
}

// ChatHistory handles GET /ai/chat/history/:plannerId
func (h *AIHandler) ChatHistory(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	history, err := h.aiService.ChatHistory(c.Request.Context(), c.Param("plannerId"), uid, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"history": listOf(history)})
}

// ClearChatHistory handles DELETE /ai/chat/history/:plannerId
func (h *AIHandler) ClearChatHistory(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.aiService.ClearChatHistory(c.Request.Context(), c.Param("plannerId"), uid); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Chat history cleared successfully")
}

// SuggestMeals handles POST /ai/suggest-meals
func (h *AIHandler) SuggestMeals(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.MealSuggestionRequest
	if !bindJSON(c, &req) {
		return
	}
	meals, err := h.aiService.SuggestMeals(c.Request.Context(), uid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"meals": meals})
}

// GenerateSchedule handles POST /ai/generate-schedule
func (h *AIHandler) GenerateSchedule(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.ScheduleRequest
	if !bindJSON(c, &req) {
		return
	}
	schedule, err := h.aiService.GenerateSchedule(c.Request.Context(), uid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"schedule": schedule})
}

// AnalyzeHabits handles POST /ai/analyze-habits
func (h *AIHandler) AnalyzeHabits(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.HabitAnalysisRequest
	if !bindJSON(c, &req) {
		return
	}
	analysis, err := h.aiService.AnalyzeHabits(c.Request.Context(), uid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"analysis": analysis})
}

// SuggestTasks handles POST /ai/suggest-tasks
func (h *AIHandler) SuggestTasks(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.TaskSuggestionRequest
	if !bindJSON(c, &req) {
		return
	}
	tasks, err := h.aiService.SuggestTasks(c.Request.Context(), uid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"tasks": tasks})
}

// GenerateGoals handles POST /ai/generate-goals
func (h *AIHandler) GenerateGoals(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.GoalsRequest
	if !bindJSON(c, &req) {
		return
	}
	goals, err := h.aiService.GenerateGoals(c.Request.Context(), uid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"goals": goals})
}

// ProvideFeedback handles POST /ai/provide-feedback
func (h *AIHandler) ProvideFeedback(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.FeedbackRequest
	if !bindJSON(c, &req) {
		return
	}
	feedback, err := h.aiService.ProvideFeedback(c.Request.Context(), uid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"feedback": feedback})
}
