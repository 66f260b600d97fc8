package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"planner-backend-go/internal/db"
	"planner-backend-go/internal/models"
	"planner-backend-go/internal/workflow"
)

// DefaultChatHistoryLimit is used when a history request gives no limit.
const DefaultChatHistoryLimit = 50

// aiService implements the AIService interface on top of the workflow engine.
type aiService struct {
	sectionRepo db.SectionRepository
	chatRepo    db.ChatRepository
	guard       *AccessGuard
	activity    ActivityService
	flows       Workflow
	logger      *zap.Logger
	now         func() time.Time
}

// NewAIService creates a new AIService instance.
func NewAIService(
	sr db.SectionRepository,
	cr db.ChatRepository,
	guard *AccessGuard,
	activity ActivityService,
	flows Workflow,
	logger *zap.Logger,
) AIService {
	return &aiService{
		sectionRepo: sr,
		chatRepo:    cr,
		guard:       guard,
		activity:    activity,
		flows:       flows,
		logger:      logger,
		now:         time.Now,
	}
}

type sectionContext struct {
	Type    models.SectionType    `json:"type"`
	Title   string                `json:"title,omitempty"`
	Date    string                `json:"date,omitempty"`
	Content models.SectionContent `json:"content"`
}

type plannerContext struct {
	Title    string           `json:"title"`
	Sections []sectionContext `json:"sections"`
}

func toSectionContext(sections []*models.Section, only []string) []sectionContext {
	var keep map[string]bool
	if len(only) > 0 {
		keep = make(map[string]bool, len(only))
		for _, t := range only {
			keep[t] = true
		}
	}
	out := make([]sectionContext, 0, len(sections))
	for _, sec := range sections {
		if keep != nil && !keep[string(sec.Type)] {
			continue
		}
		out = append(out, sectionContext{Type: sec.Type, Title: sec.Title, Date: sec.Date, Content: sec.Content})
	}
	return out
}

// call posts to a webhook and decodes the reply. Any failure becomes an
// UnavailableError for the named service.
func (s *aiService) call(ctx context.Context, service, webhook string, payload interface{}) (interface{}, error) {
	var reply interface{}
	if err := s.flows.Post(ctx, webhook, payload, &reply); err != nil {
		s.logger.Error("Workflow call failed", zap.String("webhook", webhook), zap.Error(err))
		return nil, unavailable(service, err)
	}
	return reply, nil
}

func (s *aiService) contextDate(c *models.ChatContext) (string, []string, error) {
	date := s.now().UTC().Format(models.DateLayout)
	var only []string
	if c != nil {
		if c.Date != "" {
			if err := validateDate("context.date", c.Date); err != nil {
				return "", nil, err
			}
			date = c.Date
		}
		only = c.Sections
	}
	return date, only, nil
}

func (s *aiService) Chat(ctx context.Context, actorID string, req models.ChatRequest) (*ChatReply, error) {
	planner, err := s.guard.RequirePlanner(ctx, req.PlannerID, actorID, models.PermissionView)
	if err != nil {
		return nil, err
	}
	date, only, err := s.contextDate(req.Context)
	if err != nil {
		return nil, err
	}
	sections, err := s.sectionRepo.ListByDate(ctx, req.PlannerID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat context: %w", err)
	}

	payload := map[string]interface{}{
		"userId":    actorID,
		"plannerId": req.PlannerID,
		"message":   req.Message,
		"plannerContext": plannerContext{
			Title:    planner.Title,
			Sections: toSectionContext(sections, only),
		},
	}
	var reply ChatReply
	if err := s.flows.Post(ctx, workflow.WebhookAIChat, payload, &reply); err != nil {
		s.logger.Error("Workflow call failed", zap.String("webhook", workflow.WebhookAIChat), zap.Error(err))
		return nil, unavailable("AI chat", err)
	}

	msg := &models.ChatMessage{
		PlannerID: req.PlannerID,
		UserID:    actorID,
		Message:   req.Message,
		Response:  reply.Message,
		Timestamp: s.now().UTC(),
	}
	if _, err := s.chatRepo.Create(ctx, msg); err != nil {
		s.logger.Warn("Failed to save chat history", zap.String("planner_id", req.PlannerID), zap.Error(err))
	}
	s.activity.Record(ctx, req.PlannerID, actorID, models.ActivityAIChat, "Used AI assistant", nil)
	return &reply, nil
}

func (s *aiService) ChatHistory(ctx context.Context, plannerID, actorID string, limit int) ([]*models.ChatMessage, error) {
	if _, err := s.guard.RequirePlanner(ctx, plannerID, actorID, models.PermissionView); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultChatHistoryLimit
	}
	if limit > models.MaxPageLimit {
		limit = models.MaxPageLimit
	}
	history, err := s.chatRepo.ListByPlanner(ctx, plannerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat history of planner '%s': %w", plannerID, err)
	}
	return history, nil
}

// ClearChatHistory deletes the planner's chat history. Owner only.
func (s *aiService) ClearChatHistory(ctx context.Context, plannerID, actorID string) error {
	if _, err := s.guard.RequireOwner(ctx, plannerID, actorID); err != nil {
		return err
	}
	if _, err := s.chatRepo.DeleteByPlanner(ctx, plannerID); err != nil {
		return fmt.Errorf("failed to clear chat history of planner '%s': %w", plannerID, err)
	}
	return nil
}

func (s *aiService) SuggestMeals(ctx context.Context, actorID string, req models.MealSuggestionRequest) (interface{}, error) {
	if _, err := s.guard.RequirePlanner(ctx, req.PlannerID, actorID, models.PermissionEdit); err != nil {
		return nil, err
	}
	reply, err := s.call(ctx, "Meal planning", workflow.WebhookMealPlan, map[string]interface{}{
		"userId":      actorID,
		"preferences": req.Preferences,
		"date":        req.Date,
	})
	if err != nil {
		return nil, err
	}
	s.activity.Record(ctx, req.PlannerID, actorID, models.ActivityAIMealSuggestions, "Generated meal suggestions",
		map[string]interface{}{"date": req.Date})
	return reply, nil
}

func (s *aiService) GenerateSchedule(ctx context.Context, actorID string, req models.ScheduleRequest) (interface{}, error) {
	if _, err := s.guard.RequirePlanner(ctx, req.PlannerID, actorID, models.PermissionEdit); err != nil {
		return nil, err
	}
	reply, err := s.call(ctx, "Schedule generation", workflow.WebhookSchedule, map[string]interface{}{
		"userId":      actorID,
		"tasks":       req.Tasks,
		"date":        req.Date,
		"preferences": req.Preferences,
	})
	if err != nil {
		return nil, err
	}
	s.activity.Record(ctx, req.PlannerID, actorID, models.ActivityAIScheduleGenerated, "Generated daily schedule",
		map[string]interface{}{"date": req.Date})
	return reply, nil
}

func (s *aiService) AnalyzeHabits(ctx context.Context, actorID string, req models.HabitAnalysisRequest) (interface{}, error) {
	if _, err := s.guard.RequirePlanner(ctx, req.PlannerID, actorID, models.PermissionView); err != nil {
		return nil, err
	}
	if err := validateRange(req.DateRange.Start, req.DateRange.End); err != nil {
		return nil, err
	}
	sections, err := s.sectionRepo.ListInRange(ctx, req.PlannerID, req.DateRange.Start, req.DateRange.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load habit data: %w", err)
	}
	return s.call(ctx, "Habit analysis", workflow.WebhookHabitAnalysis, map[string]interface{}{
		"userId":    actorID,
		"habitData": toSectionContext(sections, []string{string(models.SectionHabitTracker)}),
	})
}

func (s *aiService) SuggestTasks(ctx context.Context, actorID string, req models.TaskSuggestionRequest) (interface{}, error) {
	if _, err := s.guard.RequirePlanner(ctx, req.PlannerID, actorID, models.PermissionView); err != nil {
		return nil, err
	}
	date, only, err := s.contextDate(req.Context)
	if err != nil {
		return nil, err
	}
	sections, err := s.sectionRepo.ListByDate(ctx, req.PlannerID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load task context: %w", err)
	}
	return s.call(ctx, "Task suggestion", workflow.WebhookTaskSuggestions, map[string]interface{}{
		"userId":  actorID,
		"context": toSectionContext(sections, only),
	})
}

func (s *aiService) GenerateGoals(ctx context.Context, actorID string, req models.GoalsRequest) (interface{}, error) {
	if _, err := s.guard.RequirePlanner(ctx, req.PlannerID, actorID, models.PermissionEdit); err != nil {
		return nil, err
	}
	reply, err := s.call(ctx, "Goal generation", workflow.WebhookGoalGeneration, map[string]interface{}{
		"userId":    actorID,
		"timeframe": req.Timeframe,
		"category":  req.Category,
	})
	if err != nil {
		return nil, err
	}
	s.activity.Record(ctx, req.PlannerID, actorID, models.ActivityAIGoalsGenerated,
		fmt.Sprintf("Generated %s goals", req.Timeframe), nil)
	return reply, nil
}

func (s *aiService) ProvideFeedback(ctx context.Context, actorID string, req models.FeedbackRequest) (interface{}, error) {
	if _, err := s.guard.RequirePlanner(ctx, req.PlannerID, actorID, models.PermissionView); err != nil {
		return nil, err
	}
	if err := validateDate("date", req.Date); err != nil {
		return nil, err
	}
	sections, err := s.sectionRepo.ListByDate(ctx, req.PlannerID, req.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback context: %w", err)
	}
	return s.call(ctx, "Feedback", workflow.WebhookFeedback, map[string]interface{}{
		"userId":   actorID,
		"sections": toSectionContext(sections, nil),
	})
}

