package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"planner-backend-go/internal/db"
	"planner-backend-go/internal/models"
)

// activityService implements the ActivityService interface.
type activityService struct {
	activityRepo db.ActivityRepository
	guard        *AccessGuard
	logger       *zap.Logger
	now          func() time.Time
}

// NewActivityService creates a new ActivityService instance.
func NewActivityService(activityRepo db.ActivityRepository, guard *AccessGuard, logger *zap.Logger) ActivityService {
	return &activityService{
		activityRepo: activityRepo,
		guard:        guard,
		logger:       logger,
		now:          time.Now,
	}
}

// Record appends an activity entry. The triggering operation has already
// succeeded, so a failed append is logged and dropped.
func (s *activityService) Record(ctx context.Context, plannerID, userID string, activityType models.ActivityType, description string, metadata map[string]interface{}) {
	entry := &models.ActivityLog{
		PlannerID:    plannerID,
		UserID:       userID,
		ActivityType: activityType,
		Description:  description,
		Metadata:     metadata,
		Timestamp:    s.now().UTC(),
	}
	if _, err := s.activityRepo.Create(ctx, entry); err != nil {
		s.logger.Warn("Failed to record activity",
			zap.String("activity_type", string(activityType)),
			zap.String("planner_id", plannerID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}

func (s *activityService) ListForPlanner(ctx context.Context, plannerID, actorID string, page models.Page) ([]*models.ActivityLog, error) {
	if _, err := s.guard.RequirePlanner(ctx, plannerID, actorID, models.PermissionView); err != nil {
		return nil, err
	}
	entries, err := s.activityRepo.ListByPlanner(ctx, plannerID, page.Normalize())
	if err != nil {
		return nil, fmt.Errorf("failed to list activity for planner '%s': %w", plannerID, err)
	}
	return entries, nil
}

func (s *activityService) ListForUser(ctx context.Context, userID string, page models.Page) ([]*models.ActivityLog, error) {
	entries, err := s.activityRepo.ListByUser(ctx, userID, page.Normalize())
	if err != nil {
		return nil, fmt.Errorf("failed to list activity for user '%s': %w", userID, err)
	}
	return entries, nil
}

// Get returns one entry if the actor can view its planner.
func (s *activityService) Get(ctx context.Context, activityID, actorID string) (*models.ActivityLog, error) {
	entry, err := s.activityRepo.GetByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrActivityNotFound, activityID)
		}
		return nil, fmt.Errorf("failed to get activity '%s': %w", activityID, err)
	}
	if _, err := s.guard.RequirePlanner(ctx, entry.PlannerID, actorID, models.PermissionView); err != nil {
		if errors.Is(err, ErrPlannerNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrActivityNotFound, activityID)
		}
		return nil, err
	}
	return entry, nil
}

// ClearForPlanner deletes a planner's whole log in one write. Owner only.
func (s *activityService) ClearForPlanner(ctx context.Context, plannerID, actorID string) (int, error) {
	if _, err := s.guard.RequireOwner(ctx, plannerID, actorID); err != nil {
		return 0, err
	}
	n, err := s.activityRepo.DeleteByPlanner(ctx, plannerID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear activity for planner '%s': %w", plannerID, err)
	}
	return n, nil
}
