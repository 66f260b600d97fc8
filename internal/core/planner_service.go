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

// DuplicateWindowDays is how many calendar days, ending today, a planner
// duplicate copies sections from.
const DuplicateWindowDays = 7

// plannerService implements the PlannerService interface.
type plannerService struct {
	plannerRepo db.PlannerRepository
	sectionRepo db.SectionRepository
	guard       *AccessGuard
	activity    ActivityService
	logger      *zap.Logger
	now         func() time.Time
}

// NewPlannerService creates a new PlannerService instance.
func NewPlannerService(
	pr db.PlannerRepository,
	sr db.SectionRepository,
	guard *AccessGuard,
	activity ActivityService,
	logger *zap.Logger,
) PlannerService {
	return &plannerService{
		plannerRepo: pr,
		sectionRepo: sr,
		guard:       guard,
		activity:    activity,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *plannerService) reload(ctx context.Context, plannerID string) (*models.Planner, error) {
	planner, err := s.plannerRepo.GetByID(ctx, plannerID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrPlannerNotFound, plannerID)
		}
		return nil, fmt.Errorf("failed to reload planner '%s': %w", plannerID, err)
	}
	return planner, nil
}

// Create stores a new planner. A default planner replaces the owner's previous default atomically.
func (s *plannerService) Create(ctx context.Context, ownerID string, req models.CreatePlannerRequest) (*models.Planner, error) {
	now := s.now().UTC()
	planner := &models.Planner{
		UserID:      ownerID,
		Title:       req.Title,
		Color:       req.Color,
		Icon:        req.Icon,
		Description: req.Description,
		IsDefault:   req.IsDefault,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if planner.Color == "" {
		planner.Color = models.DefaultPlannerColor
	}
	if planner.Icon == "" {
		planner.Icon = models.DefaultPlannerIcon
	}

	if _, err := s.plannerRepo.Create(ctx, planner); err != nil {
		return nil, fmt.Errorf("failed to create planner in repository: %w", err)
	}

	s.activity.Record(ctx, planner.ID, ownerID, models.ActivityPlannerCreated, fmt.Sprintf("Created planner %q", planner.Title), nil)
	s.logger.Info("Planner created", zap.String("planner_id", planner.ID), zap.String("user_id", ownerID))
	return planner, nil
}

// Get returns the planner if the actor can at least view it.
func (s *plannerService) Get(ctx context.Context, plannerID, actorID string) (*models.Planner, error) {
	return s.guard.RequirePlanner(ctx, plannerID, actorID, models.PermissionView)
}

func (s *plannerService) List(ctx context.Context, userID string, includeArchived bool) ([]*models.Planner, error) {
	planners, err := s.plannerRepo.ListByOwner(ctx, userID, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("failed to list planners for user '%s': %w", userID, err)
	}
	return planners, nil
}

// ListForDate returns the user's active planners that have sections on date.
func (s *plannerService) ListForDate(ctx context.Context, userID, date string) ([]*models.Planner, error) {
	if _, err := models.ParseDate(date); err != nil {
		return nil, newValidationError("date", "must be a YYYY-MM-DD date")
	}
	planners, err := s.plannerRepo.ListByOwner(ctx, userID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list planners for user '%s': %w", userID, err)
	}

	result := make([]*models.Planner, 0, len(planners))
	for _, p := range planners {
		has, err := s.sectionRepo.HasSectionsOn(ctx, p.ID, date)
		if err != nil {
			return nil, fmt.Errorf("failed to check sections of planner '%s': %w", p.ID, err)
		}
		if has {
			result = append(result, p)
		}
	}
	return result, nil
}

func (s *plannerService) Update(ctx context.Context, plannerID, actorID string, req models.UpdatePlannerRequest) (*models.Planner, error) {
	planner, err := s.guard.RequirePlanner(ctx, plannerID, actorID, models.PermissionEdit)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{"updatedAt": s.now().UTC()}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Color != nil {
		fields["color"] = *req.Color
	}
	if req.Icon != nil {
		fields["icon"] = *req.Icon
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}

	if req.IsDefault != nil && *req.IsDefault {
		err = s.plannerRepo.UpdateAsDefault(ctx, planner.UserID, plannerID, fields)
	} else {
		if req.IsDefault != nil {
			fields["isDefault"] = false
		}
		err = s.plannerRepo.Update(ctx, plannerID, fields)
	}
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrPlannerNotFound, plannerID)
		}
		return nil, fmt.Errorf("failed to update planner '%s': %w", plannerID, err)
	}

	s.activity.Record(ctx, plannerID, actorID, models.ActivityPlannerUpdated, "Updated planner details", nil)
	return s.reload(ctx, plannerID)
}

// Delete removes the planner with its sections and shares. Owner only.
func (s *plannerService) Delete(ctx context.Context, plannerID, actorID string) error {
	planner, err := s.guard.RequireOwner(ctx, plannerID, actorID)
	if err != nil {
		return err
	}

	s.activity.Record(ctx, plannerID, actorID, models.ActivityPlannerDeleted, fmt.Sprintf("Deleted planner %q", planner.Title), nil)

	if err := s.plannerRepo.DeleteCascade(ctx, plannerID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: '%s'", ErrPlannerNotFound, plannerID)
		}
		return fmt.Errorf("failed to delete planner '%s': %w", plannerID, err)
	}
	s.logger.Info("Planner deleted", zap.String("planner_id", plannerID), zap.String("user_id", actorID))
	return nil
}

// Duplicate copies the planner and its sections from the trailing window
// into a new planner owned by the actor.
func (s *plannerService) Duplicate(ctx context.Context, plannerID, actorID, title string) (*models.Planner, error) {
	original, err := s.guard.RequirePlanner(ctx, plannerID, actorID, models.PermissionView)
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = original.Title + " (Copy)"
	}

	now := s.now().UTC()
	copyPlanner := &models.Planner{
		UserID:      actorID,
		Title:       title,
		Color:       original.Color,
		Icon:        original.Icon,
		Description: original.Description,
		IsDefault:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	today := now.Format(models.DateLayout)
	windowStart := now.AddDate(0, 0, -(DuplicateWindowDays - 1)).Format(models.DateLayout)
	sections, err := s.sectionRepo.ListInRange(ctx, plannerID, windowStart, today)
	if err != nil {
		return nil, fmt.Errorf("failed to load sections to duplicate: %w", err)
	}

	if _, err := s.plannerRepo.Create(ctx, copyPlanner); err != nil {
		return nil, fmt.Errorf("failed to create planner copy: %w", err)
	}

	copies := make([]*models.Section, 0, len(sections))
	for _, sec := range sections {
		copies = append(copies, &models.Section{
			PlannerID:   copyPlanner.ID,
			Date:        sec.Date,
			Type:        sec.Type,
			Title:       sec.Title,
			Content:     sec.Content,
			Order:       sec.Order,
			IsCollapsed: false,
			CreatedBy:   actorID,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	if _, err := s.sectionRepo.CreateMany(ctx, copies); err != nil {
		if delErr := s.plannerRepo.DeleteCascade(ctx, copyPlanner.ID); delErr != nil {
			s.logger.Error("Failed to remove incomplete planner copy",
				zap.String("planner_id", copyPlanner.ID), zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to copy sections into planner '%s': %w", copyPlanner.ID, err)
	}

	s.activity.Record(ctx, copyPlanner.ID, actorID, models.ActivityPlannerDuplicated,
		fmt.Sprintf("Duplicated planner %q", original.Title),
		map[string]interface{}{"sourcePlannerId": plannerID, "sectionsCopied": len(copies)},
	)
	return copyPlanner, nil
}

// SetDefault makes the planner the owner's only default.
func (s *plannerService) SetDefault(ctx context.Context, plannerID, actorID string) (*models.Planner, error) {
	if _, err := s.guard.RequireOwner(ctx, plannerID, actorID); err != nil {
		return nil, err
	}
	fields := map[string]interface{}{"updatedAt": s.now().UTC()}
	if err := s.plannerRepo.UpdateAsDefault(ctx, actorID, plannerID, fields); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrPlannerNotFound, plannerID)
		}
		return nil, fmt.Errorf("failed to set default planner '%s': %w", plannerID, err)
	}
	s.activity.Record(ctx, plannerID, actorID, models.ActivityPlannerUpdated, "Set as default planner", nil)
	return s.reload(ctx, plannerID)
}

func (s *plannerService) setArchived(ctx context.Context, plannerID, actorID string, archived bool) (*models.Planner, error) {
	if _, err := s.guard.RequireOwner(ctx, plannerID, actorID); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	fields := map[string]interface{}{
		"isArchived": archived,
		"updatedAt":  now,
	}
	activityType, description := models.ActivityPlannerRestored, "Restored planner"
	if archived {
		fields["archivedAt"] = now
		activityType, description = models.ActivityPlannerArchived, "Archived planner"
	} else {
		fields["archivedAt"] = nil
	}

	if err := s.plannerRepo.Update(ctx, plannerID, fields); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrPlannerNotFound, plannerID)
		}
		return nil, fmt.Errorf("failed to update archive state of planner '%s': %w", plannerID, err)
	}
	s.activity.Record(ctx, plannerID, actorID, activityType, description, nil)
	return s.reload(ctx, plannerID)
}

func (s *plannerService) Archive(ctx context.Context, plannerID, actorID string) (*models.Planner, error) {
	return s.setArchived(ctx, plannerID, actorID, true)
}

func (s *plannerService) Restore(ctx context.Context, plannerID, actorID string) (*models.Planner, error) {
	return s.setArchived(ctx, plannerID, actorID, false)
}
