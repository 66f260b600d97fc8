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

// SectionsByTypeLimit caps ListByType results.
const SectionsByTypeLimit = 50

// sectionService implements the SectionService interface.
type sectionService struct {
	sectionRepo db.SectionRepository
	guard       *AccessGuard
	activity    ActivityService
	logger      *zap.Logger
	now         func() time.Time
}

// NewSectionService creates a new SectionService instance.
func NewSectionService(sr db.SectionRepository, guard *AccessGuard, activity ActivityService, logger *zap.Logger) SectionService {
	return &sectionService{
		sectionRepo: sr,
		guard:       guard,
		activity:    activity,
		logger:      logger,
		now:         time.Now,
	}
}

func validateDate(field, value string) error {
	if _, err := models.ParseDate(value); err != nil {
		return newValidationError(field, "must be a YYYY-MM-DD date")
	}
	return nil
}

// validateRange checks an inclusive YYYY-MM-DD range.
func validateRange(startDate, endDate string) error {
	if err := validateDate("startDate", startDate); err != nil {
		return err
	}
	if err := validateDate("endDate", endDate); err != nil {
		return err
	}
	if startDate > endDate {
		return newValidationError("endDate", "must not be before startDate")
	}
	return nil
}

func decodeContent(t models.SectionType, raw []byte) (models.SectionContent, error) {
	content, err := models.DecodeSectionContent(t, raw)
	if err != nil {
		return nil, newValidationError("content", "%s", err.Error())
	}
	return content, nil
}

func mapSectionErr(err error, sectionID string) error {
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("%w: '%s'", ErrSectionNotFound, sectionID)
	}
	return fmt.Errorf("failed to write section '%s': %w", sectionID, err)
}

func (s *sectionService) reload(ctx context.Context, sectionID string) (*models.Section, error) {
	section, err := s.sectionRepo.GetByID(ctx, sectionID)
	if err != nil {
		return nil, mapSectionErr(err, sectionID)
	}
	return section, nil
}

func (s *sectionService) Create(ctx context.Context, plannerID, actorID string, req models.CreateSectionRequest) (*models.Section, error) {
	if _, err := s.guard.RequirePlanner(ctx, plannerID, actorID, models.PermissionEdit); err != nil {
		return nil, err
	}
	if !req.Type.Valid() {
		return nil, newValidationError("type", "unknown section type %q", req.Type)
	}
	if err := validateDate("date", req.Date); err != nil {
		return nil, err
	}
	content, err := decodeContent(req.Type, req.Content)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	section := &models.Section{
		PlannerID:   plannerID,
		Date:        req.Date,
		Type:        req.Type,
		Title:       req.Title,
		Content:     content,
		IsCollapsed: req.IsCollapsed,
		CreatedBy:   actorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if section.Title == "" {
		section.Title = string(req.Type)
	}
	if req.Order != nil {
		section.Order = *req.Order
	}

	if _, err := s.sectionRepo.Create(ctx, section); err != nil {
		return nil, fmt.Errorf("failed to create section: %w", err)
	}
	s.activity.Record(ctx, plannerID, actorID, models.ActivitySectionCreated,
		fmt.Sprintf("Added %s section", section.Type),
		map[string]interface{}{"sectionId": section.ID, "date": section.Date},
	)
	return section, nil
}

func (s *sectionService) Get(ctx context.Context, sectionID, actorID string) (*models.Section, error) {
	section, _, err := s.guard.RequireSection(ctx, sectionID, actorID, models.PermissionView)
	return section, err
}

func (s *sectionService) ListByDate(ctx context.Context, plannerID, actorID, date string) ([]*models.Section, error) {
	if err := validateDate("date", date); err != nil {
		return nil, err
	}
	if _, err := s.guard.RequirePlanner(ctx, plannerID, actorID, models.PermissionView); err != nil {
		return nil, err
	}
	sections, err := s.sectionRepo.ListByDate(ctx, plannerID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list sections for planner '%s' on %s: %w", plannerID, date, err)
	}
	return sections, nil
}

func (s *sectionService) ListInRange(ctx context.Context, plannerID, actorID, startDate, endDate string) ([]*models.Section, error) {
	if err := validateRange(startDate, endDate); err != nil {
		return nil, err
	}
	if _, err := s.guard.RequirePlanner(ctx, plannerID, actorID, models.PermissionView); err != nil {
		return nil, err
	}
	sections, err := s.sectionRepo.ListInRange(ctx, plannerID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list sections for planner '%s': %w", plannerID, err)
	}
	return sections, nil
}

// ListByType returns the most recent sections of one type, newest date first.
func (s *sectionService) ListByType(ctx context.Context, plannerID, actorID string, sectionType models.SectionType) ([]*models.Section, error) {
	if !sectionType.Valid() {
		return nil, newValidationError("type", "unknown section type %q", sectionType)
	}
	if _, err := s.guard.RequirePlanner(ctx, plannerID, actorID, models.PermissionView); err != nil {
		return nil, err
	}
	sections, err := s.sectionRepo.ListByType(ctx, plannerID, sectionType, SectionsByTypeLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s sections for planner '%s': %w", sectionType, plannerID, err)
	}
	return sections, nil
}

// patchFields converts an update request into stored fields. content is
// decoded against t.
func (s *sectionService) patchFields(t models.SectionType, req models.UpdateSectionRequest, actorID string) (map[string]interface{}, error) {
	fields := map[string]interface{}{
		"updatedAt": s.now().UTC(),
		"updatedBy": actorID,
	}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if len(req.Content) > 0 {
		content, err := decodeContent(t, req.Content)
		if err != nil {
			return nil, err
		}
		fields["content"] = content
	}
	if req.Order != nil {
		fields["order"] = *req.Order
	}
	if req.IsCollapsed != nil {
		fields["isCollapsed"] = *req.IsCollapsed
	}
	return fields, nil
}

func (s *sectionService) Update(ctx context.Context, sectionID, actorID string, req models.UpdateSectionRequest) (*models.Section, error) {
	section, _, err := s.guard.RequireSection(ctx, sectionID, actorID, models.PermissionEdit)
	if err != nil {
		return nil, err
	}
	fields, err := s.patchFields(section.Type, req, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.sectionRepo.Update(ctx, sectionID, fields); err != nil {
		return nil, mapSectionErr(err, sectionID)
	}
	s.activity.Record(ctx, section.PlannerID, actorID, models.ActivitySectionUpdated,
		fmt.Sprintf("Updated %s section", section.Type),
		map[string]interface{}{"sectionId": sectionID},
	)
	return s.reload(ctx, sectionID)
}

func (s *sectionService) Delete(ctx context.Context, sectionID, actorID string) error {
	section, _, err := s.guard.RequireSection(ctx, sectionID, actorID, models.PermissionEdit)
	if err != nil {
		return err
	}
	if err := s.sectionRepo.Delete(ctx, sectionID); err != nil {
		return mapSectionErr(err, sectionID)
	}
	s.activity.Record(ctx, section.PlannerID, actorID, models.ActivitySectionDeleted,
		fmt.Sprintf("Deleted %s section", section.Type),
		map[string]interface{}{"sectionId": sectionID, "date": section.Date},
	)
	return nil
}

func (s *sectionService) ToggleCollapse(ctx context.Context, sectionID, actorID string) (*models.Section, error) {
	section, _, err := s.guard.RequireSection(ctx, sectionID, actorID, models.PermissionEdit)
	if err != nil {
		return nil, err
	}
	fields := map[string]interface{}{
		"isCollapsed": !section.IsCollapsed,
		"updatedAt":   s.now().UTC(),
		"updatedBy":   actorID,
	}
	if err := s.sectionRepo.Update(ctx, sectionID, fields); err != nil {
		return nil, mapSectionErr(err, sectionID)
	}
	return s.reload(ctx, sectionID)
}

// Reorder applies every order change atomically. Permission is checked once,
// on the planner named in the request.
func (s *sectionService) Reorder(ctx context.Context, actorID string, req models.ReorderSectionsRequest) error {
	if _, err := s.guard.RequirePlanner(ctx, req.PlannerID, actorID, models.PermissionEdit); err != nil {
		return err
	}
	now := s.now().UTC()
	updates := make([]db.SectionUpdate, 0, len(req.Sections))
	for _, o := range req.Sections {
		if o.Order < 0 {
			return newValidationError("sections.order", "must be zero or greater")
		}
		updates = append(updates, db.SectionUpdate{
			ID: o.ID,
			Fields: map[string]interface{}{
				"order":     o.Order,
				"updatedAt": now,
				"updatedBy": actorID,
			},
		})
	}
	if err := s.sectionRepo.UpdateMany(ctx, req.PlannerID, updates); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: %v", ErrSectionNotFound, err)
		}
		return fmt.Errorf("failed to reorder sections: %w", err)
	}
	s.activity.Record(ctx, req.PlannerID, actorID, models.ActivitySectionsReordered,
		fmt.Sprintf("Reordered %d sections", len(updates)), nil)
	return nil
}

// BulkUpdate applies several patches atomically under one permission check.
func (s *sectionService) BulkUpdate(ctx context.Context, actorID string, req models.BulkUpdateSectionsRequest) error {
	if _, err := s.guard.RequirePlanner(ctx, req.PlannerID, actorID, models.PermissionEdit); err != nil {
		return err
	}

	updates := make([]db.SectionUpdate, 0, len(req.Updates))
	for _, patch := range req.Updates {
		var sectionType models.SectionType
		if len(patch.Updates.Content) > 0 {
			section, err := s.sectionRepo.GetByID(ctx, patch.ID)
			if err != nil {
				return mapSectionErr(err, patch.ID)
			}
			if section.PlannerID != req.PlannerID {
				return fmt.Errorf("%w: '%s'", ErrSectionNotFound, patch.ID)
			}
			sectionType = section.Type
		}
		fields, err := s.patchFields(sectionType, patch.Updates, actorID)
		if err != nil {
			return err
		}
		updates = append(updates, db.SectionUpdate{ID: patch.ID, Fields: fields})
	}

	if err := s.sectionRepo.UpdateMany(ctx, req.PlannerID, updates); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: %v", ErrSectionNotFound, err)
		}
		return fmt.Errorf("failed to bulk update sections: %w", err)
	}
	s.activity.Record(ctx, req.PlannerID, actorID, models.ActivitySectionsBulkUpdated,
		fmt.Sprintf("Updated %d sections", len(updates)), nil)
	return nil
}

// Duplicate copies a section to targetDate, or to its own date when empty.
func (s *sectionService) Duplicate(ctx context.Context, sectionID, actorID, targetDate string) (*models.Section, error) {
	original, _, err := s.guard.RequireSection(ctx, sectionID, actorID, models.PermissionEdit)
	if err != nil {
		return nil, err
	}
	if targetDate == "" {
		targetDate = original.Date
	} else if err := validateDate("targetDate", targetDate); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	dup := &models.Section{
		PlannerID: original.PlannerID,
		Date:      targetDate,
		Type:      original.Type,
		Title:     original.Title,
		Content:   original.Content,
		Order:     original.Order,
		CreatedBy: actorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.sectionRepo.Create(ctx, dup); err != nil {
		return nil, fmt.Errorf("failed to duplicate section '%s': %w", sectionID, err)
	}
	s.activity.Record(ctx, original.PlannerID, actorID, models.ActivitySectionDuplicated,
		fmt.Sprintf("Duplicated %s section", original.Type),
		map[string]interface{}{"sourceSectionId": sectionID, "sectionId": dup.ID, "date": targetDate},
	)
	return dup, nil
}
