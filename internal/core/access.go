package core

import (
	"context"
	"errors"
	"fmt"

	"planner-backend-go/internal/db"
	"planner-backend-go/internal/models"
)

// AccessGuard resolves what an actor may do with a planner. Every call reads
// the current planner and share documents; nothing is cached.
type AccessGuard struct {
	planners db.PlannerRepository
	shares   db.ShareRepository
	sections db.SectionRepository
}

// NewAccessGuard creates a new AccessGuard.
func NewAccessGuard(planners db.PlannerRepository, shares db.ShareRepository, sections db.SectionRepository) *AccessGuard {
	return &AccessGuard{planners: planners, shares: shares, sections: sections}
}

// resolve returns the planner and the actor's effective permission on it.
// An empty permission means the actor has no access at all.
func (g *AccessGuard) resolve(ctx context.Context, plannerID, actorID string) (*models.Planner, models.Permission, error) {
	planner, err := g.planners.GetByID(ctx, plannerID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("failed to load planner '%s': %w", plannerID, err)
	}
	if planner.UserID == actorID {
		return planner, models.PermissionEdit, nil
	}

	share, err := g.shares.GetByID(ctx, models.ShareID(plannerID, actorID))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return planner, "", nil
		}
		return nil, "", fmt.Errorf("failed to load share for planner '%s': %w", plannerID, err)
	}
	if !share.IsAccepted {
		return planner, "", nil
	}
	return planner, share.Permission, nil
}

func grants(have, required models.Permission) bool {
	switch required {
	case models.PermissionView:
		return have == models.PermissionView || have == models.PermissionEdit
	case models.PermissionEdit:
		return have == models.PermissionEdit
	}
	return false
}

// CheckPermission reports whether actorID holds required on the planner.
// A missing planner denies.
func (g *AccessGuard) CheckPermission(ctx context.Context, plannerID, actorID string, required models.Permission) (bool, error) {
	planner, have, err := g.resolve(ctx, plannerID, actorID)
	if err != nil || planner == nil {
		return false, err
	}
	return grants(have, required), nil
}

// RequirePlanner returns the planner when actorID holds required on it.
// Actors without view access get ErrPlannerNotFound so existence is not revealed;
// viewers lacking edit get ErrForbiddenAccess.
func (g *AccessGuard) RequirePlanner(ctx context.Context, plannerID, actorID string, required models.Permission) (*models.Planner, error) {
	planner, have, err := g.resolve(ctx, plannerID, actorID)
	if err != nil {
		return nil, err
	}
	if planner == nil || !grants(have, models.PermissionView) {
		return nil, fmt.Errorf("%w: '%s'", ErrPlannerNotFound, plannerID)
	}
	if !grants(have, required) {
		return nil, fmt.Errorf("%w: %s permission required", ErrForbiddenAccess, required)
	}
	return planner, nil
}

// RequireOwner returns the planner only when actorID owns it.
func (g *AccessGuard) RequireOwner(ctx context.Context, plannerID, actorID string) (*models.Planner, error) {
	planner, have, err := g.resolve(ctx, plannerID, actorID)
	if err != nil {
		return nil, err
	}
	if planner == nil || !grants(have, models.PermissionView) {
		return nil, fmt.Errorf("%w: '%s'", ErrPlannerNotFound, plannerID)
	}
	if planner.UserID != actorID {
		return nil, fmt.Errorf("%w: only the planner owner can do this", ErrForbiddenAccess)
	}
	return planner, nil
}

// RequireSection loads a section and checks required on its parent planner.
func (g *AccessGuard) RequireSection(ctx context.Context, sectionID, actorID string, required models.Permission) (*models.Section, *models.Planner, error) {
	section, err := g.sections.GetByID(ctx, sectionID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: '%s'", ErrSectionNotFound, sectionID)
		}
		return nil, nil, fmt.Errorf("failed to load section '%s': %w", sectionID, err)
	}
	planner, err := g.RequirePlanner(ctx, section.PlannerID, actorID, required)
	if err != nil {
		if errors.Is(err, ErrPlannerNotFound) {
			return nil, nil, fmt.Errorf("%w: '%s'", ErrSectionNotFound, sectionID)
		}
		return nil, nil, err
	}
	return section, planner, nil
}
