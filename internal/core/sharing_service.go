package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"planner-backend-go/internal/db"
	"planner-backend-go/internal/models"
	"planner-backend-go/internal/workflow"
)

// sharingService implements the SharingService interface.
type sharingService struct {
	shareRepo   db.ShareRepository
	plannerRepo db.PlannerRepository
	userRepo    db.UserRepository
	guard       *AccessGuard
	activity    ActivityService
	notifier    Workflow
	background  *BestEffort
	logger      *zap.Logger
	now         func() time.Time
}

// NewSharingService creates a new SharingService instance.
func NewSharingService(
	shareRepo db.ShareRepository,
	plannerRepo db.PlannerRepository,
	userRepo db.UserRepository,
	guard *AccessGuard,
	activity ActivityService,
	notifier Workflow,
	background *BestEffort,
	logger *zap.Logger,
) SharingService {
	return &sharingService{
		shareRepo:   shareRepo,
		plannerRepo: plannerRepo,
		userRepo:    userRepo,
		guard:       guard,
		activity:    activity,
		notifier:    notifier,
		background:  background,
		logger:      logger,
		now:         time.Now,
	}
}

// shareNotification is the payload of the share-notification webhook.
type shareNotification struct {
	Type           string            `json:"type"`
	RecipientEmail string            `json:"recipientEmail"`
	PlannerTitle   string            `json:"plannerTitle"`
	ShareID        string            `json:"shareId"`
	Permission     models.Permission `json:"permission"`
}

func (s *sharingService) loadShare(ctx context.Context, shareID string) (*models.PlannerShare, error) {
	share, err := s.shareRepo.GetByID(ctx, shareID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrShareNotFound, shareID)
		}
		return nil, fmt.Errorf("failed to get share '%s': %w", shareID, err)
	}
	return share, nil
}

// Share invites the user registered under req.Email. The invitation stays
// pending until the recipient accepts it.
func (s *sharingService) Share(ctx context.Context, plannerID, ownerID string, req models.SharePlannerRequest) (*models.PlannerShare, error) {
	if !req.Permission.Valid() {
		return nil, newValidationError("permission", "must be view or edit")
	}
	planner, err := s.guard.RequireOwner(ctx, plannerID, ownerID)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	recipient, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: no account for '%s'", ErrUserNotFound, email)
		}
		return nil, fmt.Errorf("failed to look up share recipient: %w", err)
	}
	if recipient.ID == ownerID {
		return nil, ErrCannotShareWithSelf
	}

	now := s.now().UTC()
	share := &models.PlannerShare{
		PlannerID:        plannerID,
		OwnerID:          planner.UserID,
		SharedWithUserID: recipient.ID,
		SharedWithEmail:  email,
		Permission:       req.Permission,
		IsAccepted:       false,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if _, err := s.shareRepo.Create(ctx, share); err != nil {
		if errors.Is(err, db.ErrAlreadyExists) {
			return nil, ErrAlreadyShared
		}
		return nil, fmt.Errorf("failed to create share: %w", err)
	}

	s.activity.Record(ctx, plannerID, ownerID, models.ActivityPlannerShared,
		fmt.Sprintf("Shared planner with %s", email),
		map[string]interface{}{"shareId": share.ID, "permission": string(share.Permission)},
	)

	notification := shareNotification{
		Type:           "planner_shared",
		RecipientEmail: email,
		PlannerTitle:   planner.Title,
		ShareID:        share.ID,
		Permission:     share.Permission,
	}
	s.background.Go(ctx, "share_notification", workflow.Timeouts[workflow.WebhookShareNotification],
		func(ctx context.Context) error {
			return s.notifier.Post(ctx, workflow.WebhookShareNotification, notification, nil)
		},
		zap.String("share_id", share.ID),
	)
	return share, nil
}

// ListShares returns every share of a planner. Owner only.
func (s *sharingService) ListShares(ctx context.Context, plannerID, actorID string) ([]*models.PlannerShare, error) {
	if _, err := s.guard.RequireOwner(ctx, plannerID, actorID); err != nil {
		return nil, err
	}
	shares, err := s.shareRepo.ListByPlanner(ctx, plannerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shares of planner '%s': %w", plannerID, err)
	}
	return shares, nil
}

func (s *sharingService) PendingInvitations(ctx context.Context, userID string) ([]*models.PlannerShare, error) {
	shares, err := s.shareRepo.ListByRecipient(ctx, userID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations for user '%s': %w", userID, err)
	}
	return shares, nil
}

// SharedWithMe joins the user's accepted shares with their planners.
// Shares whose planner no longer exists are skipped.
func (s *sharingService) SharedWithMe(ctx context.Context, userID string) ([]*models.SharedPlanner, error) {
	shares, err := s.shareRepo.ListByRecipient(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list shared planners for user '%s': %w", userID, err)
	}
	result := make([]*models.SharedPlanner, 0, len(shares))
	for _, share := range shares {
		planner, err := s.plannerRepo.GetByID(ctx, share.PlannerID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to load shared planner '%s': %w", share.PlannerID, err)
		}
		result = append(result, &models.SharedPlanner{
			Planner:    planner,
			ShareID:    share.ID,
			Permission: share.Permission,
			OwnerID:    share.OwnerID,
			AcceptedAt: share.AcceptedAt,
		})
	}
	return result, nil
}

func (s *sharingService) Accept(ctx context.Context, shareID, userID string) (*models.PlannerShare, error) {
	share, err := s.loadShare(ctx, shareID)
	if err != nil {
		return nil, err
	}
	if share.SharedWithUserID != userID {
		return nil, fmt.Errorf("%w: only the invited user can accept", ErrForbiddenAccess)
	}
	if share.IsAccepted {
		return share, nil
	}

	now := s.now().UTC()
	fields := map[string]interface{}{
		"isAccepted": true,
		"acceptedAt": now,
		"updatedAt":  now,
	}
	if err := s.shareRepo.Update(ctx, shareID, fields); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrShareNotFound, shareID)
		}
		return nil, fmt.Errorf("failed to accept share '%s': %w", shareID, err)
	}
	share.IsAccepted = true
	share.AcceptedAt = &now
	share.UpdatedAt = now

	s.activity.Record(ctx, share.PlannerID, userID, models.ActivityInvitationAccepted, "Accepted planner invitation",
		map[string]interface{}{"shareId": shareID})
	return share, nil
}

// Reject deletes a pending or accepted share on behalf of its recipient.
func (s *sharingService) Reject(ctx context.Context, shareID, userID string) error {
	share, err := s.loadShare(ctx, shareID)
	if err != nil {
		return err
	}
	if share.SharedWithUserID != userID {
		return fmt.Errorf("%w: only the invited user can reject", ErrForbiddenAccess)
	}
	if err := s.shareRepo.Delete(ctx, shareID); err != nil && !errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("failed to reject share '%s': %w", shareID, err)
	}
	return nil
}

func (s *sharingService) UpdatePermission(ctx context.Context, shareID, actorID string, permission models.Permission) (*models.PlannerShare, error) {
	if !permission.Valid() {
		return nil, newValidationError("permission", "must be view or edit")
	}
	share, err := s.loadShare(ctx, shareID)
	if err != nil {
		return nil, err
	}
	if share.OwnerID != actorID {
		return nil, fmt.Errorf("%w: only the planner owner can change permissions", ErrForbiddenAccess)
	}

	now := s.now().UTC()
	if err := s.shareRepo.Update(ctx, shareID, map[string]interface{}{
		"permission": string(permission),
		"updatedAt":  now,
	}); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrShareNotFound, shareID)
		}
		return nil, fmt.Errorf("failed to update share '%s': %w", shareID, err)
	}
	previous := share.Permission
	share.Permission = permission
	share.UpdatedAt = now

	s.activity.Record(ctx, share.PlannerID, actorID, models.ActivityPermissionUpdated,
		fmt.Sprintf("Changed %s's permission to %s", share.SharedWithEmail, permission),
		map[string]interface{}{"shareId": shareID, "from": string(previous), "to": string(permission)},
	)
	return share, nil
}

func (s *sharingService) Remove(ctx context.Context, shareID, actorID string) error {
	share, err := s.loadShare(ctx, shareID)
	if err != nil {
		return err
	}
	if share.OwnerID != actorID {
		return fmt.Errorf("%w: only the planner owner can remove shares", ErrForbiddenAccess)
	}
	if err := s.shareRepo.Delete(ctx, shareID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: '%s'", ErrShareNotFound, shareID)
		}
		return fmt.Errorf("failed to remove share '%s': %w", shareID, err)
	}
	s.activity.Record(ctx, share.PlannerID, actorID, models.ActivityShareRemoved,
		fmt.Sprintf("Removed %s from planner", share.SharedWithEmail),
		map[string]interface{}{"shareId": shareID},
	)
	return nil
}

// Leave removes the caller's own share of a planner.
func (s *sharingService) Leave(ctx context.Context, plannerID, userID string) error {
	shareID := models.ShareID(plannerID, userID)
	share, err := s.loadShare(ctx, shareID)
	if err != nil {
		return err
	}
	if err := s.shareRepo.Delete(ctx, shareID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: '%s'", ErrShareNotFound, shareID)
		}
		return fmt.Errorf("failed to leave planner '%s': %w", plannerID, err)
	}
	s.activity.Record(ctx, share.PlannerID, userID, models.ActivityLeftPlanner, "Left shared planner", nil)
	return nil
}
