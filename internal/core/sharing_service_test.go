package core

import (
	"context"
	"errors"
	"testing"

	"planner-backend-go/internal/models"
	"planner-backend-go/internal/workflow"
)

func TestShareLifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.addUser(t, "owner", "owner@example.com")
	e.addUser(t, "friend", "friend@example.com")
	p := e.newPlanner(t, "owner", "Work")

	share, err := e.sharing.Share(ctx, p.ID, "owner", models.SharePlannerRequest{Email: "Friend@Example.com", Permission: models.PermissionView})
	if err != nil {
		t.Fatalf("Share: %v", err)
	}
	if share.ID != models.ShareID(p.ID, "friend") || share.IsAccepted || share.OwnerID != "owner" {
		t.Errorf("share = %+v", share)
	}

	pending, _ := e.sharing.PendingInvitations(ctx, "friend")
	if len(pending) != 1 {
		t.Fatalf("pending = %d, want 1", len(pending))
	}
	if shared, _ := e.sharing.SharedWithMe(ctx, "friend"); len(shared) != 0 {
		t.Errorf("shared before accept = %d", len(shared))
	}

	if _, err := e.sharing.Accept(ctx, share.ID, "owner"); !errors.Is(err, ErrForbiddenAccess) {
		t.Errorf("owner accept: got %v", err)
	}
	accepted, err := e.sharing.Accept(ctx, share.ID, "friend")
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if !accepted.IsAccepted || accepted.AcceptedAt == nil {
		t.Errorf("accepted = %+v", accepted)
	}

	shared, _ := e.sharing.SharedWithMe(ctx, "friend")
	if len(shared) != 1 || shared[0].Planner.ID != p.ID || shared[0].Permission != models.PermissionView {
		t.Errorf("shared with me = %+v", shared)
	}

	if err := e.sharing.Leave(ctx, p.ID, "friend"); err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if _, err := e.planners.Get(ctx, p.ID, "friend"); !errors.Is(err, ErrPlannerNotFound) {
		t.Errorf("Get after leave: got %v", err)
	}

	types := e.activityTypes(p.ID)
	for _, want := range []models.ActivityType{models.ActivityPlannerShared, models.ActivityInvitationAccepted, models.ActivityLeftPlanner} {
		if !hasActivity(types, want) {
			t.Errorf("%s not recorded", want)
		}
	}
}

func TestShareRejections(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.addUser(t, "owner", "owner@example.com")
	e.addUser(t, "friend", "friend@example.com")
	e.addUser(t, "editor", "editor@example.com")
	p := e.newPlanner(t, "owner", "Work")
	e.shareAccepted(t, p.ID, "owner", "editor", "editor@example.com", models.PermissionEdit)

	tests := []struct {
		name  string
		actor string
		email string
		want  error
	}{
		{"self", "owner", "owner@example.com", ErrCannotShareWithSelf},
		{"unknown email", "owner", "ghost@example.com", ErrUserNotFound},
		{"editor is not owner", "editor", "friend@example.com", ErrForbiddenAccess},
		{"stranger", "friend", "editor@example.com", ErrPlannerNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.sharing.Share(ctx, p.ID, tt.actor, models.SharePlannerRequest{Email: tt.email, Permission: models.PermissionView})
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDuplicateShareConflicts(t *testing.T) {
	for _, accepted := range []bool{false, true} {
		e := newEnv(t)
		ctx := context.Background()
		e.addUser(t, "owner", "owner@example.com")
		e.addUser(t, "friend", "friend@example.com")
		p := e.newPlanner(t, "owner", "Work")

		share, err := e.sharing.Share(ctx, p.ID, "owner", models.SharePlannerRequest{Email: "friend@example.com", Permission: models.PermissionView})
		if err != nil {
			t.Fatal(err)
		}
		if accepted {
			if _, err := e.sharing.Accept(ctx, share.ID, "friend"); err != nil {
				t.Fatal(err)
			}
		}
		_, err = e.sharing.Share(ctx, p.ID, "owner", models.SharePlannerRequest{Email: "friend@example.com", Permission: models.PermissionEdit})
		if !errors.Is(err, ErrAlreadyShared) {
			t.Errorf("accepted=%v: got %v, want ErrAlreadyShared", accepted, err)
		}
	}
}

func TestShareOwnerOnlyOperations(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.addUser(t, "owner", "owner@example.com")
	e.addUser(t, "friend", "friend@example.com")
	e.addUser(t, "editor", "editor@example.com")
	p := e.newPlanner(t, "owner", "Work")
	share := e.shareAccepted(t, p.ID, "owner", "friend", "friend@example.com", models.PermissionView)
	e.shareAccepted(t, p.ID, "owner", "editor", "editor@example.com", models.PermissionEdit)

	for _, actor := range []string{"friend", "editor", "stranger"} {
		if _, err := e.sharing.UpdatePermission(ctx, share.ID, actor, models.PermissionEdit); !errors.Is(err, ErrForbiddenAccess) {
			t.Errorf("%s UpdatePermission: got %v", actor, err)
		}
		if err := e.sharing.Remove(ctx, share.ID, actor); !errors.Is(err, ErrForbiddenAccess) {
			t.Errorf("%s Remove: got %v", actor, err)
		}
	}
	if _, err := e.sharing.ListShares(ctx, p.ID, "editor"); !errors.Is(err, ErrForbiddenAccess) {
		t.Errorf("editor ListShares: got %v", err)
	}
	list, err := e.sharing.ListShares(ctx, p.ID, "owner")
	if err != nil || len(list) != 2 {
		t.Errorf("owner ListShares = %d, %v", len(list), err)
	}
}

func TestRejectDeletesShare(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.addUser(t, "owner", "owner@example.com")
	e.addUser(t, "friend", "friend@example.com")
	p := e.newPlanner(t, "owner", "Work")
	share, err := e.sharing.Share(ctx, p.ID, "owner", models.SharePlannerRequest{Email: "friend@example.com", Permission: models.PermissionView})
	if err != nil {
		t.Fatal(err)
	}

	if err := e.sharing.Reject(ctx, share.ID, "owner"); !errors.Is(err, ErrForbiddenAccess) {
		t.Errorf("owner Reject: got %v", err)
	}
	if err := e.sharing.Reject(ctx, share.ID, "friend"); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if _, err := e.sharing.Accept(ctx, share.ID, "friend"); !errors.Is(err, ErrShareNotFound) {
		t.Errorf("Accept after reject: got %v", err)
	}
}

func TestShareNotificationFailureKeepsShare(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.addUser(t, "owner", "owner@example.com")
	e.addUser(t, "friend", "friend@example.com")
	e.flows.err = errors.New("webhook down")
	p := e.newPlanner(t, "owner", "Work")

	share, err := e.sharing.Share(ctx, p.ID, "owner", models.SharePlannerRequest{Email: "friend@example.com", Permission: models.PermissionView})
	if err != nil {
		t.Fatalf("Share: %v", err)
	}
	e.background.Wait()

	calls := e.flows.posted(workflow.WebhookShareNotification)
	if len(calls) != 1 {
		t.Fatalf("notification calls = %d, want 1", len(calls))
	}
	n := calls[0].Payload.(shareNotification)
	if n.Type != "planner_shared" || n.ShareID != share.ID || n.PlannerTitle != "Work" {
		t.Errorf("notification = %+v", n)
	}
	if list, _ := e.sharing.ListShares(ctx, p.ID, "owner"); len(list) != 1 {
		t.Errorf("share rolled back: %d shares", len(list))
	}
}
