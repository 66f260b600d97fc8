package models

import "time"

// ActivityType names a recorded state change.
type ActivityType string

const (
	ActivityPlannerCreated      ActivityType = "planner_created"
	ActivityPlannerUpdated      ActivityType = "planner_updated"
	ActivityPlannerDeleted      ActivityType = "planner_deleted"
	ActivityPlannerShared       ActivityType = "planner_shared"
	ActivityPlannerArchived     ActivityType = "planner_archived"
	ActivityPlannerRestored     ActivityType = "planner_restored"
	ActivityPlannerDuplicated   ActivityType = "planner_duplicated"
	ActivitySectionCreated      ActivityType = "section_created"
	ActivitySectionUpdated      ActivityType = "section_updated"
	ActivitySectionDeleted      ActivityType = "section_deleted"
	ActivitySectionsReordered   ActivityType = "sections_reordered"
	ActivitySectionDuplicated   ActivityType = "section_duplicated"
	ActivitySectionsBulkUpdated ActivityType = "sections_bulk_updated"
	ActivityPermissionUpdated   ActivityType = "permission_updated"
	ActivityShareRemoved        ActivityType = "share_removed"
	ActivityInvitationAccepted  ActivityType = "invitation_accepted"
	ActivityLeftPlanner         ActivityType = "left_planner"
	ActivityAIChat              ActivityType = "ai_chat"
	ActivityAIMealSuggestions   ActivityType = "ai_meal_suggestions"
	ActivityAIScheduleGenerated ActivityType = "ai_schedule_generated"
	ActivityAIGoalsGenerated    ActivityType = "ai_goals_generated"
	ActivityPDFExported         ActivityType = "pdf_exported"
	ActivityCalendarExported    ActivityType = "calendar_exported"
)

// ActivityLog is an append-only record of one action on a planner.
type ActivityLog struct {
	ID           string                 `json:"id" firestore:"-"`
	PlannerID    string                 `json:"plannerId" firestore:"plannerId"`
	UserID       string                 `json:"userId" firestore:"userId"` // who performed the action
	ActivityType ActivityType           `json:"activityType" firestore:"activityType"`
	Description  string                 `json:"description" firestore:"description"`
	Metadata     map[string]interface{} `json:"metadata,omitempty" firestore:"metadata,omitempty"`
	Timestamp    time.Time              `json:"timestamp" firestore:"timestamp"`
}

// Page selects a window of a timestamp-ordered listing.
type Page struct {
	Limit      int
	StartAfter string // id of the last item of the previous page
}

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

// Normalize clamps the limit into [1, MaxPageLimit], defaulting to DefaultPageLimit.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}
