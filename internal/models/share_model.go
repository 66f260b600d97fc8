package models

import "time"

// Permission is the access level a share grants.
type Permission string

const (
	PermissionView Permission = "view"
	PermissionEdit Permission = "edit"
)

// Valid reports whether p is a known permission.
func (p Permission) Valid() bool {
	return p == PermissionView || p == PermissionEdit
}

// PlannerShare links a planner to a user it has been shared with.
type PlannerShare struct {
	ID               string     `json:"id" firestore:"-"`
	PlannerID        string     `json:"plannerId" firestore:"plannerId"`
	OwnerID          string     `json:"ownerId" firestore:"ownerId"`
	SharedWithUserID string     `json:"sharedWithUserId" firestore:"sharedWithUserId"`
	SharedWithEmail  string     `json:"sharedWithEmail" firestore:"sharedWithEmail"`
	Permission       Permission `json:"permission" firestore:"permission"`
	IsAccepted       bool       `json:"isAccepted" firestore:"isAccepted"`
	AcceptedAt       *time.Time `json:"acceptedAt,omitempty" firestore:"acceptedAt"`
	CreatedAt        time.Time  `json:"createdAt" firestore:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt" firestore:"updatedAt"`
}

// ShareID derives the document id of the share for a planner and recipient.
// At most one share exists per pair, so the id doubles as the uniqueness key.
func ShareID(plannerID, userID string) string {
	return plannerID + "_" + userID
}

// SharedPlanner is a planner seen through an accepted share.
type SharedPlanner struct {
	Planner    *Planner   `json:"planner"`
	ShareID    string     `json:"shareId"`
	Permission Permission `json:"permission"`
	OwnerID    string     `json:"ownerId"`
	AcceptedAt *time.Time `json:"acceptedAt,omitempty"`
}
