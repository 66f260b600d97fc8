package models

import "time"

// Planner is a user-owned container of dated sections.
type Planner struct {
	ID          string     `json:"id" firestore:"-"`
	UserID      string     `json:"userId" firestore:"userId"` // owner
	Title       string     `json:"title" firestore:"title"`
	Color       string     `json:"color" firestore:"color"`
	Icon        string     `json:"icon" firestore:"icon"`
	Description string     `json:"description" firestore:"description"`
	IsDefault   bool       `json:"isDefault" firestore:"isDefault"`
	IsArchived  bool       `json:"isArchived" firestore:"isArchived"`
	ArchivedAt  *time.Time `json:"archivedAt,omitempty" firestore:"archivedAt"`
	CreatedAt   time.Time  `json:"createdAt" firestore:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt" firestore:"updatedAt"`
}

const (
	DefaultPlannerColor = "blue"
	DefaultPlannerIcon  = "calendar"
)

// PlannerColors lists the accepted planner and accent colors.
var PlannerColors = []string{"blue", "green", "purple", "orange"}
