package models

import "time"

// ExportStatus tracks an export job: pending -> in_progress -> completed|failed.
type ExportStatus string

const (
	ExportPending    ExportStatus = "pending"
	ExportInProgress ExportStatus = "in_progress"
	ExportCompleted  ExportStatus = "completed"
	ExportFailed     ExportStatus = "failed"
)

// ExportRecord describes one PDF export job.
type ExportRecord struct {
	ID              string       `json:"id" firestore:"-"`
	UserID          string       `json:"userId" firestore:"userId"`
	PlannerID       string       `json:"plannerId" firestore:"plannerId"`
	ViewType        string       `json:"viewType" firestore:"viewType"`
	StartDate       string       `json:"startDate" firestore:"startDate"`
	EndDate         string       `json:"endDate" firestore:"endDate"`
	IncludeSections []string     `json:"includeSections,omitempty" firestore:"includeSections"`
	Status          ExportStatus `json:"status" firestore:"status"`
	FilePath        string       `json:"filePath,omitempty" firestore:"filePath"`
	Filename        string       `json:"filename,omitempty" firestore:"filename"`
	Error           string       `json:"error,omitempty" firestore:"error"`
	CreatedAt       time.Time    `json:"createdAt" firestore:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt" firestore:"updatedAt"`
}

// ViewTypes lists the accepted planner view granularities.
var ViewTypes = []string{"daily", "weekly", "monthly", "yearly"}
