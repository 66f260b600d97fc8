package models

import "encoding/json"

// RegisterRequest represents the request body for creating an account.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	DisplayName string `json:"displayName" binding:"required,min=2,max=50"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type GoogleAuthRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

type AppleAuthRequest struct {
	IdentityToken string `json:"identityToken" binding:"required"`
	User          *struct {
		FullName string `json:"fullName"`
	} `json:"user,omitempty"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// UpdateProfileRequest uses pointers to tell absent fields from cleared ones.
type UpdateProfileRequest struct {
	DisplayName *string             `json:"displayName,omitempty" binding:"omitempty,min=2,max=50"`
	PhotoURL    *string             `json:"photoURL,omitempty" binding:"omitempty,url"`
	Preferences *PreferencesRequest `json:"preferences,omitempty"`
}

type PreferencesRequest struct {
	Theme         *string `json:"theme,omitempty" binding:"omitempty,oneof=light dark"`
	AccentColor   *string `json:"accentColor,omitempty" binding:"omitempty,oneof=blue green purple orange"`
	DefaultView   *string `json:"defaultView,omitempty" binding:"omitempty,oneof=daily weekly monthly yearly"`
	Notifications *bool   `json:"notifications,omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

// CreatePlannerRequest represents the request body for creating a planner.
type CreatePlannerRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=100"`
	Color       string `json:"color,omitempty" binding:"omitempty,oneof=blue green purple orange"`
	Icon        string `json:"icon,omitempty" binding:"omitempty,max=50"`
	Description string `json:"description,omitempty" binding:"omitempty,max=500"`
	IsDefault   bool   `json:"isDefault,omitempty"`
}

// UpdatePlannerRequest uses pointers so only provided fields are patched.
type UpdatePlannerRequest struct {
	Title       *string `json:"title,omitempty" binding:"omitempty,min=1,max=100"`
	Color       *string `json:"color,omitempty" binding:"omitempty,oneof=blue green purple orange"`
	Icon        *string `json:"icon,omitempty" binding:"omitempty,max=50"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=500"`
	IsDefault   *bool   `json:"isDefault,omitempty"`
}

type DuplicatePlannerRequest struct {
	Title string `json:"title,omitempty" binding:"omitempty,max=100"`
}

// CreateSectionRequest carries raw content; it is decoded against Type by the section service.
type CreateSectionRequest struct {
	Date        string          `json:"date" binding:"required,datetime=2006-01-02"`
	Type        SectionType     `json:"type" binding:"required"`
	Title       string          `json:"title,omitempty" binding:"omitempty,max=100"`
	Content     json.RawMessage `json:"content,omitempty"`
	Order       *int            `json:"order,omitempty" binding:"omitempty,min=0"`
	IsCollapsed bool            `json:"isCollapsed,omitempty"`
}

type UpdateSectionRequest struct {
	Title       *string         `json:"title,omitempty" binding:"omitempty,max=100"`
	Content     json.RawMessage `json:"content,omitempty"`
	Order       *int            `json:"order,omitempty" binding:"omitempty,min=0"`
	IsCollapsed *bool           `json:"isCollapsed,omitempty"`
}

type SectionOrder struct {
	ID    string `json:"id" binding:"required"`
	Order int    `json:"order" binding:"min=0"`
}

type ReorderSectionsRequest struct {
	PlannerID string         `json:"plannerId" binding:"required"`
	Sections  []SectionOrder `json:"sections" binding:"required,min=1,dive"`
}

type SectionPatch struct {
	ID      string               `json:"id" binding:"required"`
	Updates UpdateSectionRequest `json:"updates"`
}

type BulkUpdateSectionsRequest struct {
	PlannerID string         `json:"plannerId" binding:"required"`
	Updates   []SectionPatch `json:"updates" binding:"required,min=1,dive"`
}

type DuplicateSectionRequest struct {
	TargetDate string `json:"targetDate,omitempty" binding:"omitempty,datetime=2006-01-02"`
}

type SharePlannerRequest struct {
	Email      string     `json:"email" binding:"required,email"`
	Permission Permission `json:"permission" binding:"required,oneof=view edit"`
}

type UpdatePermissionRequest struct {
	Permission Permission `json:"permission" binding:"required,oneof=view edit"`
}

type ChatContext struct {
	Date     string   `json:"date,omitempty" binding:"omitempty,datetime=2006-01-02"`
	Sections []string `json:"sections,omitempty"`
}

type ChatRequest struct {
	PlannerID string       `json:"plannerId" binding:"required"`
	Message   string       `json:"message" binding:"required,min=1,max=1000"`
	Context   *ChatContext `json:"context,omitempty"`
}

type MealSuggestionRequest struct {
	PlannerID   string                 `json:"plannerId" binding:"required"`
	Date        string                 `json:"date" binding:"required,datetime=2006-01-02"`
	Preferences map[string]interface{} `json:"preferences,omitempty"`
}

type ScheduleRequest struct {
	PlannerID   string                 `json:"plannerId" binding:"required"`
	Date        string                 `json:"date" binding:"required,datetime=2006-01-02"`
	Tasks       []interface{}          `json:"tasks,omitempty"`
	Preferences map[string]interface{} `json:"preferences,omitempty"`
}

type DateRange struct {
	Start string `json:"start" binding:"required,datetime=2006-01-02"`
	End   string `json:"end" binding:"required,datetime=2006-01-02"`
}

type HabitAnalysisRequest struct {
	PlannerID string    `json:"plannerId" binding:"required"`
	DateRange DateRange `json:"dateRange" binding:"required"`
}

type TaskSuggestionRequest struct {
	PlannerID string       `json:"plannerId" binding:"required"`
	Context   *ChatContext `json:"context,omitempty"`
}

type GoalsRequest struct {
	PlannerID string `json:"plannerId" binding:"required"`
	Timeframe string `json:"timeframe" binding:"required,oneof=weekly monthly yearly"`
	Category  string `json:"category,omitempty"`
}

type FeedbackRequest struct {
	PlannerID string `json:"plannerId" binding:"required"`
	Date      string `json:"date" binding:"required,datetime=2006-01-02"`
}

type ExportPDFRequest struct {
	Date            string   `json:"date,omitempty" binding:"omitempty,datetime=2006-01-02"`
	ViewType        string   `json:"viewType" binding:"required,oneof=daily weekly monthly yearly"`
	IncludeSections []string `json:"includeSections,omitempty"`
}

type ExportDateRangeRequest struct {
	PlannerID       string   `json:"plannerId" binding:"required"`
	StartDate       string   `json:"startDate" binding:"required,datetime=2006-01-02"`
	EndDate         string   `json:"endDate" binding:"required,datetime=2006-01-02"`
	ViewType        string   `json:"viewType" binding:"required,oneof=daily weekly monthly yearly"`
	IncludeSections []string `json:"includeSections,omitempty"`
}

type CalendarExportRequest struct {
	StartDate    string `json:"startDate" binding:"required,datetime=2006-01-02"`
	EndDate      string `json:"endDate" binding:"required,datetime=2006-01-02"`
	CalendarType string `json:"calendarType" binding:"required,oneof=google apple ics"`
}

type HandwritingRequest struct {
	DrawingData string `json:"drawingData" binding:"required"`
	PlannerID   string `json:"plannerId,omitempty"`
	SectionID   string `json:"sectionId,omitempty"`
}

type SaveHandwritingRequest struct {
	ImageData string `json:"imageData" binding:"required"`
	PlannerID string `json:"plannerId,omitempty"`
	SectionID string `json:"sectionId,omitempty"`
}
