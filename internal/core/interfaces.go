package core

import (
	"context"
	"time"

	"planner-backend-go/internal/export"
	"planner-backend-go/internal/identity"
	"planner-backend-go/internal/models"
	"planner-backend-go/internal/session"
)

// AuthService defines the interface for account and session operations.
type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req models.LoginRequest) (*AuthResult, error)
	// SocialLogin signs in with a Firebase ID token from Google or Apple,
	// creating the user document on first use.
	SocialLogin(ctx context.Context, idToken, provider, fullName string) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*session.TokenPair, error)
	Me(ctx context.Context, userID string) (*models.User, error)
	Logout(ctx context.Context, userID string) error
	UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.User, error)
	ChangePassword(ctx context.Context, userID string, req models.ChangePasswordRequest) error
	DeleteAccount(ctx context.Context, userID string) error
}

// PlannerService defines the interface for planner lifecycle operations.
type PlannerService interface {
	Create(ctx context.Context, ownerID string, req models.CreatePlannerRequest) (*models.Planner, error)
	Get(ctx context.Context, plannerID, actorID string) (*models.Planner, error)
	List(ctx context.Context, userID string, includeArchived bool) ([]*models.Planner, error)
	ListForDate(ctx context.Context, userID, date string) ([]*models.Planner, error)
	Update(ctx context.Context, plannerID, actorID string, req models.UpdatePlannerRequest) (*models.Planner, error)
	Delete(ctx context.Context, plannerID, actorID string) error
	Duplicate(ctx context.Context, plannerID, actorID, title string) (*models.Planner, error)
	SetDefault(ctx context.Context, plannerID, actorID string) (*models.Planner, error)
	Archive(ctx context.Context, plannerID, actorID string) (*models.Planner, error)
	Restore(ctx context.Context, plannerID, actorID string) (*models.Planner, error)
}

// SectionService defines the interface for section lifecycle operations.
type SectionService interface {
	Create(ctx context.Context, plannerID, actorID string, req models.CreateSectionRequest) (*models.Section, error)
	Get(ctx context.Context, sectionID, actorID string) (*models.Section, error)
	ListByDate(ctx context.Context, plannerID, actorID, date string) ([]*models.Section, error)
	ListInRange(ctx context.Context, plannerID, actorID, startDate, endDate string) ([]*models.Section, error)
	ListByType(ctx context.Context, plannerID, actorID string, sectionType models.SectionType) ([]*models.Section, error)
	Update(ctx context.Context, sectionID, actorID string, req models.UpdateSectionRequest) (*models.Section, error)
	Delete(ctx context.Context, sectionID, actorID string) error
	ToggleCollapse(ctx context.Context, sectionID, actorID string) (*models.Section, error)
	Reorder(ctx context.Context, actorID string, req models.ReorderSectionsRequest) error
	BulkUpdate(ctx context.Context, actorID string, req models.BulkUpdateSectionsRequest) error
	Duplicate(ctx context.Context, sectionID, actorID, targetDate string) (*models.Section, error)
}

// SharingService defines the interface for share and invitation operations.
type SharingService interface {
	Share(ctx context.Context, plannerID, ownerID string, req models.SharePlannerRequest) (*models.PlannerShare, error)
	ListShares(ctx context.Context, plannerID, actorID string) ([]*models.PlannerShare, error)
	PendingInvitations(ctx context.Context, userID string) ([]*models.PlannerShare, error)
	SharedWithMe(ctx context.Context, userID string) ([]*models.SharedPlanner, error)
	Accept(ctx context.Context, shareID, userID string) (*models.PlannerShare, error)
	Reject(ctx context.Context, shareID, userID string) error
	UpdatePermission(ctx context.Context, shareID, actorID string, permission models.Permission) (*models.PlannerShare, error)
	Remove(ctx context.Context, shareID, actorID string) error
	Leave(ctx context.Context, plannerID, userID string) error
}

// ActivityService defines the interface for the activity log.
type ActivityService interface {
	// Record appends an entry. Failures are logged, never returned.
	Record(ctx context.Context, plannerID, userID string, activityType models.ActivityType, description string, metadata map[string]interface{})
	ListForPlanner(ctx context.Context, plannerID, actorID string, page models.Page) ([]*models.ActivityLog, error)
	ListForUser(ctx context.Context, userID string, page models.Page) ([]*models.ActivityLog, error)
	Get(ctx context.Context, activityID, actorID string) (*models.ActivityLog, error)
	ClearForPlanner(ctx context.Context, plannerID, actorID string) (int, error)
}

// AIService defines the interface for assistant features backed by workflows.
type AIService interface {
	Chat(ctx context.Context, actorID string, req models.ChatRequest) (*ChatReply, error)
	ChatHistory(ctx context.Context, plannerID, actorID string, limit int) ([]*models.ChatMessage, error)
	ClearChatHistory(ctx context.Context, plannerID, actorID string) error
	SuggestMeals(ctx context.Context, actorID string, req models.MealSuggestionRequest) (interface{}, error)
	GenerateSchedule(ctx context.Context, actorID string, req models.ScheduleRequest) (interface{}, error)
	AnalyzeHabits(ctx context.Context, actorID string, req models.HabitAnalysisRequest) (interface{}, error)
	SuggestTasks(ctx context.Context, actorID string, req models.TaskSuggestionRequest) (interface{}, error)
	GenerateGoals(ctx context.Context, actorID string, req models.GoalsRequest) (interface{}, error)
	ProvideFeedback(ctx context.Context, actorID string, req models.FeedbackRequest) (interface{}, error)
}

// ExportService defines the interface for PDF and calendar exports.
type ExportService interface {
	ExportPlannerPDF(ctx context.Context, plannerID, actorID string, req models.ExportPDFRequest) (*ExportJob, error)
	ExportDateRangePDF(ctx context.Context, actorID string, req models.ExportDateRangeRequest) (*ExportJob, error)
	Status(ctx context.Context, exportID, actorID string) (*models.ExportRecord, error)
	Download(ctx context.Context, exportID, actorID string) (*ExportDownload, error)
	ExportCalendar(ctx context.Context, plannerID, actorID string, req models.CalendarExportRequest) (interface{}, error)
	// FailStale marks unfinished exports older than the cutoff as failed.
	FailStale(ctx context.Context, olderThan time.Duration) (int, error)
}

// HandwritingService defines the interface for handwriting capture.
type HandwritingService interface {
	Convert(ctx context.Context, actorID string, req models.HandwritingRequest) (*models.HandwritingRecord, error)
	Save(ctx context.Context, actorID string, req models.SaveHandwritingRequest) (*models.HandwritingRecord, error)
	Get(ctx context.Context, recordID, actorID string) (*models.HandwritingRecord, error)
	Delete(ctx context.Context, recordID, actorID string) error
}

// IdentityProvider is the external account system.
type IdentityProvider interface {
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
	SignInWithPassword(ctx context.Context, email, password string) (string, error)
	VerifyIDToken(ctx context.Context, idToken string) (*identity.Identity, error)
	UpdateProfile(ctx context.Context, uid string, displayName, photoURL *string) error
	UpdatePassword(ctx context.Context, uid, password string) error
	RevokeRefreshTokens(ctx context.Context, uid string) error
	DeleteUser(ctx context.Context, uid string) error
}

// TokenIssuer issues and rotates this service's own session tokens.
type TokenIssuer interface {
	Issue(ctx context.Context, userID, email string) (*session.TokenPair, error)
	Rotate(ctx context.Context, refreshToken string) (*session.TokenPair, string, error)
	RevokeAll(ctx context.Context, userID string) error
}

// Workflow posts a payload to a named automation webhook.
type Workflow interface {
	Post(ctx context.Context, webhook string, payload interface{}, out interface{}) error
}

// ObjectStore stores binary objects by path.
type ObjectStore interface {
	Upload(ctx context.Context, path, contentType string, data []byte) error
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, path string) error
}

// PDFRenderer renders a planner document to PDF in-process.
type PDFRenderer interface {
	Render(ctx context.Context, doc export.Document) (*export.Result, error)
}

// AuthResult is returned by every sign-in flow.
type AuthResult struct {
	User   *models.User
	Tokens *session.TokenPair
}

// ChatReply is the assistant's answer to a chat message.
type ChatReply struct {
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// ExportJob is the handle returned when a PDF export starts.
type ExportJob struct {
	ExportID string              `json:"exportId"`
	Status   models.ExportStatus `json:"status"`
}

// ExportDownload points at a finished export.
type ExportDownload struct {
	DownloadURL string `json:"downloadUrl"`
	Filename    string `json:"filename"`
}
