package db

import (
	"context"
	"errors"
	"time"

	"planner-backend-go/internal/models"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrAlreadyExists is returned when a create collides with an existing document.
	ErrAlreadyExists = errors.New("document already exists")
)

// UserRepository defines the interface for user data storage operations.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, userID string, fields map[string]interface{}) error
	// DeleteAccountData removes, in one atomic write, the user's planners with
	// their sections and shares, the shares addressed to the user, and the user document.
	DeleteAccountData(ctx context.Context, userID string) error
}

// PlannerRepository defines the interface for planner data storage operations.
type PlannerRepository interface {
	// Create stores a planner. When planner.IsDefault is set, the owner's other
	// defaults are cleared in the same transaction.
	Create(ctx context.Context, planner *models.Planner) (string, error)
	GetByID(ctx context.Context, plannerID string) (*models.Planner, error)
	ListByOwner(ctx context.Context, ownerID string, includeArchived bool) ([]*models.Planner, error)
	Update(ctx context.Context, plannerID string, fields map[string]interface{}) error
	// UpdateAsDefault applies fields and marks the planner as the owner's only default, atomically.
	UpdateAsDefault(ctx context.Context, ownerID, plannerID string, fields map[string]interface{}) error
	// DeleteCascade removes the planner, its sections and its shares in one atomic write.
	DeleteCascade(ctx context.Context, plannerID string) error
}

// SectionUpdate is one entry of an atomic multi-section write.
type SectionUpdate struct {
	ID     string
	Fields map[string]interface{}
}

// SectionRepository defines the interface for section data storage operations.
type SectionRepository interface {
	Create(ctx context.Context, section *models.Section) (string, error)
	// CreateMany stores all sections in one atomic write and returns their ids.
	CreateMany(ctx context.Context, sections []*models.Section) ([]string, error)
	GetByID(ctx context.Context, sectionID string) (*models.Section, error)
	ListByDate(ctx context.Context, plannerID, date string) ([]*models.Section, error)
	ListInRange(ctx context.Context, plannerID, startDate, endDate string) ([]*models.Section, error)
	ListByType(ctx context.Context, plannerID string, sectionType models.SectionType, limit int) ([]*models.Section, error)
	HasSectionsOn(ctx context.Context, plannerID, date string) (bool, error)
	Update(ctx context.Context, sectionID string, fields map[string]interface{}) error
	// UpdateMany applies all updates atomically; every section must belong to plannerID.
	UpdateMany(ctx context.Context, plannerID string, updates []SectionUpdate) error
	Delete(ctx context.Context, sectionID string) error
}

// ShareRepository defines the interface for planner share storage operations.
type ShareRepository interface {
	// Create stores a share under models.ShareID; it fails with ErrAlreadyExists for a duplicate pair.
	Create(ctx context.Context, share *models.PlannerShare) (string, error)
	GetByID(ctx context.Context, shareID string) (*models.PlannerShare, error)
	ListByPlanner(ctx context.Context, plannerID string) ([]*models.PlannerShare, error)
	ListByRecipient(ctx context.Context, userID string, accepted bool) ([]*models.PlannerShare, error)
	Update(ctx context.Context, shareID string, fields map[string]interface{}) error
	Delete(ctx context.Context, shareID string) error
}

// ActivityRepository defines the interface for activity log storage operations.
type ActivityRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) (string, error)
	GetByID(ctx context.Context, activityID string) (*models.ActivityLog, error)
	ListByPlanner(ctx context.Context, plannerID string, page models.Page) ([]*models.ActivityLog, error)
	ListByUser(ctx context.Context, userID string, page models.Page) ([]*models.ActivityLog, error)
	DeleteByPlanner(ctx context.Context, plannerID string) (int, error)
}

// ChatRepository defines the interface for assistant chat history storage.
type ChatRepository interface {
	Create(ctx context.Context, msg *models.ChatMessage) (string, error)
	ListByPlanner(ctx context.Context, plannerID string, limit int) ([]*models.ChatMessage, error)
	DeleteByPlanner(ctx context.Context, plannerID string) (int, error)
}

// HandwritingRepository defines the interface for handwriting record storage.
type HandwritingRepository interface {
	Create(ctx context.Context, record *models.HandwritingRecord) (string, error)
	GetByID(ctx context.Context, recordID string) (*models.HandwritingRecord, error)
	Delete(ctx context.Context, recordID string) error
}

// ExportRepository defines the interface for export job storage.
type ExportRepository interface {
	Create(ctx context.Context, record *models.ExportRecord) (string, error)
	GetByID(ctx context.Context, exportID string) (*models.ExportRecord, error)
	Update(ctx context.Context, exportID string, fields map[string]interface{}) error
	ListStale(ctx context.Context, before time.Time) ([]*models.ExportRecord, error)
}
