package db

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"

	"planner-backend-go/internal/models"
)

// firestoreActivityRepository stores the append-only activity log.
type firestoreActivityRepository struct {
	client *firestore.Client
}

// NewFirestoreActivityRepository creates a new instance of firestoreActivityRepository.
func NewFirestoreActivityRepository(client *firestore.Client) ActivityRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for ActivityRepository.")
	}
	return &firestoreActivityRepository{client: client}
}

func setActivityID(a *models.ActivityLog, id string) { a.ID = id }

func (r *firestoreActivityRepository) col() *firestore.CollectionRef {
	return r.client.Collection(activityCollection)
}

func (r *firestoreActivityRepository) Create(ctx context.Context, entry *models.ActivityLog) (string, error) {
	docRef, _, err := r.col().Add(ctx, entry)
	if err != nil {
		return "", fmt.Errorf("failed to create activity log entry: %w", err)
	}
	entry.ID = docRef.ID
	return docRef.ID, nil
}

func (r *firestoreActivityRepository) GetByID(ctx context.Context, activityID string) (*models.ActivityLog, error) {
	return getDoc(ctx, r.col().Doc(activityID), "activity", setActivityID)
}

func (r *firestoreActivityRepository) listPage(ctx context.Context, field, value string, page models.Page) ([]*models.ActivityLog, error) {
	query := r.col().Where(field, "==", value).OrderBy("timestamp", firestore.Desc)
	query, ok, err := paginate(ctx, r.col(), query, page)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []*models.ActivityLog{}, nil
	}
	return queryDocs(ctx, query, "activity", setActivityID)
}

// ListByPlanner returns a planner's activity, newest first.
func (r *firestoreActivityRepository) ListByPlanner(ctx context.Context, plannerID string, page models.Page) ([]*models.ActivityLog, error) {
	return r.listPage(ctx, "plannerId", plannerID, page)
}

// ListByUser returns the actions performed by userID, newest first.
func (r *firestoreActivityRepository) ListByUser(ctx context.Context, userID string, page models.Page) ([]*models.ActivityLog, error) {
	return r.listPage(ctx, "userId", userID, page)
}

func (r *firestoreActivityRepository) DeleteByPlanner(ctx context.Context, plannerID string) (int, error) {
	var deleted int
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		n, err := deleteAllInTx(tx, r.col().Where("plannerId", "==", plannerID))
		deleted = n
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete activity of planner '%s': %w", plannerID, err)
	}
	return deleted, nil
}
