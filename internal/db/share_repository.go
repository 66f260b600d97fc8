package db

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"planner-backend-go/internal/models"
)

type firestoreShareRepository struct {
	client *firestore.Client
}

// NewFirestoreShareRepository creates a new instance of firestoreShareRepository.
func NewFirestoreShareRepository(client *firestore.Client) ShareRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for ShareRepository.")
	}
	return &firestoreShareRepository{client: client}
}

func setShareID(s *models.PlannerShare, id string) { s.ID = id }

func (r *firestoreShareRepository) col() *firestore.CollectionRef {
	return r.client.Collection(sharesCollection)
}

func (r *firestoreShareRepository) Create(ctx context.Context, share *models.PlannerShare) (string, error) {
	id := models.ShareID(share.PlannerID, share.SharedWithUserID)
	if _, err := r.col().Doc(id).Create(ctx, share); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return "", fmt.Errorf("share '%s' already exists: %w", id, ErrAlreadyExists)
		}
		return "", fmt.Errorf("failed to create share '%s': %w", id, err)
	}
	share.ID = id
	return id, nil
}

func (r *firestoreShareRepository) GetByID(ctx context.Context, shareID string) (*models.PlannerShare, error) {
	return getDoc(ctx, r.col().Doc(shareID), "share", setShareID)
}

func (r *firestoreShareRepository) ListByPlanner(ctx context.Context, plannerID string) ([]*models.PlannerShare, error) {
	query := r.col().Where("plannerId", "==", plannerID).OrderBy("createdAt", firestore.Desc)
	return queryDocs(ctx, query, "share", setShareID)
}

// ListByRecipient returns shares addressed to userID, filtered by acceptance.
func (r *firestoreShareRepository) ListByRecipient(ctx context.Context, userID string, accepted bool) ([]*models.PlannerShare, error) {
	query := r.col().
		Where("sharedWithUserId", "==", userID).
		Where("isAccepted", "==", accepted).
		OrderBy("createdAt", firestore.Desc)
	return queryDocs(ctx, query, "share", setShareID)
}

func (r *firestoreShareRepository) Update(ctx context.Context, shareID string, fields map[string]interface{}) error {
	if _, err := r.col().Doc(shareID).Update(ctx, toUpdates(fields)); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("share with ID '%s' not found: %w", shareID, ErrNotFound)
		}
		return fmt.Errorf("failed to update share with ID '%s': %w", shareID, err)
	}
	return nil
}

func (r *firestoreShareRepository) Delete(ctx context.Context, shareID string) error {
	ref := r.col().Doc(shareID)
	if _, err := ref.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("share with ID '%s' not found for deletion: %w", shareID, ErrNotFound)
		}
		return fmt.Errorf("failed to get share '%s' for deletion: %w", shareID, err)
	}
	if _, err := ref.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete share with ID '%s': %w", shareID, err)
	}
	return nil
}
