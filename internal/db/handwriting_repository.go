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

type firestoreHandwritingRepository struct {
	client *firestore.Client
}

// NewFirestoreHandwritingRepository creates a new instance of firestoreHandwritingRepository.
func NewFirestoreHandwritingRepository(client *firestore.Client) HandwritingRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for HandwritingRepository.")
	}
	return &firestoreHandwritingRepository{client: client}
}

func setHandwritingID(h *models.HandwritingRecord, id string) { h.ID = id }

func (r *firestoreHandwritingRepository) Create(ctx context.Context, record *models.HandwritingRecord) (string, error) {
	docRef, _, err := r.client.Collection(handwritingCollection).Add(ctx, record)
	if err != nil {
		return "", fmt.Errorf("failed to store handwriting record: %w", err)
	}
	record.ID = docRef.ID
	return docRef.ID, nil
}

func (r *firestoreHandwritingRepository) GetByID(ctx context.Context, recordID string) (*models.HandwritingRecord, error) {
	return getDoc(ctx, r.client.Collection(handwritingCollection).Doc(recordID), "handwriting record", setHandwritingID)
}

func (r *firestoreHandwritingRepository) Delete(ctx context.Context, recordID string) error {
	if _, err := r.client.Collection(handwritingCollection).Doc(recordID).Delete(ctx, firestore.Exists); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("handwriting record '%s' not found for deletion: %w", recordID, ErrNotFound)
		}
		return fmt.Errorf("failed to delete handwriting record '%s': %w", recordID, err)
	}
	return nil
}
