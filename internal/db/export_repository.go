package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"planner-backend-go/internal/models"
)

type firestoreExportRepository struct {
	client *firestore.Client
}

// NewFirestoreExportRepository creates a new instance of firestoreExportRepository.
func NewFirestoreExportRepository(client *firestore.Client) ExportRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for ExportRepository.")
	}
	return &firestoreExportRepository{client: client}
}

func setExportID(e *models.ExportRecord, id string) { e.ID = id }

func (r *firestoreExportRepository) col() *firestore.CollectionRef {
	return r.client.Collection(exportsCollection)
}

func (r *firestoreExportRepository) Create(ctx context.Context, record *models.ExportRecord) (string, error) {
	docRef, _, err := r.col().Add(ctx, record)
	if err != nil {
		return "", fmt.Errorf("failed to create export record: %w", err)
	}
	record.ID = docRef.ID
	return docRef.ID, nil
}

func (r *firestoreExportRepository) GetByID(ctx context.Context, exportID string) (*models.ExportRecord, error) {
	return getDoc(ctx, r.col().Doc(exportID), "export", setExportID)
}

func (r *firestoreExportRepository) Update(ctx context.Context, exportID string, fields map[string]interface{}) error {
	if _, err := r.col().Doc(exportID).Update(ctx, toUpdates(fields)); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("export with ID '%s' not found: %w", exportID, ErrNotFound)
		}
		return fmt.Errorf("failed to update export with ID '%s': %w", exportID, err)
	}
	return nil
}

// ListStale returns unfinished exports created before the cutoff.
func (r *firestoreExportRepository) ListStale(ctx context.Context, before time.Time) ([]*models.ExportRecord, error) {
	query := r.col().
		Where("status", "in", []string{string(models.ExportPending), string(models.ExportInProgress)}).
		Where("createdAt", "<", before)
	return queryDocs(ctx, query, "export", setExportID)
}
