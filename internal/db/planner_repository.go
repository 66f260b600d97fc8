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

// firestorePlannerRepository implements the PlannerRepository interface using Firestore.
type firestorePlannerRepository struct {
	client *firestore.Client
}

// NewFirestorePlannerRepository creates a new instance of firestorePlannerRepository.
func NewFirestorePlannerRepository(client *firestore.Client) PlannerRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for PlannerRepository.")
	}
	return &firestorePlannerRepository{client: client}
}

func setPlannerID(p *models.Planner, id string) { p.ID = id }

func (r *firestorePlannerRepository) col() *firestore.CollectionRef {
	return r.client.Collection(plannersCollection)
}

// clearDefaultsInTx unsets isDefault on every default planner of ownerID except keepID.
func (r *firestorePlannerRepository) clearDefaultsInTx(tx *firestore.Transaction, ownerID, keepID string, updatedAt interface{}) error {
	defaults, err := tx.Documents(r.col().Where("userId", "==", ownerID).Where("isDefault", "==", true)).GetAll()
	if err != nil {
		return err
	}
	for _, d := range defaults {
		if d.Ref.ID == keepID {
			continue
		}
		if err := tx.Update(d.Ref, []firestore.Update{
			{Path: "isDefault", Value: false},
			{Path: "updatedAt", Value: updatedAt},
		}); err != nil {
			return err
		}
	}
	return nil
}

// Create adds a new planner document with an auto-generated ID.
func (r *firestorePlannerRepository) Create(ctx context.Context, planner *models.Planner) (string, error) {
	docRef := r.col().NewDoc()

	if !planner.IsDefault {
		if _, err := docRef.Create(ctx, planner); err != nil {
			return "", fmt.Errorf("failed to create planner: %w", err)
		}
		planner.ID = docRef.ID
		return docRef.ID, nil
	}

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := r.clearDefaultsInTx(tx, planner.UserID, docRef.ID, planner.UpdatedAt); err != nil {
			return err
		}
		return tx.Create(docRef, planner)
	})
	if err != nil {
		return "", fmt.Errorf("failed to create default planner: %w", err)
	}
	planner.ID = docRef.ID
	return docRef.ID, nil
}

func (r *firestorePlannerRepository) GetByID(ctx context.Context, plannerID string) (*models.Planner, error) {
	return getDoc(ctx, r.col().Doc(plannerID), "planner", setPlannerID)
}

// ListByOwner returns the owner's planners, newest first.
func (r *firestorePlannerRepository) ListByOwner(ctx context.Context, ownerID string, includeArchived bool) ([]*models.Planner, error) {
	query := r.col().Where("userId", "==", ownerID)
	if !includeArchived {
		query = query.Where("isArchived", "==", false)
	}
	query = query.OrderBy("createdAt", firestore.Desc)
	return queryDocs(ctx, query, "planner", setPlannerID)
}

func (r *firestorePlannerRepository) Update(ctx context.Context, plannerID string, fields map[string]interface{}) error {
	_, err := r.col().Doc(plannerID).Update(ctx, toUpdates(fields))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("planner with ID '%s' not found: %w", plannerID, ErrNotFound)
		}
		return fmt.Errorf("failed to update planner with ID '%s': %w", plannerID, err)
	}
	return nil
}

func (r *firestorePlannerRepository) UpdateAsDefault(ctx context.Context, ownerID, plannerID string, fields map[string]interface{}) error {
	ref := r.col().Doc(plannerID)
	patch := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		patch[k] = v
	}
	patch["isDefault"] = true

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			return err
		}
		if err := r.clearDefaultsInTx(tx, ownerID, plannerID, patch["updatedAt"]); err != nil {
			return err
		}
		return tx.Update(ref, toUpdates(patch))
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("planner with ID '%s' not found: %w", plannerID, ErrNotFound)
		}
		return fmt.Errorf("failed to set default planner '%s': %w", plannerID, err)
	}
	return nil
}

func (r *firestorePlannerRepository) DeleteCascade(ctx context.Context, plannerID string) error {
	ref := r.col().Doc(plannerID)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			return err
		}
		if _, err := deleteAllInTx(tx,
			r.client.Collection(sectionsCollection).Where("plannerId", "==", plannerID),
			r.client.Collection(sharesCollection).Where("plannerId", "==", plannerID),
		); err != nil {
			return err
		}
		return tx.Delete(ref)
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("planner with ID '%s' not found for deletion: %w", plannerID, ErrNotFound)
		}
		return fmt.Errorf("failed to delete planner with ID '%s': %w", plannerID, err)
	}
	return nil
}
