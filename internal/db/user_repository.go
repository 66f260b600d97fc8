package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"planner-backend-go/internal/models"
)

// firestoreUserRepository implements the UserRepository interface using Firestore.
type firestoreUserRepository struct {
	client *firestore.Client
}

// NewFirestoreUserRepository creates a new instance of firestoreUserRepository.
func NewFirestoreUserRepository(client *firestore.Client) UserRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for UserRepository.")
	}
	return &firestoreUserRepository{client: client}
}

func setUserID(u *models.User, id string) { u.ID = id }

// Create adds a new user document; the Firebase Auth UID is the document ID.
func (r *firestoreUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		return errors.New("user ID cannot be empty for Create operation")
	}
	_, err := r.client.Collection(usersCollection).Doc(user.ID).Create(ctx, user)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("user with ID '%s' already exists: %w", user.ID, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create user with ID '%s': %w", user.ID, err)
	}
	return nil
}

func (r *firestoreUserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	return getDoc(ctx, r.client.Collection(usersCollection).Doc(userID), "user", setUserID)
}

func (r *firestoreUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := r.client.Collection(usersCollection).Where("email", "==", email).Limit(1)
	users, err := queryDocs(ctx, query, "user", setUserID)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("user with email '%s' not found: %w", email, ErrNotFound)
	}
	return users[0], nil
}

// Update merges fields into an existing user document.
func (r *firestoreUserRepository) Update(ctx context.Context, userID string, fields map[string]interface{}) error {
	_, err := r.client.Collection(usersCollection).Doc(userID).Update(ctx, toUpdates(fields))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("user with ID '%s' not found: %w", userID, ErrNotFound)
		}
		return fmt.Errorf("failed to update user with ID '%s': %w", userID, err)
	}
	return nil
}

func (r *firestoreUserRepository) DeleteAccountData(ctx context.Context, userID string) error {
	planners := r.client.Collection(plannersCollection)
	sections := r.client.Collection(sectionsCollection)
	shares := r.client.Collection(sharesCollection)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		owned, err := tx.Documents(planners.Where("userId", "==", userID)).GetAll()
		if err != nil {
			return err
		}
		queries := []firestore.Query{shares.Where("sharedWithUserId", "==", userID)}
		for _, p := range owned {
			queries = append(queries,
				sections.Where("plannerId", "==", p.Ref.ID),
				shares.Where("plannerId", "==", p.Ref.ID),
			)
		}

		var refs []*firestore.DocumentRef
		seen := map[string]bool{}
		for _, q := range queries {
			docs, err := tx.Documents(q).GetAll()
			if err != nil {
				return err
			}
			for _, d := range docs {
				if !seen[d.Ref.Path] {
					seen[d.Ref.Path] = true
					refs = append(refs, d.Ref)
				}
			}
		}
		for _, p := range owned {
			refs = append(refs, p.Ref)
		}
		refs = append(refs, r.client.Collection(usersCollection).Doc(userID))

		for _, ref := range refs {
			if err := tx.Delete(ref); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete account data for user '%s': %w", userID, err)
	}
	return nil
}
