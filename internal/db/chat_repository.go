package db

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"

	"planner-backend-go/internal/models"
)

type firestoreChatRepository struct {
	client *firestore.Client
}

// NewFirestoreChatRepository creates a new instance of firestoreChatRepository.
func NewFirestoreChatRepository(client *firestore.Client) ChatRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for ChatRepository.")
	}
	return &firestoreChatRepository{client: client}
}

func setChatID(m *models.ChatMessage, id string) { m.ID = id }

func (r *firestoreChatRepository) col() *firestore.CollectionRef {
	return r.client.Collection(chatCollection)
}

func (r *firestoreChatRepository) Create(ctx context.Context, msg *models.ChatMessage) (string, error) {
	docRef, _, err := r.col().Add(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("failed to store chat message: %w", err)
	}
	msg.ID = docRef.ID
	return docRef.ID, nil
}

// ListByPlanner returns the most recent exchanges, newest first.
func (r *firestoreChatRepository) ListByPlanner(ctx context.Context, plannerID string, limit int) ([]*models.ChatMessage, error) {
	query := r.col().Where("plannerId", "==", plannerID).OrderBy("timestamp", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}
	return queryDocs(ctx, query, "chat message", setChatID)
}

func (r *firestoreChatRepository) DeleteByPlanner(ctx context.Context, plannerID string) (int, error) {
	var deleted int
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		n, err := deleteAllInTx(tx, r.col().Where("plannerId", "==", plannerID))
		deleted = n
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to clear chat history of planner '%s': %w", plannerID, err)
	}
	return deleted, nil
}
