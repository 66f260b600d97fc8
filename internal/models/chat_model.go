package models

import "time"

// ChatMessage is one exchange with the planning assistant.
type ChatMessage struct {
	ID        string    `json:"id" firestore:"-"`
	PlannerID string    `json:"plannerId" firestore:"plannerId"`
	UserID    string    `json:"userId" firestore:"userId"`
	Message   string    `json:"message" firestore:"message"`
	Response  string    `json:"response" firestore:"response"`
	Timestamp time.Time `json:"timestamp" firestore:"timestamp"`
}
