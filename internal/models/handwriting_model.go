package models

import "time"

// HandwritingRecord is a stored drawing with its recognised text, if any.
type HandwritingRecord struct {
	ID          string    `json:"id" firestore:"-"`
	UserID      string    `json:"userId" firestore:"userId"`
	PlannerID   string    `json:"plannerId,omitempty" firestore:"plannerId"`
	SectionID   string    `json:"sectionId,omitempty" firestore:"sectionId"`
	StoragePath string    `json:"-" firestore:"storagePath"`
	ImageURL    string    `json:"imageUrl,omitempty" firestore:"-"`
	Text        string    `json:"text" firestore:"text"`
	Confidence  float64   `json:"confidence" firestore:"confidence"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt"`
}
