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

// sectionDoc is the stored shape of a section. Content is kept as a plain map
// and converted back to its typed form on read.
type sectionDoc struct {
	PlannerID   string                 `firestore:"plannerId"`
	Date        string                 `firestore:"date"`
	Type        models.SectionType     `firestore:"type"`
	Title       string                 `firestore:"title"`
	Content     map[string]interface{} `firestore:"content"`
	Order       int                    `firestore:"order"`
	IsCollapsed bool                   `firestore:"isCollapsed"`
	CreatedBy   string                 `firestore:"createdBy"`
	UpdatedBy   string                 `firestore:"updatedBy,omitempty"`
	CreatedAt   time.Time              `firestore:"createdAt"`
	UpdatedAt   time.Time              `firestore:"updatedAt"`
}

func toSectionDoc(s *models.Section) (*sectionDoc, error) {
	content := s.Content
	if content == nil {
		var err error
		if content, err = models.NewSectionContent(s.Type); err != nil {
			return nil, err
		}
	}
	m, err := models.ContentToMap(content)
	if err != nil {
		return nil, err
	}
	return &sectionDoc{
		PlannerID:   s.PlannerID,
		Date:        s.Date,
		Type:        s.Type,
		Title:       s.Title,
		Content:     m,
		Order:       s.Order,
		IsCollapsed: s.IsCollapsed,
		CreatedBy:   s.CreatedBy,
		UpdatedBy:   s.UpdatedBy,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}, nil
}

func fromSectionSnap(snap *firestore.DocumentSnapshot) (*models.Section, error) {
	var d sectionDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, fmt.Errorf("failed to decode section data for ID '%s': %w", snap.Ref.ID, err)
	}
	content, err := models.ContentFromMap(d.Type, d.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to decode content of section '%s': %w", snap.Ref.ID, err)
	}
	return &models.Section{
		ID:          snap.Ref.ID,
		PlannerID:   d.PlannerID,
		Date:        d.Date,
		Type:        d.Type,
		Title:       d.Title,
		Content:     content,
		Order:       d.Order,
		IsCollapsed: d.IsCollapsed,
		CreatedBy:   d.CreatedBy,
		UpdatedBy:   d.UpdatedBy,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

// contentField converts a typed content value in an update map to its stored form.
func contentField(fields map[string]interface{}) (map[string]interface{}, error) {
	c, ok := fields["content"].(models.SectionContent)
	if !ok {
		return fields, nil
	}
	m, err := models.ContentToMap(c)
	if err != nil {
		return nil, err
	}
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	out["content"] = m
	return out, nil
}

type firestoreSectionRepository struct {
	client *firestore.Client
}

// NewFirestoreSectionRepository creates a new instance of firestoreSectionRepository.
func NewFirestoreSectionRepository(client *firestore.Client) SectionRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for SectionRepository.")
	}
	return &firestoreSectionRepository{client: client}
}

func (r *firestoreSectionRepository) col() *firestore.CollectionRef {
	return r.client.Collection(sectionsCollection)
}

func (r *firestoreSectionRepository) Create(ctx context.Context, section *models.Section) (string, error) {
	doc, err := toSectionDoc(section)
	if err != nil {
		return "", fmt.Errorf("failed to encode section: %w", err)
	}
	docRef := r.col().NewDoc()
	if _, err := docRef.Create(ctx, doc); err != nil {
		return "", fmt.Errorf("failed to create section: %w", err)
	}
	section.ID = docRef.ID
	return docRef.ID, nil
}

func (r *firestoreSectionRepository) CreateMany(ctx context.Context, sections []*models.Section) ([]string, error) {
	if len(sections) == 0 {
		return nil, nil
	}
	refs := make([]*firestore.DocumentRef, len(sections))
	docs := make([]*sectionDoc, len(sections))
	for i, s := range sections {
		doc, err := toSectionDoc(s)
		if err != nil {
			return nil, fmt.Errorf("failed to encode section %d: %w", i, err)
		}
		refs[i] = r.col().NewDoc()
		docs[i] = doc
	}

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		for i := range refs {
			if err := tx.Create(refs[i], docs[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sections: %w", err)
	}

	ids := make([]string, len(refs))
	for i, ref := range refs {
		ids[i] = ref.ID
		sections[i].ID = ref.ID
	}
	return ids, nil
}

func (r *firestoreSectionRepository) GetByID(ctx context.Context, sectionID string) (*models.Section, error) {
	if sectionID == "" {
		return nil, fmt.Errorf("section id cannot be empty: %w", ErrNotFound)
	}
	snap, err := r.col().Doc(sectionID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("section with ID '%s' not found: %w", sectionID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get section with ID '%s': %w", sectionID, err)
	}
	return fromSectionSnap(snap)
}

func (r *firestoreSectionRepository) list(ctx context.Context, query firestore.Query) ([]*models.Section, error) {
	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}
	sections := make([]*models.Section, 0, len(snaps))
	for _, snap := range snaps {
		s, err := fromSectionSnap(snap)
		if err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, nil
}

// ListByDate returns a day's sections in display order.
func (r *firestoreSectionRepository) ListByDate(ctx context.Context, plannerID, date string) ([]*models.Section, error) {
	return r.list(ctx, r.col().
		Where("plannerId", "==", plannerID).
		Where("date", "==", date).
		OrderBy("order", firestore.Asc))
}

func (r *firestoreSectionRepository) ListInRange(ctx context.Context, plannerID, startDate, endDate string) ([]*models.Section, error) {
	return r.list(ctx, r.col().
		Where("plannerId", "==", plannerID).
		Where("date", ">=", startDate).
		Where("date", "<=", endDate).
		OrderBy("date", firestore.Asc).
		OrderBy("order", firestore.Asc))
}

// ListByType returns the most recent sections of one type.
func (r *firestoreSectionRepository) ListByType(ctx context.Context, plannerID string, sectionType models.SectionType, limit int) ([]*models.Section, error) {
	query := r.col().
		Where("plannerId", "==", plannerID).
		Where("type", "==", string(sectionType)).
		OrderBy("date", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}
	return r.list(ctx, query)
}

func (r *firestoreSectionRepository) HasSectionsOn(ctx context.Context, plannerID, date string) (bool, error) {
	snaps, err := r.col().
		Where("plannerId", "==", plannerID).
		Where("date", "==", date).
		Limit(1).
		Documents(ctx).GetAll()
	if err != nil {
		return false, fmt.Errorf("failed to check sections on '%s': %w", date, err)
	}
	return len(snaps) > 0, nil
}

func (r *firestoreSectionRepository) Update(ctx context.Context, sectionID string, fields map[string]interface{}) error {
	fields, err := contentField(fields)
	if err != nil {
		return fmt.Errorf("failed to encode section content: %w", err)
	}
	if _, err := r.col().Doc(sectionID).Update(ctx, toUpdates(fields)); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("section with ID '%s' not found: %w", sectionID, ErrNotFound)
		}
		return fmt.Errorf("failed to update section with ID '%s': %w", sectionID, err)
	}
	return nil
}

func (r *firestoreSectionRepository) UpdateMany(ctx context.Context, plannerID string, updates []SectionUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	encoded := make([]map[string]interface{}, len(updates))
	for i, u := range updates {
		fields, err := contentField(u.Fields)
		if err != nil {
			return fmt.Errorf("failed to encode content of section '%s': %w", u.ID, err)
		}
		encoded[i] = fields
	}

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		refs := make([]*firestore.DocumentRef, len(updates))
		for i, u := range updates {
			refs[i] = r.col().Doc(u.ID)
			snap, err := tx.Get(refs[i])
			if err != nil {
				if status.Code(err) == codes.NotFound {
					return fmt.Errorf("section with ID '%s' not found: %w", u.ID, ErrNotFound)
				}
				return err
			}
			owner, err := snap.DataAt("plannerId")
			if err != nil || owner != plannerID {
				return fmt.Errorf("section '%s' does not belong to planner '%s': %w", u.ID, plannerID, ErrNotFound)
			}
		}
		for i, ref := range refs {
			if err := tx.Update(ref, toUpdates(encoded[i])); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to update sections of planner '%s': %w", plannerID, err)
	}
	return nil
}

func (r *firestoreSectionRepository) Delete(ctx context.Context, sectionID string) error {
	ref := r.col().Doc(sectionID)
	if _, err := ref.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("section with ID '%s' not found for deletion: %w", sectionID, ErrNotFound)
		}
		return fmt.Errorf("failed to get section '%s' for deletion: %w", sectionID, err)
	}
	if _, err := ref.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete section with ID '%s': %w", sectionID, err)
	}
	return nil
}
