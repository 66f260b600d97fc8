package core

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"planner-backend-go/internal/db"
	"planner-backend-go/internal/models"
	"planner-backend-go/internal/workflow"
)

// ImageURLTTL is the lifetime of a signed handwriting image URL.
const ImageURLTTL = time.Hour

// handwritingService implements the HandwritingService interface.
type handwritingService struct {
	repo    db.HandwritingRepository
	guard   *AccessGuard
	flows   Workflow
	objects ObjectStore
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
}

// NewHandwritingService creates a new HandwritingService instance.
func NewHandwritingService(
	repo db.HandwritingRepository,
	guard *AccessGuard,
	flows Workflow,
	objects ObjectStore,
	logger *zap.Logger,
) HandwritingService {
	return &handwritingService{
		repo:    repo,
		guard:   guard,
		flows:   flows,
		objects: objects,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// decodeImage accepts a data:image/...;base64, URL or bare base64 PNG.
func decodeImage(field, data string) ([]byte, string, error) {
	contentType := "image/png"
	payload := strings.TrimSpace(data)
	if strings.HasPrefix(payload, "data:") {
		header, body, ok := strings.Cut(payload, ",")
		if !ok || !strings.HasSuffix(header, ";base64") || !strings.HasPrefix(header, "data:image/") {
			return nil, "", newValidationError(field, "must be a base64 image data URL")
		}
		contentType = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		payload = body
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(raw) == 0 {
		return nil, "", newValidationError(field, "must be base64 encoded image data")
	}
	return raw, contentType, nil
}

// store checks edit access when a planner is given, then uploads the image.
func (s *handwritingService) store(ctx context.Context, actorID, field, data, plannerID, sectionID string) (*models.HandwritingRecord, error) {
	if plannerID != "" {
		if _, err := s.guard.RequirePlanner(ctx, plannerID, actorID, models.PermissionEdit); err != nil {
			return nil, err
		}
	}
	raw, contentType, err := decodeImage(field, data)
	if err != nil {
		return nil, err
	}
	path := fmt.Sprintf("handwriting/%s/%s.png", actorID, s.newID())
	if err := s.objects.Upload(ctx, path, contentType, raw); err != nil {
		return nil, fmt.Errorf("failed to upload handwriting image: %w", err)
	}
	return &models.HandwritingRecord{
		UserID:      actorID,
		PlannerID:   plannerID,
		SectionID:   sectionID,
		StoragePath: path,
		CreatedAt:   s.now().UTC(),
	}, nil
}

func (s *handwritingService) signImage(ctx context.Context, record *models.HandwritingRecord) {
	url, err := s.objects.SignedURL(ctx, record.StoragePath, ImageURLTTL)
	if err != nil {
		s.logger.Warn("Failed to sign handwriting image url", zap.String("record_id", record.ID), zap.Error(err))
		return
	}
	record.ImageURL = url
}

// Convert stores the drawing and runs it through handwriting recognition.
func (s *handwritingService) Convert(ctx context.Context, actorID string, req models.HandwritingRequest) (*models.HandwritingRecord, error) {
	record, err := s.store(ctx, actorID, "drawingData", req.DrawingData, req.PlannerID, req.SectionID)
	if err != nil {
		return nil, err
	}

	var ocr struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	}
	if err := s.flows.Post(ctx, workflow.WebhookHandwritingOCR, map[string]interface{}{
		"userId":      actorID,
		"drawingData": req.DrawingData,
		"imagePath":   record.StoragePath,
	}, &ocr); err != nil {
		s.logger.Error("Workflow call failed", zap.String("webhook", workflow.WebhookHandwritingOCR), zap.Error(err))
		if delErr := s.objects.Delete(ctx, record.StoragePath); delErr != nil {
			s.logger.Warn("Failed to remove orphaned handwriting image", zap.String("path", record.StoragePath), zap.Error(delErr))
		}
		return nil, unavailable("Handwriting recognition", err)
	}
	record.Text = ocr.Text
	record.Confidence = ocr.Confidence

	if _, err := s.repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save handwriting record: %w", err)
	}
	s.signImage(ctx, record)
	return record, nil
}

// Save stores the drawing without recognition.
func (s *handwritingService) Save(ctx context.Context, actorID string, req models.SaveHandwritingRequest) (*models.HandwritingRecord, error) {
	record, err := s.store(ctx, actorID, "imageData", req.ImageData, req.PlannerID, req.SectionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save handwriting record: %w", err)
	}
	s.signImage(ctx, record)
	return record, nil
}

func (s *handwritingService) load(ctx context.Context, recordID string) (*models.HandwritingRecord, error) {
	record, err := s.repo.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrHandwritingNotFound, recordID)
		}
		return nil, fmt.Errorf("failed to get handwriting record '%s': %w", recordID, err)
	}
	return record, nil
}

// Get returns a record to its owner or to anyone who can view its planner.
func (s *handwritingService) Get(ctx context.Context, recordID, actorID string) (*models.HandwritingRecord, error) {
	record, err := s.load(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if record.UserID != actorID {
		allowed := false
		if record.PlannerID != "" {
			allowed, err = s.guard.CheckPermission(ctx, record.PlannerID, actorID, models.PermissionView)
			if err != nil {
				return nil, err
			}
		}
		if !allowed {
			return nil, fmt.Errorf("%w: handwriting record '%s'", ErrForbiddenAccess, recordID)
		}
	}
	s.signImage(ctx, record)
	return record, nil
}

func (s *handwritingService) Delete(ctx context.Context, recordID, actorID string) error {
	record, err := s.load(ctx, recordID)
	if err != nil {
		return err
	}
	if record.UserID != actorID {
		return fmt.Errorf("%w: only the owner can delete handwriting record '%s'", ErrForbiddenAccess, recordID)
	}
	if err := s.objects.Delete(ctx, record.StoragePath); err != nil {
		s.logger.Warn("Failed to delete handwriting image", zap.String("path", record.StoragePath), zap.Error(err))
	}
	if err := s.repo.Delete(ctx, recordID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: '%s'", ErrHandwritingNotFound, recordID)
		}
		return fmt.Errorf("failed to delete handwriting record '%s': %w", recordID, err)
	}
	return nil
}
