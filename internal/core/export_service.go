package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"planner-backend-go/internal/db"
	"planner-backend-go/internal/export"
	"planner-backend-go/internal/models"
	"planner-backend-go/internal/workflow"
)

const (
	// DownloadURLTTL is the lifetime of a signed export download URL.
	DownloadURLTTL = time.Hour
	// localRenderTimeout bounds one in-process render plus upload.
	localRenderTimeout = 2 * time.Minute

	staleExportError = "export timed out"
)

// CalendarFile is an iCalendar export returned inline.
type CalendarFile struct {
	ICSContent string `json:"icsContent"`
	Filename   string `json:"filename"`
}

// exportService implements the ExportService interface.
type exportService struct {
	exportRepo  db.ExportRepository
	sectionRepo db.SectionRepository
	guard       *AccessGuard
	activity    ActivityService
	flows       Workflow
	objects     ObjectStore
	// renderer renders in-process when set; otherwise PDFs go to the export workflow.
	renderer   PDFRenderer
	background *BestEffort
	logger     *zap.Logger
	now        func() time.Time
}

// NewExportService creates a new ExportService instance. A nil renderer
// hands PDF rendering to the export workflow.
func NewExportService(
	exportRepo db.ExportRepository,
	sectionRepo db.SectionRepository,
	guard *AccessGuard,
	activity ActivityService,
	flows Workflow,
	objects ObjectStore,
	renderer PDFRenderer,
	background *BestEffort,
	logger *zap.Logger,
) ExportService {
	return &exportService{
		exportRepo:  exportRepo,
		sectionRepo: sectionRepo,
		guard:       guard,
		activity:    activity,
		flows:       flows,
		objects:     objects,
		renderer:    renderer,
		background:  background,
		logger:      logger,
		now:         time.Now,
	}
}

// viewRange expands an anchor date to the dates covered by a view.
func viewRange(date, viewType string) (string, string, error) {
	d, err := models.ParseDate(date)
	if err != nil {
		return "", "", newValidationError("date", "must be a YYYY-MM-DD date")
	}
	var start, end time.Time
	switch viewType {
	case "daily":
		start, end = d, d
	case "weekly":
		start, end = d, d.AddDate(0, 0, 6)
	case "monthly":
		start = time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, -1)
	case "yearly":
		start = time.Date(d.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		end = time.Date(d.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
	default:
		return "", "", newValidationError("viewType", "must be one of daily, weekly, monthly, yearly")
	}
	return start.Format(models.DateLayout), end.Format(models.DateLayout), nil
}

func filterSections(sections []*models.Section, include []string) []*models.Section {
	if len(include) == 0 {
		return sections
	}
	keep := make(map[string]bool, len(include))
	for _, t := range include {
		keep[t] = true
	}
	out := make([]*models.Section, 0, len(sections))
	for _, s := range sections {
		if keep[string(s.Type)] {
			out = append(out, s)
		}
	}
	return out
}

func (s *exportService) ExportPlannerPDF(ctx context.Context, plannerID, actorID string, req models.ExportPDFRequest) (*ExportJob, error) {
	date := req.Date
	if date == "" {
		date = s.now().UTC().Format(models.DateLayout)
	}
	start, end, err := viewRange(date, req.ViewType)
	if err != nil {
		return nil, err
	}
	return s.startPDF(ctx, plannerID, actorID, req.ViewType, start, end, req.IncludeSections,
		fmt.Sprintf("Exported %s view as PDF", req.ViewType))
}

func (s *exportService) ExportDateRangePDF(ctx context.Context, actorID string, req models.ExportDateRangeRequest) (*ExportJob, error) {
	if err := validateRange(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}
	return s.startPDF(ctx, req.PlannerID, actorID, req.ViewType, req.StartDate, req.EndDate, req.IncludeSections,
		"Exported date range as PDF")
}

// startPDF records a pending export and submits it to the configured renderer.
func (s *exportService) startPDF(ctx context.Context, plannerID, actorID, viewType, start, end string, include []string, description string) (*ExportJob, error) {
	planner, err := s.guard.RequirePlanner(ctx, plannerID, actorID, models.PermissionView)
	if err != nil {
		return nil, err
	}
	sections, err := s.sectionRepo.ListInRange(ctx, plannerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load sections for export: %w", err)
	}
	sections = filterSections(sections, include)

	now := s.now().UTC()
	record := &models.ExportRecord{
		UserID:          actorID,
		PlannerID:       plannerID,
		ViewType:        viewType,
		StartDate:       start,
		EndDate:         end,
		IncludeSections: include,
		Status:          models.ExportPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if _, err := s.exportRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create export record: %w", err)
	}

	doc := export.Document{
		Planner:     planner,
		Sections:    sections,
		ViewType:    viewType,
		StartDate:   start,
		EndDate:     end,
		GeneratedAt: now,
	}
	if s.renderer != nil {
		s.setStatus(ctx, record.ID, models.ExportInProgress, nil)
		s.background.Go(ctx, "render_pdf", localRenderTimeout,
			func(ctx context.Context) error { return s.renderLocally(ctx, record, doc) },
			zap.String("export_id", record.ID),
		)
	} else {
		payload := map[string]interface{}{
			"exportId":  record.ID,
			"userId":    actorID,
			"planner":   planner,
			"sections":  sections,
			"startDate": start,
			"endDate":   end,
			"viewType":  viewType,
		}
		if start == end {
			payload["date"] = start
		}
		if err := s.flows.Post(ctx, workflow.WebhookPDFExport, payload, nil); err != nil {
			s.logger.Error("Workflow call failed", zap.String("webhook", workflow.WebhookPDFExport), zap.Error(err))
			s.setStatus(ctx, record.ID, models.ExportFailed, map[string]interface{}{"error": err.Error()})
			return nil, unavailable("PDF export", err)
		}
		s.setStatus(ctx, record.ID, models.ExportInProgress, nil)
	}

	s.activity.Record(ctx, plannerID, actorID, models.ActivityPDFExported, description,
		map[string]interface{}{"exportId": record.ID, "startDate": start, "endDate": end})
	return &ExportJob{ExportID: record.ID, Status: models.ExportInProgress}, nil
}

// setStatus moves an export record forward. Failures are logged; the sweep
// fails records that get stuck.
func (s *exportService) setStatus(ctx context.Context, exportID string, status models.ExportStatus, extra map[string]interface{}) {
	fields := map[string]interface{}{
		"status":    string(status),
		"updatedAt": s.now().UTC(),
	}
	for k, v := range extra {
		fields[k] = v
	}
	if err := s.exportRepo.Update(ctx, exportID, fields); err != nil {
		s.logger.Warn("Failed to update export status",
			zap.String("export_id", exportID),
			zap.String("status", string(status)),
			zap.Error(err),
		)
	}
}

func (s *exportService) renderLocally(ctx context.Context, record *models.ExportRecord, doc export.Document) error {
	result, err := s.renderer.Render(ctx, doc)
	if err == nil {
		path := fmt.Sprintf("exports/%s/%s.pdf", record.UserID, record.ID)
		if err = s.objects.Upload(ctx, path, result.MimeType, result.Data); err == nil {
			s.setStatus(ctx, record.ID, models.ExportCompleted, map[string]interface{}{
				"filePath": path,
				"filename": result.Filename,
			})
			return nil
		}
	}
	s.setStatus(ctx, record.ID, models.ExportFailed, map[string]interface{}{"error": err.Error()})
	return fmt.Errorf("render export '%s': %w", record.ID, err)
}

// ownedExport loads an export visible only to the user who started it.
func (s *exportService) ownedExport(ctx context.Context, exportID, actorID string) (*models.ExportRecord, error) {
	record, err := s.exportRepo.GetByID(ctx, exportID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrExportNotFound, exportID)
		}
		return nil, fmt.Errorf("failed to get export '%s': %w", exportID, err)
	}
	if record.UserID != actorID {
		return nil, fmt.Errorf("%w: '%s'", ErrExportNotFound, exportID)
	}
	return record, nil
}

func (s *exportService) Status(ctx context.Context, exportID, actorID string) (*models.ExportRecord, error) {
	return s.ownedExport(ctx, exportID, actorID)
}

func (s *exportService) Download(ctx context.Context, exportID, actorID string) (*ExportDownload, error) {
	record, err := s.ownedExport(ctx, exportID, actorID)
	if err != nil {
		return nil, err
	}
	if record.Status != models.ExportCompleted || record.FilePath == "" {
		return nil, ErrExportNotReady
	}
	url, err := s.objects.SignedURL(ctx, record.FilePath, DownloadURLTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign download url for export '%s': %w", exportID, err)
	}
	return &ExportDownload{DownloadURL: url, Filename: record.Filename}, nil
}

func (s *exportService) ExportCalendar(ctx context.Context, plannerID, actorID string, req models.CalendarExportRequest) (interface{}, error) {
	if _, err := s.guard.RequirePlanner(ctx, plannerID, actorID, models.PermissionView); err != nil {
		return nil, err
	}
	if err := validateRange(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}
	sections, err := s.sectionRepo.ListInRange(ctx, plannerID, req.StartDate, req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load sections for calendar export: %w", err)
	}
	events, err := export.EventsFromSections(sections)
	if err != nil {
		return nil, newValidationError("events", "%s", err.Error())
	}

	var result interface{}
	switch req.CalendarType {
	case "ics", "apple":
		content, filename := export.BuildICS(events, s.now().UTC())
		result = &CalendarFile{ICSContent: content, Filename: filename}
	case "google":
		var reply interface{}
		if err := s.flows.Post(ctx, workflow.WebhookCalendarSync, map[string]interface{}{
			"userId": actorID,
			"events": events,
		}, &reply); err != nil {
			s.logger.Error("Workflow call failed", zap.String("webhook", workflow.WebhookCalendarSync), zap.Error(err))
			return nil, unavailable("Calendar sync", err)
		}
		result = reply
	default:
		return nil, newValidationError("calendarType", "must be google, apple or ics")
	}

	s.activity.Record(ctx, plannerID, actorID, models.ActivityCalendarExported,
		fmt.Sprintf("Exported to %s calendar", req.CalendarType),
		map[string]interface{}{"events": len(events)})
	return result, nil
}

// FailStale marks pending and in-progress exports created before now-olderThan as failed.
func (s *exportService) FailStale(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := s.now().UTC().Add(-olderThan)
	stale, err := s.exportRepo.ListStale(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list stale exports: %w", err)
	}
	failed := 0
	for _, record := range stale {
		err := s.exportRepo.Update(ctx, record.ID, map[string]interface{}{
			"status":    string(models.ExportFailed),
			"error":     staleExportError,
			"updatedAt": s.now().UTC(),
		})
		if err != nil {
			s.logger.Warn("Failed to fail stale export", zap.String("export_id", record.ID), zap.Error(err))
			continue
		}
		failed++
	}
	return failed, nil
}
