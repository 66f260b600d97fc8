// Package export renders planners to HTML, PDF and iCalendar.
package export

import (
	"errors"
	"time"

	"planner-backend-go/internal/models"
)

// Document is a planner view ready to render.
type Document struct {
	Planner     *models.Planner
	Sections    []*models.Section
	ViewType    string
	StartDate   string
	EndDate     string
	GeneratedAt time.Time
}

// Result contains the export output.
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

var (
	// ErrPDFDependencyMissing indicates no Chromium binary is available.
	ErrPDFDependencyMissing = errors.New("export pdf dependency missing")
	// ErrInvalidEventTime indicates a schedule event with an unparsable time.
	ErrInvalidEventTime = errors.New("invalid event time")
)
