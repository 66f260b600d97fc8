package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"planner-backend-go/internal/models"
)

// EventDuration is the length given to every exported schedule event.
const EventDuration = 60 * time.Minute

const icsTimeLayout = "20060102T150405Z"

// CalendarEvent is one schedule entry converted for calendar export.
type CalendarEvent struct {
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	TimeZone    string    `json:"timeZone"`
}

// EventsFromSections converts daily schedule sections to UTC calendar events.
// Sections of other types are skipped, as are events without a time.
func EventsFromSections(sections []*models.Section) ([]CalendarEvent, error) {
	var events []CalendarEvent
	for _, s := range sections {
		schedule, ok := s.Content.(models.DailyScheduleContent)
		if !ok {
			continue
		}
		for _, e := range schedule.Events {
			if e.Time == "" {
				continue
			}
			start, err := time.ParseInLocation(models.DateLayout+" 15:04", s.Date+" "+e.Time, time.UTC)
			if err != nil {
				return nil, fmt.Errorf("%w: %q on %s", ErrInvalidEventTime, e.Time, s.Date)
			}
			events = append(events, CalendarEvent{
				Summary:     e.Title,
				Description: e.Description,
				Start:       start,
				End:         start.Add(EventDuration),
				TimeZone:    "UTC",
			})
		}
	}
	return events, nil
}

// icsEscape escapes TEXT values per RFC 5545.
func icsEscape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\r\n", `\n`, "\n", `\n`)
	return r.Replace(s)
}

// BuildICS renders events as an iCalendar file and names it after now.
func BuildICS(events []CalendarEvent, now time.Time) (content, filename string) {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//AI Planner//Calendar Export//EN",
		"CALSCALE:GREGORIAN",
	}
	for _, e := range events {
		lines = append(lines,
			"BEGIN:VEVENT",
			"DTSTART:"+e.Start.UTC().Format(icsTimeLayout),
			"DTEND:"+e.End.UTC().Format(icsTimeLayout),
			"SUMMARY:"+icsEscape(e.Summary),
		)
		if e.Description != "" {
			lines = append(lines, "DESCRIPTION:"+icsEscape(e.Description))
		}
		lines = append(lines,
			"UID:"+uuid.NewString()+"@aiplanner.com",
			"END:VEVENT",
		)
	}
	lines = append(lines, "END:VCALENDAR")

	return strings.Join(lines, "\r\n"), fmt.Sprintf("ai-planner-export-%d.ics", now.UnixMilli())
}
