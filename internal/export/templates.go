package export

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"planner-backend-go/internal/models"
)

var documentTemplate = template.Must(template.New("planner").Funcs(template.FuncMap{
	"lines": sectionLines,
	"title": func(s *models.Section) string {
		if s.Title != "" {
			return s.Title
		}
		return strings.ReplaceAll(string(s.Type), "_", " ")
	},
}).Parse(plannerTemplate))

// TemplateDay groups the sections of one date.
type TemplateDay struct {
	Date     string
	Sections []*models.Section
}

// TemplateData holds data for planner template rendering.
type TemplateData struct {
	Title       string
	Description string
	Color       string
	ViewType    string
	Range       string
	Generated   string
	Days        []TemplateDay
}

func buildTemplateData(doc Document) TemplateData {
	data := TemplateData{
		ViewType:  doc.ViewType,
		Generated: doc.GeneratedAt.UTC().Format("Jan 2, 2006 15:04 MST"),
	}
	if doc.Planner != nil {
		data.Title = doc.Planner.Title
		data.Description = doc.Planner.Description
		data.Color = doc.Planner.Color
	}
	switch {
	case doc.StartDate != "" && doc.EndDate != "" && doc.StartDate != doc.EndDate:
		data.Range = doc.StartDate + " to " + doc.EndDate
	case doc.StartDate != "":
		data.Range = doc.StartDate
	}

	// sections arrive ordered by date then order
	for _, s := range doc.Sections {
		if n := len(data.Days); n == 0 || data.Days[n-1].Date != s.Date {
			data.Days = append(data.Days, TemplateDay{Date: s.Date})
		}
		day := &data.Days[len(data.Days)-1]
		day.Sections = append(day.Sections, s)
	}
	return data
}

// RenderHTML renders a planner document as a standalone HTML page.
func RenderHTML(doc Document) (string, error) {
	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, buildTemplateData(doc)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func check(done bool) string {
	if done {
		return "[x] "
	}
	return "[ ] "
}

// sectionLines flattens section content into printable lines.
func sectionLines(content models.SectionContent) []string {
	var out []string
	switch c := content.(type) {
	case models.DailyScheduleContent:
		for _, e := range c.Events {
			line := e.Time + " " + e.Title
			if e.Description != "" {
				line += " - " + e.Description
			}
			out = append(out, line)
		}
	case models.TodoListContent:
		for _, task := range c.Tasks {
			line := check(task.Completed) + task.Text
			if task.Priority != "" {
				line += " (" + task.Priority + ")"
			}
			out = append(out, line)
		}
	case models.PrioritiesContent:
		for i, p := range c.Priorities {
			out = append(out, fmt.Sprintf("%d. %s", i+1, p.Text))
		}
	case models.HabitTrackerContent:
		for _, h := range c.Habits {
			out = append(out, fmt.Sprintf("%s%s (streak %d)", check(h.Completed), h.Name, h.Streak))
		}
	case models.NotesContent:
		if c.Text != "" {
			out = append(out, strings.Split(c.Text, "\n")...)
		}
	case models.GratitudeContent:
		out = append(out, c.Items...)
	case models.MoodTrackerContent:
		if c.Mood != "" {
			out = append(out, "Mood: "+c.Mood)
		}
		if c.Note != "" {
			out = append(out, c.Note)
		}
	case models.ProgressContent:
		for _, p := range c.Items {
			out = append(out, fmt.Sprintf("%s: %g / %g %s", p.Label, p.Current, p.Target, p.Unit))
		}
	case models.GoalsContent:
		for _, group := range []struct {
			label string
			goals []models.Goal
		}{{"Weekly", c.Weekly}, {"Monthly", c.Monthly}, {"Yearly", c.Yearly}} {
			for _, g := range group.goals {
				out = append(out, group.label+": "+check(g.Completed)+g.Text)
			}
		}
	case models.WaterIntakeContent:
		out = append(out, fmt.Sprintf("%d / %d glasses", c.Glasses, c.Target))
	case models.MealPlanningContent:
		for _, meal := range [][2]string{{"Breakfast", c.Breakfast}, {"Lunch", c.Lunch}, {"Dinner", c.Dinner}, {"Snacks", c.Snacks}} {
			if meal[1] != "" {
				out = append(out, meal[0]+": "+meal[1])
			}
		}
	case models.ExpensesContent:
		for _, e := range c.Items {
			out = append(out, fmt.Sprintf("%s: %.2f", e.Description, e.Amount))
		}
		out = append(out, fmt.Sprintf("Total: %.2f", c.Total))
	case models.ReflectionsContent:
		if c.Text != "" {
			out = append(out, strings.Split(c.Text, "\n")...)
		}
	case models.CustomContent:
		for _, f := range c.Fields {
			out = append(out, fmt.Sprintf("%s: %v", f.Label, f.Value))
		}
	}
	return out
}

const plannerTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.5; color: #222; }
    h1 { border-bottom: 3px solid {{if .Color}}{{.Color}}{{else}}#333{{end}}; padding-bottom: 0.4rem; }
    h2 { margin-top: 1.6rem; font-size: 1.2em; }
    .meta { color: #666; font-size: 0.85em; }
    .section { border: 1px solid #ddd; border-radius: 6px; padding: 0.6rem 0.9rem; margin: 0.6rem 0; page-break-inside: avoid; }
    .section h3 { margin: 0 0 0.3rem; font-size: 1em; text-transform: capitalize; }
    .section ul { margin: 0; padding-left: 1.1rem; }
  </style>
</head>
<body>
  <h1>{{.Title}}</h1>
  {{if .Description}}<p>{{.Description}}</p>{{end}}
  <div class="meta">{{.ViewType}} view{{if .Range}} | {{.Range}}{{end}} | generated {{.Generated}}</div>
  {{range .Days}}
  <h2>{{.Date}}</h2>
  {{range .Sections}}
  <div class="section">
    <h3>{{title .}}</h3>
    <ul>{{range lines .Content}}<li>{{.}}</li>{{end}}</ul>
  </div>
  {{end}}
  {{else}}
  <p class="meta">No sections in this period.</p>
  {{end}}
</body>
</html>`
