package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SectionContent is the typed payload of a section. Each SectionType has
// exactly one implementation; see NewSectionContent.
type SectionContent interface {
	SectionType() SectionType
}

type ScheduleEvent struct {
	ID          string `json:"id"`
	Time        string `json:"time"` // HH:MM
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Completed   bool   `json:"completed"`
}

type DailyScheduleContent struct {
	Events []ScheduleEvent `json:"events"`
}

type TodoTask struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	Priority  string `json:"priority,omitempty"` // low, medium, high
}

type TodoListContent struct {
	Tasks []TodoTask `json:"tasks"`
}

type PriorityItem struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Order int    `json:"order"`
}

type PrioritiesContent struct {
	Priorities []PriorityItem `json:"priorities"`
}

type Habit struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
	Streak    int    `json:"streak"`
}

type HabitTrackerContent struct {
	Habits []Habit `json:"habits"`
}

type NotesContent struct {
	Text          string `json:"text"`
	HandwritingID string `json:"handwritingId,omitempty"`
}

type GratitudeContent struct {
	Items []string `json:"items"`
}

type MoodTrackerContent struct {
	Mood string `json:"mood,omitempty"` // great, good, okay, bad, terrible
	Note string `json:"note,omitempty"`
}

type ProgressItem struct {
	ID      string  `json:"id"`
	Label   string  `json:"label"`
	Current float64 `json:"current"`
	Target  float64 `json:"target"`
	Unit    string  `json:"unit,omitempty"`
}

type ProgressContent struct {
	Items []ProgressItem `json:"items"`
}

type Goal struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

type GoalsContent struct {
	Weekly  []Goal `json:"weekly"`
	Monthly []Goal `json:"monthly"`
	Yearly  []Goal `json:"yearly"`
}

type WaterIntakeContent struct {
	Glasses int `json:"glasses"`
	Target  int `json:"target"`
}

type MealPlanningContent struct {
	Breakfast string `json:"breakfast"`
	Lunch     string `json:"lunch"`
	Dinner    string `json:"dinner"`
	Snacks    string `json:"snacks"`
}

type Expense struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category,omitempty"`
}

type ExpensesContent struct {
	Items []Expense `json:"items"`
	Total float64   `json:"total"`
}

type ReflectionsContent struct {
	Text string `json:"text"`
}

type CustomField struct {
	ID    string      `json:"id"`
	Type  string      `json:"type"` // text, number, checkbox, date, time
	Label string      `json:"label"`
	Value interface{} `json:"value"`
}

type CustomContent struct {
	Fields []CustomField `json:"fields"`
}

func (DailyScheduleContent) SectionType() SectionType { return SectionDailySchedule }
func (TodoListContent) SectionType() SectionType      { return SectionTodoList }
func (PrioritiesContent) SectionType() SectionType    { return SectionPriorities }
func (HabitTrackerContent) SectionType() SectionType  { return SectionHabitTracker }
func (NotesContent) SectionType() SectionType         { return SectionNotes }
func (GratitudeContent) SectionType() SectionType     { return SectionGratitude }
func (MoodTrackerContent) SectionType() SectionType   { return SectionMoodTracker }
func (ProgressContent) SectionType() SectionType      { return SectionProgress }
func (GoalsContent) SectionType() SectionType         { return SectionGoals }
func (WaterIntakeContent) SectionType() SectionType   { return SectionWaterIntake }
func (MealPlanningContent) SectionType() SectionType  { return SectionMealPlanning }
func (ExpensesContent) SectionType() SectionType      { return SectionExpenses }
func (ReflectionsContent) SectionType() SectionType   { return SectionReflections }
func (CustomContent) SectionType() SectionType        { return SectionCustom }

var (
	moods          = map[string]bool{"great": true, "good": true, "okay": true, "bad": true, "terrible": true}
	priorityLevels = map[string]bool{"low": true, "medium": true, "high": true}
	customTypes    = map[string]bool{"text": true, "number": true, "checkbox": true, "date": true, "time": true}
)

func (c MoodTrackerContent) validate() error {
	if c.Mood != "" && !moods[c.Mood] {
		return fmt.Errorf("mood must be one of great, good, okay, bad, terrible")
	}
	return nil
}

func (c TodoListContent) validate() error {
	for _, task := range c.Tasks {
		if task.Priority != "" && !priorityLevels[task.Priority] {
			return fmt.Errorf("task %q priority must be one of low, medium, high", task.ID)
		}
	}
	return nil
}

func (c CustomContent) validate() error {
	for _, field := range c.Fields {
		if !customTypes[field.Type] {
			return fmt.Errorf("custom field %q type must be one of text, number, checkbox, date, time", field.ID)
		}
	}
	return nil
}

// NewSectionContent returns the empty content value for t.
func NewSectionContent(t SectionType) (SectionContent, error) {
	switch t {
	case SectionDailySchedule:
		return DailyScheduleContent{Events: []ScheduleEvent{}}, nil
	case SectionTodoList:
		return TodoListContent{Tasks: []TodoTask{}}, nil
	case SectionPriorities:
		return PrioritiesContent{Priorities: []PriorityItem{}}, nil
	case SectionHabitTracker:
		return HabitTrackerContent{Habits: []Habit{}}, nil
	case SectionNotes:
		return NotesContent{}, nil
	case SectionGratitude:
		return GratitudeContent{Items: []string{}}, nil
	case SectionMoodTracker:
		return MoodTrackerContent{}, nil
	case SectionProgress:
		return ProgressContent{Items: []ProgressItem{}}, nil
	case SectionGoals:
		return GoalsContent{Weekly: []Goal{}, Monthly: []Goal{}, Yearly: []Goal{}}, nil
	case SectionWaterIntake:
		return WaterIntakeContent{}, nil
	case SectionMealPlanning:
		return MealPlanningContent{}, nil
	case SectionExpenses:
		return ExpensesContent{Items: []Expense{}}, nil
	case SectionReflections:
		return ReflectionsContent{}, nil
	case SectionCustom:
		return CustomContent{Fields: []CustomField{}}, nil
	default:
		return nil, fmt.Errorf("unknown section type %q", t)
	}
}

// DecodeSectionContent decodes raw JSON into the content shape of t and
// validates it. Empty or null input yields the empty content for t.
func DecodeSectionContent(t SectionType, raw []byte) (SectionContent, error) {
	content, err := decodeSectionContent(t, raw)
	if err != nil {
		return nil, err
	}
	if v, ok := content.(interface{ validate() error }); ok {
		if err := v.validate(); err != nil {
			return nil, err
		}
	}
	return content, nil
}

func decodeSectionContent(t SectionType, raw []byte) (SectionContent, error) {
	base, err := NewSectionContent(t)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return base, nil
	}

	var content SectionContent
	switch t {
	case SectionDailySchedule:
		content, err = decodeInto(base.(DailyScheduleContent), trimmed)
	case SectionTodoList:
		content, err = decodeInto(base.(TodoListContent), trimmed)
	case SectionPriorities:
		content, err = decodeInto(base.(PrioritiesContent), trimmed)
	case SectionHabitTracker:
		content, err = decodeInto(base.(HabitTrackerContent), trimmed)
	case SectionNotes:
		content, err = decodeInto(base.(NotesContent), trimmed)
	case SectionGratitude:
		content, err = decodeInto(base.(GratitudeContent), trimmed)
	case SectionMoodTracker:
		content, err = decodeInto(base.(MoodTrackerContent), trimmed)
	case SectionProgress:
		content, err = decodeInto(base.(ProgressContent), trimmed)
	case SectionGoals:
		content, err = decodeInto(base.(GoalsContent), trimmed)
	case SectionWaterIntake:
		content, err = decodeInto(base.(WaterIntakeContent), trimmed)
	case SectionMealPlanning:
		content, err = decodeInto(base.(MealPlanningContent), trimmed)
	case SectionExpenses:
		content, err = decodeInto(base.(ExpensesContent), trimmed)
	case SectionReflections:
		content, err = decodeInto(base.(ReflectionsContent), trimmed)
	case SectionCustom:
		content, err = decodeInto(base.(CustomContent), trimmed)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid %s content: %w", t, err)
	}
	return content, nil
}

func decodeInto[T SectionContent](base T, raw []byte) (SectionContent, error) {
	if err := json.Unmarshal(raw, &base); err != nil {
		return nil, err
	}
	return base, nil
}

// ContentToMap flattens content into the generic map persisted in the document store.
func ContentToMap(c SectionContent) (map[string]interface{}, error) {
	if c == nil {
		return map[string]interface{}{}, nil
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	m := map[string]interface{}{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// ContentFromMap rebuilds typed content from its persisted map form.
// Stored content is not re-validated, so documents written under older
// rules still load.
func ContentFromMap(t SectionType, m map[string]interface{}) (SectionContent, error) {
	if len(m) == 0 {
		return NewSectionContent(t)
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return decodeSectionContent(t, raw)
}
