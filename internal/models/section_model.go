package models

import (
	"time"
)

// SectionType selects the content shape of a section.
type SectionType string

const (
	SectionDailySchedule SectionType = "daily_schedule"
	SectionTodoList      SectionType = "todo_list"
	SectionPriorities    SectionType = "priorities"
	SectionHabitTracker  SectionType = "habit_tracker"
	SectionNotes         SectionType = "notes"
	SectionGratitude     SectionType = "gratitude"
	SectionMoodTracker   SectionType = "mood_tracker"
	SectionProgress      SectionType = "progress"
	SectionGoals         SectionType = "goals"
	SectionWaterIntake   SectionType = "water_intake"
	SectionMealPlanning  SectionType = "meal_planning"
	SectionExpenses      SectionType = "expenses"
	SectionReflections   SectionType = "reflections"
	SectionCustom        SectionType = "custom"
)

// AllSectionTypes lists every section type in display order.
var AllSectionTypes = []SectionType{
	SectionDailySchedule,
	SectionTodoList,
	SectionPriorities,
	SectionHabitTracker,
	SectionNotes,
	SectionGratitude,
	SectionMoodTracker,
	SectionProgress,
	SectionGoals,
	SectionWaterIntake,
	SectionMealPlanning,
	SectionExpenses,
	SectionReflections,
	SectionCustom,
}

// Valid reports whether t is a known section type.
func (t SectionType) Valid() bool {
	for _, known := range AllSectionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Section is one typed block of a planner on a given date.
// Order is only meaningful among sections sharing (PlannerID, Date).
type Section struct {
	ID          string         `json:"id"`
	PlannerID   string         `json:"plannerId"`
	Date        string         `json:"date"` // YYYY-MM-DD
	Type        SectionType    `json:"type"`
	Title       string         `json:"title"`
	Content     SectionContent `json:"content"`
	Order       int            `json:"order"`
	IsCollapsed bool           `json:"isCollapsed"`
	CreatedBy   string         `json:"createdBy"`
	UpdatedBy   string         `json:"updatedBy,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// DateLayout is the calendar date format used for section dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
