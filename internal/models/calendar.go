package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// CalendarEventType classifies an academic calendar entry.
type CalendarEventType string

const (
	EventTypeHoliday           CalendarEventType = "holiday"
	EventTypeVacation          CalendarEventType = "vacation"
	EventTypeExam              CalendarEventType = "exam"
	EventTypeTimetableOverride CalendarEventType = "timetable_override"
	EventTypeInstituteEvent    CalendarEventType = "institute_event"
	EventTypeRegistration      CalendarEventType = "registration"
	EventTypeFeedback          CalendarEventType = "feedback"
	EventTypeTeaching          CalendarEventType = "teaching"
)

// CalendarEventTypes lists every type accepted by the calendar admin API.
var CalendarEventTypes = []CalendarEventType{
	EventTypeHoliday,
	EventTypeVacation,
	EventTypeExam,
	EventTypeTimetableOverride,
	EventTypeInstituteEvent,
	EventTypeRegistration,
	EventTypeFeedback,
	EventTypeTeaching,
}

// Valid reports whether the type is one of the known calendar event types.
func (t CalendarEventType) Valid() bool {
	for _, known := range CalendarEventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// AcademicDayState is the derived classification of a single date.
type AcademicDayState string

const (
	DayStateHoliday           AcademicDayState = "HOLIDAY"
	DayStateVacation          AcademicDayState = "VACATION"
	DayStateExamDay           AcademicDayState = "EXAM_DAY"
	DayStateExamBreak         AcademicDayState = "EXAM_BREAK"
	DayStateTimetableOverride AcademicDayState = "TIMETABLE_OVERRIDE_DAY"
	DayStateNormalTeaching    AcademicDayState = "NORMAL_TEACHING_DAY"
)

// SuspendsClasses reports whether no regular classes are held on a day in this state.
func (s AcademicDayState) SuspendsClasses() bool {
	switch s {
	case DayStateHoliday, DayStateVacation, DayStateExamDay, DayStateExamBreak:
		return true
	default:
		return false
	}
}

// CalendarEventMetadata carries type specific attributes stored as JSONB.
type CalendarEventMetadata struct {
	OverrideDayOfWeek *int `json:"overrideDayOfWeek,omitempty"`
}

// Value implements driver.Valuer.
func (m CalendarEventMetadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *CalendarEventMetadata) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*m = CalendarEventMetadata{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported metadata type %T", src)
	}
	if len(raw) == 0 {
		*m = CalendarEventMetadata{}
		return nil
	}
	return json.Unmarshal(raw, m)
}

// CalendarEvent represents an academic calendar override spanning an inclusive date range.
type CalendarEvent struct {
	ID          string                `db:"id" json:"id"`
	Title       string                `db:"title" json:"title"`
	Description string                `db:"description" json:"description"`
	EventType   CalendarEventType     `db:"event_type" json:"event_type"`
	StartDate   time.Time             `db:"start_date" json:"start_date"`
	EndDate     time.Time             `db:"end_date" json:"end_date"`
	Metadata    CalendarEventMetadata `db:"metadata" json:"metadata"`
	CreatedBy   string                `db:"created_by" json:"created_by"`
	CreatedAt   time.Time             `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time             `db:"updated_at" json:"updated_at"`
}

// CalendarFilter narrows down events.
type CalendarFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	EventTypes []CalendarEventType
	Page       int
	PageSize   int
}
