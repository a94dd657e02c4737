// Package academic classifies calendar dates against academic calendar overrides.
//
// Every function is pure: results depend only on the arguments, so callers may
// evaluate the same date repeatedly (for example once per render pass) without
// coordination.
package academic

import (
	"sort"
	"time"

	"github.com/noah-isme/student-portal-api/internal/models"
)

// displayPriority orders events for "what's happening today" listings. It is not
// the day-state cascade: vacation ranks below exam and override here but
// dominates them in ResolveDay.
var displayPriority = map[models.CalendarEventType]int{
	models.EventTypeHoliday:           100,
	models.EventTypeExam:              90,
	models.EventTypeTimetableOverride: 80,
	models.EventTypeInstituteEvent:    70,
	models.EventTypeRegistration:      60,
	models.EventTypeFeedback:          50,
	models.EventTypeVacation:          40,
	models.EventTypeTeaching:          10,
}

// dayCascade is evaluated in order; the first type active on a date decides its state.
var dayCascade = []struct {
	eventType models.CalendarEventType
	state     models.AcademicDayState
}{
	{models.EventTypeHoliday, models.DayStateHoliday},
	{models.EventTypeVacation, models.DayStateVacation},
	{models.EventTypeExam, models.DayStateExamDay},
	{models.EventTypeTimetableOverride, models.DayStateTimetableOverride},
}

// Day bundles every derived fact about a single calendar date.
type Day struct {
	Date         time.Time
	State        models.AcademicDayState
	TimetableDay int
	Events       []models.CalendarEvent
}

// DisplayPriority returns the listing priority of an event type. Unknown types rank lowest.
func DisplayPriority(eventType models.CalendarEventType) int {
	return displayPriority[eventType]
}

// ResolveDay returns the single day state that applies to date.
// EXAM_BREAK is never produced.
func ResolveDay(date time.Time, events []models.CalendarEvent) models.AcademicDayState {
	state, _ := cascade(activeOn(Normalize(date), events))
	return state
}

// TimetableDay returns the weekday index (0 = Sunday) whose class schedule applies on date.
func TimetableDay(date time.Time, events []models.CalendarEvent) int {
	day := Normalize(date)
	state, override := cascade(activeOn(day, events))
	return timetableDay(day, state, override)
}

// EventsForDate returns the events active on date ordered by display priority, highest first.
// Events with equal priority keep their input order.
func EventsForDate(date time.Time, events []models.CalendarEvent) []models.CalendarEvent {
	return byDisplayPriority(activeOn(Normalize(date), events))
}

// Resolve computes state, timetable day and ordered events for date from one scan of events.
func Resolve(date time.Time, events []models.CalendarEvent) Day {
	day := Normalize(date)
	active := activeOn(day, events)
	state, override := cascade(active)
	return Day{
		Date:         day,
		State:        state,
		TimetableDay: timetableDay(day, state, override),
		Events:       byDisplayPriority(active),
	}
}

// ResolveRange resolves every date in the inclusive range [start, end].
func ResolveRange(start, end time.Time, events []models.CalendarEvent) []Day {
	from := Normalize(start)
	to := Normalize(end)
	if from.After(to) {
		return []Day{}
	}
	days := make([]Day, 0, int(to.Sub(from).Hours()/24)+1)
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		days = append(days, Resolve(day, events))
	}
	return days
}

// Normalize truncates t to its calendar date, read in t's own location, expressed at UTC midnight.
func Normalize(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Contains reports whether the event's inclusive date range covers date.
// An event ending before it starts covers nothing.
func Contains(event models.CalendarEvent, date time.Time) bool {
	start := Normalize(event.StartDate)
	end := Normalize(event.EndDate)
	if end.Before(start) {
		return false
	}
	day := Normalize(date)
	return !day.Before(start) && !day.After(end)
}

func activeOn(day time.Time, events []models.CalendarEvent) []models.CalendarEvent {
	active := make([]models.CalendarEvent, 0, len(events))
	for _, event := range events {
		if Contains(event, day) {
			active = append(active, event)
		}
	}
	return active
}

func cascade(active []models.CalendarEvent) (models.AcademicDayState, *models.CalendarEvent) {
	for _, step := range dayCascade {
		for i := range active {
			if active[i].EventType == step.eventType {
				return step.state, &active[i]
			}
		}
	}
	return models.DayStateNormalTeaching, nil
}

func timetableDay(day time.Time, state models.AcademicDayState, override *models.CalendarEvent) int {
	if state == models.DayStateTimetableOverride && override != nil && override.Metadata.OverrideDayOfWeek != nil {
		if dow := *override.Metadata.OverrideDayOfWeek; dow >= 0 && dow <= 6 {
			return dow
		}
	}
	return int(day.Weekday())
}

// byDisplayPriority sorts active in place; callers pass a slice they own.
func byDisplayPriority(active []models.CalendarEvent) []models.CalendarEvent {
	sort.SliceStable(active, func(i, j int) bool {
		return DisplayPriority(active[i].EventType) > DisplayPriority(active[j].EventType)
	})
	return active
}
