package academic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-portal-api/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func event(id string, eventType models.CalendarEventType, start, end time.Time) models.CalendarEvent {
	return models.CalendarEvent{ID: id, EventType: eventType, StartDate: start, EndDate: end}
}

func override(id string, start, end time.Time, dow *int) models.CalendarEvent {
	ev := event(id, models.EventTypeTimetableOverride, start, end)
	ev.Metadata.OverrideDayOfWeek = dow
	return ev
}

func intPtr(v int) *int { return &v }

func TestResolveDayEmptyEvents(t *testing.T) {
	for i := 0; i < 14; i++ {
		d := date(2024, 9, 1).AddDate(0, 0, i)
		assert.Equal(t, models.DayStateNormalTeaching, ResolveDay(d, nil))
		assert.Equal(t, int(d.Weekday()), TimetableDay(d, nil))
		assert.Empty(t, EventsForDate(d, nil))
	}
}

func TestResolveDaySingleHoliday(t *testing.T) {
	events := []models.CalendarEvent{event("gandhi", models.EventTypeHoliday, date(2024, 10, 2), date(2024, 10, 2))}

	assert.Equal(t, models.DayStateHoliday, ResolveDay(date(2024, 10, 2), events))
	assert.Equal(t, models.DayStateNormalTeaching, ResolveDay(date(2024, 10, 3), events))
	assert.Equal(t, models.DayStateNormalTeaching, ResolveDay(date(2024, 10, 1), events))
}

func TestResolveDayHolidayDominatesEverything(t *testing.T) {
	day := date(2024, 12, 25)
	others := []models.CalendarEventType{
		models.EventTypeVacation,
		models.EventTypeExam,
		models.EventTypeTimetableOverride,
		models.EventTypeInstituteEvent,
		models.EventTypeRegistration,
		models.EventTypeFeedback,
		models.EventTypeTeaching,
	}
	for _, other := range others {
		t.Run(string(other), func(t *testing.T) {
			events := []models.CalendarEvent{
				event("other", other, day.AddDate(0, 0, -3), day.AddDate(0, 0, 3)),
				event("xmas", models.EventTypeHoliday, day, day),
			}
			assert.Equal(t, models.DayStateHoliday, ResolveDay(day, events))
		})
	}
}

func TestResolveDayCascadeOrder(t *testing.T) {
	day := date(2024, 6, 12)
	span := func(id string, eventType models.CalendarEventType) models.CalendarEvent {
		return event(id, eventType, day, day)
	}

	tests := []struct {
		name   string
		events []models.CalendarEvent
		want   models.AcademicDayState
	}{
		{"vacation beats exam", []models.CalendarEvent{span("e", models.EventTypeExam), span("v", models.EventTypeVacation)}, models.DayStateVacation},
		{"vacation beats override", []models.CalendarEvent{override("o", day, day, intPtr(1)), span("v", models.EventTypeVacation)}, models.DayStateVacation},
		{"exam beats override", []models.CalendarEvent{override("o", day, day, intPtr(1)), span("e", models.EventTypeExam)}, models.DayStateExamDay},
		{"override alone", []models.CalendarEvent{override("o", day, day, intPtr(1))}, models.DayStateTimetableOverride},
		{"non-blocking types are normal", []models.CalendarEvent{
			span("i", models.EventTypeInstituteEvent),
			span("r", models.EventTypeRegistration),
			span("f", models.EventTypeFeedback),
			span("t", models.EventTypeTeaching),
		}, models.DayStateNormalTeaching},
		{"unknown type is ignored", []models.CalendarEvent{span("x", models.CalendarEventType("sports_day"))}, models.DayStateNormalTeaching},
		{"duplicates do not change outcome", []models.CalendarEvent{span("e1", models.EventTypeExam), span("e2", models.EventTypeExam)}, models.DayStateExamDay},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveDay(day, tc.events))
		})
	}
}

func TestResolveDayNeverReturnsExamBreak(t *testing.T) {
	events := []models.CalendarEvent{
		event("mid-1", models.EventTypeExam, date(2024, 3, 4), date(2024, 3, 6)),
		event("mid-2", models.EventTypeExam, date(2024, 3, 8), date(2024, 3, 9)),
	}
	for _, d := range []time.Time{date(2024, 3, 5), date(2024, 3, 7), date(2024, 3, 8)} {
		assert.NotEqual(t, models.DayStateExamBreak, ResolveDay(d, events))
	}
	assert.Equal(t, models.DayStateNormalTeaching, ResolveDay(date(2024, 3, 7), events))
}

func TestResolveDayIgnoresTimeOfDay(t *testing.T) {
	events := []models.CalendarEvent{
		event("exam", models.EventTypeExam, time.Date(2024, 5, 20, 9, 30, 0, 0, time.UTC), time.Date(2024, 5, 21, 8, 0, 0, 0, time.UTC)),
	}
	assert.Equal(t, models.DayStateExamDay, ResolveDay(time.Date(2024, 5, 21, 23, 59, 0, 0, time.UTC), events))
	assert.Equal(t, models.DayStateExamDay, ResolveDay(time.Date(2024, 5, 20, 0, 0, 1, 0, time.UTC), events))
	assert.Equal(t, models.DayStateNormalTeaching, ResolveDay(time.Date(2024, 5, 22, 0, 0, 0, 0, time.UTC), events))
}

func TestResolveDayUsesCalendarDateOfQueryLocation(t *testing.T) {
	wib := time.FixedZone("WIB", 7*60*60)
	events := []models.CalendarEvent{event("holiday", models.EventTypeHoliday, date(2024, 8, 17), date(2024, 8, 17))}

	// 17 Aug 01:00 in UTC+7 is still 16 Aug in UTC; the local calendar date wins.
	local := time.Date(2024, 8, 17, 1, 0, 0, 0, wib)
	assert.Equal(t, models.DayStateHoliday, ResolveDay(local, events))
}

func TestResolveDayIgnoresInvertedRange(t *testing.T) {
	events := []models.CalendarEvent{event("broken", models.EventTypeHoliday, date(2024, 4, 10), date(2024, 4, 5))}
	for d := date(2024, 4, 4); !d.After(date(2024, 4, 11)); d = d.AddDate(0, 0, 1) {
		assert.Equal(t, models.DayStateNormalTeaching, ResolveDay(d, events))
		assert.Empty(t, EventsForDate(d, events))
	}
}

func TestResolveDayIsDeterministic(t *testing.T) {
	day := date(2024, 11, 5)
	events := []models.CalendarEvent{
		override("o", day, day, intPtr(1)),
		event("r", models.EventTypeRegistration, day.AddDate(0, 0, -1), day.AddDate(0, 0, 1)),
	}
	first := Resolve(day, events)
	second := Resolve(day, events)
	assert.Equal(t, first, second)
	assert.Equal(t, ResolveDay(day, events), ResolveDay(day, events))
}

func TestTimetableDayOverride(t *testing.T) {
	// 2024-11-05 is a Tuesday following Monday's schedule.
	day := date(2024, 11, 5)
	require.Equal(t, time.Tuesday, day.Weekday())
	events := []models.CalendarEvent{override("swap", day, day, intPtr(1))}

	assert.Equal(t, 1, TimetableDay(day, events))
	assert.Equal(t, int(time.Wednesday), TimetableDay(day.AddDate(0, 0, 1), events))
}

func TestTimetableDayOverrideIndependentOfWeekday(t *testing.T) {
	start := date(2024, 7, 1)
	end := date(2024, 7, 7)
	events := []models.CalendarEvent{override("week", start, end, intPtr(3))}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		assert.Equal(t, 3, TimetableDay(d, events), d.Weekday().String())
	}
}

func TestTimetableDayOverrideWithoutDayFallsBack(t *testing.T) {
	day := date(2024, 11, 5)
	events := []models.CalendarEvent{override("swap", day, day, nil)}

	assert.Equal(t, models.DayStateTimetableOverride, ResolveDay(day, events))
	assert.NotPanics(t, func() { TimetableDay(day, events) })
	assert.Equal(t, int(time.Tuesday), TimetableDay(day, events))
}

func TestTimetableDayUsesFirstActiveOverride(t *testing.T) {
	day := date(2024, 11, 5)
	events := []models.CalendarEvent{
		override("past", day.AddDate(0, 0, -7), day.AddDate(0, 0, -7), intPtr(5)),
		override("first", day, day, intPtr(4)),
		override("second", day, day, intPtr(2)),
	}
	assert.Equal(t, 4, TimetableDay(day, events))
}

func TestTimetableDayIgnoresOverrideOnBlockedDays(t *testing.T) {
	day := date(2024, 11, 5)
	events := []models.CalendarEvent{
		override("swap", day, day, intPtr(1)),
		event("exam", models.EventTypeExam, day, day),
	}
	assert.Equal(t, models.DayStateExamDay, ResolveDay(day, events))
	assert.Equal(t, int(time.Tuesday), TimetableDay(day, events))
}

func TestEventsForDateDisplayOrder(t *testing.T) {
	day := date(2025, 1, 15)
	events := []models.CalendarEvent{
		event("teach", models.EventTypeTeaching, day, day),
		event("vac", models.EventTypeVacation, day, day),
		event("unknown", models.CalendarEventType("club_fair"), day, day),
		event("feedback", models.EventTypeFeedback, day, day),
		event("exam", models.EventTypeExam, day, day),
		event("reg", models.EventTypeRegistration, day, day),
		override("override", day, day, intPtr(2)),
		event("inst", models.EventTypeInstituteEvent, day, day),
		event("hol", models.EventTypeHoliday, day, day),
		event("elsewhere", models.EventTypeHoliday, day.AddDate(0, 0, 1), day.AddDate(0, 0, 1)),
	}

	got := EventsForDate(day, events)
	ids := make([]string, len(got))
	for i, ev := range got {
		ids[i] = ev.ID
	}
	assert.Equal(t, []string{"hol", "exam", "override", "inst", "reg", "feedback", "vac", "teach", "unknown"}, ids)
}

func TestEventsForDateDisagreesWithCascadeOnVacation(t *testing.T) {
	day := date(2025, 6, 2)
	events := []models.CalendarEvent{
		event("vac", models.EventTypeVacation, day, day),
		event("exam", models.EventTypeExam, day, day),
	}
	assert.Equal(t, models.DayStateVacation, ResolveDay(day, events))
	listed := EventsForDate(day, events)
	require.Len(t, listed, 2)
	assert.Equal(t, "exam", listed[0].ID)
	assert.Equal(t, "vac", listed[1].ID)
}

func TestEventsForDateStableForEqualPriority(t *testing.T) {
	day := date(2025, 2, 3)
	events := []models.CalendarEvent{
		event("a", models.EventTypeRegistration, day, day),
		event("b", models.EventTypeRegistration, day, day),
		event("c", models.EventTypeRegistration, day, day),
	}
	got := EventsForDate(day, events)
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
	assert.Equal(t, "c", got[2].ID)
}

func TestEventsForDateDoesNotMutateInput(t *testing.T) {
	day := date(2025, 2, 3)
	events := []models.CalendarEvent{
		event("low", models.EventTypeTeaching, day, day),
		event("high", models.EventTypeHoliday, day, day),
	}
	_ = EventsForDate(day, events)
	assert.Equal(t, "low", events[0].ID)
	assert.Equal(t, "high", events[1].ID)
}

func TestResolveRange(t *testing.T) {
	events := []models.CalendarEvent{
		event("break", models.EventTypeVacation, date(2024, 12, 23), date(2024, 12, 31)),
		event("ny", models.EventTypeHoliday, date(2025, 1, 1), date(2025, 1, 1)),
	}
	days := ResolveRange(date(2024, 12, 30), date(2025, 1, 2), events)
	require.Len(t, days, 4)
	assert.Equal(t, models.DayStateVacation, days[0].State)
	assert.Equal(t, models.DayStateVacation, days[1].State)
	assert.Equal(t, models.DayStateHoliday, days[2].State)
	assert.Equal(t, models.DayStateNormalTeaching, days[3].State)
	assert.Equal(t, date(2025, 1, 2), days[3].Date)
	assert.Equal(t, int(time.Thursday), days[3].TimetableDay)
}

func TestResolveAgreesWithSingleOperations(t *testing.T) {
	events := []models.CalendarEvent{
		event("fb", models.EventTypeFeedback, date(2024, 11, 1), date(2024, 11, 10)),
		override("swap", date(2024, 11, 5), date(2024, 11, 5), intPtr(1)),
		event("exam", models.EventTypeExam, date(2024, 11, 7), date(2024, 11, 8)),
		event("hol", models.EventTypeHoliday, date(2024, 11, 8), date(2024, 11, 8)),
		override("bare", date(2024, 11, 9), date(2024, 11, 9), nil),
	}
	for day := date(2024, 11, 4); !day.After(date(2024, 11, 11)); day = day.AddDate(0, 0, 1) {
		resolved := Resolve(day, events)
		assert.Equal(t, ResolveDay(day, events), resolved.State, day.Format("2006-01-02"))
		assert.Equal(t, TimetableDay(day, events), resolved.TimetableDay, day.Format("2006-01-02"))
		assert.Equal(t, EventsForDate(day, events), resolved.Events, day.Format("2006-01-02"))
	}

	swap := Resolve(date(2024, 11, 5), events)
	assert.Equal(t, models.DayStateTimetableOverride, swap.State)
	assert.Equal(t, 1, swap.TimetableDay)
	require.Len(t, swap.Events, 2)
	assert.Equal(t, "swap", swap.Events[0].ID)
}

func TestResolveRangeInverted(t *testing.T) {
	assert.Empty(t, ResolveRange(date(2025, 1, 2), date(2025, 1, 1), nil))
}

func TestDisplayPriorityUnknownIsLowest(t *testing.T) {
	assert.Equal(t, 0, DisplayPriority("mystery"))
	for _, known := range models.CalendarEventTypes {
		assert.Greater(t, DisplayPriority(known), DisplayPriority("mystery"))
	}
}
