package service

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-portal-api/internal/models"
	appErrors "github.com/noah-isme/student-portal-api/pkg/errors"
)

type fakeEventSource struct {
	events []models.CalendarEvent
	calls  int
	ranges [][2]time.Time
}

func (f *fakeEventSource) ListBetween(ctx context.Context, start, end time.Time) ([]models.CalendarEvent, error) {
	f.calls++
	f.ranges = append(f.ranges, [2]time.Time{start, end})
	return f.events, nil
}

type memoryCache struct {
	store map[string][]byte
	ttls  map[string]time.Duration
}

func newMemoryCache() *memoryCache {
	return &memoryCache{store: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := m.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.store[key] = raw
	m.ttls[key] = ttl
	return nil
}

func academicFixture() []models.CalendarEvent {
	return []models.CalendarEvent{
		{ID: "h1", Title: "Gandhi Jayanti", EventType: models.EventTypeHoliday, StartDate: date(2024, 10, 2), EndDate: date(2024, 10, 2)},
		{ID: "f1", Title: "Course feedback", EventType: models.EventTypeFeedback, StartDate: date(2024, 9, 25), EndDate: date(2024, 10, 10)},
		{ID: "o1", Title: "Monday schedule", EventType: models.EventTypeTimetableOverride, StartDate: date(2024, 11, 5), EndDate: date(2024, 11, 5),
			Metadata: models.CalendarEventMetadata{OverrideDayOfWeek: intPtr(1)}},
	}
}

func newAcademicService(source *fakeEventSource, cache academicDayCache) *AcademicDayService {
	return NewAcademicDayService(AcademicDayServiceParams{
		Events: source,
		Cache:  cache,
		Config: AcademicDayConfig{CacheTTL: time.Minute, MaxRangeDays: 62},
	})
}

func TestAcademicDayServiceDayHoliday(t *testing.T) {
	source := &fakeEventSource{events: academicFixture()}
	svc := newAcademicService(source, nil)

	day, hit, err := svc.Day(context.Background(), time.Date(2024, 10, 2, 15, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "2024-10-02", day.Date)
	assert.Equal(t, "Wednesday", day.Weekday)
	assert.Equal(t, string(models.DayStateHoliday), day.State)
	assert.True(t, day.ClassesSuspended)
	require.Len(t, day.Events, 2)
	assert.Equal(t, "h1", day.Events[0].ID)
	assert.Equal(t, 100, day.Events[0].Priority)
	assert.Equal(t, "f1", day.Events[1].ID)
	assert.Equal(t, [2]time.Time{date(2024, 10, 2), date(2024, 10, 2)}, source.ranges[0])
}

func TestAcademicDayServiceDayOverride(t *testing.T) {
	svc := newAcademicService(&fakeEventSource{events: academicFixture()}, nil)

	day, _, err := svc.Day(context.Background(), date(2024, 11, 5))
	require.NoError(t, err)
	assert.Equal(t, string(models.DayStateTimetableOverride), day.State)
	assert.Equal(t, 1, day.TimetableDay)
	assert.Equal(t, "Monday", day.TimetableWeekday)
	assert.Equal(t, "Tuesday", day.Weekday)
	assert.False(t, day.ClassesSuspended)
}

func TestAcademicDayServiceDayUsesCache(t *testing.T) {
	source := &fakeEventSource{events: academicFixture()}
	cache := newMemoryCache()
	svc := newAcademicService(source, cache)

	first, hit, err := svc.Day(context.Background(), date(2024, 10, 2))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, time.Minute, cache.ttls["academic:day:2024-10-02"])

	second, hit, err := svc.Day(context.Background(), date(2024, 10, 2))
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, source.calls)
}

func TestAcademicDayServiceNilCacheServiceIsMiss(t *testing.T) {
	var cache *CacheService
	source := &fakeEventSource{}
	svc := newAcademicService(source, cache)

	_, hit, err := svc.Day(context.Background(), date(2024, 10, 3))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 1, source.calls)
}

func TestAcademicDayServiceTodayUsesCampusTimezone(t *testing.T) {
	wib := time.FixedZone("WIB", 7*60*60)
	source := &fakeEventSource{events: academicFixture()}
	svc := NewAcademicDayService(AcademicDayServiceParams{Events: source, Config: AcademicDayConfig{Location: wib}})
	svc.now = func() time.Time { return time.Date(2024, 10, 1, 18, 30, 0, 0, time.UTC) }

	day, _, err := svc.Today(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-10-02", day.Date)
	assert.Equal(t, string(models.DayStateHoliday), day.State)
}

func TestAcademicDayServiceRange(t *testing.T) {
	svc := newAcademicService(&fakeEventSource{events: academicFixture()}, nil)

	days, err := svc.Range(context.Background(), date(2024, 10, 1), date(2024, 10, 3))
	require.NoError(t, err)
	require.Len(t, days, 3)
	assert.Equal(t, []string{"2024-10-01", "2024-10-02", "2024-10-03"}, []string{days[0].Date, days[1].Date, days[2].Date})
	assert.Equal(t, string(models.DayStateNormalTeaching), days[0].State)
	assert.Equal(t, string(models.DayStateHoliday), days[1].State)
}

func TestAcademicDayServiceRangeLimits(t *testing.T) {
	svc := newAcademicService(&fakeEventSource{}, nil)

	_, err := svc.Range(context.Background(), date(2024, 10, 3), date(2024, 10, 1))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Range(context.Background(), date(2024, 1, 1), date(2024, 3, 3))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrRangeTooLarge.Code, appErrors.FromError(err).Code)

	days, err := svc.Range(context.Background(), date(2024, 1, 1), date(2024, 3, 2))
	require.NoError(t, err)
	assert.Len(t, days, 62)
}

func TestAcademicDayServiceExportCSV(t *testing.T) {
	svc := newAcademicService(&fakeEventSource{events: academicFixture()}, nil)

	file, err := svc.Export(context.Background(), date(2024, 10, 1), date(2024, 10, 2), "csv")
	require.NoError(t, err)
	assert.Equal(t, "academic-calendar_2024-10-01_2024-10-02.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)
	lines := strings.Split(strings.TrimSpace(string(file.Data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "date,weekday,state,timetable_day,events", lines[0])
	assert.Equal(t, "2024-10-02,Wednesday,HOLIDAY,Wednesday,Gandhi Jayanti; Course feedback", lines[2])
}

func TestAcademicDayServiceExportPDF(t *testing.T) {
	svc := newAcademicService(&fakeEventSource{events: academicFixture()}, nil)

	file, err := svc.Export(context.Background(), date(2024, 10, 1), date(2024, 10, 7), "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF")))
}

func TestAcademicDayServiceExportRejectsFormat(t *testing.T) {
	source := &fakeEventSource{}
	svc := newAcademicService(source, nil)

	_, err := svc.Export(context.Background(), date(2024, 10, 1), date(2024, 10, 2), "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Zero(t, source.calls)
}

func TestAcademicDayCacheKey(t *testing.T) {
	assert.Equal(t, "academic:day:2024-11-05", AcademicDayCacheKey(time.Date(2024, 11, 5, 23, 59, 0, 0, time.UTC)))
}
