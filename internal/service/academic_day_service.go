package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/student-portal-api/internal/academic"
	"github.com/noah-isme/student-portal-api/internal/dto"
	"github.com/noah-isme/student-portal-api/internal/models"
	appErrors "github.com/noah-isme/student-portal-api/pkg/errors"
	"github.com/noah-isme/student-portal-api/pkg/export"
)

const dateLayout = "2006-01-02"

type academicEventSource interface {
	ListBetween(ctx context.Context, start, end time.Time) ([]models.CalendarEvent, error)
}

type academicDayCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type calendarRenderer interface {
	Render(format export.Format, data export.Dataset, title string) ([]byte, error)
}

// AcademicDayConfig tunes academic day resolution.
type AcademicDayConfig struct {
	Location     *time.Location
	MaxRangeDays int
	CacheTTL     time.Duration
}

// AcademicDayServiceParams groups constructor dependencies.
type AcademicDayServiceParams struct {
	Events   academicEventSource
	Cache    academicDayCache
	Renderer calendarRenderer
	Metrics  *MetricsService
	Logger   *zap.Logger
	Config   AcademicDayConfig
}

// AcademicDayService answers "what kind of day is it" for single dates and ranges.
type AcademicDayService struct {
	events   academicEventSource
	cache    academicDayCache
	renderer calendarRenderer
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
	cfg      AcademicDayConfig
}

// CalendarExport is a rendered calendar download.
type CalendarExport struct {
	Filename    string
	ContentType string
	Data        []byte
}

// NewAcademicDayService constructs the service.
func NewAcademicDayService(params AcademicDayServiceParams) *AcademicDayService {
	cfg := params.Config
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.MaxRangeDays <= 0 {
		cfg.MaxRangeDays = 62
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	renderer := params.Renderer
	if renderer == nil {
		renderer = export.NewRenderer()
	}
	return &AcademicDayService{
		events:   params.Events,
		cache:    params.Cache,
		renderer: renderer,
		metrics:  params.Metrics,
		logger:   logger,
		now:      time.Now,
		cfg:      cfg,
	}
}

// AcademicDayCacheKey returns the cache key of a single resolved date.
func AcademicDayCacheKey(date time.Time) string {
	return "academic:day:" + academic.Normalize(date).Format(dateLayout)
}

// Day resolves a single date. The boolean reports a cache hit.
func (s *AcademicDayService) Day(ctx context.Context, date time.Time) (*dto.AcademicDay, bool, error) {
	day := academic.Normalize(date)
	key := AcademicDayCacheKey(day)
	if s.cache != nil {
		var cached dto.AcademicDay
		hit, err := s.cache.Get(ctx, key, &cached)
		if err == nil && hit {
			return &cached, true, nil
		}
	}

	events, err := s.events.ListBetween(ctx, day, day)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load calendar events")
	}
	view := academicDayView(academic.Resolve(day, events))
	s.metrics.RecordAcademicDay(models.AcademicDayState(view.State))

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, view, s.cfg.CacheTTL); err != nil {
			s.logger.Debug("academic day not cached", zap.String("key", key), zap.Error(err))
		}
	}
	return &view, false, nil
}

// Today resolves the current civil date in the configured campus timezone.
func (s *AcademicDayService) Today(ctx context.Context) (*dto.AcademicDay, bool, error) {
	return s.Day(ctx, s.now().In(s.cfg.Location))
}

// Range resolves every date from start to end inclusive.
func (s *AcademicDayService) Range(ctx context.Context, start, end time.Time) ([]dto.AcademicDay, error) {
	from, to, err := s.checkRange(start, end)
	if err != nil {
		return nil, err
	}
	events, err := s.events.ListBetween(ctx, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load calendar events")
	}
	days := academic.ResolveRange(from, to, events)
	views := make([]dto.AcademicDay, 0, len(days))
	for _, day := range days {
		views = append(views, academicDayView(day))
	}
	return views, nil
}

// Export renders the resolved range as a CSV or PDF download.
func (s *AcademicDayService) Export(ctx context.Context, start, end time.Time, rawFormat string) (*CalendarExport, error) {
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	days, err := s.Range(ctx, start, end)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{Headers: []string{"date", "weekday", "state", "timetable_day", "events"}}
	for _, day := range days {
		titles := make([]string, 0, len(day.Events))
		for _, event := range day.Events {
			titles = append(titles, event.Title)
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"date":          day.Date,
			"weekday":       day.Weekday,
			"state":         day.State,
			"timetable_day": day.TimetableWeekday,
			"events":        strings.Join(titles, "; "),
		})
	}

	from := academic.Normalize(start).Format(dateLayout)
	to := academic.Normalize(end).Format(dateLayout)
	payload, err := s.renderer.Render(format, dataset, fmt.Sprintf("Academic calendar %s to %s", from, to))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render calendar export")
	}
	return &CalendarExport{
		Filename:    fmt.Sprintf("academic-calendar_%s_%s.%s", from, to, format.Extension()),
		ContentType: format.ContentType(),
		Data:        payload,
	}, nil
}

func (s *AcademicDayService) checkRange(start, end time.Time) (time.Time, time.Time, error) {
	from := academic.Normalize(start)
	to := academic.Normalize(end)
	if to.Before(from) {
		return from, to, appErrors.Clone(appErrors.ErrValidation, "end_date must be on or after start_date")
	}
	days := int(to.Sub(from).Hours()/24) + 1
	if days > s.cfg.MaxRangeDays {
		return from, to, appErrors.Clone(appErrors.ErrRangeTooLarge, fmt.Sprintf("range spans %d days, maximum is %d", days, s.cfg.MaxRangeDays))
	}
	return from, to, nil
}

func academicDayView(day academic.Day) dto.AcademicDay {
	events := make([]dto.AcademicDayEvent, 0, len(day.Events))
	for _, event := range day.Events {
		events = append(events, dto.AcademicDayEvent{
			ID:          event.ID,
			Title:       event.Title,
			Description: event.Description,
			Type:        string(event.EventType),
			StartDate:   event.StartDate.Format(dateLayout),
			EndDate:     event.EndDate.Format(dateLayout),
			Priority:    academic.DisplayPriority(event.EventType),
		})
	}
	return dto.AcademicDay{
		Date:             day.Date.Format(dateLayout),
		Weekday:          day.Date.Weekday().String(),
		State:            string(day.State),
		TimetableDay:     day.TimetableDay,
		TimetableWeekday: time.Weekday(day.TimetableDay).String(),
		ClassesSuspended: day.State.SuspendsClasses(),
		Events:           events,
	}
}
