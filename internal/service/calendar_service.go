package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/student-portal-api/internal/academic"
	"github.com/noah-isme/student-portal-api/internal/models"
	appErrors "github.com/noah-isme/student-portal-api/pkg/errors"
)

type calendarRepository interface {
	List(ctx context.Context, filter models.CalendarFilter) ([]models.CalendarEvent, int, error)
	GetByID(ctx context.Context, id string) (*models.CalendarEvent, error)
	Create(ctx context.Context, event *models.CalendarEvent) error
	Update(ctx context.Context, event *models.CalendarEvent) error
	Delete(ctx context.Context, id string) error
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string)
}

// CalendarService manages academic calendar events.
type CalendarService struct {
	repo        calendarRepository
	invalidator cacheInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCalendarService constructs the service. invalidator may be nil when caching is off.
func NewCalendarService(repo calendarRepository, invalidator cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *CalendarService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &CalendarService{repo: repo, invalidator: invalidator, validator: validate, logger: logger}
	svc.validator.RegisterValidation("calendar_event_type", func(fl validator.FieldLevel) bool {
		return models.CalendarEventType(strings.ToLower(fl.Field().String())).Valid()
	})
	return svc
}

// CalendarListRequest describes filters for listing events.
type CalendarListRequest struct {
	StartDate  *time.Time `json:"start_date"`
	EndDate    *time.Time `json:"end_date"`
	EventTypes []string   `json:"event_types"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
}

// CalendarEventRequest describes the create and update payload.
type CalendarEventRequest struct {
	Title             string    `json:"title" validate:"required,max=200"`
	Description       string    `json:"description" validate:"max=2000"`
	EventType         string    `json:"event_type" validate:"required,calendar_event_type"`
	StartDate         time.Time `json:"start_date" validate:"required"`
	EndDate           time.Time `json:"end_date" validate:"required"`
	OverrideDayOfWeek *int      `json:"override_day_of_week" validate:"omitempty,min=0,max=6"`
	CreatedBy         string    `json:"-"`
}

// List returns calendar events.
func (s *CalendarService) List(ctx context.Context, req CalendarListRequest) ([]models.CalendarEvent, *models.Pagination, error) {
	filter := models.CalendarFilter{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Page:      req.Page,
		PageSize:  req.PageSize,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	for _, raw := range req.EventTypes {
		eventType := models.CalendarEventType(strings.ToLower(strings.TrimSpace(raw)))
		if !eventType.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown event_type "+raw)
		}
		filter.EventTypes = append(filter.EventTypes, eventType)
	}
	events, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list calendar events")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return events, pagination, nil
}

// Get returns a calendar event by id.
func (s *CalendarService) Get(ctx context.Context, id string) (*models.CalendarEvent, error) {
	if err := requireID(id, "event"); err != nil {
		return nil, err
	}
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get event")
	}
	return event, nil
}

// Create registers a new event.
func (s *CalendarService) Create(ctx context.Context, req CalendarEventRequest) (*models.CalendarEvent, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	event := &models.CalendarEvent{CreatedBy: req.CreatedBy}
	applyCalendarRequest(event, req)
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}
	s.logger.Info("calendar event created", zap.String("id", event.ID), zap.String("type", string(event.EventType)))
	s.invalidate(ctx)
	return event, nil
}

// Update modifies an event.
func (s *CalendarService) Update(ctx context.Context, id string, req CalendarEventRequest) (*models.CalendarEvent, error) {
	if err := requireID(id, "event"); err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	applyCalendarRequest(event, req)
	if err := s.repo.Update(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update event")
	}
	s.invalidate(ctx)
	return event, nil
}

// Delete removes a calendar event.
func (s *CalendarService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete event")
	}
	s.invalidate(ctx)
	return nil
}

func (s *CalendarService) validate(req CalendarEventRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if academic.Normalize(req.EndDate).Before(academic.Normalize(req.StartDate)) {
		return appErrors.Clone(appErrors.ErrValidation, "end_date must be on or after start_date")
	}
	eventType := models.CalendarEventType(strings.ToLower(req.EventType))
	if req.OverrideDayOfWeek != nil && eventType != models.EventTypeTimetableOverride {
		return appErrors.Clone(appErrors.ErrValidation, "override_day_of_week is only allowed on timetable_override events")
	}
	return nil
}

func (s *CalendarService) invalidate(ctx context.Context) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, AcademicCachePattern)
	}
}

func applyCalendarRequest(event *models.CalendarEvent, req CalendarEventRequest) {
	event.Title = strings.TrimSpace(req.Title)
	event.Description = strings.TrimSpace(req.Description)
	event.EventType = models.CalendarEventType(strings.ToLower(req.EventType))
	event.StartDate = academic.Normalize(req.StartDate)
	event.EndDate = academic.Normalize(req.EndDate)
	event.Metadata = models.CalendarEventMetadata{}
	if event.EventType == models.EventTypeTimetableOverride && req.OverrideDayOfWeek != nil {
		day := *req.OverrideDayOfWeek
		event.Metadata.OverrideDayOfWeek = &day
	}
}
