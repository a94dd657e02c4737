package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/student-portal-api/internal/academic"
	"github.com/noah-isme/student-portal-api/internal/dto"
	"github.com/noah-isme/student-portal-api/internal/models"
	appErrors "github.com/noah-isme/student-portal-api/pkg/errors"
)

const clockLayout = "15:04"

type timetableRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.TimetableEntry, error)
	ListByUserAndDay(ctx context.Context, userID string, dayOfWeek int) ([]models.TimetableEntry, error)
	Create(ctx context.Context, entry *models.TimetableEntry) error
	Delete(ctx context.Context, userID, id string) (bool, error)
}

// TimetableService combines a student's weekly classes with the academic calendar.
type TimetableService struct {
	repo      timetableRepository
	events    academicEventSource
	validator *validator.Validate
	logger    *zap.Logger
}

// TimetableEntryRequest describes a new weekly class slot.
type TimetableEntryRequest struct {
	DayOfWeek *int   `validate:"required,min=0,max=6"`
	StartTime string `validate:"required,clock"`
	EndTime   string `validate:"required,clock"`
	Subject   string `validate:"required,max=120"`
	Room      string `validate:"max=60"`
	Lecturer  string `validate:"max=120"`
}

// NewTimetableService constructs the service.
func NewTimetableService(repo timetableRepository, events academicEventSource, validate *validator.Validate, logger *zap.Logger) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &TimetableService{repo: repo, events: events, validator: validate, logger: logger}
	svc.validator.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(clockLayout, fl.Field().String())
		return err == nil
	})
	return svc
}

// Day returns the classes userID attends on date, or a banner when classes are suspended.
func (s *TimetableService) Day(ctx context.Context, userID string, date time.Time) (*dto.TimetableDay, error) {
	day := academic.Normalize(date)
	events, err := s.events.ListBetween(ctx, day, day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load calendar events")
	}
	resolved := academic.Resolve(day, events)

	result := &dto.TimetableDay{
		Date:             day.Format(dateLayout),
		State:            string(resolved.State),
		TimetableDay:     resolved.TimetableDay,
		TimetableWeekday: time.Weekday(resolved.TimetableDay).String(),
		ClassesSuspended: resolved.State.SuspendsClasses(),
		Banner:           dayBanner(resolved),
		Entries:          []models.TimetableEntry{},
	}
	if result.ClassesSuspended {
		return result, nil
	}

	entries, err := s.repo.ListByUserAndDay(ctx, userID, resolved.TimetableDay)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	if entries != nil {
		result.Entries = entries
	}
	return result, nil
}

// List returns every weekly entry of userID.
func (s *TimetableService) List(ctx context.Context, userID string) ([]models.TimetableEntry, error) {
	entries, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable")
	}
	if entries == nil {
		entries = []models.TimetableEntry{}
	}
	return entries, nil
}

// Create adds a weekly entry for userID.
func (s *TimetableService) Create(ctx context.Context, userID string, req TimetableEntryRequest) (*models.TimetableEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable entry")
	}
	start, _ := time.Parse(clockLayout, req.StartTime)
	end, _ := time.Parse(clockLayout, req.EndTime)
	if !end.After(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_time must be after start_time")
	}
	entry := &models.TimetableEntry{
		UserID:    userID,
		DayOfWeek: *req.DayOfWeek,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Subject:   strings.TrimSpace(req.Subject),
		Room:      strings.TrimSpace(req.Room),
		Lecturer:  strings.TrimSpace(req.Lecturer),
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create timetable entry")
	}
	return entry, nil
}

// Delete removes an entry owned by userID.
func (s *TimetableService) Delete(ctx context.Context, userID, id string) error {
	if err := requireID(id, "timetable entry"); err != nil {
		return err
	}
	removed, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timetable entry")
	}
	if !removed {
		return appErrors.Clone(appErrors.ErrNotFound, "timetable entry not found")
	}
	return nil
}

func dayBanner(day academic.Day) string {
	title := func(eventType models.CalendarEventType) string {
		for _, event := range day.Events {
			if event.EventType == eventType {
				return event.Title
			}
		}
		return ""
	}
	switch day.State {
	case models.DayStateHoliday:
		return withTitle("Holiday", title(models.EventTypeHoliday), "No classes today.")
	case models.DayStateVacation:
		return withTitle("Vacation", title(models.EventTypeVacation), "No classes today.")
	case models.DayStateExamDay, models.DayStateExamBreak:
		return withTitle("Exam day", title(models.EventTypeExam), "Regular classes are suspended.")
	case models.DayStateTimetableOverride:
		return fmt.Sprintf("Classes follow the %s timetable today.", time.Weekday(day.TimetableDay))
	default:
		return ""
	}
}

func withTitle(label, title, suffix string) string {
	if title == "" {
		return label + ". " + suffix
	}
	return fmt.Sprintf("%s: %s. %s", label, title, suffix)
}
