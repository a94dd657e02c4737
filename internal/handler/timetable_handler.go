package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-portal-api/internal/dto"
	"github.com/noah-isme/student-portal-api/internal/models"
	"github.com/noah-isme/student-portal-api/internal/service"
	appErrors "github.com/noah-isme/student-portal-api/pkg/errors"
	"github.com/noah-isme/student-portal-api/pkg/response"
)

type timetableService interface {
	Day(ctx context.Context, userID string, date time.Time) (*dto.TimetableDay, error)
	List(ctx context.Context, userID string) ([]models.TimetableEntry, error)
	Create(ctx context.Context, userID string, req service.TimetableEntryRequest) (*models.TimetableEntry, error)
	Delete(ctx context.Context, userID, id string) error
}

// TimetableHandler exposes the caller's weekly timetable.
type TimetableHandler struct {
	service timetableService
	now     func() time.Time
}

// NewTimetableHandler constructs the handler. loc decides which date "today" is.
func NewTimetableHandler(svc timetableService, loc *time.Location) *TimetableHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &TimetableHandler{service: svc, now: func() time.Time { return time.Now().In(loc) }}
}

// Day godoc
// @Summary Classes for a date
// @Tags Timetable
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Router /timetable/day [get]
func (h *TimetableHandler) Day(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	date := h.now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := requireDate(raw, "date")
		if err != nil {
			response.Error(c, err)
			return
		}
		date = parsed
	}
	day, err := h.service.Day(c.Request.Context(), claims.UserID, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, day, nil)
}

// List godoc
// @Summary List weekly entries
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetable [get]
func (h *TimetableHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	entries, err := h.service.List(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Create godoc
// @Summary Add a weekly entry
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.TimetableEntryPayload true "Entry"
// @Success 201 {object} response.Envelope
// @Router /timetable [post]
func (h *TimetableHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var payload dto.TimetableEntryPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entry, err := h.service.Create(c.Request.Context(), claims.UserID, service.TimetableEntryRequest{
		DayOfWeek: payload.DayOfWeek,
		StartTime: payload.StartTime,
		EndTime:   payload.EndTime,
		Subject:   payload.Subject,
		Room:      payload.Room,
		Lecturer:  payload.Lecturer,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// Delete godoc
// @Summary Remove a weekly entry
// @Tags Timetable
// @Param id path string true "Entry ID"
// @Success 204
// @Router /timetable/{id} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.Delete(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
