package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-portal-api/internal/dto"
	"github.com/noah-isme/student-portal-api/internal/models"
	"github.com/noah-isme/student-portal-api/internal/service"
	appErrors "github.com/noah-isme/student-portal-api/pkg/errors"
	"github.com/noah-isme/student-portal-api/pkg/response"
)

type calendarService interface {
	List(ctx context.Context, req service.CalendarListRequest) ([]models.CalendarEvent, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.CalendarEvent, error)
	Create(ctx context.Context, req service.CalendarEventRequest) (*models.CalendarEvent, error)
	Update(ctx context.Context, id string, req service.CalendarEventRequest) (*models.CalendarEvent, error)
	Delete(ctx context.Context, id string) error
}

// CalendarHandler exposes calendar event administration.
type CalendarHandler struct {
	service calendarService
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(svc calendarService) *CalendarHandler {
	return &CalendarHandler{service: svc}
}

// List godoc
// @Summary List calendar events
// @Tags Calendar
// @Produce json
// @Param start_date query string false "Only events ending on or after (YYYY-MM-DD)"
// @Param end_date query string false "Only events starting on or before (YYYY-MM-DD)"
// @Param type query string false "Comma separated event types"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /calendar-events [get]
func (h *CalendarHandler) List(c *gin.Context) {
	start, err := parseCalendarDate(pickQuery(c, "start_date", "startDate"))
	if err != nil {
		response.Error(c, err)
		return
	}
	end, err := parseCalendarDate(pickQuery(c, "end_date", "endDate"))
	if err != nil {
		response.Error(c, err)
		return
	}
	req := service.CalendarListRequest{StartDate: start, EndDate: end}
	if raw := c.Query("type"); raw != "" {
		req.EventTypes = strings.Split(raw, ",")
	}
	req.Page, req.PageSize = pageParams(c, 50)

	events, pagination, err := h.service.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, pagination)
}

// Get godoc
// @Summary Get a calendar event
// @Tags Calendar
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Router /calendar-events/{id} [get]
func (h *CalendarHandler) Get(c *gin.Context) {
	event, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Create godoc
// @Summary Create a calendar event
// @Tags Calendar
// @Accept json
// @Produce json
// @Param payload body dto.CalendarEventPayload true "Event"
// @Success 201 {object} response.Envelope
// @Router /calendar-events [post]
func (h *CalendarHandler) Create(c *gin.Context) {
	req, err := bindCalendarEvent(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if claims := claimsFromContext(c); claims != nil {
		req.CreatedBy = claims.UserID
	}
	event, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// Update godoc
// @Summary Replace a calendar event
// @Tags Calendar
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param payload body dto.CalendarEventPayload true "Event"
// @Success 200 {object} response.Envelope
// @Router /calendar-events/{id} [put]
func (h *CalendarHandler) Update(c *gin.Context) {
	req, err := bindCalendarEvent(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	event, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Delete godoc
// @Summary Delete a calendar event
// @Tags Calendar
// @Param id path string true "Event ID"
// @Success 204
// @Router /calendar-events/{id} [delete]
func (h *CalendarHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func bindCalendarEvent(c *gin.Context) (service.CalendarEventRequest, error) {
	var payload dto.CalendarEventPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		return service.CalendarEventRequest{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload")
	}
	start, err := requireDate(payload.StartDate, "start_date")
	if err != nil {
		return service.CalendarEventRequest{}, err
	}
	end, err := requireDate(payload.EndDate, "end_date")
	if err != nil {
		return service.CalendarEventRequest{}, err
	}
	return service.CalendarEventRequest{
		Title:             payload.Title,
		Description:       payload.Description,
		EventType:         payload.EventType,
		StartDate:         start,
		EndDate:           end,
		OverrideDayOfWeek: payload.OverrideDayOfWeek,
	}, nil
}
