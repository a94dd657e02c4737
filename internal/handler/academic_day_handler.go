package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-portal-api/internal/dto"
	"github.com/noah-isme/student-portal-api/internal/middleware"
	"github.com/noah-isme/student-portal-api/internal/service"
	"github.com/noah-isme/student-portal-api/pkg/response"
)

type academicDayService interface {
	Day(ctx context.Context, date time.Time) (*dto.AcademicDay, bool, error)
	Today(ctx context.Context) (*dto.AcademicDay, bool, error)
	Range(ctx context.Context, start, end time.Time) ([]dto.AcademicDay, error)
	Export(ctx context.Context, start, end time.Time, format string) (*service.CalendarExport, error)
}

// AcademicDayHandler exposes resolved academic days.
type AcademicDayHandler struct {
	service academicDayService
}

// NewAcademicDayHandler constructs the handler.
func NewAcademicDayHandler(svc academicDayService) *AcademicDayHandler {
	return &AcademicDayHandler{service: svc}
}

// Today godoc
// @Summary Resolve today in the campus timezone
// @Tags AcademicDays
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /academic-days/today [get]
func (h *AcademicDayHandler) Today(c *gin.Context) {
	day, hit, err := h.service.Today(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, day, nil, middleware.ExtractMeta(c))
}

// Day godoc
// @Summary Resolve a single date
// @Tags AcademicDays
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /academic-days/{date} [get]
func (h *AcademicDayHandler) Day(c *gin.Context) {
	date, err := requireDate(c.Param("date"), "date")
	if err != nil {
		response.Error(c, err)
		return
	}
	day, hit, err := h.service.Day(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, day, nil, middleware.ExtractMeta(c))
}

// Range godoc
// @Summary Resolve every date in a range
// @Tags AcademicDays
// @Produce json
// @Param start_date query string true "First date (YYYY-MM-DD)"
// @Param end_date query string true "Last date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /academic-days [get]
func (h *AcademicDayHandler) Range(c *gin.Context) {
	start, end, err := rangeQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	days, err := h.service.Range(c.Request.Context(), start, end)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, days, nil)
}

// Export godoc
// @Summary Download the resolved calendar
// @Tags AcademicDays
// @Produce text/csv
// @Produce application/pdf
// @Param start_date query string true "First date (YYYY-MM-DD)"
// @Param end_date query string true "Last date (YYYY-MM-DD)"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /academic-days/export [get]
func (h *AcademicDayHandler) Export(c *gin.Context) {
	start, end, err := rangeQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.service.Export(c.Request.Context(), start, end, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

func rangeQuery(c *gin.Context) (time.Time, time.Time, error) {
	start, err := requireDate(pickQuery(c, "start_date", "startDate"), "start_date")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := requireDate(pickQuery(c, "end_date", "endDate"), "end_date")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}
