package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-portal-api/internal/dto"
	"github.com/noah-isme/student-portal-api/internal/models"
	"github.com/noah-isme/student-portal-api/internal/service"
	appErrors "github.com/noah-isme/student-portal-api/pkg/errors"
	"github.com/noah-isme/student-portal-api/pkg/response"
)

type communityService interface {
	CreateThread(ctx context.Context, author *models.JWTClaims, req service.CreateThreadRequest) (*dto.ThreadDetail, error)
	ListThreads(ctx context.Context, userID string, req service.ThreadListRequest) ([]dto.ThreadSummary, *models.Pagination, error)
	GetThread(ctx context.Context, userID, id string) (*dto.ThreadDetail, error)
	CreateReply(ctx context.Context, author *models.JWTClaims, threadID string, req service.CreateReplyRequest) (*dto.ThreadReply, error)
	SetPinned(ctx context.Context, id string, pinned bool) (*dto.ThreadSummary, error)
	MarkRead(ctx context.Context, userID, id string) error
	UnreadCount(ctx context.Context, userID string) (int, error)
}

// CommunityHandler exposes the discussion board.
type CommunityHandler struct {
	service communityService
}

// NewCommunityHandler constructs the handler.
func NewCommunityHandler(svc communityService) *CommunityHandler {
	return &CommunityHandler{service: svc}
}

// List godoc
// @Summary List live threads
// @Tags Community
// @Produce json
// @Param q query string false "Search in title and body"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /threads [get]
func (h *CommunityHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	req := service.ThreadListRequest{Search: c.Query("q")}
	req.Page, req.PageSize = pageParams(c, 20)
	threads, pagination, err := h.service.ListThreads(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, threads, pagination)
}

// Create godoc
// @Summary Open a thread
// @Tags Community
// @Accept json
// @Produce json
// @Param payload body dto.CreateThreadPayload true "Thread"
// @Success 201 {object} response.Envelope
// @Router /threads [post]
func (h *CommunityHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var payload dto.CreateThreadPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	thread, err := h.service.CreateThread(c.Request.Context(), claims, service.CreateThreadRequest{
		Title:    payload.Title,
		Body:     payload.Body,
		IsPinned: payload.IsPinned,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, thread)
}

// Get godoc
// @Summary Get a live thread with its replies
// @Tags Community
// @Produce json
// @Param id path string true "Thread ID"
// @Success 200 {object} response.Envelope
// @Router /threads/{id} [get]
func (h *CommunityHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	thread, err := h.service.GetThread(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, thread, nil)
}

// Reply godoc
// @Summary Reply to a live thread
// @Tags Community
// @Accept json
// @Produce json
// @Param id path string true "Thread ID"
// @Param payload body dto.CreateReplyPayload true "Reply"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /threads/{id}/replies [post]
func (h *CommunityHandler) Reply(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var payload dto.CreateReplyPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	reply, err := h.service.CreateReply(c.Request.Context(), claims, c.Param("id"), service.CreateReplyRequest{Body: payload.Body})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, reply)
}

// Pin godoc
// @Summary Pin or unpin a thread
// @Tags Community
// @Accept json
// @Produce json
// @Param id path string true "Thread ID"
// @Param payload body dto.PinThreadPayload true "Pin state"
// @Success 200 {object} response.Envelope
// @Router /threads/{id}/pin [put]
func (h *CommunityHandler) Pin(c *gin.Context) {
	var payload dto.PinThreadPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	thread, err := h.service.SetPinned(c.Request.Context(), c.Param("id"), payload.Pinned)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, thread, nil)
}

// MarkRead godoc
// @Summary Mark a thread as read
// @Tags Community
// @Param id path string true "Thread ID"
// @Success 204
// @Router /threads/{id}/read [post]
func (h *CommunityHandler) MarkRead(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.MarkRead(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UnreadCount godoc
// @Summary Count unread live threads
// @Tags Community
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /threads/unread-count [get]
func (h *CommunityHandler) UnreadCount(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	count, err := h.service.UnreadCount(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.UnreadCount{Unread: count}, nil)
}
