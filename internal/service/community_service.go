package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/student-portal-api/internal/dto"
	"github.com/noah-isme/student-portal-api/internal/expiry"
	"github.com/noah-isme/student-portal-api/internal/models"
	appErrors "github.com/noah-isme/student-portal-api/pkg/errors"
)

type threadRepository interface {
	ListActive(ctx context.Context, filter models.ThreadFilter) ([]models.Thread, int, error)
	ListActiveActivity(ctx context.Context, now time.Time) ([]models.Thread, error)
	GetByID(ctx context.Context, id string) (*models.Thread, error)
	Create(ctx context.Context, thread *models.Thread) error
	UpdatePin(ctx context.Context, id string, pinned bool, expiresAt time.Time) error
	TouchActivity(ctx context.Context, id string, at time.Time) error
}

type replyRepository interface {
	ListByThread(ctx context.Context, threadID string, now time.Time) ([]models.Reply, error)
	CountActiveByThreads(ctx context.Context, threadIDs []string, now time.Time) (map[string]int, error)
	Create(ctx context.Context, reply *models.Reply) error
}

type threadReadRepository interface {
	MarkRead(ctx context.Context, threadID, userID string, at time.Time) error
	ReadMarkers(ctx context.Context, userID string) (map[string]time.Time, error)
}

// CommunityServiceParams groups constructor dependencies.
type CommunityServiceParams struct {
	Threads   threadRepository
	Replies   replyRepository
	Reads     threadReadRepository
	Engine    *expiry.Engine
	Validator *validator.Validate
	Logger    *zap.Logger
}

// CommunityService runs the expiring discussion board.
type CommunityService struct {
	threads   threadRepository
	replies   replyRepository
	reads     threadReadRepository
	engine    *expiry.Engine
	validator *validator.Validate
	logger    *zap.Logger
}

// CreateThreadRequest describes a new thread.
type CreateThreadRequest struct {
	Title    string `validate:"required,max=200"`
	Body     string `validate:"required,max=10000"`
	IsPinned bool
}

// CreateReplyRequest describes a new reply.
type CreateReplyRequest struct {
	Body string `validate:"required,max=5000"`
}

// ThreadListRequest describes thread listing filters.
type ThreadListRequest struct {
	Search   string
	Page     int
	PageSize int
}

// NewCommunityService constructs the service. A nil engine uses the default expiry policy.
func NewCommunityService(params CommunityServiceParams) *CommunityService {
	engine := params.Engine
	if engine == nil {
		engine = expiry.NewEngine(expiry.DefaultPolicy(), nil)
	}
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommunityService{
		threads:   params.Threads,
		replies:   params.Replies,
		reads:     params.Reads,
		engine:    engine,
		validator: validate,
		logger:    logger,
	}
}

// CreateThread opens a thread. Only admins may create it pinned.
func (s *CommunityService) CreateThread(ctx context.Context, author *models.JWTClaims, req CreateThreadRequest) (*dto.ThreadDetail, error) {
	if author == nil {
		return nil, appErrors.ErrUnauthorized
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Body = strings.TrimSpace(req.Body)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid thread payload")
	}
	if req.IsPinned && !author.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only admins can pin threads")
	}

	now := s.engine.Now()
	thread := &models.Thread{
		Title:          req.Title,
		Body:           req.Body,
		AuthorID:       author.UserID,
		AuthorEmail:    author.Email,
		IsPinned:       req.IsPinned,
		CreatedAt:      now,
		LastActivityAt: now,
		ExpiresAt:      s.engine.ThreadExpiresAt(now, req.IsPinned),
	}
	if err := s.threads.Create(ctx, thread); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create thread")
	}
	s.markSeen(ctx, thread.ID, author.UserID, now)
	s.logger.Info("thread created", zap.String("thread_id", thread.ID), zap.Bool("pinned", thread.IsPinned), zap.Time("expires_at", thread.ExpiresAt))

	return &dto.ThreadDetail{ThreadSummary: threadSummary(*thread, 0, false), Body: thread.Body, Replies: []dto.ThreadReply{}}, nil
}

// ListThreads returns live threads, pinned first then by latest activity.
func (s *CommunityService) ListThreads(ctx context.Context, userID string, req ThreadListRequest) ([]dto.ThreadSummary, *models.Pagination, error) {
	now := s.engine.Now()
	filter := models.ThreadFilter{ActiveAt: now, Search: req.Search, Page: req.Page, PageSize: req.PageSize}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	threads, total, err := s.threads.ListActive(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list threads")
	}

	live := make([]models.Thread, 0, len(threads))
	ids := make([]string, 0, len(threads))
	for _, thread := range threads {
		if s.engine.IsExpired(thread.ExpiresAt) {
			continue
		}
		live = append(live, thread)
		ids = append(ids, thread.ID)
	}
	counts, err := s.replies.CountActiveByThreads(ctx, ids, now)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count replies")
	}
	markers, err := s.reads.ReadMarkers(ctx, userID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load read markers")
	}

	summaries := make([]dto.ThreadSummary, 0, len(live))
	for _, thread := range live {
		summaries = append(summaries, threadSummary(thread, counts[thread.ID], isUnread(thread, markers)))
	}
	return summaries, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// GetThread returns a live thread with its live replies. Expired threads are reported as not found.
func (s *CommunityService) GetThread(ctx context.Context, userID, id string) (*dto.ThreadDetail, error) {
	thread, err := s.liveThread(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.engine.Now()
	replies, err := s.replies.ListByThread(ctx, id, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list replies")
	}
	views := make([]dto.ThreadReply, 0, len(replies))
	for _, reply := range replies {
		if s.engine.IsExpired(reply.ExpiresAt) {
			continue
		}
		views = append(views, threadReply(reply))
	}
	markers, err := s.reads.ReadMarkers(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load read markers")
	}
	return &dto.ThreadDetail{
		ThreadSummary: threadSummary(*thread, len(views), isUnread(*thread, markers)),
		Body:          thread.Body,
		Replies:       views,
	}, nil
}

// CreateReply answers a live thread. The reply gets its own fixed expiry and the
// thread's activity moves forward while its expiry stays unchanged.
func (s *CommunityService) CreateReply(ctx context.Context, author *models.JWTClaims, threadID string, req CreateReplyRequest) (*dto.ThreadReply, error) {
	if author == nil {
		return nil, appErrors.ErrUnauthorized
	}
	req.Body = strings.TrimSpace(req.Body)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reply payload")
	}
	thread, err := s.loadThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if s.engine.IsExpired(thread.ExpiresAt) {
		return nil, appErrors.Clone(appErrors.ErrThreadExpired, "thread has expired and no longer accepts replies")
	}

	now := s.engine.Now()
	reply := &models.Reply{
		ThreadID:    thread.ID,
		Body:        req.Body,
		AuthorID:    author.UserID,
		AuthorEmail: author.Email,
		CreatedAt:   now,
		ExpiresAt:   s.engine.ReplyExpiresAt(now),
	}
	if err := s.replies.Create(ctx, reply); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create reply")
	}
	if err := s.threads.TouchActivity(ctx, thread.ID, now); err != nil {
		s.logger.Warn("thread activity not updated", zap.String("thread_id", thread.ID), zap.Error(err))
	}
	s.markSeen(ctx, thread.ID, author.UserID, now)
	view := threadReply(*reply)
	return &view, nil
}

// SetPinned pins or unpins a live thread and re-anchors its expiry at the current time.
func (s *CommunityService) SetPinned(ctx context.Context, id string, pinned bool) (*dto.ThreadSummary, error) {
	thread, err := s.loadThread(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.engine.IsExpired(thread.ExpiresAt) {
		return nil, appErrors.Clone(appErrors.ErrThreadExpired, "expired threads cannot be pinned")
	}
	expiresAt := s.engine.ThreadExpiresAt(s.engine.Now(), pinned)
	if err := s.threads.UpdatePin(ctx, id, pinned, expiresAt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update pin")
	}
	thread.IsPinned = pinned
	thread.ExpiresAt = expiresAt
	summary := threadSummary(*thread, 0, false)
	return &summary, nil
}

// MarkRead records that userID has seen the current state of a live thread.
func (s *CommunityService) MarkRead(ctx context.Context, userID, id string) error {
	if _, err := s.liveThread(ctx, id); err != nil {
		return err
	}
	if err := s.reads.MarkRead(ctx, id, userID, s.engine.Now()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark thread read")
	}
	return nil
}

// UnreadCount counts live threads never opened by userID or active since they last read them.
func (s *CommunityService) UnreadCount(ctx context.Context, userID string) (int, error) {
	threads, err := s.threads.ListActiveActivity(ctx, s.engine.Now())
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load thread activity")
	}
	markers, err := s.reads.ReadMarkers(ctx, userID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load read markers")
	}
	unread := 0
	for _, thread := range threads {
		if s.engine.IsExpired(thread.ExpiresAt) {
			continue
		}
		if isUnread(thread, markers) {
			unread++
		}
	}
	return unread, nil
}

func (s *CommunityService) loadThread(ctx context.Context, id string) (*models.Thread, error) {
	if err := requireID(id, "thread"); err != nil {
		return nil, err
	}
	thread, err := s.threads.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "thread not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load thread")
	}
	return thread, nil
}

func (s *CommunityService) liveThread(ctx context.Context, id string) (*models.Thread, error) {
	thread, err := s.loadThread(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.engine.IsExpired(thread.ExpiresAt) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "thread not found")
	}
	return thread, nil
}

func (s *CommunityService) markSeen(ctx context.Context, threadID, userID string, at time.Time) {
	if err := s.reads.MarkRead(ctx, threadID, userID, at); err != nil {
		s.logger.Warn("read marker not stored", zap.String("thread_id", threadID), zap.Error(err))
	}
}

func isUnread(thread models.Thread, markers map[string]time.Time) bool {
	readAt, ok := markers[thread.ID]
	return !ok || thread.LastActivityAt.After(readAt)
}

func threadSummary(thread models.Thread, replies int, unread bool) dto.ThreadSummary {
	return dto.ThreadSummary{
		ID:             thread.ID,
		Title:          thread.Title,
		AuthorID:       thread.AuthorID,
		AuthorEmail:    thread.AuthorEmail,
		IsPinned:       thread.IsPinned,
		ReplyCount:     replies,
		Unread:         unread,
		CreatedAt:      thread.CreatedAt,
		LastActivityAt: thread.LastActivityAt,
		ExpiresAt:      thread.ExpiresAt,
	}
}

func threadReply(reply models.Reply) dto.ThreadReply {
	return dto.ThreadReply{
		ID:          reply.ID,
		Body:        reply.Body,
		AuthorID:    reply.AuthorID,
		AuthorEmail: reply.AuthorEmail,
		CreatedAt:   reply.CreatedAt,
		ExpiresAt:   reply.ExpiresAt,
	}
}
