package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/student-portal-api/internal/models"
)

const (
	threadColumns = `id, title, body, author_id, author_email, is_pinned, created_at, last_activity_at, expires_at`
	replyColumns  = `id, thread_id, body, author_id, author_email, created_at, expires_at`
)

// ThreadRepository persists community threads.
type ThreadRepository struct {
	db *sqlx.DB
}

// NewThreadRepository constructs a thread repository.
func NewThreadRepository(db *sqlx.DB) *ThreadRepository {
	return &ThreadRepository{db: db}
}

// ListActive returns threads not yet expired at filter.ActiveAt, pinned first then by latest activity.
func (r *ThreadRepository) ListActive(ctx context.Context, filter models.ThreadFilter) ([]models.Thread, int, error) {
	where := []string{"expires_at >= $1"}
	args := []interface{}{filter.ActiveAt}
	if search := strings.TrimSpace(filter.Search); search != "" {
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR body ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+search+"%")
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM community_threads WHERE %s
ORDER BY is_pinned DESC, last_activity_at DESC LIMIT %d OFFSET %d`, threadColumns, whereClause, size, offset)
	var threads []models.Thread
	if err := r.db.SelectContext(ctx, &threads, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list threads: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM community_threads WHERE "+whereClause, args...); err != nil {
		return nil, 0, fmt.Errorf("count threads: %w", err)
	}
	return threads, total, nil
}

// ListActiveActivity returns id, last activity and expiry of every thread still live at now.
func (r *ThreadRepository) ListActiveActivity(ctx context.Context, now time.Time) ([]models.Thread, error) {
	var threads []models.Thread
	query := `SELECT id, last_activity_at, expires_at FROM community_threads WHERE expires_at >= $1`
	if err := r.db.SelectContext(ctx, &threads, query, now); err != nil {
		return nil, fmt.Errorf("list thread activity: %w", err)
	}
	return threads, nil
}

// GetByID fetches a thread regardless of expiry.
func (r *ThreadRepository) GetByID(ctx context.Context, id string) (*models.Thread, error) {
	var thread models.Thread
	if err := r.db.GetContext(ctx, &thread, `SELECT `+threadColumns+` FROM community_threads WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &thread, nil
}

// Create inserts a thread. Timestamps and expiry are set by the caller.
func (r *ThreadRepository) Create(ctx context.Context, thread *models.Thread) error {
	if thread.ID == "" {
		thread.ID = uuid.NewString()
	}
	query := `INSERT INTO community_threads (` + threadColumns + `)
VALUES (:id, :title, :body, :author_id, :author_email, :is_pinned, :created_at, :last_activity_at, :expires_at)`
	if _, err := r.db.NamedExecContext(ctx, query, thread); err != nil {
		return fmt.Errorf("create thread: %w", err)
	}
	return nil
}

// UpdatePin stores a new pin state together with its recomputed expiry.
func (r *ThreadRepository) UpdatePin(ctx context.Context, id string, pinned bool, expiresAt time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE community_threads SET is_pinned = $1, expires_at = $2 WHERE id = $3`, pinned, expiresAt, id); err != nil {
		return fmt.Errorf("update thread pin: %w", err)
	}
	return nil
}

// TouchActivity bumps last_activity_at without moving expires_at.
func (r *ThreadRepository) TouchActivity(ctx context.Context, id string, at time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE community_threads SET last_activity_at = GREATEST(last_activity_at, $1) WHERE id = $2`, at, id); err != nil {
		return fmt.Errorf("touch thread activity: %w", err)
	}
	return nil
}

// CountExpiry tallies live and expired threads and replies at now.
func (r *ThreadRepository) CountExpiry(ctx context.Context, now time.Time) (*models.ExpiryCounts, error) {
	const query = `SELECT
	(SELECT COUNT(*) FROM community_threads WHERE expires_at >= $1) AS live_threads,
	(SELECT COUNT(*) FROM community_threads WHERE expires_at < $1) AS expired_threads,
	(SELECT COUNT(*) FROM community_replies WHERE expires_at >= $1) AS live_replies,
	(SELECT COUNT(*) FROM community_replies WHERE expires_at < $1) AS expired_replies`
	var counts models.ExpiryCounts
	if err := r.db.GetContext(ctx, &counts, query, now); err != nil {
		return nil, fmt.Errorf("count expiry: %w", err)
	}
	return &counts, nil
}

// ReplyRepository persists thread replies.
type ReplyRepository struct {
	db *sqlx.DB
}

// NewReplyRepository constructs a reply repository.
func NewReplyRepository(db *sqlx.DB) *ReplyRepository {
	return &ReplyRepository{db: db}
}

// ListByThread returns replies of a thread not yet expired at now, oldest first.
func (r *ReplyRepository) ListByThread(ctx context.Context, threadID string, now time.Time) ([]models.Reply, error) {
	var replies []models.Reply
	query := `SELECT ` + replyColumns + ` FROM community_replies WHERE thread_id = $1 AND expires_at >= $2 ORDER BY created_at ASC`
	if err := r.db.SelectContext(ctx, &replies, query, threadID, now); err != nil {
		return nil, fmt.Errorf("list replies: %w", err)
	}
	return replies, nil
}

// CountActiveByThreads counts replies not yet expired at now, keyed by thread id.
func (r *ReplyRepository) CountActiveByThreads(ctx context.Context, threadIDs []string, now time.Time) (map[string]int, error) {
	counts := make(map[string]int, len(threadIDs))
	if len(threadIDs) == 0 {
		return counts, nil
	}
	rows := []struct {
		ThreadID string `db:"thread_id"`
		Count    int    `db:"reply_count"`
	}{}
	query := `SELECT thread_id, COUNT(*) AS reply_count FROM community_replies
WHERE thread_id = ANY($1) AND expires_at >= $2 GROUP BY thread_id`
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(threadIDs), now); err != nil {
		return nil, fmt.Errorf("count replies: %w", err)
	}
	for _, row := range rows {
		counts[row.ThreadID] = row.Count
	}
	return counts, nil
}

// Create inserts a reply. Timestamps and expiry are set by the caller.
func (r *ReplyRepository) Create(ctx context.Context, reply *models.Reply) error {
	if reply.ID == "" {
		reply.ID = uuid.NewString()
	}
	query := `INSERT INTO community_replies (` + replyColumns + `)
VALUES (:id, :thread_id, :body, :author_id, :author_email, :created_at, :expires_at)`
	if _, err := r.db.NamedExecContext(ctx, query, reply); err != nil {
		return fmt.Errorf("create reply: %w", err)
	}
	return nil
}

// ThreadReadRepository tracks per-user read markers.
type ThreadReadRepository struct {
	db *sqlx.DB
}

// NewThreadReadRepository constructs the repository.
func NewThreadReadRepository(db *sqlx.DB) *ThreadReadRepository {
	return &ThreadReadRepository{db: db}
}

// MarkRead upserts the read marker of userID on threadID.
func (r *ThreadReadRepository) MarkRead(ctx context.Context, threadID, userID string, at time.Time) error {
	query := `INSERT INTO community_thread_reads (thread_id, user_id, read_at) VALUES ($1, $2, $3)
ON CONFLICT (thread_id, user_id) DO UPDATE SET read_at = GREATEST(community_thread_reads.read_at, EXCLUDED.read_at)`
	if _, err := r.db.ExecContext(ctx, query, threadID, userID, at); err != nil {
		return fmt.Errorf("mark thread read: %w", err)
	}
	return nil
}

// ReadMarkers returns read timestamps of userID keyed by thread id.
func (r *ThreadReadRepository) ReadMarkers(ctx context.Context, userID string) (map[string]time.Time, error) {
	var reads []models.ThreadRead
	if err := r.db.SelectContext(ctx, &reads, `SELECT thread_id, user_id, read_at FROM community_thread_reads WHERE user_id = $1`, userID); err != nil {
		return nil, fmt.Errorf("list read markers: %w", err)
	}
	markers := make(map[string]time.Time, len(reads))
	for _, read := range reads {
		markers[read.ThreadID] = read.ReadAt
	}
	return markers, nil
}
