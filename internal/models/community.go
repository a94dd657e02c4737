package models

import "time"

// Thread is a community discussion subject to time-to-live expiry.
type Thread struct {
	ID             string    `db:"id" json:"id"`
	Title          string    `db:"title" json:"title"`
	Body           string    `db:"body" json:"body"`
	AuthorID       string    `db:"author_id" json:"author_id"`
	AuthorEmail    string    `db:"author_email" json:"author_email"`
	IsPinned       bool      `db:"is_pinned" json:"is_pinned"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	LastActivityAt time.Time `db:"last_activity_at" json:"last_activity_at"`
	ExpiresAt      time.Time `db:"expires_at" json:"expires_at"`
}

// Reply belongs to a thread and carries its own fixed expiry.
type Reply struct {
	ID          string    `db:"id" json:"id"`
	ThreadID    string    `db:"thread_id" json:"thread_id"`
	Body        string    `db:"body" json:"body"`
	AuthorID    string    `db:"author_id" json:"author_id"`
	AuthorEmail string    `db:"author_email" json:"author_email"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	ExpiresAt   time.Time `db:"expires_at" json:"expires_at"`
}

// ThreadFilter narrows thread listings. Expiry is evaluated against ActiveAt.
type ThreadFilter struct {
	ActiveAt time.Time
	Search   string
	Page     int
	PageSize int
}

// ThreadRead records when a user last opened a thread.
type ThreadRead struct {
	ThreadID string    `db:"thread_id" json:"thread_id"`
	UserID   string    `db:"user_id" json:"user_id"`
	ReadAt   time.Time `db:"read_at" json:"read_at"`
}

// ExpiryCounts summarises live and expired community content at a point in time.
type ExpiryCounts struct {
	LiveThreads    int `db:"live_threads" json:"live_threads"`
	ExpiredThreads int `db:"expired_threads" json:"expired_threads"`
	LiveReplies    int `db:"live_replies" json:"live_replies"`
	ExpiredReplies int `db:"expired_replies" json:"expired_replies"`
}
