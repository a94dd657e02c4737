package dto

import "time"

// ThreadSummary is a thread row in listings.
type ThreadSummary struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	AuthorID       string    `json:"author_id"`
	AuthorEmail    string    `json:"author_email,omitempty"`
	IsPinned       bool      `json:"is_pinned"`
	ReplyCount     int       `json:"reply_count"`
	Unread         bool      `json:"unread"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// ThreadReply is a reply as shown inside a thread.
type ThreadReply struct {
	ID          string    `json:"id"`
	Body        string    `json:"body"`
	AuthorID    string    `json:"author_id"`
	AuthorEmail string    `json:"author_email,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ThreadDetail is a thread with its live replies.
type ThreadDetail struct {
	ThreadSummary
	Body    string        `json:"body"`
	Replies []ThreadReply `json:"replies"`
}

// CreateThreadPayload is the body of POST /threads.
type CreateThreadPayload struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	IsPinned bool   `json:"is_pinned"`
}

// CreateReplyPayload is the body of POST /threads/{id}/replies.
type CreateReplyPayload struct {
	Body string `json:"body"`
}

// PinThreadPayload is the body of PUT /threads/{id}/pin.
type PinThreadPayload struct {
	Pinned bool `json:"pinned"`
}

// UnreadCount reports live threads with activity the user has not seen.
type UnreadCount struct {
	Unread int `json:"unread"`
}
