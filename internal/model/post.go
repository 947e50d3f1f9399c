package model

import (
	"time"

	"github.com/google/uuid"
)

// PostKind separates plain news items from dated events.
type PostKind string

const (
	PostKindNews  PostKind = "NEWS"
	PostKindEvent PostKind = "EVENT"
)

// Post is one news/event feed item scoped to an institute.
type Post struct {
	ID          uuid.UUID  `json:"id"`
	InstituteID int        `json:"institute_id"`
	AuthorID    int        `json:"author_id"`
	Kind        PostKind   `json:"kind"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	EventAt     *time.Time `json:"event_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// CreatePostRequest is the payload for publishing a feed item.
type CreatePostRequest struct {
	Kind    PostKind   `json:"kind" binding:"required,oneof=NEWS EVENT"`
	Title   string     `json:"title" binding:"required,min=3,max=255"`
	Body    string     `json:"body" binding:"required,min=1,max=10000"`
	EventAt *time.Time `json:"event_at" binding:"omitempty"`
}
