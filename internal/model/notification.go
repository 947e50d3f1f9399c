package model

import (
	"time"

	"github.com/google/uuid"
)

// NotificationKind enumerates the domain events that fan out to devices.
type NotificationKind string

const (
	NotificationPostPublished NotificationKind = "POST_PUBLISHED"
	NotificationQuizStarted   NotificationKind = "QUIZ_STARTED"
	NotificationQuizEnded     NotificationKind = "QUIZ_ENDED"
)

// Device is a registered push target for one user. Delivery itself is an
// external service; this registry only feeds the fanout bridge.
type Device struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Token     string    `json:"token"`
	Platform  string    `json:"platform"`
	CreatedAt time.Time `json:"created_at"`
}

// Notification is one persisted fanout record.
type Notification struct {
	ID          uuid.UUID        `json:"id"`
	InstituteID int              `json:"institute_id"`
	Kind        NotificationKind `json:"kind"`
	Title       string           `json:"title"`
	Body        string           `json:"body"`
	// RefID points at the triggering record (post ID, quiz ID).
	RefID     string    `json:"ref_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NotifyEvent is one queued fanout job. Producers push these onto the
// Redis list queue; the notify worker drains them in batches, persists the
// records, and republishes on the institute's push channel.
type NotifyEvent struct {
	InstituteID   int              `json:"institute_id"`
	InstituteCode string           `json:"institute_code"`
	Kind          NotificationKind `json:"kind"`
	Title         string           `json:"title"`
	Body          string           `json:"body"`
	RefID         string           `json:"ref_id"`
}

// RegisterDeviceRequest is the payload for registering a push token.
type RegisterDeviceRequest struct {
	Token    string `json:"token" binding:"required,min=8,max=512"`
	Platform string `json:"platform" binding:"required,oneof=web android ios"`
}
