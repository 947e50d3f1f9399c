package model

import (
	"time"

	"github.com/google/uuid"
)

// LiveState enumerates the explicit live-session states of a quiz.
// Illegal field combinations (owner without a running state, end time on a
// running quiz) are ruled out by the transition SQL, not by convention.
type LiveState string

const (
	LiveStateNotStarted LiveState = "NOT_STARTED"
	LiveStateRunning    LiveState = "RUNNING"
	LiveStateEnded      LiveState = "ENDED"
)

// Question is one multiple-choice question embedded in a quiz document.
type Question struct {
	ID            uuid.UUID `json:"id"`
	Prompt        string    `json:"prompt"`
	Options       []string  `json:"options"`
	CorrectOption int       `json:"correct_option"`
}

// QuestionForParticipant is a question stripped of its answer key, sent to
// participant clients while the quiz is running.
type QuestionForParticipant struct {
	ID      uuid.UUID `json:"id"`
	Prompt  string    `json:"prompt"`
	Options []string  `json:"options"`
	Index   int       `json:"index"`
}

// Quiz represents a quiz document with its embedded questions and the
// persisted live-session pointer.
type Quiz struct {
	ID          uuid.UUID  `json:"id"`
	InstituteID int        `json:"institute_id"`
	Title       string     `json:"title"`
	AuthorID    int        `json:"author_id"`
	BoardID     int        `json:"board_id"`
	StandardID  int        `json:"standard_id"`
	SubjectID   int        `json:"subject_id"`
	ChapterID   int        `json:"chapter_id"`
	Questions   []Question `json:"questions"`
	// TimerSeconds is the per-question countdown, in seconds.
	TimerSeconds int       `json:"timer_seconds"`
	ScheduledAt  time.Time `json:"scheduled_at"`

	LiveState       LiveState  `json:"live_state"`
	OwnerID         *int       `json:"owner_id,omitempty"`
	CurrentQuestion int        `json:"current_question"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	ActiveSessionID *uuid.UUID `json:"active_session_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ForParticipant returns the question at index stripped of its answer key.
// Returns false when the index is out of range.
func (q *Quiz) ForParticipant(index int) (QuestionForParticipant, bool) {
	if index < 0 || index >= len(q.Questions) {
		return QuestionForParticipant{}, false
	}
	question := q.Questions[index]
	return QuestionForParticipant{
		ID:      question.ID,
		Prompt:  question.Prompt,
		Options: question.Options,
		Index:   index,
	}, true
}

// QuestionPayload is the authoring payload for one question.
type QuestionPayload struct {
	Prompt        string   `json:"prompt" binding:"required,min=1,max=2000"`
	Options       []string `json:"options" binding:"required,min=2,max=8,dive,required,max=500"`
	CorrectOption int      `json:"correct_option" binding:"min=0"`
}

// CreateQuizRequest is the payload for creating a quiz.
type CreateQuizRequest struct {
	Title        string            `json:"title" binding:"required,min=3,max=255"`
	BoardID      int               `json:"board_id" binding:"required"`
	StandardID   int               `json:"standard_id" binding:"required"`
	SubjectID    int               `json:"subject_id" binding:"required"`
	ChapterID    int               `json:"chapter_id" binding:"required"`
	TimerSeconds int               `json:"timer_seconds" binding:"required,min=5,max=600"`
	ScheduledAt  time.Time         `json:"scheduled_at" binding:"required"`
	Questions    []QuestionPayload `json:"questions" binding:"required,min=1,dive"`
}

// UpdateQuizRequest is the payload for updating a quiz that has not started.
type UpdateQuizRequest struct {
	Title        string            `json:"title" binding:"omitempty,min=3,max=255"`
	ChapterID    *int              `json:"chapter_id" binding:"omitempty"`
	TimerSeconds *int              `json:"timer_seconds" binding:"omitempty,min=5,max=600"`
	ScheduledAt  *time.Time        `json:"scheduled_at" binding:"omitempty"`
	Questions    []QuestionPayload `json:"questions" binding:"omitempty,min=1,dive"`
}

// StartQuizRequest is the payload for the start transition.
type StartQuizRequest struct {
	// AutoAdvance asks the server to drive question progression off the
	// per-question timer instead of explicit advance calls.
	AutoAdvance bool `json:"auto_advance"`
}
