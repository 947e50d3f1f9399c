package model

import (
	"time"

	"github.com/google/uuid"
)

// QuizSession is one run of a quiz. The ID is minted once inside the start
// transition and never derived from mutable quiz fields, so editing the
// schedule mid-run cannot fork the response set.
type QuizSession struct {
	ID          uuid.UUID  `json:"id"`
	QuizID      uuid.UUID  `json:"quiz_id"`
	InstituteID int        `json:"institute_id"`
	OwnerID     int        `json:"owner_id"`
	StartedAt   time.Time  `json:"started_at"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`
}

// Response is one participant's recorded answer to one question within one
// session. Write-once: the (session, question, user) triple is the storage
// key and a second submission is rejected, never merged.
type Response struct {
	SessionID      uuid.UUID `json:"session_id"`
	QuestionID     uuid.UUID `json:"question_id"`
	UserID         int       `json:"user_id"`
	SelectedOption int       `json:"selected_option"`
	// CorrectOption is snapshotted at submission time. Reports score
	// against this value, so later edits to the answer key never rewrite
	// history.
	CorrectOption int       `json:"correct_option"`
	TimeTakenMS   int64     `json:"time_taken_ms"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// SubmitResponseRequest is the payload for answering the active question.
// TimeTakenMS is measured on the participant's client from the moment the
// question rendered; clock skew between clients is an accepted limitation.
type SubmitResponseRequest struct {
	QuestionID     uuid.UUID `json:"question_id" binding:"required"`
	SelectedOption int       `json:"selected_option" binding:"min=0"`
	TimeTakenMS    int64     `json:"time_taken_ms" binding:"min=0"`
}

// QuizParticipant is one identity registered on a quiz's participant list.
type QuizParticipant struct {
	QuizID   uuid.UUID `json:"quiz_id"`
	UserID   int       `json:"user_id"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joined_at"`
}
