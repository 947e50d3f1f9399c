package model

import (
	"time"

	"github.com/google/uuid"
)

// LiveSnapshot is the participant-facing view of a quiz's live state,
// re-derived from a fresh read on every request. Clients render "waiting"
// for NOT_STARTED, the active question for RUNNING, and switch to the
// report for ENDED regardless of any in-flight question state.
type LiveSnapshot struct {
	QuizID        uuid.UUID               `json:"quiz_id"`
	State         LiveState               `json:"state"`
	SessionID     *uuid.UUID              `json:"session_id,omitempty"`
	QuestionIndex int                     `json:"question_index"`
	QuestionCount int                     `json:"question_count"`
	Question      *QuestionForParticipant `json:"question,omitempty"`
	TimerSeconds  int                     `json:"timer_seconds"`
	EndedAt       *time.Time              `json:"ended_at,omitempty"`
}

// LiveStateEvent is published on the quiz's Redis channel after every
// transition and fanned out to subscribed participant streams. Receivers
// treat an ENDED event as authoritative over any local question state.
type LiveStateEvent struct {
	QuizID        uuid.UUID               `json:"quiz_id"`
	SessionID     uuid.UUID               `json:"session_id"`
	State         LiveState               `json:"state"`
	QuestionIndex int                     `json:"question_index"`
	Question      *QuestionForParticipant `json:"question,omitempty"`
	TimerSeconds  int                     `json:"timer_seconds"`
	EndedAt       *time.Time              `json:"ended_at,omitempty"`
}
