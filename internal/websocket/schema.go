package websocket

import "github.com/edumitra/edumitra-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer Action = "answer"
	ActionPing   Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// AnswerRequest is sent by a participant to answer the active question.
type AnswerRequest struct {
	Action         Action `json:"action"`
	QuestionID     string `json:"question_id"`
	SelectedOption int    `json:"selected_option"`
	TimeTakenMS    int64  `json:"time_taken_ms"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventState     Event = "state"
	EventAnswerAck Event = "answer_ack"
	EventError     Event = "error"
	EventPong      Event = "pong"
)

// StateResponse carries a live state transition: the initial snapshot on
// connect and every question/ended event after. An ENDED state overrides
// whatever question the client is showing.
type StateResponse struct {
	Event         Event                         `json:"event"`
	State         model.LiveState               `json:"state"`
	SessionID     string                        `json:"session_id,omitempty"`
	QuestionIndex int                           `json:"question_index"`
	Question      *model.QuestionForParticipant `json:"question,omitempty"`
	TimerSeconds  int                           `json:"timer_seconds"`
}

// AnswerAckResponse confirms a recorded answer.
type AnswerAckResponse struct {
	Event      Event  `json:"event"`
	QuestionID string `json:"question_id"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
