package service

import "errors"

// Sentinel errors surfaced by services and mapped to response codes in
// handlers. Repository failures are wrapped, never swallowed; these cover
// the expected business outcomes.
var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrSessionAlreadyActive = errors.New("another session is already active")
	ErrApprovalPending      = errors.New("registration awaiting approval")
	ErrEmailTaken           = errors.New("email already registered")

	ErrQuizNotFound     = errors.New("quiz not found")
	ErrNoQuestions      = errors.New("quiz has no questions")
	ErrQuizAlreadyLive  = errors.New("quiz already has a live owner")
	ErrQuizNotRunning   = errors.New("quiz is not running")
	ErrQuizEnded        = errors.New("quiz has ended and must be rescheduled")
	ErrQuizNotEnded     = errors.New("only an ended quiz can be rescheduled")
	ErrNotQuizOwner     = errors.New("caller does not own the live session")
	ErrNotParticipant   = errors.New("user is not a quiz participant")
	ErrAlreadyAnswered  = errors.New("question already answered in this session")
	ErrQuestionInactive = errors.New("question is not the active question")
	ErrSessionNotFound  = errors.New("quiz session not found")
)
