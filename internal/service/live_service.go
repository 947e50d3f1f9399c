package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/edumitra/edumitra-backend/internal/config"
	"github.com/edumitra/edumitra-backend/internal/model"
	"github.com/edumitra/edumitra-backend/internal/repository"
	"github.com/edumitra/edumitra-backend/internal/scoring"
	"github.com/edumitra/edumitra-backend/internal/timer"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// liveStateTTL bounds how long a live snapshot can linger in the cache if
// the delete on end is lost. Running sessions never legitimately outlive it.
const liveStateTTL = 24 * time.Hour

type quizStore interface {
	GetByID(ctx context.Context, instituteID int, id uuid.UUID) (*model.Quiz, error)
	StartLive(ctx context.Context, instituteID int, quizID uuid.UUID, ownerID int) (*model.QuizSession, error)
	AdvanceLive(ctx context.Context, instituteID int, quizID uuid.UUID, ownerID int) (int, error)
	EndLive(ctx context.Context, instituteID int, quizID uuid.UUID) (time.Time, uuid.UUID, error)
	ListRunning(ctx context.Context) ([]model.Quiz, error)
}

type sessionStore interface {
	GetByID(ctx context.Context, instituteID int, id uuid.UUID) (*model.QuizSession, error)
	LatestByQuiz(ctx context.Context, instituteID int, quizID uuid.UUID) (*model.QuizSession, error)
	InsertResponse(ctx context.Context, resp *model.Response) error
	ListResponses(ctx context.Context, sessionID uuid.UUID) ([]model.Response, error)
	CountResponsesByQuestion(ctx context.Context, sessionID uuid.UUID) (map[uuid.UUID]int, error)
	AddParticipant(ctx context.Context, quizID uuid.UUID, userID int) error
	IsParticipant(ctx context.Context, quizID uuid.UUID, userID int) (bool, error)
	ListParticipants(ctx context.Context, quizID uuid.UUID) ([]model.QuizParticipant, error)
}

type instituteStore interface {
	GetByID(ctx context.Context, id int) (*model.Institute, error)
}

type eventQueue interface {
	Enqueue(ctx context.Context, event *model.NotifyEvent) error
}

// LiveService drives the quiz live-session state machine. All transitions
// go through the repository's conditional updates; this layer re-derives
// state from fresh reads, publishes events for connected participants, and
// owns the optional server-side auto-advance runners.
type LiveService struct {
	quizzes    quizStore
	sessions   sessionStore
	institutes instituteStore
	rdb        *redis.Client
	queue      eventQueue
	topN       int

	mu      sync.Mutex
	runners map[uuid.UUID]context.CancelFunc
}

// NewLiveService creates a new LiveService. topN sets the leaderboard
// cutoff; pass 0 for the default.
func NewLiveService(quizzes quizStore, sessions sessionStore, institutes instituteStore, rdb *redis.Client, queue eventQueue, topN int) *LiveService {
	return &LiveService{
		quizzes:    quizzes,
		sessions:   sessions,
		institutes: institutes,
		rdb:        rdb,
		queue:      queue,
		topN:       topN,
		runners:    make(map[uuid.UUID]context.CancelFunc),
	}
}

// Start performs the NOT_STARTED → RUNNING transition. Exactly one of N
// racing callers wins; losers get ErrQuizAlreadyLive (still running) or
// ErrQuizEnded (already ran to completion). On success the minted session
// is returned and a RUNNING event with question 0 is published.
func (s *LiveService) Start(ctx context.Context, inst *model.Institute, quizID uuid.UUID, ownerID int, autoAdvance bool) (*model.QuizSession, error) {
	quiz, err := s.quizzes.GetByID(ctx, inst.ID, quizID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}
	if len(quiz.Questions) == 0 {
		return nil, ErrNoQuestions
	}

	session, err := s.quizzes.StartLive(ctx, inst.ID, quizID, ownerID)
	if errors.Is(err, repository.ErrStateConflict) {
		fresh, readErr := s.quizzes.GetByID(ctx, inst.ID, quizID)
		if readErr == nil && fresh.LiveState == model.LiveStateEnded {
			return nil, ErrQuizEnded
		}
		return nil, ErrQuizAlreadyLive
	}
	if err != nil {
		return nil, err
	}

	quiz.LiveState = model.LiveStateRunning
	quiz.OwnerID = &ownerID
	quiz.CurrentQuestion = 0
	quiz.StartedAt = &session.StartedAt
	quiz.EndedAt = nil
	quiz.ActiveSessionID = &session.ID

	s.cacheSnapshot(ctx, inst, quiz)
	s.publish(ctx, inst, quiz, session.ID)
	s.enqueueNotify(ctx, inst, model.NotificationQuizStarted, quiz.Title, quizID)

	if autoAdvance {
		s.startRunner(inst, quiz, ownerID)
	}
	return session, nil
}

// Advance moves the question pointer forward by one. The increment happens
// in storage against the freshest pointer, so a timed-out-then-retried call
// cannot skip a question. Advancing past the last question routes to End.
func (s *LiveService) Advance(ctx context.Context, inst *model.Institute, quizID uuid.UUID, ownerID int) (*model.LiveSnapshot, error) {
	_, err := s.quizzes.AdvanceLive(ctx, inst.ID, quizID, ownerID)
	if errors.Is(err, repository.ErrStateConflict) {
		quiz, readErr := s.quizzes.GetByID(ctx, inst.ID, quizID)
		if readErr != nil {
			if repository.IsNotFound(readErr) {
				return nil, ErrQuizNotFound
			}
			return nil, readErr
		}
		switch {
		case quiz.LiveState != model.LiveStateRunning:
			return nil, ErrQuizNotRunning
		case quiz.OwnerID == nil || *quiz.OwnerID != ownerID:
			return nil, ErrNotQuizOwner
		default:
			// Pointer is on the last question already.
			return s.End(ctx, inst, quizID, ownerID)
		}
	}
	if err != nil {
		return nil, err
	}

	quiz, err := s.quizzes.GetByID(ctx, inst.ID, quizID)
	if err != nil {
		return nil, err
	}
	s.cacheSnapshot(ctx, inst, quiz)
	if quiz.ActiveSessionID != nil {
		s.publish(ctx, inst, quiz, *quiz.ActiveSessionID)
	}
	return buildSnapshot(quiz), nil
}

// End performs the RUNNING → ENDED transition. Idempotent: ending an
// already-ended quiz returns its final snapshot with the original end
// timestamp untouched.
func (s *LiveService) End(ctx context.Context, inst *model.Institute, quizID uuid.UUID, ownerID int) (*model.LiveSnapshot, error) {
	quiz, err := s.quizzes.GetByID(ctx, inst.ID, quizID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}
	if quiz.LiveState == model.LiveStateRunning && quiz.OwnerID != nil && *quiz.OwnerID != ownerID {
		return nil, ErrNotQuizOwner
	}

	endedAt, sessionID, err := s.quizzes.EndLive(ctx, inst.ID, quizID)
	if errors.Is(err, repository.ErrStateConflict) {
		fresh, readErr := s.quizzes.GetByID(ctx, inst.ID, quizID)
		if readErr != nil {
			return nil, readErr
		}
		if fresh.LiveState == model.LiveStateEnded {
			return buildSnapshot(fresh), nil
		}
		return nil, ErrQuizNotRunning
	}
	if err != nil {
		return nil, err
	}

	s.cancelRunner(quizID)

	quiz.LiveState = model.LiveStateEnded
	quiz.OwnerID = nil
	quiz.CurrentQuestion = 0
	quiz.EndedAt = &endedAt
	quiz.ActiveSessionID = &sessionID

	s.dropCache(ctx, inst, quizID)
	s.publish(ctx, inst, quiz, sessionID)
	s.enqueueNotify(ctx, inst, model.NotificationQuizEnded, quiz.Title, quizID)
	return buildSnapshot(quiz), nil
}

// State returns the participant view of a quiz's live state, always from a
// fresh read. A reconnecting client calls this once, then follows events.
func (s *LiveService) State(ctx context.Context, inst *model.Institute, quizID uuid.UUID) (*model.LiveSnapshot, error) {
	quiz, err := s.quizzes.GetByID(ctx, inst.ID, quizID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}
	return buildSnapshot(quiz), nil
}

// Join registers a user onto the quiz's participant list. Joining twice is
// a no-op; joining an ended quiz is rejected since the leaderboard already
// charged penalties against the registered set.
func (s *LiveService) Join(ctx context.Context, inst *model.Institute, quizID uuid.UUID, userID int) error {
	quiz, err := s.quizzes.GetByID(ctx, inst.ID, quizID)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrQuizNotFound
		}
		return err
	}
	if quiz.LiveState == model.LiveStateEnded {
		return ErrQuizEnded
	}
	return s.sessions.AddParticipant(ctx, quizID, userID)
}

// SubmitResponse records one participant's answer to the active question.
// One-shot per (session, question, user); the answer key and time are
// snapshotted into the response at submission time.
func (s *LiveService) SubmitResponse(ctx context.Context, inst *model.Institute, quizID uuid.UUID, userID int, req *model.SubmitResponseRequest) (*model.Response, error) {
	quiz, err := s.quizzes.GetByID(ctx, inst.ID, quizID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}
	if quiz.LiveState != model.LiveStateRunning || quiz.ActiveSessionID == nil {
		return nil, ErrQuizNotRunning
	}

	joined, err := s.sessions.IsParticipant(ctx, quizID, userID)
	if err != nil {
		return nil, err
	}
	if !joined {
		return nil, ErrNotParticipant
	}

	active, ok := quiz.ForParticipant(quiz.CurrentQuestion)
	if !ok || active.ID != req.QuestionID {
		return nil, ErrQuestionInactive
	}

	// Client-measured, clamped to the question's timer window.
	taken := req.TimeTakenMS
	if taken < 0 {
		taken = 0
	}
	if max := int64(quiz.TimerSeconds) * 1000; taken > max {
		taken = max
	}

	resp := &model.Response{
		SessionID:      *quiz.ActiveSessionID,
		QuestionID:     active.ID,
		UserID:         userID,
		SelectedOption: req.SelectedOption,
		CorrectOption:  quiz.Questions[quiz.CurrentQuestion].CorrectOption,
		TimeTakenMS:    taken,
		SubmittedAt:    time.Now(),
	}
	if err := s.sessions.InsertResponse(ctx, resp); err != nil {
		if errors.Is(err, repository.ErrDuplicateResponse) {
			return nil, ErrAlreadyAnswered
		}
		return nil, err
	}

	// Best effort; the storage key is what actually enforces one-shot.
	key := config.CacheKey.SessionAnswersKey(resp.SessionID.String(), userID)
	if err := s.rdb.SAdd(ctx, key, active.ID.String()).Err(); err == nil {
		s.rdb.Expire(ctx, key, liveStateTTL)
	}
	return resp, nil
}

// Report computes the derived report for one session. Pass sessionID nil to
// report on the quiz's most recent session.
func (s *LiveService) Report(ctx context.Context, inst *model.Institute, quizID uuid.UUID, sessionID *uuid.UUID) (*scoring.Report, error) {
	quiz, err := s.quizzes.GetByID(ctx, inst.ID, quizID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}

	var session *model.QuizSession
	if sessionID != nil {
		session, err = s.sessions.GetByID(ctx, inst.ID, *sessionID)
	} else {
		session, err = s.sessions.LatestByQuiz(ctx, inst.ID, quizID)
	}
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.QuizID != quizID {
		return nil, ErrSessionNotFound
	}

	responses, err := s.sessions.ListResponses(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	participants, err := s.sessions.ListParticipants(ctx, quizID)
	if err != nil {
		return nil, err
	}

	report := scoring.BuildReport(quiz, responses, participants, s.topN)
	return &report, nil
}

// Progress returns per-question response counts for the active session.
// Feeds the owner's monitor view.
func (s *LiveService) Progress(ctx context.Context, inst *model.Institute, quizID uuid.UUID) (map[uuid.UUID]int, error) {
	quiz, err := s.quizzes.GetByID(ctx, inst.ID, quizID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}
	if quiz.ActiveSessionID == nil {
		return nil, ErrQuizNotRunning
	}
	return s.sessions.CountResponsesByQuestion(ctx, *quiz.ActiveSessionID)
}

// Prewarm repopulates the live-state cache for every running quiz. Called
// once on startup so reconnecting clients don't stampede Postgres after a
// restart.
func (s *LiveService) Prewarm(ctx context.Context) error {
	running, err := s.quizzes.ListRunning(ctx)
	if err != nil {
		return err
	}
	for i := range running {
		quiz := &running[i]
		inst, err := s.institutes.GetByID(ctx, quiz.InstituteID)
		if err != nil {
			log.Error().Err(err).Int("institute_id", quiz.InstituteID).Msg("prewarm: institute lookup failed")
			continue
		}
		s.cacheSnapshot(ctx, inst, quiz)
	}
	log.Info().Int("count", len(running)).Msg("live state cache prewarmed")
	return nil
}

// Close cancels every auto-advance runner. Called on shutdown; the running
// quizzes themselves stay RUNNING in storage and survive the restart.
func (s *LiveService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, cancel := range s.runners {
		cancel()
		delete(s.runners, id)
	}
}

func (s *LiveService) startRunner(inst *model.Institute, quiz *model.Quiz, ownerID int) {
	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	if old, ok := s.runners[quiz.ID]; ok {
		old()
	}
	s.runners[quiz.ID] = cancel
	s.mu.Unlock()

	go s.runAutoAdvance(ctx, inst, quiz.ID, ownerID, quiz.TimerSeconds)
}

func (s *LiveService) cancelRunner(quizID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.runners[quizID]; ok {
		cancel()
		delete(s.runners, quizID)
	}
}

// runAutoAdvance drives question progression off the per-question timer.
// Each question gets exactly one expiry signal; Stop on every exit path
// keeps the underlying timers from leaking.
func (s *LiveService) runAutoAdvance(ctx context.Context, inst *model.Institute, quizID uuid.UUID, ownerID, timerSeconds int) {
	for {
		countdown := timer.NewSeconds(timerSeconds)
		select {
		case <-ctx.Done():
			countdown.Stop()
			return
		case <-countdown.Expired():
		}
		countdown.Stop()

		snap, err := s.Advance(context.Background(), inst, quizID, ownerID)
		if err != nil {
			if !errors.Is(err, ErrQuizNotRunning) {
				log.Error().Err(err).Str("quiz_id", quizID.String()).Msg("auto advance failed")
			}
			return
		}
		if snap.State != model.LiveStateRunning {
			return
		}
	}
}

func (s *LiveService) cacheSnapshot(ctx context.Context, inst *model.Institute, quiz *model.Quiz) {
	payload, err := json.Marshal(buildSnapshot(quiz))
	if err != nil {
		return
	}
	stateKey := config.CacheKey.QuizLiveStateKey(inst.Code, quiz.ID.String())
	timerKey := config.CacheKey.QuizTimerKey(inst.Code, quiz.ID.String())
	if err := s.rdb.Set(ctx, stateKey, payload, liveStateTTL).Err(); err != nil {
		log.Error().Err(err).Str("key", stateKey).Msg("live state cache write failed")
	}
	s.rdb.Set(ctx, timerKey, quiz.TimerSeconds, liveStateTTL)
}

func (s *LiveService) dropCache(ctx context.Context, inst *model.Institute, quizID uuid.UUID) {
	s.rdb.Del(ctx,
		config.CacheKey.QuizLiveStateKey(inst.Code, quizID.String()),
		config.CacheKey.QuizTimerKey(inst.Code, quizID.String()))
}

func (s *LiveService) publish(ctx context.Context, inst *model.Institute, quiz *model.Quiz, sessionID uuid.UUID) {
	event := model.LiveStateEvent{
		QuizID:        quiz.ID,
		SessionID:     sessionID,
		State:         quiz.LiveState,
		QuestionIndex: quiz.CurrentQuestion,
		TimerSeconds:  quiz.TimerSeconds,
		EndedAt:       quiz.EndedAt,
	}
	if quiz.LiveState == model.LiveStateRunning {
		if question, ok := quiz.ForParticipant(quiz.CurrentQuestion); ok {
			event.Question = &question
		}
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	channel := config.CacheKey.QuizChannel(inst.Code, quiz.ID.String())
	if err := s.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("live event publish failed")
	}
}

func (s *LiveService) enqueueNotify(ctx context.Context, inst *model.Institute, kind model.NotificationKind, title string, quizID uuid.UUID) {
	if s.queue == nil {
		return
	}
	body := "The quiz is live now. Join in!"
	if kind == model.NotificationQuizEnded {
		body = "The quiz has ended. Check the leaderboard!"
	}
	event := &model.NotifyEvent{
		InstituteID:   inst.ID,
		InstituteCode: inst.Code,
		Kind:          kind,
		Title:         title,
		Body:          body,
		RefID:         quizID.String(),
	}
	if err := s.queue.Enqueue(ctx, event); err != nil {
		log.Error().Err(err).Str("quiz_id", quizID.String()).Msg("notify enqueue failed")
	}
}

func buildSnapshot(quiz *model.Quiz) *model.LiveSnapshot {
	snap := &model.LiveSnapshot{
		QuizID:        quiz.ID,
		State:         quiz.LiveState,
		SessionID:     quiz.ActiveSessionID,
		QuestionIndex: quiz.CurrentQuestion,
		QuestionCount: len(quiz.Questions),
		TimerSeconds:  quiz.TimerSeconds,
		EndedAt:       quiz.EndedAt,
	}
	if quiz.LiveState == model.LiveStateRunning {
		if question, ok := quiz.ForParticipant(quiz.CurrentQuestion); ok {
			snap.Question = &question
		}
	}
	return snap
}
