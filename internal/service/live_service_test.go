package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/edumitra/edumitra-backend/internal/config"
	"github.com/edumitra/edumitra-backend/internal/model"
	"github.com/edumitra/edumitra-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
)

// fakeStore is an in-memory stand-in for the quiz, session, and institute
// repositories. Transitions mirror the conditional-update semantics of the
// real SQL: a transition whose precondition fails reports ErrStateConflict.
type fakeStore struct {
	mu           sync.Mutex
	quizzes      map[uuid.UUID]*model.Quiz
	sessions     map[uuid.UUID]*model.QuizSession
	latest       map[uuid.UUID]uuid.UUID
	responses    map[respKey]model.Response
	order        []respKey
	participants map[uuid.UUID]map[int]time.Time
	names        map[int]string
	institutes   map[int]*model.Institute
}

type respKey struct {
	session  uuid.UUID
	question uuid.UUID
	user     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		quizzes:      make(map[uuid.UUID]*model.Quiz),
		sessions:     make(map[uuid.UUID]*model.QuizSession),
		latest:       make(map[uuid.UUID]uuid.UUID),
		responses:    make(map[respKey]model.Response),
		participants: make(map[uuid.UUID]map[int]time.Time),
		names:        make(map[int]string),
		institutes:   make(map[int]*model.Institute),
	}
}

func (f *fakeStore) GetByID(_ context.Context, instituteID int, id uuid.UUID) (*model.Quiz, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.quizzes[id]
	if !ok || q.InstituteID != instituteID {
		return nil, pgx.ErrNoRows
	}
	cp := *q
	return &cp, nil
}

func (f *fakeStore) StartLive(_ context.Context, instituteID int, quizID uuid.UUID, ownerID int) (*model.QuizSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.quizzes[quizID]
	if !ok || q.InstituteID != instituteID {
		return nil, pgx.ErrNoRows
	}
	if q.LiveState != model.LiveStateNotStarted {
		return nil, repository.ErrStateConflict
	}

	session := &model.QuizSession{
		ID:          uuid.New(),
		QuizID:      quizID,
		InstituteID: instituteID,
		OwnerID:     ownerID,
		StartedAt:   time.Now(),
	}
	f.sessions[session.ID] = session
	f.latest[quizID] = session.ID

	q.LiveState = model.LiveStateRunning
	q.OwnerID = &ownerID
	q.CurrentQuestion = 0
	q.StartedAt = &session.StartedAt
	q.EndedAt = nil
	q.ActiveSessionID = &session.ID
	return session, nil
}

func (f *fakeStore) AdvanceLive(_ context.Context, instituteID int, quizID uuid.UUID, ownerID int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.quizzes[quizID]
	if !ok || q.InstituteID != instituteID || q.LiveState != model.LiveStateRunning ||
		q.OwnerID == nil || *q.OwnerID != ownerID || q.CurrentQuestion+1 >= len(q.Questions) {
		return 0, repository.ErrStateConflict
	}
	q.CurrentQuestion++
	return q.CurrentQuestion, nil
}

func (f *fakeStore) EndLive(_ context.Context, instituteID int, quizID uuid.UUID) (time.Time, uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.quizzes[quizID]
	if !ok || q.InstituteID != instituteID || q.LiveState != model.LiveStateRunning {
		return time.Time{}, uuid.Nil, repository.ErrStateConflict
	}
	endedAt := time.Now()
	sessionID := *q.ActiveSessionID

	q.LiveState = model.LiveStateEnded
	q.OwnerID = nil
	q.CurrentQuestion = 0
	q.EndedAt = &endedAt
	f.sessions[sessionID].EndedAt = &endedAt
	return endedAt, sessionID, nil
}

func (f *fakeStore) ListRunning(_ context.Context) ([]model.Quiz, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var running []model.Quiz
	for _, q := range f.quizzes {
		if q.LiveState == model.LiveStateRunning {
			running = append(running, *q)
		}
	}
	return running, nil
}

func (f *fakeStore) GetSessionByID(_ context.Context, instituteID int, id uuid.UUID) (*model.QuizSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok || s.InstituteID != instituteID {
		return nil, pgx.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStore) LatestByQuiz(_ context.Context, instituteID int, quizID uuid.UUID) (*model.QuizSession, error) {
	f.mu.Lock()
	id, ok := f.latest[quizID]
	f.mu.Unlock()
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return f.GetSessionByID(context.Background(), instituteID, id)
}

func (f *fakeStore) InsertResponse(_ context.Context, resp *model.Response) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := respKey{resp.SessionID, resp.QuestionID, resp.UserID}
	if _, dup := f.responses[key]; dup {
		return repository.ErrDuplicateResponse
	}
	f.responses[key] = *resp
	f.order = append(f.order, key)
	return nil
}

func (f *fakeStore) ListResponses(_ context.Context, sessionID uuid.UUID) ([]model.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Response
	for _, key := range f.order {
		if key.session == sessionID {
			out = append(out, f.responses[key])
		}
	}
	return out, nil
}

func (f *fakeStore) CountResponsesByQuestion(_ context.Context, sessionID uuid.UUID) (map[uuid.UUID]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[uuid.UUID]int)
	for key := range f.responses {
		if key.session == sessionID {
			counts[key.question]++
		}
	}
	return counts, nil
}

func (f *fakeStore) AddParticipant(_ context.Context, quizID uuid.UUID, userID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.participants[quizID] == nil {
		f.participants[quizID] = make(map[int]time.Time)
	}
	if _, ok := f.participants[quizID][userID]; !ok {
		f.participants[quizID][userID] = time.Now()
	}
	return nil
}

func (f *fakeStore) IsParticipant(_ context.Context, quizID uuid.UUID, userID int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.participants[quizID][userID]
	return ok, nil
}

func (f *fakeStore) ListParticipants(_ context.Context, quizID uuid.UUID) ([]model.QuizParticipant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.QuizParticipant
	for userID, joined := range f.participants[quizID] {
		name := f.names[userID]
		if name == "" {
			name = fmt.Sprintf("user-%d", userID)
		}
		out = append(out, model.QuizParticipant{QuizID: quizID, UserID: userID, Name: name, JoinedAt: joined})
	}
	return out, nil
}

func (f *fakeStore) GetInstituteByID(_ context.Context, id int) (*model.Institute, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inst, ok := f.institutes[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return inst, nil
}

// Adapters so one fixture satisfies all three store interfaces despite the
// overlapping GetByID names.
type sessionStoreAdapter struct{ *fakeStore }

func (a sessionStoreAdapter) GetByID(ctx context.Context, instituteID int, id uuid.UUID) (*model.QuizSession, error) {
	return a.GetSessionByID(ctx, instituteID, id)
}

type instituteStoreAdapter struct{ *fakeStore }

func (a instituteStoreAdapter) GetByID(ctx context.Context, id int) (*model.Institute, error) {
	return a.GetInstituteByID(ctx, id)
}

type fakeQueue struct {
	mu     sync.Mutex
	events []*model.NotifyEvent
}

func (q *fakeQueue) Enqueue(_ context.Context, event *model.NotifyEvent) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, event)
	return nil
}

func (q *fakeQueue) kinds() []model.NotificationKind {
	q.mu.Lock()
	defer q.mu.Unlock()
	var kinds []model.NotificationKind
	for _, e := range q.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func newLiveFixture(t *testing.T) (*LiveService, *fakeStore, *fakeQueue, *redis.Client, *model.Institute) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	store := newFakeStore()
	inst := &model.Institute{ID: 1, Code: "dps", Name: "Demo Public School", Active: true}
	store.institutes[inst.ID] = inst

	queue := &fakeQueue{}
	svc := NewLiveService(store, sessionStoreAdapter{store}, instituteStoreAdapter{store}, rdb, queue, 5)
	t.Cleanup(svc.Close)
	return svc, store, queue, rdb, inst
}

func seedQuiz(store *fakeStore, instituteID, questionCount, timerSeconds int) *model.Quiz {
	questions := make([]model.Question, 0, questionCount)
	for i := 0; i < questionCount; i++ {
		questions = append(questions, model.Question{
			ID:            uuid.New(),
			Prompt:        fmt.Sprintf("Question %d", i+1),
			Options:       []string{"A", "B", "C", "D"},
			CorrectOption: i % 4,
		})
	}
	quiz := &model.Quiz{
		ID:           uuid.New(),
		InstituteID:  instituteID,
		Title:        "Algebra Basics",
		AuthorID:     10,
		Questions:    questions,
		TimerSeconds: timerSeconds,
		ScheduledAt:  time.Now(),
		LiveState:    model.LiveStateNotStarted,
	}
	store.quizzes[quiz.ID] = quiz
	return quiz
}

func TestStartMintsSessionAndPublishes(t *testing.T) {
	svc, store, queue, rdb, inst := newLiveFixture(t)
	quiz := seedQuiz(store, inst.ID, 3, 30)
	ctx := context.Background()

	sub := rdb.Subscribe(ctx, config.CacheKey.QuizChannel(inst.Code, quiz.ID.String()))
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	session, err := svc.Start(ctx, inst, quiz.ID, 10, false)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if session.ID == uuid.Nil {
		t.Fatal("session ID not minted")
	}

	snap, err := svc.State(ctx, inst, quiz.ID)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if snap.State != model.LiveStateRunning {
		t.Fatalf("state = %s, want RUNNING", snap.State)
	}
	if snap.QuestionIndex != 0 || snap.Question == nil {
		t.Fatalf("expected question 0 exposed, got index=%d question=%v", snap.QuestionIndex, snap.Question)
	}
	if snap.SessionID == nil || *snap.SessionID != session.ID {
		t.Fatal("snapshot does not carry the minted session ID")
	}

	msg, err := sub.ReceiveTimeout(ctx, 2*time.Second)
	if err != nil {
		t.Fatalf("receive event: %v", err)
	}
	var event model.LiveStateEvent
	if err := json.Unmarshal([]byte(msg.(*redis.Message).Payload), &event); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if event.State != model.LiveStateRunning || event.QuestionIndex != 0 {
		t.Fatalf("unexpected event %+v", event)
	}
	if event.Question == nil {
		t.Fatal("event missing question payload")
	}

	if kinds := queue.kinds(); len(kinds) != 1 || kinds[0] != model.NotificationQuizStarted {
		t.Fatalf("notify kinds = %v", kinds)
	}
}

func TestStartLosesRaceExactlyOnce(t *testing.T) {
	svc, store, _, _, inst := newLiveFixture(t)
	quiz := seedQuiz(store, inst.ID, 2, 10)
	ctx := context.Background()

	const racers = 8
	var wg sync.WaitGroup
	results := make(chan error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(owner int) {
			defer wg.Done()
			_, err := svc.Start(ctx, inst, quiz.ID, owner, false)
			results <- err
		}(100 + i)
	}
	wg.Wait()
	close(results)

	wins, losses := 0, 0
	for err := range results {
		switch err {
		case nil:
			wins++
		case ErrQuizAlreadyLive:
			losses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || losses != racers-1 {
		t.Fatalf("wins=%d losses=%d, want exactly one winner", wins, losses)
	}
}

func TestStartRejectsEndedAndEmptyQuiz(t *testing.T) {
	svc, store, _, _, inst := newLiveFixture(t)
	ctx := context.Background()

	empty := seedQuiz(store, inst.ID, 0, 10)
	if _, err := svc.Start(ctx, inst, empty.ID, 10, false); err != ErrNoQuestions {
		t.Fatalf("empty quiz start err = %v, want ErrNoQuestions", err)
	}

	quiz := seedQuiz(store, inst.ID, 2, 10)
	if _, err := svc.Start(ctx, inst, quiz.ID, 10, false); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := svc.End(ctx, inst, quiz.ID, 10); err != nil {
		t.Fatalf("End: %v", err)
	}
	if _, err := svc.Start(ctx, inst, quiz.ID, 10, false); err != ErrQuizEnded {
		t.Fatalf("ended quiz start err = %v, want ErrQuizEnded", err)
	}
}

func TestAdvanceRoutesToEndOnLastQuestion(t *testing.T) {
	svc, store, queue, _, inst := newLiveFixture(t)
	quiz := seedQuiz(store, inst.ID, 3, 10)
	ctx := context.Background()

	if _, err := svc.Start(ctx, inst, quiz.ID, 10, false); err != nil {
		t.Fatalf("Start: %v", err)
	}

	snap, err := svc.Advance(ctx, inst, quiz.ID, 10)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if snap.QuestionIndex != 1 || snap.State != model.LiveStateRunning {
		t.Fatalf("after advance: index=%d state=%s", snap.QuestionIndex, snap.State)
	}

	if _, err := svc.Advance(ctx, inst, quiz.ID, 10); err != nil {
		t.Fatalf("Advance to last: %v", err)
	}

	// Pointer sits on the last question; the next advance must end the run.
	snap, err = svc.Advance(ctx, inst, quiz.ID, 10)
	if err != nil {
		t.Fatalf("final Advance: %v", err)
	}
	if snap.State != model.LiveStateEnded {
		t.Fatalf("state = %s, want ENDED", snap.State)
	}
	if snap.EndedAt == nil {
		t.Fatal("ended snapshot missing end timestamp")
	}

	kinds := queue.kinds()
	if len(kinds) != 2 || kinds[1] != model.NotificationQuizEnded {
		t.Fatalf("notify kinds = %v", kinds)
	}
}

func TestAdvanceGuardsOwnerAndState(t *testing.T) {
	svc, store, _, _, inst := newLiveFixture(t)
	quiz := seedQuiz(store, inst.ID, 3, 10)
	ctx := context.Background()

	if _, err := svc.Advance(ctx, inst, quiz.ID, 10); err != ErrQuizNotRunning {
		t.Fatalf("advance before start err = %v, want ErrQuizNotRunning", err)
	}

	if _, err := svc.Start(ctx, inst, quiz.ID, 10, false); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := svc.Advance(ctx, inst, quiz.ID, 99); err != ErrNotQuizOwner {
		t.Fatalf("non-owner advance err = %v, want ErrNotQuizOwner", err)
	}
}

func TestEndIsIdempotent(t *testing.T) {
	svc, store, _, _, inst := newLiveFixture(t)
	quiz := seedQuiz(store, inst.ID, 2, 10)
	ctx := context.Background()

	if _, err := svc.Start(ctx, inst, quiz.ID, 10, false); err != nil {
		t.Fatalf("Start: %v", err)
	}
	first, err := svc.End(ctx, inst, quiz.ID, 10)
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	second, err := svc.End(ctx, inst, quiz.ID, 10)
	if err != nil {
		t.Fatalf("second End: %v", err)
	}
	if !first.EndedAt.Equal(*second.EndedAt) {
		t.Fatalf("end timestamp moved: %v then %v", first.EndedAt, second.EndedAt)
	}
	if second.SessionID == nil || *second.SessionID != *first.SessionID {
		t.Fatal("session identity changed across repeated End")
	}
}

func TestSubmitResponseRules(t *testing.T) {
	svc, store, _, _, inst := newLiveFixture(t)
	quiz := seedQuiz(store, inst.ID, 2, 10)
	ctx := context.Background()

	if _, err := svc.Start(ctx, inst, quiz.ID, 10, false); err != nil {
		t.Fatalf("Start: %v", err)
	}
	active := quiz.Questions[0]

	req := &model.SubmitResponseRequest{QuestionID: active.ID, SelectedOption: 1, TimeTakenMS: 4000}
	if _, err := svc.SubmitResponse(ctx, inst, quiz.ID, 7, req); err != ErrNotParticipant {
		t.Fatalf("non-participant err = %v, want ErrNotParticipant", err)
	}

	if err := svc.Join(ctx, inst, quiz.ID, 7); err != nil {
		t.Fatalf("Join: %v", err)
	}

	wrong := &model.SubmitResponseRequest{QuestionID: quiz.Questions[1].ID, SelectedOption: 0, TimeTakenMS: 100}
	if _, err := svc.SubmitResponse(ctx, inst, quiz.ID, 7, wrong); err != ErrQuestionInactive {
		t.Fatalf("inactive question err = %v, want ErrQuestionInactive", err)
	}

	// Reported time beyond the timer window is clamped, not rejected.
	req.TimeTakenMS = 99999
	resp, err := svc.SubmitResponse(ctx, inst, quiz.ID, 7, req)
	if err != nil {
		t.Fatalf("SubmitResponse: %v", err)
	}
	if resp.TimeTakenMS != 10000 {
		t.Fatalf("time taken = %d, want clamped to 10000", resp.TimeTakenMS)
	}
	if resp.CorrectOption != active.CorrectOption {
		t.Fatalf("correct option not snapshotted: %d", resp.CorrectOption)
	}

	if _, err := svc.SubmitResponse(ctx, inst, quiz.ID, 7, req); err != ErrAlreadyAnswered {
		t.Fatalf("duplicate err = %v, want ErrAlreadyAnswered", err)
	}
}

func TestReportThroughService(t *testing.T) {
	svc, store, _, _, inst := newLiveFixture(t)
	quiz := seedQuiz(store, inst.ID, 2, 10)
	store.names[7] = "alice"
	store.names[8] = "bob"
	ctx := context.Background()

	if _, err := svc.Start(ctx, inst, quiz.ID, 10, false); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for _, userID := range []int{7, 8} {
		if err := svc.Join(ctx, inst, quiz.ID, userID); err != nil {
			t.Fatalf("Join %d: %v", userID, err)
		}
	}

	correct := quiz.Questions[0].CorrectOption
	if _, err := svc.SubmitResponse(ctx, inst, quiz.ID, 7, &model.SubmitResponseRequest{
		QuestionID: quiz.Questions[0].ID, SelectedOption: correct, TimeTakenMS: 3000,
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.End(ctx, inst, quiz.ID, 10); err != nil {
		t.Fatalf("End: %v", err)
	}

	report, err := svc.Report(ctx, inst, quiz.ID, nil)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if len(report.Leaderboard) != 2 {
		t.Fatalf("leaderboard size = %d", len(report.Leaderboard))
	}
	if report.Leaderboard[0].Name != "alice" || report.Leaderboard[0].Correct != 1 {
		t.Fatalf("top entry = %+v", report.Leaderboard[0])
	}
	// alice: 3s answered + 10s penalty for q2; bob: 2 × 10s penalties.
	if report.Leaderboard[0].TotalTimeSeconds != 13 {
		t.Fatalf("alice time = %d, want 13", report.Leaderboard[0].TotalTimeSeconds)
	}
	if report.Leaderboard[1].TotalTimeSeconds != 20 {
		t.Fatalf("bob time = %d, want 20", report.Leaderboard[1].TotalTimeSeconds)
	}
	if len(report.Questions) != 2 {
		t.Fatalf("question breakdowns = %d", len(report.Questions))
	}
}

func TestAutoAdvanceRunsToCompletion(t *testing.T) {
	svc, store, _, _, inst := newLiveFixture(t)
	quiz := seedQuiz(store, inst.ID, 3, 1)
	ctx := context.Background()

	if _, err := svc.Start(ctx, inst, quiz.ID, 10, true); err != nil {
		t.Fatalf("Start: %v", err)
	}

	deadline := time.After(6 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatal("auto-advance did not end the quiz in time")
		case <-time.After(100 * time.Millisecond):
		}
		snap, err := svc.State(ctx, inst, quiz.ID)
		if err != nil {
			t.Fatalf("State: %v", err)
		}
		if snap.State == model.LiveStateEnded {
			return
		}
	}
}

func TestStartDropsCacheOnEnd(t *testing.T) {
	svc, store, _, rdb, inst := newLiveFixture(t)
	quiz := seedQuiz(store, inst.ID, 2, 10)
	ctx := context.Background()

	if _, err := svc.Start(ctx, inst, quiz.ID, 10, false); err != nil {
		t.Fatalf("Start: %v", err)
	}
	key := config.CacheKey.QuizLiveStateKey(inst.Code, quiz.ID.String())
	if err := rdb.Get(ctx, key).Err(); err != nil {
		t.Fatalf("live state not cached: %v", err)
	}

	if _, err := svc.End(ctx, inst, quiz.ID, 10); err != nil {
		t.Fatalf("End: %v", err)
	}
	if err := rdb.Get(ctx, key).Err(); err != redis.Nil {
		t.Fatalf("live state cache not dropped: %v", err)
	}
}
