package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/edumitra/edumitra-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrStateConflict is returned when a live transition's conditional update
// matched zero rows: the quiz was not in the state the transition requires.
var ErrStateConflict = errors.New("quiz live state conflict")

// QuizRepository handles quiz document data access, including the
// conditional updates that implement live-session transitions.
type QuizRepository struct {
	pool *pgxpool.Pool
}

// NewQuizRepository creates a new QuizRepository.
func NewQuizRepository(pool *pgxpool.Pool) *QuizRepository {
	return &QuizRepository{pool: pool}
}

const quizColumns = `id, institute_id, title, author_id, board_id, standard_id, subject_id,
	chapter_id, questions, timer_seconds, scheduled_at, live_state, owner_id,
	current_question, started_at, ended_at, active_session_id, created_at, updated_at`

func scanQuiz(row pgx.Row) (*model.Quiz, error) {
	q := &model.Quiz{}
	var questionsJSON []byte
	err := row.Scan(&q.ID, &q.InstituteID, &q.Title, &q.AuthorID, &q.BoardID, &q.StandardID,
		&q.SubjectID, &q.ChapterID, &questionsJSON, &q.TimerSeconds, &q.ScheduledAt,
		&q.LiveState, &q.OwnerID, &q.CurrentQuestion, &q.StartedAt, &q.EndedAt,
		&q.ActiveSessionID, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(questionsJSON, &q.Questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return q, nil
}

// GetByID retrieves a quiz scoped to an institute.
func (r *QuizRepository) GetByID(ctx context.Context, instituteID int, id uuid.UUID) (*model.Quiz, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+quizColumns+` FROM quizzes WHERE id = $1 AND institute_id = $2`, id, instituteID)
	return scanQuiz(row)
}

// ListByChapter retrieves quizzes for a chapter with pagination.
// Pass chapterID=0 to list across the whole institute.
func (r *QuizRepository) ListByChapter(ctx context.Context, instituteID, chapterID, limit, offset int) ([]model.Quiz, int, error) {
	where := ` WHERE institute_id = $1`
	args := []any{instituteID}
	if chapterID > 0 {
		args = append(args, chapterID)
		where += fmt.Sprintf(" AND chapter_id = $%d", len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM quizzes`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + quizColumns + ` FROM quizzes` + where +
		fmt.Sprintf(` ORDER BY scheduled_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var quizzes []model.Quiz
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, 0, err
		}
		quizzes = append(quizzes, *q)
	}
	return quizzes, total, rows.Err()
}

// Create inserts a new quiz document.
func (r *QuizRepository) Create(ctx context.Context, q *model.Quiz) error {
	questionsJSON, err := json.Marshal(q.Questions)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO quizzes (institute_id, title, author_id, board_id, standard_id, subject_id,
		                      chapter_id, questions, timer_seconds, scheduled_at, live_state)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, created_at, updated_at`,
		q.InstituteID, q.Title, q.AuthorID, q.BoardID, q.StandardID, q.SubjectID,
		q.ChapterID, questionsJSON, q.TimerSeconds, q.ScheduledAt, model.LiveStateNotStarted,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

// Update rewrites authoring fields. Conditioned on NOT_STARTED so a quiz
// cannot be edited out from under a running session.
func (r *QuizRepository) Update(ctx context.Context, q *model.Quiz) error {
	questionsJSON, err := json.Marshal(q.Questions)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE quizzes
		 SET title = $1, chapter_id = $2, questions = $3, timer_seconds = $4,
		     scheduled_at = $5, updated_at = NOW()
		 WHERE id = $6 AND institute_id = $7 AND live_state = $8`,
		q.Title, q.ChapterID, questionsJSON, q.TimerSeconds, q.ScheduledAt,
		q.ID, q.InstituteID, model.LiveStateNotStarted)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStateConflict
	}
	return nil
}

// Delete removes a quiz that is not currently running.
func (r *QuizRepository) Delete(ctx context.Context, instituteID int, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM quizzes WHERE id = $1 AND institute_id = $2 AND live_state <> $3`,
		id, instituteID, model.LiveStateRunning)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStateConflict
	}
	return nil
}

// StartLive performs the start transition as a single compare-and-swap:
// the UPDATE is conditioned on NOT_STARTED, so of two hosts racing to
// start, exactly one wins and the loser observes ErrStateConflict. The
// session row is minted in the same transaction, giving the run an
// immutable identity independent of the quiz's mutable schedule.
func (r *QuizRepository) StartLive(ctx context.Context, instituteID int, quizID uuid.UUID, ownerID int) (*model.QuizSession, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	session := &model.QuizSession{
		QuizID:      quizID,
		InstituteID: instituteID,
		OwnerID:     ownerID,
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO quiz_sessions (quiz_id, institute_id, owner_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, started_at`,
		quizID, instituteID, ownerID,
	).Scan(&session.ID, &session.StartedAt)
	if err != nil {
		return nil, err
	}

	tag, err := tx.Exec(ctx,
		`UPDATE quizzes
		 SET live_state = $1, owner_id = $2, current_question = 0,
		     started_at = $3, ended_at = NULL, scheduled_at = $3,
		     active_session_id = $4, updated_at = NOW()
		 WHERE id = $5 AND institute_id = $6 AND live_state = $7`,
		model.LiveStateRunning, ownerID, session.StartedAt, session.ID,
		quizID, instituteID, model.LiveStateNotStarted)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrStateConflict
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return session, nil
}

// AdvanceLive increments the question pointer in SQL, so a retried call
// advances from the freshest stored pointer instead of double-advancing
// from a stale client copy. Returns the new pointer. ErrStateConflict
// means the quiz is no longer running, the caller is not the owner, or the
// pointer is already at the last question (route to end).
func (r *QuizRepository) AdvanceLive(ctx context.Context, instituteID int, quizID uuid.UUID, ownerID int) (int, error) {
	var current int
	err := r.pool.QueryRow(ctx,
		`UPDATE quizzes
		 SET current_question = current_question + 1, updated_at = NOW()
		 WHERE id = $1 AND institute_id = $2 AND live_state = $3 AND owner_id = $4
		   AND current_question + 1 < jsonb_array_length(questions)
		 RETURNING current_question`,
		quizID, instituteID, model.LiveStateRunning, ownerID,
	).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrStateConflict
	}
	if err != nil {
		return 0, err
	}
	return current, nil
}

// EndLive performs the end transition. Conditioned on RUNNING, so a second
// call matches zero rows and the first ended_at stands untouched; callers
// treat ErrStateConflict from an already-ended quiz as success.
func (r *QuizRepository) EndLive(ctx context.Context, instituteID int, quizID uuid.UUID) (time.Time, uuid.UUID, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return time.Time{}, uuid.Nil, err
	}
	defer tx.Rollback(ctx)

	var endedAt time.Time
	var sessionID uuid.UUID
	err = tx.QueryRow(ctx,
		`UPDATE quizzes
		 SET live_state = $1, owner_id = NULL, current_question = 0,
		     ended_at = NOW(), updated_at = NOW()
		 WHERE id = $2 AND institute_id = $3 AND live_state = $4
		 RETURNING ended_at, active_session_id`,
		model.LiveStateEnded, quizID, instituteID, model.LiveStateRunning,
	).Scan(&endedAt, &sessionID)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, uuid.Nil, ErrStateConflict
	}
	if err != nil {
		return time.Time{}, uuid.Nil, err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE quiz_sessions SET ended_at = $1 WHERE id = $2`, endedAt, sessionID); err != nil {
		return time.Time{}, uuid.Nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return time.Time{}, uuid.Nil, err
	}
	return endedAt, sessionID, nil
}

// Reschedule gives an ended quiz a new date and resets it to NOT_STARTED.
// This is the only way back from ENDED; the old session row and its
// responses stay behind under their own session ID.
func (r *QuizRepository) Reschedule(ctx context.Context, instituteID int, id uuid.UUID, scheduledAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE quizzes
		 SET scheduled_at = $1, live_state = $2, owner_id = NULL, current_question = 0,
		     started_at = NULL, ended_at = NULL, active_session_id = NULL, updated_at = NOW()
		 WHERE id = $3 AND institute_id = $4 AND live_state = $5`,
		scheduledAt, model.LiveStateNotStarted, id, instituteID, model.LiveStateEnded)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStateConflict
	}
	return nil
}

// ListRunning returns all quizzes currently in RUNNING state.
// Used for live-state cache prewarming on application startup.
func (r *QuizRepository) ListRunning(ctx context.Context) ([]model.Quiz, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+quizColumns+` FROM quizzes WHERE live_state = $1`, model.LiveStateRunning)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quizzes []model.Quiz
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, *q)
	}
	return quizzes, rows.Err()
}
