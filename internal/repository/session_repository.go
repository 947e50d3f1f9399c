package repository

import (
	"context"
	"errors"

	"github.com/edumitra/edumitra-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicateResponse is returned when a participant already answered the
// question within the session. Responses are write-once by key.
var ErrDuplicateResponse = errors.New("response already recorded")

// SessionRepository handles quiz session, response, and participant data access.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// GetByID retrieves a session scoped to an institute.
func (r *SessionRepository) GetByID(ctx context.Context, instituteID int, id uuid.UUID) (*model.QuizSession, error) {
	s := &model.QuizSession{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, quiz_id, institute_id, owner_id, started_at, ended_at
		 FROM quiz_sessions WHERE id = $1 AND institute_id = $2`, id, instituteID,
	).Scan(&s.ID, &s.QuizID, &s.InstituteID, &s.OwnerID, &s.StartedAt, &s.EndedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// LatestByQuiz retrieves the most recent session for a quiz, running or ended.
func (r *SessionRepository) LatestByQuiz(ctx context.Context, instituteID int, quizID uuid.UUID) (*model.QuizSession, error) {
	s := &model.QuizSession{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, quiz_id, institute_id, owner_id, started_at, ended_at
		 FROM quiz_sessions
		 WHERE quiz_id = $1 AND institute_id = $2
		 ORDER BY started_at DESC LIMIT 1`, quizID, instituteID,
	).Scan(&s.ID, &s.QuizID, &s.InstituteID, &s.OwnerID, &s.StartedAt, &s.EndedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// InsertResponse records a participant's answer. The primary key is
// (session_id, question_id, user_id); ON CONFLICT DO NOTHING turns a
// resubmission into ErrDuplicateResponse instead of an overwrite, which is
// what makes submission one-shot without any locking.
func (r *SessionRepository) InsertResponse(ctx context.Context, resp *model.Response) error {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO responses (session_id, question_id, user_id, selected_option,
		                        correct_option, time_taken_ms)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (session_id, question_id, user_id) DO NOTHING`,
		resp.SessionID, resp.QuestionID, resp.UserID, resp.SelectedOption,
		resp.CorrectOption, resp.TimeTakenMS)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDuplicateResponse
	}
	return nil
}

// ListResponses retrieves all responses recorded for one session.
func (r *SessionRepository) ListResponses(ctx context.Context, sessionID uuid.UUID) ([]model.Response, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT session_id, question_id, user_id, selected_option, correct_option,
		        time_taken_ms, submitted_at
		 FROM responses WHERE session_id = $1`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var responses []model.Response
	for rows.Next() {
		var resp model.Response
		if err := rows.Scan(&resp.SessionID, &resp.QuestionID, &resp.UserID,
			&resp.SelectedOption, &resp.CorrectOption, &resp.TimeTakenMS, &resp.SubmittedAt); err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, rows.Err()
}

// CountResponsesByQuestion returns per-question response counts for a
// session, keyed by question ID. Feeds the owner's live monitor.
func (r *SessionRepository) CountResponsesByQuestion(ctx context.Context, sessionID uuid.UUID) (map[uuid.UUID]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT question_id, COUNT(*) FROM responses
		 WHERE session_id = $1 GROUP BY question_id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int)
	for rows.Next() {
		var qid uuid.UUID
		var n int
		if err := rows.Scan(&qid, &n); err != nil {
			return nil, err
		}
		counts[qid] = n
	}
	return counts, rows.Err()
}

// AddParticipant registers a user onto a quiz's participant list.
// Re-joining is a no-op.
func (r *SessionRepository) AddParticipant(ctx context.Context, quizID uuid.UUID, userID int) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO quiz_participants (quiz_id, user_id)
		 VALUES ($1, $2)
		 ON CONFLICT (quiz_id, user_id) DO NOTHING`, quizID, userID)
	return err
}

// IsParticipant reports whether a user is on a quiz's participant list.
func (r *SessionRepository) IsParticipant(ctx context.Context, quizID uuid.UUID, userID int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM quiz_participants WHERE quiz_id = $1 AND user_id = $2)`,
		quizID, userID).Scan(&exists)
	return exists, err
}

// ListParticipants retrieves a quiz's participant list with display names.
func (r *SessionRepository) ListParticipants(ctx context.Context, quizID uuid.UUID) ([]model.QuizParticipant, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.quiz_id, p.user_id, u.name, p.joined_at
		 FROM quiz_participants p
		 JOIN users u ON u.id = p.user_id
		 WHERE p.quiz_id = $1
		 ORDER BY p.joined_at ASC`, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []model.QuizParticipant
	for rows.Next() {
		var p model.QuizParticipant
		if err := rows.Scan(&p.QuizID, &p.UserID, &p.Name, &p.JoinedAt); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

// HasAnswered reports whether a response exists for the triple key.
func (r *SessionRepository) HasAnswered(ctx context.Context, sessionID, questionID uuid.UUID, userID int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM responses
		  WHERE session_id = $1 AND question_id = $2 AND user_id = $3)`,
		sessionID, questionID, userID).Scan(&exists)
	return exists, err
}

// IsNotFound reports whether err is the driver's no-rows sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
