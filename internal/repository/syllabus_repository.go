package repository

import (
	"context"

	"github.com/edumitra/edumitra-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SyllabusRepository handles the board → standard → subject → chapter tree.
type SyllabusRepository struct {
	pool *pgxpool.Pool
}

// NewSyllabusRepository creates a new SyllabusRepository.
func NewSyllabusRepository(pool *pgxpool.Pool) *SyllabusRepository {
	return &SyllabusRepository{pool: pool}
}

// ListBoards retrieves all boards of an institute.
func (r *SyllabusRepository) ListBoards(ctx context.Context, instituteID int) ([]model.Board, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, institute_id, name FROM boards
		 WHERE institute_id = $1 ORDER BY name ASC`, instituteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var boards []model.Board
	for rows.Next() {
		var b model.Board
		if err := rows.Scan(&b.ID, &b.InstituteID, &b.Name); err != nil {
			return nil, err
		}
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

// ListStandards retrieves the standards under a board.
func (r *SyllabusRepository) ListStandards(ctx context.Context, boardID int) ([]model.Standard, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, board_id, name FROM standards
		 WHERE board_id = $1 ORDER BY name ASC`, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var standards []model.Standard
	for rows.Next() {
		var s model.Standard
		if err := rows.Scan(&s.ID, &s.BoardID, &s.Name); err != nil {
			return nil, err
		}
		standards = append(standards, s)
	}
	return standards, rows.Err()
}

// ListSubjects retrieves the subjects under a standard.
func (r *SyllabusRepository) ListSubjects(ctx context.Context, standardID int) ([]model.Subject, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, standard_id, name FROM subjects
		 WHERE standard_id = $1 ORDER BY name ASC`, standardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []model.Subject
	for rows.Next() {
		var s model.Subject
		if err := rows.Scan(&s.ID, &s.StandardID, &s.Name); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

// ListChapters retrieves the chapters under a subject in authoring order.
func (r *SyllabusRepository) ListChapters(ctx context.Context, subjectID int) ([]model.Chapter, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, subject_id, name, order_num FROM chapters
		 WHERE subject_id = $1 ORDER BY order_num ASC, name ASC`, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chapters []model.Chapter
	for rows.Next() {
		var ch model.Chapter
		if err := rows.Scan(&ch.ID, &ch.SubjectID, &ch.Name, &ch.OrderNum); err != nil {
			return nil, err
		}
		chapters = append(chapters, ch)
	}
	return chapters, rows.Err()
}

// ResolvePath resolves a chapter ID to its full display path.
func (r *SyllabusRepository) ResolvePath(ctx context.Context, instituteID, chapterID int) (*model.SyllabusPath, error) {
	p := &model.SyllabusPath{}
	err := r.pool.QueryRow(ctx,
		`SELECT b.name, st.name, su.name, ch.name
		 FROM chapters ch
		 JOIN subjects su ON su.id = ch.subject_id
		 JOIN standards st ON st.id = su.standard_id
		 JOIN boards b ON b.id = st.board_id
		 WHERE ch.id = $1 AND b.institute_id = $2`,
		chapterID, instituteID,
	).Scan(&p.Board, &p.Standard, &p.Subject, &p.Chapter)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CreateBoard inserts a board.
func (r *SyllabusRepository) CreateBoard(ctx context.Context, b *model.Board) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO boards (institute_id, name) VALUES ($1, $2) RETURNING id`,
		b.InstituteID, b.Name).Scan(&b.ID)
}

// CreateStandard inserts a standard.
func (r *SyllabusRepository) CreateStandard(ctx context.Context, s *model.Standard) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO standards (board_id, name) VALUES ($1, $2) RETURNING id`,
		s.BoardID, s.Name).Scan(&s.ID)
}

// CreateSubject inserts a subject.
func (r *SyllabusRepository) CreateSubject(ctx context.Context, s *model.Subject) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO subjects (standard_id, name) VALUES ($1, $2) RETURNING id`,
		s.StandardID, s.Name).Scan(&s.ID)
}

// CreateChapter inserts a chapter.
func (r *SyllabusRepository) CreateChapter(ctx context.Context, ch *model.Chapter) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO chapters (subject_id, name, order_num) VALUES ($1, $2, $3) RETURNING id`,
		ch.SubjectID, ch.Name, ch.OrderNum).Scan(&ch.ID)
}

// DeleteChapter removes a chapter. Fails if quizzes still reference it (FK).
func (r *SyllabusRepository) DeleteChapter(ctx context.Context, chapterID int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM chapters WHERE id = $1`, chapterID)
	return err
}
