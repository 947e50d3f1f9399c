package repository

import (
	"context"

	"github.com/edumitra/edumitra-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostRepository handles news/event feed data access.
type PostRepository struct {
	pool *pgxpool.Pool
}

// NewPostRepository creates a new PostRepository.
func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

// Create inserts a feed post.
func (r *PostRepository) Create(ctx context.Context, p *model.Post) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO posts (institute_id, author_id, kind, title, body, event_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		p.InstituteID, p.AuthorID, p.Kind, p.Title, p.Body, p.EventAt,
	).Scan(&p.ID, &p.CreatedAt)
}

// ListByInstitute retrieves the feed newest-first with pagination.
// Pass an empty kind to mix news and events.
func (r *PostRepository) ListByInstitute(ctx context.Context, instituteID int, kind model.PostKind, limit, offset int) ([]model.Post, int, error) {
	where := ` WHERE institute_id = $1`
	args := []any{instituteID}
	if kind != "" {
		args = append(args, kind)
		where += ` AND kind = $2`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM posts`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, institute_id, author_id, kind, title, body, event_at, created_at
		 FROM posts` + where +
		` ORDER BY created_at DESC LIMIT $` + itoa(len(args)+1) + ` OFFSET $` + itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.InstituteID, &p.AuthorID, &p.Kind, &p.Title,
			&p.Body, &p.EventAt, &p.CreatedAt); err != nil {
			return nil, 0, err
		}
		posts = append(posts, p)
	}
	return posts, total, rows.Err()
}

// Delete removes a post from the feed.
func (r *PostRepository) Delete(ctx context.Context, instituteID int, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM posts WHERE id = $1 AND institute_id = $2`, id, instituteID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStateConflict
	}
	return nil
}
