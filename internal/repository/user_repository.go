package repository

import (
	"context"

	"github.com/edumitra/edumitra-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles user account data access.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, institute_id, name, email, password_hash, role, status, standard_id, created_at, updated_at`

// GetByEmail retrieves a user by email within an institute.
func (r *UserRepository) GetByEmail(ctx context.Context, instituteID int, email string) (*model.User, error) {
	u := &model.User{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE institute_id = $1 AND email = $2`,
		instituteID, email,
	).Scan(&u.ID, &u.InstituteID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.Status, &u.StandardID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetByID retrieves a user by ID within an institute.
func (r *UserRepository) GetByID(ctx context.Context, instituteID, id int) (*model.User, error) {
	u := &model.User{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE institute_id = $1 AND id = $2`,
		instituteID, id,
	).Scan(&u.ID, &u.InstituteID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.Status, &u.StandardID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts a new user account.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO users (institute_id, name, email, password_hash, role, status, standard_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		u.InstituteID, u.Name, u.Email, u.PasswordHash, u.Role, u.Status, u.StandardID,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

// ListByStatus retrieves users filtered by status with pagination.
// Pass an empty status to list all users of the institute.
func (r *UserRepository) ListByStatus(ctx context.Context, instituteID int, status model.UserStatus, limit, offset int) ([]model.User, int, error) {
	where := ` WHERE institute_id = $1`
	args := []any{instituteID}
	if status != "" {
		args = append(args, status)
		where += ` AND status = $2`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + userColumns + ` FROM users` + where +
		` ORDER BY created_at DESC LIMIT $` + itoa(len(args)+1) + ` OFFSET $` + itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.InstituteID, &u.Name, &u.Email, &u.PasswordHash,
			&u.Role, &u.Status, &u.StandardID, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// UpdateStatus transitions a user's approval status.
func (r *UserRepository) UpdateStatus(ctx context.Context, instituteID, id int, status model.UserStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET status = $1, updated_at = NOW()
		 WHERE id = $2 AND institute_id = $3`,
		status, id, instituteID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStateConflict
	}
	return nil
}
