package repository

import (
	"context"

	"github.com/edumitra/edumitra-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InstituteRepository handles tenant data access.
type InstituteRepository struct {
	pool *pgxpool.Pool
}

// NewInstituteRepository creates a new InstituteRepository.
func NewInstituteRepository(pool *pgxpool.Pool) *InstituteRepository {
	return &InstituteRepository{pool: pool}
}

// GetByCode retrieves an institute by its subdomain code.
func (r *InstituteRepository) GetByCode(ctx context.Context, code string) (*model.Institute, error) {
	i := &model.Institute{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, code, name, address, active, created_at, updated_at
		 FROM institutes WHERE code = $1`, code,
	).Scan(&i.ID, &i.Code, &i.Name, &i.Address, &i.Active, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return i, nil
}

// GetByID retrieves an institute by ID.
func (r *InstituteRepository) GetByID(ctx context.Context, id int) (*model.Institute, error) {
	i := &model.Institute{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, code, name, address, active, created_at, updated_at
		 FROM institutes WHERE id = $1`, id,
	).Scan(&i.ID, &i.Code, &i.Name, &i.Address, &i.Active, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return i, nil
}

// Create inserts a new institute.
func (r *InstituteRepository) Create(ctx context.Context, i *model.Institute) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO institutes (code, name, address, active)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		i.Code, i.Name, i.Address, i.Active,
	).Scan(&i.ID, &i.CreatedAt, &i.UpdatedAt)
}

// Update rewrites an institute's mutable settings.
func (r *InstituteRepository) Update(ctx context.Context, i *model.Institute) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE institutes SET name = $1, address = $2, active = $3, updated_at = NOW()
		 WHERE id = $4`,
		i.Name, i.Address, i.Active, i.ID)
	return err
}
