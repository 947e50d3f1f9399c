package service

import (
	"context"
	"errors"

	"github.com/edumitra/edumitra-backend/internal/model"
	"github.com/edumitra/edumitra-backend/internal/repository"
)

// Tenant resolution errors.
var (
	ErrUnknownInstitute  = errors.New("unknown institute")
	ErrInstituteInactive = errors.New("institute is deactivated")
)

// InstituteService resolves tenants from subdomain codes and handles
// institute settings.
type InstituteService struct {
	repo *repository.InstituteRepository
}

// NewInstituteService creates a new InstituteService.
func NewInstituteService(repo *repository.InstituteRepository) *InstituteService {
	return &InstituteService{repo: repo}
}

// ResolveCode looks up an institute by its subdomain code. Deactivated
// institutes resolve but are rejected, so the client can show a distinct
// "institute suspended" screen instead of a generic 404.
func (s *InstituteService) ResolveCode(ctx context.Context, code string) (*model.Institute, error) {
	inst, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUnknownInstitute
		}
		return nil, err
	}
	if !inst.Active {
		return nil, ErrInstituteInactive
	}
	return inst, nil
}

// Get retrieves an institute by ID.
func (s *InstituteService) Get(ctx context.Context, id int) (*model.Institute, error) {
	return s.repo.GetByID(ctx, id)
}

// Update rewrites the institute's mutable settings.
func (s *InstituteService) Update(ctx context.Context, inst *model.Institute, req *model.UpdateInstituteRequest) (*model.Institute, error) {
	inst.Name = req.Name
	inst.Address = req.Address
	if req.Active != nil {
		inst.Active = *req.Active
	}
	if err := s.repo.Update(ctx, inst); err != nil {
		return nil, err
	}
	return inst, nil
}
