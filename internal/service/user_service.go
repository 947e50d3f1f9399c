package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/edumitra/edumitra-backend/internal/model"
	"github.com/edumitra/edumitra-backend/internal/repository"
)

// UserService handles registration, login, and the approval workflow.
type UserService struct {
	userRepo *repository.UserRepository
	auth     *AuthService
}

// NewUserService creates a new UserService.
func NewUserService(userRepo *repository.UserRepository, auth *AuthService) *UserService {
	return &UserService{userRepo: userRepo, auth: auth}
}

// Register creates a PENDING account under the institute. The account
// cannot log in until an admin approves it.
func (s *UserService) Register(ctx context.Context, inst *model.Institute, req *model.RegisterRequest) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.userRepo.GetByEmail(ctx, inst.ID, email); err == nil {
		return nil, ErrEmailTaken
	} else if !repository.IsNotFound(err) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		InstituteID:  inst.ID,
		Name:         req.Name,
		Email:        email,
		PasswordHash: hash,
		Role:         req.Role,
		Status:       model.UserStatusPending,
		StandardID:   req.StandardID,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login authenticates a user and issues a JWT. Pending and rejected
// accounts are told apart from bad credentials so the client can show the
// "awaiting approval" screen.
func (s *UserService) Login(ctx context.Context, inst *model.Institute, req *model.LoginRequest) (*model.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.userRepo.GetByEmail(ctx, inst.ID, email)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if err := s.auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		return nil, err
	}
	if user.Status != model.UserStatusApproved {
		return nil, ErrApprovalPending
	}

	token, err := s.auth.GenerateToken(ctx, user)
	if err != nil {
		return nil, err
	}
	return &model.LoginResponse{Token: token, User: *user}, nil
}

// List retrieves the institute's users, optionally filtered by status.
func (s *UserService) List(ctx context.Context, inst *model.Institute, status model.UserStatus, limit, offset int) ([]model.User, int, error) {
	return s.userRepo.ListByStatus(ctx, inst.ID, status, limit, offset)
}

// Review approves or rejects a pending registration. Rejecting an approved
// account also revokes its live session.
func (s *UserService) Review(ctx context.Context, inst *model.Institute, userID int, status model.UserStatus) (*model.User, error) {
	if err := s.userRepo.UpdateStatus(ctx, inst.ID, userID, status); err != nil {
		return nil, err
	}
	if status == model.UserStatusRejected {
		if err := s.auth.ResetSession(ctx, userID); err != nil {
			return nil, fmt.Errorf("revoke session: %w", err)
		}
	}
	return s.userRepo.GetByID(ctx, inst.ID, userID)
}

// Get retrieves one user scoped to the institute.
func (s *UserService) Get(ctx context.Context, inst *model.Institute, userID int) (*model.User, error) {
	return s.userRepo.GetByID(ctx, inst.ID, userID)
}
