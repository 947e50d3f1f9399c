package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/edumitra/edumitra-backend/internal/config"
	"github.com/edumitra/edumitra-backend/internal/model"
	"github.com/redis/go-redis/v9"
)

func newAuthFixture(t *testing.T) (*AuthService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := &config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: 4,
	}
	return NewAuthService(cfg, rdb), mr
}

func TestPasswordRoundTrip(t *testing.T) {
	svc, _ := newAuthFixture(t)

	hash, err := svc.HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := svc.CheckPassword(hash, "s3cret-pass"); err != nil {
		t.Fatalf("CheckPassword: %v", err)
	}
	if err := svc.CheckPassword(hash, "wrong"); err != ErrInvalidCredentials {
		t.Fatalf("wrong password err = %v, want ErrInvalidCredentials", err)
	}
}

func TestTokenCarriesTenantAndRole(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	standard := 42
	user := &model.User{
		ID:          7,
		InstituteID: 3,
		Role:        model.RoleStudent,
		StandardID:  &standard,
	}
	token, err := svc.GenerateToken(ctx, user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != 7 || claims.InstituteID != 3 {
		t.Fatalf("claims = %+v", claims)
	}
	if claims.Role != model.RoleStudent || claims.StandardID != 42 {
		t.Fatalf("role/standard = %s/%d", claims.Role, claims.StandardID)
	}
	if err := svc.ValidateSession(ctx, claims); err != nil {
		t.Fatalf("ValidateSession: %v", err)
	}
}

func TestStudentSingleDeviceSession(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()
	student := &model.User{ID: 7, InstituteID: 1, Role: model.RoleStudent}

	if _, err := svc.GenerateToken(ctx, student); err != nil {
		t.Fatalf("first login: %v", err)
	}
	if _, err := svc.GenerateToken(ctx, student); err != ErrSessionAlreadyActive {
		t.Fatalf("second login err = %v, want ErrSessionAlreadyActive", err)
	}

	if err := svc.ResetSession(ctx, student.ID); err != nil {
		t.Fatalf("ResetSession: %v", err)
	}
	if _, err := svc.GenerateToken(ctx, student); err != nil {
		t.Fatalf("login after reset: %v", err)
	}
}

func TestStaffMayLoginTwice(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()
	teacher := &model.User{ID: 9, InstituteID: 1, Role: model.RoleTeacher}

	if _, err := svc.GenerateToken(ctx, teacher); err != nil {
		t.Fatalf("first login: %v", err)
	}
	if _, err := svc.GenerateToken(ctx, teacher); err != nil {
		t.Fatalf("second login: %v", err)
	}
}

func TestStaleJTIInvalidatesStudentSession(t *testing.T) {
	svc, mr := newAuthFixture(t)
	ctx := context.Background()
	student := &model.User{ID: 7, InstituteID: 1, Role: model.RoleStudent}

	token, err := svc.GenerateToken(ctx, student)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}

	mr.Set(config.CacheKey.UserSessionKey(student.ID), "another-jti")
	if err := svc.ValidateSession(ctx, claims); err == nil {
		t.Fatal("expected stale JTI to invalidate the session")
	}
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()
	teacher := &model.User{ID: 9, InstituteID: 1, Role: model.RoleTeacher}

	token, err := svc.GenerateToken(ctx, teacher)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := svc.ValidateToken(token + "x"); err == nil {
		t.Fatal("expected tampered token to fail validation")
	}
}
