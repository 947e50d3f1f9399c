package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/edumitra/edumitra-backend/internal/config"
	"github.com/edumitra/edumitra-backend/internal/model"
	"github.com/edumitra/edumitra-backend/internal/repository"
	"github.com/redis/go-redis/v9"
)

// NotificationService owns the device registry and the producer side of
// the notify queue. Persisting and fanning events out is the worker's job;
// producers only pay for one RPUSH.
type NotificationService struct {
	notifRepo *repository.NotificationRepository
	rdb       *redis.Client
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(notifRepo *repository.NotificationRepository, rdb *redis.Client) *NotificationService {
	return &NotificationService{notifRepo: notifRepo, rdb: rdb}
}

// Enqueue pushes one fanout job onto the notify queue.
func (s *NotificationService) Enqueue(ctx context.Context, event *model.NotifyEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode notify event: %w", err)
	}
	return s.rdb.RPush(ctx, config.WorkerKey.NotifyEventsQueue, payload).Err()
}

// RegisterDevice upserts a push token for the user.
func (s *NotificationService) RegisterDevice(ctx context.Context, userID int, req *model.RegisterDeviceRequest) (*model.Device, error) {
	device := &model.Device{
		UserID:   userID,
		Token:    req.Token,
		Platform: req.Platform,
	}
	if err := s.notifRepo.RegisterDevice(ctx, device); err != nil {
		return nil, fmt.Errorf("register device: %w", err)
	}
	return device, nil
}

// RemoveDevice deletes a push token owned by the user.
func (s *NotificationService) RemoveDevice(ctx context.Context, userID int, token string) error {
	return s.notifRepo.RemoveDevice(ctx, userID, token)
}

// Recent lists the institute's latest persisted notifications.
func (s *NotificationService) Recent(ctx context.Context, inst *model.Institute, limit int) ([]model.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.notifRepo.ListByInstitute(ctx, inst.ID, limit)
}
