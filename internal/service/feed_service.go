package service

import (
	"context"
	"fmt"

	"github.com/edumitra/edumitra-backend/internal/model"
	"github.com/edumitra/edumitra-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// FeedService handles the institute news/event feed. Publishing a post
// also enqueues a push fanout; the post itself commits regardless of the
// queue's health.
type FeedService struct {
	postRepo *repository.PostRepository
	queue    eventQueue
}

// NewFeedService creates a new FeedService.
func NewFeedService(postRepo *repository.PostRepository, queue eventQueue) *FeedService {
	return &FeedService{postRepo: postRepo, queue: queue}
}

// Publish creates a feed post and enqueues its notification.
func (s *FeedService) Publish(ctx context.Context, inst *model.Institute, authorID int, req *model.CreatePostRequest) (*model.Post, error) {
	post := &model.Post{
		InstituteID: inst.ID,
		AuthorID:    authorID,
		Kind:        req.Kind,
		Title:       req.Title,
		Body:        req.Body,
		EventAt:     req.EventAt,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	if s.queue != nil {
		event := &model.NotifyEvent{
			InstituteID:   inst.ID,
			InstituteCode: inst.Code,
			Kind:          model.NotificationPostPublished,
			Title:         post.Title,
			Body:          truncate(post.Body, 180),
			RefID:         post.ID.String(),
		}
		if err := s.queue.Enqueue(ctx, event); err != nil {
			log.Error().Err(err).Str("post_id", post.ID.String()).Msg("notify enqueue failed")
		}
	}
	return post, nil
}

// List retrieves the feed newest-first. Pass an empty kind to mix news and
// events.
func (s *FeedService) List(ctx context.Context, inst *model.Institute, kind model.PostKind, limit, offset int) ([]model.Post, int, error) {
	return s.postRepo.ListByInstitute(ctx, inst.ID, kind, limit, offset)
}

// Remove deletes a post from the feed.
func (s *FeedService) Remove(ctx context.Context, inst *model.Institute, id uuid.UUID) error {
	return s.postRepo.Delete(ctx, inst.ID, id)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
