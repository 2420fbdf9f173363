package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Simi129/pinterest-backend/internal/model"
	"github.com/Simi129/pinterest-backend/internal/repository"
)

// PublishParams is one validated publish request, immediate or deferred.
type PublishParams struct {
	UserID      string
	BoardID     string
	ImageURL    *string
	ImageBase64 *string
	Title       string
	Description *string
	Link        *string
}

// PostService creates post records and hands them to the scheduler. A
// publish request without a stored connection is rejected before any post
// is created; the publisher still re-checks the credential at publish time.
type PostService struct {
	postRepo  repository.PostRepository
	connRepo  repository.ConnectionRepository
	scheduler *Scheduler
}

func NewPostService(
	postRepo repository.PostRepository,
	connRepo repository.ConnectionRepository,
	scheduler *Scheduler,
) *PostService {
	return &PostService{
		postRepo:  postRepo,
		connRepo:  connRepo,
		scheduler: scheduler,
	}
}

// PublishNow creates a post in publishing status and triggers an immediate
// publish. The returned post reflects the state before the detached publish
// settles it.
func (s *PostService) PublishNow(ctx context.Context, params PublishParams) (*model.Post, error) {
	if err := s.requireConnection(ctx, params.UserID); err != nil {
		return nil, err
	}

	post, err := s.postRepo.Create(ctx, createParams(params, model.PostStatusPublishing, nil))
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.scheduler.ScheduleNow(post.ID, post.UserID)

	log.Info().
		Str("postId", post.ID).
		Str("userId", post.UserID).
		Msg("immediate publish accepted")

	return post, nil
}

// Schedule creates a post in scheduled status and defers the publish until
// scheduledAt. The caller has already validated that scheduledAt is in the
// future; a time that slipped into the past by now is treated as immediate.
func (s *PostService) Schedule(ctx context.Context, params PublishParams, scheduledAt time.Time) (*model.Post, error) {
	if err := s.requireConnection(ctx, params.UserID); err != nil {
		return nil, err
	}

	post, err := s.postRepo.Create(ctx, createParams(params, model.PostStatusScheduled, &scheduledAt))
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.scheduler.ScheduleAt(post.ID, post.UserID, scheduledAt)

	log.Info().
		Str("postId", post.ID).
		Str("userId", post.UserID).
		Time("scheduledAt", scheduledAt).
		Msg("scheduled publish accepted")

	return post, nil
}

func (s *PostService) Get(ctx context.Context, postID string) (*model.Post, error) {
	return s.postRepo.FindByID(ctx, postID)
}

func (s *PostService) List(ctx context.Context, userID string, status *model.PostStatus, limit, offset int) ([]model.Post, int, error) {
	posts, err := s.postRepo.ListByUser(ctx, userID, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}

	total, err := s.postRepo.CountByUser(ctx, userID, status)
	if err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	return posts, total, nil
}

func (s *PostService) Stats(ctx context.Context, userID string) (*model.PostStats, error) {
	return s.postRepo.Stats(ctx, userID)
}

func (s *PostService) requireConnection(ctx context.Context, userID string) error {
	conn, err := s.connRepo.FindByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("find connection: %w", err)
	}
	if conn == nil {
		return ErrNotConnected
	}
	return nil
}

func createParams(params PublishParams, status model.PostStatus, scheduledAt *time.Time) model.CreatePostParams {
	return model.CreatePostParams{
		UserID:      params.UserID,
		BoardID:     params.BoardID,
		ImageURL:    params.ImageURL,
		ImageBase64: params.ImageBase64,
		Title:       params.Title,
		Description: params.Description,
		Link:        params.Link,
		ScheduledAt: scheduledAt,
		Status:      status,
	}
}
