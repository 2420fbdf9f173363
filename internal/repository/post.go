package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Simi129/pinterest-backend/internal/model"
)

type PostRepository interface {
	FindByID(ctx context.Context, id string) (*model.Post, error)
	Create(ctx context.Context, params model.CreatePostParams) (*model.Post, error)
	// UpdateStatus merges only the supplied optional fields and never mutates
	// a post that already reached published or failed. Returns whether a row
	// actually changed.
	UpdateStatus(ctx context.Context, id string, status model.PostStatus, pinID, errMsg *string) (bool, error)
	// ClaimForPublishing is the conditional scheduled -> publishing transition.
	// It is the dedup point between a live in-process timer and the reconcile
	// sweep: only one of them wins the claim.
	ClaimForPublishing(ctx context.Context, id string) (bool, error)
	ListByUser(ctx context.Context, userID string, status *model.PostStatus, limit, offset int) ([]model.Post, error)
	CountByUser(ctx context.Context, userID string, status *model.PostStatus) (int, error)
	FindDueScheduled(ctx context.Context, now time.Time, limit int) ([]model.Post, error)
	FindRecentlyPublished(ctx context.Context, since time.Time, limit int) ([]model.Post, error)
	Stats(ctx context.Context, userID string) (*model.PostStats, error)
}

type postRepo struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepo{db: db}
}

func (r *postRepo) FindByID(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	err := r.db.GetContext(ctx, &post, `
		SELECT * FROM posts
		WHERE id = $1
	`, id)
	return HandleNotFound(&post, err)
}

func (r *postRepo) Create(ctx context.Context, params model.CreatePostParams) (*model.Post, error) {
	var post model.Post
	err := r.db.GetContext(ctx, &post, `
		INSERT INTO posts (user_id, board_id, image_url, image_base64, title, description, link, scheduled_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING *
	`, params.UserID, params.BoardID, params.ImageURL, params.ImageBase64,
		params.Title, params.Description, params.Link, params.ScheduledAt, params.Status)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepo) UpdateStatus(ctx context.Context, id string, status model.PostStatus, pinID, errMsg *string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE posts SET
			status = $2,
			pinterest_pin_id = COALESCE($3, pinterest_pin_id),
			error_message = COALESCE($4, error_message)
		WHERE id = $1 AND status NOT IN ('published', 'failed')
	`, id, status, pinID, errMsg)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *postRepo) ClaimForPublishing(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE posts SET status = 'publishing'
		WHERE id = $1 AND status = 'scheduled'
	`, id)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *postRepo) ListByUser(ctx context.Context, userID string, status *model.PostStatus, limit, offset int) ([]model.Post, error) {
	var posts []model.Post
	var err error
	if status != nil {
		err = r.db.SelectContext(ctx, &posts, `
			SELECT * FROM posts
			WHERE user_id = $1 AND status = $2
			ORDER BY created_at DESC
			LIMIT $3 OFFSET $4
		`, userID, *status, limit, offset)
	} else {
		err = r.db.SelectContext(ctx, &posts, `
			SELECT * FROM posts
			WHERE user_id = $1
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3
		`, userID, limit, offset)
	}
	return posts, err
}

func (r *postRepo) CountByUser(ctx context.Context, userID string, status *model.PostStatus) (int, error) {
	var count int
	var err error
	if status != nil {
		err = r.db.GetContext(ctx, &count, `
			SELECT COUNT(*) FROM posts WHERE user_id = $1 AND status = $2
		`, userID, *status)
	} else {
		err = r.db.GetContext(ctx, &count, `
			SELECT COUNT(*) FROM posts WHERE user_id = $1
		`, userID)
	}
	return count, err
}

func (r *postRepo) FindDueScheduled(ctx context.Context, now time.Time, limit int) ([]model.Post, error) {
	var posts []model.Post
	err := r.db.SelectContext(ctx, &posts, `
		SELECT * FROM posts
		WHERE status = 'scheduled' AND scheduled_at <= $1
		ORDER BY scheduled_at ASC
		LIMIT $2
	`, now, limit)
	return posts, err
}

func (r *postRepo) FindRecentlyPublished(ctx context.Context, since time.Time, limit int) ([]model.Post, error) {
	var posts []model.Post
	err := r.db.SelectContext(ctx, &posts, `
		SELECT * FROM posts
		WHERE status = 'published' AND pinterest_pin_id IS NOT NULL AND created_at >= $1
		ORDER BY created_at DESC
		LIMIT $2
	`, since, limit)
	return posts, err
}

func (r *postRepo) Stats(ctx context.Context, userID string) (*model.PostStats, error) {
	var stats model.PostStats
	err := r.db.GetContext(ctx, &stats, `
		SELECT
			COUNT(*) AS total_posts,
			COUNT(*) FILTER (WHERE status = 'scheduled') AS total_scheduled,
			COUNT(*) FILTER (WHERE status = 'published') AS total_published,
			COUNT(*) FILTER (WHERE status = 'failed') AS total_failed
		FROM posts
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
