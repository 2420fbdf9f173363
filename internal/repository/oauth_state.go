package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

type OAuthStateRepository interface {
	Create(ctx context.Context, state, userID string) error
	// Consume atomically looks up and deletes the entry for state, returning
	// the bound user id. A replayed state, or one older than maxAge, yields "".
	Consume(ctx context.Context, state string, maxAge time.Duration) (string, error)
	DeleteOlderThan(ctx context.Context, maxAge time.Duration) (int64, error)
}

type oauthStateRepo struct {
	db *sqlx.DB
}

func NewOAuthStateRepository(db *sqlx.DB) OAuthStateRepository {
	return &oauthStateRepo{db: db}
}

func (r *oauthStateRepo) Create(ctx context.Context, state, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO oauth_states (state, user_id)
		VALUES ($1, $2)
	`, state, userID)
	return err
}

// Consume is a single conditional DELETE so that two concurrent callbacks
// replaying the same state cannot both succeed. Freshness is re-checked here
// rather than trusting the reap, which is best-effort and may race.
func (r *oauthStateRepo) Consume(ctx context.Context, state string, maxAge time.Duration) (string, error) {
	var userID string
	err := r.db.GetContext(ctx, &userID, `
		DELETE FROM oauth_states
		WHERE state = $1 AND created_at > NOW() - make_interval(secs => $2)
		RETURNING user_id
	`, state, maxAge.Seconds())
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

func (r *oauthStateRepo) DeleteOlderThan(ctx context.Context, maxAge time.Duration) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM oauth_states
		WHERE created_at < NOW() - make_interval(secs => $1)
	`, maxAge.Seconds())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
