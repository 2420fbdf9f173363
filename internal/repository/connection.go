package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/Simi129/pinterest-backend/internal/model"
)

type ConnectionRepository interface {
	FindByUserID(ctx context.Context, userID string) (*model.Connection, error)
	Upsert(ctx context.Context, params model.UpsertConnectionParams) (*model.Connection, error)
	Delete(ctx context.Context, userID string) error
}

type connectionRepo struct {
	db *sqlx.DB
}

func NewConnectionRepository(db *sqlx.DB) ConnectionRepository {
	return &connectionRepo{db: db}
}

func (r *connectionRepo) FindByUserID(ctx context.Context, userID string) (*model.Connection, error) {
	var conn model.Connection
	err := r.db.GetContext(ctx, &conn, `
		SELECT * FROM connections
		WHERE user_id = $1
	`, userID)
	return HandleNotFound(&conn, err)
}

// Upsert replaces any existing connection for the user id. A second connect
// for the same user supersedes the first, never duplicates it.
func (r *connectionRepo) Upsert(ctx context.Context, params model.UpsertConnectionParams) (*model.Connection, error) {
	var conn model.Connection
	err := r.db.GetContext(ctx, &conn, `
		INSERT INTO connections (user_id, access_token, refresh_token, expires_at, pinterest_user_id, pinterest_username, scopes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at = EXCLUDED.expires_at,
			pinterest_user_id = EXCLUDED.pinterest_user_id,
			pinterest_username = EXCLUDED.pinterest_username,
			scopes = EXCLUDED.scopes,
			updated_at = NOW()
		RETURNING *
	`, params.UserID, params.AccessToken, params.RefreshToken, params.ExpiresAt,
		params.PinterestUserID, params.PinterestUsername, params.Scopes)
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *connectionRepo) Delete(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM connections WHERE user_id = $1`, userID)
	return err
}
