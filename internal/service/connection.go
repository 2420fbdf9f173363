package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Simi129/pinterest-backend/internal/model"
	"github.com/Simi129/pinterest-backend/internal/pinterest"
	"github.com/Simi129/pinterest-backend/internal/repository"
)

var (
	ErrNotConnected       = errors.New("pinterest not connected")
	ErrTokenRefreshFailed = errors.New("pinterest token refresh failed")
)

// ConnectionService owns the stored Pinterest credential for each user,
// including expiry-aware token refresh.
type ConnectionService struct {
	connRepo      repository.ConnectionRepository
	oauthClient   *pinterest.OAuthClient
	refreshMargin time.Duration
}

func NewConnectionService(
	connRepo repository.ConnectionRepository,
	oauthClient *pinterest.OAuthClient,
	refreshMargin time.Duration,
) *ConnectionService {
	return &ConnectionService{
		connRepo:      connRepo,
		oauthClient:   oauthClient,
		refreshMargin: refreshMargin,
	}
}

func (s *ConnectionService) Get(ctx context.Context, userID string) (*model.Connection, error) {
	return s.connRepo.FindByUserID(ctx, userID)
}

func (s *ConnectionService) Upsert(ctx context.Context, params model.UpsertConnectionParams) (*model.Connection, error) {
	conn, err := s.connRepo.Upsert(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("upsert connection: %w", err)
	}

	log.Info().
		Str("userId", conn.UserID).
		Str("pinterestUsername", conn.PinterestUsername).
		Msg("pinterest connection stored")

	return conn, nil
}

// Disconnect is idempotent: deleting an absent connection is a no-op success.
func (s *ConnectionService) Disconnect(ctx context.Context, userID string) error {
	if err := s.connRepo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete connection: %w", err)
	}
	log.Info().Str("userId", userID).Msg("pinterest disconnected")
	return nil
}

// Fresh loads the user's connection and refreshes the access token when it
// expires within the safety margin and a refresh token is present. Returns
// ErrNotConnected when no connection exists, ErrTokenRefreshFailed when the
// token is stale and cannot be renewed.
func (s *ConnectionService) Fresh(ctx context.Context, userID string) (*model.Connection, error) {
	conn, err := s.connRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find connection: %w", err)
	}
	if conn == nil {
		return nil, ErrNotConnected
	}

	if conn.ExpiresAt == nil || time.Until(*conn.ExpiresAt) > s.refreshMargin {
		return conn, nil
	}

	if conn.RefreshToken == nil {
		log.Warn().Str("userId", userID).Msg("pinterest token expired and no refresh token available")
		return nil, ErrTokenRefreshFailed
	}

	token, err := s.oauthClient.RefreshToken(ctx, *conn.RefreshToken)
	if err != nil {
		log.Error().Err(err).Str("userId", userID).Msg("pinterest token refresh failed")
		return nil, ErrTokenRefreshFailed
	}

	params := model.UpsertConnectionParams{
		UserID:            conn.UserID,
		AccessToken:       token.AccessToken,
		RefreshToken:      conn.RefreshToken,
		ExpiresAt:         expiryFromNow(token.ExpiresIn),
		PinterestUserID:   conn.PinterestUserID,
		PinterestUsername: conn.PinterestUsername,
		Scopes:            conn.Scopes,
	}
	if token.RefreshToken != "" {
		params.RefreshToken = &token.RefreshToken
	}

	refreshed, err := s.connRepo.Upsert(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("store refreshed token: %w", err)
	}

	log.Info().Str("userId", userID).Msg("pinterest token refreshed")
	return refreshed, nil
}

func expiryFromNow(expiresIn int) *time.Time {
	if expiresIn <= 0 {
		return nil
	}
	t := time.Now().Add(time.Duration(expiresIn) * time.Second)
	return &t
}
