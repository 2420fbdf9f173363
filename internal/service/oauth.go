package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Simi129/pinterest-backend/internal/model"
	"github.com/Simi129/pinterest-backend/internal/pinterest"
	"github.com/Simi129/pinterest-backend/internal/repository"
	"github.com/Simi129/pinterest-backend/internal/util"
)

var ErrInvalidState = errors.New("invalid or expired OAuth state")

// OAuthService runs the authorization-code handshake with Pinterest. The
// state token it issues is single-use and time-boxed; that is the entire
// CSRF contract of the flow, so resolution must never re-validate a
// consumed token.
type OAuthService struct {
	stateRepo   repository.OAuthStateRepository
	connSvc     *ConnectionService
	oauthClient *pinterest.OAuthClient
	pinClient   *pinterest.Client
	redirectURI string
	stateTTL    time.Duration
}

func NewOAuthService(
	stateRepo repository.OAuthStateRepository,
	connSvc *ConnectionService,
	oauthClient *pinterest.OAuthClient,
	pinClient *pinterest.Client,
	redirectURI string,
	stateTTL time.Duration,
) *OAuthService {
	return &OAuthService{
		stateRepo:   stateRepo,
		connSvc:     connSvc,
		oauthClient: oauthClient,
		pinClient:   pinClient,
		redirectURI: redirectURI,
		stateTTL:    stateTTL,
	}
}

// AuthorizationURL issues a fresh state bound to userID and returns the
// Pinterest consent URL to redirect to. Stale states are reaped
// opportunistically first.
func (s *OAuthService) AuthorizationURL(ctx context.Context, userID string) (string, error) {
	if _, err := s.ReapStates(ctx); err != nil {
		log.Warn().Err(err).Msg("oauth state reap failed")
	}

	state, err := util.GenerateStateToken()
	if err != nil {
		return "", fmt.Errorf("generate state token: %w", err)
	}

	if err := s.stateRepo.Create(ctx, state, userID); err != nil {
		return "", fmt.Errorf("save oauth state: %w", err)
	}

	return s.oauthClient.AuthorizationURL(s.redirectURI, state), nil
}

// HandleCallback consumes the state, exchanges the code for tokens, fetches
// the Pinterest account identity, and stores the connection. Returns the
// stored connection or ErrInvalidState when the state is absent, expired,
// or replayed.
func (s *OAuthService) HandleCallback(ctx context.Context, code, state string) (*model.Connection, error) {
	userID, err := s.stateRepo.Consume(ctx, state, s.stateTTL)
	if err != nil {
		return nil, fmt.Errorf("consume oauth state: %w", err)
	}
	if userID == "" {
		log.Warn().Msg("oauth callback with invalid or replayed state")
		return nil, ErrInvalidState
	}

	token, err := s.oauthClient.ExchangeCode(ctx, code, s.redirectURI)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	account, err := s.pinClient.GetUserAccount(ctx, token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("fetch user account: %w", err)
	}

	params := model.UpsertConnectionParams{
		UserID:            userID,
		AccessToken:       token.AccessToken,
		ExpiresAt:         expiryFromNow(token.ExpiresIn),
		PinterestUserID:   account.ID,
		PinterestUsername: account.Username,
	}
	if token.RefreshToken != "" {
		params.RefreshToken = &token.RefreshToken
	}
	if token.Scope != "" {
		scopes := strings.TrimSpace(token.Scope)
		params.Scopes = &scopes
	}

	conn, err := s.connSvc.Upsert(ctx, params)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("userId", userID).
		Str("pinterestUserId", account.ID).
		Msg("pinterest oauth completed")

	return conn, nil
}

// ReapStates removes handshake states older than the TTL that were never
// consumed, e.g. abandoned flows. Hygiene only: Consume re-checks freshness
// on its own.
func (s *OAuthService) ReapStates(ctx context.Context) (int64, error) {
	count, err := s.stateRepo.DeleteOlderThan(ctx, s.stateTTL)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		log.Debug().Int64("count", count).Msg("reaped stale oauth states")
	}
	return count, nil
}
