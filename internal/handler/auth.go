package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/Simi129/pinterest-backend/internal/service"
)

// AuthHandler drives the Pinterest OAuth flow. The callback always redirects
// back to the frontend with a flag instead of exposing a raw error.
type AuthHandler struct {
	oauthService *service.OAuthService
	connService  *service.ConnectionService
	frontendURL  string
}

func NewAuthHandler(
	oauthService *service.OAuthService,
	connService *service.ConnectionService,
	frontendURL string,
) *AuthHandler {
	return &AuthHandler{
		oauthService: oauthService,
		connService:  connService,
		frontendURL:  strings.TrimRight(frontendURL, "/"),
	}
}

func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/pinterest", h.Connect)
	r.Get("/pinterest/callback", h.Callback)
	r.Delete("/pinterest/disconnect", h.Disconnect)
	r.Get("/pinterest/status", h.Status)

	return r
}

// GET /auth/pinterest?user_id=
func (h *AuthHandler) Connect(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user_id is required"})
		return
	}

	authURL, err := h.oauthService.AuthorizationURL(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("userId", userID).Msg("failed to initiate pinterest oauth")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to initiate OAuth"})
		return
	}

	http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
}

// GET /auth/pinterest/callback?code=&state=
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		log.Warn().Str("error", errMsg).Msg("oauth error from pinterest")
		h.redirectFrontend(w, r, "pinterest_error=denied")
		return
	}

	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")

	if code == "" || state == "" {
		h.redirectFrontend(w, r, "pinterest_error=missing_params")
		return
	}

	conn, err := h.oauthService.HandleCallback(r.Context(), code, state)
	if err != nil {
		log.Error().Err(err).Msg("pinterest oauth callback failed")
		if errors.Is(err, service.ErrInvalidState) {
			h.redirectFrontend(w, r, "pinterest_error=invalid_state")
			return
		}
		h.redirectFrontend(w, r, "pinterest_error=true")
		return
	}

	log.Info().Str("userId", conn.UserID).Msg("pinterest connected")
	h.redirectFrontend(w, r, "pinterest_connected=true")
}

// DELETE /auth/pinterest/disconnect?user_id=
// Idempotent: succeeds whether or not a connection existed.
func (h *AuthHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user_id is required"})
		return
	}

	if err := h.connService.Disconnect(r.Context(), userID); err != nil {
		log.Error().Err(err).Str("userId", userID).Msg("failed to disconnect pinterest")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to disconnect"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Pinterest disconnected",
	})
}

// GET /auth/pinterest/status?user_id=
// Degrades to {connected:false} on store errors rather than failing.
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user_id is required"})
		return
	}

	conn, err := h.connService.Get(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("userId", userID).Msg("failed to load connection status")
		writeJSON(w, http.StatusOK, map[string]any{"connected": false})
		return
	}

	if conn == nil {
		writeJSON(w, http.StatusOK, map[string]any{"connected": false})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"connected":          true,
		"pinterest_username": conn.PinterestUsername,
		"pinterest_user_id":  conn.PinterestUserID,
		"connected_at":       conn.CreatedAt.Format(time.RFC3339),
	})
}

func (h *AuthHandler) redirectFrontend(w http.ResponseWriter, r *http.Request, query string) {
	http.Redirect(w, r, h.frontendURL+"?"+query, http.StatusTemporaryRedirect)
}
