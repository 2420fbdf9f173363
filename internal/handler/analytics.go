package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/Simi129/pinterest-backend/internal/errors"
	"github.com/Simi129/pinterest-backend/internal/service"
)

// AnalyticsHandler serves stored pin analytics samples.
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
	postService      *service.PostService
}

func NewAnalyticsHandler(
	analyticsService *service.AnalyticsService,
	postService *service.PostService,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		postService:      postService,
	}
}

func (h *AnalyticsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/posts/{id}", h.PostAnalytics)

	return r
}

// GET /api/analytics/posts/{id}?user_id=&days=
func (h *AnalyticsHandler) PostAnalytics(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, apperrors.MissingRequired("user_id"))
		return
	}

	post, err := h.postService.Get(r.Context(), postID)
	if err != nil {
		log.Error().Err(err).Str("postId", postID).Msg("failed to load post for analytics")
		writeError(w, apperrors.Database(err))
		return
	}
	if post == nil || post.UserID != userID {
		writeError(w, apperrors.NotFound("Post"))
		return
	}

	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	samples, err := h.analyticsService.PostAnalytics(r.Context(), postID, days)
	if err != nil {
		log.Error().Err(err).Str("postId", postID).Msg("failed to load analytics")
		writeError(w, apperrors.Database(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"post_id":   postID,
		"analytics": samples,
	})
}
