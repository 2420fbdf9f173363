package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/Simi129/pinterest-backend/internal/errors"
	"github.com/Simi129/pinterest-backend/internal/model"
	"github.com/Simi129/pinterest-backend/internal/service"
	"github.com/Simi129/pinterest-backend/internal/util"
)

// PublishHandler accepts publish requests and exposes post read-back.
type PublishHandler struct {
	postService *service.PostService
}

func NewPublishHandler(postService *service.PostService) *PublishHandler {
	return &PublishHandler{postService: postService}
}

func (h *PublishHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/publish-now", h.PublishNow)
	r.Post("/schedule-post", h.SchedulePost)
	r.Get("/posts", h.ListPosts)
	r.Get("/posts/{id}", h.GetPost)
	r.Get("/stats", h.Stats)

	return r
}

type publishRequest struct {
	UserID      string     `json:"user_id"`
	BoardID     string     `json:"board_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Link        *string    `json:"link"`
	ImageURL    *string    `json:"image_url"`
	ImageBase64 *string    `json:"image_base64"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

func (req *publishRequest) validate() *apperrors.AppError {
	if req.UserID == "" {
		return apperrors.MissingRequired("user_id")
	}
	if req.BoardID == "" {
		return apperrors.MissingRequired("board_id")
	}
	if req.Title == "" {
		return apperrors.MissingRequired("title")
	}

	hasURL := req.ImageURL != nil && *req.ImageURL != ""
	hasData := req.ImageBase64 != nil && *req.ImageBase64 != ""

	if !hasURL && !hasData {
		return apperrors.ValidationError("Either image_url or image_base64 is required")
	}
	if hasURL && hasData {
		return apperrors.ValidationError("Provide image_url or image_base64, not both")
	}
	if hasURL && !util.IsValidHTTPURL(*req.ImageURL) {
		return apperrors.InvalidInput("image_url", "must be an absolute http(s) URL")
	}
	if req.Link != nil && *req.Link != "" && !util.IsValidHTTPURL(*req.Link) {
		return apperrors.InvalidInput("link", "must be an absolute http(s) URL")
	}

	return nil
}

func (req *publishRequest) params() service.PublishParams {
	return service.PublishParams{
		UserID:      req.UserID,
		BoardID:     req.BoardID,
		ImageURL:    req.ImageURL,
		ImageBase64: req.ImageBase64,
		Title:       req.Title,
		Description: req.Description,
		Link:        req.Link,
	}
}

// POST /api/publish-now
// Returns 202 before the detached publish completes; the post record is the
// completion signal the caller polls.
func (h *PublishHandler) PublishNow(w http.ResponseWriter, r *http.Request) {
	var req publishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	if appErr := req.validate(); appErr != nil {
		writeError(w, appErr)
		return
	}

	post, err := h.postService.PublishNow(r.Context(), req.params())
	if err != nil {
		if errors.Is(err, service.ErrNotConnected) {
			writeError(w, apperrors.NotConnected())
			return
		}
		log.Error().Err(err).Str("userId", req.UserID).Msg("publish-now failed")
		writeError(w, apperrors.Database(err))
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"post_id": post.ID,
		"status":  post.Status,
	})
}

// POST /api/schedule-post
// scheduled_at must be strictly in the future.
func (h *PublishHandler) SchedulePost(w http.ResponseWriter, r *http.Request) {
	var req publishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	if appErr := req.validate(); appErr != nil {
		writeError(w, appErr)
		return
	}
	if req.ScheduledAt == nil {
		writeError(w, apperrors.MissingRequired("scheduled_at"))
		return
	}
	if !req.ScheduledAt.After(time.Now()) {
		writeError(w, apperrors.InvalidInput("scheduled_at", "must be in the future"))
		return
	}

	post, err := h.postService.Schedule(r.Context(), req.params(), *req.ScheduledAt)
	if err != nil {
		if errors.Is(err, service.ErrNotConnected) {
			writeError(w, apperrors.NotConnected())
			return
		}
		log.Error().Err(err).Str("userId", req.UserID).Msg("schedule-post failed")
		writeError(w, apperrors.Database(err))
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"post_id":      post.ID,
		"status":       post.Status,
		"scheduled_at": post.ScheduledAt.Format(time.RFC3339),
	})
}

// GET /api/posts?user_id=&status=&limit=&offset=
func (h *PublishHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, apperrors.MissingRequired("user_id"))
		return
	}

	statusParam := r.URL.Query().Get("status")
	if !util.IsValidEnum(statusParam, model.ValidPostStatuses()) {
		writeError(w, apperrors.InvalidInput("status", "unknown post status"))
		return
	}

	var status *model.PostStatus
	if statusParam != "" {
		s := model.PostStatus(statusParam)
		status = &s
	}

	pagination := ParsePagination(r)

	posts, total, err := h.postService.List(r.Context(), userID, status, pagination.Limit, pagination.Offset)
	if err != nil {
		log.Error().Err(err).Str("userId", userID).Msg("failed to list posts")
		writeError(w, apperrors.Database(err))
		return
	}

	formatted := make([]map[string]any, len(posts))
	for i, post := range posts {
		formatted[i] = formatPost(post)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"posts":  formatted,
		"total":  total,
		"limit":  pagination.Limit,
		"offset": pagination.Offset,
	})
}

// GET /api/posts/{id}?user_id=
func (h *PublishHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, apperrors.MissingRequired("user_id"))
		return
	}

	post, err := h.postService.Get(r.Context(), postID)
	if err != nil {
		log.Error().Err(err).Str("postId", postID).Msg("failed to load post")
		writeError(w, apperrors.Database(err))
		return
	}

	if post == nil || post.UserID != userID {
		writeError(w, apperrors.NotFound("Post"))
		return
	}

	writeJSON(w, http.StatusOK, formatPost(*post))
}

// GET /api/stats?user_id=
func (h *PublishHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, apperrors.MissingRequired("user_id"))
		return
	}

	stats, err := h.postService.Stats(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("userId", userID).Msg("failed to load post stats")
		writeError(w, apperrors.Database(err))
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
