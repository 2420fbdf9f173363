package handler

import (
	"net/http"
	"time"

	"github.com/Simi129/pinterest-backend/internal/httputil"
	"github.com/Simi129/pinterest-backend/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}

func writeError(w http.ResponseWriter, err error) {
	httputil.WriteError(w, err)
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}

func formatPost(post model.Post) map[string]any {
	return map[string]any{
		"id":               post.ID,
		"user_id":          post.UserID,
		"board_id":         post.BoardID,
		"image_url":        post.ImageURL,
		"title":            post.Title,
		"description":      post.Description,
		"link":             post.Link,
		"scheduled_at":     formatTime(post.ScheduledAt),
		"status":           post.Status,
		"pinterest_pin_id": post.PinterestPinID,
		"error_message":    post.ErrorMessage,
		"created_at":       post.CreatedAt.Format(time.RFC3339),
	}
}
