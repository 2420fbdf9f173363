package model

import "time"

// Post is one requested publish action and its lifecycle status.
// Exactly one of ImageURL / ImageBase64 is set before the post reaches publishing.
type Post struct {
	ID             string     `db:"id" json:"id"`
	UserID         string     `db:"user_id" json:"userId"`
	BoardID        string     `db:"board_id" json:"boardId"`
	ImageURL       *string    `db:"image_url" json:"imageUrl,omitempty"`
	ImageBase64    *string    `db:"image_base64" json:"-"`
	Title          string     `db:"title" json:"title"`
	Description    *string    `db:"description" json:"description,omitempty"`
	Link           *string    `db:"link" json:"link,omitempty"`
	ScheduledAt    *time.Time `db:"scheduled_at" json:"scheduledAt,omitempty"`
	Status         PostStatus `db:"status" json:"status"`
	PinterestPinID *string    `db:"pinterest_pin_id" json:"pinterestPinId,omitempty"`
	ErrorMessage   *string    `db:"error_message" json:"errorMessage,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
}

type CreatePostParams struct {
	UserID      string
	BoardID     string
	ImageURL    *string
	ImageBase64 *string
	Title       string
	Description *string
	Link        *string
	ScheduledAt *time.Time
	Status      PostStatus
}

// PostStats is the per-status post count summary for one user.
type PostStats struct {
	TotalPosts     int `db:"total_posts" json:"totalPosts"`
	TotalScheduled int `db:"total_scheduled" json:"totalScheduled"`
	TotalPublished int `db:"total_published" json:"totalPublished"`
	TotalFailed    int `db:"total_failed" json:"totalFailed"`
}
