package model

import "time"

// Connection is the stored Pinterest credential for one internal user.
// At most one live connection exists per user id (upsert semantics).
type Connection struct {
	UserID             string     `db:"user_id" json:"userId"`
	AccessToken        string     `db:"access_token" json:"-"`
	RefreshToken       *string    `db:"refresh_token" json:"-"`
	ExpiresAt          *time.Time `db:"expires_at" json:"-"`
	PinterestUserID    string     `db:"pinterest_user_id" json:"pinterestUserId"`
	PinterestUsername  string     `db:"pinterest_username" json:"pinterestUsername"`
	Scopes             *string    `db:"scopes" json:"scopes,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updatedAt"`
}

type UpsertConnectionParams struct {
	UserID            string
	AccessToken       string
	RefreshToken      *string
	ExpiresAt         *time.Time
	PinterestUserID   string
	PinterestUsername string
	Scopes            *string
}
