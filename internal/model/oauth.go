package model

import "time"

// OAuthState is the short-lived handshake record binding an authorization
// callback to the user who initiated it. Single-use: consumed atomically
// on callback, reaped when it outlives its window unconsumed.
type OAuthState struct {
	State     string    `db:"state"`
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
}
