package model

import "time"

// PinAnalyticsSample is one row per (post, calendar date), written by the
// periodic analytics sync, never by the publisher.
type PinAnalyticsSample struct {
	PostID         string    `db:"post_id" json:"postId"`
	Date           time.Time `db:"date" json:"date"`
	Impressions    int64     `db:"impressions" json:"impressions"`
	Saves          int64     `db:"saves" json:"saves"`
	PinClicks      int64     `db:"pin_clicks" json:"pinClicks"`
	OutboundClicks int64     `db:"outbound_clicks" json:"outboundClicks"`
}

type UpsertAnalyticsParams struct {
	PostID         string
	Date           time.Time
	Impressions    int64
	Saves          int64
	PinClicks      int64
	OutboundClicks int64
}
