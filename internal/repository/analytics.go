package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Simi129/pinterest-backend/internal/model"
)

type PinAnalyticsRepository interface {
	Upsert(ctx context.Context, params model.UpsertAnalyticsParams) error
	FindByPostID(ctx context.Context, postID string, since time.Time) ([]model.PinAnalyticsSample, error)
}

type pinAnalyticsRepo struct {
	db *sqlx.DB
}

func NewPinAnalyticsRepository(db *sqlx.DB) PinAnalyticsRepository {
	return &pinAnalyticsRepo{db: db}
}

func (r *pinAnalyticsRepo) Upsert(ctx context.Context, params model.UpsertAnalyticsParams) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pin_analytics (post_id, date, impressions, saves, pin_clicks, outbound_clicks)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (post_id, date) DO UPDATE SET
			impressions = EXCLUDED.impressions,
			saves = EXCLUDED.saves,
			pin_clicks = EXCLUDED.pin_clicks,
			outbound_clicks = EXCLUDED.outbound_clicks
	`, params.PostID, params.Date, params.Impressions, params.Saves, params.PinClicks, params.OutboundClicks)
	return err
}

func (r *pinAnalyticsRepo) FindByPostID(ctx context.Context, postID string, since time.Time) ([]model.PinAnalyticsSample, error) {
	var samples []model.PinAnalyticsSample
	err := r.db.SelectContext(ctx, &samples, `
		SELECT * FROM pin_analytics
		WHERE post_id = $1 AND date >= $2
		ORDER BY date DESC
	`, postID, since)
	return samples, err
}
