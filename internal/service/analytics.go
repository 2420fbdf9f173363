package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Simi129/pinterest-backend/internal/model"
	"github.com/Simi129/pinterest-backend/internal/pinterest"
	"github.com/Simi129/pinterest-backend/internal/repository"
)

const (
	// How far back the periodic sync looks for published posts.
	syncLookback = 30 * 24 * time.Hour
	syncBatch    = 100
)

// AnalyticsService stores daily pin metrics pulled by the periodic sync and
// serves read-back queries. The publisher never writes analytics.
type AnalyticsService struct {
	postRepo      repository.PostRepository
	analyticsRepo repository.PinAnalyticsRepository
	connSvc       *ConnectionService
	pinClient     *pinterest.Client
}

func NewAnalyticsService(
	postRepo repository.PostRepository,
	analyticsRepo repository.PinAnalyticsRepository,
	connSvc *ConnectionService,
	pinClient *pinterest.Client,
) *AnalyticsService {
	return &AnalyticsService{
		postRepo:      postRepo,
		analyticsRepo: analyticsRepo,
		connSvc:       connSvc,
		pinClient:     pinClient,
	}
}

// SyncRecent pulls daily metrics for recently published posts and upserts
// one row per (post, date). Best-effort: a post whose owner is no longer
// connected is skipped, not failed.
func (s *AnalyticsService) SyncRecent(ctx context.Context) (int, error) {
	since := time.Now().Add(-syncLookback)
	posts, err := s.postRepo.FindRecentlyPublished(ctx, since, syncBatch)
	if err != nil {
		return 0, fmt.Errorf("find published posts: %w", err)
	}

	synced := 0
	for _, post := range posts {
		if err := s.syncPost(ctx, post); err != nil {
			log.Warn().Err(err).Str("postId", post.ID).Msg("analytics sync skipped post")
			continue
		}
		synced++
	}

	return synced, nil
}

func (s *AnalyticsService) syncPost(ctx context.Context, post model.Post) error {
	conn, err := s.connSvc.Fresh(ctx, post.UserID)
	if err != nil {
		return err
	}

	end := time.Now()
	start := end.Add(-syncLookback)

	daily, err := s.pinClient.GetPinAnalytics(ctx, conn.AccessToken, *post.PinterestPinID, start, end)
	if err != nil {
		return err
	}

	for _, day := range daily {
		date, err := time.Parse("2006-01-02", day.Date)
		if err != nil {
			continue
		}
		err = s.analyticsRepo.Upsert(ctx, model.UpsertAnalyticsParams{
			PostID:         post.ID,
			Date:           date,
			Impressions:    day.Metrics["IMPRESSION"],
			Saves:          day.Metrics["SAVE"],
			PinClicks:      day.Metrics["PIN_CLICK"],
			OutboundClicks: day.Metrics["OUTBOUND_CLICK"],
		})
		if err != nil {
			return fmt.Errorf("upsert analytics: %w", err)
		}
	}

	return nil
}

// PostAnalytics returns the stored samples for one post over the last days.
func (s *AnalyticsService) PostAnalytics(ctx context.Context, postID string, days int) ([]model.PinAnalyticsSample, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)
	return s.analyticsRepo.FindByPostID(ctx, postID, since)
}
