package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Simi129/pinterest-backend/internal/service"
)

// AnalyticsSyncJob periodically pulls daily pin metrics for published posts.
type AnalyticsSyncJob struct {
	analyticsSvc *service.AnalyticsService
	interval     time.Duration
	done         chan struct{}
}

func NewAnalyticsSyncJob(analyticsSvc *service.AnalyticsService, interval time.Duration) *AnalyticsSyncJob {
	return &AnalyticsSyncJob{
		analyticsSvc: analyticsSvc,
		interval:     interval,
		done:         make(chan struct{}),
	}
}

func (j *AnalyticsSyncJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("analytics sync job started")
}

func (j *AnalyticsSyncJob) Stop() {
	close(j.done)
	log.Info().Msg("analytics sync job stopped")
}

func (j *AnalyticsSyncJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.sync()
		}
	}
}

func (j *AnalyticsSyncJob) sync() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	synced, err := j.analyticsSvc.SyncRecent(ctx)
	if err != nil {
		log.Error().Err(err).Msg("analytics sync failed")
		return
	}
	if synced > 0 {
		log.Info().Int("synced", synced).Msg("analytics sync completed")
	}
}
