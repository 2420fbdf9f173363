package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Simi129/pinterest-backend/internal/service"
)

// CleanupJob reaps abandoned OAuth handshake states. Hygiene only; state
// resolution re-checks freshness independently.
type CleanupJob struct {
	oauthSvc *service.OAuthService
	interval time.Duration
	done     chan struct{}
}

func NewCleanupJob(oauthSvc *service.OAuthService, interval time.Duration) *CleanupJob {
	return &CleanupJob{
		oauthSvc: oauthSvc,
		interval: interval,
		done:     make(chan struct{}),
	}
}

func (j *CleanupJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("cleanup job started")
}

func (j *CleanupJob) Stop() {
	close(j.done)
	log.Info().Msg("cleanup job stopped")
}

func (j *CleanupJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.cleanup()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.cleanup()
		}
	}
}

func (j *CleanupJob) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := j.oauthSvc.ReapStates(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to cleanup oauth states")
	} else if count > 0 {
		log.Info().Int64("count", count).Msg("cleaned up oauth states")
	}
}
