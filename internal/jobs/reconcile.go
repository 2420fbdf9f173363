package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Simi129/pinterest-backend/internal/config"
	"github.com/Simi129/pinterest-backend/internal/repository"
	"github.com/Simi129/pinterest-backend/internal/service"
)

// ReconcileJob is the safety net for deferred publishes: in-process timers
// do not survive restarts, so this sweep periodically picks up scheduled
// posts whose time has passed, claims them for publishing, and re-triggers
// them. The conditional scheduled -> publishing claim is what keeps the
// sweep and a still-live timer from double-publishing: only one of them
// wins a given post.
type ReconcileJob struct {
	postRepo  repository.PostRepository
	scheduler *service.Scheduler
	interval  time.Duration
	done      chan struct{}
}

func NewReconcileJob(
	postRepo repository.PostRepository,
	scheduler *service.Scheduler,
	interval time.Duration,
) *ReconcileJob {
	return &ReconcileJob{
		postRepo:  postRepo,
		scheduler: scheduler,
		interval:  interval,
		done:      make(chan struct{}),
	}
}

func (j *ReconcileJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("reconcile job started")
}

func (j *ReconcileJob) Stop() {
	close(j.done)
	log.Info().Msg("reconcile job stopped")
}

func (j *ReconcileJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.sweep()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *ReconcileJob) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	due, err := j.postRepo.FindDueScheduled(ctx, time.Now(), config.ReconcileBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("reconcile: find due posts failed")
		return
	}

	for _, post := range due {
		claimed, err := j.postRepo.ClaimForPublishing(ctx, post.ID)
		if err != nil {
			log.Error().Err(err).Str("postId", post.ID).Msg("reconcile: claim failed")
			continue
		}
		if !claimed {
			// A live timer won the claim between the listing and here.
			continue
		}
		log.Info().
			Str("postId", post.ID).
			Time("scheduledAt", *post.ScheduledAt).
			Msg("reconcile: re-triggering overdue post")
		j.scheduler.ScheduleClaimed(post.ID, post.UserID)
	}
}
