package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Scheduler defers Publisher invocations. The wait is a passive in-process
// timer and is not persisted: a deferred task pending across a restart is
// dropped, leaving the post scheduled until the reconcile sweep re-triggers
// it. Each post gets exactly one scheduling trigger from the request path.
type Scheduler struct {
	publisher      *Publisher
	publishTimeout time.Duration

	mu      sync.Mutex
	wg      sync.WaitGroup
	done    chan struct{}
	stopped bool
}

func NewScheduler(publisher *Publisher, publishTimeout time.Duration) *Scheduler {
	return &Scheduler{
		publisher:      publisher,
		publishTimeout: publishTimeout,
		done:           make(chan struct{}),
	}
}

// ScheduleNow runs the publish on a detached goroutine so the triggering
// request returns before publishing completes.
func (s *Scheduler) ScheduleNow(postID, userID string) {
	if !s.track() {
		return
	}
	go func() {
		defer s.wg.Done()
		s.publish(postID, userID)
	}()
}

// ScheduleClaimed is ScheduleNow for a post the caller has already moved
// from scheduled to publishing, so the publisher does not retake the claim.
func (s *Scheduler) ScheduleClaimed(postID, userID string) {
	if !s.track() {
		return
	}
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.publishTimeout)
		defer cancel()
		s.publisher.PublishClaimed(ctx, postID, userID)
	}()
}

// ScheduleAt waits until the target time before publishing. A target in the
// past or present publishes immediately.
func (s *Scheduler) ScheduleAt(postID, userID string, at time.Time) {
	delay := time.Until(at)
	if delay <= 0 {
		s.ScheduleNow(postID, userID)
		return
	}

	if !s.track() {
		return
	}

	log.Info().
		Str("postId", postID).
		Dur("delay", delay).
		Msg("publish deferred")

	go func() {
		defer s.wg.Done()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-s.done:
			log.Warn().Str("postId", postID).Msg("deferred publish dropped on shutdown")
			return
		case <-timer.C:
		}

		s.publish(postID, userID)
	}()
}

// Stop drops pending timers and waits for in-flight publishes to settle.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		close(s.done)
	}
	s.mu.Unlock()

	s.wg.Wait()
	log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) track() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		log.Warn().Msg("scheduler stopped, trigger dropped")
		return false
	}
	s.wg.Add(1)
	return true
}

func (s *Scheduler) publish(postID, userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.publishTimeout)
	defer cancel()

	s.publisher.Publish(ctx, postID, userID)
}
