package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simi129/pinterest-backend/internal/model"
)

func newSchedulerFixture(t *testing.T) (*Scheduler, *fakePostRepo, *fakeConnRepo) {
	t.Helper()

	stub := newPinStub(t)
	postRepo := newFakePostRepo()
	connRepo := newFakeConnRepo()
	publisher := newTestPublisher(postRepo, connRepo, stub.server.URL)
	scheduler := NewScheduler(publisher, 5*time.Second)
	t.Cleanup(scheduler.Stop)
	return scheduler, postRepo, connRepo
}

func TestScheduler(t *testing.T) {
	ctx := context.Background()

	t.Run("ScheduleNow publishes on a detached goroutine", func(t *testing.T) {
		scheduler, postRepo, connRepo := newSchedulerFixture(t)
		connectedUser(t, connRepo, "user-1")

		post, err := postRepo.Create(ctx, model.CreatePostParams{
			UserID:   "user-1",
			BoardID:  "board-1",
			ImageURL: strPtr("https://example.com/a.jpg"),
			Title:    "Hello",
			Status:   model.PostStatusPublishing,
		})
		require.NoError(t, err)

		scheduler.ScheduleNow(post.ID, "user-1")

		assert.True(t, postRepo.waitForStatus(post.ID, model.PostStatusPublished, 2*time.Second))
	})

	t.Run("ScheduleAt with a past target publishes immediately", func(t *testing.T) {
		scheduler, postRepo, connRepo := newSchedulerFixture(t)
		connectedUser(t, connRepo, "user-1")

		post, err := postRepo.Create(ctx, model.CreatePostParams{
			UserID:      "user-1",
			BoardID:     "board-1",
			ImageURL:    strPtr("https://example.com/a.jpg"),
			Title:       "Hello",
			ScheduledAt: timePtr(time.Now().Add(-time.Minute)),
			Status:      model.PostStatusScheduled,
		})
		require.NoError(t, err)

		scheduler.ScheduleAt(post.ID, "user-1", *post.ScheduledAt)

		assert.True(t, postRepo.waitForStatus(post.ID, model.PostStatusPublished, 2*time.Second))
	})

	t.Run("ScheduleAt defers until the target time", func(t *testing.T) {
		scheduler, postRepo, connRepo := newSchedulerFixture(t)
		connectedUser(t, connRepo, "user-1")

		at := time.Now().Add(100 * time.Millisecond)
		post, err := postRepo.Create(ctx, model.CreatePostParams{
			UserID:      "user-1",
			BoardID:     "board-1",
			ImageURL:    strPtr("https://example.com/a.jpg"),
			Title:       "Hello",
			ScheduledAt: &at,
			Status:      model.PostStatusScheduled,
		})
		require.NoError(t, err)

		scheduler.ScheduleAt(post.ID, "user-1", at)

		// Still waiting on the timer.
		assert.Equal(t, model.PostStatusScheduled, postRepo.get(post.ID).Status)

		assert.True(t, postRepo.waitForStatus(post.ID, model.PostStatusPublished, 2*time.Second))
	})

	t.Run("Stop drops pending deferred publishes", func(t *testing.T) {
		scheduler, postRepo, connRepo := newSchedulerFixture(t)
		connectedUser(t, connRepo, "user-1")

		at := time.Now().Add(time.Hour)
		post, err := postRepo.Create(ctx, model.CreatePostParams{
			UserID:      "user-1",
			BoardID:     "board-1",
			ImageURL:    strPtr("https://example.com/a.jpg"),
			Title:       "Hello",
			ScheduledAt: &at,
			Status:      model.PostStatusScheduled,
		})
		require.NoError(t, err)

		scheduler.ScheduleAt(post.ID, "user-1", at)
		scheduler.Stop()

		// Dropped on shutdown, left for the reconcile sweep after restart.
		assert.Equal(t, model.PostStatusScheduled, postRepo.get(post.ID).Status)
	})

	t.Run("triggers after Stop are rejected", func(t *testing.T) {
		scheduler, postRepo, connRepo := newSchedulerFixture(t)
		connectedUser(t, connRepo, "user-1")

		post, err := postRepo.Create(ctx, model.CreatePostParams{
			UserID:   "user-1",
			BoardID:  "board-1",
			ImageURL: strPtr("https://example.com/a.jpg"),
			Title:    "Hello",
			Status:   model.PostStatusPublishing,
		})
		require.NoError(t, err)

		scheduler.Stop()
		scheduler.ScheduleNow(post.ID, "user-1")

		assert.False(t, postRepo.waitForStatus(post.ID, model.PostStatusPublished, 100*time.Millisecond))
	})
}
