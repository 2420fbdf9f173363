package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Simi129/pinterest-backend/internal/model"
	"github.com/Simi129/pinterest-backend/internal/repository"
)

// In-memory repository fakes mirroring the SQL implementations' semantics,
// including the monotonic status guard and the conditional publish claim.

type fakePostRepo struct {
	mu     sync.Mutex
	seq    int
	posts  map[string]*model.Post
	claims int
}

var _ repository.PostRepository = (*fakePostRepo)(nil)

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[string]*model.Post)}
}

func (r *fakePostRepo) FindByID(ctx context.Context, id string) (*model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, nil
	}
	copied := *post
	return &copied, nil
}

func (r *fakePostRepo) Create(ctx context.Context, params model.CreatePostParams) (*model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	post := &model.Post{
		ID:          fmt.Sprintf("post-%d", r.seq),
		UserID:      params.UserID,
		BoardID:     params.BoardID,
		ImageURL:    params.ImageURL,
		ImageBase64: params.ImageBase64,
		Title:       params.Title,
		Description: params.Description,
		Link:        params.Link,
		ScheduledAt: params.ScheduledAt,
		Status:      params.Status,
		CreatedAt:   time.Now(),
	}
	r.posts[post.ID] = post
	copied := *post
	return &copied, nil
}

func (r *fakePostRepo) UpdateStatus(ctx context.Context, id string, status model.PostStatus, pinID, errMsg *string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok || post.Status.Terminal() {
		return false, nil
	}
	post.Status = status
	if pinID != nil {
		post.PinterestPinID = pinID
	}
	if errMsg != nil {
		post.ErrorMessage = errMsg
	}
	return true, nil
}

func (r *fakePostRepo) ClaimForPublishing(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.claims++
	post, ok := r.posts[id]
	if !ok || post.Status != model.PostStatusScheduled {
		return false, nil
	}
	post.Status = model.PostStatusPublishing
	return true, nil
}

func (r *fakePostRepo) ListByUser(ctx context.Context, userID string, status *model.PostStatus, limit, offset int) ([]model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var posts []model.Post
	for _, post := range r.posts {
		if post.UserID != userID {
			continue
		}
		if status != nil && post.Status != *status {
			continue
		}
		posts = append(posts, *post)
	}
	return posts, nil
}

func (r *fakePostRepo) CountByUser(ctx context.Context, userID string, status *model.PostStatus) (int, error) {
	posts, _ := r.ListByUser(ctx, userID, status, 0, 0)
	return len(posts), nil
}

func (r *fakePostRepo) FindDueScheduled(ctx context.Context, now time.Time, limit int) ([]model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []model.Post
	for _, post := range r.posts {
		if post.Status == model.PostStatusScheduled && post.ScheduledAt != nil && !post.ScheduledAt.After(now) {
			due = append(due, *post)
		}
	}
	return due, nil
}

func (r *fakePostRepo) FindRecentlyPublished(ctx context.Context, since time.Time, limit int) ([]model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var posts []model.Post
	for _, post := range r.posts {
		if post.Status == model.PostStatusPublished && post.PinterestPinID != nil && !post.CreatedAt.Before(since) {
			posts = append(posts, *post)
		}
	}
	return posts, nil
}

func (r *fakePostRepo) Stats(ctx context.Context, userID string) (*model.PostStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &model.PostStats{}
	for _, post := range r.posts {
		if post.UserID != userID {
			continue
		}
		stats.TotalPosts++
		switch post.Status {
		case model.PostStatusScheduled:
			stats.TotalScheduled++
		case model.PostStatusPublished:
			stats.TotalPublished++
		case model.PostStatusFailed:
			stats.TotalFailed++
		}
	}
	return stats, nil
}

func (r *fakePostRepo) get(id string) model.Post {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.posts[id]
}

func (r *fakePostRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.posts)
}

func (r *fakePostRepo) claimCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.claims
}

func (r *fakePostRepo) waitForStatus(id string, status model.PostStatus, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		r.mu.Lock()
		post, ok := r.posts[id]
		done := ok && post.Status == status
		r.mu.Unlock()
		if done {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

type fakeConnRepo struct {
	mu    sync.Mutex
	conns map[string]*model.Connection
}

var _ repository.ConnectionRepository = (*fakeConnRepo)(nil)

func newFakeConnRepo() *fakeConnRepo {
	return &fakeConnRepo{conns: make(map[string]*model.Connection)}
}

func (r *fakeConnRepo) FindByUserID(ctx context.Context, userID string) (*model.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conn, ok := r.conns[userID]
	if !ok {
		return nil, nil
	}
	copied := *conn
	return &copied, nil
}

func (r *fakeConnRepo) Upsert(ctx context.Context, params model.UpsertConnectionParams) (*model.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	conn := &model.Connection{
		UserID:            params.UserID,
		AccessToken:       params.AccessToken,
		RefreshToken:      params.RefreshToken,
		ExpiresAt:         params.ExpiresAt,
		PinterestUserID:   params.PinterestUserID,
		PinterestUsername: params.PinterestUsername,
		Scopes:            params.Scopes,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if existing, ok := r.conns[params.UserID]; ok {
		conn.CreatedAt = existing.CreatedAt
	}
	r.conns[params.UserID] = conn
	copied := *conn
	return &copied, nil
}

func (r *fakeConnRepo) Delete(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, userID)
	return nil
}

func (r *fakeConnRepo) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

type fakeStateRepo struct {
	mu     sync.Mutex
	states map[string]model.OAuthState
}

var _ repository.OAuthStateRepository = (*fakeStateRepo)(nil)

func newFakeStateRepo() *fakeStateRepo {
	return &fakeStateRepo{states: make(map[string]model.OAuthState)}
}

func (r *fakeStateRepo) Create(ctx context.Context, state, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[state] = model.OAuthState{State: state, UserID: userID, CreatedAt: time.Now()}
	return nil
}

func (r *fakeStateRepo) Consume(ctx context.Context, state string, maxAge time.Duration) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.states[state]
	if !ok {
		return "", nil
	}
	delete(r.states, state)
	if time.Since(entry.CreatedAt) > maxAge {
		return "", nil
	}
	return entry.UserID, nil
}

func (r *fakeStateRepo) DeleteOlderThan(ctx context.Context, maxAge time.Duration) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for state, entry := range r.states {
		if time.Since(entry.CreatedAt) > maxAge {
			delete(r.states, state)
			removed++
		}
	}
	return removed, nil
}
