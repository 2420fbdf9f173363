package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Simi129/pinterest-backend/internal/model"
	"github.com/Simi129/pinterest-backend/internal/pinterest"
	"github.com/Simi129/pinterest-backend/internal/repository"
	"github.com/Simi129/pinterest-backend/internal/service"
)

// Shared in-memory fakes and wiring for handler tests. Handlers are exercised
// through their chi routers against real services backed by these fakes and
// an httptest Pinterest stub.

type memPostRepo struct {
	mu    sync.Mutex
	seq   int
	posts map[string]*model.Post
}

var _ repository.PostRepository = (*memPostRepo)(nil)

func newMemPostRepo() *memPostRepo {
	return &memPostRepo{posts: make(map[string]*model.Post)}
}

func (r *memPostRepo) FindByID(ctx context.Context, id string) (*model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, nil
	}
	copied := *post
	return &copied, nil
}

func (r *memPostRepo) Create(ctx context.Context, params model.CreatePostParams) (*model.Post, error) {
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

func (r *memPostRepo) UpdateStatus(ctx context.Context, id string, status model.PostStatus, pinID, errMsg *string) (bool, error) {
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

func (r *memPostRepo) ClaimForPublishing(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok || post.Status != model.PostStatusScheduled {
		return false, nil
	}
	post.Status = model.PostStatusPublishing
	return true, nil
}

func (r *memPostRepo) ListByUser(ctx context.Context, userID string, status *model.PostStatus, limit, offset int) ([]model.Post, error) {
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

func (r *memPostRepo) CountByUser(ctx context.Context, userID string, status *model.PostStatus) (int, error) {
	posts, _ := r.ListByUser(ctx, userID, status, 0, 0)
	return len(posts), nil
}

func (r *memPostRepo) FindDueScheduled(ctx context.Context, now time.Time, limit int) ([]model.Post, error) {
	return nil, nil
}

func (r *memPostRepo) FindRecentlyPublished(ctx context.Context, since time.Time, limit int) ([]model.Post, error) {
	return nil, nil
}

func (r *memPostRepo) Stats(ctx context.Context, userID string) (*model.PostStats, error) {
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

func (r *memPostRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.posts)
}

type memConnRepo struct {
	mu    sync.Mutex
	conns map[string]*model.Connection
}

var _ repository.ConnectionRepository = (*memConnRepo)(nil)

func newMemConnRepo() *memConnRepo {
	return &memConnRepo{conns: make(map[string]*model.Connection)}
}

func (r *memConnRepo) FindByUserID(ctx context.Context, userID string) (*model.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conn, ok := r.conns[userID]
	if !ok {
		return nil, nil
	}
	copied := *conn
	return &copied, nil
}

func (r *memConnRepo) Upsert(ctx context.Context, params model.UpsertConnectionParams) (*model.Connection, error) {
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

func (r *memConnRepo) Delete(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, userID)
	return nil
}

type memStateRepo struct {
	mu     sync.Mutex
	states map[string]model.OAuthState
}

var _ repository.OAuthStateRepository = (*memStateRepo)(nil)

func newMemStateRepo() *memStateRepo {
	return &memStateRepo{states: make(map[string]model.OAuthState)}
}

func (r *memStateRepo) Create(ctx context.Context, state, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[state] = model.OAuthState{State: state, UserID: userID, CreatedAt: time.Now()}
	return nil
}

func (r *memStateRepo) Consume(ctx context.Context, state string, maxAge time.Duration) (string, error) {
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

func (r *memStateRepo) DeleteOlderThan(ctx context.Context, maxAge time.Duration) (int64, error) {
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

// testEnv holds the full service wiring for handler tests.
type testEnv struct {
	postRepo  *memPostRepo
	connRepo  *memConnRepo
	stateRepo *memStateRepo

	connService  *service.ConnectionService
	oauthService *service.OAuthService
	postService  *service.PostService

	frontendURL string
	redirectURI string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/pins":
			json.NewEncoder(w).Encode(map[string]string{"id": "pin-123"})
		case r.Method == http.MethodGet && r.URL.Path == "/user_account":
			json.NewEncoder(w).Encode(map[string]string{"id": "pu-1", "username": "tester"})
		case r.Method == http.MethodPost && r.URL.Path == "/oauth/token":
			json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "access-1",
				"refresh_token": "refresh-1",
				"expires_in":    3600,
				"token_type":    "bearer",
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	env := &testEnv{
		postRepo:    newMemPostRepo(),
		connRepo:    newMemConnRepo(),
		stateRepo:   newMemStateRepo(),
		frontendURL: "https://app.example.com",
		redirectURI: "https://backend.example.com/auth/pinterest/callback",
	}

	pinClient := pinterest.NewClientWithBaseURL(server.URL)
	oauthClient := pinterest.NewOAuthClientWithURLs(
		"app", "secret", server.URL+"/oauth", server.URL+"/oauth/token",
	)

	env.connService = service.NewConnectionService(env.connRepo, oauthClient, 5*time.Minute)
	env.oauthService = service.NewOAuthService(
		env.stateRepo, env.connService, oauthClient, pinClient, env.redirectURI, 10*time.Minute,
	)

	publisher := service.NewPublisher(env.postRepo, env.connService, pinClient)
	scheduler := service.NewScheduler(publisher, 5*time.Second)
	t.Cleanup(scheduler.Stop)
	env.postService = service.NewPostService(env.postRepo, env.connRepo, scheduler)

	return env
}

func (env *testEnv) connect(t *testing.T, userID string) {
	t.Helper()

	expires := time.Now().Add(time.Hour)
	_, err := env.connRepo.Upsert(context.Background(), model.UpsertConnectionParams{
		UserID:            userID,
		AccessToken:       "token",
		ExpiresAt:         &expires,
		PinterestUserID:   "pu-1",
		PinterestUsername: "tester",
	})
	require.NoError(t, err)
}

func decodeBody(t *testing.T, body io.Reader) map[string]any {
	t.Helper()

	var parsed map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&parsed))
	return parsed
}
