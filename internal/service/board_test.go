package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simi129/pinterest-backend/internal/pinterest"
)

func newBoardFixture(t *testing.T) (*BoardService, *fakeConnRepo) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/boards":
			json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]string{{"id": "b1", "name": "Recipes", "privacy": "PUBLIC"}},
			})
		case r.Method == http.MethodPost && r.URL.Path == "/boards":
			var params map[string]string
			json.NewDecoder(r.Body).Decode(&params)
			json.NewEncoder(w).Encode(map[string]string{
				"id": "b2", "name": params["name"], "privacy": params["privacy"],
			})
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	connRepo := newFakeConnRepo()
	connSvc := NewConnectionService(
		connRepo,
		pinterest.NewOAuthClientWithURLs("app", "secret", server.URL+"/oauth", server.URL+"/oauth/token"),
		5*time.Minute,
	)
	return NewBoardService(connSvc, pinterest.NewClientWithBaseURL(server.URL)), connRepo
}

func TestBoardService(t *testing.T) {
	ctx := context.Background()

	t.Run("List proxies with the stored credential", func(t *testing.T) {
		svc, connRepo := newBoardFixture(t)
		connectedUser(t, connRepo, "user-1")

		boards, err := svc.List(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, boards, 1)
		assert.Equal(t, "Recipes", boards[0].Name)
	})

	t.Run("List without a connection fails with ErrNotConnected", func(t *testing.T) {
		svc, _ := newBoardFixture(t)

		_, err := svc.List(ctx, "user-1")
		assert.ErrorIs(t, err, ErrNotConnected)
	})

	t.Run("Create passes the board parameters through", func(t *testing.T) {
		svc, connRepo := newBoardFixture(t)
		connectedUser(t, connRepo, "user-1")

		board, err := svc.Create(ctx, "user-1", pinterest.CreateBoardParams{
			Name:    "Travel",
			Privacy: "SECRET",
		})
		require.NoError(t, err)
		assert.Equal(t, "Travel", board.Name)
		assert.Equal(t, "SECRET", board.Privacy)
	})

	t.Run("Delete succeeds for a connected user", func(t *testing.T) {
		svc, connRepo := newBoardFixture(t)
		connectedUser(t, connRepo, "user-1")

		assert.NoError(t, svc.Delete(ctx, "user-1", "b1"))
	})
}
