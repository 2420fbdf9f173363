package pinterest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultBaseURL = "https://api.pinterest.com/v5"

	requestTimeout = 10 * time.Second
)

// APIError is a non-2xx response from the Pinterest API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pinterest api: status %d: %s", e.StatusCode, e.Message)
}

// Client talks to the Pinterest v5 REST API. Tokens are per-user, so every
// call takes the access token explicitly instead of binding one at
// construction time.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient() *Client {
	return &Client{
		baseURL: DefaultBaseURL,
		client: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// NewClientWithBaseURL is used by tests to point the client at a stub server.
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = baseURL
	return c
}

// MediaSource is the pin payload's image reference: a remote URL or inline
// base64 data, never both.
type MediaSource struct {
	SourceType  string `json:"source_type"`
	URL         string `json:"url,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Data        string `json:"data,omitempty"`
}

func MediaFromURL(url string) MediaSource {
	return MediaSource{SourceType: "image_url", URL: url}
}

func MediaFromBase64(data string) MediaSource {
	return MediaSource{SourceType: "image_base64", ContentType: "image/jpeg", Data: data}
}

type CreatePinParams struct {
	BoardID     string      `json:"board_id"`
	MediaSource MediaSource `json:"media_source"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Link        string      `json:"link,omitempty"`
}

type Pin struct {
	ID      string `json:"id"`
	BoardID string `json:"board_id"`
	Title   string `json:"title"`
	Link    string `json:"link"`
}

func (c *Client) CreatePin(ctx context.Context, accessToken string, params CreatePinParams) (*Pin, error) {
	var pin Pin
	if err := c.do(ctx, accessToken, http.MethodPost, "/pins", params, &pin); err != nil {
		return nil, err
	}
	return &pin, nil
}

type Board struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Privacy     string `json:"privacy"`
}

type boardList struct {
	Items []Board `json:"items"`
}

func (c *Client) ListBoards(ctx context.Context, accessToken string) ([]Board, error) {
	var list boardList
	if err := c.do(ctx, accessToken, http.MethodGet, "/boards", nil, &list); err != nil {
		return nil, err
	}
	return list.Items, nil
}

type CreateBoardParams struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Privacy     string `json:"privacy"`
}

func (c *Client) CreateBoard(ctx context.Context, accessToken string, params CreateBoardParams) (*Board, error) {
	var board Board
	if err := c.do(ctx, accessToken, http.MethodPost, "/boards", params, &board); err != nil {
		return nil, err
	}
	return &board, nil
}

type UpdateBoardParams struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Privacy     *string `json:"privacy,omitempty"`
}

func (c *Client) UpdateBoard(ctx context.Context, accessToken, boardID string, params UpdateBoardParams) (*Board, error) {
	var board Board
	if err := c.do(ctx, accessToken, http.MethodPatch, "/boards/"+boardID, params, &board); err != nil {
		return nil, err
	}
	return &board, nil
}

func (c *Client) DeleteBoard(ctx context.Context, accessToken, boardID string) error {
	return c.do(ctx, accessToken, http.MethodDelete, "/boards/"+boardID, nil, nil)
}

type UserAccount struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func (c *Client) GetUserAccount(ctx context.Context, accessToken string) (*UserAccount, error) {
	var account UserAccount
	if err := c.do(ctx, accessToken, http.MethodGet, "/user_account", nil, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// DailyMetrics is one day of pin analytics counters.
type DailyMetrics struct {
	Date    string           `json:"date"`
	Metrics map[string]int64 `json:"metrics"`
}

type pinAnalyticsResponse struct {
	All struct {
		DailyMetrics []DailyMetrics `json:"daily_metrics"`
	} `json:"all"`
}

func (c *Client) GetPinAnalytics(ctx context.Context, accessToken, pinID string, startDate, endDate time.Time) ([]DailyMetrics, error) {
	path := fmt.Sprintf(
		"/pins/%s/analytics?start_date=%s&end_date=%s&metric_types=IMPRESSION,SAVE,PIN_CLICK,OUTBOUND_CLICK",
		pinID, startDate.Format("2006-01-02"), endDate.Format("2006-01-02"),
	)

	var resp pinAnalyticsResponse
	if err := c.do(ctx, accessToken, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.All.DailyMetrics, nil
}

func (c *Client) do(ctx context.Context, accessToken, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		log.Error().
			Err(err).
			Str("method", method).
			Str("path", path).
			Dur("elapsed", elapsed).
			Msg("pinterest request error")
		return fmt.Errorf("pinterest request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Dur("elapsed", elapsed).
			Msg("pinterest request failed")
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    apiErrorMessage(respBody),
		}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}

func apiErrorMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		return parsed.Message
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return string(body)
}
