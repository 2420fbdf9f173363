package pinterest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultAuthURL  = "https://www.pinterest.com/oauth/"
	DefaultTokenURL = "https://api.pinterest.com/v5/oauth/token"

	// Scopes requested during authorization.
	OAuthScopes = "boards:read,boards:write,pins:read,pins:write,user_accounts:read"
)

// TokenResponse is the token endpoint's payload for both the
// authorization-code and refresh-token grants.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`
	TokenType    string `json:"token_type"`
}

// OAuthClient drives the authorization-code exchange against the Pinterest
// token endpoint using Basic-auth client credentials.
type OAuthClient struct {
	appID     string
	appSecret string
	authURL   string
	tokenURL  string
	client    *http.Client
}

func NewOAuthClient(appID, appSecret string) *OAuthClient {
	return &OAuthClient{
		appID:     appID,
		appSecret: appSecret,
		authURL:   DefaultAuthURL,
		tokenURL:  DefaultTokenURL,
		client: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// NewOAuthClientWithURLs is used by tests to point at stub endpoints.
func NewOAuthClientWithURLs(appID, appSecret, authURL, tokenURL string) *OAuthClient {
	c := NewOAuthClient(appID, appSecret)
	c.authURL = authURL
	c.tokenURL = tokenURL
	return c
}

// AuthorizationURL builds the URL the user is redirected to for consent.
func (c *OAuthClient) AuthorizationURL(redirectURI, state string) string {
	params := url.Values{
		"client_id":     {c.appID},
		"redirect_uri":  {redirectURI},
		"response_type": {"code"},
		"scope":         {OAuthScopes},
		"state":         {state},
	}
	return c.authURL + "?" + params.Encode()
}

func (c *OAuthClient) ExchangeCode(ctx context.Context, code, redirectURI string) (*TokenResponse, error) {
	data := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {redirectURI},
	}
	return c.tokenRequest(ctx, data)
}

func (c *OAuthClient) RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	data := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	return c.tokenRequest(ctx, data)
}

func (c *OAuthClient) tokenRequest(ctx context.Context, data url.Values) (*TokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.appID, c.appSecret)

	start := time.Now()
	resp, err := c.client.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		log.Error().
			Err(err).
			Str("grantType", data.Get("grant_type")).
			Dur("elapsed", elapsed).
			Msg("pinterest token request error")
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Error().
			Str("grantType", data.Get("grant_type")).
			Int("status", resp.StatusCode).
			Dur("elapsed", elapsed).
			Msg("pinterest token request failed")
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    apiErrorMessage(body),
		}
	}

	var token TokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("token response missing access_token")
	}

	return &token, nil
}
