// Package forge integrates with the Autodesk Platform Services (Forge)
// APIs: client-credentials token exchange, OSS object storage for CAD
// files, and the Model Derivative conversion service.
package forge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sitedocs/internal/config"
	"sitedocs/internal/domain"
)

// DefaultScope is requested when the caller does not name one.
const DefaultScope = "data:read viewables:read"

// Client exchanges the configured client id/secret for short-lived
// bearer tokens. No token is cached: every call performs a fresh
// exchange, trying the v2 endpoint first and falling back to the
// legacy v1 endpoint on any failure.
type Client struct {
	cfg        *config.ForgeConfig
	httpClient *http.Client
	logger     *slog.Logger
}

// Token is the result of a client-credentials exchange. Endpoint
// records which endpoint version issued it.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	ExpiresIn   int    `json:"expires_in"`
	Endpoint    string `json:"endpoint,omitempty"`
	Scope       string `json:"scope,omitempty"`
}

// NewClient creates a new token client
func NewClient(cfg *config.ForgeConfig, logger *slog.Logger) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

// GetToken performs a client-credentials exchange for the given scope.
// On v2 failure it retries once against the v1 endpoint; if both fail
// the aggregate error carries both underlying failures.
func (c *Client) GetToken(ctx context.Context, scope string) (*Token, error) {
	if scope == "" {
		scope = DefaultScope
	}

	token, errV2 := c.requestToken(ctx, "/authentication/v2/token", scope)
	if errV2 == nil {
		token.Endpoint = "v2"
		token.Scope = scope
		return token, nil
	}
	c.logger.Warn("v2 token endpoint failed, falling back to v1", "error", errV2)

	token, errV1 := c.requestToken(ctx, "/authentication/v1/authenticate", scope)
	if errV1 == nil {
		token.Endpoint = "v1"
		token.Scope = scope
		return token, nil
	}
	c.logger.Error("v1 token endpoint failed", "error", errV1)

	return nil, &domain.TokenExchangeError{V2: errV2, V1: errV1}
}

func (c *Client) requestToken(ctx context.Context, path, scope string) (*Token, error) {
	form := url.Values{
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"grant_type":    {"client_credentials"},
		"scope":         {scope},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, truncate(body, 200))
	}

	var token Token
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("parse token response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("token response missing access_token")
	}

	return &token, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
