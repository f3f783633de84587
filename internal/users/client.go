// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package users

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 * 1024

// API is the user-record API as seen by the profile view.
type API interface {
	GetUser(ctx context.Context, userID string) (*User, error)
	RequestAccount(ctx context.Context, userID string) error
}

// TokenSource supplies the bearer token for each call. Returning "" sends
// the request unauthenticated.
type TokenSource func() (string, error)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the client.
type ClientConfig struct {
	// BaseURL is the API root (default: http://127.0.0.1:8790/api)
	BaseURL string

	// Timeout per HTTP request (default: 10s)
	Timeout time.Duration

	// MaxRetries for reads on transient failures (default: 0)
	MaxRetries int

	// RetryDelay between read retries (default: 1s)
	RetryDelay time.Duration

	// RequestsPerSecond paces outgoing calls (0 = unlimited)
	RequestsPerSecond float64

	// Token supplies the bearer token (optional)
	Token TokenSource

	// HTTPClient overrides the transport (optional, used by tests)
	HTTPClient *http.Client
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:    "http://127.0.0.1:8790/api",
		Timeout:    10 * time.Second,
		RetryDelay: time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the user-record API over HTTP. Safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client, filling zero values from DefaultConfig.
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	defaults := DefaultConfig()
	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = defaults.RetryDelay
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	var limiter *rate.Limiter
	if config.RequestsPerSecond > 0 {
		burst := int(config.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), burst)
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
		limiter:    limiter,
	}
}

// BaseURL returns the API root this client talks to.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// =============================================================================
// OPERATIONS
// =============================================================================

// GetUser fetches the record for userID, retrying transient failures.
func (c *Client) GetUser(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, &APIError{Type: ErrTypeInvalidRequest, Message: "user id is required"}
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.config.RetryDelay):
			}
		}

		var user User
		err := c.do(ctx, http.MethodGet, c.userPath(userID), nil, &user)
		if err == nil {
			return &user, nil
		}
		lastErr = err
		if !Retryable(err) {
			break
		}
		log.Printf("USER_FETCH_RETRY | user=%s attempt=%d error=%v", userID, attempt+1, err)
	}
	return nil, lastErr
}

// RequestAccount asks the backend to provision an AWS account for userID.
// Never retried.
func (c *Client) RequestAccount(ctx context.Context, userID string) error {
	if userID == "" {
		return &APIError{Type: ErrTypeInvalidRequest, Message: "user id is required"}
	}
	body := requestAccountBody{UserID: userID}
	return c.do(ctx, http.MethodPost, c.userPath(userID)+"/request-account", body, nil)
}

// SetUser upserts a record through the admin endpoint of the development
// API. Only the non-empty fields of u are applied.
func (c *Client) SetUser(ctx context.Context, userID string, u User) (*User, error) {
	if userID == "" {
		return nil, &APIError{Type: ErrTypeInvalidRequest, Message: "user id is required"}
	}
	var out User
	if err := c.do(ctx, http.MethodPut, "/admin/users/"+url.PathEscape(userID), u, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) userPath(userID string) string {
	return "/users/" + url.PathEscape(userID)
}

// =============================================================================
// TRANSPORT
// =============================================================================

// do performs one request. in is JSON-encoded when non-nil; out is decoded
// from a 2xx body when non-nil.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &APIError{Type: ErrTypeTimeout, Message: "request cancelled", Cause: err}
		}
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return &APIError{Type: ErrTypeInvalidRequest, Message: "failed to encode request", Cause: err}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, body)
	if err != nil {
		return &APIError{Type: ErrTypeInvalidRequest, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.config.Token != nil {
		token, err := c.config.Token()
		if err != nil {
			return &APIError{Type: ErrTypeUnauthorized, Message: "could not read session token", Cause: err}
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return &APIError{Type: ErrTypeTimeout, Message: "request timed out", Cause: err}
		}
		if errors.Is(err, context.Canceled) {
			return &APIError{Type: ErrTypeTimeout, Message: "request cancelled", Cause: err}
		}
		return &APIError{Type: ErrTypeConnection, Message: "could not reach user service", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp)
	}

	if out == nil {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Type: ErrTypeInvalidResponse, Status: resp.StatusCode, Message: "failed to decode response", Cause: err}
	}
	return nil
}

// errorFromResponse builds an APIError whose message is the server's own
// explanation when one is present.
func errorFromResponse(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	msg := ""
	var eb errorBody
	if json.Unmarshal(data, &eb) == nil {
		msg = eb.Error
		if msg == "" {
			msg = eb.Message
		}
	}
	if msg == "" {
		if text := strings.TrimSpace(string(data)); text != "" && !strings.HasPrefix(text, "{") && len(text) < 200 {
			msg = text
		}
	}
	if msg == "" {
		msg = fmt.Sprintf("unexpected status %s", resp.Status)
	}

	return &APIError{
		Type:    typeForStatus(resp.StatusCode),
		Status:  resp.StatusCode,
		Message: msg,
	}
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
