package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/NeurArk/ai-contract-guardian/config"
)

const apiPrefix = "/api/v1"

// TokenSource supplies the current bearer token, or "" when anonymous.
// The session store is the only expected implementation.
type TokenSource func() string

// Client is the HTTP client for the Contract Guardian API. It attaches
// bearer tokens, normalizes backend errors into *APIError, retries
// transient failures and reports 401 responses to a single global hook.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokenSource    TokenSource
	onUnauthorized func()

	maxRetries     uint64
	retryBaseDelay time.Duration
	retryMaxDelay  time.Duration
}

// New creates a client from configuration.
func New(cfg *config.APIConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		maxRetries:     uint64(cfg.MaxRetries),
		retryBaseDelay: cfg.RetryBaseDelay,
		retryMaxDelay:  cfg.RetryMaxDelay,
	}
}

// SetTokenSource registers the token provider. All subsequent requests
// carry "Authorization: Bearer <token>" whenever the source returns a
// non-empty token.
func (c *Client) SetTokenSource(src TokenSource) {
	c.tokenSource = src
}

// SetUnauthorizedHandler registers the global 401 hook. The hook runs at
// most once per request, regardless of which operation triggered it.
func (c *Client) SetUnauthorizedHandler(fn func()) {
	c.onUnauthorized = fn
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doJSON performs a JSON request against the API and decodes the
// response into out (which may be nil). Transient failures (transport
// errors, 5xx) are retried with capped exponential backoff; 4xx
// responses are never retried.
func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		payload = data
	}

	operation := func() error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, reader)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		c.prepare(req)

		return c.handle(req, out)
	}

	return c.retry(ctx, operation)
}

// prepare sets the headers common to every API request.
func (c *Client) prepare(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if c.tokenSource != nil {
		if token := c.tokenSource(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
}

// handle executes one attempt and classifies the outcome for the retry
// loop: transport errors and 5xx are retryable, everything else is not.
func (c *Client) handle(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || len(respBody) == 0 {
			return nil
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to parse response: %w", err))
		}
		return nil
	}

	apiErr := &APIError{Status: resp.StatusCode}
	// Best effort: non-JSON error bodies keep an empty detail.
	_ = json.Unmarshal(respBody, apiErr)

	if resp.StatusCode == http.StatusUnauthorized {
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return backoff.Permanent(apiErr)
	}
	if resp.StatusCode >= 500 {
		return apiErr
	}
	return backoff.Permanent(apiErr)
}

func (c *Client) retry(ctx context.Context, operation backoff.Operation) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryBaseDelay
	bo.MaxInterval = c.retryMaxDelay

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(bo, c.maxRetries), ctx))
	return unwrapPermanent(err)
}

// unwrapPermanent strips the backoff marker so callers only ever see the
// underlying error.
func unwrapPermanent(err error) error {
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return permanent.Err
	}
	return err
}
