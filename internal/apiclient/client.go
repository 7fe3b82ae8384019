// Package apiclient is the single chokepoint for every call to the
// storefront API: it builds requests, attaches the session token,
// parses JSON and error bodies, and tears the session down on 401.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"strings"
	"time"

	"storefront-client/internal/domain"
)

// SessionStore is the slice of local storage the client needs.
type SessionStore interface {
	Session() (domain.Session, bool, error)
	ClearSession() error
}

// Client issues requests against one API base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      SessionStore
	onExpired  func()
	logger     *log.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithTimeout bounds every request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHTTPClient swaps the underlying transport, used by tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithSessionExpiredHook registers the navigation hook invoked after a
// 401 teardown, once the session is already cleared. The storefront
// uses it to send the user back to the login screen with a
// session-expired marker.
func WithSessionExpiredHook(fn func()) Option {
	return func(c *Client) { c.onExpired = fn }
}

// New builds a Client. store may not be nil; requireAuth calls read the
// token from it and 401 responses clear it.
func New(baseURL string, store SessionStore, logger *log.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		store:      store,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type wireError struct {
	Error   string              `json:"error"`
	Details []domain.StockIssue `json:"details"`
}

// Do performs one API call and returns the raw JSON body. A nil result
// with a nil error means the server answered 204/205. Callers must not
// retry after domain.ErrSessionExpired.
func (c *Client) Do(ctx context.Context, method, endpoint string, body interface{}, requireAuth bool) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if requireAuth {
		sess, ok, err := c.store.Session()
		if err != nil {
			return nil, fmt.Errorf("read session: %w", err)
		}
		if !ok {
			return nil, domain.ErrAuthRequired
		}
		req.Header.Set("Authorization", "Token "+sess.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		if err := c.store.ClearSession(); err != nil {
			c.logger.Printf("clear session after 401: %v", err)
		}
		if c.onExpired != nil {
			c.onExpired()
		}
		return nil, domain.ErrSessionExpired
	}

	if resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusResetContent {
		return nil, nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseAPIError(resp.StatusCode, raw)
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		return nil, fmt.Errorf("%s %s: unexpected content type %q on success", method, endpoint, resp.Header.Get("Content-Type"))
	}

	return json.RawMessage(raw), nil
}

// parseAPIError prefers the structured {error, details} contract and
// falls back to the raw body text.
func parseAPIError(status int, raw []byte) error {
	var we wireError
	if err := json.Unmarshal(raw, &we); err == nil && we.Error != "" {
		return &domain.APIError{Status: status, Message: we.Error, Details: we.Details}
	}
	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &domain.APIError{Status: status, Message: msg}
}
