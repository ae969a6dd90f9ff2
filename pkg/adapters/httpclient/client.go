// Package httpclient calls a remote record API (/api/recipients/{id}) and
// exposes it through the same FetchRecipient/UpdateRecipient pair as the
// in-process transport, so a Screen can run against a remote server.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/recipient/internal/logging"
	"github.com/aretw0/recipient/pkg/domain"
	"github.com/aretw0/recipient/pkg/ports"
	"github.com/aretw0/recipient/pkg/transport"
)

// ErrUnexpectedStatus is returned for responses the client cannot map.
var ErrUnexpectedStatus = errors.New("unexpected status")

// Client talks to the record API of a recipient server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
	logger     *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRetries retries rate-limited and 5xx responses up to n times, waiting
// backoff, 2*backoff, ... between attempts.
func WithRetries(n int, backoff time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = n
		c.backoff = backoff
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New returns a Client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		backoff:    200 * time.Millisecond,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchRecipient loads the record with the given id.
func (c *Client) FetchRecipient(ctx context.Context, id string) (*ports.Record, error) {
	var rec ports.Record
	err := c.do(ctx, http.MethodGet, id, nil, func(resp *http.Response) error {
		return json.NewDecoder(resp.Body).Decode(&rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdateRecipient replaces the record stored under rec.ID.
func (c *Client) UpdateRecipient(ctx context.Context, rec *ports.Record) error {
	if rec == nil {
		return fmt.Errorf("update recipient: nil record")
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode recipient %s: %w", rec.ID, err)
	}
	return c.do(ctx, http.MethodPut, rec.ID, body, nil)
}

func (c *Client) do(ctx context.Context, method, id string, body []byte, decode func(*http.Response) error) error {
	endpoint := c.baseURL + "/api/recipients/" + url.PathEscape(id)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.backoff * time.Duration(1<<(attempt-1))
			c.logger.Debug("retrying record request", "method", method, "id", id, "attempt", attempt, "wait", wait, "error", lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		retry, err := c.once(ctx, method, endpoint, id, body, decode)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry {
			return err
		}
	}
	return lastErr
}

func (c *Client) once(ctx context.Context, method, endpoint, id string, body []byte, decode func(*http.Response) error) (bool, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return true, fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if decode == nil {
			return false, nil
		}
		if err := decode(resp); err != nil {
			return false, fmt.Errorf("decode recipient %s: %w", id, err)
		}
		return false, nil
	case resp.StatusCode == http.StatusNotFound:
		return false, fmt.Errorf("%w: %s", domain.ErrRecipientNotFound, id)
	case resp.StatusCode == http.StatusTooManyRequests:
		return true, transport.ErrRateLimited
	case resp.StatusCode >= 500:
		return true, fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode, readMessage(resp.Body))
	default:
		return false, fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode, readMessage(resp.Body))
	}
}

func readMessage(r io.Reader) string {
	var body struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(r, 4096))
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return strings.TrimSpace(string(raw))
}
