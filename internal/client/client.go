// internal/client/client.go
//
// HTTP client for the bingo persistence service. Used by a game/UI process
// running separately from the server; wraps the /health, /leaderboard,
// /history, and /results endpoints. No retries: the spec treats persistence
// failures as immediately fatal for the triggering request.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/JoanBatllo/my-project-bingo/internal/leaderboard"
)

// ErrNoBaseURL is returned when neither an explicit base URL nor the
// PERSISTENCE_URL environment variable is available.
var ErrNoBaseURL = errors.New("persistence base URL not configured (set PERSISTENCE_URL)")

// Client calls the persistence API over HTTP.
type Client struct {
	baseURL string
	http    *fasthttp.Client

	defaultTimeout time.Duration
}

// Option configures the client.
type Option func(*Client)

// WithTimeout overrides the default per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

// New builds a client for baseURL. An empty baseURL falls back to the
// PERSISTENCE_URL environment variable.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = os.Getenv("PERSISTENCE_URL")
	}
	if baseURL == "" {
		return nil, ErrNoBaseURL
	}
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 16},
		defaultTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Health checks service liveness.
func (c *Client) Health(ctx context.Context) error {
	return c.doJSON(ctx, fasthttp.MethodGet, "/health", nil, nil)
}

// Leaderboard fetches up to limit aggregated standings rows.
func (c *Client) Leaderboard(ctx context.Context, limit int) ([]leaderboard.Entry, error) {
	var out []leaderboard.Entry
	path := fmt.Sprintf("/leaderboard?limit=%d", limit)
	if err := c.doJSON(ctx, fasthttp.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// History fetches up to limit recent results, newest first.
func (c *Client) History(ctx context.Context, limit int) ([]leaderboard.Result, error) {
	var out []leaderboard.Result
	path := fmt.Sprintf("/history?limit=%d", limit)
	if err := c.doJSON(ctx, fasthttp.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RecordResult persists one game result and returns the stored record.
func (c *Client) RecordResult(ctx context.Context, r leaderboard.Result) (leaderboard.Result, error) {
	var out leaderboard.Result
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/results", r, &out); err != nil {
		return leaderboard.Result{}, err
	}
	return out, nil
}

// doJSON performs one JSON request/response round trip.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	req.Header.SetContentType("application/json")

	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		req.SetBody(payload)
	}

	if err := c.http.DoDeadline(req, resp, c.deadline(ctx)); err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		return fmt.Errorf("persistence api error: status=%d body=%s", status, truncate(string(resp.Body()), 512))
	}
	if out != nil {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// deadline picks the earlier of the context deadline and the client timeout.
func (c *Client) deadline(ctx context.Context) time.Time {
	dl := time.Now().Add(c.defaultTimeout)
	if ctxDL, ok := ctx.Deadline(); ok && ctxDL.Before(dl) {
		return ctxDL
	}
	return dl
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
