package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sadopc/taskdesk/internal/model"
)

// Auth identifies the session a request is made for. Guests carry no token
// and never reach the network.
type Auth struct {
	Token  string
	UserID string
}

func (a Auth) IsGuest() bool { return a.UserID == model.GuestID }

// Client is a thin gateway to the task REST API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	log       zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New creates a client for the API served at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be an absolute http(s) url", baseURL)
	}

	c := &Client{
		baseURL:   u,
		http:      &http.Client{},
		userAgent: "taskdesk",
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) BaseURL() string { return c.baseURL.String() }

func (c *Client) newRequest(ctx context.Context, method, path string, auth *Auth, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if auth != nil && auth.Token != "" {
		req.Header.Set("Authorization", "Bearer "+auth.Token)
	}
	return req, nil
}

// do sends req and returns the status and body. Transport failures are
// wrapped in ErrNetwork.
func (c *Client) do(req *http.Request) (int, []byte, error) {
	start := time.Now()
	reqID := req.Header.Get("X-Request-ID")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Str("request_id", reqID).
			Err(err).
			Msg("request failed")
		return 0, nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read body: %w", ErrNetwork, err)
	}

	c.log.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Str("request_id", reqID).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("request done")
	return resp.StatusCode, body, nil
}

// send performs a request and classifies non-2xx answers. A 401 on an
// authenticated call becomes ErrUnauthorized.
func (c *Client) send(req *http.Request, authenticated bool) ([]byte, error) {
	status, body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status >= 200 && status < 300 {
		return body, nil
	}
	if status == http.StatusUnauthorized && authenticated {
		return nil, ErrUnauthorized
	}
	return nil, &RejectedError{Status: status, Detail: rejectionDetail(body)}
}

func (c *Client) sendJSON(ctx context.Context, method, path string, auth *Auth, in any) ([]byte, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := c.newRequest(ctx, method, path, auth, body)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, auth != nil)
}

// rejectionDetail pulls a human-readable message out of an error body: the
// "detail" field, or field errors joined as "field: message".
func rejectionDetail(body []byte) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if raw, ok := payload["detail"]; ok {
		var detail string
		if json.Unmarshal(raw, &detail) == nil {
			return detail
		}
	}

	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		var msgs []string
		if json.Unmarshal(payload[k], &msgs) == nil && len(msgs) > 0 {
			parts = append(parts, k+": "+strings.Join(msgs, " "))
			continue
		}
		var msg string
		if json.Unmarshal(payload[k], &msg) == nil && msg != "" {
			parts = append(parts, k+": "+msg)
		}
	}
	return strings.Join(parts, "; ")
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool { return errors.Is(err, ErrNetwork) }
