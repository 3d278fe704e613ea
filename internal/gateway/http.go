package gateway

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

	"github.com/jdsantisteban/todo-frontend/internal/model"
)

// maxErrorBody caps how much of a failed response is kept for diagnostics.
const maxErrorBody = 512

var errStatus = errors.New("unexpected status")

// HTTPClient implements Gateway over JSON/HTTP with bearer auth.
type HTTPClient struct {
	base   string
	http   *http.Client
	logger *slog.Logger
}

// Option customizes an HTTPClient.
type Option func(*HTTPClient)

// WithTimeout sets the per-request timeout. The client owns its
// *http.Client, so this never touches http.DefaultClient.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the logger used for request outcomes.
func WithLogger(l *slog.Logger) Option {
	return func(c *HTTPClient) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewHTTPClient builds a client for the API rooted at baseURL
// (e.g. http://localhost:5000/api).
func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api url must be http or https: %q", baseURL)
	}
	c := &HTTPClient{
		base:   baseURL,
		http:   &http.Client{Timeout: 15 * time.Second},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *HTTPClient) List(ctx context.Context, token string) ([]model.Item, error) {
	var items []model.Item
	if err := c.do(ctx, "list", http.MethodGet, "/todos", token, nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}

func (c *HTTPClient) Create(ctx context.Context, token, text string) (model.Item, error) {
	var it model.Item
	body := struct {
		Text string `json:"text"`
	}{Text: text}
	err := c.do(ctx, "create", http.MethodPost, "/todos", token, body, &it)
	return it, err
}

func (c *HTTPClient) Update(ctx context.Context, token, id string, patch model.Patch) (model.Item, error) {
	var it model.Item
	err := c.do(ctx, "update", http.MethodPut, "/todos/"+url.PathEscape(id), token, patch, &it)
	return it, err
}

func (c *HTTPClient) Delete(ctx context.Context, token, id string) error {
	return c.do(ctx, "delete", http.MethodDelete, "/todos/"+url.PathEscape(id), token, nil, nil)
}

// do sends one request. A nil out skips decoding; an empty token omits the
// Authorization header (auth endpoints).
func (c *HTTPClient) do(ctx context.Context, op, method, path, token string, in, out any) error {
	rerr := func(status int, body string, err error) error {
		return &RemoteError{Op: op, Method: method, Path: path, Status: status, Body: body, Err: err}
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return rerr(0, "", fmt.Errorf("marshal: %w", err))
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return rerr(0, "", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "op", op, "method", method, "path", path, "err", err)
		return rerr(0, "", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("request settled", "op", op, "method", method, "path", path,
		"status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return rerr(resp.StatusCode, errorMessage(b), errStatus)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return rerr(resp.StatusCode, "", fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// errorMessage pulls {"message": "..."} or {"error": "..."} out of an error
// body and falls back to the trimmed raw text.
func errorMessage(b []byte) string {
	var e struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(b, &e) == nil {
		if e.Message != "" {
			return e.Message
		}
		if e.Error != "" {
			return e.Error
		}
	}
	return strings.TrimSpace(string(b))
}
