package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TableAPI is the request/response contract the table engine depends on.
// It is implemented by *Client and faked in tests.
type TableAPI interface {
	Fetch(ctx context.Context, scope Scope) (Envelope, error)
	AddExpense(ctx context.Context, in ExpenseInput) error
	DeleteExpense(ctx context.Context, id string) error
	UpdateRow(ctx context.Context, req UpdateRequest) error
	UploadCSV(ctx context.Context, filename string, r io.Reader) error
}

// Ensure Client implements TableAPI at compile time.
var _ TableAPI = (*Client)(nil)

// Client talks to the expense tracker's JSON endpoints.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	session   string
	logger    *slog.Logger
}

const (
	defaultServer    = "127.0.0.1:5001"
	defaultUserAgent = "tally/0.1"
	requestTimeout   = 10 * time.Second

	sessionCookie = "session"
	uploadPath    = "/open_file"
)

// Option customises a Client.
type Option func(*Client)

// WithSession attaches the server's session cookie value to every request.
func WithSession(value string) Option {
	return func(c *Client) { c.session = strings.TrimSpace(value) }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient builds a Client for the host:port or URL in server.
func NewClient(server string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(server)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalised server URL.
func (c *Client) BaseURL() string {
	if c == nil || c.baseURL == nil {
		return ""
	}
	return c.baseURL.String()
}

// Fetch loads the table for scope. A success=false envelope is returned
// together with a *ServerError.
func (c *Client) Fetch(ctx context.Context, scope Scope) (Envelope, error) {
	if c == nil {
		return Envelope{}, fmt.Errorf("client is nil")
	}
	if scope.Kind == ScopeCategory && scope.Category == "" {
		return Envelope{}, fmt.Errorf("fetch: category required")
	}
	var env Envelope
	if err := c.postJSON(ctx, scope.Endpoint(), scope.body(), &env); err != nil {
		return Envelope{}, err
	}
	if !env.Success {
		return env, &ServerError{Message: env.Error}
	}
	return env, nil
}

// AddExpense creates an expense row.
func (c *Client) AddExpense(ctx context.Context, in ExpenseInput) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	return c.ack(ctx, "/add_expense", in)
}

// DeleteExpense removes the expense with the given id.
func (c *Client) DeleteExpense(ctx context.Context, id string) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("delete: id required")
	}
	return c.ack(ctx, "/delete_expense", deleteRequest{ID: id})
}

// UpdateRow applies a partial update to one row.
func (c *Client) UpdateRow(ctx context.Context, req UpdateRequest) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if err := req.Validate(); err != nil {
		return err
	}
	return c.ack(ctx, "/update_table", req)
}

// UploadCSV posts a CSV file as the multipart field "file". The server answers
// with a redirect; landing back on the upload page means it rejected the file.
func (c *Client) UploadCSV(ctx context.Context, filename string, r io.Reader) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("copy upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("close multipart: %w", err)
	}

	rel := &url.URL{Path: uploadPath}
	req, err := c.newRequest(ctx, rel, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.send(req, rel)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.Request != nil && resp.Request.URL != nil && resp.Request.URL.Path == uploadPath {
		return &ServerError{Message: "server rejected the upload"}
	}
	return nil
}

func (c *Client) ack(ctx context.Context, path string, body any) error {
	var ack Ack
	if err := c.postJSON(ctx, path, body, &ack); err != nil {
		return err
	}
	return ack.Err()
}

func (c *Client) postJSON(ctx context.Context, path string, body any, dest any) error {
	rel := &url.URL{Path: path}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := c.newRequest(ctx, rel, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.send(req, rel)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, rel *url.URL, body io.Reader) (*http.Request, error) {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.session != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: c.session})
	}
	return req, nil
}

func (c *Client) send(req *http.Request, rel *url.URL) (*http.Response, error) {
	start := time.Now()
	reqID := req.Header.Get("X-Request-ID")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "path", rel.Path, "request_id", reqID, "error", err)
		return nil, fmt.Errorf("execute request: %w", err)
	}
	c.logger.Debug("request done",
		"path", rel.Path,
		"request_id", reqID,
		"status_code", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if resp.StatusCode >= 400 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("api %s returned status %d", rel.String(), resp.StatusCode)
	}
	return resp, nil
}

func parseBaseURL(server string) (*url.URL, error) {
	trimmed := strings.TrimSpace(server)
	if trimmed == "" {
		trimmed = defaultServer
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse server %q: %w", server, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
