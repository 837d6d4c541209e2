// Package export triggers document exports on a cvmaker server and delivers the
// resulting PDF to the local filesystem.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout covers a full browser render on the server.
const DefaultTimeout = 90 * time.Second

// DefaultUserAgent is the user agent string for export requests.
const DefaultUserAgent = "cvmaker-cli/1.0"

// DefaultFilename is used when the server does not name the document.
const DefaultFilename = "resume.pdf"

// Error represents a failed export request.
type Error struct {
	URL        string
	StatusCode int
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("export error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("export error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Document is a downloaded export.
type Document struct {
	Data        []byte
	Filename    string
	ContentType string
}

// Options configures a Client.
type Options struct {
	Timeout    time.Duration
	UserAgent  string
	CookieName string
}

// DefaultOptions returns sensible defaults for exporting.
func DefaultOptions() *Options {
	return &Options{
		Timeout:    DefaultTimeout,
		UserAgent:  DefaultUserAgent,
		CookieName: "token",
	}
}

// Client calls the export, preview and editor endpoints of one server as one user.
type Client struct {
	baseURL string
	token   string
	opts    *Options
	http    *http.Client
}

// NewClient validates baseURL and creates a client. A nil opts uses DefaultOptions.
func NewClient(baseURL, token string, opts *Options) (*Client, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, &Error{URL: baseURL, Message: "invalid URL", Cause: err}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		opts:    opts,
		http:    &http.Client{Timeout: opts.Timeout},
	}, nil
}

// Snapshot asks the server to print the caller's live preview page.
func (c *Client) Snapshot(ctx context.Context) (*Document, error) {
	return c.document(ctx, http.MethodGet, "/api/generate-pdf", nil)
}

// FromHTML asks the server to print the given markup.
func (c *Client) FromHTML(ctx context.Context, html string) (*Document, error) {
	body, err := json.Marshal(map[string]string{"html": html})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return c.document(ctx, http.MethodPost, "/api/generate-pdf", body)
}

// Preview fetches the caller's preview page.
func (c *Client) Preview(ctx context.Context) (string, error) {
	resp, raw, err := c.send(ctx, http.MethodGet, "/profile/cvmaker", nil)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", c.statusError("/profile/cvmaker", resp.StatusCode, raw)
	}
	return string(raw), nil
}

// SaveSession persists the caller's editor session on the server.
func (c *Client) SaveSession(ctx context.Context) error {
	resp, raw, err := c.send(ctx, http.MethodPost, "/editor/save", nil)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return c.statusError("/editor/save", resp.StatusCode, raw)
	}
	return nil
}

func (c *Client) document(ctx context.Context, method, path string, body []byte) (*Document, error) {
	resp, raw, err := c.send(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(path, resp.StatusCode, raw)
	}
	if len(raw) == 0 {
		return nil, &Error{URL: c.baseURL + path, StatusCode: resp.StatusCode, Message: "empty document"}
	}
	return &Document{
		Data:        raw,
		Filename:    filenameFrom(resp.Header.Get("Content-Disposition")),
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

func (c *Client) send(ctx context.Context, method, path string, body []byte) (*http.Response, []byte, error) {
	target := c.baseURL + path

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, nil, &Error{URL: target, Message: "failed to create request", Cause: err}
	}

	req.Header.Set("User-Agent", c.opts.UserAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
		if c.opts.CookieName != "" {
			req.AddCookie(&http.Cookie{Name: c.opts.CookieName, Value: c.token})
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, &Error{URL: target, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &Error{URL: target, StatusCode: resp.StatusCode, Message: "failed to read response body", Cause: err}
	}
	return resp, raw, nil
}

// statusError keeps the server's plain text message when there is one.
func (c *Client) statusError(path string, status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if msg == "" || len(msg) > 200 {
		msg = http.StatusText(status)
	}
	return &Error{
		URL:        c.baseURL + path,
		StatusCode: status,
		Message:    fmt.Sprintf("HTTP status %d: %s", status, msg),
	}
}

func filenameFrom(disposition string) string {
	if disposition == "" {
		return DefaultFilename
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil || params["filename"] == "" {
		return DefaultFilename
	}
	return params["filename"]
}
