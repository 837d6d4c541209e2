// Package resumesync moves resumes between an editing session and the resume service.
package resumesync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/cvmaker/internal/types"
)

// Backend is the resume collection boundary: list, get, upsert and delete of the
// caller's records. Implementations scope every call to the authenticated owner.
type Backend interface {
	List(ctx context.Context) ([]types.ResumeRecord, error)
	Get(ctx context.Context, id int64) (*types.ResumeRecord, error)
	Upsert(ctx context.Context, templateID, data string) (*types.ResumeRecord, error)
	Delete(ctx context.Context, id int64) error
}

// DefaultTimeout bounds each request made by Client.
const DefaultTimeout = 30 * time.Second

// Client talks to the resume REST endpoints over HTTP.
type Client struct {
	BaseURL    string
	Token      string
	CookieName string
	HTTP       *http.Client
}

// NewClient creates a client for baseURL authenticating with token. The token is sent
// both as a bearer header and as the session cookie.
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		CookieName: "token",
		HTTP:       &http.Client{Timeout: DefaultTimeout},
	}
}

var _ Backend = (*Client)(nil)

// List returns the caller's resumes, newest first.
func (c *Client) List(ctx context.Context) ([]types.ResumeRecord, error) {
	var records []types.ResumeRecord
	if err := c.do(ctx, http.MethodGet, "/resumes", nil, &records); err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	if records == nil {
		records = []types.ResumeRecord{}
	}
	return records, nil
}

// Get returns a single resume.
func (c *Client) Get(ctx context.Context, id int64) (*types.ResumeRecord, error) {
	var record types.ResumeRecord
	if err := c.do(ctx, http.MethodGet, "/resumes/"+strconv.FormatInt(id, 10), nil, &record); err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, &NotFoundError{ID: id}
		}
		return nil, fmt.Errorf("failed to get resume %d: %w", id, err)
	}
	return &record, nil
}

// Upsert saves data under templateID, replacing the caller's current record.
func (c *Client) Upsert(ctx context.Context, templateID, data string) (*types.ResumeRecord, error) {
	body := types.UpsertResumeRequest{TemplateID: templateID, Data: data}
	var record types.ResumeRecord
	if err := c.do(ctx, http.MethodPost, "/resumes", body, &record); err != nil {
		return nil, fmt.Errorf("failed to save resume: %w", err)
	}
	return &record, nil
}

// Delete removes a resume.
func (c *Client) Delete(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, "/resumes/"+strconv.FormatInt(id, 10), nil, nil); err != nil {
		if isStatus(err, http.StatusNotFound) {
			return &NotFoundError{ID: id}
		}
		return fmt.Errorf("failed to delete resume %d: %w", id, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
		if c.CookieName != "" {
			req.AddCookie(&http.Cookie{Name: c.CookieName, Value: c.Token})
		}
	}

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var envelope types.Envelope[json.RawMessage]
	decodeErr := json.Unmarshal(raw, &envelope)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if decodeErr == nil {
			apiErr.Code = envelope.Status.Code
			apiErr.Message = envelope.Status.Message
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to decode response envelope: %w", decodeErr)
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

func isStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}
