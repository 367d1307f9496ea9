package cmsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure Client implements CMSAPI
var _ driven.CMSAPI = (*Client)(nil)

// maxResponseSize caps how much of a response body is read
const maxResponseSize = 10 << 20

// Client talks to the CMS content API over HTTP
type Client struct {
	client *http.Client
}

// NewClient creates a new CMS API client.
// A zero timeout leaves requests unbounded apart from their context.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		client: &http.Client{Timeout: timeout},
	}
}

// NewClientWithHTTP creates a client around an existing http.Client
func NewClientWithHTTP(client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{client: client}
}

// FetchContent retrieves the content document.
// A null or empty document yields nil so callers fall back instead of
// rendering a page with every section disabled.
func (c *Client) FetchContent(ctx context.Context, base string) (*domain.Content, error) {
	var content *domain.Content
	if err := c.get(ctx, base, "/content", &content); err != nil {
		return nil, err
	}
	if content == nil || content.IsEmpty() {
		return nil, nil
	}
	return content, nil
}

// FetchSettings retrieves the (possibly partial) settings document.
// A null document yields a nil patch.
func (c *Client) FetchSettings(ctx context.Context, base string) (*domain.SettingsPatch, error) {
	var patch *domain.SettingsPatch
	if err := c.get(ctx, base, "/settings", &patch); err != nil {
		return nil, err
	}
	return patch, nil
}

// SendContactMessage posts a contact message.
// A non-2xx answer becomes an error carrying the response text when present.
func (c *Client) SendContactMessage(ctx context.Context, base string, msg domain.ContactMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint(base, "/contact/messages"), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		statusErr := &domain.StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(text))}
		if statusErr.Body != "" {
			return fmt.Errorf("%s: %w", statusErr.Body, statusErr)
		}
		return statusErr
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Close releases idle connections
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// get fetches base+path and decodes the {data: T} envelope or a bare T into out
func (c *Client) get(ctx context.Context, base, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint(base, path), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.StatusError{Code: resp.StatusCode, Body: string(respBody)}
	}

	if err := json.Unmarshal(unwrapEnvelope(respBody), out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// unwrapEnvelope returns the "data" member when present and not null
func unwrapEnvelope(body []byte) []byte {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return body
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return body
	}
	return envelope.Data
}

func endpoint(base, path string) string {
	return strings.TrimRight(base, "/") + path
}
