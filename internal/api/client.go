// Package api is the HTTP client for the AdGenius generation backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smileynet/adforge/internal/brief"
	"github.com/smileynet/adforge/internal/creative"
	"github.com/smileynet/adforge/internal/log"
)

// DefaultTimeout is the default per-request timeout.
const DefaultTimeout = 30 * time.Second

// RequestError is a service-reported failure: a non-2xx response whose body
// carries {"error": "..."}.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// RefineRequest is the /api/refine request body.
type RefineRequest struct {
	Message     string        `json:"message"`
	Brief       brief.Brief   `json:"brief"`
	CurrentCopy creative.Copy `json:"current_copy"`
}

// HealthStatus is the /api/health response body.
type HealthStatus struct {
	Status string   `json:"status"`
	Agents []string `json:"agents"`
}

// Client talks to the AdGenius backend.
type Client struct {
	baseURL string
	http    *http.Client
	log     *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithLogger sets the session logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// NewClient creates a Client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		log:     log.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate submits a brief and returns the complete generation result.
func (c *Client) Generate(ctx context.Context, b brief.Brief) (*creative.Result, error) {
	var result creative.Result
	if err := c.post(ctx, "/api/generate", b, &result); err != nil {
		return nil, err
	}
	c.log.Infof("generate ok: job=%s images=%d variations=%d platforms=%d",
		result.JobID, len(result.Images), len(result.Variations), len(result.Platforms))
	return &result, nil
}

// Refine submits a conversational refinement turn against the current copy.
func (c *Client) Refine(ctx context.Context, req RefineRequest) (*creative.Refinement, error) {
	var ref creative.Refinement
	if err := c.post(ctx, "/api/refine", req, &ref); err != nil {
		return nil, err
	}
	return &ref, nil
}

// Health checks backend availability.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return nil, fmt.Errorf("api: building health request: %w", err)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: health check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp)
	}
	var hs HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&hs); err != nil {
		return nil, fmt.Errorf("api: decoding health response: %w", err)
	}
	return &hs, nil
}

// DownloadURL builds the image download proxy URL for a generated visual.
// The proxy itself is owned by the backend; the client only constructs
// the URL and hands it to the user.
func (c *Client) DownloadURL(imageURL, filename string) string {
	q := url.Values{}
	q.Set("url", imageURL)
	q.Set("filename", filename)
	return c.baseURL + "/api/download-image?" + q.Encode()
}

// post issues a JSON POST and decodes a 2xx body into out.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("api: encoding %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("api: building %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)

	c.log.Debugf("POST %s request_id=%s bytes=%d", path, reqID, len(payload))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		rerr := decodeError(resp)
		c.log.Warnf("POST %s request_id=%s failed: %v", path, reqID, rerr)
		return rerr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decoding %s response: %w", path, err)
	}
	return nil
}

// decodeError extracts the service error message from a non-2xx response.
func decodeError(resp *http.Response) *RequestError {
	var body struct {
		Error string `json:"error"`
	}
	// A malformed error body still yields a usable status-only error.
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return &RequestError{Status: resp.StatusCode, Message: body.Error}
}
