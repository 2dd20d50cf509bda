// Package api is the HTTP transport for the retrieval service: one JSON
// chat call and one multipart upload call.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ragchat/internal/logging"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 8 << 20

// Options configures a Client.
type Options struct {
	BaseURL string
	// Timeout applies to each request. Zero means no timeout.
	Timeout   time.Duration
	UserAgent string
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client talks to the chat and upload endpoints.
type Client struct {
	baseURL    *url.URL
	userAgent  string
	httpClient *http.Client
}

// NewClient validates the base URL and returns a Client.
func NewClient(opts Options) (*Client, error) {
	raw := opts.BaseURL
	if raw == "" {
		raw = DefaultBaseURL
	}
	u, err := ParseBaseURL(raw)
	if err != nil {
		return nil, err
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = "ragchat"
	}

	return &Client{baseURL: u, userAgent: ua, httpClient: hc}, nil
}

// ParseBaseURL accepts an absolute http or https URL and strips any
// trailing slash from its path.
func ParseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	return u, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Port returns the service port, falling back to the scheme default.
func (c *Client) Port() string {
	if p := c.baseURL.Port(); p != "" {
		return p
	}
	if c.baseURL.Scheme == "https" {
		return "443"
	}
	return "80"
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.String() + path
}

// Chat sends one message and returns the generated reply.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	const op = "chat"
	log := logging.Get(logging.CategoryAPI)

	body, err := json.Marshal(ChatRequest{Message: message})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(ChatPath), bytes.NewReader(body))
	if err != nil {
		return "", &TransportError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	status, data, err := c.do(req, op)
	if err != nil {
		log.Warn("chat request failed after %v: %v", time.Since(start), err)
		return "", err
	}
	logging.APIDebug("chat status=%d bytes=%d latency=%v", status, len(data), time.Since(start))

	if status < 200 || status > 299 {
		return "", statusError(op, status, data)
	}

	var resp ChatResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", malformed(op, "%v", err)
	}
	if resp.Response == nil {
		return "", malformed(op, "missing response field")
	}
	return *resp.Response, nil
}

// Upload sends r as a multipart form with the content under the "file"
// field. Only the status code decides success; the body must still be
// JSON.
func (c *Client) Upload(ctx context.Context, name string, r io.Reader) (*UploadResponse, error) {
	const op = "upload"
	log := logging.Get(logging.CategoryAPI)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(UploadField, filepath.Base(name))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("failed to read %s: %w", name, err)}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(UploadPath), &buf)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	start := time.Now()
	status, data, err := c.do(req, op)
	if err != nil {
		log.Warn("upload %s failed after %v: %v", name, time.Since(start), err)
		return nil, err
	}
	logging.APIDebug("upload %s status=%d latency=%v", name, status, time.Since(start))

	if status < 200 || status > 299 {
		return nil, statusError(op, status, data)
	}
	if !json.Valid(data) {
		return nil, malformed(op, "body is not JSON")
	}

	// Any JSON is accepted; fields are filled when the shape matches.
	var resp UploadResponse
	_ = json.Unmarshal(data, &resp)
	return &resp, nil
}

// UploadFile opens path and uploads it under its base name.
func (c *Client) UploadFile(ctx context.Context, path string) (*UploadResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &TransportError{Op: "upload", Err: err}
	}
	defer f.Close()
	return c.Upload(ctx, filepath.Base(path), f)
}

func (c *Client) do(req *http.Request, op string) (int, []byte, error) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(ContractHeader, ContractVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, nil, &TransportError{Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	return resp.StatusCode, data, nil
}

func statusError(op string, status int, data []byte) error {
	if !json.Valid(data) {
		return malformed(op, "status %d with non-JSON body", status)
	}
	// Valid JSON that is not an object simply has no detail.
	var body ErrorResponse
	_ = json.Unmarshal(data, &body)
	return &StatusError{Op: op, StatusCode: status, Detail: DetailText(body.Detail)}
}
