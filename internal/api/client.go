package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"
)

// RequestTimeout is deliberately generous: uploads trigger extraction and
// embedding on the backend, which can take well over a minute for large PDFs.
const RequestTimeout = 2 * time.Minute

const defaultEndpoint = "http://localhost:8000"

// Config describes how to build a backend client.
type Config struct {
	Endpoint   string
	HTTPClient *http.Client
}

// Client is the single HTTP channel to the knowledge-base backend. Construct
// one with New and hand it to the controllers; there is no package-level
// instance.
type Client struct {
	base   string
	client *http.Client
}

// New resolves the base endpoint once: an explicit config value wins, then the
// DOCDECK_API environment variable, then the local development default.
func New(cfg Config) *Client {
	base := cfg.Endpoint
	if base == "" {
		if env := os.Getenv("DOCDECK_API"); env != "" {
			base = env
		} else {
			base = defaultEndpoint
		}
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: RequestTimeout}
	}
	return &Client{
		base:   strings.TrimRight(base, "/"),
		client: httpClient,
	}
}

// Endpoint reports the resolved base URL.
func (c *Client) Endpoint() string {
	return c.base
}

// HealthStatus is the backend liveness payload.
type HealthStatus struct {
	Status string `json:"status"`
}

// Document is one registry entry as the backend reports it. Older backend
// builds report chunk totals as chunks_created rather than total_chunks.
type Document struct {
	Filename      string `json:"filename"`
	TotalPages    *int   `json:"total_pages"`
	TotalChunks   *int   `json:"total_chunks"`
	ChunksCreated *int   `json:"chunks_created"`
}

// Chunks returns whichever chunk count field the backend populated.
func (d Document) Chunks() *int {
	if d.TotalChunks != nil {
		return d.TotalChunks
	}
	return d.ChunksCreated
}

// UploadReceipt confirms a processed upload.
type UploadReceipt struct {
	Filename      string `json:"filename"`
	TotalPages    *int   `json:"total_pages"`
	ChunksCreated *int   `json:"chunks_created"`
	PagesWithText *int   `json:"pages_with_text"`
}

// Source is one citation attached to an answer. Both fields may be null in
// the payload, so renderers must supply placeholders.
type Source struct {
	Source *string `json:"source"`
	Page   *int    `json:"page"`
}

// Answer carries the generated answer plus its citations.
type Answer struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// Health probes GET /health.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var status HealthStatus
	err := c.send(ctx, http.MethodGet, "/health", nil, "", &status)
	return status, err
}

// ListDocuments fetches the full registry snapshot.
func (c *Client) ListDocuments(ctx context.Context) ([]Document, error) {
	var payload struct {
		Documents []Document `json:"documents"`
	}
	if err := c.send(ctx, http.MethodGet, "/documents", nil, "", &payload); err != nil {
		return nil, err
	}
	return payload.Documents, nil
}

// Upload sends one PDF as a multipart request with a single "file" field.
func (c *Client) Upload(ctx context.Context, name string, r io.Reader) (UploadReceipt, error) {
	var receipt UploadReceipt

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return receipt, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return receipt, fmt.Errorf("read %s: %w", name, err)
	}
	if err := writer.Close(); err != nil {
		return receipt, err
	}

	err = c.send(ctx, http.MethodPost, "/upload", &body, writer.FormDataContentType(), &receipt)
	return receipt, err
}

// Query asks the knowledge base a question.
func (c *Client) Query(ctx context.Context, question string) (Answer, error) {
	payload, err := json.Marshal(map[string]string{"question": question})
	if err != nil {
		return Answer{}, err
	}
	var answer Answer
	err = c.send(ctx, http.MethodPost, "/query", bytes.NewReader(payload), "application/json", &answer)
	return answer, err
}

// send performs one round trip and decodes the JSON response into out. The
// outcome log line is a side effect only; callers see nothing beyond the
// return values.
func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	target := c.base + path
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("[api] %s %s failed after %s: %v", method, target, time.Since(started).Round(time.Millisecond), err)
		return &networkError{method: method, target: target, err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("[api] %s %s read failed: %v", method, target, err)
		return &networkError{method: method, target: target, err: err}
	}

	log.Printf("[api] %s %s -> %d (%s)", method, target, resp.StatusCode, time.Since(started).Round(time.Millisecond))

	if resp.StatusCode >= 400 {
		return &ServerError{Status: resp.StatusCode, Detail: extractDetail(raw, resp.StatusCode)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// ServerError means the backend answered with a failure status. Detail is the
// human-readable explanation the backend attached, when it attached one.
type ServerError struct {
	Status int
	Detail string
}

func (e *ServerError) Error() string {
	return e.Detail
}

type networkError struct {
	method string
	target string
	err    error
}

func (e *networkError) Error() string {
	return fmt.Sprintf("backend unreachable: %v", e.err)
}

func (e *networkError) Unwrap() error {
	return e.err
}

// IsNetwork reports whether err means no response was received at all
// (connectivity loss or timeout), as opposed to a backend-reported failure.
func IsNetwork(err error) bool {
	var netErr *networkError
	return errors.As(err, &netErr)
}

// extractDetail pulls the backend's explanation out of an error body. FastAPI
// uses {"detail": ...}; some handlers use {"message": ...}.
func extractDetail(raw []byte, status int) string {
	var body struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Detail != "" {
			return body.Detail
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return fmt.Sprintf("backend returned %s", http.StatusText(status))
}
