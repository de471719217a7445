// Package client is a typed HTTP client for a running assessor service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/okian/assessor/internal/domain/model"
	"github.com/okian/assessor/internal/domain/patterns"
)

// Defaults.
const (
	DefaultTimeout          = 60 * time.Second
	DefaultWorkers          = 4
	workerChannelMultiplier = 2
	maxErrorBody            = 4 << 10
)

// ErrStatus marks a non-2xx response.
var ErrStatus = errors.New("unexpected response status")

// StatusError carries the decoded error body of a failed call.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Code, e.Message)
}

func (e *StatusError) Unwrap() error { return ErrStatus }

// DetectResult mirrors POST /patterns/detect.
type DetectResult struct {
	Violations    []patterns.Violation `json:"violations"`
	Count         int                  `json:"count"`
	PenaltyPoints float64              `json:"penalty_points"`
}

// RulesResult mirrors GET /patterns.
type RulesResult struct {
	Enabled bool            `json:"enabled"`
	Count   int             `json:"count"`
	Rules   []patterns.Rule `json:"rules"`
}

// Health mirrors GET /health.
type Health struct {
	Status     string            `json:"status"`
	Version    string            `json:"version"`
	Timestamp  string            `json:"timestamp"`
	Components map[string]string `json:"components"`
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sends key as X-API-Key.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// Client talks to one service base URL.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New creates a Client for baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Assess posts one submission.
func (c *Client) Assess(ctx context.Context, in model.AssessmentInput) (*model.AssessmentResult, error) {
	var out model.AssessmentResult
	if err := c.do(ctx, http.MethodPost, "/assess", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Detect scans code on the server.
func (c *Client) Detect(ctx context.Context, code string) (*DetectResult, error) {
	var out DetectResult
	if err := c.do(ctx, http.MethodPost, "/patterns/detect", map[string]string{"code": code}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Rules lists the server's active rule table.
func (c *Client) Rules(ctx context.Context) (*RulesResult, error) {
	var out RulesResult
	if err := c.do(ctx, http.MethodGet, "/patterns", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health fetches the health report.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.do(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BatchResult pairs an input index with its outcome.
type BatchResult struct {
	Index  int
	Result *model.AssessmentResult
	Err    error
}

// AssessAll submits inputs with a bounded worker pool. Results are returned
// in input order.
func (c *Client) AssessAll(ctx context.Context, inputs []model.AssessmentInput, workers int) []BatchResult {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	results := make([]BatchResult, len(inputs))
	jobs := make(chan int, workers*workerChannelMultiplier)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := c.Assess(ctx, inputs[i])
				results[i] = BatchResult{Index: i, Result: res, Err: err}
			}
		}()
	}

	for i := range inputs {
		if ctx.Err() != nil {
			results[i] = BatchResult{Index: i, Err: ctx.Err()}
			continue
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return results
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeStatusError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode %s: %w", path, err)
	}
	return nil
}

func decodeStatusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	se := &StatusError{StatusCode: resp.StatusCode}
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &body) == nil && (body.Code != "" || body.Message != "") {
		se.Code, se.Message = body.Code, body.Message
	} else {
		se.Message = strings.TrimSpace(string(raw))
		if se.Message == "" {
			se.Message = http.StatusText(resp.StatusCode)
		}
	}
	return se
}
