package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-eld-planner/internal/core/model"
	"github.com/penwyp/go-eld-planner/internal/util"
)

const maxRetries = 3

// APIError represents a non-2xx HTTP response.
type APIError struct {
	StatusCode int
	Body       string // first 512 bytes
	retryAfter string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// HTTPSource talks to the trip planning API
type HTTPSource struct {
	baseURL    string
	httpClient *http.Client
	backoff    func(attempt int, lastErr *APIError) time.Duration
}

// HTTPOption configures an HTTPSource
type HTTPOption func(*HTTPSource)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(s *HTTPSource) { s.httpClient.Timeout = d }
}

// WithHTTPClient replaces the underlying client
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSource) { s.httpClient = c }
}

// WithBackoff overrides the retry delay
func WithBackoff(fn func(attempt int, lastErr *APIError) time.Duration) HTTPOption {
	return func(s *HTTPSource) { s.backoff = fn }
}

// NewHTTPSource creates a source for the API rooted at baseURL
func NewHTTPSource(baseURL string, opts ...HTTPOption) *HTTPSource {
	s := &HTTPSource{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		backoff:    backoffDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *HTTPSource) List(ctx context.Context) ([]*model.Trip, error) {
	var trips []*model.Trip
	if err := s.do(ctx, http.MethodGet, "/api/trips/", nil, &trips); err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	if trips == nil {
		trips = []*model.Trip{}
	}
	return trips, nil
}

func (s *HTTPSource) Get(ctx context.Context, id int) (*model.Trip, error) {
	var trip model.Trip
	err := s.do(ctx, http.MethodGet, fmt.Sprintf("/api/trips/%d/", id), nil, &trip)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return nil, ErrTripNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get trip %d: %w", id, err)
	}
	return &trip, nil
}

// Create submits a new trip for planning. The request is not retried since
// a duplicate POST would plan the trip twice.
func (s *HTTPSource) Create(ctx context.Context, req model.TripRequest) (*model.Trip, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	body, err := sonic.Marshal(req)
	if err != nil {
		return nil, err
	}

	var trip model.Trip
	if err := s.do(ctx, http.MethodPost, "/api/trips/", body, &trip); err != nil {
		return nil, fmt.Errorf("create trip: %w", err)
	}
	return &trip, nil
}

// do sends a request and unmarshals the JSON response into dest.
// Returns *APIError for non-2xx responses. GETs retry on 429 (with
// Retry-After) and 5xx (with exponential backoff: 1s, 2s, 4s). Max 3 retries.
func (s *HTTPSource) do(ctx context.Context, method, path string, body []byte, dest any) error {
	fullURL := s.baseURL + path
	retries := maxRetries
	if method != http.MethodGet {
		retries = 0
	}

	var lastErr *APIError
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			wait := s.backoff(attempt, lastErr)
			util.LogDebugf("Retrying %s %s in %v (attempt %d): %v", method, path, wait, attempt, lastErr)
			t := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return err
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return err
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return sonic.Unmarshal(respBody, dest)
		}

		bodyStr := string(respBody)
		if len(bodyStr) > 512 {
			bodyStr = bodyStr[:512]
		}

		apiErr := &APIError{StatusCode: resp.StatusCode, Body: bodyStr}

		if resp.StatusCode == http.StatusTooManyRequests {
			apiErr.retryAfter = resp.Header.Get("Retry-After")
			lastErr = apiErr
			continue
		}
		if resp.StatusCode >= 500 {
			lastErr = apiErr
			continue
		}

		return apiErr
	}

	return lastErr
}

// backoffDelay returns the wait duration before a retry attempt.
func backoffDelay(attempt int, lastErr *APIError) time.Duration {
	if lastErr != nil && lastErr.StatusCode == http.StatusTooManyRequests && lastErr.retryAfter != "" {
		if secs, err := strconv.Atoi(lastErr.retryAfter); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return time.Duration(1<<(attempt-1)) * time.Second
}
