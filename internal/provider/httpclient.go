package provider

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// apiClient performs authenticated GET requests for one provider and maps
// HTTP-level failures into the shared error taxonomy. Adapters embed it so
// the status-code mapping exists once.
type apiClient struct {
	provider   string
	baseURL    string
	headers    map[string]string
	httpClient *http.Client

	mu             sync.Mutex
	available      bool
	lastResponseMs int64
	remainingQuota *int
	resetTime      *time.Time
}

func newAPIClient(provider, baseURL string, headers map[string]string, timeout time.Duration) *apiClient {
	return &apiClient{
		provider:  provider,
		baseURL:   baseURL,
		headers:   headers,
		available: true,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// getJSON issues a GET and returns the raw body on HTTP 200. A 404 returns
// (nil, nil): the provider legitimately has no record.
func (c *apiClient) getJSON(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &Error{Provider: c.provider, Kind: KindInvalidRequest, Message: "creating request", Err: err}
	}
	req.Header.Set("Accept", "application/json; charset=UTF-8")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(started).Milliseconds()
	if err != nil {
		c.record(elapsed, false)
		return nil, &Error{Provider: c.provider, Kind: KindServiceUnavailable, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	c.noteRateHeaders(resp.Header)

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			c.record(elapsed, false)
			return nil, &Error{Provider: c.provider, Kind: KindServiceUnavailable, Message: "reading response", Err: err}
		}
		c.record(elapsed, true)
		return body, nil

	case resp.StatusCode == http.StatusNotFound:
		c.record(elapsed, true)
		return nil, nil

	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.record(elapsed, false)
		return nil, &Error{
			Provider:   c.provider,
			Kind:       KindAuthError,
			StatusCode: resp.StatusCode,
			Message:    "authentication rejected",
		}

	case resp.StatusCode == http.StatusTooManyRequests:
		c.record(elapsed, false)
		return nil, &Error{
			Provider:   c.provider,
			Kind:       KindRateLimited,
			StatusCode: resp.StatusCode,
			Message:    "rate limit exceeded",
			RetryAfter: retryAfter(resp.Header),
		}

	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		body, _ := io.ReadAll(resp.Body)
		c.record(elapsed, false)
		return nil, &Error{
			Provider:   c.provider,
			Kind:       KindInvalidRequest,
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}

	default:
		body, _ := io.ReadAll(resp.Body)
		c.record(elapsed, false)
		return nil, &Error{
			Provider:   c.provider,
			Kind:       KindServiceUnavailable,
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}
}

func (c *apiClient) record(ms int64, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastResponseMs = ms
	c.available = ok
}

// noteRateHeaders captures quota headers for operational introspection.
func (c *apiClient) noteRateHeaders(h http.Header) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v := h.Get("X-RateLimit-Remaining"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.remainingQuota = &n
		}
	}
	if v := h.Get("X-RateLimit-Reset"); v != "" {
		if sec, err := strconv.ParseInt(v, 10, 64); err == nil {
			t := time.Unix(sec, 0).UTC()
			c.resetTime = &t
		}
	}
}

// status snapshots operational state for Provider.Status.
func (c *apiClient) status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Status{Available: c.available}
	if c.lastResponseMs > 0 {
		ms := c.lastResponseMs
		s.ResponseTimeMs = &ms
	}
	s.RemainingQuota = c.remainingQuota
	s.ResetTime = c.resetTime
	return s
}

// retryAfter parses both Retry-After forms: delta-seconds and HTTP-date.
func retryAfter(h http.Header) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	if sec, err := strconv.Atoi(v); err == nil && sec > 0 {
		return time.Duration(sec) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

// withinWindow reports whether date falls inside the provider's historical
// coverage window ending today.
func withinWindow(date string, days int) bool {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false
	}
	age := time.Since(t)
	return age >= -48*time.Hour && age <= time.Duration(days)*24*time.Hour
}
