package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	pkgerrs "github.com/jamesprial/go-threads-api-wrapper/pkg/errors"
)

// Client manages communication with the Threads graph API. It applies the
// bearer token, throttles outgoing requests, maps platform error bodies to
// the typed taxonomy in pkg/errors, and retries idempotent reads on
// network-level failures. Mutating requests are never retried.
type Client struct {
	client    *http.Client
	BaseURL   *url.URL
	UserAgent string
	token     string
	logger    *slog.Logger

	limiter    *rate.Limiter
	maxRetries uint64
	retryCfg   RetryConfig
}

// RateLimitConfig controls how requests are throttled before reaching the
// platform. This is a courtesy throttle for request volume; the publishing
// quota is a separate mechanism handled by the rate tracker.
type RateLimitConfig struct {
	// RequestsPerMinute caps steady-state throughput. Defaults to 60 if zero.
	RequestsPerMinute float64
	// Burst allows short spikes above the steady-state rate. Defaults to 10 if zero.
	Burst int
}

// RetryConfig controls the exponential backoff applied to idempotent GET
// requests that fail at the network level.
type RetryConfig struct {
	// MaxRetries bounds retry attempts. Defaults to 3 if zero.
	MaxRetries uint64
	// InitialInterval is the first backoff delay. Defaults to 500ms if zero.
	InitialInterval time.Duration
	// MaxInterval caps the backoff delay. Defaults to 5s if zero.
	MaxInterval time.Duration
}

const (
	DefaultRequestsPerMinute = 60
	DefaultRateLimitBurst    = 10
	DefaultMaxRetries        = 3
	SecondsPerMinute         = 60.0
)

// NewClient returns a new transport for the Threads API.
// If a nil httpClient is provided, http.DefaultClient will be used.
func NewClient(httpClient *http.Client, accessToken, baseURL, userAgent string, rateCfg *RateLimitConfig, retryCfg *RetryConfig, logger *slog.Logger) (*Client, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, &pkgerrs.ConfigError{Field: "BaseURL", Message: err.Error()}
	}
	if !strings.HasSuffix(parsedURL.Path, "/") {
		parsedURL.Path += "/"
	}

	if rateCfg == nil {
		rateCfg = &RateLimitConfig{}
	}
	if retryCfg == nil {
		retryCfg = &RetryConfig{}
	}
	if retryCfg.MaxRetries == 0 {
		retryCfg.MaxRetries = DefaultMaxRetries
	}
	if retryCfg.InitialInterval == 0 {
		retryCfg.InitialInterval = 500 * time.Millisecond
	}
	if retryCfg.MaxInterval == 0 {
		retryCfg.MaxInterval = 5 * time.Second
	}

	return &Client{
		client:     httpClient,
		BaseURL:    parsedURL,
		UserAgent:  userAgent,
		token:      accessToken,
		logger:     logger,
		limiter:    buildLimiter(*rateCfg),
		maxRetries: retryCfg.MaxRetries,
		retryCfg:   *retryCfg,
	}, nil
}

// NewRequest creates an API request. A relative URL can be provided in
// path, in which case it is resolved relative to the BaseURL of the
// Client. Params are encoded into the query string; the platform accepts
// parameters this way for both reads and publishes, since media is always
// referenced by URL rather than uploaded.
func (c *Client) NewRequest(ctx context.Context, method, path string, params url.Values) (*http.Request, error) {
	u, err := c.BaseURL.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, &pkgerrs.RequestError{Operation: method + " " + path, Err: err}
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, &pkgerrs.RequestError{Operation: method + " " + path, URL: u.String(), Err: err}
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	return req, nil
}

// Get issues a GET request and decodes the JSON response into v. Network
// level failures are retried with exponential backoff up to MaxRetries;
// platform errors are returned immediately as typed errors.
func (c *Client) Get(ctx context.Context, path string, params url.Values, v any) error {
	operation := func() error {
		req, err := c.NewRequest(ctx, http.MethodGet, path, params)
		if err != nil {
			return backoff.Permanent(err)
		}
		if err := c.do(req, v); err != nil {
			// Only network-level failures are worth replaying; platform
			// errors will not change on a retry.
			var reqErr *pkgerrs.RequestError
			if errors.As(err, &reqErr) {
				return err
			}
			return backoff.Permanent(err)
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryCfg.InitialInterval
	bo.MaxInterval = c.retryCfg.MaxInterval
	bo.Reset()

	notify := func(err error, next time.Duration) {
		if c.logger != nil {
			c.logger.Warn("retrying request",
				"method", http.MethodGet,
				"path", path,
				"error", err,
				"next_attempt_in", next.Round(time.Millisecond).String(),
			)
		}
	}

	return backoff.RetryNotify(operation,
		backoff.WithContext(backoff.WithMaxRetries(bo, c.maxRetries), ctx),
		notify)
}

// Post issues a POST request and decodes the JSON response into v.
// Publish-style mutations are never retried here: a request that timed out
// may still have been applied, and a blind retry risks a duplicate publish.
func (c *Client) Post(ctx context.Context, path string, params url.Values, v any) error {
	req, err := c.NewRequest(ctx, http.MethodPost, path, params)
	if err != nil {
		return err
	}
	return c.do(req, v)
}

// Delete issues a DELETE request and decodes the JSON response into v.
func (c *Client) Delete(ctx context.Context, path string, params url.Values, v any) error {
	req, err := c.NewRequest(ctx, http.MethodDelete, path, params)
	if err != nil {
		return err
	}
	return c.do(req, v)
}

// do executes the request, maps non-2xx responses to typed errors and
// decodes the body into v otherwise. The GET retry loop distinguishes
// retryable failures by asserting for *pkgerrs.RequestError.
func (c *Client) do(req *http.Request, v any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			// Context cancelled or deadline passed while throttled.
			return &pkgerrs.RequestError{Operation: req.Method, URL: req.URL.String(), Err: err}
		}
	}

	if c.logger != nil {
		c.logger.Debug("request", "method", req.Method, "path", req.URL.Path)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		// Network-level failure: retryable for GETs.
		return &pkgerrs.RequestError{Operation: req.Method, URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &pkgerrs.RequestError{Operation: req.Method, URL: req.URL.String(), Err: err}
	}

	if c.logger != nil {
		c.logger.Debug("response", "method", req.Method, "path", req.URL.Path, "status", resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return mapAPIError(resp.StatusCode, body, resp.Header.Get("Retry-After"))
	}

	if v != nil {
		if err := json.Unmarshal(body, v); err != nil {
			return &pkgerrs.RequestError{
				Operation: req.Method,
				URL:       req.URL.String(),
				Err:       fmt.Errorf("failed to decode response: %w", err),
			}
		}
	}

	return nil
}

// errorBody is the platform's embedded error envelope.
type errorBody struct {
	Error struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		Subcode   int    `json:"error_subcode"`
		FBTraceID string `json:"fbtrace_id"`
	} `json:"error"`
}

// Platform error codes, grouped by the remediation they imply.
var (
	authCodes       = map[int]bool{190: true, 102: true}
	permissionCodes = map[int]bool{10: true, 200: true, 294: true}
	rateLimitCodes  = map[int]bool{4: true, 17: true, 32: true, 613: true}
)

// mapAPIError converts a non-2xx response into the typed error taxonomy
// using the HTTP status and the platform's embedded error code.
func mapAPIError(statusCode int, body []byte, retryAfter string) error {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)

	apiErr := pkgerrs.APIError{
		StatusCode: statusCode,
		Code:       eb.Error.Code,
		Subcode:    eb.Error.Subcode,
		Message:    eb.Error.Message,
		TraceID:    eb.Error.FBTraceID,
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(statusCode)
		}
	}

	switch {
	case statusCode == http.StatusUnauthorized || authCodes[eb.Error.Code]:
		return &pkgerrs.AuthError{APIError: apiErr}
	case statusCode == http.StatusForbidden || permissionCodes[eb.Error.Code]:
		return &pkgerrs.PermissionError{APIError: apiErr}
	case statusCode == http.StatusTooManyRequests || rateLimitCodes[eb.Error.Code]:
		return &pkgerrs.RateLimitError{APIError: apiErr, RetryAfter: parseRetryAfter(retryAfter)}
	case statusCode == http.StatusNotFound:
		return &pkgerrs.NotFoundError{APIError: apiErr}
	}
	return &apiErr
}

// parseRetryAfter interprets a Retry-After header as a second count.
// HTTP-date forms are rare on this API and are ignored.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	seconds, err := strconv.ParseFloat(header, 64)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}

func buildLimiter(cfg RateLimitConfig) *rate.Limiter {
	requestsPerMinute := cfg.RequestsPerMinute
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultRequestsPerMinute
	}

	burst := cfg.Burst
	if burst <= 0 {
		burst = DefaultRateLimitBurst
	}

	limitPerSecond := rate.Limit(requestsPerMinute / SecondsPerMinute)
	if limitPerSecond <= 0 {
		limitPerSecond = rate.Limit(1)
	}

	return rate.NewLimiter(limitPerSecond, burst)
}
