// Package threads provides a Go wrapper for the Threads content publishing API.
//
// The package covers the two-step publish flow (media container creation
// followed by publishing), carousel orchestration, publishing-limit checks,
// profile/post/reply/insights retrieval, OAuth token exchange, and webhook
// payload verification. It handles authentication headers, request
// throttling, retries, and error mapping automatically.
//
// Basic usage:
//
//	client, err := threads.NewClient(&threads.Config{
//		AccessToken: "your-access-token",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	post, err := client.CreateAndPublish(ctx, &types.PublishRequest{
//		UserID: "17841400000000000",
//		Text:   "Hello from Go",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
package threads

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/jamesprial/go-threads-api-wrapper/internal"
	pkgerrs "github.com/jamesprial/go-threads-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-threads-api-wrapper/pkg/types"
)

const (
	// DefaultBaseURL is the default Threads graph API base URL, including
	// the API version.
	DefaultBaseURL = "https://graph.threads.net/v1.0/"
	// DefaultUserAgent is the default user agent string
	DefaultUserAgent = "go-threads-api-wrapper/0.01"
	// DefaultTimeout is the default HTTP client timeout
	DefaultTimeout = 30 * time.Second
	// DefaultQuotaCacheTTL is how long a fetched publishing limit stays
	// valid for quota checks before it is re-fetched.
	DefaultQuotaCacheTTL = 10 * time.Second
)

// defaultPostFields is the field set requested for posts when the caller
// does not specify one.
var defaultPostFields = []string{
	"id",
	"media_product_type",
	"media_type",
	"media_url",
	"permalink",
	"owner",
	"username",
	"text",
	"timestamp",
	"shortcode",
	"thumbnail_url",
	"children",
	"is_quote_post",
	"has_replies",
	"reply_audience",
}

// defaultProfileFields is the field set requested for user profiles.
var defaultProfileFields = []string{
	"id",
	"username",
	"name",
	"threads_profile_picture_url",
	"threads_biography",
}

// Config holds the configuration for the Threads client.
//
// AccessToken is the only required field: a valid (long-lived or
// short-lived) bearer token obtained through the OAuth flow. Token
// acquisition itself is handled by OAuthClient, not here.
type Config struct {
	// AccessToken is the bearer token applied to every request. Required.
	AccessToken string

	// BaseURL for the Threads API.
	// Defaults to DefaultBaseURL if not specified. Usually doesn't need to be changed.
	BaseURL string

	// UserAgent string to identify your application.
	UserAgent string

	// HTTPClient to use for requests.
	// Defaults to a client with DefaultTimeout if not specified.
	// Customize this to set custom timeouts, proxies, or other HTTP behavior.
	HTTPClient *http.Client

	// Logger receives request, response and error events.
	// Optional. If nil, the client is silent.
	Logger *slog.Logger

	// RateLimit controls client-side request throttling.
	// Optional; sensible defaults apply when nil.
	RateLimit *internal.RateLimitConfig

	// Retry controls backoff for idempotent reads that fail at the network
	// level. Optional; sensible defaults apply when nil.
	Retry *internal.RetryConfig

	// PollInterval is the cadence of container status checks during a
	// publish. Defaults to the platform-recommended interval.
	PollInterval time.Duration

	// MaxWait bounds how long a publish waits for a container to finish
	// processing before returning a TimeoutError.
	MaxWait time.Duration

	// QuotaCacheTTL is how long a fetched publishing limit is reused for
	// quota checks. Defaults to DefaultQuotaCacheTTL.
	QuotaCacheTTL time.Duration
}

// Transport defines the behavior required from the underlying HTTP layer.
// This interface allows for easy testing and customization of HTTP behavior.
type Transport interface {
	// Get issues an idempotent read. Network-level failures are retried
	// internally with backoff before surfacing.
	Get(ctx context.Context, path string, params url.Values, v any) error

	// Post issues a mutating request. Never retried internally.
	Post(ctx context.Context, path string, params url.Values, v any) error

	// Delete issues a delete request. Never retried internally.
	Delete(ctx context.Context, path string, params url.Values, v any) error
}

// Client is the main Threads API client.
// It coordinates container creation, polling, quota checks and publishing,
// and exposes the simpler read operations (posts, profiles, replies,
// insights) directly.
type Client struct {
	transport Transport
	config    *Config
	validator *internal.Validator
	poller    *internal.Poller
	limits    *rateTracker
}

// NewClient creates a new Threads client with the provided configuration.
// It validates the configuration and sets defaults for optional fields.
//
// Returns an error if config is nil or AccessToken is missing. No network
// call is made; the token is validated by the first request that uses it.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, &pkgerrs.ConfigError{Message: "config cannot be nil"}
	}
	if config.AccessToken == "" {
		return nil, &pkgerrs.ConfigError{Field: "AccessToken", Message: "access token is required"}
	}

	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	if config.PollInterval <= 0 {
		config.PollInterval = internal.DefaultPollInterval
	}
	if config.MaxWait <= 0 {
		config.MaxWait = internal.DefaultMaxWait
	}
	if config.QuotaCacheTTL <= 0 {
		config.QuotaCacheTTL = DefaultQuotaCacheTTL
	}

	transport, err := internal.NewClient(
		config.HTTPClient,
		config.AccessToken,
		config.BaseURL,
		config.UserAgent,
		config.RateLimit,
		config.Retry,
		config.Logger,
	)
	if err != nil {
		return nil, err
	}

	clock := clockwork.NewRealClock()
	return &Client{
		transport: transport,
		config:    config,
		validator: internal.NewValidator(),
		poller:    &internal.Poller{Clock: clock, Logger: config.Logger},
		limits:    newRateTracker(transport, clock, config.QuotaCacheTTL),
	}, nil
}

// GetPost retrieves a post by ID. If no fields are given the default field
// set is requested.
func (c *Client) GetPost(ctx context.Context, postID string, fields ...string) (*types.Post, error) {
	if postID == "" {
		return nil, &pkgerrs.ValidationError{Field: "post_id", Message: "post ID is required"}
	}
	if len(fields) == 0 {
		fields = defaultPostFields
	}

	params := url.Values{}
	params.Set("fields", strings.Join(fields, ","))

	var post types.Post
	if err := c.transport.Get(ctx, postID, params, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// UserPostsOptions narrows a GetUserPosts listing.
type UserPostsOptions struct {
	// Since and Until bound the listing window; Unix timestamps or
	// strtotime-style strings, as the platform accepts both.
	Since string
	Until string
	// Limit caps the number of posts returned. 0 means the platform default.
	Limit int
	// Fields overrides the default post field set.
	Fields []string
}

// listEnvelope is the platform's wrapper for listing responses.
type listEnvelope[T any] struct {
	Data []T `json:"data"`
}

// GetUserPosts retrieves posts published by a user, newest first.
func (c *Client) GetUserPosts(ctx context.Context, userID string, opts *UserPostsOptions) ([]*types.Post, error) {
	if userID == "" {
		return nil, &pkgerrs.ValidationError{Field: "user_id", Message: "user ID is required"}
	}
	if opts == nil {
		opts = &UserPostsOptions{}
	}

	fields := opts.Fields
	if len(fields) == 0 {
		fields = defaultPostFields
	}

	params := url.Values{}
	params.Set("fields", strings.Join(fields, ","))
	if opts.Since != "" {
		params.Set("since", opts.Since)
	}
	if opts.Until != "" {
		params.Set("until", opts.Until)
	}
	if opts.Limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", opts.Limit))
	}

	var envelope listEnvelope[*types.Post]
	if err := c.transport.Get(ctx, userID+"/threads", params, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

// GetMe retrieves the authenticated user's profile.
func (c *Client) GetMe(ctx context.Context, fields ...string) (*types.UserProfile, error) {
	return c.GetProfile(ctx, "me", fields...)
}

// GetProfile retrieves a user's profile by ID. If no fields are given the
// default profile field set is requested; follower counts and geo-gating
// eligibility require extra permissions and must be requested explicitly.
func (c *Client) GetProfile(ctx context.Context, userID string, fields ...string) (*types.UserProfile, error) {
	if userID == "" {
		return nil, &pkgerrs.ValidationError{Field: "user_id", Message: "user ID is required"}
	}
	if len(fields) == 0 {
		fields = defaultProfileFields
	}

	params := url.Values{}
	params.Set("fields", strings.Join(fields, ","))

	var profile types.UserProfile
	if err := c.transport.Get(ctx, userID, params, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// successResponse is the platform's acknowledgement body for mutations
// that return no object.
type successResponse struct {
	Success bool `json:"success"`
}

// DeletePost deletes a post owned by the authenticated user.
func (c *Client) DeletePost(ctx context.Context, postID string) error {
	if postID == "" {
		return &pkgerrs.ValidationError{Field: "post_id", Message: "post ID is required"}
	}

	var resp successResponse
	if err := c.transport.Delete(ctx, postID, nil, &resp); err != nil {
		return err
	}
	if c.config.Logger != nil {
		c.config.Logger.Info("deleted post", "post_id", postID)
	}
	return nil
}
