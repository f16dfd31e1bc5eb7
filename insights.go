package threads

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	pkgerrs "github.com/jamesprial/go-threads-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-threads-api-wrapper/pkg/types"
)

var (
	// defaultPostMetrics is requested when no metrics are named for a post.
	defaultPostMetrics = []types.MetricType{
		types.MetricViews,
		types.MetricLikes,
		types.MetricReplies,
		types.MetricReposts,
		types.MetricQuotes,
	}

	// defaultUserMetrics is requested when no metrics are named for a user.
	defaultUserMetrics = []types.MetricType{
		types.MetricViews,
		types.MetricFollowersCount,
	}
)

func joinMetrics(metrics []types.MetricType) string {
	names := make([]string, len(metrics))
	for i, m := range metrics {
		names[i] = string(m)
	}
	return strings.Join(names, ",")
}

// GetPostInsights retrieves engagement metrics for a single post. Requires
// the threads_manage_insights scope and only works on the authenticated
// user's own posts.
func (c *Client) GetPostInsights(ctx context.Context, postID string, metrics ...types.MetricType) (*types.InsightsResponse, error) {
	if postID == "" {
		return nil, &pkgerrs.ValidationError{Field: "post_id", Message: "post ID is required"}
	}
	if len(metrics) == 0 {
		metrics = defaultPostMetrics
	}

	params := url.Values{}
	params.Set("metric", joinMetrics(metrics))

	var resp types.InsightsResponse
	if err := c.transport.Get(ctx, postID+"/insights", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UserInsightsOptions narrows a user insights query to a time window.
type UserInsightsOptions struct {
	// Since and Until are Unix timestamps bounding the window. Zero means
	// the platform default window.
	Since int64
	Until int64
	// Metrics overrides the default user metric set.
	Metrics []types.MetricType
}

// GetUserInsights retrieves account-level metrics for the authenticated
// user. Requires the threads_manage_insights scope.
func (c *Client) GetUserInsights(ctx context.Context, userID string, opts *UserInsightsOptions) (*types.InsightsResponse, error) {
	if userID == "" {
		return nil, &pkgerrs.ValidationError{Field: "user_id", Message: "user ID is required"}
	}
	if opts == nil {
		opts = &UserInsightsOptions{}
	}

	metrics := opts.Metrics
	if len(metrics) == 0 {
		metrics = defaultUserMetrics
	}

	params := url.Values{}
	params.Set("metric", joinMetrics(metrics))
	if opts.Since > 0 {
		params.Set("since", strconv.FormatInt(opts.Since, 10))
	}
	if opts.Until > 0 {
		params.Set("until", strconv.FormatInt(opts.Until, 10))
	}

	var resp types.InsightsResponse
	if err := c.transport.Get(ctx, userID+"/threads_insights", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
