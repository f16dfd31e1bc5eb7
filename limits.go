package threads

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	pkgerrs "github.com/jamesprial/go-threads-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-threads-api-wrapper/pkg/types"
)

// Platform caps for the rolling 24-hour publishing window, used when the
// limit response omits its config blocks.
const (
	DefaultPostQuotaTotal  = 250
	DefaultReplyQuotaTotal = 1000
)

// QuotaKind selects which publishing quota a check applies to. Posts and
// replies draw from separate windows.
type QuotaKind int

const (
	QuotaPost QuotaKind = iota
	QuotaReply
)

func (k QuotaKind) String() string {
	if k == QuotaReply {
		return "reply"
	}
	return "post"
}

// QuotaStatus is the outcome of a quota check against cached usage.
type QuotaStatus struct {
	// Allowed reports whether the window still has capacity. The usage
	// snapshot may be up to the cache TTL old, so Allowed is advisory;
	// the platform remains the enforcement point.
	Allowed   bool
	Kind      QuotaKind
	Used      int
	Total     int
	Remaining int
	// ResetHint is how stale the snapshot can be before it is re-fetched.
	// The platform does not report when the rolling window frees capacity.
	ResetHint time.Duration
}

// quotaWire is the platform's envelope for the publishing limit endpoint.
// The totals live in nested config blocks that older tokens may not get;
// missing blocks fall back to the documented platform caps.
type quotaWire struct {
	Data []struct {
		QuotaUsage int `json:"quota_usage"`
		Config     struct {
			QuotaTotal int `json:"quota_total"`
		} `json:"config"`
		ReplyQuotaUsage int `json:"reply_quota_usage"`
		ReplyConfig     struct {
			QuotaTotal int `json:"quota_total"`
		} `json:"reply_config"`
	} `json:"data"`
}

// rateTracker caches publishing-limit lookups per user so a burst of
// publishes does not issue a limit query each. Entries expire after the
// configured TTL; the clock is injected for testing.
type rateTracker struct {
	transport Transport
	clock     clockwork.Clock
	ttl       time.Duration

	mu    sync.Mutex
	cache map[string]quotaEntry
}

type quotaEntry struct {
	limit     types.PublishingLimit
	fetchedAt time.Time
}

func newRateTracker(transport Transport, clock clockwork.Clock, ttl time.Duration) *rateTracker {
	return &rateTracker{
		transport: transport,
		clock:     clock,
		ttl:       ttl,
		cache:     make(map[string]quotaEntry),
	}
}

// get returns the cached limit for the user, fetching when the entry is
// missing or stale.
func (t *rateTracker) get(ctx context.Context, userID string) (types.PublishingLimit, error) {
	t.mu.Lock()
	entry, ok := t.cache[userID]
	if ok && t.clock.Since(entry.fetchedAt) < t.ttl {
		t.mu.Unlock()
		return entry.limit, nil
	}
	t.mu.Unlock()

	limit, err := t.fetch(ctx, userID)
	if err != nil {
		return types.PublishingLimit{}, err
	}

	t.mu.Lock()
	t.cache[userID] = quotaEntry{limit: limit, fetchedAt: t.clock.Now()}
	t.mu.Unlock()
	return limit, nil
}

// invalidate drops the cached entry for a user, forcing the next check to
// fetch fresh usage.
func (t *rateTracker) invalidate(userID string) {
	t.mu.Lock()
	delete(t.cache, userID)
	t.mu.Unlock()
}

func (t *rateTracker) fetch(ctx context.Context, userID string) (types.PublishingLimit, error) {
	params := url.Values{}
	params.Set("fields", "quota_usage,config,reply_quota_usage,reply_config")

	var wire quotaWire
	if err := t.transport.Get(ctx, userID+"/threads_publishing_limit", params, &wire); err != nil {
		return types.PublishingLimit{}, err
	}
	if len(wire.Data) == 0 {
		return types.PublishingLimit{}, &pkgerrs.RequestError{
			Operation: "GET " + userID + "/threads_publishing_limit",
			Err:       errEmptyLimitResponse,
		}
	}

	d := wire.Data[0]
	limit := types.PublishingLimit{
		QuotaUsage:      d.QuotaUsage,
		QuotaTotal:      d.Config.QuotaTotal,
		ReplyQuotaUsage: d.ReplyQuotaUsage,
		ReplyQuotaTotal: d.ReplyConfig.QuotaTotal,
	}
	if limit.QuotaTotal <= 0 {
		limit.QuotaTotal = DefaultPostQuotaTotal
	}
	if limit.ReplyQuotaTotal <= 0 {
		limit.ReplyQuotaTotal = DefaultReplyQuotaTotal
	}
	return limit, nil
}

var errEmptyLimitResponse = &pkgerrs.APIError{Message: "publishing limit response contained no data"}

// GetPublishingLimit fetches the user's current rolling-window usage
// directly from the platform, bypassing the quota cache.
func (c *Client) GetPublishingLimit(ctx context.Context, userID string) (types.PublishingLimit, error) {
	if userID == "" {
		return types.PublishingLimit{}, &pkgerrs.ValidationError{Field: "user_id", Message: "user ID is required"}
	}
	limit, err := c.limits.fetch(ctx, userID)
	if err != nil {
		return types.PublishingLimit{}, err
	}
	c.limits.mu.Lock()
	c.limits.cache[userID] = quotaEntry{limit: limit, fetchedAt: c.limits.clock.Now()}
	c.limits.mu.Unlock()
	return limit, nil
}

// CheckQuota reports whether the user has capacity left in the rolling
// 24-hour window for the given quota kind. Usage is served from a short
// lived cache; a usage count at or above the window total means exhausted.
func (c *Client) CheckQuota(ctx context.Context, userID string, kind QuotaKind) (QuotaStatus, error) {
	if userID == "" {
		return QuotaStatus{}, &pkgerrs.ValidationError{Field: "user_id", Message: "user ID is required"}
	}

	limit, err := c.limits.get(ctx, userID)
	if err != nil {
		return QuotaStatus{}, err
	}

	status := QuotaStatus{Kind: kind, ResetHint: c.limits.ttl}
	switch kind {
	case QuotaReply:
		status.Used = limit.ReplyQuotaUsage
		status.Total = limit.ReplyQuotaTotal
		status.Remaining = limit.RemainingReplies()
	default:
		status.Used = limit.QuotaUsage
		status.Total = limit.QuotaTotal
		status.Remaining = limit.RemainingPosts()
	}
	status.Allowed = status.Used < status.Total

	if c.config.Logger != nil && !status.Allowed {
		c.config.Logger.Warn("publishing quota exhausted",
			"user_id", userID,
			"kind", status.Kind.String(),
			"used", status.Used,
			"total", status.Total,
		)
	}
	return status, nil
}
