package threads

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/jamesprial/go-threads-api-wrapper/internal"
)

func newQuotaClient(t *testing.T, ft *fakeTransport, clock clockwork.Clock, ttl time.Duration) *Client {
	t.Helper()
	cfg := &Config{AccessToken: "token", PollInterval: time.Millisecond, MaxWait: time.Second, QuotaCacheTTL: ttl}
	return &Client{
		transport: ft,
		config:    cfg,
		validator: internal.NewValidator(),
		poller:    &internal.Poller{Clock: clock},
		limits:    newRateTracker(ft, clock, ttl),
	}
}

func TestGetPublishingLimit(t *testing.T) {
	ft := &fakeTransport{}
	ft.handle = func(method, path string, params url.Values, v any) error {
		if method != "GET" || path != "user1/threads_publishing_limit" {
			t.Errorf("unexpected call %s %s", method, path)
			return notFound
		}
		return respond(t, v, `{"data":[{"quota_usage":12,"config":{"quota_total":250},"reply_quota_usage":34,"reply_config":{"quota_total":1000}}]}`)
	}

	c := newQuotaClient(t, ft, clockwork.NewFakeClock(), time.Minute)
	limit, err := c.GetPublishingLimit(context.Background(), "user1")
	if err != nil {
		t.Fatalf("GetPublishingLimit returned error: %v", err)
	}

	if limit.QuotaUsage != 12 || limit.QuotaTotal != 250 {
		t.Errorf("unexpected post quota: %d/%d", limit.QuotaUsage, limit.QuotaTotal)
	}
	if limit.ReplyQuotaUsage != 34 || limit.ReplyQuotaTotal != 1000 {
		t.Errorf("unexpected reply quota: %d/%d", limit.ReplyQuotaUsage, limit.ReplyQuotaTotal)
	}
	if got := limit.RemainingPosts(); got != 238 {
		t.Errorf("RemainingPosts() = %d, want 238", got)
	}
}

func TestGetPublishingLimit_DefaultsWhenConfigMissing(t *testing.T) {
	ft := &fakeTransport{}
	ft.handle = func(method, path string, params url.Values, v any) error {
		return respond(t, v, `{"data":[{"quota_usage":5}]}`)
	}

	c := newQuotaClient(t, ft, clockwork.NewFakeClock(), time.Minute)
	limit, err := c.GetPublishingLimit(context.Background(), "user1")
	if err != nil {
		t.Fatalf("GetPublishingLimit returned error: %v", err)
	}

	if limit.QuotaTotal != DefaultPostQuotaTotal {
		t.Errorf("expected default post total %d, got %d", DefaultPostQuotaTotal, limit.QuotaTotal)
	}
	if limit.ReplyQuotaTotal != DefaultReplyQuotaTotal {
		t.Errorf("expected default reply total %d, got %d", DefaultReplyQuotaTotal, limit.ReplyQuotaTotal)
	}
}

func TestCheckQuota_CachesWithinTTL(t *testing.T) {
	ft := &fakeTransport{}
	ft.handle = func(method, path string, params url.Values, v any) error {
		return respond(t, v, `{"data":[{"quota_usage":10,"config":{"quota_total":250}}]}`)
	}

	clock := clockwork.NewFakeClock()
	c := newQuotaClient(t, ft, clock, 10*time.Second)

	for i := 0; i < 3; i++ {
		status, err := c.CheckQuota(context.Background(), "user1", QuotaPost)
		if err != nil {
			t.Fatalf("CheckQuota returned error: %v", err)
		}
		if !status.Allowed {
			t.Error("expected quota to be available")
		}
	}
	if got := ft.totalCalls(); got != 1 {
		t.Errorf("expected 1 fetch within TTL, got %d", got)
	}

	clock.Advance(11 * time.Second)
	if _, err := c.CheckQuota(context.Background(), "user1", QuotaPost); err != nil {
		t.Fatalf("CheckQuota returned error: %v", err)
	}
	if got := ft.totalCalls(); got != 2 {
		t.Errorf("expected refetch after TTL, got %d calls", got)
	}
}

func TestCheckQuota_Exceeded(t *testing.T) {
	ft := &fakeTransport{}
	ft.handle = func(method, path string, params url.Values, v any) error {
		return respond(t, v, `{"data":[{"quota_usage":250,"config":{"quota_total":250},"reply_quota_usage":999,"reply_config":{"quota_total":1000}}]}`)
	}

	c := newQuotaClient(t, ft, clockwork.NewFakeClock(), time.Minute)

	post, err := c.CheckQuota(context.Background(), "user1", QuotaPost)
	if err != nil {
		t.Fatalf("CheckQuota returned error: %v", err)
	}
	if post.Allowed {
		t.Error("usage at the total must report exhausted")
	}
	if post.Remaining != 0 {
		t.Errorf("expected 0 remaining, got %d", post.Remaining)
	}

	// The reply window is independent and still has capacity.
	reply, err := c.CheckQuota(context.Background(), "user1", QuotaReply)
	if err != nil {
		t.Fatalf("CheckQuota returned error: %v", err)
	}
	if !reply.Allowed {
		t.Error("reply quota should still be available")
	}
	if reply.Remaining != 1 {
		t.Errorf("expected 1 reply remaining, got %d", reply.Remaining)
	}
}

func TestRateTracker_InvalidateForcesRefetch(t *testing.T) {
	ft := &fakeTransport{}
	ft.handle = func(method, path string, params url.Values, v any) error {
		return respond(t, v, `{"data":[{"quota_usage":1,"config":{"quota_total":250}}]}`)
	}

	clock := clockwork.NewFakeClock()
	c := newQuotaClient(t, ft, clock, time.Minute)

	if _, err := c.CheckQuota(context.Background(), "user1", QuotaPost); err != nil {
		t.Fatalf("CheckQuota returned error: %v", err)
	}
	c.limits.invalidate("user1")
	if _, err := c.CheckQuota(context.Background(), "user1", QuotaPost); err != nil {
		t.Fatalf("CheckQuota returned error: %v", err)
	}

	if got := ft.totalCalls(); got != 2 {
		t.Errorf("expected refetch after invalidate, got %d calls", got)
	}
}
