package types

import (
	"encoding/json"
	"time"
)

// MediaType identifies the kind of content a container holds.
type MediaType string

const (
	MediaTypeText     MediaType = "TEXT"
	MediaTypeImage    MediaType = "IMAGE"
	MediaTypeVideo    MediaType = "VIDEO"
	MediaTypeCarousel MediaType = "CAROUSEL"

	// MediaTypeTextPost and MediaTypeCarouselAlbum are what the API reports
	// back on published posts; they are never sent on container creation.
	MediaTypeTextPost      MediaType = "TEXT_POST"
	MediaTypeCarouselAlbum MediaType = "CAROUSEL_ALBUM"
)

// ContainerStatus is the lifecycle state of a media container.
// FINISHED, ERROR, EXPIRED and PUBLISHED are terminal; once a container
// reports one of them it never transitions again.
type ContainerStatus string

const (
	ContainerInProgress ContainerStatus = "IN_PROGRESS"
	ContainerFinished   ContainerStatus = "FINISHED"
	ContainerError      ContainerStatus = "ERROR"
	ContainerExpired    ContainerStatus = "EXPIRED"
	ContainerPublished  ContainerStatus = "PUBLISHED"
)

// IsTerminal reports whether the status is one the platform never leaves.
func (s ContainerStatus) IsTerminal() bool {
	switch s {
	case ContainerFinished, ContainerError, ContainerExpired, ContainerPublished:
		return true
	}
	return false
}

// ReplyControl restricts who may reply to a post.
type ReplyControl string

const (
	ReplyControlEveryone         ReplyControl = "EVERYONE"
	ReplyControlAccountsFollowed ReplyControl = "ACCOUNTS_YOU_FOLLOW"
	ReplyControlMentionedOnly    ReplyControl = "MENTIONED_ONLY"
)

// Scope is an OAuth permission scope.
type Scope string

const (
	ScopeBasic          Scope = "threads_basic"
	ScopeContentPublish Scope = "threads_content_publish"
	ScopeReadReplies    Scope = "threads_read_replies"
	ScopeManageReplies  Scope = "threads_manage_replies"
	ScopeManageInsights Scope = "threads_manage_insights"
)

// Container is the client-side view of a remote media-processing container.
// The ID is opaque; Status is the last state observed via a status query.
type Container struct {
	ID           string          `json:"id"`
	Status       ContainerStatus `json:"status"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

// MediaSpec describes one unit of media for a post or carousel item.
// Exactly one of ImageURL or VideoURL must be set. The platform fetches the
// media from the URL server-side; raw bytes are never uploaded.
type MediaSpec struct {
	ImageURL string
	VideoURL string
}

// Type returns the media type implied by which URL is set.
func (m MediaSpec) Type() MediaType {
	if m.VideoURL != "" {
		return MediaTypeVideo
	}
	return MediaTypeImage
}

// URL returns whichever media URL is set.
func (m MediaSpec) URL() string {
	if m.VideoURL != "" {
		return m.VideoURL
	}
	return m.ImageURL
}

// PublishRequest describes a post to create and publish in one operation.
//
// Content classification: no media means a text-only post, one item in
// Media is a single image or video post, and two or more items form a
// carousel. Text serves as the caption when media is present.
type PublishRequest struct {
	// UserID is the account the post is published under. Required.
	UserID string

	// Text is the post body, or the caption for media posts. At most 500
	// characters.
	Text string

	// Media holds zero or more media items. Two or more items publish as a
	// carousel and must number between 2 and 10.
	Media []MediaSpec

	// ReplyToID makes the post a reply to the given post ID.
	ReplyToID string

	// ReplyControl restricts who can reply. Empty means the platform
	// default (everyone).
	ReplyControl ReplyControl

	// CountryCodes geo-gates the post to the given ISO 3166-1 alpha-2
	// country codes.
	CountryCodes []string

	// CheckQuota makes the coordinator consult the publishing limit before
	// the final publish call and fail fast with a RateLimitError when the
	// quota is exhausted. Off by default; the platform enforces the limit
	// regardless.
	CheckQuota bool
}

// Owner identifies the owning account of a post.
type Owner struct {
	ID string `json:"id"`
}

// Post is a published Threads post.
type Post struct {
	ID               string       `json:"id"`
	MediaProductType string       `json:"media_product_type,omitempty"`
	MediaType        MediaType    `json:"media_type,omitempty"`
	MediaURL         string       `json:"media_url,omitempty"`
	Permalink        string       `json:"permalink,omitempty"`
	Owner            *Owner       `json:"owner,omitempty"`
	Username         string       `json:"username,omitempty"`
	Text             string       `json:"text,omitempty"`
	Timestamp        string       `json:"timestamp,omitempty"`
	Shortcode        string       `json:"shortcode,omitempty"`
	ThumbnailURL     string       `json:"thumbnail_url,omitempty"`
	Children         ChildList    `json:"children,omitempty"`
	IsQuotePost      bool         `json:"is_quote_post,omitempty"`
	HasReplies       bool         `json:"has_replies,omitempty"`
	ReplyAudience    ReplyControl `json:"reply_audience,omitempty"`
	HideStatus       string       `json:"hide_status,omitempty"`
}

// ChildList is the ordered set of children of a carousel post. The API
// nests it as {"data":[{"id":...}]} on reads, so unmarshalling accepts both
// the bare array and the wrapped form.
type ChildList []Owner

func (c *ChildList) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		Data []Owner `json:"data"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Data != nil {
		*c = wrapped.Data
		return nil
	}
	var plain []Owner
	if err := json.Unmarshal(data, &plain); err != nil {
		return err
	}
	*c = plain
	return nil
}

// Reply is a reply to a post. Structurally a post, but reply listings carry
// a reduced field set.
type Reply struct {
	ID         string    `json:"id"`
	Text       string    `json:"text,omitempty"`
	Username   string    `json:"username,omitempty"`
	Permalink  string    `json:"permalink,omitempty"`
	Timestamp  string    `json:"timestamp,omitempty"`
	MediaType  MediaType `json:"media_type,omitempty"`
	MediaURL   string    `json:"media_url,omitempty"`
	HideStatus string    `json:"hide_status,omitempty"`
	HasReplies bool      `json:"has_replies,omitempty"`
}

// UserProfile holds profile fields for a Threads account.
type UserProfile struct {
	ID                string `json:"id"`
	Username          string `json:"username,omitempty"`
	Name              string `json:"name,omitempty"`
	ProfilePictureURL string `json:"threads_profile_picture_url,omitempty"`
	Biography         string `json:"threads_biography,omitempty"`
	FollowerCount     int    `json:"follower_count,omitempty"`
	FollowingCount    int    `json:"following_count,omitempty"`
}

// PublishingLimit reports rolling 24-hour publish usage against the
// platform caps. The values are authoritative only for the instant they
// were fetched.
type PublishingLimit struct {
	QuotaUsage      int `json:"quota_usage"`
	QuotaTotal      int `json:"quota_total"`
	ReplyQuotaUsage int `json:"reply_quota_usage"`
	ReplyQuotaTotal int `json:"reply_quota_total"`
}

// RemainingPosts returns how many post publishes are left in the window.
func (p PublishingLimit) RemainingPosts() int {
	return max(0, p.QuotaTotal-p.QuotaUsage)
}

// RemainingReplies returns how many reply publishes are left in the window.
func (p PublishingLimit) RemainingReplies() int {
	return max(0, p.ReplyQuotaTotal-p.ReplyQuotaUsage)
}

// MetricType names an insights metric.
type MetricType string

const (
	MetricViews          MetricType = "views"
	MetricLikes          MetricType = "likes"
	MetricReplies        MetricType = "replies"
	MetricReposts        MetricType = "reposts"
	MetricQuotes         MetricType = "quotes"
	MetricFollowersCount MetricType = "followers_count"
)

// InsightValue is a single measured value for a metric.
type InsightValue struct {
	Value   int    `json:"value"`
	EndTime string `json:"end_time,omitempty"`
}

// Insight is one metric series returned by the insights endpoints. User
// level metrics may report through TotalValue instead of Values.
type Insight struct {
	Name        MetricType     `json:"name"`
	Period      string         `json:"period,omitempty"`
	Values      []InsightValue `json:"values,omitempty"`
	TotalValue  *InsightValue  `json:"total_value,omitempty"`
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	ID          string         `json:"id,omitempty"`
}

// Value returns the primary value of the metric: the total when present,
// otherwise the first entry in the series.
func (i Insight) Value() int {
	if i.TotalValue != nil {
		return i.TotalValue.Value
	}
	if len(i.Values) > 0 {
		return i.Values[0].Value
	}
	return 0
}

// InsightsResponse is the set of metrics returned for a post or user.
type InsightsResponse struct {
	Data []Insight `json:"data"`
}

// Metric returns the value for the named metric, or 0 if absent.
func (r InsightsResponse) Metric(name MetricType) int {
	for _, in := range r.Data {
		if in.Name == name {
			return in.Value()
		}
	}
	return 0
}

// ShortLivedToken is an access token valid for roughly one hour.
type ShortLivedToken struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id"`
}

// LongLivedToken is an access token valid for about 60 days.
type LongLivedToken struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	ObtainedAt  time.Time `json:"-"`
}

// ExpiresAt returns the wall-clock expiry of the token.
func (t LongLivedToken) ExpiresAt() time.Time {
	return t.ObtainedAt.Add(time.Duration(t.ExpiresIn) * time.Second)
}

// WebhookChange is a single field change inside a webhook entry.
type WebhookChange struct {
	Field string          `json:"field"`
	Value json.RawMessage `json:"value,omitempty"`
}

// WebhookEntry groups the changes delivered for one object.
type WebhookEntry struct {
	ID      string          `json:"id"`
	Time    int64           `json:"time"`
	Changes []WebhookChange `json:"changes,omitempty"`
}

// Timestamp converts the entry's Unix time to a time.Time.
func (e WebhookEntry) Timestamp() time.Time {
	return time.Unix(e.Time, 0)
}

// WebhookPayload is the top-level body of a webhook delivery.
type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}
