package threads

import (
	"context"
	"net/url"
	"strings"

	pkgerrs "github.com/jamesprial/go-threads-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-threads-api-wrapper/pkg/types"
)

// ContainerSpec describes a single media container to create. Most callers
// should use CreateAndPublish instead; this is the low-level building
// block for callers managing the two-step flow themselves.
type ContainerSpec struct {
	MediaType      types.MediaType
	Text           string
	ImageURL       string
	VideoURL       string
	IsCarouselItem bool
	// Children holds child container IDs, in display order, for
	// MediaTypeCarousel parents.
	Children     []string
	ReplyToID    string
	ReplyControl types.ReplyControl
	CountryCodes []string
}

// CreateContainer creates a media container for the given user and returns
// it in the CREATED state. The container ID carries no readiness
// guarantee; use WaitForContainer before publishing.
func (c *Client) CreateContainer(ctx context.Context, userID string, spec ContainerSpec) (types.Container, error) {
	if userID == "" {
		return types.Container{}, &pkgerrs.ValidationError{Field: "user_id", Message: "user ID is required"}
	}
	if err := c.validateContainerSpec(spec); err != nil {
		return types.Container{}, err
	}

	params := url.Values{}
	params.Set("media_type", string(spec.MediaType))
	if spec.Text != "" {
		params.Set("text", spec.Text)
	}
	if spec.ImageURL != "" {
		params.Set("image_url", spec.ImageURL)
	}
	if spec.VideoURL != "" {
		params.Set("video_url", spec.VideoURL)
	}
	if spec.IsCarouselItem {
		params.Set("is_carousel_item", "true")
	}
	if len(spec.Children) > 0 {
		params.Set("children", strings.Join(spec.Children, ","))
	}
	if spec.ReplyToID != "" {
		params.Set("reply_to_id", spec.ReplyToID)
	}
	if spec.ReplyControl != "" {
		params.Set("reply_control", string(spec.ReplyControl))
	}
	if len(spec.CountryCodes) > 0 {
		params.Set("allowlisted_country_codes", strings.Join(spec.CountryCodes, ","))
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := c.transport.Post(ctx, userID+"/threads", params, &created); err != nil {
		return types.Container{}, err
	}

	if c.config.Logger != nil {
		c.config.Logger.Info("created container", "container_id", created.ID, "media_type", string(spec.MediaType))
	}
	return types.Container{ID: created.ID}, nil
}

func (c *Client) validateContainerSpec(spec ContainerSpec) error {
	if err := c.validator.ValidateText(spec.Text); err != nil {
		return err
	}
	if err := c.validator.ValidateReplyControl(spec.ReplyControl); err != nil {
		return err
	}
	if err := c.validator.ValidateCountryCodes(spec.CountryCodes); err != nil {
		return err
	}
	switch spec.MediaType {
	case types.MediaTypeImage:
		if err := c.validator.ValidateMediaURL(spec.ImageURL, types.MediaTypeImage); err != nil {
			return err
		}
	case types.MediaTypeVideo:
		if err := c.validator.ValidateMediaURL(spec.VideoURL, types.MediaTypeVideo); err != nil {
			return err
		}
	case types.MediaTypeCarousel:
		if err := c.validator.ValidateCarouselCount(len(spec.Children)); err != nil {
			return err
		}
	}
	return nil
}

// GetContainerStatus queries the current lifecycle state of a container.
// A read-only call; it is also the status source for the polling engine.
func (c *Client) GetContainerStatus(ctx context.Context, containerID string) (types.Container, error) {
	if containerID == "" {
		return types.Container{}, &pkgerrs.ValidationError{Field: "container_id", Message: "container ID is required"}
	}

	params := url.Values{}
	params.Set("fields", "id,status,error_message")

	var container types.Container
	if err := c.transport.Get(ctx, containerID, params, &container); err != nil {
		return types.Container{}, err
	}
	return container, nil
}

// WaitForContainer polls the container until it reaches a terminal state
// or the client's MaxWait ceiling passes. On FINISHED the container is
// returned with a nil error; a processing failure surfaces as a
// ContainerError and an elapsed ceiling as a TimeoutError. A TimeoutError
// means the state is unknown; the same container ID may be waited on again.
// Cancellation via ctx is honored at every poll boundary.
func (c *Client) WaitForContainer(ctx context.Context, containerID string) (types.Container, error) {
	return c.poller.AwaitReady(ctx, containerID, c.GetContainerStatus, c.config.PollInterval, c.config.MaxWait)
}

// Publish publishes a previously created, FINISHED container as a post and
// returns the new post ID. Callers are responsible for container
// readiness; publishing an unfinished container fails on the platform
// side. This call is never retried internally.
func (c *Client) Publish(ctx context.Context, userID, containerID string) (string, error) {
	if userID == "" {
		return "", &pkgerrs.ValidationError{Field: "user_id", Message: "user ID is required"}
	}
	if containerID == "" {
		return "", &pkgerrs.ValidationError{Field: "container_id", Message: "container ID is required"}
	}

	params := url.Values{}
	params.Set("creation_id", containerID)

	var published struct {
		ID string `json:"id"`
	}
	if err := c.transport.Post(ctx, userID+"/threads_publish", params, &published); err != nil {
		return "", err
	}

	if c.config.Logger != nil {
		c.config.Logger.Info("published post", "post_id", published.ID, "container_id", containerID)
	}
	return published.ID, nil
}

// CreateAndPublish turns a content request into a published post,
// handling the container flow end to end.
//
// Content is classified by shape: no media publishes directly as a text
// post, a single media item goes through one container, and two or more
// items are orchestrated as a carousel. Every container is polled to a
// terminal state before the publish call: at most one publish is issued,
// and never for a container that is IN_PROGRESS or in ERROR.
//
// With req.CheckQuota set, the publishing limit is consulted before the
// final publish and an exhausted quota fails fast with a RateLimitError;
// otherwise the platform's own enforcement is the only limit.
func (c *Client) CreateAndPublish(ctx context.Context, req *types.PublishRequest) (*types.Post, error) {
	if req == nil {
		return nil, &pkgerrs.ValidationError{Message: "publish request cannot be nil"}
	}
	if req.UserID == "" {
		return nil, &pkgerrs.ValidationError{Field: "user_id", Message: "user ID is required"}
	}
	if req.Text == "" && len(req.Media) == 0 {
		return nil, &pkgerrs.ValidationError{Message: "at least one of text or media is required"}
	}
	if err := c.validator.ValidateText(req.Text); err != nil {
		return nil, err
	}
	if err := c.validator.ValidateReplyControl(req.ReplyControl); err != nil {
		return nil, err
	}
	if err := c.validator.ValidateCountryCodes(req.CountryCodes); err != nil {
		return nil, err
	}

	var (
		containerID string
		err         error
	)
	switch {
	case len(req.Media) == 0:
		// Text-only posts need no container.
		return c.publishText(ctx, req)
	case len(req.Media) == 1:
		containerID, err = c.prepareSingle(ctx, req)
	default:
		containerID, err = c.prepareCarousel(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	if err := c.checkQuotaIfRequested(ctx, req); err != nil {
		return nil, err
	}

	postID, err := c.Publish(ctx, req.UserID, containerID)
	if err != nil {
		return nil, err
	}
	return c.fetchPublished(ctx, postID, req), nil
}

// publishText issues the single direct publish call for a text-only post.
func (c *Client) publishText(ctx context.Context, req *types.PublishRequest) (*types.Post, error) {
	if err := c.checkQuotaIfRequested(ctx, req); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("media_type", string(types.MediaTypeText))
	params.Set("text", req.Text)
	if req.ReplyToID != "" {
		params.Set("reply_to_id", req.ReplyToID)
	}
	if req.ReplyControl != "" {
		params.Set("reply_control", string(req.ReplyControl))
	}
	if len(req.CountryCodes) > 0 {
		params.Set("allowlisted_country_codes", strings.Join(req.CountryCodes, ","))
	}

	var published struct {
		ID string `json:"id"`
	}
	if err := c.transport.Post(ctx, req.UserID+"/threads_publish", params, &published); err != nil {
		return nil, err
	}

	if c.config.Logger != nil {
		c.config.Logger.Info("published text post", "post_id", published.ID)
	}
	return c.fetchPublished(ctx, published.ID, req), nil
}

// prepareSingle creates one media container and waits for it to finish.
// Images usually finish near-instantly, but readiness is confirmed with at
// least one status poll regardless; immediate readiness is an
// optimization on the platform side, not a guarantee.
func (c *Client) prepareSingle(ctx context.Context, req *types.PublishRequest) (string, error) {
	media := req.Media[0]
	container, err := c.CreateContainer(ctx, req.UserID, ContainerSpec{
		MediaType:    media.Type(),
		Text:         req.Text,
		ImageURL:     media.ImageURL,
		VideoURL:     media.VideoURL,
		ReplyToID:    req.ReplyToID,
		ReplyControl: req.ReplyControl,
		CountryCodes: req.CountryCodes,
	})
	if err != nil {
		return "", err
	}

	ready, err := c.WaitForContainer(ctx, container.ID)
	if err != nil {
		return "", err
	}
	return ready.ID, nil
}

// prepareCarousel runs the carousel orchestration: child containers first,
// all polled to FINISHED, then the parent container referencing them in
// the caller's order. Any child failure or timeout aborts before the
// parent is created, so no partial carousel is ever published. The child
// count bound is checked before the first network call.
func (c *Client) prepareCarousel(ctx context.Context, req *types.PublishRequest) (string, error) {
	if err := c.validator.ValidateCarouselCount(len(req.Media)); err != nil {
		return "", err
	}
	for _, media := range req.Media {
		if err := c.validator.ValidateMediaURL(media.URL(), media.Type()); err != nil {
			return "", err
		}
	}

	childIDs := make([]string, 0, len(req.Media))
	for _, media := range req.Media {
		child, err := c.CreateContainer(ctx, req.UserID, ContainerSpec{
			MediaType:      media.Type(),
			ImageURL:       media.ImageURL,
			VideoURL:       media.VideoURL,
			IsCarouselItem: true,
		})
		if err != nil {
			return "", err
		}
		childIDs = append(childIDs, child.ID)
	}

	for _, childID := range childIDs {
		if _, err := c.WaitForContainer(ctx, childID); err != nil {
			return "", err
		}
	}

	parent, err := c.CreateContainer(ctx, req.UserID, ContainerSpec{
		MediaType:    types.MediaTypeCarousel,
		Text:         req.Text,
		Children:     childIDs,
		ReplyToID:    req.ReplyToID,
		ReplyControl: req.ReplyControl,
		CountryCodes: req.CountryCodes,
	})
	if err != nil {
		return "", err
	}

	ready, err := c.WaitForContainer(ctx, parent.ID)
	if err != nil {
		return "", err
	}
	return ready.ID, nil
}

func (c *Client) checkQuotaIfRequested(ctx context.Context, req *types.PublishRequest) error {
	if !req.CheckQuota {
		return nil
	}

	kind := QuotaPost
	if req.ReplyToID != "" {
		kind = QuotaReply
	}

	status, err := c.CheckQuota(ctx, req.UserID, kind)
	if err != nil {
		return err
	}
	if !status.Allowed {
		return &pkgerrs.RateLimitError{
			APIError: pkgerrs.APIError{
				Message: "publishing quota exhausted for the current window",
			},
			RetryAfter: status.ResetHint,
		}
	}
	return nil
}

// fetchPublished retrieves the full post after a successful publish. The
// publish already happened, so a failed fetch degrades to a minimal post
// rather than failing the operation.
func (c *Client) fetchPublished(ctx context.Context, postID string, req *types.PublishRequest) *types.Post {
	post, err := c.GetPost(ctx, postID)
	if err != nil {
		if c.config.Logger != nil {
			c.config.Logger.Warn("could not fetch published post details", "post_id", postID, "error", err)
		}
		return &types.Post{ID: postID, Text: req.Text, MediaType: types.MediaTypeTextPost}
	}
	return post
}
