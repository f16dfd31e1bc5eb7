package threads

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	pkgerrs "github.com/jamesprial/go-threads-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-threads-api-wrapper/pkg/types"
)

// defaultReplyFields is the field set requested for replies.
var defaultReplyFields = []string{
	"id",
	"text",
	"username",
	"permalink",
	"timestamp",
	"media_type",
	"media_url",
	"hide_status",
	"has_replies",
	"root_post",
	"replied_to",
}

// ReplyOptions narrows a reply listing.
type ReplyOptions struct {
	// Reverse flips the ordering to oldest first.
	Reverse bool
	// Limit caps the number of replies returned. 0 means the platform default.
	Limit int
	// Fields overrides the default reply field set.
	Fields []string
}

func replyParams(opts *ReplyOptions) url.Values {
	if opts == nil {
		opts = &ReplyOptions{}
	}
	fields := opts.Fields
	if len(fields) == 0 {
		fields = defaultReplyFields
	}

	params := url.Values{}
	params.Set("fields", strings.Join(fields, ","))
	if opts.Reverse {
		params.Set("reverse", "true")
	}
	if opts.Limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", opts.Limit))
	}
	return params
}

// GetReplies retrieves the direct replies to a post, newest first unless
// opts.Reverse is set.
func (c *Client) GetReplies(ctx context.Context, postID string, opts *ReplyOptions) ([]*types.Reply, error) {
	if postID == "" {
		return nil, &pkgerrs.ValidationError{Field: "post_id", Message: "post ID is required"}
	}

	var envelope listEnvelope[*types.Reply]
	if err := c.transport.Get(ctx, postID+"/replies", replyParams(opts), &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

// GetConversation retrieves the full reply tree under a root post,
// flattened in conversation order. Only valid for root posts; the platform
// rejects conversation lookups on replies.
func (c *Client) GetConversation(ctx context.Context, postID string, opts *ReplyOptions) ([]*types.Reply, error) {
	if postID == "" {
		return nil, &pkgerrs.ValidationError{Field: "post_id", Message: "post ID is required"}
	}

	var envelope listEnvelope[*types.Reply]
	if err := c.transport.Get(ctx, postID+"/conversation", replyParams(opts), &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

// GetUserReplies retrieves replies authored by a user, newest first.
func (c *Client) GetUserReplies(ctx context.Context, userID string, opts *ReplyOptions) ([]*types.Reply, error) {
	if userID == "" {
		return nil, &pkgerrs.ValidationError{Field: "user_id", Message: "user ID is required"}
	}

	var envelope listEnvelope[*types.Reply]
	if err := c.transport.Get(ctx, userID+"/replies", replyParams(opts), &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

// HideReply hides a reply to one of the authenticated user's posts.
// Hiding cascades to the reply's own subtree on the platform side.
func (c *Client) HideReply(ctx context.Context, replyID string) error {
	return c.manageReply(ctx, replyID, true)
}

// UnhideReply reverses HideReply.
func (c *Client) UnhideReply(ctx context.Context, replyID string) error {
	return c.manageReply(ctx, replyID, false)
}

func (c *Client) manageReply(ctx context.Context, replyID string, hide bool) error {
	if replyID == "" {
		return &pkgerrs.ValidationError{Field: "reply_id", Message: "reply ID is required"}
	}

	params := url.Values{}
	params.Set("hide", fmt.Sprintf("%t", hide))

	var resp successResponse
	if err := c.transport.Post(ctx, replyID+"/manage_reply", params, &resp); err != nil {
		return err
	}
	if c.config.Logger != nil {
		c.config.Logger.Info("updated reply visibility", "reply_id", replyID, "hidden", hide)
	}
	return nil
}
