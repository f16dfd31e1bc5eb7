package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	threads "github.com/jamesprial/go-threads-api-wrapper"
	"github.com/jamesprial/go-threads-api-wrapper/pkg/types"
)

func newPostCmd(a *app) *cobra.Command {
	var (
		text       string
		imageURL   string
		videoURL   string
		replyTo    string
		replyCtl   string
		checkQuota bool
	)

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Publish a text, image or video post",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &types.PublishRequest{
				UserID:       a.cfg.UserID,
				Text:         text,
				ReplyToID:    replyTo,
				ReplyControl: types.ReplyControl(replyCtl),
				CheckQuota:   checkQuota,
			}
			if imageURL != "" {
				req.Media = append(req.Media, types.MediaSpec{ImageURL: imageURL})
			}
			if videoURL != "" {
				req.Media = append(req.Media, types.MediaSpec{VideoURL: videoURL})
			}

			post, err := a.client.CreateAndPublish(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Println(post.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "post text")
	cmd.Flags().StringVar(&imageURL, "image", "", "image URL")
	cmd.Flags().StringVar(&videoURL, "video", "", "video URL")
	cmd.Flags().StringVar(&replyTo, "reply-to", "", "post ID to reply to")
	cmd.Flags().StringVar(&replyCtl, "reply-control", "", "who may reply: everyone, accounts_you_follow or mentioned_only")
	cmd.Flags().BoolVar(&checkQuota, "check-quota", false, "fail fast when the publishing quota is exhausted")
	return cmd
}

func newCarouselCmd(a *app) *cobra.Command {
	var (
		text   string
		images []string
		videos []string
	)

	cmd := &cobra.Command{
		Use:   "carousel",
		Short: "Publish a carousel of 2-10 media items",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &types.PublishRequest{UserID: a.cfg.UserID, Text: text}
			for _, u := range images {
				req.Media = append(req.Media, types.MediaSpec{ImageURL: u})
			}
			for _, u := range videos {
				req.Media = append(req.Media, types.MediaSpec{VideoURL: u})
			}

			post, err := a.client.CreateAndPublish(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Println(post.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "caption text")
	cmd.Flags().StringSliceVar(&images, "image", nil, "image URL, repeatable")
	cmd.Flags().StringSliceVar(&videos, "video", nil, "video URL, repeatable")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <post-id>",
		Short: "Delete a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.client.DeletePost(cmd.Context(), args[0])
		},
	}
}

func newProfileCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the authenticated user's profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := a.client.GetProfile(cmd.Context(), a.cfg.UserID)
			if err != nil {
				return err
			}
			fmt.Printf("%s\t@%s\t%s\n", profile.ID, profile.Username, profile.Name)
			if profile.Biography != "" {
				fmt.Println(profile.Biography)
			}
			return nil
		},
	}
}

func newPostsCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "posts",
		Short: "List the user's recent posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			posts, err := a.client.GetUserPosts(cmd.Context(), a.cfg.UserID, &threads.UserPostsOptions{Limit: limit})
			if err != nil {
				return err
			}
			for _, p := range posts {
				text := strings.ReplaceAll(p.Text, "\n", " ")
				fmt.Printf("%s\t%s\t%s\n", p.ID, p.Timestamp, text)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 25, "maximum posts to list")
	return cmd
}

func newRepliesCmd(a *app) *cobra.Command {
	var hide, unhide string

	cmd := &cobra.Command{
		Use:   "replies <post-id>",
		Short: "List replies to a post, or moderate one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if hide != "" {
				return a.client.HideReply(cmd.Context(), hide)
			}
			if unhide != "" {
				return a.client.UnhideReply(cmd.Context(), unhide)
			}
			if len(args) == 0 {
				return fmt.Errorf("a post ID is required to list replies")
			}

			replies, err := a.client.GetReplies(cmd.Context(), args[0], nil)
			if err != nil {
				return err
			}
			for _, r := range replies {
				text := strings.ReplaceAll(r.Text, "\n", " ")
				fmt.Printf("%s\t@%s\t%s\n", r.ID, r.Username, text)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&hide, "hide", "", "hide the reply with this ID")
	cmd.Flags().StringVar(&unhide, "unhide", "", "unhide the reply with this ID")
	return cmd
}

func newLimitsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "limits",
		Short: "Show rolling 24-hour publishing quota usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, err := a.client.GetPublishingLimit(cmd.Context(), a.cfg.UserID)
			if err != nil {
				return err
			}
			fmt.Printf("posts:   %d/%d (%d remaining)\n", limit.QuotaUsage, limit.QuotaTotal, limit.RemainingPosts())
			fmt.Printf("replies: %d/%d (%d remaining)\n", limit.ReplyQuotaUsage, limit.ReplyQuotaTotal, limit.RemainingReplies())
			return nil
		},
	}
}

func newInsightsCmd(a *app) *cobra.Command {
	var postID string

	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Show insights for the user or a single post",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				resp *types.InsightsResponse
				err  error
			)
			if postID != "" {
				resp, err = a.client.GetPostInsights(cmd.Context(), postID)
			} else {
				resp, err = a.client.GetUserInsights(cmd.Context(), a.cfg.UserID, nil)
			}
			if err != nil {
				return err
			}
			for _, in := range resp.Data {
				fmt.Printf("%s\t%d\n", in.Name, in.Value())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&postID, "post", "", "post ID for post-level insights")
	return cmd
}
