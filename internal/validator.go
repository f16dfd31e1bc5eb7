package internal

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	pkgerrs "github.com/jamesprial/go-threads-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-threads-api-wrapper/pkg/types"
)

const (
	// MaxTextLength is the platform's character limit for post text.
	MaxTextLength = 500

	// Carousel child count bounds, platform-enforced.
	MinCarouselItems = 2
	MaxCarouselItems = 10
)

var (
	supportedImageFormats = map[string]bool{"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true}
	supportedVideoFormats = map[string]bool{"mp4": true, "mov": true}

	validReplyControls = map[types.ReplyControl]bool{
		types.ReplyControlEveryone:         true,
		types.ReplyControlAccountsFollowed: true,
		types.ReplyControlMentionedOnly:    true,
	}
)

// Validator provides pre-flight validation for publish parameters.
// Every check here runs before any network call, so malformed input fails
// fast with a ValidationError naming the offending field.
type Validator struct{}

// NewValidator creates a new Validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateText checks the post text against the platform length limit.
// Empty text is valid; media-only posts carry no text.
func (v *Validator) ValidateText(text string) error {
	if n := len([]rune(text)); n > MaxTextLength {
		return &pkgerrs.ValidationError{
			Field:   "text",
			Message: fmt.Sprintf("text exceeds maximum length of %d characters (got %d)", MaxTextLength, n),
		}
	}
	return nil
}

// ValidateMediaURL checks that a media URL is absolute, uses http or https
// and, when the path carries a file extension, that the extension matches
// a format the platform accepts for the media type.
func (v *Validator) ValidateMediaURL(rawURL string, mediaType types.MediaType) error {
	field := "image_url"
	if mediaType == types.MediaTypeVideo {
		field = "video_url"
	}

	if rawURL == "" {
		return &pkgerrs.ValidationError{Field: field, Message: fmt.Sprintf("URL is required for %s posts", mediaType)}
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return &pkgerrs.ValidationError{Field: field, Message: "invalid URL format: " + rawURL}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return &pkgerrs.ValidationError{Field: field, Message: "URL must use http or https scheme: " + rawURL}
	}

	ext := strings.ToLower(strings.TrimPrefix(path.Ext(parsed.Path), "."))
	if ext == "" {
		// Extension-less URLs are common for signed/CDN links; the platform
		// decides based on content.
		return nil
	}

	switch mediaType {
	case types.MediaTypeImage:
		if !supportedImageFormats[ext] {
			return &pkgerrs.ValidationError{Field: field, Message: "unsupported image format: " + ext}
		}
	case types.MediaTypeVideo:
		if !supportedVideoFormats[ext] {
			return &pkgerrs.ValidationError{Field: field, Message: "unsupported video format: " + ext}
		}
	}
	return nil
}

// ValidateCarouselCount checks the child count against the platform bound.
func (v *Validator) ValidateCarouselCount(n int) error {
	if n < MinCarouselItems {
		return &pkgerrs.ValidationError{
			Field:   "media",
			Message: fmt.Sprintf("carousel requires at least %d items (got %d)", MinCarouselItems, n),
		}
	}
	if n > MaxCarouselItems {
		return &pkgerrs.ValidationError{
			Field:   "media",
			Message: fmt.Sprintf("carousel cannot have more than %d items (got %d)", MaxCarouselItems, n),
		}
	}
	return nil
}

// ValidateReplyControl checks the reply control value. Empty means the
// platform default and is valid.
func (v *Validator) ValidateReplyControl(rc types.ReplyControl) error {
	if rc == "" {
		return nil
	}
	if !validReplyControls[rc] {
		return &pkgerrs.ValidationError{Field: "reply_control", Message: "invalid reply_control value: " + string(rc)}
	}
	return nil
}

// ValidateCountryCodes checks ISO 3166-1 alpha-2 codes for geo-gating.
func (v *Validator) ValidateCountryCodes(codes []string) error {
	for _, code := range codes {
		if len(code) != 2 || !isUpperAlpha(code) {
			return &pkgerrs.ValidationError{
				Field:   "allowlisted_country_codes",
				Message: fmt.Sprintf("invalid ISO country code %q: must be a 2-letter uppercase code", code),
			}
		}
	}
	return nil
}

func isUpperAlpha(s string) bool {
	for _, ch := range s {
		if ch < 'A' || ch > 'Z' {
			return false
		}
	}
	return true
}
