package internal

import (
	"errors"
	"strings"
	"testing"

	pkgerrs "github.com/jamesprial/go-threads-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-threads-api-wrapper/pkg/types"
)

func assertValidationField(t *testing.T, err error, field string) {
	t.Helper()
	var vErr *pkgerrs.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	if vErr.Field != field {
		t.Errorf("expected field %q, got %q", field, vErr.Field)
	}
}

func TestValidateText(t *testing.T) {
	v := NewValidator()

	if err := v.ValidateText(""); err != nil {
		t.Errorf("empty text should be valid: %v", err)
	}
	if err := v.ValidateText(strings.Repeat("a", MaxTextLength)); err != nil {
		t.Errorf("text at the limit should be valid: %v", err)
	}

	err := v.ValidateText(strings.Repeat("a", MaxTextLength+1))
	assertValidationField(t, err, "text")

	// The limit counts characters, not bytes.
	if err := v.ValidateText(strings.Repeat("é", MaxTextLength)); err != nil {
		t.Errorf("multibyte text at the limit should be valid: %v", err)
	}
}

func TestValidateMediaURL(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name      string
		url       string
		mediaType types.MediaType
		wantErr   bool
	}{
		{"valid jpg", "https://example.com/pic.jpg", types.MediaTypeImage, false},
		{"valid png uppercase", "https://example.com/PIC.PNG", types.MediaTypeImage, false},
		{"valid mp4", "https://example.com/clip.mp4", types.MediaTypeVideo, false},
		{"valid mov", "https://example.com/clip.mov", types.MediaTypeVideo, false},
		{"extensionless cdn url", "https://cdn.example.com/signed/abc123", types.MediaTypeImage, false},
		{"query string after extension", "https://example.com/pic.webp?sig=abc", types.MediaTypeImage, false},
		{"empty url", "", types.MediaTypeImage, true},
		{"relative url", "/pic.jpg", types.MediaTypeImage, true},
		{"ftp scheme", "ftp://example.com/pic.jpg", types.MediaTypeImage, true},
		{"wrong format for image", "https://example.com/clip.mp4", types.MediaTypeImage, true},
		{"wrong format for video", "https://example.com/pic.jpg", types.MediaTypeVideo, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateMediaURL(tt.url, tt.mediaType)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMediaURL(%q, %s) error = %v, wantErr %v", tt.url, tt.mediaType, err, tt.wantErr)
			}
		})
	}
}

func TestValidateMediaURL_FieldNames(t *testing.T) {
	v := NewValidator()

	assertValidationField(t, v.ValidateMediaURL("", types.MediaTypeImage), "image_url")
	assertValidationField(t, v.ValidateMediaURL("", types.MediaTypeVideo), "video_url")
}

func TestValidateCarouselCount(t *testing.T) {
	v := NewValidator()

	for _, n := range []int{MinCarouselItems, 5, MaxCarouselItems} {
		if err := v.ValidateCarouselCount(n); err != nil {
			t.Errorf("count %d should be valid: %v", n, err)
		}
	}
	for _, n := range []int{0, 1, MaxCarouselItems + 1, 20} {
		err := v.ValidateCarouselCount(n)
		assertValidationField(t, err, "media")
	}
}

func TestValidateReplyControl(t *testing.T) {
	v := NewValidator()

	if err := v.ValidateReplyControl(""); err != nil {
		t.Errorf("empty reply control should be valid: %v", err)
	}
	for _, rc := range []types.ReplyControl{
		types.ReplyControlEveryone,
		types.ReplyControlAccountsFollowed,
		types.ReplyControlMentionedOnly,
	} {
		if err := v.ValidateReplyControl(rc); err != nil {
			t.Errorf("%q should be valid: %v", rc, err)
		}
	}

	assertValidationField(t, v.ValidateReplyControl("friends_only"), "reply_control")
}

func TestValidateCountryCodes(t *testing.T) {
	v := NewValidator()

	if err := v.ValidateCountryCodes(nil); err != nil {
		t.Errorf("nil codes should be valid: %v", err)
	}
	if err := v.ValidateCountryCodes([]string{"US", "GB", "JP"}); err != nil {
		t.Errorf("valid codes rejected: %v", err)
	}

	for _, codes := range [][]string{{"usa"}, {"us"}, {"U1"}, {"US", ""}} {
		err := v.ValidateCountryCodes(codes)
		assertValidationField(t, err, "allowlisted_country_codes")
	}
}
