package threads

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	pkgerrs "github.com/jamesprial/go-threads-api-wrapper/pkg/errors"
)

func TestNewClient_RequiresAccessToken(t *testing.T) {
	var cfgErr *pkgerrs.ConfigError

	if _, err := NewClient(nil); !errors.As(err, &cfgErr) {
		t.Errorf("nil config: expected ConfigError, got %v", err)
	}
	if _, err := NewClient(&Config{}); !errors.As(err, &cfgErr) {
		t.Errorf("missing token: expected ConfigError, got %v", err)
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := NewClient(&Config{AccessToken: "token"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	if c.config.BaseURL != DefaultBaseURL {
		t.Errorf("expected default base URL, got %q", c.config.BaseURL)
	}
	if c.config.UserAgent != DefaultUserAgent {
		t.Errorf("expected default user agent, got %q", c.config.UserAgent)
	}
	if c.config.HTTPClient == nil {
		t.Error("expected default HTTP client")
	}
	if c.config.PollInterval <= 0 || c.config.MaxWait <= 0 {
		t.Error("expected polling defaults to be set")
	}
}

func TestGetPost(t *testing.T) {
	ft := &fakeTransport{}
	ft.handle = func(method, path string, params url.Values, v any) error {
		if method != "GET" || path != "post1" {
			t.Errorf("unexpected call %s %s", method, path)
			return notFound
		}
		fields := params.Get("fields")
		for _, want := range []string{"id", "text", "media_type", "permalink", "children"} {
			if !strings.Contains(fields, want) {
				t.Errorf("default fields missing %q: %s", want, fields)
			}
		}
		return respond(t, v, `{"id":"post1","text":"hi","media_type":"TEXT_POST","username":"alice"}`)
	}

	c := newTestClient(t, ft)
	post, err := c.GetPost(context.Background(), "post1")
	if err != nil {
		t.Fatalf("GetPost returned error: %v", err)
	}
	if post.ID != "post1" || post.Username != "alice" {
		t.Errorf("unexpected post: %+v", post)
	}
}

func TestGetPost_CustomFields(t *testing.T) {
	ft := &fakeTransport{}
	ft.handle = func(method, path string, params url.Values, v any) error {
		if got := params.Get("fields"); got != "id,text" {
			t.Errorf("expected fields id,text, got %q", got)
		}
		return respond(t, v, `{"id":"post1","text":"hi"}`)
	}

	c := newTestClient(t, ft)
	if _, err := c.GetPost(context.Background(), "post1", "id", "text"); err != nil {
		t.Fatalf("GetPost returned error: %v", err)
	}
}

func TestGetUserPosts(t *testing.T) {
	ft := &fakeTransport{}
	ft.handle = func(method, path string, params url.Values, v any) error {
		if method != "GET" || path != "user1/threads" {
			t.Errorf("unexpected call %s %s", method, path)
			return notFound
		}
		if got := params.Get("limit"); got != "5" {
			t.Errorf("expected limit 5, got %q", got)
		}
		if got := params.Get("since"); got != "1756000000" {
			t.Errorf("expected since to pass through, got %q", got)
		}
		return respond(t, v, `{"data":[{"id":"p1"},{"id":"p2"}]}`)
	}

	c := newTestClient(t, ft)
	posts, err := c.GetUserPosts(context.Background(), "user1", &UserPostsOptions{Limit: 5, Since: "1756000000"})
	if err != nil {
		t.Fatalf("GetUserPosts returned error: %v", err)
	}
	if len(posts) != 2 || posts[0].ID != "p1" || posts[1].ID != "p2" {
		t.Errorf("unexpected posts: %+v", posts)
	}
}

func TestGetProfile(t *testing.T) {
	ft := &fakeTransport{}
	ft.handle = func(method, path string, params url.Values, v any) error {
		if path != "me" {
			t.Errorf("expected path me, got %q", path)
		}
		return respond(t, v, `{"id":"user1","username":"alice","threads_biography":"hello"}`)
	}

	c := newTestClient(t, ft)
	profile, err := c.GetMe(context.Background())
	if err != nil {
		t.Fatalf("GetMe returned error: %v", err)
	}
	if profile.Username != "alice" || profile.Biography != "hello" {
		t.Errorf("unexpected profile: %+v", profile)
	}
}

func TestDeletePost(t *testing.T) {
	ft := &fakeTransport{}
	ft.handle = func(method, path string, params url.Values, v any) error {
		if method != "DELETE" || path != "post1" {
			t.Errorf("unexpected call %s %s", method, path)
			return notFound
		}
		return respond(t, v, `{"success":true}`)
	}

	c := newTestClient(t, ft)
	if err := c.DeletePost(context.Background(), "post1"); err != nil {
		t.Fatalf("DeletePost returned error: %v", err)
	}
}

func TestReadOperations_RequireIDs(t *testing.T) {
	c := newTestClient(t, &fakeTransport{handle: func(method, path string, params url.Values, v any) error {
		t.Errorf("no network call expected, got %s %s", method, path)
		return notFound
	}})

	var vErr *pkgerrs.ValidationError
	if _, err := c.GetPost(context.Background(), ""); !errors.As(err, &vErr) {
		t.Errorf("GetPost: expected ValidationError, got %v", err)
	}
	if _, err := c.GetUserPosts(context.Background(), "", nil); !errors.As(err, &vErr) {
		t.Errorf("GetUserPosts: expected ValidationError, got %v", err)
	}
	if _, err := c.GetProfile(context.Background(), ""); !errors.As(err, &vErr) {
		t.Errorf("GetProfile: expected ValidationError, got %v", err)
	}
	if err := c.DeletePost(context.Background(), ""); !errors.As(err, &vErr) {
		t.Errorf("DeletePost: expected ValidationError, got %v", err)
	}
}
