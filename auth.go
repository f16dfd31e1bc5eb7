package threads

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	pkgerrs "github.com/jamesprial/go-threads-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-threads-api-wrapper/pkg/types"
)

const (
	// DefaultAuthBaseURL hosts the user-facing authorization page.
	DefaultAuthBaseURL = "https://threads.net"
	// DefaultTokenBaseURL hosts the token exchange and refresh endpoints.
	DefaultTokenBaseURL = "https://graph.threads.net"
)

// OAuthConfig holds the app credentials for the authorization code flow.
type OAuthConfig struct {
	// ClientID is the Threads app ID. Required.
	ClientID string
	// ClientSecret is the Threads app secret. Required.
	ClientSecret string
	// RedirectURI must exactly match one registered on the app. Required.
	RedirectURI string
	// Scopes defaults to ScopeBasic when empty.
	Scopes []types.Scope

	// AuthBaseURL and TokenBaseURL override the platform endpoints,
	// which tests point at a local server. Optional.
	AuthBaseURL  string
	TokenBaseURL string

	// HTTPClient used for token requests. Optional.
	HTTPClient *http.Client
	// Logger receives token lifecycle events. Optional.
	Logger *slog.Logger
}

// OAuthClient implements the three-legged flow: authorization URL, code
// exchange for a short-lived token, and exchange/refresh of long-lived
// tokens. It is independent of Client; pass the resulting access token to
// NewClient.
type OAuthClient struct {
	config *OAuthConfig
	oauth  *oauth2.Config
	client *http.Client
	logger *slog.Logger
}

// NewOAuthClient validates the app credentials and returns an OAuthClient.
func NewOAuthClient(config *OAuthConfig) (*OAuthClient, error) {
	if config == nil {
		return nil, &pkgerrs.ConfigError{Message: "config cannot be nil"}
	}
	if config.ClientID == "" {
		return nil, &pkgerrs.ConfigError{Field: "ClientID", Message: "client ID is required"}
	}
	if config.ClientSecret == "" {
		return nil, &pkgerrs.ConfigError{Field: "ClientSecret", Message: "client secret is required"}
	}
	if config.RedirectURI == "" {
		return nil, &pkgerrs.ConfigError{Field: "RedirectURI", Message: "redirect URI is required"}
	}

	if config.AuthBaseURL == "" {
		config.AuthBaseURL = DefaultAuthBaseURL
	}
	if config.TokenBaseURL == "" {
		config.TokenBaseURL = DefaultTokenBaseURL
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}

	scopes := config.Scopes
	if len(scopes) == 0 {
		scopes = []types.Scope{types.ScopeBasic}
	}
	scopeStrings := make([]string, len(scopes))
	for i, s := range scopes {
		scopeStrings[i] = string(s)
	}

	return &OAuthClient{
		config: config,
		oauth: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURI,
			Scopes:       scopeStrings,
			Endpoint: oauth2.Endpoint{
				AuthURL:   strings.TrimSuffix(config.AuthBaseURL, "/") + "/oauth/authorize",
				TokenURL:  strings.TrimSuffix(config.TokenBaseURL, "/") + "/oauth/access_token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		client: config.HTTPClient,
		logger: config.Logger,
	}, nil
}

// NewState returns a random state value for CSRF protection of the
// authorization redirect.
func NewState() string {
	return uuid.NewString()
}

// AuthorizationURL builds the URL to send the user to. The state value
// must be verified against the redirect callback; use NewState to mint one.
//
// The platform deviates from the OAuth spec in comma-joining scopes, so
// the scope parameter is rewritten after the standard construction.
func (a *OAuthClient) AuthorizationURL(state string) string {
	raw := a.oauth.AuthCodeURL(state)

	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set("scope", strings.Join(a.oauth.Scopes, ","))
	u.RawQuery = q.Encode()
	return u.String()
}

// ExchangeCode trades an authorization code from the redirect callback for
// a short-lived access token, valid for about an hour.
func (a *OAuthClient) ExchangeCode(ctx context.Context, code string) (types.ShortLivedToken, error) {
	if code == "" {
		return types.ShortLivedToken{}, &pkgerrs.ValidationError{Field: "code", Message: "authorization code is required"}
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.client)
	token, err := a.oauth.Exchange(ctx, code)
	if err != nil {
		return types.ShortLivedToken{}, &pkgerrs.AuthError{APIError: pkgerrs.APIError{
			Message: fmt.Sprintf("code exchange failed: %v", err),
		}}
	}

	short := types.ShortLivedToken{AccessToken: token.AccessToken}
	// The platform returns user_id alongside the token; the type varies
	// between a JSON number and a string depending on the endpoint.
	switch id := token.Extra("user_id").(type) {
	case string:
		short.UserID = id
	case float64:
		short.UserID = fmt.Sprintf("%.0f", id)
	}

	if a.logger != nil {
		a.logger.Info("exchanged authorization code", "user_id", short.UserID)
	}
	return short, nil
}

// ExchangeForLongLivedToken trades a short-lived token for a long-lived
// one, valid for about 60 days. The short-lived token must still be valid.
func (a *OAuthClient) ExchangeForLongLivedToken(ctx context.Context, shortLivedToken string) (types.LongLivedToken, error) {
	if shortLivedToken == "" {
		return types.LongLivedToken{}, &pkgerrs.ValidationError{Field: "access_token", Message: "short-lived token is required"}
	}

	params := url.Values{}
	params.Set("grant_type", "th_exchange_token")
	params.Set("client_secret", a.config.ClientSecret)
	params.Set("access_token", shortLivedToken)

	return a.tokenRequest(ctx, "access_token", params)
}

// RefreshToken extends a long-lived token for another 60-day window. The
// token must be at least 24 hours old and not yet expired.
func (a *OAuthClient) RefreshToken(ctx context.Context, longLivedToken string) (types.LongLivedToken, error) {
	if longLivedToken == "" {
		return types.LongLivedToken{}, &pkgerrs.ValidationError{Field: "access_token", Message: "long-lived token is required"}
	}

	params := url.Values{}
	params.Set("grant_type", "th_refresh_token")
	params.Set("access_token", longLivedToken)

	return a.tokenRequest(ctx, "refresh_access_token", params)
}

func (a *OAuthClient) tokenRequest(ctx context.Context, path string, params url.Values) (types.LongLivedToken, error) {
	endpoint := strings.TrimSuffix(a.config.TokenBaseURL, "/") + "/" + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return types.LongLivedToken{}, &pkgerrs.RequestError{Operation: "GET " + path, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return types.LongLivedToken{}, &pkgerrs.RequestError{Operation: "GET " + path, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.LongLivedToken{}, &pkgerrs.RequestError{Operation: "GET " + path, URL: endpoint, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return types.LongLivedToken{}, &pkgerrs.AuthError{APIError: pkgerrs.APIError{
			StatusCode: resp.StatusCode,
			Message:    msg,
		}}
	}

	var token types.LongLivedToken
	if err := json.Unmarshal(body, &token); err != nil {
		return types.LongLivedToken{}, &pkgerrs.RequestError{
			Operation: "GET " + path,
			URL:       endpoint,
			Err:       fmt.Errorf("failed to decode token response: %w", err),
		}
	}
	token.ObtainedAt = time.Now()

	if a.logger != nil {
		a.logger.Info("obtained long-lived token", "expires_in", token.ExpiresIn)
	}
	return token, nil
}
