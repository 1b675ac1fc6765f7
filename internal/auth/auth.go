// Package auth obtains Microsoft identity platform tokens for the pnp CLI.
//
// Delegated logins (device code or browser with PKCE) store a single refresh
// token in a config.TokenStore. That refresh token is then redeemed per
// resource, so one login serves both Microsoft Graph and any SharePoint host
// in the tenant. When a client secret is configured the client credentials
// grant is used instead and nothing is persisted.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dheniges/pnp-client/internal/config"
	"github.com/dheniges/pnp-client/pkg/transport"
	"golang.org/x/oauth2"
)

// DefaultAuthorityHost is the public cloud login endpoint.
const DefaultAuthorityHost = "https://login.microsoftonline.com"

const graphResource = "https://graph.microsoft.com"

// ErrNotLoggedIn is returned by Status when no token is stored.
var ErrNotLoggedIn = errors.New("not logged in")

// Logger is the subset of internal/logger.Logger used here.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Settings identify the application and tenant.
type Settings struct {
	Tenant       string
	ClientID     string
	ClientSecret string
	// AuthorityHost overrides DefaultAuthorityHost.
	AuthorityHost string
}

// Authenticator runs login flows and hands out token sources.
type Authenticator struct {
	settings   Settings
	store      *config.TokenStore
	logger     Logger
	httpClient *http.Client
	newCred    credentialFactory
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(a *Authenticator) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithHTTPClient sets the client used to talk to the token endpoints.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Authenticator) { a.httpClient = c }
}

// New returns an Authenticator that persists delegated tokens in store.
func New(settings Settings, store *config.TokenStore, opts ...Option) *Authenticator {
	if settings.Tenant == "" {
		settings.Tenant = config.DefaultTenant
	}
	if settings.ClientID == "" {
		settings.ClientID = config.DefaultClientID
	}
	if settings.AuthorityHost == "" {
		settings.AuthorityHost = DefaultAuthorityHost
	}
	a := &Authenticator{
		settings: settings,
		store:    store,
		logger:   noopLogger{},
		newCred:  newConfidentialClient,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AppOnly reports whether the client credentials grant is in use.
func (a *Authenticator) AppOnly() bool {
	return a.settings.ClientSecret != ""
}

// Authority returns the tenant authority URL.
func (a *Authenticator) Authority() string {
	return strings.TrimSuffix(a.settings.AuthorityHost, "/") + "/" + a.settings.Tenant
}

// Endpoint returns the v2.0 OAuth endpoints for the tenant.
func (a *Authenticator) Endpoint() oauth2.Endpoint {
	base := a.Authority() + "/oauth2/v2.0"
	return oauth2.Endpoint{
		AuthURL:       base + "/authorize",
		TokenURL:      base + "/token",
		DeviceAuthURL: base + "/devicecode",
		AuthStyle:     oauth2.AuthStyleInParams,
	}
}

// ResourceScopes returns the .default scope for the origin of resourceURL,
// e.g. https://contoso.sharepoint.com/.default for any URL on that host.
func ResourceScopes(resourceURL string) ([]string, error) {
	u, err := url.Parse(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("parsing resource URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("resource URL %q is not absolute", resourceURL)
	}
	return []string{u.Scheme + "://" + u.Host + "/.default"}, nil
}

func delegated(scopes []string) []string {
	return append(append([]string{}, scopes...), "offline_access")
}

func (a *Authenticator) oauthConfig(scopes []string, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:    a.settings.ClientID,
		Endpoint:    a.Endpoint(),
		Scopes:      scopes,
		RedirectURL: redirectURL,
	}
}

func (a *Authenticator) context(ctx context.Context) context.Context {
	if a.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
}

// loginScopes asks for Graph at login; SharePoint is redeemed later with
// the same refresh token.
func (a *Authenticator) loginScopes() []string {
	return delegated([]string{graphResource + "/.default"})
}

func (a *Authenticator) save(tok *oauth2.Token) (*oauth2.Token, error) {
	ensureExpiry(tok)
	if err := a.store.Save(tok); err != nil {
		return nil, fmt.Errorf("saving token: %w", err)
	}
	return tok, nil
}

// ensureExpiry fills Expiry from expires_in when the token endpoint response
// did not populate it. Token sources never refresh a token without one.
func ensureExpiry(tok *oauth2.Token) {
	if !tok.Expiry.IsZero() {
		return
	}
	if tok.ExpiresIn > 0 {
		tok.Expiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
		return
	}
	switch v := tok.Extra("expires_in").(type) {
	case float64:
		tok.Expiry = time.Now().Add(time.Duration(v) * time.Second)
	case string:
		if d, err := time.ParseDuration(v + "s"); err == nil {
			tok.Expiry = time.Now().Add(d)
		}
	}
}

// Logout removes the stored token.
func (a *Authenticator) Logout() error {
	if err := a.store.Delete(); err != nil {
		return fmt.Errorf("clearing token: %w", err)
	}
	return nil
}

// Status returns the stored token or ErrNotLoggedIn.
func (a *Authenticator) Status() (*oauth2.Token, error) {
	tok, err := a.store.Load()
	if err != nil {
		return nil, err
	}
	if tok == nil || (tok.RefreshToken == "" && tok.AccessToken == "") {
		return nil, ErrNotLoggedIn
	}
	return tok, nil
}

// TokenSource returns a source of access tokens for the host of resourceURL.
// Delegated sources return transport.ErrReauthRequired when nobody is logged
// in.
func (a *Authenticator) TokenSource(ctx context.Context, resourceURL string) (oauth2.TokenSource, error) {
	scopes, err := ResourceScopes(resourceURL)
	if err != nil {
		return nil, err
	}
	if a.AppOnly() {
		return a.appTokenSource(ctx, scopes)
	}

	stored, err := a.store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading token: %w", err)
	}
	if stored == nil || stored.RefreshToken == "" {
		return nil, transport.ErrReauthRequired
	}

	if strings.EqualFold(scopes[0], graphResource+"/.default") {
		base := a.oauthConfig(a.loginScopes(), "").TokenSource(a.context(ctx), stored)
		return newPersistingTokenSource(base, stored, func(tok *oauth2.Token) error {
			a.logger.Debug("persisting refreshed token", "resource", scopes[0])
			return a.store.Save(tok)
		}, a.logger), nil
	}

	// The stored access token only belongs to the login resource. Every other
	// resource starts from the refresh token alone.
	client := a.httpClient
	if client == nil {
		client = http.DefaultClient
	}
	refresher := &scopedRefresher{
		ctx:          ctx,
		client:       client,
		tokenURL:     a.Endpoint().TokenURL,
		clientID:     a.settings.ClientID,
		scopes:       delegated(scopes),
		refreshToken: stored.RefreshToken,
	}
	return newPersistingTokenSource(oauth2.ReuseTokenSource(nil, refresher), nil, func(tok *oauth2.Token) error {
		if tok.RefreshToken == "" || tok.RefreshToken == stored.RefreshToken {
			return nil
		}
		// Keep the login access token; only the refresh token rotates.
		merged := *stored
		merged.RefreshToken = tok.RefreshToken
		a.logger.Debug("persisting rotated refresh token", "resource", scopes[0])
		return a.store.Save(&merged)
	}, a.logger), nil
}
