package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	cv "github.com/nirasan/go-oauth-pkce-code-verifier"
	"github.com/pkg/browser"
	"golang.org/x/oauth2"
)

// ErrLoginTimeout is returned when the browser never calls back.
var ErrLoginTimeout = errors.New("timed out waiting for the browser login")

const browserLoginTimeout = 5 * time.Minute

// DeviceLogin runs the device authorization grant. prompt receives the user
// code and verification URI; the call then blocks until the user finishes,
// declines, or the code expires.
func (a *Authenticator) DeviceLogin(ctx context.Context, prompt func(*oauth2.DeviceAuthResponse)) (*oauth2.Token, error) {
	if a.AppOnly() {
		return nil, errors.New("device login is not available with a client secret configured")
	}
	ctx = a.context(ctx)
	cfg := a.oauthConfig(a.loginScopes(), "")

	resp, err := cfg.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("requesting device code: %w", err)
	}
	a.logger.Debug("device code issued", "verification_uri", resp.VerificationURI, "expires", resp.Expiry)
	if prompt != nil {
		prompt(resp)
	}

	tok, err := cfg.DeviceAccessToken(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("waiting for device login: %w", err)
	}
	return a.save(tok)
}

// Opener opens a URL for the user, normally in the system browser.
type Opener func(url string) error

// BrowserLogin runs the authorization code grant with PKCE against a loopback
// redirect. open defaults to browser.OpenURL; its failure is not fatal since
// the URL is also passed to notify.
func (a *Authenticator) BrowserLogin(ctx context.Context, open Opener, notify func(authURL string)) (*oauth2.Token, error) {
	if a.AppOnly() {
		return nil, errors.New("browser login is not available with a client secret configured")
	}
	if open == nil {
		open = browser.OpenURL
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("starting loopback listener: %w", err)
	}
	defer func() { _ = listener.Close() }()
	redirect := fmt.Sprintf("http://localhost:%d", listener.Addr().(*net.TCPAddr).Port)

	verifier, err := cv.CreateCodeVerifier()
	if err != nil {
		return nil, fmt.Errorf("could not create PKCE code verifier: %w", err)
	}
	state, err := cv.CreateCodeVerifier()
	if err != nil {
		return nil, fmt.Errorf("could not create state: %w", err)
	}

	cfg := a.oauthConfig(a.loginScopes(), redirect)
	authURL := cfg.AuthCodeURL(state.String(),
		oauth2.SetAuthURLParam("code_challenge", verifier.CodeChallengeS256()),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)

	codes := make(chan string, 1)
	errs := make(chan error, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		code, err := ParseRedirect(r.URL, state.String())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			select {
			case errs <- err:
			default:
			}
			return
		}
		_, _ = fmt.Fprintln(w, "Login complete. You can close this window.")
		select {
		case codes <- code:
		default:
		}
	})
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case errs <- err:
			default:
			}
		}
	}()
	defer func() { _ = server.Close() }()

	if notify != nil {
		notify(authURL)
	}
	if err := open(authURL); err != nil {
		a.logger.Warn("could not open browser", "error", err)
	}

	var code string
	select {
	case code = <-codes:
	case err := <-errs:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(browserLoginTimeout):
		return nil, ErrLoginTimeout
	}

	tok, err := cfg.Exchange(a.context(ctx), code, oauth2.SetAuthURLParam("code_verifier", verifier.String()))
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}
	return a.save(tok)
}

// ParseRedirect extracts the authorization code from a redirect URL. An
// error parameter from the authorization server is returned as an error, as
// is a state mismatch when wantState is set.
func ParseRedirect(u *url.URL, wantState string) (string, error) {
	q := u.Query()
	if q.Has("error") {
		if q.Has("error_description") {
			return "", fmt.Errorf("oauth authorization failed: %v: %v", q.Get("error"), q.Get("error_description"))
		}
		return "", fmt.Errorf("oauth authorization failed: %v", q.Get("error"))
	}
	if wantState != "" && q.Get("state") != wantState {
		return "", errors.New("oauth authorization failed: state mismatch")
	}
	if !q.Has("code") {
		return "", fmt.Errorf("couldn't parse code in callback: %v", q.Encode())
	}
	return q.Get("code"), nil
}
