package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dheniges/pnp-client/pkg/transport"
	"golang.org/x/oauth2"
)

// scopedRefresher redeems a refresh token for a specific resource. The
// oauth2 package's own refresher never sends a scope, which makes the
// identity platform answer with a token for the login resource instead.
type scopedRefresher struct {
	ctx      context.Context
	client   *http.Client
	tokenURL string
	clientID string
	scopes   []string

	mu           sync.Mutex
	refreshToken string
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	RefreshToken     string `json:"refresh_token"`
	ExpiresIn        int64  `json:"expires_in"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (r *scopedRefresher) Token() (*oauth2.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	form := url.Values{
		"client_id":     {r.clientID},
		"grant_type":    {"refresh_token"},
		"refresh_token": {r.refreshToken},
		"scope":         {strings.Join(r.scopes, " ")},
	}
	req, err := http.NewRequestWithContext(r.ctx, http.MethodPost, r.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	res, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: refreshing token: %w", transport.ErrNetwork, err)
	}
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading token response: %w", err)
	}
	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("decoding token response (HTTP %d): %w", res.StatusCode, err)
	}
	if tr.Error != "" {
		if tr.Error == "invalid_grant" || tr.Error == "interaction_required" {
			return nil, fmt.Errorf("%w: %s: %s", transport.ErrReauthRequired, tr.Error, tr.ErrorDescription)
		}
		return nil, fmt.Errorf("oauth authentication error '%s': %s", tr.Error, tr.ErrorDescription)
	}
	if res.StatusCode != http.StatusOK || tr.AccessToken == "" {
		return nil, fmt.Errorf("token endpoint returned HTTP %d without an access token", res.StatusCode)
	}

	if tr.RefreshToken != "" {
		r.refreshToken = tr.RefreshToken
	}
	tok := &oauth2.Token{
		AccessToken:  tr.AccessToken,
		TokenType:    tr.TokenType,
		RefreshToken: r.refreshToken,
	}
	if tr.ExpiresIn > 0 {
		tok.Expiry = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	return tok, nil
}
