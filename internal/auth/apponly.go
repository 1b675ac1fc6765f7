package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/AzureAD/microsoft-authentication-library-for-go/apps/confidential"
	"golang.org/x/oauth2"
)

// credentialClient is the part of confidential.Client used for the client
// credentials grant.
type credentialClient interface {
	AcquireTokenSilent(ctx context.Context, scopes []string, opts ...confidential.AcquireSilentOption) (confidential.AuthResult, error)
	AcquireTokenByCredential(ctx context.Context, scopes []string, opts ...confidential.AcquireByCredentialOption) (confidential.AuthResult, error)
}

type credentialFactory func(authority, clientID, secret string, httpClient *http.Client) (credentialClient, error)

func newConfidentialClient(authority, clientID, secret string, httpClient *http.Client) (credentialClient, error) {
	cred, err := confidential.NewCredFromSecret(secret)
	if err != nil {
		return nil, fmt.Errorf("creating client credential: %w", err)
	}
	var opts []confidential.Option
	if httpClient != nil {
		opts = append(opts, confidential.WithHTTPClient(httpClient))
	}
	client, err := confidential.New(authority, clientID, cred, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create MSAL client: %w", err)
	}
	return client, nil
}

func (a *Authenticator) appTokenSource(ctx context.Context, scopes []string) (oauth2.TokenSource, error) {
	client, err := a.newCred(a.Authority(), a.settings.ClientID, a.settings.ClientSecret, a.httpClient)
	if err != nil {
		return nil, err
	}
	return oauth2.ReuseTokenSource(nil, &msalTokenSource{
		ctx:    ctx,
		client: client,
		scopes: scopes,
		logger: a.logger,
	}), nil
}

// msalTokenSource adapts the MSAL confidential client to oauth2.TokenSource.
// MSAL keeps its own in-memory cache, so the silent call is tried first.
type msalTokenSource struct {
	ctx    context.Context
	client credentialClient
	scopes []string
	logger Logger
}

func (s *msalTokenSource) Token() (*oauth2.Token, error) {
	result, err := s.client.AcquireTokenSilent(s.ctx, s.scopes)
	if err != nil {
		s.logger.Debug("no cached app token, requesting a new one", "scope", s.scopes[0])
		result, err = s.client.AcquireTokenByCredential(s.ctx, s.scopes)
		if err != nil {
			return nil, fmt.Errorf("acquiring app-only token: %w", err)
		}
	}
	return &oauth2.Token{
		AccessToken: result.AccessToken,
		TokenType:   "Bearer",
		Expiry:      result.ExpiresOn,
	}, nil
}
