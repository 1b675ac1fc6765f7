package auth

import (
	"sync"

	"golang.org/x/oauth2"
)

// persistingTokenSource wraps an oauth2.TokenSource and calls onNewToken
// whenever the underlying source hands out a refreshed token.
type persistingTokenSource struct {
	base       oauth2.TokenSource
	mu         sync.Mutex
	lastToken  *oauth2.Token
	onNewToken func(token *oauth2.Token) error
	logger     Logger
}

func newPersistingTokenSource(base oauth2.TokenSource, initialToken *oauth2.Token, onNew func(token *oauth2.Token) error, logger Logger) *persistingTokenSource {
	if logger == nil {
		logger = noopLogger{}
	}
	return &persistingTokenSource{
		base:       base,
		lastToken:  initialToken,
		onNewToken: onNew,
		logger:     logger,
	}
}

// Token returns a token from the underlying source. A failed save is logged
// and the token is still returned; it stays valid in memory.
func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	newToken, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	if s.lastToken == nil || s.lastToken.AccessToken != newToken.AccessToken {
		s.lastToken = newToken
		if s.onNewToken != nil {
			if err := s.onNewToken(newToken); err != nil {
				s.logger.Warn("could not persist refreshed token", "error", err)
			}
		}
	}

	return newToken, nil
}
