package session

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const tokenRequestTimeout = 30 * time.Second

// OAuthProvider obtains tokens with the client credentials grant (Keycloak,
// or any OpenID Connect token endpoint) and reuses them until they expire.
type OAuthProvider struct {
	cfg clientcredentials.Config

	mu     sync.Mutex
	cached *oauth2.Token
}

// NewOAuth builds a provider for the given token endpoint.
func NewOAuth(tokenURL, clientID, clientSecret string, scopes ...string) *OAuthProvider {
	return &OAuthProvider{
		cfg: clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			Scopes:       scopes,
		},
	}
}

func (p *OAuthProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached.Valid() {
		return p.cached.AccessToken, nil
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: tokenRequestTimeout})
	tok, err := p.cfg.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("token request to %s failed: %w", p.cfg.TokenURL, err)
	}
	p.cached = tok
	return tok.AccessToken, nil
}
