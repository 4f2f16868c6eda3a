// Package session supplies bearer tokens to the HTTP client. The listing
// engine never reads ambient storage itself; a Provider is injected.
package session

import (
	"context"
	"fmt"
	"os"
	"strings"

	"jobboard-listing/internal/common/cache"
	"jobboard-listing/internal/common/config"
)

// Provider returns the current session token, or "" when signed out.
type Provider interface {
	Token(ctx context.Context) (string, error)
}

// normalizeToken strips whitespace and stray quotes that cookie stores leave around tokens.
func normalizeToken(raw string) string {
	return strings.Trim(strings.TrimSpace(raw), `"'`)
}

// StaticProvider always returns the same token.
type StaticProvider struct {
	token string
}

func NewStatic(token string) *StaticProvider {
	return &StaticProvider{token: normalizeToken(token)}
}

func (p *StaticProvider) Token(context.Context) (string, error) {
	return p.token, nil
}

// EnvProvider reads the token from an environment variable on every call.
type EnvProvider struct {
	name string
}

func NewEnv(name string) *EnvProvider {
	return &EnvProvider{name: name}
}

func (p *EnvProvider) Token(context.Context) (string, error) {
	return normalizeToken(os.Getenv(p.name)), nil
}

// RedisProvider reads the token from a shared session store.
type RedisProvider struct {
	store *cache.RedisClient
	key   string
}

// NewRedis builds a provider for userID. keyPattern contains one %s for the user id.
func NewRedis(store *cache.RedisClient, keyPattern, userID string) *RedisProvider {
	key := keyPattern
	if strings.Contains(keyPattern, "%s") {
		key = fmt.Sprintf(keyPattern, userID)
	}
	return &RedisProvider{store: store, key: key}
}

func (p *RedisProvider) Token(ctx context.Context) (string, error) {
	val, found, err := p.store.Get(ctx, p.key)
	if err != nil {
		return "", fmt.Errorf("read session %s: %w", p.key, err)
	}
	if !found {
		return "", nil
	}
	return normalizeToken(string(val)), nil
}

// New selects a provider from configuration. store may be nil unless source is "redis".
func New(cfg config.SessionConfig, store *cache.RedisClient) (Provider, error) {
	switch cfg.Source {
	case "static":
		return NewStatic(cfg.Token), nil
	case "env", "":
		name := cfg.EnvVar
		if name == "" {
			name = "AUTH_TOKEN"
		}
		return NewEnv(name), nil
	case "redis":
		if store == nil {
			return nil, fmt.Errorf("redis session source requires a redis client")
		}
		if cfg.UserID == "" {
			return nil, fmt.Errorf("redis session source requires session.user_id")
		}
		return NewRedis(store, cfg.RedisKey, cfg.UserID), nil
	case "oauth":
		return NewOAuth(cfg.TokenURL, cfg.ClientID, cfg.ClientSecret, cfg.Scopes...), nil
	default:
		return nil, fmt.Errorf("unknown session source %q", cfg.Source)
	}
}
