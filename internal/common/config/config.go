// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig                `mapstructure:"app"`
	Backend  BackendConfig            `mapstructure:"backend"`
	Session  SessionConfig            `mapstructure:"session"`
	Redis    RedisConfig              `mapstructure:"redis"`
	Cache    CacheConfig              `mapstructure:"cache"`
	Listings map[string]ListingConfig `mapstructure:"listings"`
	Logging  LoggingConfig            `mapstructure:"logging"`
	Metrics  MetricsConfig            `mapstructure:"metrics"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// BackendConfig describes the remote REST API the listings read from.
type BackendConfig struct {
	BaseURL   string  `mapstructure:"base_url"`
	Timeout   int     `mapstructure:"timeout"` // milliseconds
	RateLimit float64 `mapstructure:"rate_limit"`
	Burst     int     `mapstructure:"burst"`
	UserAgent string  `mapstructure:"user_agent"`
}

// GetTimeout returns the request timeout as a duration.
func (b BackendConfig) GetTimeout() time.Duration {
	return time.Duration(b.Timeout) * time.Millisecond
}

// SessionConfig selects where the bearer token comes from.
type SessionConfig struct {
	Source   string `mapstructure:"source"` // static | env | redis | oauth
	Token    string `mapstructure:"token"`
	EnvVar   string `mapstructure:"env_var"`
	RedisKey string `mapstructure:"redis_key"`
	UserID   string `mapstructure:"user_id"`

	// client credentials grant, used when source is oauth
	TokenURL     string   `mapstructure:"token_url"`
	ClientID     string   `mapstructure:"client_id"`
	ClientSecret string   `mapstructure:"client_secret"`
	Scopes       []string `mapstructure:"scopes"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CacheConfig controls the Redis page cache.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	TTL     int    `mapstructure:"ttl"` // seconds
	Prefix  string `mapstructure:"prefix"`
}

// GetTTL returns the cache TTL as a duration.
func (c CacheConfig) GetTTL() time.Duration {
	return time.Duration(c.TTL) * time.Second
}

// Pagination modes.
const (
	ModePageSwitch = "page-switch"
	ModeInfinite   = "infinite"
)

// ListingConfig holds the settings of one listing (offers, public offers, candidates).
type ListingConfig struct {
	Path          string   `mapstructure:"path"`
	Kind          string   `mapstructure:"kind"` // offers | candidates
	PerPage       int      `mapstructure:"per_page"`
	Mode          string   `mapstructure:"mode"`
	DebounceMS    int      `mapstructure:"debounce_ms"`
	ScrollMargin  int      `mapstructure:"scroll_margin"` // pixels
	ServerFilters []string `mapstructure:"server_filters"`
	Public        bool     `mapstructure:"public"`
	// ClientPaging pages locally over a collection the backend returns in one response.
	ClientPaging bool   `mapstructure:"client_paging"`
	SectorsPath  string `mapstructure:"sectors_path"`
	PaymentsPath string `mapstructure:"payments_path"` // fmt pattern taking the organization id
	// ApplyPath and ConsumePath enable the per-item actions of a listing.
	ApplyPath   string `mapstructure:"apply_path"`
	ConsumePath string `mapstructure:"consume_path"`
}

// GetDebounce returns the quiet window of the search buffer.
func (l ListingConfig) GetDebounce() time.Duration {
	return time.Duration(l.DebounceMS) * time.Millisecond
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MetricsConfig controls the prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// Listing returns the named listing config.
func (c *Config) Listing(name string) (ListingConfig, error) {
	l, ok := c.Listings[name]
	if !ok {
		return ListingConfig{}, fmt.Errorf("unknown listing %q", name)
	}
	return l, nil
}
