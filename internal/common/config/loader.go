// internal/common/config/loader.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top,
// applies environment overrides and defaults, then validates.
func Load(searchPaths ...string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(searchPaths) == 0 {
		searchPaths = []string{"./configs", "../../configs", "."}
	}
	for _, p := range searchPaths {
		v.AddConfigPath(p)
	}

	// BACKEND_BASE_URL overrides backend.base_url, and so on.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = env
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// bindEnv registers keys that AutomaticEnv cannot discover on its own
// because they are absent from the yaml files.
func bindEnv(v *viper.Viper) {
	for _, key := range []string{
		"backend.base_url",
		"backend.timeout",
		"session.source",
		"session.token",
		"session.user_id",
		"session.token_url",
		"session.client_id",
		"session.client_secret",
		"redis.address",
		"redis.password",
		"logging.level",
		"metrics.enabled",
	} {
		_ = v.BindEnv(key)
	}
}

func loadEnvFile() {
	candidates := []string{".env", "../.env", "../../.env"}
	if root := findProjectRoot(); root != "" {
		candidates = append(candidates, filepath.Join(root, ".env"))
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory to the first go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// expandEnvVars resolves ${VAR} placeholders left in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok || !strings.Contains(strVal, "$") {
			continue
		}
		if expanded := os.ExpandEnv(strVal); expanded != strVal {
			v.Set(key, expanded)
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "listing-browser"
	}
	if cfg.Backend.Timeout <= 0 {
		cfg.Backend.Timeout = 10000
	}
	if cfg.Backend.Burst <= 0 {
		cfg.Backend.Burst = 1
	}
	if cfg.Backend.UserAgent == "" {
		cfg.Backend.UserAgent = cfg.App.Name
	}
	if cfg.Session.Source == "" {
		cfg.Session.Source = "env"
	}
	if cfg.Session.EnvVar == "" {
		cfg.Session.EnvVar = "AUTH_TOKEN"
	}
	if cfg.Session.RedisKey == "" {
		cfg.Session.RedisKey = "session:%s:token"
	}
	if cfg.Cache.TTL <= 0 {
		cfg.Cache.TTL = 30
	}
	if cfg.Cache.Prefix == "" {
		cfg.Cache.Prefix = "listing"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = ":9090"
	}

	for name, l := range cfg.Listings {
		if l.PerPage <= 0 {
			l.PerPage = 10
		}
		if l.Mode == "" {
			l.Mode = ModePageSwitch
		}
		if l.DebounceMS <= 0 {
			l.DebounceMS = 300
		}
		if l.ScrollMargin <= 0 {
			l.ScrollMargin = 100
		}
		if l.Kind == "" {
			l.Kind = "offers"
		}
		cfg.Listings[name] = l
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	if _, err := url.ParseRequestURI(cfg.Backend.BaseURL); err != nil {
		return fmt.Errorf("backend.base_url: %w", err)
	}
	switch cfg.Session.Source {
	case "static", "env", "redis":
	case "oauth":
		if cfg.Session.TokenURL == "" || cfg.Session.ClientID == "" {
			return fmt.Errorf("session.token_url and session.client_id are required for the oauth session")
		}
	default:
		return fmt.Errorf("session.source must be static, env, redis or oauth, got %q", cfg.Session.Source)
	}
	if (cfg.Session.Source == "redis" || cfg.Cache.Enabled) && cfg.Redis.Address == "" {
		return fmt.Errorf("redis.address is required when the redis session or cache is used")
	}
	if len(cfg.Listings) == 0 {
		return fmt.Errorf("at least one listing must be configured")
	}
	for name, l := range cfg.Listings {
		if l.Path == "" {
			return fmt.Errorf("listings.%s.path is required", name)
		}
		if l.Mode != ModePageSwitch && l.Mode != ModeInfinite {
			return fmt.Errorf("listings.%s.mode must be %s or %s", name, ModePageSwitch, ModeInfinite)
		}
		if l.Kind != "offers" && l.Kind != "candidates" {
			return fmt.Errorf("listings.%s.kind must be offers or candidates", name)
		}
	}
	return nil
}
