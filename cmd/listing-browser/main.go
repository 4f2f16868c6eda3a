// cmd/listing-browser/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"jobboard-listing/internal/common/cache"
	"jobboard-listing/internal/common/config"
	apphttp "jobboard-listing/internal/common/http"
	"jobboard-listing/internal/common/logger"
	"jobboard-listing/internal/common/observability"
	"jobboard-listing/internal/common/session"
	"jobboard-listing/internal/listing/engine"
	"jobboard-listing/internal/listing/fetcher"
	"jobboard-listing/internal/models"
	"jobboard-listing/internal/ui/browser"
	"jobboard-listing/internal/view"
)

const (
	onceTimeout    = 30 * time.Second
	defaultLogFile = "listing-browser.log"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	listingName := flag.String("listing", "public-offers", "Listing to browse (public-offers, offers, candidates)")
	search := flag.String("search", "", "Initial search text")
	page := flag.Int("page", 1, "Page to print with -once (page-switch listings)")
	once := flag.Bool("once", false, "Print one rendered page and exit instead of starting the browser")
	configDir := flag.String("config", "", "Directory holding config.yaml (default: ./configs)")
	logOutput := flag.String("log", "", "Log sink path, overrides logging.output")
	width := flag.Int("width", 100, "Render width for -once")
	flag.Parse()

	var searchPaths []string
	if *configDir != "" {
		searchPaths = append(searchPaths, *configDir)
	}
	cfg, err := config.Load(searchPaths...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	output := cfg.Logging.Output
	if *logOutput != "" {
		output = *logOutput
	} else if !*once && (output == "" || output == "stderr" || output == "stdout") {
		// the terminal belongs to the browser
		output = defaultLogFile
	}
	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	listingCfg, err := cfg.Listing(*listingName)
	if err != nil {
		zapLog.Fatal("unknown listing", zap.Error(err))
	}

	obs := observability.New(cfg.App.Name, log)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Redis: page cache and/or session store ---
	var redisClient *cache.RedisClient
	if cfg.Cache.Enabled || cfg.Session.Source == "redis" {
		redisClient = cache.NewRedis(cfg.Redis)
		err = retryWithBackoff(func() error {
			return redisClient.Ping(ctx)
		}, 5, 500*time.Millisecond, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redisClient.Close()
		zapLog.Info("Redis connected successfully", zap.String("address", cfg.Redis.Address))
	}

	// --- Backend client ---
	var tokens apphttp.TokenSource
	if !listingCfg.Public {
		provider, err := session.New(cfg.Session, redisClient)
		if err != nil {
			zapLog.Fatal("session provider", zap.Error(err))
		}
		tokens = provider
	}
	client, err := apphttp.NewClient(apphttp.Options{
		BaseURL:   cfg.Backend.BaseURL,
		Timeout:   cfg.Backend.GetTimeout(),
		RateLimit: cfg.Backend.RateLimit,
		Burst:     cfg.Backend.Burst,
		UserAgent: cfg.Backend.UserAgent,
		Tokens:    tokens,
	}, log)
	if err != nil {
		zapLog.Fatal("backend client", zap.Error(err))
	}

	// --- Listing engine ---
	live, err := fetcher.New(client, *listingName, listingCfg, obs, log)
	if err != nil {
		zapLog.Fatal("fetcher", zap.Error(err))
	}
	opts := engine.Options{
		Listing: *listingName,
		Config:  listingCfg,
		Fetcher: live,
		Logger:  log,
	}
	if cfg.Cache.Enabled {
		scope := cfg.Session.UserID
		if listingCfg.Public {
			scope = ""
		}
		cached := fetcher.NewCached(live, redisClient, fetcher.CacheOptions{
			Prefix:  cfg.Cache.Prefix,
			Listing: *listingName,
			Scope:   scope,
			TTL:     cfg.Cache.GetTTL(),
		}, log)
		opts.Fetcher = cached
		opts.Cache = cached
	}
	if path := listingCfg.SectorsPath; path != "" {
		opts.Hierarchy = func(ctx context.Context) (models.Hierarchy, error) {
			return fetcher.FetchHierarchy(ctx, client, path)
		}
	}
	if pattern, org := listingCfg.PaymentsPath, cfg.Session.UserID; pattern != "" && org != "" {
		opts.Payments = func(ctx context.Context) (*models.Payment, error) {
			return fetcher.FetchLastPayment(ctx, client, pattern, org)
		}
	}
	if userID := cfg.Session.UserID; !listingCfg.Public && userID != "" {
		opts.Actions = func(ctx context.Context, action engine.Action, item models.ListingItem) error {
			switch action {
			case engine.ActionApply:
				return fetcher.Apply(ctx, client, listingCfg.ApplyPath, userID, item)
			case engine.ActionConsume:
				return fetcher.Consume(ctx, client, listingCfg.ConsumePath, userID, item)
			}
			return fmt.Errorf("unsupported action %q", action)
		}
	}

	eng, err := engine.New(opts)
	if err != nil {
		zapLog.Fatal("engine", zap.Error(err))
	}

	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			zapLog.Info("metrics endpoint listening", zap.String("address", cfg.Metrics.Address))
			if err := http.ListenAndServe(cfg.Metrics.Address, mux); err != nil {
				zapLog.Error("metrics server stopped", zap.Error(err))
			}
		}()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	updates := browser.Feed(eng)
	runErr := make(chan error, 1)
	go func() {
		runErr <- eng.Run(ctx)
	}()

	if *search != "" {
		eng.Dispatch(engine.SearchInput{Text: *search})
	}

	if *once {
		v, err := settle(ctx, eng, updates, *page)
		if err != nil {
			zapLog.Error("listing did not settle", zap.Error(err))
		}
		fmt.Println(view.Render(v, view.Options{Width: *width}))
		cancel()
		<-runErr
		if v.Status == engine.StatusFailed {
			os.Exit(1)
		}
		return
	}

	model := browser.New(eng, updates, eng.Snapshot())
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		zapLog.Error("browser exited with error", zap.Error(err))
	}
	cancel()
	if err := <-runErr; err != nil && !errors.Is(err, context.Canceled) {
		zapLog.Error("listing engine stopped with error", zap.Error(err))
	}
}

// settle waits until the listing shows the requested page with no request
// or search in flight. A page out of range leaves the first page shown.
func settle(ctx context.Context, eng *engine.Engine, updates <-chan engine.View, page int) (engine.View, error) {
	ctx, cancel := context.WithTimeout(ctx, onceTimeout)
	defer cancel()

	requested := page <= 1
	current := eng.Snapshot()
	for {
		idle := current.Status != engine.StatusLoading && !current.Refreshing &&
			!current.LoadingMore && !current.SearchPending
		if idle && !requested {
			requested = true
			if page != current.Page && page <= current.Meta.LastPage && eng.Dispatch(engine.GoToPage{Page: page}) {
				idle = false
			} else {
				page = current.Page
			}
		}
		if idle && (page <= 1 || current.Page == page || current.Status == engine.StatusFailed) {
			return current, nil
		}

		select {
		case <-ctx.Done():
			return current, ctx.Err()
		case v, ok := <-updates:
			if !ok {
				return current, errors.New("listing engine stopped")
			}
			current = v
		}
	}
}
