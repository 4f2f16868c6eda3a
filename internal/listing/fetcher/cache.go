package fetcher

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	apperrors "jobboard-listing/internal/common/errors"
	"jobboard-listing/internal/common/logger"
	"jobboard-listing/internal/common/metrics"
	"jobboard-listing/internal/models"
)

// PageStore is the key/value store behind CachedFetcher.
type PageStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, expiration time.Duration) error
	DelPrefix(ctx context.Context, prefix string) (int, error)
}

// CacheOptions configures a CachedFetcher.
type CacheOptions struct {
	Prefix  string
	Listing string
	// Scope separates users whose pages differ (per-user status flags).
	Scope string
	TTL   time.Duration
}

// CachedFetcher keeps successful pages in a PageStore. Store failures are
// logged and fall through to the wrapped fetcher.
type CachedFetcher struct {
	next   PageFetcher
	store  PageStore
	opts   CacheOptions
	logger logger.Logger
}

func NewCached(next PageFetcher, store PageStore, opts CacheOptions, log logger.Logger) *CachedFetcher {
	if opts.Scope == "" {
		opts.Scope = "public"
	}
	return &CachedFetcher{
		next:   next,
		store:  store,
		opts:   opts,
		logger: logger.ForListing(log, "page-cache", opts.Listing),
	}
}

// FetchPage serves from the store when possible.
func (c *CachedFetcher) FetchPage(ctx context.Context, page, perPage int, filters url.Values) (*models.Page, error) {
	if page < 1 || perPage < 1 {
		return c.next.FetchPage(ctx, page, perPage, filters)
	}

	key := c.Key(page, perPage, filters)
	if cached, ok := c.lookup(ctx, key); ok {
		return cached, nil
	}

	result, err := c.next.FetchPage(ctx, page, perPage, filters)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(result)
	if err == nil {
		err = c.store.Set(ctx, key, payload, c.opts.TTL)
	}
	if err != nil {
		c.logger.Warn("failed to cache page", map[string]interface{}{
			"key":   key,
			"error": apperrors.NewCacheError("set", err).Error(),
		})
	}
	return result, nil
}

func (c *CachedFetcher) lookup(ctx context.Context, key string) (*models.Page, bool) {
	payload, found, err := c.store.Get(ctx, key)
	if err != nil {
		metrics.CacheLookups.WithLabelValues(c.opts.Listing, "error").Inc()
		c.logger.Warn("page cache unavailable, fetching live", map[string]interface{}{
			"key":   key,
			"error": apperrors.NewCacheError("get", err).Error(),
		})
		return nil, false
	}
	if !found {
		metrics.CacheLookups.WithLabelValues(c.opts.Listing, "miss").Inc()
		return nil, false
	}

	var cached models.Page
	if err := json.Unmarshal(payload, &cached); err != nil {
		metrics.CacheLookups.WithLabelValues(c.opts.Listing, "error").Inc()
		c.logger.Warn("discarding corrupt cached page", map[string]interface{}{"key": key})
		return nil, false
	}
	metrics.CacheLookups.WithLabelValues(c.opts.Listing, "hit").Inc()
	return &cached, true
}

// Key is the store key of one page request.
func (c *CachedFetcher) Key(page, perPage int, filters url.Values) string {
	return c.keyPrefix() + BuildQuery(page, perPage, filters).Encode()
}

func (c *CachedFetcher) keyPrefix() string {
	return c.opts.Prefix + ":" + c.opts.Listing + ":" + c.opts.Scope + ":"
}

// Invalidate drops every cached page of the listing, used by refresh.
func (c *CachedFetcher) Invalidate(ctx context.Context) error {
	n, err := c.store.DelPrefix(ctx, c.keyPrefix())
	if err != nil {
		return apperrors.NewCacheError("invalidate", err)
	}
	c.logger.Debug("page cache invalidated", map[string]interface{}{"keys": n})
	return nil
}
