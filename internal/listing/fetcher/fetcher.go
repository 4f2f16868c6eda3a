// Package fetcher requests pages of a listing from the backend and turns the
// response into validated ListingItems.
package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"jobboard-listing/internal/common/config"
	apperrors "jobboard-listing/internal/common/errors"
	apphttp "jobboard-listing/internal/common/http"
	"jobboard-listing/internal/common/logger"
	"jobboard-listing/internal/common/metrics"
	"jobboard-listing/internal/common/observability"
	"jobboard-listing/internal/common/validation"
	"jobboard-listing/internal/models"
)

// PageFetcher fetches one page of a listing. Implementations never touch
// engine state; the caller merges the returned page.
type PageFetcher interface {
	FetchPage(ctx context.Context, page, perPage int, filters url.Values) (*models.Page, error)
}

// Getter is the subset of the HTTP client used here.
type Getter interface {
	Get(ctx context.Context, path string, query url.Values) (*apphttp.Response, error)
}

var schemas = map[string]*validation.ItemValidator{
	models.KindOffers:     validation.MustItemValidator(validation.OfferSchema),
	models.KindCandidates: validation.MustItemValidator(validation.CandidateSchema),
}

// HTTPFetcher is the PageFetcher backed by the REST API.
type HTTPFetcher struct {
	client    Getter
	listing   string
	path      string
	validator *validation.ItemValidator
	mapper    models.Mapper
	obs       *observability.Observability
	logger    logger.Logger
}

// New builds the fetcher of the named listing.
func New(client Getter, listing string, cfg config.ListingConfig, obs *observability.Observability, log logger.Logger) (*HTTPFetcher, error) {
	mapper, ok := models.MapperFor(cfg.Kind)
	if !ok {
		return nil, fmt.Errorf("no mapper for listing kind %q", cfg.Kind)
	}
	if obs == nil {
		obs = &observability.Observability{}
	}
	return &HTTPFetcher{
		client:    client,
		listing:   listing,
		path:      cfg.Path,
		validator: schemas[cfg.Kind],
		mapper:    mapper,
		obs:       obs,
		logger:    logger.ForListing(log, "fetcher", listing),
	}, nil
}

// FetchPage requests page/perPage with the server-side filters passed through
// unmodified. Any failure is returned as an error, never as an empty page.
func (f *HTTPFetcher) FetchPage(ctx context.Context, page, perPage int, filters url.Values) (*models.Page, error) {
	if page < 1 {
		return nil, apperrors.NewValidationError("page", "must be a positive integer")
	}
	if perPage < 1 {
		return nil, apperrors.NewValidationError("per_page", "must be a positive integer")
	}

	ctx, span := f.obs.StartSpan(ctx, "listing.fetch_page",
		attribute.String("listing", f.listing),
		attribute.Int("page", page),
		attribute.Int("per_page", perPage),
	)
	defer span.End()

	start := time.Now()
	result, err := f.fetch(ctx, page, perPage, filters)
	duration := time.Since(start)

	outcome := outcomeOf(err)
	metrics.FetchTotal.WithLabelValues(f.listing, outcome).Inc()
	metrics.FetchDuration.WithLabelValues(f.listing).Observe(duration.Seconds())
	f.obs.RecordFetch(ctx, f.listing, outcome, duration)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		f.logger.Warn("page fetch failed", map[string]interface{}{
			"page":     page,
			"error":    err.Error(),
			"duration": duration.String(),
		})
		return nil, err
	}

	span.SetAttributes(attribute.Int("items", len(result.Items)), attribute.Int("rejected", result.Rejected))
	f.logger.Debug("page fetched", map[string]interface{}{
		"page":     result.Meta.CurrentPage,
		"lastPage": result.Meta.LastPage,
		"items":    len(result.Items),
		"rejected": result.Rejected,
		"duration": duration.String(),
	})
	return result, nil
}

func (f *HTTPFetcher) fetch(ctx context.Context, page, perPage int, filters url.Values) (*models.Page, error) {
	resp, err := f.client.Get(ctx, f.path, BuildQuery(page, perPage, filters))
	if err != nil {
		return nil, err
	}

	raws, meta, err := DecodeEnvelope(resp.Body)
	if err != nil {
		return nil, apperrors.NewMalformedResponseError(resp.Status, err)
	}
	if meta.PerPage == 0 {
		meta.PerPage = perPage
	}

	items, rejected := f.mapItems(raws)
	if rejected > 0 {
		metrics.ItemsRejected.WithLabelValues(f.listing).Add(float64(rejected))
	}
	return &models.Page{Items: items, Meta: meta, Rejected: rejected}, nil
}

// mapItems validates and maps each raw item. Invalid items are dropped.
func (f *HTTPFetcher) mapItems(raws []json.RawMessage) ([]models.ListingItem, int) {
	items := make([]models.ListingItem, 0, len(raws))
	rejected := 0
	for i, raw := range raws {
		if f.validator != nil {
			if res := f.validator.Validate(raw); !res.Valid {
				rejected++
				f.logger.Debug("item failed validation", map[string]interface{}{
					"index":  i,
					"errors": res.Error(),
				})
				continue
			}
		}
		item, err := f.mapper(raw)
		if err != nil {
			rejected++
			f.logger.Debug("item could not be decoded", map[string]interface{}{
				"index": i,
				"error": err.Error(),
			})
			continue
		}
		items = append(items, item)
	}
	return items, rejected
}

// BuildQuery adds page and per_page to a copy of the server filters.
func BuildQuery(page, perPage int, filters url.Values) url.Values {
	q := url.Values{}
	for k, vs := range filters {
		for _, v := range vs {
			if v != "" {
				q.Add(k, v)
			}
		}
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	return q
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case apperrors.IsNetwork(err):
		return metrics.OutcomeNetwork
	case apperrors.IsUpstream(err):
		return metrics.OutcomeUpstream
	default:
		return metrics.OutcomeOther
	}
}
