package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard-listing/internal/common/config"
	apperrors "jobboard-listing/internal/common/errors"
	apphttp "jobboard-listing/internal/common/http"
	"jobboard-listing/internal/common/logger"
	"jobboard-listing/internal/common/session"
)

// ==========================
// Helpers
// ==========================

func createTestListingConfig(kind string) config.ListingConfig {
	return config.ListingConfig{
		Path:    "/api/v1/offres",
		Kind:    kind,
		PerPage: 10,
		Mode:    config.ModePageSwitch,
	}
}

func createTestFetcher(t *testing.T, handler http.HandlerFunc) (*HTTPFetcher, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := apphttp.NewClient(apphttp.Options{
		BaseURL: srv.URL,
		Timeout: 2 * time.Second,
		Tokens:  session.NewStatic("test-token"),
	}, logger.NewTestLogger(t))
	require.NoError(t, err)

	f, err := New(client, "offers", createTestListingConfig("offers"), nil, logger.NewTestLogger(t))
	require.NoError(t, err)
	return f, srv
}

func offersBody(from, to, page, lastPage, total int) string {
	items := ""
	for i := from; i <= to; i++ {
		if items != "" {
			items += ","
		}
		items += fmt.Sprintf(`{"id": %d, "titre": "Offer %d"}`, i, i)
	}
	return fmt.Sprintf(`{"data": [%s], "pagination": {"current_page": %d, "last_page": %d, "total": %d}}`,
		items, page, lastPage, total)
}

// ==========================
// FetchPage
// ==========================

func TestHTTPFetcher_FetchPage_Success(t *testing.T) {
	var gotQuery url.Values
	var gotAuth string
	f, _ := createTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, offersBody(11, 20, 2, 3, 25))
	})

	page, err := f.FetchPage(context.Background(), 2, 10, url.Values{"sector_id": {"4"}})
	require.NoError(t, err)

	assert.Equal(t, "2", gotQuery.Get("page"))
	assert.Equal(t, "10", gotQuery.Get("per_page"))
	assert.Equal(t, "4", gotQuery.Get("sector_id"))
	assert.Equal(t, "Bearer test-token", gotAuth)

	require.Len(t, page.Items, 10)
	assert.Equal(t, int64(11), page.Items[0].ID)
	assert.Equal(t, "Offer 20", page.Items[9].Title)
	assert.Equal(t, 2, page.Meta.CurrentPage)
	assert.Equal(t, 3, page.Meta.LastPage)
	assert.Equal(t, 25, page.Meta.TotalCount)
	assert.True(t, page.Meta.HasMore)
}

func TestHTTPFetcher_FetchPage_EnvelopeShapes(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantItems int
		wantMeta  [3]int // current, last, total
		wantMore  bool
	}{
		{"missing data", `{"pagination": {"current_page": 1, "last_page": 1, "total": 0}}`, 0, [3]int{1, 1, 0}, false},
		{"non-array data", `{"data": {"id": 1}}`, 0, [3]int{1, 1, 0}, false},
		{"missing pagination", `{"data": [{"id": 1}, {"id": 2}]}`, 2, [3]int{1, 1, 0}, false},
		{"bare array", `[{"id": 1}, {"id": 2}, {"id": 3}]`, 3, [3]int{1, 1, 3}, false},
		{"has_more_pages flag", `{"data": [{"id": 1}], "pagination": {"current_page": 1, "last_page": 1, "has_more_pages": true}}`, 1, [3]int{1, 2, 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := createTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			})

			page, err := f.FetchPage(context.Background(), 1, 10, nil)
			require.NoError(t, err)
			assert.Len(t, page.Items, tt.wantItems)
			assert.Equal(t, tt.wantMeta[0], page.Meta.CurrentPage)
			assert.Equal(t, tt.wantMeta[1], page.Meta.LastPage)
			assert.Equal(t, tt.wantMeta[2], page.Meta.TotalCount)
			assert.Equal(t, tt.wantMore, page.Meta.HasMore)
		})
	}
}

func TestHTTPFetcher_FetchPage_DropsInvalidItems(t *testing.T) {
	f, _ := createTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": [{"id": 1, "titre": "ok"}, {"titre": "no id"}, {"id": "x"}, {"id": 4}]}`)
	})

	page, err := f.FetchPage(context.Background(), 1, 10, nil)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, int64(1), page.Items[0].ID)
	assert.Equal(t, int64(4), page.Items[1].ID)
	assert.Equal(t, 2, page.Rejected)
}

func TestHTTPFetcher_FetchPage_UpstreamError(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantMessage   string
		wantRetryable bool
	}{
		{"server error with message", http.StatusInternalServerError, `{"message": "database down"}`, "database down", true},
		{"unauthorized", http.StatusUnauthorized, `{"error": "Unauthenticated."}`, "Unauthenticated.", false},
		{"rate limited without body", http.StatusTooManyRequests, ``, "Backend returned 429 Too Many Requests", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := createTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			page, err := f.FetchPage(context.Background(), 1, 10, nil)
			require.Error(t, err)
			assert.Nil(t, page)
			assert.True(t, apperrors.IsUpstream(err))

			stdErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.ErrCodeUpstream, stdErr.Code)
			assert.Equal(t, tt.status, stdErr.Status)
			assert.Equal(t, tt.wantMessage, stdErr.Message)
			assert.Equal(t, tt.wantRetryable, stdErr.Retryable)
		})
	}
}

func TestHTTPFetcher_FetchPage_MalformedBody(t *testing.T) {
	f, _ := createTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": [`)
	})

	_, err := f.FetchPage(context.Background(), 1, 10, nil)
	require.Error(t, err)
	stdErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeMalformedResponse, stdErr.Code)
	assert.Equal(t, http.StatusOK, stdErr.Status)
}

func TestHTTPFetcher_FetchPage_NetworkError(t *testing.T) {
	f, srv := createTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	_, err := f.FetchPage(context.Background(), 1, 10, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsNetwork(err))
	assert.True(t, apperrors.IsRetryable(err))
}

func TestHTTPFetcher_FetchPage_InvalidArguments(t *testing.T) {
	var hits int32
	f, _ := createTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	})

	for _, args := range [][2]int{{0, 10}, {-1, 10}, {1, 0}} {
		_, err := f.FetchPage(context.Background(), args[0], args[1], nil)
		require.Error(t, err)
		stdErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeValidation, stdErr.Code)
	}
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestNew_UnknownKind(t *testing.T) {
	_, err := New(nil, "x", createTestListingConfig("jobs"), nil, logger.NewNoOpLogger())
	assert.Error(t, err)
}

func TestBuildQuery(t *testing.T) {
	filters := url.Values{"city": {"Sousse"}, "gender": {""}}
	q := BuildQuery(3, 12, filters)

	assert.Equal(t, "3", q.Get("page"))
	assert.Equal(t, "12", q.Get("per_page"))
	assert.Equal(t, "Sousse", q.Get("city"))
	_, hasGender := q["gender"]
	assert.False(t, hasGender)
	// the caller's values are untouched
	assert.Empty(t, filters.Get("page"))
}
