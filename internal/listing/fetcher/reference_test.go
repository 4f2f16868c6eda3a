package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "jobboard-listing/internal/common/errors"
	apphttp "jobboard-listing/internal/common/http"
	"jobboard-listing/internal/common/logger"
)

func createTestClient(t *testing.T, handler http.HandlerFunc) *apphttp.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := apphttp.NewClient(apphttp.Options{BaseURL: srv.URL, Timeout: 2 * time.Second}, logger.NewTestLogger(t))
	require.NoError(t, err)
	return client
}

func TestFetchHierarchy(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bare array", `[{"id": 1, "name": "IT", "jobs": [{"id": 10, "name": "Developer"}]}, {"id": 2, "name": "Sales"}]`},
		{"wrapped", `{"data": [{"id": 1, "name": "IT", "jobs": [{"id": 10, "name": "Developer"}]}, {"id": 2, "name": "Sales"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := createTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/sectors", r.URL.Path)
				fmt.Fprint(w, tt.body)
			})

			h, err := FetchHierarchy(context.Background(), client, "/api/sectors")
			require.NoError(t, err)
			require.Len(t, h.Sectors, 2)
			require.Len(t, h.Sectors[0].Jobs, 1)
			assert.Equal(t, int64(1), h.Sectors[0].Jobs[0].SectorID)
			assert.Empty(t, h.Sectors[1].Jobs)
		})
	}
}

func TestFetchHierarchy_Failure(t *testing.T) {
	client := createTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := FetchHierarchy(context.Background(), client, "/api/sectors")
	assert.True(t, apperrors.IsUpstream(err))
}

func TestFetchLastPayment(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		client := createTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/payments/7/last", r.URL.Path)
			fmt.Fprint(w, `{"data": {"id": 3, "cv_video_remaining": 4, "status": "completed"}}`)
		})

		p, err := FetchLastPayment(context.Background(), client, "/api/v1/payments/%s/last", "7")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, 4, p.CVVideoRemaining)
		assert.True(t, p.CanConsume())
	})

	t.Run("not found is no data", func(t *testing.T) {
		client := createTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message": "No payment found"}`)
		})

		p, err := FetchLastPayment(context.Background(), client, "/api/v1/payments/%s/last", "7")
		assert.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("server error is surfaced", func(t *testing.T) {
		client := createTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		p, err := FetchLastPayment(context.Background(), client, "/api/v1/payments/%s/last", "7")
		assert.Error(t, err)
		assert.Nil(t, p)
	})

	t.Run("missing organization", func(t *testing.T) {
		_, err := FetchLastPayment(context.Background(), nil, "/p/%s", "")
		assert.Error(t, err)
	})
}
