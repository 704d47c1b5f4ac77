package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stylefeed/catalog-service/internal/http/ratelimit"
)

func fastConfig() ratelimit.Config {
	return ratelimit.Config{
		RequestsPerSecond: 1000,
		Burst:             1000,
		MaxRetries:        2,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
	}
}

func TestGetRetriesTransientServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := NewClient(fastConfig())
	body, err := client.GetBytes(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(fastConfig())
	_, err := client.Get(context.Background(), srv.URL, nil)
	require.Error(t, err)

	var retryErr *ratelimit.RetryError
	require.True(t, errors.As(err, &retryErr))
	assert.Equal(t, http.StatusNotFound, retryErr.LastStatus)
	assert.Equal(t, 1, retryErr.Attempts)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetExhaustsRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(fastConfig())
	_, err := client.Get(context.Background(), srv.URL, nil)
	require.Error(t, err)

	var retryErr *ratelimit.RetryError
	require.True(t, errors.As(err, &retryErr))
	assert.Equal(t, 3, retryErr.Attempts)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGetAppliesCustomHeaders(t *testing.T) {
	var gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Shopify-Access-Token")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	headers := http.Header{}
	headers.Set("X-Shopify-Access-Token", "secret")

	client := NewClient(fastConfig())
	resp, err := client.Get(context.Background(), srv.URL, headers)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "secret", gotToken)
}

func TestIsRetryableStatus(t *testing.T) {
	assert.True(t, ratelimit.IsRetryableStatus(429))
	assert.True(t, ratelimit.IsRetryableStatus(500))
	assert.True(t, ratelimit.IsRetryableStatus(503))
	assert.False(t, ratelimit.IsRetryableStatus(200))
	assert.False(t, ratelimit.IsRetryableStatus(404))
	assert.False(t, ratelimit.IsRetryableStatus(401))
}
