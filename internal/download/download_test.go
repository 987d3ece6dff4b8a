package download_test

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/mediathek/internal/download"
	"github.com/agentstation/mediathek/pkg/errors"
)

func newClient(opts ...download.Option) *download.Client {
	return download.New(append([]download.Option{download.WithRetry(3, time.Millisecond)}, opts...)...)
}

func TestFetch(t *testing.T) {
	var userAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("list"))
	}))
	defer srv.Close()

	data, err := newClient(download.WithUserAgent("mediathek-test")).Fetch(context.Background(), []string{srv.URL})
	require.NoError(t, err)
	assert.Equal(t, "list", string(data))
	assert.Equal(t, "mediathek-test", userAgent)
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	data, err := newClient().Fetch(context.Background(), []string{srv.URL})
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newClient().Fetch(context.Background(), []string{srv.URL})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())

	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestFetchFallsBackToMirror(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	mirror := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("mirror"))
	}))
	defer mirror.Close()

	data, err := newClient().Fetch(context.Background(), []string{broken.URL, mirror.URL})
	require.NoError(t, err)
	assert.Equal(t, "mirror", string(data))
}

func TestFetchJoinsErrors(t *testing.T) {
	gone := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer gone.Close()

	limited := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer limited.Close()

	_, err := newClient().Fetch(context.Background(), []string{gone.URL, limited.URL})
	require.Error(t, err)
	assert.True(t, errors.IsRateLimited(err))
	assert.Contains(t, err.Error(), "status 410")
}

func TestFetchRejectsOversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("0123456789"))
	}))
	defer srv.Close()

	_, err := newClient(download.WithMaxSize(4)).Fetch(context.Background(), []string{srv.URL})
	require.Error(t, err)

	var resErr *errors.ResourceError
	assert.ErrorAs(t, err, &resErr)
}

func TestFetchHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newClient().Fetch(ctx, []string{srv.URL})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, context.Canceled))
}

func TestFetchRequiresURLs(t *testing.T) {
	_, err := newClient().Fetch(context.Background(), nil)
	assert.True(t, errors.IsValidationError(err))
}
