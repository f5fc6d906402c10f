package artifact

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrFetch_CachesAfterFirstSuccess(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte{0x00, 0x61, 0x73, 0x6d})
	}))
	defer srv.Close()

	cache := NewCache(srv.URL, time.Second)

	first, err := cache.GetOrFetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x61, 0x73, 0x6d}, first)

	second, err := cache.GetOrFetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Equal(t, 1, hits)
}

func TestGetOrFetch_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	cache := NewCache(srv.URL, time.Second)

	_, err := cache.GetOrFetch(context.Background())
	assert.ErrorContains(t, err, "status 404")
}

func TestGetOrFetch_FailureDoesNotPoisonSlot(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte{0x01})
	}))
	defer srv.Close()

	cache := NewCache(srv.URL, time.Second)

	_, err := cache.GetOrFetch(context.Background())
	require.Error(t, err)

	wasm, err := cache.GetOrFetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, wasm)
	assert.Equal(t, 2, hits)
}

func TestGetOrFetch_EmptyPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cache := NewCache(srv.URL, time.Second)

	_, err := cache.GetOrFetch(context.Background())
	assert.ErrorContains(t, err, "empty payload")
}
