// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cache_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/sleepora/internal/platform/cache"
	"github.com/taibuivan/sleepora/internal/platform/constants"
	"github.com/taibuivan/sleepora/internal/platform/ctxutil"
	"github.com/taibuivan/sleepora/internal/platform/sec"
)

type countingObserver struct {
	mu     sync.Mutex
	hits   int
	misses int
}

func (observer *countingObserver) ObserveCacheLookup(hit bool) {
	observer.mu.Lock()
	defer observer.mu.Unlock()
	if hit {
		observer.hits++
	} else {
		observer.misses++
	}
}

func setup(t *testing.T) (*miniredis.Miniredis, *cache.ResponseCache, *countingObserver) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	observer := &countingObserver{}
	return server, cache.New(client, time.Minute, observer), observer
}

/*
TestMiddleware_HitAfterMiss serves the second identical request from Redis.
*/
func TestMiddleware_HitAfterMiss(t *testing.T) {
	server, responseCache, observer := setup(t)

	var calls atomic.Int32
	handler := responseCache.Middleware(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{"data":[]}`))
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/v1/products?sort=price-low&page=2", nil))
	assert.Equal(t, "MISS", first.Header().Get(constants.HeaderXCache))

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/v1/products?page=2&sort=price-low", nil))
	assert.Equal(t, "HIT", second.Header().Get(constants.HeaderXCache))
	assert.Equal(t, `{"data":[]}`, second.Body.String())
	assert.Equal(t, "application/json", second.Header().Get("Content-Type"))

	assert.EqualValues(t, 1, calls.Load())
	assert.Equal(t, 1, observer.hits)
	assert.Equal(t, 1, observer.misses)

	server.FastForward(2 * time.Minute)
	third := httptest.NewRecorder()
	handler.ServeHTTP(third, httptest.NewRequest(http.MethodGet, "/api/v1/products?page=2&sort=price-low", nil))
	assert.Equal(t, "MISS", third.Header().Get(constants.HeaderXCache))
}

/*
TestMiddleware_SkipsErrorsAndAuthenticated never stores failures or personalised responses.
*/
func TestMiddleware_SkipsErrorsAndAuthenticated(t *testing.T) {
	server, responseCache, _ := setup(t)

	handler := responseCache.Middleware(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Query().Get("fail") != "" {
			writer.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = writer.Write([]byte("ok"))
	}))

	failing := httptest.NewRecorder()
	handler.ServeHTTP(failing, httptest.NewRequest(http.MethodGet, "/api/v1/products?fail=1", nil))
	assert.Equal(t, http.StatusServiceUnavailable, failing.Code)

	request := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	claims := &sec.AuthClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "idp|1"}}
	authenticated := httptest.NewRecorder()
	handler.ServeHTTP(authenticated, request.WithContext(ctxutil.WithAuthUser(request.Context(), claims)))
	assert.Empty(t, authenticated.Header().Get(constants.HeaderXCache))

	assert.Empty(t, server.Keys())
}

/*
TestMiddleware_RedisDown falls through to the handler.
*/
func TestMiddleware_RedisDown(t *testing.T) {
	server, responseCache, _ := setup(t)
	server.Close()

	handler := responseCache.Middleware(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		_, _ = writer.Write([]byte("live"))
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "live", recorder.Body.String())
}

/*
TestInvalidate drops every entry under a route prefix.
*/
func TestInvalidate(t *testing.T) {
	server, responseCache, _ := setup(t)

	handler := responseCache.Middleware(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		_, _ = writer.Write([]byte("ok"))
	}))
	for _, target := range []string{"/api/v1/products", "/api/v1/products?page=2", "/api/v1/blog"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}
	require.Len(t, server.Keys(), 3)

	require.NoError(t, responseCache.Invalidate(context.Background(), "/api/v1/products"))
	assert.Equal(t, []string{constants.RedisPrefixCache + "/api/v1/blog"}, server.Keys())
}
