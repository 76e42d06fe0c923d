// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package cache serves public GET responses from Redis for a fixed TTL.
//
// # Keys
//
// The key is the route path plus the query string with its parameters sorted,
// so "?page=2&sort=price-low" and "?sort=price-low&page=2" share an entry.
//
// # Failure Mode
//
// The cache is best-effort. A Redis fault is logged and the request is served
// by the wrapped handler. Concurrent misses on one key run the handler once.
package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/taibuivan/sleepora/internal/platform/constants"
	"github.com/taibuivan/sleepora/internal/platform/ctxutil"
)

// Observer receives hit and miss notifications. [*metrics.Metrics] satisfies it.
type Observer interface {
	ObserveCacheLookup(hit bool)
}

// ResponseCache caches successful GET responses in Redis.
type ResponseCache struct {
	client   redis.UniversalClient
	ttl      time.Duration
	observer Observer
	group    singleflight.Group
}

// New constructs a [ResponseCache]. observer may be nil.
func New(client redis.UniversalClient, ttl time.Duration, observer Observer) *ResponseCache {
	return &ResponseCache{client: client, ttl: ttl, observer: observer}
}

type entry struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// Middleware caches 200 responses of GET requests. Other methods and
// authenticated requests bypass the cache.
func (cache *ResponseCache) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.Method != http.MethodGet || ctxutil.GetAuthUser(request.Context()) != nil {
			next.ServeHTTP(writer, request)
			return
		}

		ctx := request.Context()
		logger := ctxutil.GetLogger(ctx)
		key := Key(request)

		cached, err := cache.lookup(ctx, key)
		if err != nil {
			logger.WarnContext(ctx, "cache_lookup_failed", slog.String("key", key), slog.Any("error", err))
		}
		if cached != nil {
			cache.observe(true)
			write(writer, cached, "HIT")
			return
		}
		cache.observe(false)

		result, _, _ := cache.group.Do(key, func() (any, error) {
			recorder := newBufferedWriter()
			next.ServeHTTP(recorder, request)

			fresh := &entry{
				Status:      recorder.status,
				ContentType: recorder.header.Get("Content-Type"),
				Body:        recorder.body.Bytes(),
			}

			if fresh.Status == http.StatusOK {
				if err := cache.store(context.WithoutCancel(ctx), key, fresh); err != nil {
					logger.WarnContext(ctx, "cache_store_failed", slog.String("key", key), slog.Any("error", err))
				}
			}
			return fresh, nil
		})

		write(writer, result.(*entry), "MISS")
	})
}

// Invalidate removes every cached response whose route path starts with pathPrefix.
func (cache *ResponseCache) Invalidate(ctx context.Context, pathPrefix string) error {
	iterator := cache.client.Scan(ctx, 0, constants.RedisPrefixCache+pathPrefix+"*", 100).Iterator()

	var keys []string
	for iterator.Next(ctx) {
		keys = append(keys, iterator.Val())
	}
	if err := iterator.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return cache.client.Del(ctx, keys...).Err()
}

// Key derives the Redis key for request.
func Key(request *http.Request) string {
	key := constants.RedisPrefixCache + request.URL.Path
	if encoded := request.URL.Query().Encode(); encoded != "" {
		key += "?" + encoded
	}
	return key
}

func (cache *ResponseCache) lookup(ctx context.Context, key string) (*entry, error) {
	raw, err := cache.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cached entry
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, err
	}
	return &cached, nil
}

func (cache *ResponseCache) store(ctx context.Context, key string, fresh *entry) error {
	raw, err := json.Marshal(fresh)
	if err != nil {
		return err
	}
	return cache.client.Set(ctx, key, raw, cache.ttl).Err()
}

func (cache *ResponseCache) observe(hit bool) {
	if cache.observer != nil {
		cache.observer.ObserveCacheLookup(hit)
	}
}

func write(writer http.ResponseWriter, cached *entry, state string) {
	if cached.ContentType != "" {
		writer.Header().Set("Content-Type", cached.ContentType)
	}
	writer.Header().Set(constants.HeaderXCache, state)
	writer.WriteHeader(cached.Status)
	_, _ = writer.Write(cached.Body)
}

// bufferedWriter captures a handler's response so it can be shared between
// singleflight waiters and stored.
type bufferedWriter struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func newBufferedWriter() *bufferedWriter {
	return &bufferedWriter{header: http.Header{}, status: http.StatusOK}
}

func (buffered *bufferedWriter) Header() http.Header { return buffered.header }

func (buffered *bufferedWriter) Write(data []byte) (int, error) {
	return buffered.body.Write(data)
}

func (buffered *bufferedWriter) WriteHeader(status int) {
	buffered.status = status
}
