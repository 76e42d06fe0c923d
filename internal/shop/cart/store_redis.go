// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cart

import (
	"context"
	"slices"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/sleepora/internal/platform/apperr"
	"github.com/taibuivan/sleepora/internal/platform/constants"
)

// RedisStore implements [Store] with one hash per cart and one set per wishlist.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore constructs a [RedisStore].
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func cartKey(subject string) string     { return constants.RedisPrefixCart + subject }
func wishlistKey(subject string) string { return constants.RedisPrefixWishlist + subject }

// Items implements [Store]. Fields with unreadable quantities are skipped.
func (store *RedisStore) Items(ctx context.Context, subject string) (map[string]int, error) {
	fields, err := store.client.HGetAll(ctx, cartKey(subject)).Result()
	if err != nil {
		return nil, apperr.Unavailable(err)
	}

	items := make(map[string]int, len(fields))
	for productID, raw := range fields {
		quantity, err := strconv.Atoi(raw)
		if err != nil || quantity <= 0 {
			continue
		}
		items[productID] = quantity
	}
	return items, nil
}

// Add implements [Store]. Every write renews the cart TTL.
func (store *RedisStore) Add(ctx context.Context, subject, productID string, quantity int) (int, error) {
	key := cartKey(subject)

	var incr *redis.IntCmd
	_, err := store.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.HIncrBy(ctx, key, productID, int64(quantity))
		pipe.Expire(ctx, key, constants.CartTTL)
		return nil
	})
	if err != nil {
		return 0, apperr.Unavailable(err)
	}
	return int(incr.Val()), nil
}

// Set implements [Store].
func (store *RedisStore) Set(ctx context.Context, subject, productID string, quantity int) error {
	key := cartKey(subject)

	_, err := store.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, productID, quantity)
		pipe.Expire(ctx, key, constants.CartTTL)
		return nil
	})
	if err != nil {
		return apperr.Unavailable(err)
	}
	return nil
}

// Remove implements [Store].
func (store *RedisStore) Remove(ctx context.Context, subject string, productIDs ...string) error {
	if len(productIDs) == 0 {
		return nil
	}
	if err := store.client.HDel(ctx, cartKey(subject), productIDs...).Err(); err != nil {
		return apperr.Unavailable(err)
	}
	return nil
}

// Clear implements [Store].
func (store *RedisStore) Clear(ctx context.Context, subject string) error {
	if err := store.client.Del(ctx, cartKey(subject)).Err(); err != nil {
		return apperr.Unavailable(err)
	}
	return nil
}

// Wishlist implements [Store]. Ids are sorted for stable responses.
func (store *RedisStore) Wishlist(ctx context.Context, subject string) ([]string, error) {
	members, err := store.client.SMembers(ctx, wishlistKey(subject)).Result()
	if err != nil {
		return nil, apperr.Unavailable(err)
	}
	slices.Sort(members)
	return members, nil
}

// Wish implements [Store].
func (store *RedisStore) Wish(ctx context.Context, subject, productID string) error {
	if err := store.client.SAdd(ctx, wishlistKey(subject), productID).Err(); err != nil {
		return apperr.Unavailable(err)
	}
	return nil
}

// Unwish implements [Store].
func (store *RedisStore) Unwish(ctx context.Context, subject, productID string) error {
	if err := store.client.SRem(ctx, wishlistKey(subject), productID).Err(); err != nil {
		return apperr.Unavailable(err)
	}
	return nil
}
