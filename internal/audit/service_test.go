// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/sleepora/internal/platform/ctxutil"
	"github.com/taibuivan/sleepora/internal/platform/sec"
	"github.com/taibuivan/sleepora/pkg/pagination"
)

type memoryRepository struct {
	entries []Entry
	fail    error
}

func (repository *memoryRepository) Insert(_ context.Context, entry *Entry) error {
	if repository.fail != nil {
		return repository.fail
	}
	repository.entries = append(repository.entries, *entry)
	return nil
}

func (repository *memoryRepository) List(_ context.Context, filter Filter, limit, offset int) ([]Entry, int, error) {
	var matched []Entry
	for i := len(repository.entries) - 1; i >= 0; i-- {
		entry := repository.entries[i]
		if filter.EntityType != "" && entry.EntityType != filter.EntityType {
			continue
		}
		matched = append(matched, entry)
	}
	end := min(offset+limit, len(matched))
	if offset >= len(matched) {
		return []Entry{}, len(matched), nil
	}
	return matched[offset:end], len(matched), nil
}

/*
TestRecord_FillsActorFromContext stamps subject, IP, id and time.
*/
func TestRecord_FillsActorFromContext(t *testing.T) {
	repository := &memoryRepository{}
	service := NewService(repository, slog.Default())

	ctx := ctxutil.WithAuthUser(context.Background(), &sec.AuthClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "idp|ops"}})
	ctx = ctxutil.WithClientIP(ctx, "198.51.100.2")

	service.Record(ctx, Entry{Action: ActionUpdateRole, EntityType: "user", EntityID: "p-1", Metadata: map[string]any{"role": "seller"}})

	require.Len(t, repository.entries, 1)
	entry := repository.entries[0]
	assert.Equal(t, "idp|ops", entry.ActorID)
	assert.Equal(t, "198.51.100.2", entry.IPAddress)
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
}

/*
TestRecord_FailureIsLogged does not propagate repository errors.
*/
func TestRecord_FailureIsLogged(t *testing.T) {
	var buffer bytes.Buffer
	service := NewService(&memoryRepository{fail: errors.New("db down")}, slog.New(slog.NewJSONHandler(&buffer, nil)))

	service.Record(context.Background(), Entry{Action: ActionDelete, EntityType: "product", EntityID: "x"})
	assert.Contains(t, buffer.String(), "audit_record_failed")
}

/*
TestList_Filters pages newest-first entries by entity type.
*/
func TestList_Filters(t *testing.T) {
	repository := &memoryRepository{}
	service := NewService(repository, slog.Default())

	for _, entity := range []string{"product", "access_rule", "product"} {
		service.Record(context.Background(), Entry{Action: ActionCreate, EntityType: entity, EntityID: entity})
	}

	entries, total, err := service.List(context.Background(), Filter{EntityType: "product"}, pagination.Params{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, entries, 2)
}
