// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"sync"
	"time"

	"github.com/taibuivan/sleepora/internal/platform/apperr"
	"github.com/taibuivan/sleepora/pkg/uuid"
)

// MemoryStore is an in-process [Store] with the same containment semantics as
// the Postgres backend. It backs the package tests across the repository.
type MemoryStore struct {
	mu        sync.RWMutex
	documents map[string]Document
	sequence  []string

	// Fail, when set, is returned by every operation.
	Fail error
}

// NewMemoryStore constructs an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{documents: make(map[string]Document)}
}

// Find implements [Store].
func (store *MemoryStore) Find(_ context.Context, query Query) ([]Document, error) {
	if store.Fail != nil {
		return nil, apperr.Unavailable(store.Fail)
	}

	store.mu.RLock()
	defer store.mu.RUnlock()

	pattern, err := normalise(matchOrEmpty(query.Match))
	if err != nil {
		return nil, err
	}

	result := make([]Document, 0)
	for _, id := range store.sequence {
		document := store.documents[id]
		if document.Type != query.Type {
			continue
		}

		var data any
		if err := json.Unmarshal(document.Data, &data); err != nil {
			return nil, apperr.Unavailable(err)
		}
		if !contains(data, pattern) {
			continue
		}

		result = append(result, document)
		if query.Limit > 0 && len(result) == query.Limit {
			break
		}
	}
	return result, nil
}

// FindOne implements [Store].
func (store *MemoryStore) FindOne(ctx context.Context, query Query) (*Document, error) {
	query.Limit = 1
	documents, err := store.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(documents) == 0 {
		return nil, apperr.NotFound(entityDocument)
	}
	return &documents[0], nil
}

// Get implements [Store].
func (store *MemoryStore) Get(_ context.Context, id string) (*Document, error) {
	if store.Fail != nil {
		return nil, apperr.Unavailable(store.Fail)
	}

	store.mu.RLock()
	defer store.mu.RUnlock()

	document, ok := store.documents[id]
	if !ok {
		return nil, apperr.NotFound(entityDocument)
	}
	return &document, nil
}

// Create implements [Store].
func (store *MemoryStore) Create(_ context.Context, document *Document) error {
	if store.Fail != nil {
		return apperr.Unavailable(store.Fail)
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	if document.ID == "" {
		document.ID = uuid.New()
	}
	if _, exists := store.documents[document.ID]; exists {
		return apperr.Conflict(entityDocument + " already exists")
	}
	if len(document.Data) == 0 {
		document.Data = json.RawMessage(`{}`)
	}

	// Strictly increasing timestamps keep creation order observable in tests.
	now := time.Now().UTC()
	if count := len(store.sequence); count > 0 {
		if last := store.documents[store.sequence[count-1]].CreatedAt; !now.After(last) {
			now = last.Add(time.Microsecond)
		}
	}
	document.CreatedAt, document.UpdatedAt = now, now

	store.documents[document.ID] = *document
	store.sequence = append(store.sequence, document.ID)
	return nil
}

// Patch implements [Store].
func (store *MemoryStore) Patch(_ context.Context, id string, set map[string]any) (*Document, error) {
	if store.Fail != nil {
		return nil, apperr.Unavailable(store.Fail)
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	document, ok := store.documents[id]
	if !ok {
		return nil, apperr.NotFound(entityDocument)
	}

	var data map[string]any
	if err := json.Unmarshal(document.Data, &data); err != nil {
		return nil, apperr.Unavailable(err)
	}
	if data == nil {
		data = map[string]any{}
	}
	maps.Copy(data, set)

	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("docstore: encode patch: %w", err)
	}
	document.Data = encoded
	document.UpdatedAt = time.Now().UTC()
	store.documents[id] = document

	return &document, nil
}

// Delete implements [Store].
func (store *MemoryStore) Delete(_ context.Context, id string) error {
	if store.Fail != nil {
		return apperr.Unavailable(store.Fail)
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	if _, ok := store.documents[id]; !ok {
		return apperr.NotFound(entityDocument)
	}
	delete(store.documents, id)

	if index := slices.Index(store.sequence, id); index >= 0 {
		store.sequence = slices.Delete(store.sequence, index, index+1)
	}
	return nil
}

// normalise round-trips value through JSON so Go types compare like decoded JSON.
func normalise(value any) (any, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("docstore: encode match: %w", err)
	}
	var decoded any
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		return nil, fmt.Errorf("docstore: decode match: %w", err)
	}
	return decoded, nil
}

// contains mirrors the jsonb @> operator.
func contains(document, pattern any) bool {
	switch typed := pattern.(type) {
	case map[string]any:
		object, ok := document.(map[string]any)
		if !ok {
			return false
		}
		for key, want := range typed {
			got, present := object[key]
			if !present || !contains(got, want) {
				return false
			}
		}
		return true

	case []any:
		array, ok := document.([]any)
		if !ok {
			return false
		}
		for _, want := range typed {
			found := false
			for _, got := range array {
				if contains(got, want) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true

	default:
		return reflect.DeepEqual(document, pattern)
	}
}
