// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package docstore is the headless-CMS document repository.
//
// # Architecture
//
// Products, categories, blog posts and gallery items are schemaless documents
// keyed by id and grouped by type. Each domain repository receives one [Store]
// through its constructor; the hosting process owns its lifecycle.
//
// # Errors
//
// Missing documents surface as [apperr.NotFound]. Any other backend fault is
// [apperr.Unavailable] so callers fail closed.
package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Document types.
const (
	TypeProduct     = "product"
	TypeCategory    = "category"
	TypeBlogPost    = "post"
	TypeGalleryItem = "galleryItem"
)

// Document is one CMS record.
type Document struct {
	ID        string          `json:"_id"`
	Type      string          `json:"_type"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"_createdAt"`
	UpdatedAt time.Time       `json:"_updatedAt"`
}

// Query selects documents of one type whose data contains Match (JSON
// containment: nested objects match by subset, arrays by element inclusion).
// A zero Limit means no limit.
type Query struct {
	Type  string
	Match map[string]any
	Limit int
}

// Store is the read/write contract over the document backend.
type Store interface {
	// Find returns matching documents ordered by creation time, oldest first.
	Find(ctx context.Context, query Query) ([]Document, error)

	// FindOne returns the first match, or NotFound.
	FindOne(ctx context.Context, query Query) (*Document, error)

	// Get returns the document with id, or NotFound.
	Get(ctx context.Context, id string) (*Document, error)

	// Create stores document. An empty ID is assigned; timestamps are set.
	Create(ctx context.Context, document *Document) error

	// Patch shallow-merges set into the document's top-level keys.
	Patch(ctx context.Context, id string, set map[string]any) (*Document, error)

	// Delete removes the document with id, or returns NotFound.
	Delete(ctx context.Context, id string) error
}

// Decode unmarshals a document's data into a new T.
func Decode[T any](document Document) (*T, error) {
	var target T
	if err := json.Unmarshal(document.Data, &target); err != nil {
		return nil, fmt.Errorf("docstore: decode %s %s: %w", document.Type, document.ID, err)
	}
	return &target, nil
}

// Encode marshals value into document data.
func Encode(value any) (json.RawMessage, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("docstore: encode: %w", err)
	}
	return data, nil
}
