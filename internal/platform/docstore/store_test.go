// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package docstore_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/sleepora/internal/platform/apperr"
	"github.com/taibuivan/sleepora/internal/platform/docstore"
)

type product struct {
	Name       string   `json:"name"`
	Slug       string   `json:"slug"`
	Categories []string `json:"categories"`
	Price      float64  `json:"price"`
}

func seed(t *testing.T, store docstore.Store, values ...product) []string {
	t.Helper()
	ids := make([]string, 0, len(values))
	for _, value := range values {
		data, err := docstore.Encode(value)
		require.NoError(t, err)

		document := &docstore.Document{Type: docstore.TypeProduct, Data: data}
		require.NoError(t, store.Create(context.Background(), document))
		ids = append(ids, document.ID)
	}
	return ids
}

/*
TestMemoryStore_FindContainment checks subset matching on scalars and arrays.
*/
func TestMemoryStore_FindContainment(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	seed(t, store,
		product{Name: "Cloud", Slug: "cloud", Categories: []string{"foam", "queen"}, Price: 500},
		product{Name: "Spring", Slug: "spring", Categories: []string{"spring"}, Price: 300},
		product{Name: "Dream", Slug: "dream", Categories: []string{"foam"}, Price: 700},
	)
	require.NoError(t, store.Create(ctx, &docstore.Document{Type: docstore.TypeCategory, Data: json.RawMessage(`{"slug":"foam"}`)}))

	all, err := store.Find(ctx, docstore.Query{Type: docstore.TypeProduct})
	require.NoError(t, err)
	require.Len(t, all, 3)

	foam, err := store.Find(ctx, docstore.Query{Type: docstore.TypeProduct, Match: map[string]any{"categories": []string{"foam"}}})
	require.NoError(t, err)
	require.Len(t, foam, 2)

	first, err := docstore.Decode[product](foam[0])
	require.NoError(t, err)
	assert.Equal(t, "Cloud", first.Name)

	limited, err := store.Find(ctx, docstore.Query{Type: docstore.TypeProduct, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	_, err = store.FindOne(ctx, docstore.Query{Type: docstore.TypeProduct, Match: map[string]any{"slug": "missing"}})
	assert.True(t, apperr.IsNotFound(err))

	byPrice, err := store.FindOne(ctx, docstore.Query{Type: docstore.TypeProduct, Match: map[string]any{"price": 300}})
	require.NoError(t, err)
	decoded, err := docstore.Decode[product](*byPrice)
	require.NoError(t, err)
	assert.Equal(t, "spring", decoded.Slug)
}

/*
TestMemoryStore_PatchAndDelete covers shallow merge and removal.
*/
func TestMemoryStore_PatchAndDelete(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	ids := seed(t, store, product{Name: "Cloud", Slug: "cloud", Price: 500})

	patched, err := store.Patch(ctx, ids[0], map[string]any{"price": 450, "label": "Sale"})
	require.NoError(t, err)

	var data map[string]any
	require.NoError(t, json.Unmarshal(patched.Data, &data))
	assert.Equal(t, "Cloud", data["name"])
	assert.EqualValues(t, 450, data["price"])
	assert.Equal(t, "Sale", data["label"])

	require.NoError(t, store.Delete(ctx, ids[0]))
	_, err = store.Get(ctx, ids[0])
	assert.True(t, apperr.IsNotFound(err))
	assert.True(t, apperr.IsNotFound(store.Delete(ctx, ids[0])))

	_, err = store.Patch(ctx, "missing", map[string]any{"x": 1})
	assert.True(t, apperr.IsNotFound(err))
}

/*
TestMemoryStore_Fail surfaces backend faults as Unavailable.
*/
func TestMemoryStore_Fail(t *testing.T) {
	store := docstore.NewMemoryStore()
	store.Fail = errors.New("cms offline")

	_, err := store.Find(context.Background(), docstore.Query{Type: docstore.TypeProduct})
	assert.True(t, apperr.IsUnavailable(err))

	_, err = store.Get(context.Background(), "x")
	assert.True(t, apperr.IsUnavailable(err))
}
