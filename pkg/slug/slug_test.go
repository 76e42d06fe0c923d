// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/sleepora/pkg/slug"
)

/*
TestFrom covers accents, punctuation and hyphen collapsing.
*/
func TestFrom(t *testing.T) {
	tests := map[string]string{
		"Cloud Nine Hybrid":        "cloud-nine-hybrid",
		"Nệm Lò Xo Túi Độc Lập":    "nem-lo-xo-tui-doc-lap",
		"  Memory Foam -- 25cm!  ": "memory-foam-25cm",
		"Crème Brûlée Pillow":      "creme-brulee-pillow",
		"***":                      "",
	}

	for input, expected := range tests {
		assert.Equal(t, expected, slug.From(input), input)
	}
}
