// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pointer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/sleepora/pkg/pointer"
)

/*
TestVal_Fallback covers nil and set pointers.
*/
func TestVal_Fallback(t *testing.T) {
	var missing *float64

	assert.Zero(t, pointer.Val(missing))
	assert.Equal(t, 2.5, pointer.Val(pointer.To(2.5)))
	assert.Equal(t, 9.0, pointer.Fallback(missing, 9.0))
	assert.Equal(t, 0.0, pointer.Fallback(pointer.To(0.0), 9.0))
}
