// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/sleepora/internal/platform/apperr"
)

/*
TestAs_WrappedChain verifies that an AppError is found through fmt wrapping.
*/
func TestAs_WrappedChain(t *testing.T) {
	wrapped := fmt.Errorf("lookup: %w", apperr.NotFound("Profile"))

	ae := apperr.As(wrapped)
	require.NotNil(t, ae)
	assert.Equal(t, "Profile not found", ae.Message)
	assert.True(t, apperr.IsNotFound(wrapped))
	assert.False(t, apperr.IsUnavailable(wrapped))
}

/*
TestUnavailable_KeepsCause checks that the upstream cause stays reachable for logs.
*/
func TestUnavailable_KeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := apperr.Unavailable(cause)

	assert.Equal(t, http.StatusServiceUnavailable, err.HTTPStatus)
	assert.ErrorIs(t, err, cause)
	assert.NotContains(t, err.Error(), "connection refused")
}

/*
TestAs_PlainError returns nil for errors outside the taxonomy.
*/
func TestAs_PlainError(t *testing.T) {
	assert.Nil(t, apperr.As(errors.New("boom")))
	assert.False(t, apperr.HasCode(nil, apperr.CodeNotFound))
}
