// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package respond_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/sleepora/internal/platform/apperr"
	"github.com/taibuivan/sleepora/internal/platform/respond"
	"github.com/taibuivan/sleepora/pkg/pagination"
)

/*
TestError_Envelope maps application errors and hides unexpected ones.
*/
func TestError_Envelope(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"not_found", apperr.NotFound("Product"), http.StatusNotFound, apperr.CodeNotFound, "Product not found"},
		{"forbidden", apperr.Forbidden("denied"), http.StatusForbidden, apperr.CodeForbidden, "denied"},
		{"unavailable", apperr.Unavailable(errors.New("dial tcp")), http.StatusServiceUnavailable, apperr.CodeServiceUnavailable, "A required service is temporarily unavailable"},
		{"raw", errors.New("secret internals"), http.StatusInternalServerError, apperr.CodeInternal, "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			respond.Error(recorder, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			var body respond.ErrorEnvelope
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantMsg, body.Error)
		})
	}
}

/*
TestPaginated_Meta checks that the metadata block is rendered next to the data.
*/
func TestPaginated_Meta(t *testing.T) {
	recorder := httptest.NewRecorder()
	respond.Paginated(recorder, []string{"a", "b"}, pagination.NewMeta(1, 2, 5))

	var body struct {
		Data []string        `json:"data"`
		Meta pagination.Meta `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, []string{"a", "b"}, body.Data)
	assert.Equal(t, 3, body.Meta.TotalPages)
	assert.True(t, body.Meta.HasMore)
}
