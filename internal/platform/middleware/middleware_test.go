// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/sleepora/internal/platform/constants"
	"github.com/taibuivan/sleepora/internal/platform/ctxutil"
	"github.com/taibuivan/sleepora/internal/platform/middleware"
	"github.com/taibuivan/sleepora/internal/platform/sec"
)

type stubVerifier struct {
	tokens map[string]string
}

func (verifier stubVerifier) VerifyToken(token string) (*sec.AuthClaims, error) {
	subject, ok := verifier.tokens[token]
	if !ok {
		return nil, errors.New("bad token")
	}
	return &sec.AuthClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: subject}}, nil
}

type originPolicy struct {
	development bool
	extra       []string
}

func (policy originPolicy) IsDevelopment() bool      { return policy.development }
func (policy originPolicy) AllowedOrigins() []string { return policy.extra }

var okHandler = http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusOK)
})

/*
TestRequestID verifies generation and propagation of the correlation header.
*/
func TestRequestID(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, recorder.Header().Get(constants.HeaderXRequestID))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(constants.HeaderXRequestID, "upstream-1")
	handler.ServeHTTP(httptest.NewRecorder(), request)
	assert.Equal(t, "upstream-1", seen)
}

/*
TestAuthenticate covers anonymous, malformed, rejected and accepted credentials.
*/
func TestAuthenticate(t *testing.T) {
	verifier := stubVerifier{tokens: map[string]string{"good": "idp|7"}}

	var subject string
	handler := middleware.Authenticate(verifier)(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		subject = ctxutil.SubjectID(request.Context())
		writer.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantSub    string
	}{
		{"anonymous", "", http.StatusOK, ""},
		{"wrong_scheme", "Basic abc", http.StatusUnauthorized, ""},
		{"empty_token", "Bearer ", http.StatusUnauthorized, ""},
		{"rejected", "Bearer nope", http.StatusUnauthorized, ""},
		{"accepted", "Bearer good", http.StatusOK, "idp|7"},
		{"scheme_case", "bearer good", http.StatusOK, "idp|7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject = ""
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.Equal(t, tt.wantSub, subject)
		})
	}
}

/*
TestRequireAuth ensures anonymous requests are stopped with 401.
*/
func TestRequireAuth(t *testing.T) {
	handler := middleware.RequireAuth(okHandler)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := ctxutil.WithAuthUser(request.Context(), &sec.AuthClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "idp|1"}})
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request.WithContext(ctx))
	assert.Equal(t, http.StatusOK, recorder.Code)
}

/*
TestStructuredLogger_ReportsSubject checks that the finished-request entry carries
the subject verified further down the chain.
*/
func TestStructuredLogger_ReportsSubject(t *testing.T) {
	var buffer bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buffer, nil))
	verifier := stubVerifier{tokens: map[string]string{"good": "idp|9"}}

	chain := middleware.StructuredLogger(logger)(middleware.Authenticate(verifier)(okHandler))

	request := httptest.NewRequest(http.MethodGet, "/orders", nil)
	request.Header.Set("Authorization", "Bearer good")
	chain.ServeHTTP(httptest.NewRecorder(), request)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buffer.Bytes(), &entry))
	assert.Equal(t, "http_request_finished", entry["msg"])
	assert.Equal(t, "idp|9", entry["user_id"])
	assert.EqualValues(t, 200, entry["status"])
}

/*
TestRateLimitWith verifies that a client exceeding its burst receives 429.
*/
func TestRateLimitWith(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := middleware.RateLimitWith(ctx, 0.001, 1)(okHandler)

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.Header.Set(constants.HeaderXRealIP, "10.0.0.99")
	third := httptest.NewRecorder()
	handler.ServeHTTP(third, other)
	assert.Equal(t, http.StatusOK, third.Code)
}

/*
TestPanicRecovery ensures a panicking handler yields the 500 envelope.
*/
func TestPanicRecovery(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	handler := middleware.PanicRecovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "INTERNAL_ERROR")
}

/*
TestCORS checks the production origin policy and preflight handling.
*/
func TestCORS(t *testing.T) {
	handler := middleware.CORS(originPolicy{extra: []string{"https://partner.example"}})(okHandler)

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"https://sleepora.shop", true},
		{"https://admin.sleepora.shop", true},
		{"https://partner.example", true},
		{"https://evilsleepora.shop", false},
		{"https://attacker.example", false},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			request.Header.Set(constants.HeaderOrigin, tt.origin)
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			if tt.allowed {
				assert.Equal(t, tt.origin, recorder.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}

	preflight := httptest.NewRequest(http.MethodOptions, "/", nil)
	preflight.Header.Set(constants.HeaderOrigin, "https://sleepora.shop")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, preflight)
	assert.Equal(t, http.StatusNoContent, recorder.Code)
}

/*
TestSecureHeaders verifies the hardening headers are present.
*/
func TestSecureHeaders(t *testing.T) {
	handler := middleware.SecureHeaders(false)(okHandler)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "DENY", recorder.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", recorder.Header().Get("X-Content-Type-Options"))
}

/*
TestRealIP covers proxy headers and the remote address fallback.
*/
func TestRealIP(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.RemoteAddr = "192.0.2.1:5555"
	assert.Equal(t, "192.0.2.1", middleware.RealIP(request))

	request.Header.Set(constants.HeaderXForwardedFor, "203.0.113.5, 10.0.0.1")
	assert.Equal(t, "203.0.113.5", middleware.RealIP(request))

	request.Header.Set(constants.HeaderXRealIP, "198.51.100.7")
	assert.Equal(t, "198.51.100.7", middleware.RealIP(request))
}
