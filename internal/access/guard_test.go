// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package access

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/sleepora/internal/platform/ctxutil"
	"github.com/taibuivan/sleepora/internal/platform/sec"
)

type recordingObserver struct {
	reasons []string
}

func (observer *recordingObserver) ObserveAccessDecision(_ bool, reason string) {
	observer.reasons = append(observer.reasons, reason)
}

func asSubject(request *http.Request, subject string) *http.Request {
	claims := &sec.AuthClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: subject}}
	return request.WithContext(ctxutil.WithAuthUser(request.Context(), claims))
}

/*
TestGuard_Require maps decisions and faults to HTTP outcomes.
*/
func TestGuard_Require(t *testing.T) {
	service, _ := newTestService(newFakeRules())
	observer := &recordingObserver{}
	guard := NewGuard(service, observer)

	handler := guard.Require("store", "delete")(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		subject    string
		wantStatus int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"seller_via_table", "idp|seller", http.StatusNoContent},
		{"customer_denied", "idp|customer", http.StatusForbidden},
		{"no_profile", "idp|ghost", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodDelete, "/store", nil)
			if tt.subject != "" {
				request = asSubject(request, tt.subject)
			}
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)
			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}

	assert.Equal(t, []string{"role-table:manage_store", ReasonRoleTableDenied, ReasonProfileNotFound}, observer.reasons)
}

/*
TestGuard_FailsClosed answers 503 and never calls the handler when evaluation fails.
*/
func TestGuard_FailsClosed(t *testing.T) {
	service := NewService(&fakeProfiles{err: errors.New("cms down")}, newFakeRules(), &fakeRecorder{})
	guard := NewGuard(service, nil)

	called := false
	handler := guard.Require("store", "delete")(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, asSubject(httptest.NewRequest(http.MethodDelete, "/", nil), "idp|seller"))

	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	assert.False(t, called)
}

/*
TestHandler_Check returns the decision for the caller.
*/
func TestHandler_Check(t *testing.T) {
	service, _ := newTestService(newFakeRules())
	router := NewHandler(service, NewGuard(service, nil)).Routes()

	body, _ := json.Marshal(map[string]string{"resource": "store", "action": "delete"})
	request := asSubject(httptest.NewRequest(http.MethodPost, "/check", bytes.NewReader(body)), "idp|seller")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	var envelope struct {
		Data Decision `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Equal(t, Decision{Allowed: true, Reason: "role-table:manage_store"}, envelope.Data)

	anonymous := httptest.NewRecorder()
	router.ServeHTTP(anonymous, httptest.NewRequest(http.MethodPost, "/check", bytes.NewReader(body)))
	assert.Equal(t, http.StatusUnauthorized, anonymous.Code)
}

/*
TestHandler_Rules guards rule administration behind manage_users.
*/
func TestHandler_Rules(t *testing.T) {
	service, _ := newTestService(newFakeRules())
	router := NewHandler(service, NewGuard(service, nil)).Routes()

	payload := []byte(`{"subject":"idp|customer","resource":"analytics","action":"read","allow":true,"reason":"pilot"}`)

	denied := httptest.NewRecorder()
	router.ServeHTTP(denied, asSubject(httptest.NewRequest(http.MethodPut, "/rules", bytes.NewReader(payload)), "idp|seller"))
	assert.Equal(t, http.StatusForbidden, denied.Code)

	saved := httptest.NewRecorder()
	router.ServeHTTP(saved, asSubject(httptest.NewRequest(http.MethodPut, "/rules", bytes.NewReader(payload)), "idp|admin"))
	require.Equal(t, http.StatusOK, saved.Code)

	decision, err := service.CheckAccess(context.Background(), "idp|customer", "analytics", "read")
	require.NoError(t, err)
	assert.Equal(t, "pilot", decision.Reason)
}
