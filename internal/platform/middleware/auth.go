// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/taibuivan/sleepora/internal/platform/apperr"
	"github.com/taibuivan/sleepora/internal/platform/ctxutil"
	"github.com/taibuivan/sleepora/internal/platform/respond"
	"github.com/taibuivan/sleepora/internal/platform/sec"
)

// TokenVerifier verifies identity provider tokens. [*sec.Verifier] satisfies it.
type TokenVerifier interface {
	VerifyToken(tokenString string) (*sec.AuthClaims, error)
}

// Authenticate extracts and verifies the bearer token from the Authorization header.
//
// # Flow
//  1. No header: the request proceeds as anonymous.
//  2. Malformed header or invalid token: 401.
//  3. Valid token: [*sec.AuthClaims] is injected into the context and the
//     request logger gains a user_id attribute.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			scheme, token, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			claims, err := verifier.VerifyToken(strings.TrimSpace(token))
			if err != nil {
				ctxutil.GetLogger(request.Context()).DebugContext(request.Context(), "token_rejected", slog.Any("error", err))
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
				return
			}

			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			ctx = ctxutil.WithLogger(ctx, ctxutil.GetLogger(ctx).With(slog.String("user_id", claims.Subject)))
			recordSubject(ctx, claims.Subject)

			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks anonymous requests. Mount it after [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetAuthUser(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}
