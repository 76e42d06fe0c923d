// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"log/slog"
	"net/http"

	"github.com/unrolled/secure"

	"github.com/taibuivan/sleepora/internal/platform/ctxutil"
)

// SecureHeaders sets the standard hardening headers on every response. In
// production plain-HTTP requests are redirected behind the TLS-terminating proxy.
func SecureHeaders(production bool) func(http.Handler) http.Handler {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		STSSeconds:            31536000,
		STSIncludeSubdomains:  true,
		SSLRedirect:           production,
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:         !production,
	})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if err := secureMiddleware.Process(writer, request); err != nil {
				ctxutil.GetLogger(request.Context()).WarnContext(request.Context(), "secure_headers_blocked", slog.Any("error", err))
				return
			}
			next.ServeHTTP(writer, request)
		})
	}
}
