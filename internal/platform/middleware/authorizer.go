// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import "net/http"

// Authorizer builds route middleware that admits a request only when the caller
// may perform action on resource. Domain handlers depend on this interface so
// they can be mounted without importing the access package.
type Authorizer interface {
	Require(resource, action string) func(http.Handler) http.Handler
}
