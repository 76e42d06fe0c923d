// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It hides the router's parameter extraction and body decoding so handlers share
one error behaviour.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/sleepora/internal/platform/apperr"
	"github.com/taibuivan/sleepora/internal/platform/ctxutil"
	"github.com/taibuivan/sleepora/internal/platform/sec"
	"github.com/taibuivan/sleepora/internal/platform/validate"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

/*
DecodeJSON reads the request body into target and rejects unknown fields.

Returns validate.ErrInvalidJSON when the body is missing, oversized or malformed.
*/
func DecodeJSON(request *http.Request, target any) error {
	decoder := json.NewDecoder(io.LimitReader(request.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.ValidationError("Request body is required")
		}
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
DecodeAndValidate decodes the body and runs the struct's `validate` tags.
*/
func DecodeAndValidate(request *http.Request, target any) error {
	if err := DecodeJSON(request, target); err != nil {
		return err
	}
	return validate.Struct(target)
}

// Param retrieves a named URL parameter from the request.
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

// Claims extracts the authenticated identity claims. Returns nil when anonymous.
func Claims(request *http.Request) *sec.AuthClaims {
	return ctxutil.GetAuthUser(request.Context())
}

/*
RequiredClaims ensures the request is authenticated and returns its claims.

Returns apperr.Unauthorized when the request is anonymous.
*/
func RequiredClaims(request *http.Request) (*sec.AuthClaims, error) {
	claims := ctxutil.GetAuthUser(request.Context())
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return claims, nil
}

// RequiredSubject returns the identity-provider subject of the caller.
func RequiredSubject(request *http.Request) (string, error) {
	claims, err := RequiredClaims(request)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
