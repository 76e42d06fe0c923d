// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pointer holds generic helpers for optional values such as a product's
// price or rating, which may be absent in CMS documents.
package pointer

// To returns a pointer to v.
func To[T any](v T) *T {
	return &v
}

// Val dereferences p, or returns the zero value when p is nil.
func Val[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// Fallback dereferences p, or returns fallback when p is nil.
func Fallback[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}
