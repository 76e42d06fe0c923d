// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination provides page-based navigation for API list endpoints.
//
// Pages are 1-based. Page n of size s covers items [(n-1)*s, (n-1)*s+s). A page
// past the end is empty, never an error.
package pagination

import (
	"math"
	"net/url"

	"github.com/taibuivan/sleepora/pkg/convert"
)

const (
	// DefaultLimit is the number of items per page if not specified.
	DefaultLimit = 12
	// MaxLimit caps items per page.
	MaxLimit = 100
	// DefaultPage is the starting page.
	DefaultPage = 1
	// MaxPage keeps (page-1)*MaxLimit within int.
	MaxPage = math.MaxInt / MaxLimit
)

// Params holds the parsed page and limit from a request's query string.
type Params struct {
	Page  int
	Limit int
}

// Offset returns the SQL OFFSET value derived from Page and Limit. It saturates
// at math.MaxInt instead of overflowing.
func (p Params) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// Meta is the pagination metadata included in API list responses.
type Meta struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasMore    bool `json:"has_more"`
}

// NewMeta computes TotalPages as ceil(total/limit) and HasMore as page < TotalPages.
func NewMeta(page, limit, total int) Meta {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return Meta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    page < totalPages,
	}
}

// Slice returns the requested page of items and its metadata. The returned
// slice is a copy; out-of-range pages yield an empty, non-nil slice.
func Slice[T any](items []T, params Params) ([]T, Meta) {
	meta := NewMeta(params.Page, params.Limit, len(items))

	if params.Limit <= 0 || params.Page < 1 || params.Page > meta.TotalPages {
		return []T{}, meta
	}

	start := (params.Page - 1) * params.Limit

	end := min(start+params.Limit, len(items))
	page := make([]T, end-start)
	copy(page, items[start:end])

	return page, meta
}

// FromQuery parses "page" and "limit". Invalid, negative or excessive values fall
// back to [DefaultPage] and [DefaultLimit]. Pages past [MaxPage] are clamped to it.
func FromQuery(values url.Values) Params {
	page := convert.ToIntD(values.Get("page"), DefaultPage)
	limit := convert.ToIntD(values.Get("limit"), DefaultLimit)

	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 || limit > MaxLimit {
		limit = DefaultLimit
	}

	return Params{Page: page, Limit: limit}
}
