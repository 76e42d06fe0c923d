// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package query parses optional URL query values. Malformed input is reported
// as absent, never as an error.
package query

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// StringSlice collects a multi-valued parameter. Both repeated keys
// (?a=x&a=y) and comma lists (?a=x,y) are accepted; blanks are dropped.
func StringSlice(values url.Values, key string) []string {
	var result []string
	for _, raw := range values[key] {
		for _, part := range strings.Split(raw, ",") {
			if clean := strings.TrimSpace(part); clean != "" {
				result = append(result, clean)
			}
		}
	}
	return result
}

// OptionalFloat returns a pointer to the parsed finite number, or nil when the
// parameter is missing, blank, malformed, NaN or infinite.
func OptionalFloat(values url.Values, key string) *float64 {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil
	}

	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return nil
	}
	return &parsed
}

// Trimmed returns the whitespace-trimmed value of key.
func Trimmed(values url.Values, key string) string {
	return strings.TrimSpace(values.Get(key))
}
