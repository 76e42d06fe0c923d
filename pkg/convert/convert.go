// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package convert provides fault-tolerant string conversions for query parameters.

Use it only where a malformed value and a missing value mean the same thing.
*/
package convert

import (
	"strconv"
	"strings"
)

// ToIntD converts str to an int, returning def when str is empty or malformed.
func ToIntD(str string, def int) int {
	str = strings.TrimSpace(str)
	if str == "" {
		return def
	}
	if v, err := strconv.Atoi(str); err == nil {
		return v
	}
	return def
}

// ToBool parses "true", "1", "false", "0" and friends. It returns false on
// empty or malformed input.
func ToBool(s string) bool {
	v, _ := strconv.ParseBool(strings.TrimSpace(s))
	return v
}
