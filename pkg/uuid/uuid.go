// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid generates the time-ordered identifiers used as primary keys.

Version 7 values sort by creation time, which keeps B-tree inserts append-only
and lets list queries order by id.
*/
package uuid

import "github.com/google/uuid"

// New generates a new UUIDv7 string. It panics only if the OS entropy source fails.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}
	return id.String()
}
