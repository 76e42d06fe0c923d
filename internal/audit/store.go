// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audit

import "context"

// Repository persists audit entries.
type Repository interface {
	Insert(ctx context.Context, entry *Entry) error
	List(ctx context.Context, filter Filter, limit, offset int) ([]Entry, int, error)
}
