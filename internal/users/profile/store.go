// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import (
	"context"

	"github.com/taibuivan/sleepora/internal/access"
)

// Repository is the persistence contract for profiles.
type Repository interface {
	FindByID(ctx context.Context, id string) (*Profile, error)
	FindBySubject(ctx context.Context, subject string) (*Profile, error)

	// Create inserts profile unless its subject already exists, and returns the
	// stored row either way.
	Create(ctx context.Context, profile *Profile) (*Profile, error)

	// SyncIdentity refreshes the claims-derived fields of the profile for subject.
	SyncIdentity(ctx context.Context, identity Identity) (*Profile, error)

	UpdateRole(ctx context.Context, id string, role access.Role) (*Profile, error)
	Deactivate(ctx context.Context, id string) (*Profile, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]Profile, int, error)
}
