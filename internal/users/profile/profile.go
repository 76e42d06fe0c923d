// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package profile keeps the local profile of each identity-provider subject.
//
// A profile is created as an active customer on the first authenticated call
// to GET /me and is never hard-deleted. Role changes and deactivation are
// administrative operations guarded by the access package and audited.
package profile

import (
	"time"

	"github.com/taibuivan/sleepora/internal/access"
)

// Profile is the local record of a storefront user.
type Profile struct {
	ID          string      `json:"id"`
	Subject     string      `json:"subject"`
	Email       string      `json:"email"`
	DisplayName string      `json:"display_name"`
	Role        access.Role `json:"role"`
	IsActive    bool        `json:"is_active"`
	IsVerified  bool        `json:"is_verified"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Filter narrows an admin listing.
type Filter struct {
	Role     access.Role
	IsActive *bool
	Search   string
}

// Identity is the subset of token claims synced into a profile.
type Identity struct {
	Subject     string
	Email       string
	DisplayName string
	IsVerified  bool
}
