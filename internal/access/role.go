// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package access

// Role is the profile field that selects a row of the role table.
type Role string

// Known roles.
const (
	RoleCustomer                Role = "customer"
	RoleSeller                  Role = "seller"
	RoleArchitect               Role = "architect"
	RoleArchitectClient         Role = "architect_client"
	RoleCustomerArchitectClient Role = "customer_architect_client"
	RoleAdmin                   Role = "admin"
	RoleSuperAdmin              Role = "super_admin"
)

// Roles lists every known role in display order.
var Roles = []Role{
	RoleCustomer,
	RoleArchitectClient,
	RoleCustomerArchitectClient,
	RoleArchitect,
	RoleSeller,
	RoleAdmin,
	RoleSuperAdmin,
}

// Valid reports whether role is one of [Roles]. Comparison is case-sensitive.
func (role Role) Valid() bool {
	_, ok := rolePermissionTable[role]
	return ok
}

// Privileged reports whether role bypasses rule and table lookups. Only the
// exact strings "admin" and "super_admin" qualify.
func (role Role) Privileged() bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}

// IsArchitect reports whether role can receive referral commissions.
func (role Role) IsArchitect() bool {
	return role == RoleArchitect
}
