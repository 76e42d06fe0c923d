// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package access

import "maps"

// Capability is a coarse permission granted to roles by the role table.
type Capability string

// Capabilities.
const (
	CapManageStore       Capability = "manage_store"
	CapManageProducts    Capability = "manage_products"
	CapManageCategories  Capability = "manage_categories"
	CapManageOrders      Capability = "manage_orders"
	CapManageUsers       Capability = "manage_users"
	CapManageContent     Capability = "manage_content"
	CapManageCommissions Capability = "manage_commissions"
	CapViewCommissions   Capability = "view_commissions"
	CapViewAnalytics     Capability = "view_analytics"
	CapViewAudit         Capability = "view_audit"
	CapPlaceOrders       Capability = "place_orders"
	CapManageWishlist    Capability = "manage_wishlist"
)

// allCapabilities is granted to the privileged roles for completeness; they
// short-circuit before the table is read.
var allCapabilities = []Capability{
	CapManageStore, CapManageProducts, CapManageCategories, CapManageOrders,
	CapManageUsers, CapManageContent, CapManageCommissions, CapViewCommissions,
	CapViewAnalytics, CapViewAudit, CapPlaceOrders, CapManageWishlist,
}

var shopperCapabilities = []Capability{CapPlaceOrders, CapManageWishlist}

// rolePermissionTable is the static role to capability mapping. It is never
// mutated after package initialisation.
var rolePermissionTable = map[Role]map[Capability]bool{
	RoleCustomer:                set(shopperCapabilities...),
	RoleArchitectClient:         set(shopperCapabilities...),
	RoleCustomerArchitectClient: set(shopperCapabilities...),
	RoleArchitect:               set(append([]Capability{CapViewCommissions}, shopperCapabilities...)...),
	RoleSeller: set(append([]Capability{
		CapManageStore, CapManageProducts, CapManageOrders, CapViewAnalytics, CapViewCommissions,
	}, shopperCapabilities...)...),
	RoleAdmin:      set(allCapabilities...),
	RoleSuperAdmin: set(allCapabilities...),
}

// wildcardAction matches any action on a resource when no exact entry exists.
const wildcardAction = "*"

// capabilityMap resolves a (resource, action) pair to the capability it needs.
// Pairs absent from the map require a privileged role.
var capabilityMap = map[string]map[string]Capability{
	"store": {
		wildcardAction: CapManageStore,
	},
	"product": {
		wildcardAction: CapManageProducts,
	},
	"category": {
		wildcardAction: CapManageCategories,
	},
	"order": {
		"create":       CapPlaceOrders,
		"read":         CapPlaceOrders,
		wildcardAction: CapManageOrders,
	},
	"user": {
		wildcardAction: CapManageUsers,
	},
	"access_rule": {
		wildcardAction: CapManageUsers,
	},
	"content": {
		wildcardAction: CapManageContent,
	},
	"commission": {
		"read":         CapViewCommissions,
		wildcardAction: CapManageCommissions,
	},
	"payout": {
		wildcardAction: CapManageCommissions,
	},
	"analytics": {
		"read": CapViewAnalytics,
	},
	"audit": {
		"read": CapViewAudit,
	},
	"cart": {
		wildcardAction: CapPlaceOrders,
	},
	"wishlist": {
		wildcardAction: CapManageWishlist,
	},
}

// RequiredCapability returns the capability guarding (resource, action).
func RequiredCapability(resource, action string) (Capability, bool) {
	actions, ok := capabilityMap[resource]
	if !ok {
		return "", false
	}
	if capability, ok := actions[action]; ok {
		return capability, true
	}
	capability, ok := actions[wildcardAction]
	return capability, ok
}

// RoleGrants reports whether the role table gives role the capability.
func RoleGrants(role Role, capability Capability) bool {
	return rolePermissionTable[role][capability]
}

// CapabilitiesOf returns a copy of role's capability set.
func CapabilitiesOf(role Role) map[Capability]bool {
	return maps.Clone(rolePermissionTable[role])
}

func set(capabilities ...Capability) map[Capability]bool {
	result := make(map[Capability]bool, len(capabilities))
	for _, capability := range capabilities {
		result[capability] = true
	}
	return result
}
