package auth

import (
	"net/http"
	"slices"
)

// Roles
const (
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleFinance    = "finance"
	RoleContractor = "contractor"
)

var Roles = []string{RoleAdmin, RoleManager, RoleFinance, RoleContractor}

// Permissions
const (
	PermissionDelete           = "resource:delete"
	PermissionFinanceStatus    = "finance:status"
	PermissionApproveTimecards = "timecard:approve"
	PermissionManageTemplates  = "template:manage"
	PermissionPlatform         = "platform:admin"
)

var rolePermissions = map[string][]string{
	RoleAdmin: {
		PermissionDelete,
		PermissionFinanceStatus,
		PermissionApproveTimecards,
		PermissionManageTemplates,
		PermissionPlatform,
	},
	RoleManager: {
		PermissionDelete,
		PermissionFinanceStatus,
		PermissionApproveTimecards,
		PermissionManageTemplates,
	},
	RoleFinance: {
		PermissionFinanceStatus,
	},
	RoleContractor: {},
}

// HasPermission reports whether role grants permission.
func HasPermission(role, permission string) bool {
	return slices.Contains(rolePermissions[role], permission)
}

// ValidRole reports whether role is one of Roles.
func ValidRole(role string) bool {
	return slices.Contains(Roles, role)
}

// RequirePermission must run after JWTAuthMiddleware.
func RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, ok := GetClaims(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if !HasPermission(c.Role, permission) {
				writeError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
