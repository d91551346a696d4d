// Package rbac is the single source of truth for role names and the
// permissions each role grants. Handlers consult it instead of redefining
// permission lists inline.
package rbac

import "strings"

type Permission string

const (
	PermManageUsers      Permission = "manage_users"
	PermManageRoles      Permission = "manage_roles"
	PermManageCategories Permission = "manage_categories"
	PermBanUsers         Permission = "ban_users"
	PermAwardPoints      Permission = "award_points"
	PermManagePosts      Permission = "manage_posts"
	PermDeleteComments   Permission = "delete_comments"
	PermCreatePosts      Permission = "create_posts"
	PermCreateComments   Permission = "create_comments"
)

const (
	RoleAdmin     = "ADMIN"
	RoleModerator = "MODERATOR"
	RoleMember    = "MEMBER"
)

// Bundle names selectable for custom roles. A custom role picks one of these
// canned permission sets at creation; arbitrary flag combinations are not
// supported.
const (
	BundleAdmin     = "admin"
	BundleModerator = "moderator"
)

var memberPerms = []Permission{
	PermCreatePosts,
	PermCreateComments,
}

var moderatorPerms = append([]Permission{
	PermManagePosts,
	PermDeleteComments,
	PermBanUsers,
}, memberPerms...)

var adminPerms = append([]Permission{
	PermManageUsers,
	PermManageRoles,
	PermManageCategories,
	PermAwardPoints,
}, moderatorPerms...)

var rolePerms = map[string][]Permission{
	RoleAdmin:     adminPerms,
	RoleModerator: moderatorPerms,
	RoleMember:    memberPerms,
}

// Allows reports whether a role grants a permission. Unknown roles grant
// nothing.
func Allows(role string, p Permission) bool {
	for _, have := range rolePerms[NormalizeRole(role)] {
		if have == p {
			return true
		}
	}
	return false
}

// PermissionsFor returns the permission set for a default role, or nil for an
// unknown role. Callers must not mutate the returned slice.
func PermissionsFor(role string) []Permission {
	return rolePerms[NormalizeRole(role)]
}

// Bundle resolves a custom-role bundle name to its permission set.
func Bundle(name string) ([]Permission, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case BundleAdmin:
		return adminPerms, true
	case BundleModerator:
		return moderatorPerms, true
	default:
		return nil, false
	}
}

// IsDefaultRole reports whether name is one of the three provisioned roles.
func IsDefaultRole(name string) bool {
	switch NormalizeRole(name) {
	case RoleAdmin, RoleModerator, RoleMember:
		return true
	}
	return false
}

// NormalizeRole upper-cases and trims a role name. Role names are stored and
// compared upper-cased.
func NormalizeRole(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// Strings converts a permission set to plain strings for persistence.
func Strings(perms []Permission) []string {
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}
