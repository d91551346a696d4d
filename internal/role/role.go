package role

import (
	"time"

	"forumapp/internal/rbac"
)

type Role struct {
	ID          string   `json:"id"`
	ShopID      string   `json:"shopId"`
	Name        string   `json:"name"`
	DisplayName string   `json:"displayName"`
	Color       string   `json:"color"`
	Permissions []string `json:"permissions"`
	IsDefault   bool     `json:"isDefault"`

	CreatedAt time.Time `json:"createdAt"`
}

// DefaultRoles returns the three roles provisioned once per shop, in the
// order they are created.
func DefaultRoles() []Role {
	return []Role{
		{
			Name:        rbac.RoleAdmin,
			DisplayName: "Administrator",
			Color:       "#EF4444",
			Permissions: rbac.Strings(rbac.PermissionsFor(rbac.RoleAdmin)),
			IsDefault:   true,
		},
		{
			Name:        rbac.RoleModerator,
			DisplayName: "Moderator",
			Color:       "#3B82F6",
			Permissions: rbac.Strings(rbac.PermissionsFor(rbac.RoleModerator)),
			IsDefault:   true,
		},
		{
			Name:        rbac.RoleMember,
			DisplayName: "Member",
			Color:       "#6B7280",
			Permissions: rbac.Strings(rbac.PermissionsFor(rbac.RoleMember)),
			IsDefault:   true,
		},
	}
}
