package user

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"forumapp/internal/api"
	"forumapp/internal/pagination"
	"forumapp/internal/rbac"
	"forumapp/internal/role"
	"forumapp/internal/tenant"
	"forumapp/pkg/db"
)

// Store is the handler-facing slice of Repository.
type Store interface {
	FindByID(ctx context.Context, shopID, id string) (*User, error)
	List(ctx context.Context, shopID string, limit, offset int) ([]User, error)
	Count(ctx context.Context, shopID string) (int, error)
	UpdateRole(ctx context.Context, shopID, userID, roleName string) (*User, error)
	SetBanned(ctx context.Context, shopID, userID string, banned bool) (*User, error)
}

// RoleFinder resolves role names within the tenant for role assignment.
type RoleFinder interface {
	FindByName(ctx context.Context, shopID, name string) (*role.Role, error)
}

type Handlers struct {
	Users Store
	Roles RoleFinder
}

// List is the member directory. Auth required; moderation flags are visible
// to everyone in the shop, credentials to no one.
func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	shopID, err := tenant.Resolve(r.Context())
	if err != nil {
		api.WriteNotFound(w, "shop not found")
		return
	}
	if err := tenant.EnsureIsolation(shopID); err != nil {
		api.WriteNotFound(w, "shop not found")
		return
	}

	page := pagination.Parse(r)
	users, err := h.Users.List(r.Context(), shopID, page.Limit, page.Offset())
	if err != nil {
		api.WriteInternal(w, err)
		return
	}
	total, err := h.Users.Count(r.Context(), shopID)
	if err != nil {
		api.WriteInternal(w, err)
		return
	}

	items := make([]PublicUser, 0, len(users))
	for i := range users {
		items = append(items, users[i].Public())
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"items":      items,
		"pagination": page.Envelope(total),
	})
}

type assignRoleRequest struct {
	RoleName string `json:"roleName" validate:"required"`
}

// AssignRole updates the target user's role. Admin-only (router-enforced).
// The target and the role must both exist within the acting shop; cross-shop
// ids produce the same 404 as missing ones.
func (h Handlers) AssignRole(w http.ResponseWriter, r *http.Request) {
	shopID, err := tenant.Resolve(r.Context())
	if err != nil {
		api.WriteNotFound(w, "shop not found")
		return
	}
	if err := tenant.EnsureIsolation(shopID); err != nil {
		api.WriteNotFound(w, "shop not found")
		return
	}

	targetID := chi.URLParam(r, "userID")
	if targetID == "" {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "missing user id")
		return
	}

	var req assignRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "invalid json")
		return
	}
	if err := api.Validate(req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, err.Error())
		return
	}

	if _, err := h.Users.FindByID(r.Context(), shopID, targetID); err != nil {
		if db.IsNotFound(err) {
			api.WriteNotFound(w, "user not found")
			return
		}
		api.WriteInternal(w, err)
		return
	}

	roleName := rbac.NormalizeRole(req.RoleName)
	roleInfo, err := h.Roles.FindByName(r.Context(), shopID, roleName)
	if err != nil {
		if db.IsNotFound(err) {
			api.WriteNotFound(w, "role not found")
			return
		}
		api.WriteInternal(w, err)
		return
	}

	updated, err := h.Users.UpdateRole(r.Context(), shopID, targetID, roleInfo.Name)
	if err != nil {
		if db.IsNotFound(err) {
			api.WriteNotFound(w, "user not found")
			return
		}
		api.WriteInternal(w, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"user":     updated.Public(),
		"roleInfo": roleInfo,
		"message":  "role assigned",
	})
}

// Ban marks the target user banned. Requires the ban-users permission.
func (h Handlers) Ban(w http.ResponseWriter, r *http.Request) {
	h.setBanned(w, r, true)
}

// Unban lifts a ban.
func (h Handlers) Unban(w http.ResponseWriter, r *http.Request) {
	h.setBanned(w, r, false)
}

func (h Handlers) setBanned(w http.ResponseWriter, r *http.Request, banned bool) {
	auth := api.AuthFromContext(r.Context())
	shopID, err := tenant.Resolve(r.Context())
	if err != nil {
		api.WriteNotFound(w, "shop not found")
		return
	}
	if err := tenant.EnsureIsolation(shopID); err != nil {
		api.WriteNotFound(w, "shop not found")
		return
	}

	targetID := chi.URLParam(r, "userID")
	if targetID == "" {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "missing user id")
		return
	}
	if auth != nil && auth.UserID == targetID {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "cannot ban yourself")
		return
	}

	target, err := h.Users.FindByID(r.Context(), shopID, targetID)
	if err != nil {
		if db.IsNotFound(err) {
			api.WriteNotFound(w, "user not found")
			return
		}
		api.WriteInternal(w, err)
		return
	}
	// Shop owners cannot be banned, even by other admins.
	if target.IsShopOwner {
		api.WriteError(w, http.StatusForbidden, api.CodeForbidden, "cannot ban the shop owner")
		return
	}

	updated, err := h.Users.SetBanned(r.Context(), shopID, targetID, banned)
	if err != nil {
		if db.IsNotFound(err) {
			api.WriteNotFound(w, "user not found")
			return
		}
		api.WriteInternal(w, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{"user": updated.Public()})
}
