package admin

import (
	"context"
	"encoding/json"
	"net/http"

	"forumapp/internal/api"
	"forumapp/internal/rbac"
	"forumapp/internal/tenant"
	"forumapp/internal/user"
	"forumapp/pkg/db"
)

// UserStore is the handler-facing slice of the user repository.
type UserStore interface {
	HasAdmin(ctx context.Context, shopID string) (bool, error)
	FindByID(ctx context.Context, shopID, id string) (*user.User, error)
	UpdateRole(ctx context.Context, shopID, userID, roleName string) (*user.User, error)
}

type Handlers struct {
	Users UserStore
}

// Check reports whether the tenant has any admin. The shop id itself is never
// exposed.
func (h Handlers) Check(w http.ResponseWriter, r *http.Request) {
	shopID, err := tenant.Resolve(r.Context())
	if err != nil {
		api.WriteNotFound(w, "shop not found")
		return
	}
	if err := tenant.EnsureIsolation(shopID); err != nil {
		api.WriteNotFound(w, "shop not found")
		return
	}

	hasAdmin, err := h.Users.HasAdmin(r.Context(), shopID)
	if err != nil {
		api.WriteInternal(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"hasAdmin": hasAdmin})
}

type promoteRequest struct {
	TargetUserID string `json:"targetUserId" validate:"required"`
}

type promoteResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Promote raises the target user to ADMIN. Admin-only (router-enforced).
func (h Handlers) Promote(w http.ResponseWriter, r *http.Request) {
	shopID, err := tenant.Resolve(r.Context())
	if err != nil {
		api.WriteNotFound(w, "shop not found")
		return
	}
	if err := tenant.EnsureIsolation(shopID); err != nil {
		api.WriteNotFound(w, "shop not found")
		return
	}

	var req promoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "invalid json")
		return
	}
	if err := api.Validate(req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, err.Error())
		return
	}

	if _, err := h.Users.FindByID(r.Context(), shopID, req.TargetUserID); err != nil {
		if db.IsNotFound(err) {
			api.WriteNotFound(w, "user not found")
			return
		}
		api.WriteInternal(w, err)
		return
	}

	updated, err := h.Users.UpdateRole(r.Context(), shopID, req.TargetUserID, rbac.RoleAdmin)
	if err != nil {
		if db.IsNotFound(err) {
			api.WriteNotFound(w, "user not found")
			return
		}
		api.WriteInternal(w, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, promoteResponse{
		ID:    updated.ID,
		Email: updated.Email,
		Name:  updated.Name,
		Role:  updated.Role,
	})
}
