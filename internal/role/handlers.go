package role

import (
	"context"
	"encoding/json"
	"net/http"

	"forumapp/internal/api"
	"forumapp/internal/rbac"
	"forumapp/internal/tenant"
	"forumapp/pkg/db"
)

// Store is the handler-facing slice of Repository.
type Store interface {
	Create(ctx context.Context, rec *Role) (*Role, error)
	FindByName(ctx context.Context, shopID, name string) (*Role, error)
	List(ctx context.Context, shopID string) ([]Role, error)
	ListDefaults(ctx context.Context, shopID string) ([]Role, error)
}

type Handlers struct {
	Roles Store
}

// Init provisions the three default roles for the tenant. Idempotent: a
// second call returns the existing set with a 200 and creates nothing.
func (h Handlers) Init(w http.ResponseWriter, r *http.Request) {
	shopID, err := tenant.Resolve(r.Context())
	if err != nil {
		api.WriteNotFound(w, "shop not found")
		return
	}
	if err := tenant.EnsureIsolation(shopID); err != nil {
		api.WriteNotFound(w, "shop not found")
		return
	}

	existing, err := h.Roles.ListDefaults(r.Context(), shopID)
	if err != nil {
		api.WriteInternal(w, err)
		return
	}
	if len(existing) > 0 {
		api.WriteJSON(w, http.StatusOK, map[string]any{"roles": existing, "created": false})
		return
	}

	created := make([]Role, 0, 3)
	for _, def := range DefaultRoles() {
		def.ShopID = shopID
		rec, err := h.Roles.Create(r.Context(), &def)
		if err != nil {
			// A concurrent init won the race; the constraint is the arbiter.
			if db.IsUniqueViolation(err) {
				existing, lerr := h.Roles.ListDefaults(r.Context(), shopID)
				if lerr != nil {
					api.WriteInternal(w, lerr)
					return
				}
				api.WriteJSON(w, http.StatusOK, map[string]any{"roles": existing, "created": false})
				return
			}
			api.WriteInternal(w, err)
			return
		}
		created = append(created, *rec)
	}

	api.WriteJSON(w, http.StatusCreated, map[string]any{"roles": created, "created": true})
}

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

	roles, err := h.Roles.List(r.Context(), shopID)
	if err != nil {
		api.WriteInternal(w, err)
		return
	}
	if roles == nil {
		roles = []Role{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"roles": roles})
}

type createRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=32"`
	DisplayName string `json:"displayName"`
	Color       string `json:"color" validate:"required"`
	// Bundle selects a canned permission set: "admin" or "moderator".
	Bundle string `json:"bundle" validate:"required,oneof=admin moderator"`
}

// Create adds a custom role. Admin-only (enforced by the router); the name is
// upper-cased and must be unique within the shop.
func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	shopID, err := tenant.Resolve(r.Context())
	if err != nil {
		api.WriteNotFound(w, "shop not found")
		return
	}
	if err := tenant.EnsureIsolation(shopID); err != nil {
		api.WriteNotFound(w, "shop not found")
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "invalid json")
		return
	}
	if err := api.Validate(req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, err.Error())
		return
	}

	name := rbac.NormalizeRole(req.Name)
	perms, ok := rbac.Bundle(req.Bundle)
	if !ok {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "unknown bundle")
		return
	}

	// Advisory pre-check for a friendlier error; the unique constraint still
	// decides under races.
	if _, err := h.Roles.FindByName(r.Context(), shopID, name); err == nil {
		api.WriteError(w, http.StatusConflict, api.CodeConflict, "role name already exists")
		return
	} else if !db.IsNotFound(err) {
		api.WriteInternal(w, err)
		return
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = req.Name
	}

	rec, err := h.Roles.Create(r.Context(), &Role{
		ShopID:      shopID,
		Name:        name,
		DisplayName: displayName,
		Color:       req.Color,
		Permissions: rbac.Strings(perms),
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			api.WriteError(w, http.StatusConflict, api.CodeConflict, "role name already exists")
			return
		}
		api.WriteInternal(w, err)
		return
	}

	api.WriteJSON(w, http.StatusCreated, rec)
}
