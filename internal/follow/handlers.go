package follow

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"forumapp/internal/api"
	"forumapp/internal/pagination"
	"forumapp/internal/tenant"
	"forumapp/internal/user"
	"forumapp/pkg/db"
)

// Store is the handler-facing slice of Repository.
type Store interface {
	Create(ctx context.Context, shopID, followerID, followingID string) (*Follow, error)
	Delete(ctx context.Context, shopID, followerID, followingID string) (bool, error)
	Followers(ctx context.Context, shopID, userID string, limit, offset int) ([]user.PublicUser, error)
	Following(ctx context.Context, shopID, userID string, limit, offset int) ([]user.PublicUser, error)
	CountFollowers(ctx context.Context, shopID, userID string) (int, error)
	CountFollowing(ctx context.Context, shopID, userID string) (int, error)
}

// UserFinder checks the target user exists within the tenant, so absent and
// cross-shop ids both read as 404.
type UserFinder interface {
	FindByID(ctx context.Context, shopID, id string) (*user.User, error)
}

type Handlers struct {
	Follows Store
	Users   UserFinder
}

// Follow creates an edge from the caller to the target user.
func (h Handlers) Follow(w http.ResponseWriter, r *http.Request) {
	auth, shopID, targetID, ok := h.resolveTarget(w, r)
	if !ok {
		return
	}
	if auth.UserID == targetID {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "cannot follow yourself")
		return
	}

	f, err := h.Follows.Create(r.Context(), shopID, auth.UserID, targetID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			api.WriteError(w, http.StatusConflict, api.CodeConflict, "already following")
			return
		}
		api.WriteInternal(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, f)
}

// Unfollow removes the edge if present.
func (h Handlers) Unfollow(w http.ResponseWriter, r *http.Request) {
	auth, shopID, targetID, ok := h.resolveTarget(w, r)
	if !ok {
		return
	}

	removed, err := h.Follows.Delete(r.Context(), shopID, auth.UserID, targetID)
	if err != nil {
		api.WriteInternal(w, err)
		return
	}
	if !removed {
		api.WriteNotFound(w, "not following")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"unfollowed": true})
}

// Followers returns the target's followers, paginated.
func (h Handlers) Followers(w http.ResponseWriter, r *http.Request) {
	_, shopID, targetID, ok := h.resolveTarget(w, r)
	if !ok {
		return
	}

	page := pagination.Parse(r)
	items, err := h.Follows.Followers(r.Context(), shopID, targetID, page.Limit, page.Offset())
	if err != nil {
		api.WriteInternal(w, err)
		return
	}
	total, err := h.Follows.CountFollowers(r.Context(), shopID, targetID)
	if err != nil {
		api.WriteInternal(w, err)
		return
	}
	if items == nil {
		items = []user.PublicUser{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"items":      items,
		"pagination": page.Envelope(total),
	})
}

// Following returns who the target follows, paginated.
func (h Handlers) Following(w http.ResponseWriter, r *http.Request) {
	_, shopID, targetID, ok := h.resolveTarget(w, r)
	if !ok {
		return
	}

	page := pagination.Parse(r)
	items, err := h.Follows.Following(r.Context(), shopID, targetID, page.Limit, page.Offset())
	if err != nil {
		api.WriteInternal(w, err)
		return
	}
	total, err := h.Follows.CountFollowing(r.Context(), shopID, targetID)
	if err != nil {
		api.WriteInternal(w, err)
		return
	}
	if items == nil {
		items = []user.PublicUser{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"items":      items,
		"pagination": page.Envelope(total),
	})
}

// resolveTarget runs the shared preamble: tenant resolution, isolation check,
// and target existence within the tenant. Writes the response on failure.
func (h Handlers) resolveTarget(w http.ResponseWriter, r *http.Request) (*api.AuthContext, string, string, bool) {
	auth := api.AuthFromContext(r.Context())
	// Token-authenticated shops without a provisioned owner account carry no
	// user id; follow edges need an acting user row.
	if auth == nil || auth.UserID == "" {
		api.WriteError(w, http.StatusUnauthorized, api.CodeUnauthorized, "missing credentials")
		return nil, "", "", false
	}

	shopID, err := tenant.Resolve(r.Context())
	if err != nil {
		api.WriteNotFound(w, "shop not found")
		return nil, "", "", false
	}
	if err := tenant.EnsureIsolation(shopID); err != nil {
		api.WriteNotFound(w, "shop not found")
		return nil, "", "", false
	}

	targetID := chi.URLParam(r, "userID")
	if targetID == "" {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "missing user id")
		return nil, "", "", false
	}

	if _, err := h.Users.FindByID(r.Context(), shopID, targetID); err != nil {
		if db.IsNotFound(err) {
			api.WriteNotFound(w, "user not found")
			return nil, "", "", false
		}
		api.WriteInternal(w, err)
		return nil, "", "", false
	}

	return auth, shopID, targetID, true
}
