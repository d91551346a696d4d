package points

import (
	"context"
	"encoding/json"
	"net/http"

	"forumapp/internal/api"
	"forumapp/internal/metrics"
	"forumapp/internal/shop"
	"forumapp/internal/tenant"
	"forumapp/internal/user"
	"forumapp/pkg/db"
)

const historyLimit = 50

// Store is the handler-facing slice of Repository.
type Store interface {
	Award(ctx context.Context, shopID, userID string, action Action, points int, awardedBy string) (int, error)
	Total(ctx context.Context, shopID, userID string) (int, error)
	History(ctx context.Context, shopID, userID string, limit int) ([]Transaction, error)
}

// ShopFinder provides the shop row, for the points multiplier.
type ShopFinder interface {
	FindByID(ctx context.Context, id string) (*shop.Shop, error)
}

// UserFinder checks award targets exist within the tenant.
type UserFinder interface {
	FindByID(ctx context.Context, shopID, id string) (*user.User, error)
}

type Handlers struct {
	Points Store
	Shops  ShopFinder
	Users  UserFinder
}

// Get returns the caller's current total and recent history.
func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	auth := api.AuthFromContext(r.Context())
	if auth == nil || auth.UserID == "" {
		api.WriteError(w, http.StatusUnauthorized, api.CodeUnauthorized, "missing credentials")
		return
	}
	shopID, err := tenant.Resolve(r.Context())
	if err != nil {
		api.WriteNotFound(w, "shop not found")
		return
	}
	if err := tenant.EnsureIsolation(shopID); err != nil {
		api.WriteNotFound(w, "shop not found")
		return
	}

	total, err := h.Points.Total(r.Context(), shopID, auth.UserID)
	if err != nil {
		if db.IsNotFound(err) {
			api.WriteNotFound(w, "user not found")
			return
		}
		api.WriteInternal(w, err)
		return
	}
	history, err := h.Points.History(r.Context(), shopID, auth.UserID, historyLimit)
	if err != nil {
		api.WriteInternal(w, err)
		return
	}
	if history == nil {
		history = []Transaction{}
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"total":   total,
		"history": history,
	})
}

type awardRequest struct {
	TargetUserID string `json:"targetUserId" validate:"required"`
	Action       string `json:"action" validate:"required"`
}

// Award credits points to a target user. Admin-only (router-enforced). The
// action enum is validated before anything is written.
func (h Handlers) Award(w http.ResponseWriter, r *http.Request) {
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

	var req awardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "invalid json")
		return
	}
	if err := api.Validate(req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, err.Error())
		return
	}

	action, err := ParseAction(req.Action)
	if err != nil {
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

	s, err := h.Shops.FindByID(r.Context(), shopID)
	if err != nil {
		if db.IsNotFound(err) {
			api.WriteNotFound(w, "shop not found")
			return
		}
		api.WriteInternal(w, err)
		return
	}

	awarded := action.Value(s.PointsMultiplier)
	awardedBy := ""
	if auth != nil {
		awardedBy = auth.UserID
	}

	newTotal, err := h.Points.Award(r.Context(), shopID, req.TargetUserID, action, awarded, awardedBy)
	if err != nil {
		if db.IsNotFound(err) {
			api.WriteNotFound(w, "user not found")
			return
		}
		api.WriteInternal(w, err)
		return
	}

	metrics.PointsAwardedTotal.WithLabelValues(string(action)).Add(float64(awarded))

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"newTotal":      newTotal,
		"pointsAwarded": awarded,
	})
}
