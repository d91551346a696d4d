package shop

import (
	"context"
	"encoding/json"
	"net/http"

	"forumapp/internal/api"
	"forumapp/internal/tenant"
	"forumapp/pkg/db"
)

// Store is the handler-facing slice of Repository.
type Store interface {
	FindByID(ctx context.Context, id string) (*Shop, error)
	CompleteOnboardingTask(ctx context.Context, shopID string, task OnboardingTask) (*Shop, error)
}

type Handlers struct {
	Shops Store
}

type currentResponse struct {
	ID         string          `json:"id"`
	ShopDomain string          `json:"shopDomain"`
	ShopName   string          `json:"shopName"`
	Onboarding OnboardingState `json:"onboarding"`
}

func (h Handlers) Current(w http.ResponseWriter, r *http.Request) {
	shopID, err := tenant.Resolve(r.Context())
	if err != nil {
		api.WriteNotFound(w, "shop not found")
		return
	}
	if err := tenant.EnsureIsolation(shopID); err != nil {
		api.WriteNotFound(w, "shop not found")
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

	api.WriteJSON(w, http.StatusOK, currentResponse{
		ID:         s.ID,
		ShopDomain: s.Domain,
		ShopName:   s.Name,
		Onboarding: s.Onboarding,
	})
}

type onboardingRequest struct {
	Task string `json:"task" validate:"required"`
}

func (h Handlers) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	shopID, err := tenant.Resolve(r.Context())
	if err != nil {
		api.WriteNotFound(w, "shop not found")
		return
	}
	if err := tenant.EnsureIsolation(shopID); err != nil {
		api.WriteNotFound(w, "shop not found")
		return
	}

	var req onboardingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "invalid json")
		return
	}
	if err := api.Validate(req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, err.Error())
		return
	}

	task, err := ParseOnboardingTask(req.Task)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, err.Error())
		return
	}

	s, err := h.Shops.CompleteOnboardingTask(r.Context(), shopID, task)
	if err != nil {
		if db.IsNotFound(err) {
			api.WriteNotFound(w, "shop not found")
			return
		}
		api.WriteInternal(w, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{"onboarding": s.Onboarding})
}
