package category

import (
	"context"
	"encoding/json"
	"net/http"

	"forumapp/internal/api"
	"forumapp/internal/tenant"
)

// Store is the handler-facing slice of Repository.
type Store interface {
	Create(ctx context.Context, c *Category) (*Category, error)
	ListActive(ctx context.Context, shopID string) ([]Category, error)
}

type Handlers struct {
	Categories Store
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

	cats, err := h.Categories.ListActive(r.Context(), shopID)
	if err != nil {
		api.WriteInternal(w, err)
		return
	}
	if cats == nil {
		cats = []Category{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"categories": cats})
}

type createRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=64"`
	Description string `json:"description"`
	Color       string `json:"color" validate:"required"`
	SortOrder   int    `json:"sortOrder"`
}

// Create adds a category. Admin-only (router-enforced); name and color are
// required, sort order defaults to 0.
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

	c, err := h.Categories.Create(r.Context(), &Category{
		ShopID:      shopID,
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		api.WriteInternal(w, err)
		return
	}

	api.WriteJSON(w, http.StatusCreated, c)
}
