package httpapi

import (
	"context"
	"fmt"

	"forumapp/internal/api"
	"forumapp/internal/shop"
	"forumapp/internal/user"
	"forumapp/pkg/db"
)

// directory adapts the shop and user repositories to the auth middleware's
// Directory interface, translating no-rows into api.ErrNotFound.
type directory struct {
	shops *shop.Repository
	users *user.Repository
}

func (d directory) ShopByDomain(ctx context.Context, domain string) (*api.ShopIdentity, error) {
	s, err := d.shops.FindByDomain(ctx, domain)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, fmt.Errorf("shop %q: %w", domain, api.ErrNotFound)
		}
		return nil, err
	}
	if s.Status != "active" {
		return nil, fmt.Errorf("shop %q inactive: %w", domain, api.ErrNotFound)
	}
	return &api.ShopIdentity{ID: s.ID, Domain: s.Domain, Name: s.Name}, nil
}

func (d directory) ShopOwner(ctx context.Context, shopID string) (*api.OwnerIdentity, error) {
	u, err := d.users.FindOwner(ctx, shopID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, fmt.Errorf("shop owner: %w", api.ErrNotFound)
		}
		return nil, err
	}
	return &api.OwnerIdentity{UserID: u.ID, Role: u.Role}, nil
}
