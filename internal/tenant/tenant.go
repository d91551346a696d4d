// Package tenant holds the shop-resolution and isolation rules every
// data-accessing handler goes through. The shop id only ever comes from a
// verified credential (session claims or session token); it is never read
// from client-supplied query parameters, so a request without a credential
// cannot name a tenant.
package tenant

import (
	"context"
	"errors"

	"forumapp/internal/api"
)

// ErrShopNotResolved means no source yielded a shop id. Handlers translate
// this into a 404-class response rather than defaulting to a guessable shop.
var ErrShopNotResolved = errors.New("shop not resolved")

// Resolve extracts the active shop id from the request context. The auth
// middleware is the only writer of that context, which keeps the shop id
// server-derived.
func Resolve(ctx context.Context) (string, error) {
	auth := api.AuthFromContext(ctx)
	if auth == nil || auth.ShopID == "" {
		return "", ErrShopNotResolved
	}
	return auth.ShopID, nil
}

// EnsureIsolation is the fail-fast checkpoint before any query is built: it
// rejects an empty shop id so a missing-tenant bug surfaces as an explicit
// error instead of an unscoped query leaking cross-tenant data. Repositories
// still carry their own `shop_id = $n` filters; this is a precondition, not
// the filter itself.
func EnsureIsolation(shopID string) error {
	if shopID == "" {
		return ErrShopNotResolved
	}
	return nil
}
