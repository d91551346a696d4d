package api

import "context"

type ctxKey string

const ctxKeyAuth ctxKey = "auth"

type AuthMethod string

const (
	AuthMethodSession AuthMethod = "session"
	AuthMethodToken   AuthMethod = "token"
	AuthMethodDev     AuthMethod = "dev"
)

// AuthContext is the normalized result of either credential path. It is
// constructed fresh per request and never cached beyond it.
type AuthContext struct {
	UserID      string
	ShopID      string
	ShopDomain  string
	Role        string
	IsShopOwner bool
	Method      AuthMethod
}

func WithAuth(ctx context.Context, a *AuthContext) context.Context {
	return context.WithValue(ctx, ctxKeyAuth, a)
}

func AuthFromContext(ctx context.Context) *AuthContext {
	v := ctx.Value(ctxKeyAuth)
	if v == nil {
		return nil
	}
	a, _ := v.(*AuthContext)
	return a
}
