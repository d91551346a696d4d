package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"forumapp/internal/metrics"
	"forumapp/internal/rbac"
	"forumapp/internal/session"
	"forumapp/pkg/config"
	"forumapp/pkg/shopify"
)

// ShopIdentity is the middleware's view of a shop row.
type ShopIdentity struct {
	ID     string
	Domain string
	Name   string
}

// OwnerIdentity is the middleware's view of the shop owner's user row.
type OwnerIdentity struct {
	UserID string
	Role   string
}

var ErrNotFound = errors.New("not found")

// Directory resolves shops and shop owners for the token and dev credential
// paths. Implementations must return ErrNotFound (wrapped or not) for absent
// rows.
type Directory interface {
	ShopByDomain(ctx context.Context, domain string) (*ShopIdentity, error)
	ShopOwner(ctx context.Context, shopID string) (*OwnerIdentity, error)
}

// Authenticate normalizes the two credential paths into one AuthContext:
//
//   - Authorization: Bearer <jwt>  → Shopify embedded session token. Verified
//     against the app secret; the dest claim names the shop, and the acting
//     principal is that shop's owner account.
//   - Session cookie → server-side session lookup; role/shop claims were
//     embedded at issuance.
//
// The paths are mutually exclusive: a bearer header always selects the token
// path. In non-prod, X-Shop-Domain (or DEV_SHOP_DOMAIN) acts as the shop
// owner so local tooling works without real credentials.
func Authenticate(cfg config.Config, sessions session.Store, dir Directory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := strings.TrimSpace(r.Header.Get("Authorization"))
			if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				token := strings.TrimSpace(authz[7:])
				authenticateToken(cfg, dir, token, next, w, r)
				return
			}

			if c, err := r.Cookie(cfg.Session.CookieName); err == nil && c.Value != "" {
				authenticateSession(sessions, c.Value, next, w, r)
				return
			}

			if !cfg.IsProd() {
				shopDomain := strings.TrimSpace(r.Header.Get("X-Shop-Domain"))
				if shopDomain == "" {
					shopDomain = strings.TrimSpace(cfg.DevShopDomain)
				}
				if shopDomain != "" {
					authenticateDev(dir, shopDomain, next, w, r)
					return
				}
			}

			metrics.AuthFailuresTotal.WithLabelValues("missing_credential").Inc()
			WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "missing credentials")
		})
	}
}

func authenticateToken(cfg config.Config, dir Directory, token string, next http.Handler, w http.ResponseWriter, r *http.Request) {
	vs, err := shopify.VerifySessionToken(token, cfg.Shopify.APIKey, cfg.Shopify.APISecret, time.Now())
	if err != nil {
		metrics.AuthFailuresTotal.WithLabelValues("invalid_token").Inc()
		WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid session token")
		return
	}

	s, err := dir.ShopByDomain(r.Context(), vs.ShopDomain)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			metrics.AuthFailuresTotal.WithLabelValues("unknown_shop").Inc()
			WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "unknown shop")
			return
		}
		WriteInternal(w, err)
		return
	}

	owner, err := dir.ShopOwner(r.Context(), s.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		WriteInternal(w, err)
		return
	}

	auth := &AuthContext{
		ShopID:      s.ID,
		ShopDomain:  s.Domain,
		Role:        rbac.RoleAdmin,
		IsShopOwner: true,
		Method:      AuthMethodToken,
	}
	if owner != nil {
		auth.UserID = owner.UserID
		auth.Role = owner.Role
	}

	next.ServeHTTP(w, r.WithContext(WithAuth(r.Context(), auth)))
}

func authenticateSession(sessions session.Store, id string, next http.Handler, w http.ResponseWriter, r *http.Request) {
	claims, err := sessions.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			metrics.AuthFailuresTotal.WithLabelValues("unknown_session").Inc()
			WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid session")
			return
		}
		WriteInternal(w, err)
		return
	}

	// A session without a shop claim is corrupt, not "no tenant". Fail hard
	// rather than defaulting to a guessable shop.
	if claims.ShopID == "" || claims.UserID == "" {
		metrics.AuthFailuresTotal.WithLabelValues("corrupt_session").Inc()
		WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid session")
		return
	}

	auth := &AuthContext{
		UserID:      claims.UserID,
		ShopID:      claims.ShopID,
		Role:        claims.Role,
		IsShopOwner: claims.IsShopOwner,
		Method:      AuthMethodSession,
	}
	next.ServeHTTP(w, r.WithContext(WithAuth(r.Context(), auth)))
}

func authenticateDev(dir Directory, shopDomain string, next http.Handler, w http.ResponseWriter, r *http.Request) {
	s, err := dir.ShopByDomain(r.Context(), shopDomain)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "unknown shop")
			return
		}
		WriteInternal(w, err)
		return
	}

	owner, err := dir.ShopOwner(r.Context(), s.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		WriteInternal(w, err)
		return
	}

	auth := &AuthContext{
		ShopID:      s.ID,
		ShopDomain:  s.Domain,
		Role:        rbac.RoleAdmin,
		IsShopOwner: true,
		Method:      AuthMethodDev,
	}
	if owner != nil {
		auth.UserID = owner.UserID
		auth.Role = owner.Role
	}

	next.ServeHTTP(w, r.WithContext(WithAuth(r.Context(), auth)))
}

// RequirePermission gates a route on the acting role holding a permission.
// Runs after Authenticate.
func RequirePermission(perm rbac.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := AuthFromContext(r.Context())
			if auth == nil {
				WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "missing credentials")
				return
			}
			if !rbac.Allows(auth.Role, perm) {
				WriteError(w, http.StatusForbidden, CodeForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
