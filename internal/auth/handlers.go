package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"forumapp/internal/api"
	"forumapp/internal/session"
	"forumapp/internal/shop"
	"forumapp/internal/user"
	"forumapp/pkg/config"
	"forumapp/pkg/db"
	"forumapp/pkg/logger"
	"forumapp/pkg/shopify"
)

// ShopStore is the handler-facing slice of the shop repository.
type ShopStore interface {
	Upsert(ctx context.Context, domain, accessToken string) (*shop.Shop, error)
	FindByID(ctx context.Context, id string) (*shop.Shop, error)
	FindByDomain(ctx context.Context, domain string) (*shop.Shop, error)
	UpdateName(ctx context.Context, id, name string) error
}

// UserStore is the handler-facing slice of the user repository.
type UserStore interface {
	UpsertOwner(ctx context.Context, shopID, email, name string) (*user.User, error)
	FindByID(ctx context.Context, shopID, id string) (*user.User, error)
	FindByEmail(ctx context.Context, shopID, email string) (*user.User, error)
}

type Handlers struct {
	Cfg       config.Config
	Shops     ShopStore
	Users     UserStore
	Sessions  session.Store
	Exchanger shopify.OAuthExchanger
}

// Install starts the Shopify OAuth flow.
func (h Handlers) Install(w http.ResponseWriter, r *http.Request) {
	shopDomain := strings.TrimSpace(r.URL.Query().Get("shop"))
	if shopDomain == "" {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "missing shop")
		return
	}

	state := randomHex(16)
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.Cfg.Session.CookieSecure,
	})

	u := url.URL{
		Scheme: "https",
		Host:   shopDomain,
		Path:   "/admin/oauth/authorize",
	}
	q := u.Query()
	q.Set("client_id", h.Cfg.Shopify.APIKey)
	q.Set("scope", h.Cfg.Shopify.Scopes)
	q.Set("redirect_uri", h.Cfg.Shopify.RedirectURL)
	q.Set("state", state)
	u.RawQuery = q.Encode()

	http.Redirect(w, r, u.String(), http.StatusFound)
}

// Callback finishes the OAuth flow: verifies state and HMAC, exchanges the
// code, upserts the shop and its owner account, and registers the uninstall
// webhook.
func (h Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	shopDomain := strings.TrimSpace(qs.Get("shop"))
	code := strings.TrimSpace(qs.Get("code"))

	if shopDomain == "" || code == "" {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "missing shop or code")
		return
	}

	c, err := r.Cookie("oauth_state")
	if err != nil || c.Value == "" || c.Value != qs.Get("state") {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "invalid oauth state")
		return
	}

	if !VerifyOAuthHMAC(qs, h.Cfg.Shopify.APISecret) {
		api.WriteError(w, http.StatusUnauthorized, api.CodeUnauthorized, "invalid hmac")
		return
	}

	ex := h.Exchanger
	ex.APIKey = h.Cfg.Shopify.APIKey
	ex.APISecret = h.Cfg.Shopify.APISecret

	token, err := ex.ExchangeCodeForToken(r.Context(), shopDomain, code)
	if err != nil {
		api.WriteError(w, http.StatusBadGateway, api.CodeInternal, "token exchange failed")
		return
	}

	s, err := h.Shops.Upsert(r.Context(), shopDomain, token)
	if err != nil {
		api.WriteInternal(w, err)
		return
	}

	h.syncShopInfo(r.Context(), s, token)
	h.registerWebhooks(r.Context(), shopDomain, token)

	_, _ = w.Write([]byte("installed"))
}

// syncShopInfo pulls the shop's display name and owner email from the Admin
// API and provisions the owner account. Install still succeeds if this fails.
func (h Handlers) syncShopInfo(ctx context.Context, s *shop.Shop, token string) {
	log := logger.Get()

	client := shopify.Client{
		ShopDomain:  s.Domain,
		AccessToken: token,
		APIVersion:  h.Cfg.Shopify.APIVersion,
	}
	info, err := client.GetShop(ctx)
	if err != nil {
		log.Warn().Err(err).Str("shop", s.Domain).Msg("fetch shop info failed")
		return
	}

	if info.Name != "" {
		if err := h.Shops.UpdateName(ctx, s.ID, info.Name); err != nil {
			log.Warn().Err(err).Str("shop", s.Domain).Msg("update shop name failed")
		}
	}
	ownerEmail := info.Email
	if ownerEmail == "" {
		ownerEmail = "owner@" + s.Domain
	}
	if _, err := h.Users.UpsertOwner(ctx, s.ID, ownerEmail, info.Name); err != nil {
		log.Warn().Err(err).Str("shop", s.Domain).Msg("provision owner failed")
	}
}

func (h Handlers) registerWebhooks(ctx context.Context, shopDomain, token string) {
	base := strings.TrimRight(strings.TrimSpace(h.Cfg.PublicBaseURL), "/")
	if base == "" {
		return
	}
	client := shopify.Client{
		ShopDomain:  shopDomain,
		AccessToken: token,
		APIVersion:  h.Cfg.Shopify.APIVersion,
	}
	if err := client.CreateWebhook(ctx, "app/uninstalled", base+"/v1/webhooks/shopify/app_uninstalled"); err != nil {
		log := logger.Get()
		log.Warn().Err(err).Str("shop", shopDomain).Msg("webhook register app/uninstalled failed")
	}
}

type loginRequest struct {
	ShopDomain string `json:"shopDomain" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
}

// Login authenticates a member against their shop's community and issues a
// server-side session. All credential failures read identically to avoid
// account enumeration.
func (h Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "invalid json")
		return
	}
	if err := api.Validate(req); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, err.Error())
		return
	}

	s, err := h.Shops.FindByDomain(r.Context(), req.ShopDomain)
	if err != nil {
		if db.IsNotFound(err) {
			api.WriteError(w, http.StatusUnauthorized, api.CodeUnauthorized, "invalid credentials")
			return
		}
		api.WriteInternal(w, err)
		return
	}

	u, err := h.Users.FindByEmail(r.Context(), s.ID, req.Email)
	if err != nil {
		if db.IsNotFound(err) {
			api.WriteError(w, http.StatusUnauthorized, api.CodeUnauthorized, "invalid credentials")
			return
		}
		api.WriteInternal(w, err)
		return
	}
	if u.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		api.WriteError(w, http.StatusUnauthorized, api.CodeUnauthorized, "invalid credentials")
		return
	}
	if u.Banned {
		api.WriteError(w, http.StatusForbidden, api.CodeForbidden, "account banned")
		return
	}

	// Role and tenant claims are embedded now so no per-request lookups are
	// needed to rebuild them.
	id, err := h.Sessions.Create(r.Context(), session.Claims{
		UserID:      u.ID,
		ShopID:      s.ID,
		Role:        u.Role,
		IsShopOwner: u.IsShopOwner,
	}, h.Cfg.Session.TTL)
	if err != nil {
		api.WriteInternal(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.Cfg.Session.CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(h.Cfg.Session.TTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.Cfg.Session.CookieSecure,
	})

	api.WriteJSON(w, http.StatusOK, map[string]any{"user": u.Public()})
}

// Logout destroys the server-side session and clears the cookie.
func (h Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(h.Cfg.Session.CookieName); err == nil && c.Value != "" {
		_ = h.Sessions.Delete(r.Context(), c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.Cfg.Session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.Cfg.Session.CookieSecure,
	})
	api.WriteJSON(w, http.StatusOK, map[string]any{"loggedOut": true})
}

// Verify reports the acting principal. Runs behind the auth middleware, so
// reaching it means the credential already checked out.
func (h Handlers) Verify(w http.ResponseWriter, r *http.Request) {
	auth := api.AuthFromContext(r.Context())
	if auth == nil {
		api.WriteError(w, http.StatusUnauthorized, api.CodeUnauthorized, "missing credentials")
		return
	}

	s, err := h.Shops.FindByID(r.Context(), auth.ShopID)
	if err != nil {
		if db.IsNotFound(err) {
			api.WriteError(w, http.StatusUnauthorized, api.CodeUnauthorized, "invalid session")
			return
		}
		api.WriteInternal(w, err)
		return
	}

	// The shape stays fixed even when no user row backs the principal.
	userBody := map[string]any{
		"id":          auth.UserID,
		"email":       "",
		"name":        "",
		"role":        auth.Role,
		"isShopOwner": auth.IsShopOwner,
	}
	if auth.UserID != "" {
		if u, err := h.Users.FindByID(r.Context(), auth.ShopID, auth.UserID); err == nil {
			userBody["email"] = u.Email
			userBody["name"] = u.Name
			userBody["role"] = u.Role
		}
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          userBody,
		"shop": map[string]any{
			"id":     s.ID,
			"domain": s.Domain,
		},
		"authMethod": string(auth.Method),
	})
}

func randomHex(nBytes int) string {
	b := make([]byte, nBytes)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
