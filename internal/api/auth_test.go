package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"forumapp/internal/rbac"
	"forumapp/internal/session"
	"forumapp/pkg/config"
)

type stubSessions struct {
	sessions map[string]session.Claims
}

func (s *stubSessions) Create(_ context.Context, claims session.Claims, _ time.Duration) (string, error) {
	id := fmt.Sprintf("sess-%d", len(s.sessions))
	s.sessions[id] = claims
	return id, nil
}

func (s *stubSessions) Get(_ context.Context, id string) (*session.Claims, error) {
	c, ok := s.sessions[id]
	if !ok {
		return nil, session.ErrNotFound
	}
	return &c, nil
}

func (s *stubSessions) Delete(_ context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

type stubDirectory struct {
	shops  map[string]ShopIdentity // keyed by domain
	owners map[string]OwnerIdentity
}

func (d *stubDirectory) ShopByDomain(_ context.Context, domain string) (*ShopIdentity, error) {
	s, ok := d.shops[domain]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (d *stubDirectory) ShopOwner(_ context.Context, shopID string) (*OwnerIdentity, error) {
	o, ok := d.owners[shopID]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

func testConfig() config.Config {
	return config.Config{
		AppEnv: "test",
		Session: config.SessionConfig{
			CookieName: "forum_session",
			TTL:        time.Hour,
		},
		Shopify: config.ShopifyConfig{
			APIKey:    "test_api_key",
			APISecret: "test_secret",
		},
	}
}

func captureAuth(got **AuthContext) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = AuthFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate_NoCredential(t *testing.T) {
	cfg := testConfig()
	cfg.AppEnv = "prod"

	var got *AuthContext
	h := Authenticate(cfg, &stubSessions{sessions: map[string]session.Claims{}}, &stubDirectory{})(captureAuth(&got))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/users", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if got != nil {
		t.Fatalf("handler should not run without a credential")
	}
}

func TestAuthenticate_SessionCookie(t *testing.T) {
	cfg := testConfig()
	sessions := &stubSessions{sessions: map[string]session.Claims{
		"sess-1": {UserID: "u1", ShopID: "s1", Role: rbac.RoleModerator},
	}}

	var got *AuthContext
	h := Authenticate(cfg, sessions, &stubDirectory{})(captureAuth(&got))

	req := httptest.NewRequest("GET", "/api/users", nil)
	req.AddCookie(&http.Cookie{Name: "forum_session", Value: "sess-1"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got == nil || got.UserID != "u1" || got.ShopID != "s1" || got.Role != rbac.RoleModerator {
		t.Fatalf("unexpected auth context: %+v", got)
	}
	if got.Method != AuthMethodSession {
		t.Fatalf("expected session method, got %q", got.Method)
	}
}

func TestAuthenticate_CorruptSessionFailsHard(t *testing.T) {
	cfg := testConfig()
	cfg.AppEnv = "prod"
	// Session exists but lacks the mandatory shop claim.
	sessions := &stubSessions{sessions: map[string]session.Claims{
		"sess-1": {UserID: "u1", Role: rbac.RoleMember},
	}}

	var got *AuthContext
	h := Authenticate(cfg, sessions, &stubDirectory{})(captureAuth(&got))

	req := httptest.NewRequest("GET", "/api/users", nil)
	req.AddCookie(&http.Cookie{Name: "forum_session", Value: "sess-1"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("corrupt session should 401, got %d", rec.Code)
	}
	if got != nil {
		t.Fatalf("handler should not run with a corrupt session")
	}
}

func signSessionToken(t *testing.T, cfg config.Config, dest string, now time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"aud":  cfg.Shopify.APIKey,
		"dest": dest,
		"exp":  now.Add(10 * time.Minute).Unix(),
		"iat":  now.Add(-time.Minute).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte(cfg.Shopify.APISecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestAuthenticate_ShopifyToken(t *testing.T) {
	cfg := testConfig()
	dir := &stubDirectory{
		shops:  map[string]ShopIdentity{"my-shop.myshopify.com": {ID: "s1", Domain: "my-shop.myshopify.com"}},
		owners: map[string]OwnerIdentity{"s1": {UserID: "owner-1", Role: rbac.RoleAdmin}},
	}

	var got *AuthContext
	h := Authenticate(cfg, &stubSessions{sessions: map[string]session.Claims{}}, dir)(captureAuth(&got))

	req := httptest.NewRequest("GET", "/api/users", nil)
	req.Header.Set("Authorization", "Bearer "+signSessionToken(t, cfg, "https://my-shop.myshopify.com", time.Now()))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got == nil || got.ShopID != "s1" || got.UserID != "owner-1" || !got.IsShopOwner {
		t.Fatalf("unexpected auth context: %+v", got)
	}
	if got.Method != AuthMethodToken {
		t.Fatalf("expected token method, got %q", got.Method)
	}
}

func TestAuthenticate_BadTokenDoesNotFallBack(t *testing.T) {
	cfg := testConfig()
	dir := &stubDirectory{
		shops: map[string]ShopIdentity{"my-shop.myshopify.com": {ID: "s1", Domain: "my-shop.myshopify.com"}},
	}

	var got *AuthContext
	h := Authenticate(cfg, &stubSessions{sessions: map[string]session.Claims{}}, dir)(captureAuth(&got))

	req := httptest.NewRequest("GET", "/api/users", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	req.Header.Set("X-Shop-Domain", "my-shop.myshopify.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	// A bearer header always selects the token path; a bad token is a hard
	// 401 even in dev.
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthenticate_DevFallbackDisabledInProd(t *testing.T) {
	cfg := testConfig()
	cfg.AppEnv = "prod"
	dir := &stubDirectory{
		shops:  map[string]ShopIdentity{"my-shop.myshopify.com": {ID: "s1", Domain: "my-shop.myshopify.com"}},
		owners: map[string]OwnerIdentity{"s1": {UserID: "owner-1", Role: rbac.RoleAdmin}},
	}

	var got *AuthContext
	h := Authenticate(cfg, &stubSessions{sessions: map[string]session.Claims{}}, dir)(captureAuth(&got))

	req := httptest.NewRequest("GET", "/api/users", nil)
	req.Header.Set("X-Shop-Domain", "my-shop.myshopify.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("dev fallback must be off in prod, got %d", rec.Code)
	}
}

func TestAuthenticate_DevFallback(t *testing.T) {
	cfg := testConfig()
	dir := &stubDirectory{
		shops:  map[string]ShopIdentity{"my-shop.myshopify.com": {ID: "s1", Domain: "my-shop.myshopify.com"}},
		owners: map[string]OwnerIdentity{"s1": {UserID: "owner-1", Role: rbac.RoleAdmin}},
	}

	var got *AuthContext
	h := Authenticate(cfg, &stubSessions{sessions: map[string]session.Claims{}}, dir)(captureAuth(&got))

	req := httptest.NewRequest("GET", "/api/users", nil)
	req.Header.Set("X-Shop-Domain", "my-shop.myshopify.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got == nil || got.Method != AuthMethodDev || got.ShopID != "s1" {
		t.Fatalf("unexpected auth context: %+v", got)
	}
}

func TestRequirePermission(t *testing.T) {
	called := false
	h := RequirePermission(rbac.PermManageRoles)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	// Non-admin is rejected and the handler never runs.
	req := httptest.NewRequest("POST", "/api/roles", nil)
	req = req.WithContext(WithAuth(req.Context(), &AuthContext{UserID: "u1", ShopID: "s1", Role: rbac.RoleMember}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if called {
		t.Fatalf("handler should not run for a member")
	}

	// Admin passes.
	req = httptest.NewRequest("POST", "/api/roles", nil)
	req = req.WithContext(WithAuth(req.Context(), &AuthContext{UserID: "u2", ShopID: "s1", Role: rbac.RoleAdmin}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !called {
		t.Fatalf("expected admin to pass, got %d", rec.Code)
	}

	// Missing auth context reads as unauthenticated.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/roles", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
