package shop

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"

	"forumapp/internal/api"
	"forumapp/internal/rbac"
)

type memStore struct {
	shops map[string]*Shop
}

func (m *memStore) FindByID(_ context.Context, id string) (*Shop, error) {
	s, ok := m.shops[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := *s
	return &out, nil
}

func (m *memStore) CompleteOnboardingTask(_ context.Context, shopID string, task OnboardingTask) (*Shop, error) {
	s, ok := m.shops[shopID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	switch task {
	case TaskCreateCategory:
		s.Onboarding.CreatedCategory = true
	case TaskInitRoles:
		s.Onboarding.InitializedRoles = true
	case TaskInviteMember:
		s.Onboarding.InvitedMember = true
	}
	out := *s
	return &out, nil
}

func authedReq(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
	}
	return req.WithContext(api.WithAuth(req.Context(), &api.AuthContext{
		UserID: "u-owner",
		ShopID: "shop-a",
		Role:   rbac.RoleAdmin,
	}))
}

func TestCurrent(t *testing.T) {
	h := Handlers{Shops: &memStore{shops: map[string]*Shop{
		"shop-a": {ID: "shop-a", Domain: "a.myshopify.com", Name: "Shop A"},
	}}}

	rec := httptest.NewRecorder()
	h.Current(rec, authedReq("GET", "/api/shop/current", ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		ID         string `json:"id"`
		ShopDomain string `json:"shopDomain"`
		ShopName   string `json:"shopName"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID != "shop-a" || resp.ShopDomain != "a.myshopify.com" || resp.ShopName != "Shop A" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestCurrentWithoutTenantIs404(t *testing.T) {
	h := Handlers{Shops: &memStore{shops: map[string]*Shop{}}}

	rec := httptest.NewRecorder()
	h.Current(rec, httptest.NewRequest("GET", "/api/shop/current", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCompleteOnboarding(t *testing.T) {
	store := &memStore{shops: map[string]*Shop{
		"shop-a": {ID: "shop-a", Domain: "a.myshopify.com"},
	}}
	h := Handlers{Shops: store}

	rec := httptest.NewRecorder()
	h.CompleteOnboarding(rec, authedReq("POST", "/api/shop/onboarding", `{"task":"INIT_ROLES"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Onboarding OnboardingState `json:"onboarding"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Onboarding.InitializedRoles {
		t.Fatalf("INIT_ROLES should be marked done: %+v", resp.Onboarding)
	}
	if resp.Onboarding.CreatedCategory || resp.Onboarding.InvitedMember {
		t.Fatalf("other tasks must stay untouched: %+v", resp.Onboarding)
	}
}

func TestCompleteOnboardingUnknownTask(t *testing.T) {
	h := Handlers{Shops: &memStore{shops: map[string]*Shop{
		"shop-a": {ID: "shop-a"},
	}}}

	rec := httptest.NewRecorder()
	h.CompleteOnboarding(rec, authedReq("POST", "/api/shop/onboarding", `{"task":"DELETE_SHOP"}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestParseOnboardingTask(t *testing.T) {
	for _, valid := range []string{"CREATE_CATEGORY", "INIT_ROLES", "INVITE_MEMBER"} {
		if _, err := ParseOnboardingTask(valid); err != nil {
			t.Fatalf("%s should parse: %v", valid, err)
		}
	}
	if _, err := ParseOnboardingTask("init_roles"); err == nil {
		t.Fatalf("task names are case-sensitive")
	}
}
