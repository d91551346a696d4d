package role

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"forumapp/internal/api"
	"forumapp/internal/rbac"
)

func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
}

type memStore struct {
	roles []Role
	next  int
}

func (m *memStore) Create(_ context.Context, rec *Role) (*Role, error) {
	for _, existing := range m.roles {
		if existing.ShopID == rec.ShopID && existing.Name == rec.Name {
			return nil, uniqueViolation()
		}
	}
	m.next++
	out := *rec
	out.ID = fmt.Sprintf("role-%d", m.next)
	m.roles = append(m.roles, out)
	return &out, nil
}

func (m *memStore) FindByName(_ context.Context, shopID, name string) (*Role, error) {
	for _, r := range m.roles {
		if r.ShopID == shopID && r.Name == name {
			out := r
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memStore) List(_ context.Context, shopID string) ([]Role, error) {
	var out []Role
	for _, r := range m.roles {
		if r.ShopID == shopID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) ListDefaults(_ context.Context, shopID string) ([]Role, error) {
	var out []Role
	for _, r := range m.roles {
		if r.ShopID == shopID && r.IsDefault {
			out = append(out, r)
		}
	}
	return out, nil
}

func authedRequest(method, target string, body string, shopID string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
	}
	ctx := api.WithAuth(req.Context(), &api.AuthContext{
		UserID: "u-admin",
		ShopID: shopID,
		Role:   rbac.RoleAdmin,
	})
	return req.WithContext(ctx)
}

func TestInitIdempotent(t *testing.T) {
	store := &memStore{}
	h := Handlers{Roles: store}

	rec := httptest.NewRecorder()
	h.Init(rec, authedRequest("POST", "/api/roles/init", "", "shop-a"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("first init: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var first struct {
		Roles   []Role `json:"roles"`
		Created bool   `json:"created"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&first); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !first.Created || len(first.Roles) != 3 {
		t.Fatalf("expected 3 created roles, got %+v", first)
	}

	rec = httptest.NewRecorder()
	h.Init(rec, authedRequest("POST", "/api/roles/init", "", "shop-a"))
	if rec.Code != http.StatusOK {
		t.Fatalf("second init: expected 200, got %d", rec.Code)
	}
	var second struct {
		Roles   []Role `json:"roles"`
		Created bool   `json:"created"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&second); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if second.Created || len(second.Roles) != 3 {
		t.Fatalf("second init must not create, got %+v", second)
	}
	if len(store.roles) != 3 {
		t.Fatalf("store should hold exactly 3 roles, has %d", len(store.roles))
	}
}

func TestInitScopedToShop(t *testing.T) {
	store := &memStore{}
	h := Handlers{Roles: store}

	rec := httptest.NewRecorder()
	h.Init(rec, authedRequest("POST", "/api/roles/init", "", "shop-a"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("shop-a init: %d", rec.Code)
	}

	// A second tenant still gets its own set.
	rec = httptest.NewRecorder()
	h.Init(rec, authedRequest("POST", "/api/roles/init", "", "shop-b"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("shop-b init: expected 201, got %d", rec.Code)
	}
	if len(store.roles) != 6 {
		t.Fatalf("expected 6 roles across two shops, got %d", len(store.roles))
	}
}

func TestCreateCustomRole(t *testing.T) {
	store := &memStore{}
	h := Handlers{Roles: store}

	body := `{"name":"helper","color":"#00FF00","bundle":"moderator"}`
	rec := httptest.NewRecorder()
	h.Create(rec, authedRequest("POST", "/api/roles", body, "shop-a"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created Role
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Name != "HELPER" {
		t.Fatalf("role name should be upper-cased, got %q", created.Name)
	}
	if created.IsDefault {
		t.Fatalf("custom role must not be marked default")
	}
	wantPerms, _ := rbac.Bundle("moderator")
	if len(created.Permissions) != len(wantPerms) {
		t.Fatalf("expected moderator bundle (%d perms), got %d", len(wantPerms), len(created.Permissions))
	}
}

func TestCreateDuplicateNameConflicts(t *testing.T) {
	store := &memStore{}
	h := Handlers{Roles: store}

	body := `{"name":"helper","color":"#00FF00","bundle":"moderator"}`
	rec := httptest.NewRecorder()
	h.Create(rec, authedRequest("POST", "/api/roles", body, "shop-a"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed create: %d", rec.Code)
	}

	// Same name in a different case collides after normalization.
	rec = httptest.NewRecorder()
	h.Create(rec, authedRequest("POST", "/api/roles", `{"name":"Helper","color":"#111111","bundle":"admin"}`, "shop-a"))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "CONFLICT") {
		t.Fatalf("expected CONFLICT code in body: %s", rec.Body.String())
	}

	// The same name in another shop is fine.
	rec = httptest.NewRecorder()
	h.Create(rec, authedRequest("POST", "/api/roles", body, "shop-b"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("other shop should not collide, got %d", rec.Code)
	}
}

func TestCreateValidation(t *testing.T) {
	h := Handlers{Roles: &memStore{}}

	cases := []struct {
		name string
		body string
	}{
		{"missing name", `{"color":"#000000","bundle":"admin"}`},
		{"missing color", `{"name":"helper","bundle":"admin"}`},
		{"bad bundle", `{"name":"helper","color":"#000000","bundle":"root"}`},
		{"bad json", `{`},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		h.Create(rec, authedRequest("POST", "/api/roles", tc.body, "shop-a"))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", tc.name, rec.Code)
		}
	}
}

func TestListWithoutTenantIs404(t *testing.T) {
	h := Handlers{Roles: &memStore{}}

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest("GET", "/api/roles", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without a resolved shop, got %d", rec.Code)
	}
}
