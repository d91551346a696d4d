package points

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"forumapp/internal/api"
	"forumapp/internal/rbac"
	"forumapp/internal/shop"
	"forumapp/internal/user"
)

type memStore struct {
	totals  map[string]int // userID -> points
	history map[string][]Transaction
	next    int
}

func (m *memStore) Award(_ context.Context, shopID, userID string, action Action, points int, awardedBy string) (int, error) {
	if _, ok := m.totals[userID]; !ok {
		return 0, pgx.ErrNoRows
	}
	m.totals[userID] += points
	m.next++
	m.history[userID] = append([]Transaction{{
		ID:        fmt.Sprintf("tx-%d", m.next),
		ShopID:    shopID,
		UserID:    userID,
		Action:    string(action),
		Points:    points,
		AwardedBy: awardedBy,
	}}, m.history[userID]...)
	return m.totals[userID], nil
}

func (m *memStore) Total(_ context.Context, shopID, userID string) (int, error) {
	t, ok := m.totals[userID]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	return t, nil
}

func (m *memStore) History(_ context.Context, shopID, userID string, limit int) ([]Transaction, error) {
	h := m.history[userID]
	if len(h) > limit {
		h = h[:limit]
	}
	return h, nil
}

type memShops struct {
	multiplier decimal.Decimal
}

func (m *memShops) FindByID(_ context.Context, id string) (*shop.Shop, error) {
	return &shop.Shop{ID: id, PointsMultiplier: m.multiplier}, nil
}

type memUsers struct {
	ids map[string]bool
}

func (m *memUsers) FindByID(_ context.Context, shopID, id string) (*user.User, error) {
	if !m.ids[id] {
		return nil, pgx.ErrNoRows
	}
	return &user.User{ID: id, ShopID: shopID}, nil
}

func testHandlers(multiplier string) (Handlers, *memStore) {
	store := &memStore{
		totals:  map[string]int{"u-admin": 0, "u-mem": 0},
		history: map[string][]Transaction{},
	}
	return Handlers{
		Points: store,
		Shops:  &memShops{multiplier: decimal.RequireFromString(multiplier)},
		Users:  &memUsers{ids: map[string]bool{"u-admin": true, "u-mem": true}},
	}, store
}

func adminReq(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
	}
	return req.WithContext(api.WithAuth(req.Context(), &api.AuthContext{
		UserID: "u-admin",
		ShopID: "shop-a",
		Role:   rbac.RoleAdmin,
	}))
}

func TestAwardCreditsMultipliedValue(t *testing.T) {
	h, store := testHandlers("2.0")

	rec := httptest.NewRecorder()
	h.Award(rec, adminReq("POST", "/api/users/points", `{"targetUserId":"u-mem","action":"CREATE_POST"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		NewTotal      int `json:"newTotal"`
		PointsAwarded int `json:"pointsAwarded"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.PointsAwarded != 20 || resp.NewTotal != 20 {
		t.Fatalf("CREATE_POST at x2 should award 20, got %+v", resp)
	}
	if len(store.history["u-mem"]) != 1 {
		t.Fatalf("expected one transaction recorded")
	}
	if store.history["u-mem"][0].AwardedBy != "u-admin" {
		t.Fatalf("transaction should record the actor, got %q", store.history["u-mem"][0].AwardedBy)
	}
}

func TestAwardWithoutActingUserRecordsNoActor(t *testing.T) {
	h, store := testHandlers("1")

	// Token-authenticated shop without an owner row: the award still lands,
	// with no actor attributed.
	req := httptest.NewRequest("POST", "/api/users/points",
		bytes.NewBufferString(`{"targetUserId":"u-mem","action":"DAILY_LOGIN"}`))
	req = req.WithContext(api.WithAuth(req.Context(), &api.AuthContext{
		ShopID:      "shop-a",
		Role:        rbac.RoleAdmin,
		IsShopOwner: true,
		Method:      api.AuthMethodToken,
	}))
	rec := httptest.NewRecorder()
	h.Award(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if store.totals["u-mem"] != 1 {
		t.Fatalf("DAILY_LOGIN should credit 1 point, got %d", store.totals["u-mem"])
	}
	if got := store.history["u-mem"][0].AwardedBy; got != "" {
		t.Fatalf("no actor should be recorded, got %q", got)
	}
}

func TestAwardUnknownActionRejected(t *testing.T) {
	h, store := testHandlers("1")

	rec := httptest.NewRecorder()
	h.Award(rec, adminReq("POST", "/api/users/points", `{"targetUserId":"u-mem","action":"DELETE_POST"}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if store.totals["u-mem"] != 0 {
		t.Fatalf("nothing should be credited on a rejected action")
	}
}

func TestAwardUnknownTargetIs404(t *testing.T) {
	h, _ := testHandlers("1")

	rec := httptest.NewRecorder()
	h.Award(rec, adminReq("POST", "/api/users/points", `{"targetUserId":"u-ghost","action":"DAILY_LOGIN"}`))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetReturnsTotalAndHistory(t *testing.T) {
	h, store := testHandlers("1")
	store.totals["u-admin"] = 17
	store.history["u-admin"] = []Transaction{
		{ID: "tx-2", Action: "CREATE_POST", Points: 10},
		{ID: "tx-1", Action: "CREATE_COMMENT", Points: 5},
	}

	rec := httptest.NewRecorder()
	h.Get(rec, adminReq("GET", "/api/users/points", ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Total   int           `json:"total"`
		History []Transaction `json:"history"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 17 {
		t.Fatalf("expected total 17, got %d", resp.Total)
	}
	if len(resp.History) != 2 || resp.History[0].ID != "tx-2" {
		t.Fatalf("history should be newest first: %+v", resp.History)
	}
}

func TestGetWithoutAuthIs401(t *testing.T) {
	h, _ := testHandlers("1")

	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest("GET", "/api/users/points", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
