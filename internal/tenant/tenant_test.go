package tenant

import (
	"context"
	"errors"
	"testing"

	"forumapp/internal/api"
)

func TestResolve_NoAuthContext(t *testing.T) {
	if _, err := Resolve(context.Background()); !errors.Is(err, ErrShopNotResolved) {
		t.Fatalf("expected ErrShopNotResolved, got %v", err)
	}
}

func TestResolve_EmptyShopID(t *testing.T) {
	ctx := api.WithAuth(context.Background(), &api.AuthContext{UserID: "u1"})
	if _, err := Resolve(ctx); !errors.Is(err, ErrShopNotResolved) {
		t.Fatalf("expected ErrShopNotResolved, got %v", err)
	}
}

func TestResolve_FromAuthContext(t *testing.T) {
	ctx := api.WithAuth(context.Background(), &api.AuthContext{UserID: "u1", ShopID: "s1"})
	shopID, err := Resolve(ctx)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if shopID != "s1" {
		t.Fatalf("expected s1, got %q", shopID)
	}
}

func TestEnsureIsolation(t *testing.T) {
	if err := EnsureIsolation(""); !errors.Is(err, ErrShopNotResolved) {
		t.Fatalf("expected ErrShopNotResolved for empty id, got %v", err)
	}
	if err := EnsureIsolation("s1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
