// Package session implements the server-side session store backing the
// cookie credential path. Role and tenant claims are embedded at issuance so
// no per-request database lookups are needed to rebuild them.
package session

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("session not found")

// Claims is the state captured when a session is issued. ShopID is mandatory;
// a stored session without it is treated as corrupt by the auth middleware.
type Claims struct {
	UserID      string `json:"userId"`
	ShopID      string `json:"shopId"`
	Role        string `json:"role"`
	IsShopOwner bool   `json:"isShopOwner"`
}

type Store interface {
	Create(ctx context.Context, claims Claims, ttl time.Duration) (id string, err error)
	Get(ctx context.Context, id string) (*Claims, error)
	Delete(ctx context.Context, id string) error
}
