package shopify

import (
	"context"
	"fmt"
	"net/http"
)

type ShopInfo struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Domain string `json:"myshopify_domain"`
	Email  string `json:"email"`
}

type shopResponse struct {
	Shop ShopInfo `json:"shop"`
}

// GetShop fetches the shop resource from the Admin API. Used at install time
// to sync the display name and owner email.
func (c Client) GetShop(ctx context.Context) (*ShopInfo, error) {
	var resp shopResponse
	status, err := c.doJSON(ctx, http.MethodGet, "/shop.json", nil, &resp)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("get shop failed: status=%d", status)
	}
	return &resp.Shop, nil
}
