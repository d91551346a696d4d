package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"forumapp/pkg/config"
	"forumapp/pkg/logger"
)

// ShopStore is the slice of the shop repository the webhook handler needs.
type ShopStore interface {
	MarkUninstalled(ctx context.Context, domain string) error
}

type Handler struct {
	Cfg   config.Config
	Shops ShopStore
}

type uninstallPayload struct {
	MyshopifyDomain string `json:"myshopify_domain"`
	Domain          string `json:"domain"`
}

// ServeHTTP handles Shopify webhooks. Signature verification happens before
// anything is parsed; Shopify retries on non-2xx, so persistent failures
// still return 200 after being logged.
func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	topic := chi.URLParam(r, "topic")

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	if !VerifyShopifyWebhook(body, r.Header.Get("X-Shopify-Hmac-Sha256"), h.Cfg.Shopify.WebhookVerifySecret()) {
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	shopDomain := r.Header.Get("X-Shopify-Shop-Domain")
	log := logger.Get().With().Str("topic", topic).Str("shop", shopDomain).Logger()

	switch topic {
	case "app_uninstalled":
		if shopDomain == "" {
			var p uninstallPayload
			if err := json.Unmarshal(body, &p); err == nil {
				shopDomain = p.MyshopifyDomain
				if shopDomain == "" {
					shopDomain = p.Domain
				}
			}
		}
		if shopDomain == "" {
			log.Warn().Msg("uninstall webhook without shop domain")
			break
		}
		if err := h.Shops.MarkUninstalled(r.Context(), shopDomain); err != nil {
			log.Error().Err(err).Msg("mark uninstalled failed")
		}
	default:
		log.Debug().Msg("ignoring webhook topic")
	}

	w.WriteHeader(http.StatusOK)
}
