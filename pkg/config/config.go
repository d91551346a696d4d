package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	AppEnv         string `env:"APP_ENV, default=dev"`
	HTTPAddr       string `env:"HTTP_ADDR"`
	MigrationsPath string `env:"MIGRATIONS_PATH"`

	LogLevel  string `env:"LOG_LEVEL, default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	// Supabase/hosted Postgres convenience:
	// - DATABASE_URL: runtime connection (often PgBouncer/pooler)
	// - DIRECT_URL: direct connection for migrations
	DatabaseURL string `env:"DATABASE_URL"`
	DirectURL   string `env:"DIRECT_URL"`

	// PublicBaseURL is the externally reachable URL for this backend
	// (required for webhook registration on install).
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`

	// DevShopDomain lets local tooling hit tenant-scoped endpoints without a
	// real credential. Ignored when AppEnv is "prod".
	DevShopDomain string `env:"DEV_SHOP_DOMAIN"`

	// AllowedOrigins is the CORS allowlist for the embedded frontend.
	AllowedOrigins []string `env:"ALLOWED_ORIGINS, default=http://localhost:5173,http://localhost:4173"`

	DB      DBConfig
	Redis   RedisConfig
	Session SessionConfig
	Shopify ShopifyConfig
}

type DBConfig struct {
	Host     string `env:"DB_HOST, default=localhost"`
	Port     string `env:"DB_PORT, default=5432"`
	Name     string `env:"DB_NAME, default=forumapp"`
	User     string `env:"DB_USER, default=forumapp"`
	Password string `env:"DB_PASSWORD, default=forumapp"`
	SSLMode  string `env:"DB_SSLMODE, default=disable"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB, default=0"`
}

type SessionConfig struct {
	// CookieName is the name of the browser session cookie.
	CookieName string `env:"SESSION_COOKIE_NAME, default=forum_session"`
	// TTL is how long a server-side session lives without re-login.
	TTL time.Duration `env:"SESSION_TTL, default=168h"`
	// CookieSecure must be true behind TLS in prod.
	CookieSecure bool `env:"SESSION_COOKIE_SECURE, default=false"`
}

type ShopifyConfig struct {
	APIKey      string `env:"SHOPIFY_API_KEY"`
	APISecret   string `env:"SHOPIFY_API_SECRET"`
	Scopes      string `env:"SHOPIFY_SCOPES"`
	RedirectURL string `env:"SHOPIFY_REDIRECT_URL"`

	// WebhookSecret signs webhook payloads when set; apps using API-secret
	// signing leave it empty.
	WebhookSecret string `env:"SHOPIFY_WEBHOOK_SECRET"`

	APIVersion string `env:"SHOPIFY_API_VERSION, default=2025-10"`
}

// WebhookVerifySecret returns the secret webhook signatures are verified
// against: WebhookSecret when configured, the API secret otherwise.
func (c ShopifyConfig) WebhookVerifySecret() string {
	if c.WebhookSecret != "" {
		return c.WebhookSecret
	}
	return c.APISecret
}

// Load reads configuration from the environment. In dev it first loads a .env
// file if present; in production rely on real environment variables.
func Load(ctx context.Context) (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	// Cloud Run sets PORT. Prefer it when HTTP_ADDR isn't explicitly set.
	if cfg.HTTPAddr == "" {
		if port := os.Getenv("PORT"); port != "" {
			cfg.HTTPAddr = ":" + port
		} else {
			cfg.HTTPAddr = ":8081"
		}
	}

	return cfg, nil
}

// IsProd reports whether the app runs with production hardening (no dev
// credential fallbacks).
func (c Config) IsProd() bool {
	return c.AppEnv == "prod"
}
