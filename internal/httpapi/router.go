package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"forumapp/internal/admin"
	"forumapp/internal/api"
	"forumapp/internal/auth"
	"forumapp/internal/category"
	"forumapp/internal/follow"
	"forumapp/internal/points"
	"forumapp/internal/rbac"
	"forumapp/internal/role"
	"forumapp/internal/session"
	"forumapp/internal/shop"
	"forumapp/internal/user"
	"forumapp/internal/webhook"
	"forumapp/pkg/config"
)

type Dependencies struct {
	Cfg      config.Config
	DB       *pgxpool.Pool
	Sessions session.Store
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(api.Instrument)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	shopsRepo := shop.NewRepository(deps.DB)
	usersRepo := user.NewRepository(deps.DB)
	rolesRepo := role.NewRepository(deps.DB)
	categoriesRepo := category.NewRepository(deps.DB)
	followsRepo := follow.NewRepository(deps.DB)
	pointsRepo := points.NewRepository(deps.DB)

	authHandlers := auth.Handlers{
		Cfg:      deps.Cfg,
		Shops:    shopsRepo,
		Users:    usersRepo,
		Sessions: deps.Sessions,
	}
	adminHandlers := admin.Handlers{Users: usersRepo}
	shopHandlers := shop.Handlers{Shops: shopsRepo}
	roleHandlers := role.Handlers{Roles: rolesRepo}
	categoryHandlers := category.Handlers{Categories: categoriesRepo}
	userHandlers := user.Handlers{Users: usersRepo, Roles: rolesRepo}
	followHandlers := follow.Handlers{Follows: followsRepo, Users: usersRepo}
	pointsHandlers := points.Handlers{Points: pointsRepo, Shops: shopsRepo, Users: usersRepo}
	webhookHandler := webhook.Handler{Cfg: deps.Cfg, Shops: shopsRepo}

	dir := directory{shops: shopsRepo, users: usersRepo}

	// Shopify OAuth (public)
	r.Get("/auth/install", authHandlers.Install)
	r.Get("/auth/callback", authHandlers.Callback)

	// Webhooks (HMAC-verified, public)
	r.Post("/v1/webhooks/shopify/{topic}", webhookHandler.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Use(api.CORSMiddleware(api.CORSOptions{
			AllowedOrigins: deps.Cfg.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization", "X-Shop-Domain"},
			MaxAgeSeconds:  600,
		}))

		// Credential issuance (public)
		r.Post("/auth/login", authHandlers.Login)
		r.Post("/auth/logout", authHandlers.Logout)

		// Everything below requires a credential; both paths normalize into
		// one AuthContext.
		r.Group(func(r chi.Router) {
			r.Use(api.Authenticate(deps.Cfg, deps.Sessions, dir))

			r.Get("/auth/verify", authHandlers.Verify)

			r.Get("/admin/check", adminHandlers.Check)
			r.With(api.RequirePermission(rbac.PermManageUsers)).
				Post("/admin/promote", adminHandlers.Promote)

			r.Get("/shop/current", shopHandlers.Current)
			r.Post("/shop/onboarding", shopHandlers.CompleteOnboarding)

			r.Get("/categories", categoryHandlers.List)
			r.With(api.RequirePermission(rbac.PermManageCategories)).
				Post("/categories", categoryHandlers.Create)

			r.Post("/roles/init", roleHandlers.Init)
			r.Get("/roles", roleHandlers.List)
			r.With(api.RequirePermission(rbac.PermManageRoles)).
				Post("/roles", roleHandlers.Create)

			r.Get("/users", userHandlers.List)
			r.With(api.RequirePermission(rbac.PermManageUsers)).
				Put("/users/{userID}/role-assignment", userHandlers.AssignRole)
			r.With(api.RequirePermission(rbac.PermBanUsers)).
				Post("/users/{userID}/ban", userHandlers.Ban)
			r.With(api.RequirePermission(rbac.PermBanUsers)).
				Delete("/users/{userID}/ban", userHandlers.Unban)

			r.Post("/users/{userID}/follow", followHandlers.Follow)
			r.Delete("/users/{userID}/follow", followHandlers.Unfollow)
			r.Get("/users/{userID}/followers", followHandlers.Followers)
			r.Get("/users/{userID}/following", followHandlers.Following)

			r.Get("/users/points", pointsHandlers.Get)
			r.With(api.RequirePermission(rbac.PermAwardPoints)).
				Post("/users/points", pointsHandlers.Award)
		})
	})

	return r
}
