// Command seed provisions a demo shop with an owner, a moderator, a member,
// default roles, and a couple of categories. Dev-only convenience; refuses to
// run against a prod config.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"forumapp/internal/category"
	"forumapp/internal/rbac"
	"forumapp/internal/role"
	"forumapp/internal/shop"
	"forumapp/internal/user"
	"forumapp/pkg/config"
	"forumapp/pkg/db"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		fatal("config: %v", err)
	}
	if cfg.IsProd() {
		fatal("refusing to seed a prod database")
	}

	pool, err := db.Open(ctx, cfg)
	if err != nil {
		fatal("db open: %v", err)
	}
	defer pool.Close()

	shops := shop.NewRepository(pool)
	users := user.NewRepository(pool)
	roles := role.NewRepository(pool)
	categories := category.NewRepository(pool)

	domain := cfg.DevShopDomain
	if domain == "" {
		domain = "dev-shop.myshopify.com"
	}

	s, err := shops.Upsert(ctx, domain, "dev-token-"+uuid.NewString())
	if err != nil {
		fatal("seed shop: %v", err)
	}
	fmt.Printf("shop %s (%s)\n", s.Domain, s.ID)

	owner, err := users.UpsertOwner(ctx, s.ID, "owner@"+domain, "Shop Owner")
	if err != nil {
		fatal("seed owner: %v", err)
	}
	fmt.Printf("owner %s (%s)\n", owner.Email, owner.ID)

	for _, m := range []struct {
		email, name, roleName, password string
	}{
		{"mod@" + domain, "Demo Moderator", rbac.RoleModerator, "moderator-pass"},
		{"member@" + domain, "Demo Member", rbac.RoleMember, "member-pass"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(m.password), bcrypt.DefaultCost)
		if err != nil {
			fatal("hash password: %v", err)
		}
		u, err := users.Create(ctx, &user.User{
			ShopID:       s.ID,
			Email:        m.email,
			Name:         m.name,
			Role:         m.roleName,
			PasswordHash: string(hash),
		})
		if err != nil {
			// Re-running the seeder is fine; existing users stay as they are.
			fmt.Printf("skip %s: %v\n", m.email, err)
			continue
		}
		fmt.Printf("user %s (%s)\n", u.Email, u.ID)
	}

	if existing, err := roles.ListDefaults(ctx, s.ID); err != nil {
		fatal("list roles: %v", err)
	} else if len(existing) == 0 {
		for _, def := range role.DefaultRoles() {
			def.ShopID = s.ID
			if _, err := roles.Create(ctx, &def); err != nil {
				fatal("seed role %s: %v", def.Name, err)
			}
		}
		fmt.Println("default roles created")
	}

	for i, name := range []string{"General", "Announcements"} {
		if _, err := categories.Create(ctx, &category.Category{
			ShopID:    s.ID,
			Name:      name,
			Color:     "#3B82F6",
			SortOrder: i,
		}); err != nil {
			fmt.Printf("skip category %s: %v\n", name, err)
		}
	}

	fmt.Println("seed complete")
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
