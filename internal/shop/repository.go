package shop

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const shopColumns = `id, shop_domain, COALESCE(shop_name,''), access_token, COALESCE(status,'active'),
  points_multiplier, onboarding_created_category, onboarding_initialized_roles, onboarding_invited_member,
  installed_at`

func scanShop(row interface{ Scan(...any) error }) (*Shop, error) {
	s := &Shop{}
	if err := row.Scan(
		&s.ID, &s.Domain, &s.Name, &s.AccessToken, &s.Status,
		&s.PointsMultiplier,
		&s.Onboarding.CreatedCategory, &s.Onboarding.InitializedRoles, &s.Onboarding.InvitedMember,
		&s.InstalledAt,
	); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *Repository) Upsert(ctx context.Context, domain, accessToken string) (*Shop, error) {
	const q = `
INSERT INTO shops (shop_domain, access_token, status)
VALUES ($1, $2, 'active')
ON CONFLICT (shop_domain) DO UPDATE SET
  access_token = EXCLUDED.access_token,
  status = 'active'
RETURNING ` + shopColumns
	return scanShop(r.db.QueryRow(ctx, q, domain, accessToken))
}

func (r *Repository) FindByDomain(ctx context.Context, domain string) (*Shop, error) {
	const q = `SELECT ` + shopColumns + ` FROM shops WHERE shop_domain = $1`
	return scanShop(r.db.QueryRow(ctx, q, domain))
}

func (r *Repository) FindByID(ctx context.Context, id string) (*Shop, error) {
	const q = `SELECT ` + shopColumns + ` FROM shops WHERE id = $1`
	return scanShop(r.db.QueryRow(ctx, q, id))
}

func (r *Repository) UpdateName(ctx context.Context, id, name string) error {
	const q = `UPDATE shops SET shop_name = $2 WHERE id = $1`
	_, err := r.db.Exec(ctx, q, id, name)
	return err
}

// MarkUninstalled deactivates the shop and drops its access token. Called from
// the app/uninstalled webhook.
func (r *Repository) MarkUninstalled(ctx context.Context, domain string) error {
	const q = `UPDATE shops SET status = 'uninstalled', access_token = '' WHERE shop_domain = $1`
	_, err := r.db.Exec(ctx, q, domain)
	return err
}

// CompleteOnboardingTask flips the column belonging to the given task. The
// column name comes from the task enum, never from request input.
func (r *Repository) CompleteOnboardingTask(ctx context.Context, shopID string, task OnboardingTask) (*Shop, error) {
	col, err := task.column()
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`UPDATE shops SET %s = TRUE WHERE id = $1 RETURNING `+shopColumns, col)
	return scanShop(r.db.QueryRow(ctx, q, shopID))
}
