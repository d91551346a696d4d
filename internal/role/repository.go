package role

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const roleColumns = `id, shop_id, name, COALESCE(display_name,''), COALESCE(color,''), permissions, is_default, created_at`

func scanRole(row interface{ Scan(...any) error }) (*Role, error) {
	rec := &Role{}
	if err := row.Scan(
		&rec.ID, &rec.ShopID, &rec.Name, &rec.DisplayName, &rec.Color,
		&rec.Permissions, &rec.IsDefault, &rec.CreatedAt,
	); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *Repository) Create(ctx context.Context, rec *Role) (*Role, error) {
	const q = `
INSERT INTO roles (shop_id, name, display_name, color, permissions, is_default)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + roleColumns
	return scanRole(r.db.QueryRow(ctx, q,
		rec.ShopID, rec.Name, rec.DisplayName, rec.Color, rec.Permissions, rec.IsDefault,
	))
}

func (r *Repository) FindByName(ctx context.Context, shopID, name string) (*Role, error) {
	const q = `SELECT ` + roleColumns + ` FROM roles WHERE shop_id = $1 AND name = $2`
	return scanRole(r.db.QueryRow(ctx, q, shopID, name))
}

// List returns the shop's roles, default roles first, then by creation time.
func (r *Repository) List(ctx context.Context, shopID string) ([]Role, error) {
	const q = `
SELECT ` + roleColumns + `
FROM roles
WHERE shop_id = $1
ORDER BY is_default DESC, created_at ASC
`
	rows, err := r.db.Query(ctx, q, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Role
	for rows.Next() {
		rec, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (r *Repository) ListDefaults(ctx context.Context, shopID string) ([]Role, error) {
	const q = `
SELECT ` + roleColumns + `
FROM roles
WHERE shop_id = $1 AND is_default = TRUE
ORDER BY created_at ASC
`
	rows, err := r.db.Query(ctx, q, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Role
	for rows.Next() {
		rec, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}
