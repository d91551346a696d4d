package user

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

const userColumns = `id, shop_id, email, COALESCE(name,''), role, is_shop_owner, banned,
  COALESCE(password_hash,''), points, created_at`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	u := &User{}
	if err := row.Scan(
		&u.ID, &u.ShopID, &u.Email, &u.Name, &u.Role, &u.IsShopOwner, &u.Banned,
		&u.PasswordHash, &u.Points, &u.CreatedAt,
	); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *Repository) Create(ctx context.Context, u *User) (*User, error) {
	const q = `
INSERT INTO users (shop_id, email, name, role, is_shop_owner, password_hash)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, q, u.ShopID, u.Email, u.Name, u.Role, u.IsShopOwner, u.PasswordHash))
}

// UpsertOwner provisions the shop-owner account at install time. Re-installs
// refresh the name without touching the role.
func (r *Repository) UpsertOwner(ctx context.Context, shopID, email, name string) (*User, error) {
	const q = `
INSERT INTO users (shop_id, email, name, role, is_shop_owner)
VALUES ($1, $2, $3, 'ADMIN', TRUE)
ON CONFLICT (shop_id, email) DO UPDATE SET
  name = EXCLUDED.name,
  is_shop_owner = TRUE
RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, q, shopID, email, name))
}

func (r *Repository) FindByID(ctx context.Context, shopID, id string) (*User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE shop_id = $1 AND id = $2`
	return scanUser(r.db.QueryRow(ctx, q, shopID, id))
}

func (r *Repository) FindByEmail(ctx context.Context, shopID, email string) (*User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE shop_id = $1 AND email = $2`
	return scanUser(r.db.QueryRow(ctx, q, shopID, email))
}

func (r *Repository) FindOwner(ctx context.Context, shopID string) (*User, error) {
	const q = `
SELECT ` + userColumns + `
FROM users
WHERE shop_id = $1 AND is_shop_owner = TRUE
ORDER BY created_at ASC
LIMIT 1
`
	return scanUser(r.db.QueryRow(ctx, q, shopID))
}

func (r *Repository) List(ctx context.Context, shopID string, limit, offset int) ([]User, error) {
	const q = `
SELECT ` + userColumns + `
FROM users
WHERE shop_id = $1
ORDER BY created_at ASC
LIMIT $2 OFFSET $3
`
	rows, err := r.db.Query(ctx, q, shopID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (r *Repository) Count(ctx context.Context, shopID string) (int, error) {
	const q = `SELECT COUNT(*) FROM users WHERE shop_id = $1`
	var n int
	if err := r.db.QueryRow(ctx, q, shopID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *Repository) UpdateRole(ctx context.Context, shopID, userID, role string) (*User, error) {
	const q = `
UPDATE users SET role = $3
WHERE shop_id = $1 AND id = $2
RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, q, shopID, userID, role))
}

func (r *Repository) SetBanned(ctx context.Context, shopID, userID string, banned bool) (*User, error) {
	const q = `
UPDATE users SET banned = $3
WHERE shop_id = $1 AND id = $2
RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, q, shopID, userID, banned))
}

func (r *Repository) HasAdmin(ctx context.Context, shopID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE shop_id = $1 AND role = 'ADMIN')`
	var ok bool
	if err := r.db.QueryRow(ctx, q, shopID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}
