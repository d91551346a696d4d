package category

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

const categoryColumns = `id, shop_id, name, COALESCE(description,''), color, sort_order, is_active, created_at`

func scanCategory(row interface{ Scan(...any) error }) (*Category, error) {
	c := &Category{}
	if err := row.Scan(
		&c.ID, &c.ShopID, &c.Name, &c.Description, &c.Color, &c.SortOrder, &c.IsActive, &c.CreatedAt,
	); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *Repository) Create(ctx context.Context, c *Category) (*Category, error) {
	const q = `
INSERT INTO categories (shop_id, name, description, color, sort_order)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + categoryColumns
	return scanCategory(r.db.QueryRow(ctx, q, c.ShopID, c.Name, c.Description, c.Color, c.SortOrder))
}

// ListActive returns the shop's visible categories in sort order.
func (r *Repository) ListActive(ctx context.Context, shopID string) ([]Category, error) {
	const q = `
SELECT ` + categoryColumns + `
FROM categories
WHERE shop_id = $1 AND is_active = TRUE
ORDER BY sort_order ASC, created_at ASC
`
	rows, err := r.db.Query(ctx, q, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}
