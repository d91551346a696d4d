package points

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"forumapp/pkg/db"
)

type Transaction struct {
	ID        string    `json:"id"`
	ShopID    string    `json:"shopId"`
	UserID    string    `json:"userId"`
	Action    string    `json:"action"`
	Points    int       `json:"points"`
	AwardedBy string    `json:"awardedBy"`
	CreatedAt time.Time `json:"createdAt"`
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// Award records the transaction and credits the user's running total in one
// database transaction. Returns the new total.
func (r *Repository) Award(ctx context.Context, shopID, userID string, action Action, points int, awardedBy string) (int, error) {
	// awarded_by is a nullable uuid; an empty actor (token-authenticated shop
	// without an owner row) must become NULL, not ''.
	var by *string
	if awardedBy != "" {
		by = &awardedBy
	}

	var newTotal int
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		const insert = `
INSERT INTO point_transactions (shop_id, user_id, action, points, awarded_by)
VALUES ($1, $2, $3, $4, $5)
`
		if _, err := tx.Exec(ctx, insert, shopID, userID, string(action), points, by); err != nil {
			return err
		}

		const update = `
UPDATE users SET points = points + $3
WHERE shop_id = $1 AND id = $2
RETURNING points
`
		return tx.QueryRow(ctx, update, shopID, userID, points).Scan(&newTotal)
	})
	if err != nil {
		return 0, err
	}
	return newTotal, nil
}

func (r *Repository) Total(ctx context.Context, shopID, userID string) (int, error) {
	const q = `SELECT points FROM users WHERE shop_id = $1 AND id = $2`
	var total int
	err := r.db.QueryRow(ctx, q, shopID, userID).Scan(&total)
	return total, err
}

// History returns the user's most recent point transactions.
func (r *Repository) History(ctx context.Context, shopID, userID string, limit int) ([]Transaction, error) {
	const q = `
SELECT id, shop_id, user_id, action, points, COALESCE(awarded_by,''), created_at
FROM point_transactions
WHERE shop_id = $1 AND user_id = $2
ORDER BY created_at DESC
LIMIT $3
`
	rows, err := r.db.Query(ctx, q, shopID, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.ShopID, &t.UserID, &t.Action, &t.Points, &t.AwardedBy, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
