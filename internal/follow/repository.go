package follow

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"forumapp/internal/user"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, shopID, followerID, followingID string) (*Follow, error) {
	const q = `
INSERT INTO follows (shop_id, follower_id, following_id)
VALUES ($1, $2, $3)
RETURNING id, shop_id, follower_id, following_id, created_at
`
	f := &Follow{}
	if err := r.db.QueryRow(ctx, q, shopID, followerID, followingID).Scan(
		&f.ID, &f.ShopID, &f.FollowerID, &f.FollowingID, &f.CreatedAt,
	); err != nil {
		return nil, err
	}
	return f, nil
}

// Delete removes the edge; reports whether one existed.
func (r *Repository) Delete(ctx context.Context, shopID, followerID, followingID string) (bool, error) {
	const q = `DELETE FROM follows WHERE shop_id = $1 AND follower_id = $2 AND following_id = $3`
	tag, err := r.db.Exec(ctx, q, shopID, followerID, followingID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Followers lists the users following userID, most recent follower first.
func (r *Repository) Followers(ctx context.Context, shopID, userID string, limit, offset int) ([]user.PublicUser, error) {
	const q = `
SELECT u.id, u.email, COALESCE(u.name,''), u.role, u.is_shop_owner, u.banned, u.points
FROM follows f
JOIN users u ON u.id = f.follower_id AND u.shop_id = f.shop_id
WHERE f.shop_id = $1 AND f.following_id = $2
ORDER BY f.created_at DESC
LIMIT $3 OFFSET $4
`
	return r.queryUsers(ctx, q, shopID, userID, limit, offset)
}

// Following lists the users userID follows, most recent first.
func (r *Repository) Following(ctx context.Context, shopID, userID string, limit, offset int) ([]user.PublicUser, error) {
	const q = `
SELECT u.id, u.email, COALESCE(u.name,''), u.role, u.is_shop_owner, u.banned, u.points
FROM follows f
JOIN users u ON u.id = f.following_id AND u.shop_id = f.shop_id
WHERE f.shop_id = $1 AND f.follower_id = $2
ORDER BY f.created_at DESC
LIMIT $3 OFFSET $4
`
	return r.queryUsers(ctx, q, shopID, userID, limit, offset)
}

func (r *Repository) CountFollowers(ctx context.Context, shopID, userID string) (int, error) {
	const q = `SELECT COUNT(*) FROM follows WHERE shop_id = $1 AND following_id = $2`
	var n int
	err := r.db.QueryRow(ctx, q, shopID, userID).Scan(&n)
	return n, err
}

func (r *Repository) CountFollowing(ctx context.Context, shopID, userID string) (int, error) {
	const q = `SELECT COUNT(*) FROM follows WHERE shop_id = $1 AND follower_id = $2`
	var n int
	err := r.db.QueryRow(ctx, q, shopID, userID).Scan(&n)
	return n, err
}

func (r *Repository) queryUsers(ctx context.Context, q, shopID, userID string, limit, offset int) ([]user.PublicUser, error) {
	rows, err := r.db.Query(ctx, q, shopID, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []user.PublicUser
	for rows.Next() {
		var u user.PublicUser
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.IsShopOwner, &u.Banned, &u.Points); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
