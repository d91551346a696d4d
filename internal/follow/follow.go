package follow

import "time"

// Follow is a directed edge between two users in the same shop. At most one
// edge exists per (follower, following) pair; the unique constraint is the
// arbiter under concurrent requests.
type Follow struct {
	ID          string    `json:"id"`
	ShopID      string    `json:"shopId"`
	FollowerID  string    `json:"followerId"`
	FollowingID string    `json:"followingId"`
	CreatedAt   time.Time `json:"createdAt"`
}
