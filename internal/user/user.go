package user

import "time"

type User struct {
	ID          string
	ShopID      string
	Email       string
	Name        string
	Role        string
	IsShopOwner bool
	Banned      bool
	// PasswordHash is the bcrypt hash for the session-cookie login path.
	// Never serialized to clients.
	PasswordHash string
	Points       int
	CreatedAt    time.Time
}

// PublicUser is the projection handlers return. Credential fields never
// appear here.
type PublicUser struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	IsShopOwner bool   `json:"isShopOwner"`
	Banned      bool   `json:"banned"`
	Points      int    `json:"points"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		IsShopOwner: u.IsShopOwner,
		Banned:      u.Banned,
		Points:      u.Points,
	}
}
