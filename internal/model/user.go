package model

import "time"

// Role is the marketplace role carried in the access token.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleGuide   Role = "GUIDE"
	RoleTourist Role = "TOURIST"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleGuide, RoleTourist:
		return true
	}
	return false
}

// ActiveState tracks whether an account may sign in.
type ActiveState string

const (
	StateActive   ActiveState = "ACTIVE"
	StateInactive ActiveState = "INACTIVE"
	StateBlocked  ActiveState = "BLOCKED"
)

// User represents an application user record as stored in the
// `users` table.  Guides additionally advertise an hourly price.
//
// Fields:
//
//	ID           – UUID primary key.
//	Name         – display name.
//	Email        – unique, lower-cased email address.
//	PasswordHash – bcrypt hash; never serialized.
//	Phone        – optional contact number.
//	Picture      – optional avatar URL from the media host.
//	Address      – optional postal address.
//	PricePerHour – advertised hourly rate for guides (nil otherwise).
//	Role         – ADMIN, GUIDE or TOURIST.
//	IsActive     – ACTIVE, INACTIVE or BLOCKED.
//	IsDeleted    – soft delete flag.
type User struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Phone        string      `json:"phone,omitempty"`
	Picture      string      `json:"picture,omitempty"`
	Address      string      `json:"address,omitempty"`
	PricePerHour *Money      `json:"pricePerHour,omitempty"`
	Role         Role        `json:"role"`
	IsActive     ActiveState `json:"isActive"`
	IsDeleted    bool        `json:"isDeleted"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// Contact is the trimmed-down user shape joined into booking and tour
// responses.
type Contact struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the raw token is stored.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    string     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
