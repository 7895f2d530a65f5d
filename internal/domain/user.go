package domain

import (
	"errors"
	"time"
)

var (
	// ErrUsernameAlreadyExists indicates the the user with the given username already exists.
	ErrUsernameAlreadyExists = errors.New("username already exists")
	// ErrUserNotFound indicates the the user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidRole indicates an unknown user role.
	ErrInvalidRole = errors.New("invalid role")
	// ErrNotSeller indicates that the user cannot sell items.
	ErrNotSeller = errors.New("user is not a seller")
	// ErrNotBuyer indicates that the user cannot buy items.
	ErrNotBuyer = errors.New("user is not a buyer")
)

// Role selects what a user may do in the marketplace.
type Role string

// Supported roles.
const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleBuyer || r == RoleSeller
}

// CanBuy reports whether the role may purchase items. Sellers buy too.
func (r Role) CanBuy() bool {
	return r.Valid()
}

// CanSell reports whether the role may own items.
func (r Role) CanSell() bool {
	return r == RoleSeller
}

// User holds user data.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	AccountID string    `json:"account_id"`
	OrderIDs  []string  `json:"order_ids,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateUserParams is the input data to create a user.
type CreateUserParams struct {
	ID       string
	Username string
	Role     Role
}
