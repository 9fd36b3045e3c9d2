package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleCustomer Role = "CUSTOMER"
	RoleCourier  Role = "COURIER"
)

// Role ids carried over from the legacy user table. The role is a projection
// of this integer code, never stored as a free enum.
const (
	roleIDAdmin   = 1
	roleIDCourier = 35
)

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Password  string    `json:"-"`
	RoleID    int       `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Role derives the user's role from the stored role id. Unknown codes map to
// the customer role.
func (u *User) Role() Role {
	switch u.RoleID {
	case roleIDAdmin:
		return RoleAdmin
	case roleIDCourier:
		return RoleCourier
	default:
		return RoleCustomer
	}
}

// RoleIDFor is the inverse mapping, used when creating users.
func RoleIDFor(role Role) int {
	switch role {
	case RoleAdmin:
		return roleIDAdmin
	case RoleCourier:
		return roleIDCourier
	default:
		return 2
	}
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Success        bool   `json:"success"`
	Token          string `json:"token,omitempty"`
	ExpiresIn      int    `json:"expires_in,omitempty"`
	Role           Role   `json:"role,omitempty"`
	RemainingTries int    `json:"remaining_tries,omitempty"`
	RetryAfter     int    `json:"retry_after,omitempty"`
	Message        string `json:"message,omitempty"`
}

type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	jwt.RegisteredClaims
}
