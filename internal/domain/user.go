// internal/domain/user.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Role determines which transfer channels and fee rules apply to a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAgent, RoleAdmin:
		return true
	}
	return false
}

// UserStatus gates sensitive operations on an account.
type UserStatus string

const (
	UserStatusPending UserStatus = "pending"
	UserStatusActive  UserStatus = "active"
	UserStatusBlocked UserStatus = "blocked"
)

// Valid reports whether s is a known status.
func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusPending, UserStatusActive, UserStatusBlocked:
		return true
	}
	return false
}

// User represents an account holder in the wallet system.
type User struct {
	ID           string          `db:"id"`            // UUID primary key
	Name         string          `db:"name"`          // Display name
	PhotoURL     string          `db:"photo_url"`     // Avatar location
	Email        string          `db:"email"`         // Unique, stored lower-case
	MobileNumber string          `db:"mobile_number"` // Unique
	PinHash      string          `db:"pin_hash"`      // bcrypt digest, never exposed
	Balance      decimal.Decimal `db:"balance"`       // NUMERIC(20, 4) in DB, never negative
	Status       UserStatus      `db:"status"`
	Role         Role            `db:"role"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
	LastLoginAt  *time.Time      `db:"last_login_at"` // nil until the first login
}

// NewUser creates a new pending User with a zero balance.
func NewUser(name, photoURL, email, mobileNumber, pinHash string, role Role) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.NewString(),
		Name:         name,
		PhotoURL:     photoURL,
		Email:        email,
		MobileNumber: mobileNumber,
		PinHash:      pinHash,
		Balance:      decimal.Zero,
		Status:       UserStatusPending,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// UserView is the public projection of a User. Fields are listed explicitly so
// that new sensitive columns never leak by default.
type UserView struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	PhotoURL     string          `json:"photo_url"`
	Email        string          `json:"email"`
	MobileNumber string          `json:"mobile_number"`
	Balance      decimal.Decimal `json:"balance"`
	Role         Role            `json:"role"`
	Status       UserStatus      `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	LastLoginAt  *time.Time      `json:"last_login_at"`
}

// View returns the public projection of u.
func (u *User) View() UserView {
	return UserView{
		ID:           u.ID,
		Name:         u.Name,
		PhotoURL:     u.PhotoURL,
		Email:        u.Email,
		MobileNumber: u.MobileNumber,
		Balance:      u.Balance,
		Role:         u.Role,
		Status:       u.Status,
		CreatedAt:    u.CreatedAt,
		LastLoginAt:  u.LastLoginAt,
	}
}

// Views projects a slice of users.
func Views(users []User) []UserView {
	views := make([]UserView, 0, len(users))
	for i := range users {
		views = append(views, users[i].View())
	}
	return views
}

// UserFilter narrows user listings. Empty fields do not filter.
type UserFilter struct {
	Role         Role
	Status       UserStatus
	NameContains string
	Limit        int
	Offset       int
}
