// internal/repository/user_repo.go
package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"pocketcash-wallet/internal/domain"
)

// UserRepository defines the interface for user data operations.
// Every method runs on the provided DBExecutor, which may be a transaction.
type UserRepository interface {
	// CreateUser inserts a new user; unique violations map to util.ErrDuplicateEmail/ErrDuplicateMobile.
	CreateUser(ctx context.Context, q DBExecutor, user *domain.User) error
	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, q DBExecutor, id string) (*domain.User, error)
	// GetUserByIDForUpdate retrieves a user by ID and locks the row until the transaction ends.
	GetUserByIDForUpdate(ctx context.Context, q DBExecutor, id string) (*domain.User, error)
	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, q DBExecutor, email string) (*domain.User, error)
	// GetUserByMobile retrieves a user by mobile number.
	GetUserByMobile(ctx context.Context, q DBExecutor, mobile string) (*domain.User, error)
	// GetUserByEmailOrMobile retrieves a user matching either identifier.
	GetUserByEmailOrMobile(ctx context.Context, q DBExecutor, ident string) (*domain.User, error)
	// ListUsers retrieves a filtered page of users and the total match count.
	ListUsers(ctx context.Context, q DBExecutor, filter domain.UserFilter) ([]domain.User, int64, error)
	// AdjustBalance adds delta (possibly negative) to a user's balance.
	// It fails with util.ErrInsufficientFunds rather than going below zero.
	AdjustBalance(ctx context.Context, q DBExecutor, id string, delta decimal.Decimal) error
	// UpdateStatus sets a user's status.
	UpdateStatus(ctx context.Context, q DBExecutor, id string, status domain.UserStatus) error
	// UpdateLastLogin records a successful login time.
	UpdateLastLogin(ctx context.Context, q DBExecutor, id string, at time.Time) error
	// UpdateProfile sets a user's display name and photo URL.
	UpdateProfile(ctx context.Context, q DBExecutor, id, name, photoURL string) error
}
