// internal/repository/postgres/user_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"pocketcash-wallet/internal/domain"
	"pocketcash-wallet/internal/repository"
	"pocketcash-wallet/internal/util"
)

const userColumns = `id, name, photo_url, email, mobile_number, pin_hash, balance, status, role, created_at, updated_at, last_login_at`

// UserRepository implements repository.UserRepository for PostgreSQL.
type UserRepository struct {
	// Stateless: methods receive a DBExecutor so they can join a transaction.
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &UserRepository{}
}

// CreateUser inserts a new user into the database using the provided DBExecutor.
func (r *UserRepository) CreateUser(ctx context.Context, q repository.DBExecutor, user *domain.User) error {
	query := `INSERT INTO users (id, name, photo_url, email, mobile_number, pin_hash, balance, status, role, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := q.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.PhotoURL,
		user.Email,
		user.MobileNumber,
		user.PinHash,
		user.Balance,
		user.Status,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if constraint, ok := uniqueConstraint(err); ok {
			switch constraint {
			case "users_email_key":
				return util.ErrDuplicateEmail
			case "users_mobile_number_key":
				return util.ErrDuplicateMobile
			}
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, q repository.DBExecutor, desc, query string, args ...interface{}) (*domain.User, error) {
	var user domain.User
	if err := q.GetContext(ctx, &user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by %s: %w", desc, err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by their ID.
func (r *UserRepository) GetUserByID(ctx context.Context, q repository.DBExecutor, id string) (*domain.User, error) {
	return r.getOne(ctx, q, "ID", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetUserByIDForUpdate retrieves a user by ID with a row lock.
func (r *UserRepository) GetUserByIDForUpdate(ctx context.Context, q repository.DBExecutor, id string) (*domain.User, error) {
	return r.getOne(ctx, q, "ID for update", `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
}

// GetUserByEmail retrieves a user by email.
func (r *UserRepository) GetUserByEmail(ctx context.Context, q repository.DBExecutor, email string) (*domain.User, error) {
	return r.getOne(ctx, q, "email", `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// GetUserByMobile retrieves a user by mobile number.
func (r *UserRepository) GetUserByMobile(ctx context.Context, q repository.DBExecutor, mobile string) (*domain.User, error) {
	return r.getOne(ctx, q, "mobile", `SELECT `+userColumns+` FROM users WHERE mobile_number = $1`, mobile)
}

// GetUserByEmailOrMobile retrieves a user whose email or mobile number equals ident.
func (r *UserRepository) GetUserByEmailOrMobile(ctx context.Context, q repository.DBExecutor, ident string) (*domain.User, error) {
	return r.getOne(ctx, q, "email or mobile", `SELECT `+userColumns+` FROM users WHERE email = $1 OR mobile_number = $1 LIMIT 1`, ident)
}

// ListUsers retrieves a filtered, paginated list of users, newest first.
// It performs two queries: one for the data and one for the total count.
func (r *UserRepository) ListUsers(ctx context.Context, q repository.DBExecutor, filter domain.UserFilter) ([]domain.User, int64, error) {
	var where whereBuilder
	if filter.Role != "" {
		where.add("role = $%d", filter.Role)
	}
	if filter.Status != "" {
		where.add("status = $%d", filter.Status)
	}
	if filter.NameContains != "" {
		where.add("name ILIKE $%d", "%"+escapeLike(filter.NameContains)+"%")
	}

	pageClause, args := where.page(filter.Limit, filter.Offset)
	users := []domain.User{}
	query := `SELECT ` + userColumns + ` FROM users` + where.String() + ` ORDER BY created_at DESC` + pageClause
	if err := q.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	var totalCount int64
	if err := q.GetContext(ctx, &totalCount, `SELECT COUNT(*) FROM users`+where.String(), where.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}
	return users, totalCount, nil
}

// AdjustBalance adds delta to the balance of a specific user. The guard in the
// WHERE clause keeps the balance from going negative.
func (r *UserRepository) AdjustBalance(ctx context.Context, q repository.DBExecutor, id string, delta decimal.Decimal) error {
	query := `UPDATE users SET balance = balance + $1, updated_at = $2 WHERE id = $3 AND balance + $1 >= 0`
	result, err := q.ExecContext(ctx, query, delta, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update balance for user %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after updating balance for user %s: %w", id, err)
	}
	if rowsAffected > 0 {
		return nil
	}

	var exists bool
	if err := q.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id); err != nil {
		return fmt.Errorf("failed to check user %s: %w", id, err)
	}
	if !exists {
		return util.ErrNotFound
	}
	return util.ErrInsufficientFunds
}

// UpdateStatus sets the status of a user.
func (r *UserRepository) UpdateStatus(ctx context.Context, q repository.DBExecutor, id string, status domain.UserStatus) error {
	return r.exec(ctx, q, "status", `UPDATE users SET status = $1, updated_at = $2 WHERE id = $3`, status, time.Now().UTC(), id)
}

// UpdateLastLogin records the time of a successful login.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, q repository.DBExecutor, id string, at time.Time) error {
	return r.exec(ctx, q, "last login", `UPDATE users SET last_login_at = $1 WHERE id = $2`, at, id)
}

// UpdateProfile sets the display name and photo URL of a user.
func (r *UserRepository) UpdateProfile(ctx context.Context, q repository.DBExecutor, id, name, photoURL string) error {
	return r.exec(ctx, q, "profile", `UPDATE users SET name = $1, photo_url = $2, updated_at = $3 WHERE id = $4`, name, photoURL, time.Now().UTC(), id)
}

// exec runs a single-row update and maps zero affected rows to util.ErrNotFound.
func (r *UserRepository) exec(ctx context.Context, q repository.DBExecutor, what, query string, args ...interface{}) error {
	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", what, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after updating %s: %w", what, err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}
