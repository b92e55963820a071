// internal/service/admin_service.go
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pocketcash-wallet/internal/domain"
	"pocketcash-wallet/internal/repository"
	"pocketcash-wallet/internal/util"
	"pocketcash-wallet/pkg/db"
)

// Status actions accepted by SetUserStatus.
const (
	ActionActivate = "activate"
	ActionBlock    = "block"
)

// StatusChange is the outcome of SetUserStatus. Bonus is nil unless the
// change paid an activation bonus.
type StatusChange struct {
	User  *domain.User
	Bonus *domain.Transaction
}

// AdminService defines the administrative operations. Callers must already
// have checked that the acting identity is an admin.
type AdminService interface {
	ListUsers(ctx context.Context, filter domain.UserFilter) ([]domain.User, int64, error)
	SearchUsers(ctx context.Context, name string, limit, offset int) ([]domain.User, int64, error)
	SetUserStatus(ctx context.Context, adminEmail, userID, action string) (*StatusChange, error)
	ListAllTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, int64, error)
}

type adminService struct {
	txRunner
	trxIDs          trxIDGenerator
	userRepo        repository.UserRepository
	transactionRepo repository.TransactionRepository
}

// NewAdminService creates a new instance of AdminService.
func NewAdminService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	transactionRepo repository.TransactionRepository,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) AdminService {
	return &adminService{
		txRunner: txRunner{
			dbBeginner: dbBeginner,
			dbExecutor: dbExecutor,
			beginTx:    beginTx,
			commitTx:   commitTx,
			rollbackTx: rollbackTx,
		},
		trxIDs:          trxIDGenerator{transactionRepo: transactionRepo, newTrxID: domain.NewTrxID},
		userRepo:        userRepo,
		transactionRepo: transactionRepo,
	}
}

func (s *adminService) ListUsers(ctx context.Context, filter domain.UserFilter) ([]domain.User, int64, error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown role %q", util.ErrInvalidInput, filter.Role)
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", util.ErrInvalidInput, filter.Status)
	}
	users, total, err := s.userRepo.ListUsers(ctx, s.dbExecutor, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

// SearchUsers returns users whose name contains name, case-insensitively.
func (s *adminService) SearchUsers(ctx context.Context, name string, limit, offset int) ([]domain.User, int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, 0, fmt.Errorf("%w: name is required", util.ErrInvalidInput)
	}
	return s.ListUsers(ctx, domain.UserFilter{NameContains: name, Limit: limit, Offset: offset})
}

// SetUserStatus activates or blocks userID. Activating a pending account pays
// the activation bonus for its role in the same transaction.
func (s *adminService) SetUserStatus(ctx context.Context, adminEmail, userID, action string) (*StatusChange, error) {
	var status domain.UserStatus
	switch action {
	case ActionActivate:
		status = domain.UserStatusActive
	case ActionBlock:
		status = domain.UserStatusBlocked
	default:
		return nil, fmt.Errorf("%w: unknown action %q", util.ErrInvalidInput, action)
	}
	// user_id is a UUID column; anything else would fail the cast in Postgres.
	if err := uuid.Validate(userID); err != nil {
		return nil, util.ErrUserNotFound
	}

	change := &StatusChange{}
	err := s.inTx(ctx, "set user status", func(q repository.DBExecutor) error {
		admin, err := s.userRepo.GetUserByEmail(ctx, q, domain.NormalizeEmail(adminEmail))
		if err != nil {
			if util.IsError(err, util.ErrNotFound) {
				return util.ErrUserNotFound
			}
			return fmt.Errorf("set user status: %w", err)
		}
		if !admin.IsAdmin() {
			return util.ErrForbidden
		}

		target, err := s.userRepo.GetUserByIDForUpdate(ctx, q, userID)
		if err != nil {
			if util.IsError(err, util.ErrNotFound) {
				return util.ErrUserNotFound
			}
			return fmt.Errorf("set user status: %w", err)
		}
		if target.ID == admin.ID {
			return fmt.Errorf("%w: admins cannot change their own status", util.ErrForbidden)
		}

		if target.Status == domain.UserStatusPending && status == domain.UserStatusActive {
			bonus, err := s.grantActivationBonus(ctx, q, admin, target)
			if err != nil {
				return err
			}
			change.Bonus = bonus
		}

		if target.Status != status {
			if err := s.userRepo.UpdateStatus(ctx, q, target.ID, status); err != nil {
				return fmt.Errorf("set user status: %w", err)
			}
		}

		change.User, err = s.userRepo.GetUserByID(ctx, q, target.ID)
		if err != nil {
			return fmt.Errorf("set user status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	util.GetLogger().Info("user status changed",
		"user_id", change.User.ID, "status", change.User.Status, "by", domain.NormalizeEmail(adminEmail), "bonus_paid", change.Bonus != nil)
	return change, nil
}

// grantActivationBonus credits the one-time bonus for target's role and records
// it as a completed Bonus transaction from admin. No money leaves the admin.
func (s *adminService) grantActivationBonus(ctx context.Context, q repository.DBExecutor, admin, target *domain.User) (*domain.Transaction, error) {
	amount := domain.ActivationBonus(target.Role)
	if !amount.IsPositive() {
		return nil, nil
	}

	if err := s.userRepo.AdjustBalance(ctx, q, target.ID, amount); err != nil {
		return nil, fmt.Errorf("grant bonus: failed to credit user %s: %w", target.ID, err)
	}

	trxID, err := s.trxIDs.generate(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("grant bonus: %w", err)
	}
	bonus := domain.NewTransaction(trxID, admin.MobileNumber, target.MobileNumber,
		amount, decimal.Zero, domain.TransactionTypeBonus, domain.TransactionStatusCompleted)
	if err := s.transactionRepo.CreateTransaction(ctx, q, bonus); err != nil {
		return nil, fmt.Errorf("grant bonus: failed to create transaction: %w", err)
	}
	return bonus, nil
}

func (s *adminService) ListAllTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, int64, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown transaction type %q", util.ErrInvalidInput, filter.Type)
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown transaction status %q", util.ErrInvalidInput, filter.Status)
	}
	transactions, total, err := s.transactionRepo.ListTransactions(ctx, s.dbExecutor, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list all transactions: %w", err)
	}
	return transactions, total, nil
}
