// internal/service/auth_service.go
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pocketcash-wallet/internal/auth"
	"pocketcash-wallet/internal/domain"
	"pocketcash-wallet/internal/repository"
	"pocketcash-wallet/internal/storage"
	"pocketcash-wallet/internal/util"
	"pocketcash-wallet/pkg/db"
)

// PinHasher hashes and verifies PINs. auth.PinHasher implements it.
type PinHasher interface {
	Hash(pin string) (string, error)
	Compare(pin, digest string) (bool, error)
}

// TokenIssuer signs and verifies bearer tokens. auth.TokenManager implements it.
type TokenIssuer interface {
	Issue(user *domain.User) (string, time.Time, error)
	Verify(token string) (*auth.Claims, error)
}

// AvatarPresigner issues upload URLs for profile photos. storage.AvatarStore implements it.
type AvatarPresigner interface {
	PresignUpload(ctx context.Context, userID, contentType string) (*storage.AvatarUpload, error)
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// ProfileUpdate carries optional profile changes. Nil fields are left untouched.
type ProfileUpdate struct {
	Name     *string
	PhotoURL *string
}

// AuthService defines account and session operations.
type AuthService interface {
	Register(ctx context.Context, reg domain.Registration) (*domain.User, error)
	CreateAdmin(ctx context.Context, reg domain.Registration) (*domain.User, error)
	Login(ctx context.Context, emailOrMobile, pin string) (*LoginResult, error)
	CheckSession(ctx context.Context, token string) (*domain.User, error)
	VerifyUser(ctx context.Context, callerEmail, email string) (bool, *domain.User, error)
	CurrentUser(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, email string, update ProfileUpdate) (*domain.User, error)
	PresignAvatarUpload(ctx context.Context, email, contentType string) (*storage.AvatarUpload, error)
}

type authService struct {
	txRunner
	userRepo repository.UserRepository
	hasher   PinHasher
	tokens   TokenIssuer
	avatars  AvatarPresigner
	now      func() time.Time
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	hasher PinHasher,
	tokens TokenIssuer,
	avatars AvatarPresigner,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) AuthService {
	return &authService{
		txRunner: txRunner{
			dbBeginner: dbBeginner,
			dbExecutor: dbExecutor,
			beginTx:    beginTx,
			commitTx:   commitTx,
			rollbackTx: rollbackTx,
		},
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		avatars:  avatars,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a pending account with a zero balance.
func (s *authService) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	return s.createUser(ctx, "register", reg, domain.UserStatusPending)
}

// CreateAdmin creates an active admin account. It is reachable from the operator CLI only.
func (s *authService) CreateAdmin(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	reg.Role = domain.RoleAdmin
	return s.createUser(ctx, "create admin", reg, domain.UserStatusActive)
}

func (s *authService) createUser(ctx context.Context, op string, reg domain.Registration, status domain.UserStatus) (*domain.User, error) {
	reg.Normalize()
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	pinHash, err := s.hasher.Hash(reg.PIN)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user := domain.NewUser(reg.Name, reg.PhotoURL, reg.Email, reg.MobileNumber, pinHash, reg.Role)
	user.Status = status
	if err := s.userRepo.CreateUser(ctx, s.dbExecutor, user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// Login checks the PIN of the account matching emailOrMobile and issues a token.
// An unknown identifier and a wrong PIN are indistinguishable to the caller;
// a blocked account is refused whatever PIN is given.
func (s *authService) Login(ctx context.Context, emailOrMobile, pin string) (*LoginResult, error) {
	ident := domain.NormalizeIdentifier(emailOrMobile)
	if ident == "" || pin == "" {
		return nil, util.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetUserByEmailOrMobile(ctx, s.dbExecutor, ident)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if user.Status == domain.UserStatusBlocked {
		return nil, util.ErrAccountBlocked
	}
	ok, err := s.hasher.Compare(pin, user.PinHash)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if !ok {
		return nil, util.ErrInvalidCredentials
	}

	loginAt := s.now()
	if err := s.userRepo.UpdateLastLogin(ctx, s.dbExecutor, user.ID, loginAt); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	user.LastLoginAt = &loginAt

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// CheckSession verifies token and returns the live account behind it.
func (s *authService) CheckSession(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByEmail(ctx, s.dbExecutor, claims.Email)
	if util.IsError(err, util.ErrNotFound) && claims.Mobile != "" {
		user, err = s.userRepo.GetUserByMobile(ctx, s.dbExecutor, claims.Mobile)
	}
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, fmt.Errorf("check session: %w", err)
	}
	if user.Status == domain.UserStatusBlocked {
		return nil, util.ErrAccountBlocked
	}
	return user, nil
}

// VerifyUser reports whether an account with email exists. Only the owner of
// that email or an admin may ask.
func (s *authService) VerifyUser(ctx context.Context, callerEmail, email string) (bool, *domain.User, error) {
	email = domain.NormalizeEmail(email)
	if email != domain.NormalizeEmail(callerEmail) {
		caller, err := s.CurrentUser(ctx, callerEmail)
		if err != nil {
			return false, nil, err
		}
		if !caller.IsAdmin() {
			return false, nil, util.ErrForbidden
		}
	}

	user, err := s.userRepo.GetUserByEmail(ctx, s.dbExecutor, email)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return false, nil, nil
		}
		return false, nil, fmt.Errorf("verify user: %w", err)
	}
	return true, user, nil
}

// CurrentUser returns the live account for an authenticated email.
func (s *authService) CurrentUser(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, s.dbExecutor, domain.NormalizeEmail(email))
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, fmt.Errorf("current user: %w", err)
	}
	return user, nil
}

// UpdateProfile changes the display name and/or photo URL of the caller.
func (s *authService) UpdateProfile(ctx context.Context, email string, update ProfileUpdate) (*domain.User, error) {
	if update.Name == nil && update.PhotoURL == nil {
		return nil, fmt.Errorf("%w: nothing to update", util.ErrInvalidInput)
	}

	var updated *domain.User
	err := s.inTx(ctx, "update profile", func(q repository.DBExecutor) error {
		user, err := s.userRepo.GetUserByEmail(ctx, q, domain.NormalizeEmail(email))
		if err != nil {
			if util.IsError(err, util.ErrNotFound) {
				return util.ErrUserNotFound
			}
			return fmt.Errorf("update profile: %w", err)
		}
		user, err = s.userRepo.GetUserByIDForUpdate(ctx, q, user.ID)
		if err != nil {
			return fmt.Errorf("update profile: %w", err)
		}

		name, photoURL := user.Name, user.PhotoURL
		if update.Name != nil {
			name = strings.TrimSpace(*update.Name)
			if name == "" {
				return fmt.Errorf("%w: name must not be empty", util.ErrInvalidInput)
			}
		}
		if update.PhotoURL != nil {
			photoURL = strings.TrimSpace(*update.PhotoURL)
		}

		if err := s.userRepo.UpdateProfile(ctx, q, user.ID, name, photoURL); err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
		user.Name, user.PhotoURL = name, photoURL
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// PresignAvatarUpload returns an upload URL for a new profile photo of the caller.
func (s *authService) PresignAvatarUpload(ctx context.Context, email, contentType string) (*storage.AvatarUpload, error) {
	if s.avatars == nil {
		return nil, util.ErrFeatureUnavailable
	}
	user, err := s.CurrentUser(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.avatars.PresignUpload(ctx, user.ID, contentType)
}
