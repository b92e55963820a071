// internal/util/errors.go
package util

import "errors"

// Common application-specific errors.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrInvalidInput        = errors.New("invalid input provided")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrUserNotFound        = errors.New("user not found")
	ErrSenderNotFound      = errors.New("sender not found")
	ErrReceiverNotFound    = errors.New("receiver not found")
	ErrTransactionNotFound = errors.New("transaction not found")

	// Authentication and authorization.
	ErrUnauthenticated    = errors.New("unauthorized access")
	ErrForbidden          = errors.New("forbidden access")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountBlocked     = errors.New("account is blocked")
	ErrAccountInactive    = errors.New("account is not active")

	// Registration.
	ErrDuplicateEmail  = errors.New("email already exists")
	ErrDuplicateMobile = errors.New("mobile number already exists")

	// Transfer rules.
	ErrSelfTransfer         = errors.New("cannot transfer to your own account")
	ErrWrongTransferChannel = errors.New("wrong transfer channel")
	ErrBelowMinimumAmount   = errors.New("amount is below the minimum")

	ErrFeatureUnavailable = errors.New("feature is not available")
)

// IsError reports whether err matches target anywhere in its chain.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
