// internal/domain/validate.go
package domain

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/shopspring/decimal"

	"pocketcash-wallet/internal/util"
)

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeIdentifier prepares an email-or-mobile lookup key.
func NormalizeIdentifier(ident string) string {
	ident = strings.TrimSpace(ident)
	if strings.Contains(ident, "@") {
		return strings.ToLower(ident)
	}
	return ident
}

// ValidateEmail checks that email is a bare address.
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: malformed email %q", util.ErrInvalidInput, email)
	}
	return nil
}

// ValidateMobile accepts 6 to 15 digits with an optional leading '+'.
func ValidateMobile(mobile string) error {
	digits := strings.TrimPrefix(mobile, "+")
	if len(digits) < 6 || len(digits) > 15 || !allDigits(digits) {
		return fmt.Errorf("%w: malformed mobile number", util.ErrInvalidInput)
	}
	return nil
}

// ValidatePIN accepts 4 to 8 digits.
func ValidatePIN(pin string) error {
	if len(pin) < 4 || len(pin) > 8 || !allDigits(pin) {
		return fmt.Errorf("%w: pin must be 4 to 8 digits", util.ErrInvalidInput)
	}
	return nil
}

// ValidateAmount accepts positive amounts of at most MaxTransferAmount with
// no more than AmountScale decimal places. The exponent is bounded before any
// arithmetic so that inputs like "1e300000000" are rejected cheaply.
func ValidateAmount(amount decimal.Decimal) error {
	if exp := amount.Exponent(); exp > maxAmountExponent || exp < minAmountExponent {
		return fmt.Errorf("%w: amount is out of range", util.ErrInvalidInput)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", util.ErrInvalidInput)
	}
	if !amount.Round(AmountScale).Equal(amount) {
		return fmt.Errorf("%w: amount must have at most %d decimal places", util.ErrInvalidInput, AmountScale)
	}
	if amount.GreaterThan(MaxTransferAmount) {
		return fmt.Errorf("%w: amount exceeds the maximum of %s", util.ErrInvalidInput, MaxTransferAmount)
	}
	return nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// Registration carries the fields needed to open an account.
type Registration struct {
	Name         string
	PhotoURL     string
	Email        string
	MobileNumber string
	PIN          string
	Role         Role
}

// Normalize trims fields and defaults the role to user.
func (r *Registration) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.PhotoURL = strings.TrimSpace(r.PhotoURL)
	r.Email = NormalizeEmail(r.Email)
	r.MobileNumber = strings.TrimSpace(r.MobileNumber)
	if r.Role == "" {
		r.Role = RoleUser
	}
}

// Validate checks a normalized registration.
func (r *Registration) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: name is required", util.ErrInvalidInput)
	}
	if !r.Role.Valid() {
		return fmt.Errorf("%w: unknown user type %q", util.ErrInvalidInput, r.Role)
	}
	if err := ValidateEmail(r.Email); err != nil {
		return err
	}
	if err := ValidateMobile(r.MobileNumber); err != nil {
		return err
	}
	return ValidatePIN(r.PIN)
}
