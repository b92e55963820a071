// internal/auth/pin.go
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MinPinHashCost is the lowest bcrypt cost accepted for PIN digests.
const MinPinHashCost = 10

// PinHasher hashes and compares PINs with bcrypt.
type PinHasher struct {
	cost int
}

// NewPinHasher creates a PinHasher. Costs below MinPinHashCost are raised to it.
func NewPinHasher(cost int) *PinHasher {
	if cost < MinPinHashCost {
		cost = MinPinHashCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &PinHasher{cost: cost}
}

// Hash returns the bcrypt digest of pin.
func (h *PinHasher) Hash(pin string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(pin), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash pin: %w", err)
	}
	return string(digest), nil
}

// Compare reports whether pin matches digest. A malformed digest is an error;
// a plain mismatch is not.
func (h *PinHasher) Compare(pin, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(pin))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("failed to compare pin: %w", err)
	}
}
