// internal/domain/trxid.go
package domain

import "math/rand/v2"

// TrxIDLength is the length of a public transaction code.
const TrxIDLength = 10

const trxIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewTrxID returns a random human-typable transaction code. Uniqueness is not
// guaranteed here; callers check the store before use.
func NewTrxID() string {
	b := make([]byte, TrxIDLength)
	for i := range b {
		b[i] = trxIDAlphabet[rand.IntN(len(trxIDAlphabet))]
	}
	return string(b)
}

// IsValidTrxID reports whether s has the shape of a transaction code.
func IsValidTrxID(s string) bool {
	if len(s) != TrxIDLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}
