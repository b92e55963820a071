// internal/domain/policy.go
package domain

import "github.com/shopspring/decimal"

// Fee, limit and reward schedule, in base currency units.
var (
	MinimumSendAmount     = decimal.NewFromInt(50)
	SendMoneyFeeThreshold = decimal.NewFromInt(100)
	SendMoneyFlatFee      = decimal.NewFromInt(5)
	CashOutFeeRate        = decimal.RequireFromString("0.015")

	// MaxTransferAmount keeps amount plus fee well inside NUMERIC(20, 4).
	MaxTransferAmount = decimal.NewFromInt(1_000_000_000_000)

	AgentActivationBonus = decimal.NewFromInt(10000)
	UserActivationBonus  = decimal.NewFromInt(40)
)

// AmountScale is the number of decimal places a transfer amount may carry.
const AmountScale = 2

// Exponent bounds checked before any arithmetic on client amounts.
const (
	maxAmountExponent = 12
	minAmountExponent = -18
)

// SendMoneyFee is the flat fee charged when amount exceeds the threshold.
func SendMoneyFee(amount decimal.Decimal) decimal.Decimal {
	if amount.GreaterThan(SendMoneyFeeThreshold) {
		return SendMoneyFlatFee
	}
	return decimal.Zero
}

// CashOutFee is 1.5% of amount, rounded to two decimal places.
func CashOutFee(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(CashOutFeeRate).Round(2)
}

// CashInFee is always zero.
func CashInFee(decimal.Decimal) decimal.Decimal {
	return decimal.Zero
}

// ActivationBonus is the one-time credit paid when a pending account of the
// given role is first activated. Admins receive nothing.
func ActivationBonus(role Role) decimal.Decimal {
	switch role {
	case RoleAgent:
		return AgentActivationBonus
	case RoleUser:
		return UserActivationBonus
	default:
		return decimal.Zero
	}
}
