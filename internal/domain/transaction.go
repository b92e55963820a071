// internal/domain/transaction.go
package domain

import (
	"time"

	"github.com/shopspring/decimal" // For precise monetary calculations
)

// TransactionType defines the type of a money movement.
type TransactionType string

const (
	TransactionTypeSendMoney TransactionType = "Send Money"
	TransactionTypeCashIn    TransactionType = "Cash In"
	TransactionTypeCashOut   TransactionType = "Cash Out"
	TransactionTypeBonus     TransactionType = "Bonus"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeSendMoney, TransactionTypeCashIn, TransactionTypeCashOut, TransactionTypeBonus:
		return true
	}
	return false
}

// TransactionStatus defines the status of a transaction.
// The only permitted transition is pending -> completed.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
)

// Valid reports whether s is a known status.
func (s TransactionStatus) Valid() bool {
	return s == TransactionStatusPending || s == TransactionStatusCompleted
}

// Transaction represents an immutable ledger record.
type Transaction struct {
	ID             int64             `db:"id" json:"id"`                           // BIGSERIAL in DB
	TrxID          string            `db:"trx_id" json:"trx_id"`                   // Public 10-character code
	SenderMobile   string            `db:"sender_mobile" json:"sender_mobile"`     // Party whose balance is debited
	ReceiverMobile string            `db:"receiver_mobile" json:"receiver_mobile"` // Party whose balance is credited
	Amount         decimal.Decimal   `db:"amount" json:"amount"`                   // NUMERIC(20, 4) in DB
	Fee            decimal.Decimal   `db:"fee" json:"fee"`
	Type           TransactionType   `db:"type" json:"type"`
	Status         TransactionStatus `db:"status" json:"status"`
	CreatedAt      time.Time         `db:"created_at" json:"created_at"`
	CompletedAt    *time.Time        `db:"completed_at" json:"completed_at"` // nil while pending
}

// NewTransaction creates a new Transaction instance. Completed records get
// their completion time set to the creation time.
func NewTransaction(
	trxID string,
	senderMobile string,
	receiverMobile string,
	amount decimal.Decimal,
	fee decimal.Decimal,
	txType TransactionType,
	status TransactionStatus,
) *Transaction {
	now := time.Now().UTC()
	t := &Transaction{
		TrxID:          trxID,
		SenderMobile:   senderMobile,
		ReceiverMobile: receiverMobile,
		Amount:         amount,
		Fee:            fee,
		Type:           txType,
		Status:         status,
		CreatedAt:      now,
	}
	if status == TransactionStatusCompleted {
		t.CompletedAt = &now
	}
	return t
}

// Total is the amount plus the fee.
func (t *Transaction) Total() decimal.Decimal {
	return t.Amount.Add(t.Fee)
}

// IsPending reports whether the transaction still awaits acceptance.
func (t *Transaction) IsPending() bool {
	return t.Status == TransactionStatusPending
}

// TransactionFilter narrows transaction listings. Empty fields do not filter.
// PartyMobile matches either side of the transaction.
type TransactionFilter struct {
	PartyMobile    string
	SenderMobile   string
	ReceiverMobile string
	Type           TransactionType
	Status         TransactionStatus
	Limit          int
	Offset         int
}
