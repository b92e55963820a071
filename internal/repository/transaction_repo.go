// internal/repository/transaction_repo.go
package repository

import (
	"context"
	"time"

	"pocketcash-wallet/internal/domain"
)

// TransactionRepository defines the interface for transaction data operations.
type TransactionRepository interface {
	// CreateTransaction adds a new transaction record using the provided DBExecutor.
	CreateTransaction(ctx context.Context, q DBExecutor, transaction *domain.Transaction) error
	// TrxIDExists reports whether a public transaction code is already taken.
	TrxIDExists(ctx context.Context, q DBExecutor, trxID string) (bool, error)
	// GetByTrxIDForUpdate retrieves a transaction by code and locks the row.
	GetByTrxIDForUpdate(ctx context.Context, q DBExecutor, trxID string) (*domain.Transaction, error)
	// MarkCompleted flips a pending transaction to completed; it returns util.ErrNotFound
	// when no pending record with that code exists.
	MarkCompleted(ctx context.Context, q DBExecutor, trxID string, at time.Time) error
	// ListTransactions retrieves a filtered page of transactions, newest first, and the total match count.
	ListTransactions(ctx context.Context, q DBExecutor, filter domain.TransactionFilter) ([]domain.Transaction, int64, error)
}
