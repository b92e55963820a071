// internal/repository/postgres/transaction_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"pocketcash-wallet/internal/domain"
	"pocketcash-wallet/internal/repository"
	"pocketcash-wallet/internal/util"
)

const transactionColumns = `id, trx_id, sender_mobile, receiver_mobile, amount, fee, type, status, created_at, completed_at`

// TransactionRepository implements repository.TransactionRepository for PostgreSQL.
type TransactionRepository struct {
	// Stateless: methods receive a DBExecutor so they can join a transaction.
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db *sqlx.DB) repository.TransactionRepository {
	return &TransactionRepository{}
}

// CreateTransaction inserts a new transaction record into the database using the provided DBExecutor.
func (r *TransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	query := `INSERT INTO transactions (trx_id, sender_mobile, receiver_mobile, amount, fee, type, status, created_at, completed_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`

	err := q.QueryRowContext(ctx, query,
		transaction.TrxID,
		transaction.SenderMobile,
		transaction.ReceiverMobile,
		transaction.Amount,
		transaction.Fee,
		transaction.Type,
		transaction.Status,
		transaction.CreatedAt,
		transaction.CompletedAt,
	).Scan(&transaction.ID)

	if err != nil {
		return fmt.Errorf("failed to create transaction %s: %w", transaction.TrxID, err)
	}
	return nil
}

// TrxIDExists reports whether a transaction with the given public code exists.
func (r *TransactionRepository) TrxIDExists(ctx context.Context, q repository.DBExecutor, trxID string) (bool, error) {
	var exists bool
	if err := q.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM transactions WHERE trx_id = $1)`, trxID); err != nil {
		return false, fmt.Errorf("failed to check transaction id %s: %w", trxID, err)
	}
	return exists, nil
}

// GetByTrxIDForUpdate retrieves a transaction by its public code and locks the row.
func (r *TransactionRepository) GetByTrxIDForUpdate(ctx context.Context, q repository.DBExecutor, trxID string) (*domain.Transaction, error) {
	var transaction domain.Transaction
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE trx_id = $1 FOR UPDATE`
	if err := q.GetContext(ctx, &transaction, query, trxID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transaction %s: %w", trxID, err)
	}
	return &transaction, nil
}

// MarkCompleted flips a pending transaction to completed. The status guard makes
// a second call a no-op that reports util.ErrNotFound.
func (r *TransactionRepository) MarkCompleted(ctx context.Context, q repository.DBExecutor, trxID string, at time.Time) error {
	query := `UPDATE transactions SET status = $1, completed_at = $2 WHERE trx_id = $3 AND status = $4`
	result, err := q.ExecContext(ctx, query, domain.TransactionStatusCompleted, at, trxID, domain.TransactionStatusPending)
	if err != nil {
		return fmt.Errorf("failed to complete transaction %s: %w", trxID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after completing transaction %s: %w", trxID, err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}

// ListTransactions retrieves a filtered, paginated list of transactions, newest first.
// It performs two queries: one for the data and one for the total count.
func (r *TransactionRepository) ListTransactions(ctx context.Context, q repository.DBExecutor, filter domain.TransactionFilter) ([]domain.Transaction, int64, error) {
	var where whereBuilder
	if filter.PartyMobile != "" {
		where.add("(sender_mobile = $%d OR receiver_mobile = $%[1]d)", filter.PartyMobile)
	}
	if filter.SenderMobile != "" {
		where.add("sender_mobile = $%d", filter.SenderMobile)
	}
	if filter.ReceiverMobile != "" {
		where.add("receiver_mobile = $%d", filter.ReceiverMobile)
	}
	if filter.Type != "" {
		where.add("type = $%d", filter.Type)
	}
	if filter.Status != "" {
		where.add("status = $%d", filter.Status)
	}

	pageClause, args := where.page(filter.Limit, filter.Offset)
	transactions := []domain.Transaction{}
	query := `SELECT ` + transactionColumns + ` FROM transactions` + where.String() + ` ORDER BY created_at DESC, id DESC` + pageClause
	if err := q.SelectContext(ctx, &transactions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}

	var totalCount int64
	if err := q.GetContext(ctx, &totalCount, `SELECT COUNT(*) FROM transactions`+where.String(), where.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return transactions, totalCount, nil
}
