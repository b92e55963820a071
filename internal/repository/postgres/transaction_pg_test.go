package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketcash-wallet/internal/domain"
	"pocketcash-wallet/internal/util"
)

var transactionCols = []string{"id", "trx_id", "sender_mobile", "receiver_mobile", "amount", "fee", "type", "status", "created_at", "completed_at"}

func TestTransactionRepository_CreateTransaction(t *testing.T) {
	ctx := context.Background()
	repo := &TransactionRepository{}
	db, mock := newMockDB(t)

	trx := domain.NewTransaction("ABCDE12345", "01710000001", "01710000002",
		decimal.NewFromInt(200), decimal.NewFromInt(5), domain.TransactionTypeSendMoney, domain.TransactionStatusCompleted)

	mock.ExpectQuery(`INSERT INTO transactions`).
		WithArgs(trx.TrxID, trx.SenderMobile, trx.ReceiverMobile, trx.Amount, trx.Fee, trx.Type, trx.Status, trx.CreatedAt, trx.CompletedAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	require.NoError(t, repo.CreateTransaction(ctx, db, trx))
	assert.Equal(t, int64(7), trx.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_TrxIDExists(t *testing.T) {
	ctx := context.Background()
	repo := &TransactionRepository{}
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM transactions WHERE trx_id = \$1\)`).
		WithArgs("ABCDE12345").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.TrxIDExists(ctx, db, "ABCDE12345")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestTransactionRepository_GetByTrxIDForUpdate(t *testing.T) {
	ctx := context.Background()
	repo := &TransactionRepository{}

	t.Run("Found", func(t *testing.T) {
		db, mock := newMockDB(t)
		created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		mock.ExpectQuery(`FROM transactions WHERE trx_id = \$1 FOR UPDATE`).
			WithArgs("ABCDE12345").
			WillReturnRows(sqlmock.NewRows(transactionCols).
				AddRow(int64(3), "ABCDE12345", "01710000001", "01710000002", "200.0000", "3.0000", "Cash Out", "pending", created, nil))

		trx, err := repo.GetByTrxIDForUpdate(ctx, db, "ABCDE12345")
		require.NoError(t, err)
		assert.Equal(t, domain.TransactionTypeCashOut, trx.Type)
		assert.True(t, trx.IsPending())
		assert.True(t, decimal.NewFromInt(203).Equal(trx.Total()))
		assert.Nil(t, trx.CompletedAt)
	})

	t.Run("NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`FROM transactions WHERE trx_id = \$1`).WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByTrxIDForUpdate(ctx, db, "ZZZZZZZZZZ")
		assert.ErrorIs(t, err, util.ErrNotFound)
	})
}

func TestTransactionRepository_MarkCompleted(t *testing.T) {
	ctx := context.Background()
	repo := &TransactionRepository{}
	at := time.Now().UTC()

	t.Run("FlipsPending", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`UPDATE transactions SET status = \$1, completed_at = \$2 WHERE trx_id = \$3 AND status = \$4`).
			WithArgs(domain.TransactionStatusCompleted, at, "ABCDE12345", domain.TransactionStatusPending).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.MarkCompleted(ctx, db, "ABCDE12345", at))
	})

	t.Run("AlreadyCompleted", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`UPDATE transactions SET status`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.MarkCompleted(ctx, db, "ABCDE12345", at), util.ErrNotFound)
	})
}

func TestTransactionRepository_ListTransactions(t *testing.T) {
	ctx := context.Background()
	repo := &TransactionRepository{}

	t.Run("PartyAndFilters", func(t *testing.T) {
		db, mock := newMockDB(t)
		created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		mock.ExpectQuery(`FROM transactions WHERE \(sender_mobile = \$1 OR receiver_mobile = \$1\) AND type = \$2 AND status = \$3 ORDER BY created_at DESC, id DESC LIMIT \$4 OFFSET \$5`).
			WithArgs("01710000001", domain.TransactionTypeCashIn, domain.TransactionStatusPending, 10, 0).
			WillReturnRows(sqlmock.NewRows(transactionCols).
				AddRow(int64(1), "AAAAAAAAAA", "01810000009", "01710000001", "500", "0", "Cash In", "pending", created, nil))
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM transactions WHERE`).
			WithArgs("01710000001", domain.TransactionTypeCashIn, domain.TransactionStatusPending).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		txs, total, err := repo.ListTransactions(ctx, db, domain.TransactionFilter{
			PartyMobile: "01710000001",
			Type:        domain.TransactionTypeCashIn,
			Status:      domain.TransactionStatusPending,
			Limit:       10,
		})
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, "AAAAAAAAAA", txs[0].TrxID)
		assert.Equal(t, int64(1), total)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unfiltered", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`FROM transactions ORDER BY created_at DESC, id DESC$`).
			WillReturnRows(sqlmock.NewRows(transactionCols))
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM transactions$`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		txs, total, err := repo.ListTransactions(ctx, db, domain.TransactionFilter{})
		require.NoError(t, err)
		assert.Empty(t, txs)
		assert.Zero(t, total)
	})
}

func TestWhereBuilder(t *testing.T) {
	var w whereBuilder
	assert.Equal(t, "", w.String())

	w.add("a = $%d", 1)
	w.add("(b = $%d OR c = $%[1]d)", "x")
	assert.Equal(t, " WHERE a = $1 AND (b = $2 OR c = $2)", w.String())

	clause, args := w.page(5, 10)
	assert.Equal(t, " LIMIT $3 OFFSET $4", clause)
	assert.Equal(t, []interface{}{1, "x", 5, 10}, args)
	assert.Len(t, w.args, 2)

	assert.Equal(t, `50\%\_off\\`, escapeLike(`50%_off\`))
}
