// internal/service/trxid.go
package service

import (
	"context"
	"fmt"

	"pocketcash-wallet/internal/repository"
	"pocketcash-wallet/internal/util"
)

// trxIDGenerator draws transaction codes until one is unused. The loop has no
// fixed bound; it stops on success, a store error or context cancellation.
type trxIDGenerator struct {
	transactionRepo repository.TransactionRepository
	newTrxID        func() string
}

func (g *trxIDGenerator) generate(ctx context.Context, q repository.DBExecutor) (string, error) {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("generate transaction id: %w", err)
		}

		trxID := g.newTrxID()
		exists, err := g.transactionRepo.TrxIDExists(ctx, q, trxID)
		if err != nil {
			return "", fmt.Errorf("generate transaction id: %w", err)
		}
		if !exists {
			return trxID, nil
		}
		util.GetLogger().Warn("transaction id collision, regenerating", "trx_id", trxID, "attempt", attempt)
	}
}
