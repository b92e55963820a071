// internal/service/wallet_service.go
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pocketcash-wallet/internal/domain"
	"pocketcash-wallet/internal/repository"
	"pocketcash-wallet/internal/util"
	"pocketcash-wallet/pkg/db"
)

// TransferRequest is a money movement initiated by an authenticated customer.
// Counterparty is the email or mobile number of the other side.
type TransferRequest struct {
	Counterparty string
	PIN          string
	Amount       decimal.Decimal
}

// WalletService defines the money movement operations.
type WalletService interface {
	SendMoney(ctx context.Context, senderEmail string, req TransferRequest) (*domain.Transaction, error)
	CashOutRequest(ctx context.Context, customerEmail string, req TransferRequest) (*domain.Transaction, error)
	CashOutAccept(ctx context.Context, accepterEmail, trxID string) ([]domain.Transaction, error)
	CashInRequest(ctx context.Context, customerEmail string, req TransferRequest) (*domain.Transaction, error)
	CashInAccept(ctx context.Context, accepterEmail, trxID string) ([]domain.Transaction, error)
	ListPending(ctx context.Context, email string, txType domain.TransactionType, limit, offset int) ([]domain.Transaction, int64, error)
	ListTransactionsFor(ctx context.Context, email string, filter domain.TransactionFilter) ([]domain.Transaction, int64, error)
}

// walletService implements the WalletService interface.
type walletService struct {
	txRunner
	trxIDs          trxIDGenerator
	userRepo        repository.UserRepository
	transactionRepo repository.TransactionRepository
	hasher          PinHasher
	now             func() time.Time
}

// NewWalletService creates a new instance of WalletService.
func NewWalletService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	transactionRepo repository.TransactionRepository,
	hasher PinHasher,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) WalletService {
	return &walletService{
		txRunner: txRunner{
			dbBeginner: dbBeginner,
			dbExecutor: dbExecutor,
			beginTx:    beginTx,
			commitTx:   commitTx,
			rollbackTx: rollbackTx,
		},
		trxIDs:          trxIDGenerator{transactionRepo: transactionRepo, newTrxID: domain.NewTrxID},
		userRepo:        userRepo,
		transactionRepo: transactionRepo,
		hasher:          hasher,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// SendMoney moves amount from the caller to another customer and charges the
// sender the send-money fee. The transfer is recorded as completed.
func (s *walletService) SendMoney(ctx context.Context, senderEmail string, req TransferRequest) (*domain.Transaction, error) {
	if err := domain.ValidateAmount(req.Amount); err != nil {
		return nil, err
	}

	sender, receiver, err := s.resolveParties(ctx, senderEmail, req)
	if err != nil {
		return nil, fmt.Errorf("send money: %w", err)
	}
	if receiver.Role == domain.RoleAgent {
		return nil, fmt.Errorf("%w: agents cannot receive send money, use cash out", util.ErrWrongTransferChannel)
	}
	if receiver.Status == domain.UserStatusBlocked {
		return nil, fmt.Errorf("%w: receiver account is blocked", util.ErrAccountBlocked)
	}
	if req.Amount.LessThan(domain.MinimumSendAmount) {
		return nil, fmt.Errorf("%w: minimum is %s", util.ErrBelowMinimumAmount, domain.MinimumSendAmount)
	}

	fee := domain.SendMoneyFee(req.Amount)
	total := req.Amount.Add(fee)
	if sender.Balance.LessThan(total) {
		return nil, util.ErrInsufficientFunds
	}

	var transaction *domain.Transaction
	err = s.inTx(ctx, "send money", func(q repository.DBExecutor) error {
		lockedSender, _, err := s.lockPair(ctx, q, sender.ID, receiver.ID)
		if err != nil {
			return fmt.Errorf("send money: %w", err)
		}
		if lockedSender.Balance.LessThan(total) {
			return util.ErrInsufficientFunds
		}

		if err := s.userRepo.AdjustBalance(ctx, q, sender.ID, total.Neg()); err != nil {
			return fmt.Errorf("send money: failed to debit sender: %w", err)
		}
		if err := s.userRepo.AdjustBalance(ctx, q, receiver.ID, req.Amount); err != nil {
			return fmt.Errorf("send money: failed to credit receiver: %w", err)
		}

		trxID, err := s.trxIDs.generate(ctx, q)
		if err != nil {
			return fmt.Errorf("send money: %w", err)
		}
		transaction = domain.NewTransaction(trxID, sender.MobileNumber, receiver.MobileNumber,
			req.Amount, fee, domain.TransactionTypeSendMoney, domain.TransactionStatusCompleted)
		if err := s.transactionRepo.CreateTransaction(ctx, q, transaction); err != nil {
			return fmt.Errorf("send money: failed to create transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

// CashOutRequest records a pending withdrawal of amount from the caller through
// an agent. Funds move only when the agent accepts.
func (s *walletService) CashOutRequest(ctx context.Context, customerEmail string, req TransferRequest) (*domain.Transaction, error) {
	customer, agent, err := s.resolveCashParties(ctx, "cash out", customerEmail, req)
	if err != nil {
		return nil, err
	}

	fee := domain.CashOutFee(req.Amount)
	if customer.Balance.LessThan(req.Amount.Add(fee)) {
		return nil, util.ErrInsufficientFunds
	}
	return s.createPending(ctx, "cash out", customer.MobileNumber, agent.MobileNumber, req.Amount, fee, domain.TransactionTypeCashOut)
}

// CashInRequest records a pending deposit of amount to the caller through an
// agent. The agent is the debited party of the record.
func (s *walletService) CashInRequest(ctx context.Context, customerEmail string, req TransferRequest) (*domain.Transaction, error) {
	customer, agent, err := s.resolveCashParties(ctx, "cash in", customerEmail, req)
	if err != nil {
		return nil, err
	}
	return s.createPending(ctx, "cash in", agent.MobileNumber, customer.MobileNumber, req.Amount, domain.CashInFee(req.Amount), domain.TransactionTypeCashIn)
}

// CashOutAccept completes a pending cash out and returns the accepting party's
// remaining pending cash out requests.
func (s *walletService) CashOutAccept(ctx context.Context, accepterEmail, trxID string) ([]domain.Transaction, error) {
	return s.accept(ctx, "cash out accept", accepterEmail, trxID, domain.TransactionTypeCashOut)
}

// CashInAccept completes a pending cash in and returns the accepting party's
// remaining pending cash in requests.
func (s *walletService) CashInAccept(ctx context.Context, accepterEmail, trxID string) ([]domain.Transaction, error) {
	return s.accept(ctx, "cash in accept", accepterEmail, trxID, domain.TransactionTypeCashIn)
}

// ListPending returns pending transactions of txType visible to the caller:
// the agent side for agents, the customer side for users, everything for admins.
func (s *walletService) ListPending(ctx context.Context, email string, txType domain.TransactionType, limit, offset int) ([]domain.Transaction, int64, error) {
	user, err := s.currentUser(ctx, s.dbExecutor, email)
	if err != nil {
		return nil, 0, fmt.Errorf("list pending: %w", err)
	}
	return s.listPendingFor(ctx, user, txType, limit, offset)
}

// ListTransactionsFor returns the caller's transactions on either side, with
// optional type and status filters.
func (s *walletService) ListTransactionsFor(ctx context.Context, email string, filter domain.TransactionFilter) ([]domain.Transaction, int64, error) {
	user, err := s.currentUser(ctx, s.dbExecutor, email)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown transaction type %q", util.ErrInvalidInput, filter.Type)
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown transaction status %q", util.ErrInvalidInput, filter.Status)
	}

	filter.PartyMobile = user.MobileNumber
	filter.SenderMobile, filter.ReceiverMobile = "", ""
	transactions, total, err := s.transactionRepo.ListTransactions(ctx, s.dbExecutor, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	return transactions, total, nil
}

func (s *walletService) currentUser(ctx context.Context, q repository.DBExecutor, email string) (*domain.User, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, q, domain.NormalizeEmail(email))
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// resolveParties looks up the initiator and counterparty, verifies the PIN
// and applies the checks shared by every transfer.
func (s *walletService) resolveParties(ctx context.Context, initiatorEmail string, req TransferRequest) (*domain.User, *domain.User, error) {
	initiator, err := s.userRepo.GetUserByEmail(ctx, s.dbExecutor, domain.NormalizeEmail(initiatorEmail))
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, nil, util.ErrSenderNotFound
		}
		return nil, nil, err
	}

	counterparty, err := s.userRepo.GetUserByEmailOrMobile(ctx, s.dbExecutor, domain.NormalizeIdentifier(req.Counterparty))
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, nil, util.ErrReceiverNotFound
		}
		return nil, nil, err
	}

	ok, err := s.hasher.Compare(req.PIN, initiator.PinHash)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, util.ErrInvalidCredentials
	}

	switch initiator.Status {
	case domain.UserStatusActive:
	case domain.UserStatusBlocked:
		return nil, nil, util.ErrAccountBlocked
	default:
		return nil, nil, util.ErrAccountInactive
	}

	if initiator.ID == counterparty.ID {
		return nil, nil, util.ErrSelfTransfer
	}
	return initiator, counterparty, nil
}

func (s *walletService) resolveCashParties(ctx context.Context, op, customerEmail string, req TransferRequest) (*domain.User, *domain.User, error) {
	if err := domain.ValidateAmount(req.Amount); err != nil {
		return nil, nil, err
	}

	customer, agent, err := s.resolveParties(ctx, customerEmail, req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	if customer.Role != domain.RoleUser {
		return nil, nil, fmt.Errorf("%w: only customers can request %s", util.ErrWrongTransferChannel, op)
	}
	switch agent.Role {
	case domain.RoleUser:
		return nil, nil, fmt.Errorf("%w: %s must go through an agent, not a user", util.ErrWrongTransferChannel, op)
	case domain.RoleAdmin:
		return nil, nil, fmt.Errorf("%w: %s cannot target an admin", util.ErrWrongTransferChannel, op)
	}
	if agent.Status == domain.UserStatusBlocked {
		return nil, nil, fmt.Errorf("%w: agent account is blocked", util.ErrAccountBlocked)
	}
	return customer, agent, nil
}

func (s *walletService) createPending(ctx context.Context, op, senderMobile, receiverMobile string, amount, fee decimal.Decimal, txType domain.TransactionType) (*domain.Transaction, error) {
	var transaction *domain.Transaction
	err := s.inTx(ctx, op, func(q repository.DBExecutor) error {
		trxID, err := s.trxIDs.generate(ctx, q)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		transaction = domain.NewTransaction(trxID, senderMobile, receiverMobile, amount, fee, txType, domain.TransactionStatusPending)
		if err := s.transactionRepo.CreateTransaction(ctx, q, transaction); err != nil {
			return fmt.Errorf("%s: failed to create transaction: %w", op, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

// accept completes a pending cash transaction of txType. The agent side of the
// record (receiver for cash out, sender for cash in) or any admin may accept.
// Sender is debited and receiver credited with amount plus fee.
func (s *walletService) accept(ctx context.Context, op, accepterEmail, trxID string, txType domain.TransactionType) ([]domain.Transaction, error) {
	trxID = strings.ToUpper(strings.TrimSpace(trxID))
	if !domain.IsValidTrxID(trxID) {
		return nil, util.ErrTransactionNotFound
	}

	var accepter *domain.User
	err := s.inTx(ctx, op, func(q repository.DBExecutor) error {
		var err error
		accepter, err = s.currentUser(ctx, q, accepterEmail)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		switch accepter.Status {
		case domain.UserStatusActive:
		case domain.UserStatusBlocked:
			return util.ErrAccountBlocked
		default:
			return util.ErrAccountInactive
		}

		transaction, err := s.transactionRepo.GetByTrxIDForUpdate(ctx, q, trxID)
		if err != nil {
			if util.IsError(err, util.ErrNotFound) {
				return util.ErrTransactionNotFound
			}
			return fmt.Errorf("%s: %w", op, err)
		}
		if transaction.Type != txType || !transaction.IsPending() {
			return util.ErrTransactionNotFound
		}

		agentMobile := transaction.ReceiverMobile
		if txType == domain.TransactionTypeCashIn {
			agentMobile = transaction.SenderMobile
		}
		if !accepter.IsAdmin() && accepter.MobileNumber != agentMobile {
			return util.ErrForbidden
		}

		sender, err := s.userRepo.GetUserByMobile(ctx, q, transaction.SenderMobile)
		if err != nil {
			if util.IsError(err, util.ErrNotFound) {
				return util.ErrSenderNotFound
			}
			return fmt.Errorf("%s: %w", op, err)
		}
		receiver, err := s.userRepo.GetUserByMobile(ctx, q, transaction.ReceiverMobile)
		if err != nil {
			if util.IsError(err, util.ErrNotFound) {
				return util.ErrReceiverNotFound
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		lockedSender, lockedReceiver, err := s.lockPair(ctx, q, sender.ID, receiver.ID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if lockedSender.Status == domain.UserStatusBlocked || lockedReceiver.Status == domain.UserStatusBlocked {
			return util.ErrAccountBlocked
		}

		total := transaction.Total()
		if lockedSender.Balance.LessThan(total) {
			return util.ErrInsufficientFunds
		}
		if err := s.userRepo.AdjustBalance(ctx, q, lockedSender.ID, total.Neg()); err != nil {
			return fmt.Errorf("%s: failed to debit sender: %w", op, err)
		}
		if err := s.userRepo.AdjustBalance(ctx, q, lockedReceiver.ID, total); err != nil {
			return fmt.Errorf("%s: failed to credit receiver: %w", op, err)
		}

		if err := s.transactionRepo.MarkCompleted(ctx, q, trxID, s.now()); err != nil {
			if util.IsError(err, util.ErrNotFound) {
				return util.ErrTransactionNotFound
			}
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	remaining, _, err := s.listPendingFor(ctx, accepter, txType, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return remaining, nil
}

func (s *walletService) listPendingFor(ctx context.Context, user *domain.User, txType domain.TransactionType, limit, offset int) ([]domain.Transaction, int64, error) {
	filter := domain.TransactionFilter{
		Type:   txType,
		Status: domain.TransactionStatusPending,
		Limit:  limit,
		Offset: offset,
	}

	// Agent side: receiver of a cash out, sender of a cash in.
	agentSide, customerSide := &filter.ReceiverMobile, &filter.SenderMobile
	if txType == domain.TransactionTypeCashIn {
		agentSide, customerSide = customerSide, agentSide
	}
	switch user.Role {
	case domain.RoleAgent:
		*agentSide = user.MobileNumber
	case domain.RoleUser:
		*customerSide = user.MobileNumber
	}

	transactions, total, err := s.transactionRepo.ListTransactions(ctx, s.dbExecutor, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list pending transactions: %w", err)
	}
	return transactions, total, nil
}

// lockPair locks both user rows in id order and returns them as (a, b).
func (s *walletService) lockPair(ctx context.Context, q repository.DBExecutor, aID, bID string) (*domain.User, *domain.User, error) {
	first, second := aID, bID
	if second < first {
		first, second = second, first
	}

	u1, err := s.userRepo.GetUserByIDForUpdate(ctx, q, first)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lock user %s: %w", first, err)
	}
	u2, err := s.userRepo.GetUserByIDForUpdate(ctx, q, second)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lock user %s: %w", second, err)
	}
	if u1.ID == aID {
		return u1, u2, nil
	}
	return u2, u1, nil
}
