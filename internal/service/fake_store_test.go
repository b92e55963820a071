// internal/service/fake_store_test.go
package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"pocketcash-wallet/internal/auth"
	"pocketcash-wallet/internal/domain"
	"pocketcash-wallet/internal/repository"
	"pocketcash-wallet/internal/util"
	"pocketcash-wallet/pkg/db"
)

const testPIN = "12345"

var (
	testPinDigestOnce sync.Once
	testPinDigest     string
	testHasher        = auth.NewPinHasher(auth.MinPinHashCost)
)

func pinDigest(t *testing.T) string {
	t.Helper()
	testPinDigestOnce.Do(func() {
		d, err := testHasher.Hash(testPIN)
		if err != nil {
			panic(err)
		}
		testPinDigest = d
	})
	return testPinDigest
}

// fakeStore is an in-memory stand-in for the users and transactions tables.
// Transactions snapshot the whole store on begin and restore it on rollback.
type fakeStore struct {
	mu           sync.Mutex
	users        map[string]domain.User
	transactions []domain.Transaction
	nextTxID     int64
	begun        int
	committed    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[string]domain.User{}}
}

// fakeExecutor satisfies repository.DBExecutor; the fake repositories never call it.
type fakeExecutor struct {
	repository.DBExecutor
}

type fakeTx struct {
	fakeExecutor
	store        *fakeStore
	users        map[string]domain.User
	transactions []domain.Transaction
	nextTxID     int64
	done         bool
}

func (s *fakeStore) begin(ctx context.Context, _ db.DBTxBeginner) (db.TxController, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.begun++
	users := make(map[string]domain.User, len(s.users))
	for k, v := range s.users {
		users[k] = v
	}
	return &fakeTx{
		store:        s,
		users:        users,
		transactions: append([]domain.Transaction(nil), s.transactions...),
		nextTxID:     s.nextTxID,
	}, nil
}

func (t *fakeTx) Commit() error {
	if t.done {
		return sql.ErrTxDone
	}
	t.done = true
	t.store.mu.Lock()
	t.store.committed++
	t.store.mu.Unlock()
	return nil
}

func (t *fakeTx) Rollback() error {
	if t.done {
		return sql.ErrTxDone
	}
	t.done = true
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.store.users = t.users
	t.store.transactions = t.transactions
	t.store.nextTxID = t.nextTxID
	return nil
}

func (s *fakeStore) seed(t *testing.T, name, email, mobile string, role domain.Role, status domain.UserStatus, balance int64) *domain.User {
	t.Helper()
	u := domain.NewUser(name, "", email, mobile, pinDigest(t), role)
	u.Status = status
	u.Balance = decimal.NewFromInt(balance)
	require.NoError(t, (&fakeUserRepo{s}).CreateUser(context.Background(), fakeExecutor{}, u))
	return u
}

func (s *fakeStore) user(t *testing.T, id string) domain.User {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	require.True(t, ok, "user %s not in store", id)
	return u
}

func (s *fakeStore) allTransactions() []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Transaction(nil), s.transactions...)
}

type fakeUserRepo struct{ s *fakeStore }

func (r *fakeUserRepo) CreateUser(ctx context.Context, q repository.DBExecutor, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return util.ErrDuplicateEmail
		}
		if u.MobileNumber == user.MobileNumber {
			return util.ErrDuplicateMobile
		}
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) find(match func(domain.User) bool) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, util.ErrNotFound
}

func (r *fakeUserRepo) GetUserByID(ctx context.Context, q repository.DBExecutor, id string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.ID == id })
}

func (r *fakeUserRepo) GetUserByIDForUpdate(ctx context.Context, q repository.DBExecutor, id string) (*domain.User, error) {
	return r.GetUserByID(ctx, q, id)
}

func (r *fakeUserRepo) GetUserByEmail(ctx context.Context, q repository.DBExecutor, email string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) GetUserByMobile(ctx context.Context, q repository.DBExecutor, mobile string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.MobileNumber == mobile })
}

func (r *fakeUserRepo) GetUserByEmailOrMobile(ctx context.Context, q repository.DBExecutor, ident string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Email == ident || u.MobileNumber == ident })
}

func (r *fakeUserRepo) ListUsers(ctx context.Context, q repository.DBExecutor, filter domain.UserFilter) ([]domain.User, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var matched []domain.User
	for _, u := range r.s.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Status != "" && u.Status != filter.Status {
			continue
		}
		if filter.NameContains != "" && !strings.Contains(strings.ToLower(u.Name), strings.ToLower(filter.NameContains)) {
			continue
		}
		matched = append(matched, u)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })
	return page(matched, filter.Limit, filter.Offset), int64(len(matched)), nil
}

func (r *fakeUserRepo) update(id string, fn func(u *domain.User) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return util.ErrNotFound
	}
	if err := fn(&u); err != nil {
		return err
	}
	u.UpdatedAt = time.Now().UTC()
	r.s.users[id] = u
	return nil
}

func (r *fakeUserRepo) AdjustBalance(ctx context.Context, q repository.DBExecutor, id string, delta decimal.Decimal) error {
	return r.update(id, func(u *domain.User) error {
		next := u.Balance.Add(delta)
		if next.IsNegative() {
			return util.ErrInsufficientFunds
		}
		u.Balance = next
		return nil
	})
}

func (r *fakeUserRepo) UpdateStatus(ctx context.Context, q repository.DBExecutor, id string, status domain.UserStatus) error {
	return r.update(id, func(u *domain.User) error { u.Status = status; return nil })
}

func (r *fakeUserRepo) UpdateLastLogin(ctx context.Context, q repository.DBExecutor, id string, at time.Time) error {
	return r.update(id, func(u *domain.User) error { u.LastLoginAt = &at; return nil })
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, q repository.DBExecutor, id, name, photoURL string) error {
	return r.update(id, func(u *domain.User) error { u.Name, u.PhotoURL = name, photoURL; return nil })
}

type fakeTransactionRepo struct{ s *fakeStore }

func (r *fakeTransactionRepo) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.transactions {
		if existing.TrxID == transaction.TrxID {
			return fmt.Errorf("duplicate trx_id %s", transaction.TrxID)
		}
	}
	r.s.nextTxID++
	transaction.ID = r.s.nextTxID
	r.s.transactions = append(r.s.transactions, *transaction)
	return nil
}

func (r *fakeTransactionRepo) TrxIDExists(ctx context.Context, q repository.DBExecutor, trxID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.transactions {
		if existing.TrxID == trxID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTransactionRepo) GetByTrxIDForUpdate(ctx context.Context, q repository.DBExecutor, trxID string) (*domain.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.transactions {
		if existing.TrxID == trxID {
			found := existing
			return &found, nil
		}
	}
	return nil, util.ErrNotFound
}

func (r *fakeTransactionRepo) MarkCompleted(ctx context.Context, q repository.DBExecutor, trxID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.transactions {
		if r.s.transactions[i].TrxID == trxID && r.s.transactions[i].IsPending() {
			r.s.transactions[i].Status = domain.TransactionStatusCompleted
			r.s.transactions[i].CompletedAt = &at
			return nil
		}
	}
	return util.ErrNotFound
}

func (r *fakeTransactionRepo) ListTransactions(ctx context.Context, q repository.DBExecutor, filter domain.TransactionFilter) ([]domain.Transaction, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var matched []domain.Transaction
	for i := len(r.s.transactions) - 1; i >= 0; i-- {
		t := r.s.transactions[i]
		if filter.PartyMobile != "" && t.SenderMobile != filter.PartyMobile && t.ReceiverMobile != filter.PartyMobile {
			continue
		}
		if filter.SenderMobile != "" && t.SenderMobile != filter.SenderMobile {
			continue
		}
		if filter.ReceiverMobile != "" && t.ReceiverMobile != filter.ReceiverMobile {
			continue
		}
		if filter.Type != "" && t.Type != filter.Type {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		matched = append(matched, t)
	}
	return page(matched, filter.Limit, filter.Offset), int64(len(matched)), nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// services bundles every service over one fake store.
type services struct {
	store  *fakeStore
	auth   AuthService
	wallet *walletService
	admin  *adminService
}

func newServices(t *testing.T, tokens TokenIssuer) *services {
	t.Helper()
	store := newFakeStore()
	users := &fakeUserRepo{store}
	transactions := &fakeTransactionRepo{store}
	reader := fakeExecutor{}

	return &services{
		store: store,
		auth: NewAuthService(nil, reader, users, testHasher, tokens, nil,
			store.begin, db.CommitTx, db.RollbackTx),
		wallet: NewWalletService(nil, reader, users, transactions, testHasher,
			store.begin, db.CommitTx, db.RollbackTx).(*walletService),
		admin: NewAdminService(nil, reader, users, transactions,
			store.begin, db.CommitTx, db.RollbackTx).(*adminService),
	}
}
