package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pocketcash-wallet/internal/domain"
	"pocketcash-wallet/internal/service"
	"pocketcash-wallet/internal/storage"
)

// MockAuthService is a mock implementation of service.AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	args := m.Called(ctx, reg)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *MockAuthService) CreateAdmin(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	args := m.Called(ctx, reg)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, emailOrMobile, pin string) (*service.LoginResult, error) {
	args := m.Called(ctx, emailOrMobile, pin)
	result, _ := args.Get(0).(*service.LoginResult)
	return result, args.Error(1)
}

func (m *MockAuthService) CheckSession(ctx context.Context, token string) (*domain.User, error) {
	args := m.Called(ctx, token)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *MockAuthService) VerifyUser(ctx context.Context, callerEmail, email string) (bool, *domain.User, error) {
	args := m.Called(ctx, callerEmail, email)
	user, _ := args.Get(1).(*domain.User)
	return args.Bool(0), user, args.Error(2)
}

func (m *MockAuthService) CurrentUser(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *MockAuthService) UpdateProfile(ctx context.Context, email string, update service.ProfileUpdate) (*domain.User, error) {
	args := m.Called(ctx, email, update)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *MockAuthService) PresignAvatarUpload(ctx context.Context, email, contentType string) (*storage.AvatarUpload, error) {
	args := m.Called(ctx, email, contentType)
	upload, _ := args.Get(0).(*storage.AvatarUpload)
	return upload, args.Error(1)
}

// MockWalletService is a mock implementation of service.WalletService.
type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) SendMoney(ctx context.Context, senderEmail string, req service.TransferRequest) (*domain.Transaction, error) {
	args := m.Called(ctx, senderEmail, req)
	tx, _ := args.Get(0).(*domain.Transaction)
	return tx, args.Error(1)
}

func (m *MockWalletService) CashOutRequest(ctx context.Context, customerEmail string, req service.TransferRequest) (*domain.Transaction, error) {
	args := m.Called(ctx, customerEmail, req)
	tx, _ := args.Get(0).(*domain.Transaction)
	return tx, args.Error(1)
}

func (m *MockWalletService) CashOutAccept(ctx context.Context, accepterEmail, trxID string) ([]domain.Transaction, error) {
	args := m.Called(ctx, accepterEmail, trxID)
	txs, _ := args.Get(0).([]domain.Transaction)
	return txs, args.Error(1)
}

func (m *MockWalletService) CashInRequest(ctx context.Context, customerEmail string, req service.TransferRequest) (*domain.Transaction, error) {
	args := m.Called(ctx, customerEmail, req)
	tx, _ := args.Get(0).(*domain.Transaction)
	return tx, args.Error(1)
}

func (m *MockWalletService) CashInAccept(ctx context.Context, accepterEmail, trxID string) ([]domain.Transaction, error) {
	args := m.Called(ctx, accepterEmail, trxID)
	txs, _ := args.Get(0).([]domain.Transaction)
	return txs, args.Error(1)
}

func (m *MockWalletService) ListPending(ctx context.Context, email string, txType domain.TransactionType, limit, offset int) ([]domain.Transaction, int64, error) {
	args := m.Called(ctx, email, txType, limit, offset)
	txs, _ := args.Get(0).([]domain.Transaction)
	return txs, args.Get(1).(int64), args.Error(2)
}

func (m *MockWalletService) ListTransactionsFor(ctx context.Context, email string, filter domain.TransactionFilter) ([]domain.Transaction, int64, error) {
	args := m.Called(ctx, email, filter)
	txs, _ := args.Get(0).([]domain.Transaction)
	return txs, args.Get(1).(int64), args.Error(2)
}

// MockAdminService is a mock implementation of service.AdminService.
type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) ListUsers(ctx context.Context, filter domain.UserFilter) ([]domain.User, int64, error) {
	args := m.Called(ctx, filter)
	users, _ := args.Get(0).([]domain.User)
	return users, args.Get(1).(int64), args.Error(2)
}

func (m *MockAdminService) SearchUsers(ctx context.Context, name string, limit, offset int) ([]domain.User, int64, error) {
	args := m.Called(ctx, name, limit, offset)
	users, _ := args.Get(0).([]domain.User)
	return users, args.Get(1).(int64), args.Error(2)
}

func (m *MockAdminService) SetUserStatus(ctx context.Context, adminEmail, userID, action string) (*service.StatusChange, error) {
	args := m.Called(ctx, adminEmail, userID, action)
	change, _ := args.Get(0).(*service.StatusChange)
	return change, args.Error(1)
}

func (m *MockAdminService) ListAllTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, int64, error) {
	args := m.Called(ctx, filter)
	txs, _ := args.Get(0).([]domain.Transaction)
	return txs, args.Get(1).(int64), args.Error(2)
}

// mockPinger is a mock implementation of Pinger.
type mockPinger struct {
	mock.Mock
}

func (m *mockPinger) PingContext(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
