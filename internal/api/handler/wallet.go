// internal/api/handler/wallet.go
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"pocketcash-wallet/internal/domain"
	"pocketcash-wallet/internal/service"
)

// WalletHandler handles HTTP requests related to money movements.
type WalletHandler struct {
	responder
	service service.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(svc service.WalletService, logger *slog.Logger) *WalletHandler {
	return &WalletHandler{responder: responder{logger: logger}, service: svc}
}

// SendMoneyRequest represents the request body for send money.
// Receiver is an email address or mobile number.
type SendMoneyRequest struct {
	Receiver string          `json:"receiver"`
	Amount   decimal.Decimal `json:"amount"`
	PIN      string          `json:"pin"`
}

// CashRequest represents the request body for cash in and cash out requests.
// Agent is the agent's email address or mobile number.
type CashRequest struct {
	Agent  string          `json:"agent"`
	Amount decimal.Decimal `json:"amount"`
	PIN    string          `json:"pin"`
}

// AcceptRequest represents the request body for accepting a pending transaction.
type AcceptRequest struct {
	TrxID string `json:"trx_id"`
}

type requestFunc func(ctx context.Context, email string, req service.TransferRequest) (*domain.Transaction, error)

type acceptFunc func(ctx context.Context, email, trxID string) ([]domain.Transaction, error)

// SendMoney transfers money from the caller to another customer.
// POST /send-money
func (h *WalletHandler) SendMoney(w http.ResponseWriter, r *http.Request) {
	caller, err := callerEmail(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	var req SendMoneyRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	transaction, err := h.service.SendMoney(r.Context(), caller, service.TransferRequest{
		Counterparty: req.Receiver,
		PIN:          req.PIN,
		Amount:       req.Amount,
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]any{
		"message":     "Send money successful",
		"transaction": transaction,
	})
}

// CashOutRequest records a pending cash out for an agent to accept.
// POST /cash-out-request
func (h *WalletHandler) CashOutRequest(w http.ResponseWriter, r *http.Request) {
	h.handleCashRequest(w, r, h.service.CashOutRequest, "Cash out request submitted")
}

// CashInRequest records a pending cash in for an agent to accept.
// POST /cash-in-request
func (h *WalletHandler) CashInRequest(w http.ResponseWriter, r *http.Request) {
	h.handleCashRequest(w, r, h.service.CashInRequest, "Cash in request submitted")
}

// CashOutAccept completes a pending cash out.
// POST /cash-out-accept
func (h *WalletHandler) CashOutAccept(w http.ResponseWriter, r *http.Request) {
	h.handleAccept(w, r, h.service.CashOutAccept, "Cash out accepted")
}

// CashInAccept completes a pending cash in.
// POST /cash-in-accept
func (h *WalletHandler) CashInAccept(w http.ResponseWriter, r *http.Request) {
	h.handleAccept(w, r, h.service.CashInAccept, "Cash in accepted")
}

// ListCashOutRequests returns the caller's pending cash outs.
// GET /cash-out-request-transactions
func (h *WalletHandler) ListCashOutRequests(w http.ResponseWriter, r *http.Request) {
	h.handleListPending(w, r, domain.TransactionTypeCashOut)
}

// ListCashInRequests returns the caller's pending cash ins.
// GET /cash-in-request-transactions
func (h *WalletHandler) ListCashInRequests(w http.ResponseWriter, r *http.Request) {
	h.handleListPending(w, r, domain.TransactionTypeCashIn)
}

// MyTransactions returns the caller's transaction history.
// GET /my-transactions?type=&status=
func (h *WalletHandler) MyTransactions(w http.ResponseWriter, r *http.Request) {
	caller, err := callerEmail(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	limit, offset := pagination(r)
	query := r.URL.Query()
	transactions, total, err := h.service.ListTransactionsFor(r.Context(), caller, domain.TransactionFilter{
		Type:   domain.TransactionType(query.Get("type")),
		Status: domain.TransactionStatus(query.Get("status")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, paginated(transactions, limit, offset, total))
}

func (h *WalletHandler) handleCashRequest(w http.ResponseWriter, r *http.Request, submit requestFunc, message string) {
	caller, err := callerEmail(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	var req CashRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	transaction, err := submit(r.Context(), caller, service.TransferRequest{
		Counterparty: req.Agent,
		PIN:          req.PIN,
		Amount:       req.Amount,
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusCreated, map[string]any{
		"message":     message,
		"transaction": transaction,
	})
}

func (h *WalletHandler) handleAccept(w http.ResponseWriter, r *http.Request, accept acceptFunc, message string) {
	caller, err := callerEmail(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	var req AcceptRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	remaining, err := accept(r.Context(), caller, req.TrxID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	if remaining == nil {
		remaining = []domain.Transaction{}
	}

	h.respondWithJSON(w, http.StatusOK, map[string]any{
		"message": message,
		"pending": remaining,
	})
}

func (h *WalletHandler) handleListPending(w http.ResponseWriter, r *http.Request, txType domain.TransactionType) {
	caller, err := callerEmail(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	limit, offset := pagination(r)
	transactions, total, err := h.service.ListPending(r.Context(), caller, txType, limit, offset)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, paginated(transactions, limit, offset, total))
}
