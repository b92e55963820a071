// internal/api/handler/admin.go
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pocketcash-wallet/internal/domain"
	"pocketcash-wallet/internal/service"
)

// AdminHandler serves the admin-only endpoints. Routes must be mounted
// behind middleware.RequireAdmin.
type AdminHandler struct {
	responder
	service service.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(svc service.AdminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{responder: responder{logger: logger}, service: svc}
}

// ListUsers returns all accounts, optionally filtered by role and status.
// GET /users?role=&status=
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	query := r.URL.Query()
	users, total, err := h.service.ListUsers(r.Context(), domain.UserFilter{
		Role:   domain.Role(query.Get("role")),
		Status: domain.UserStatus(query.Get("status")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, paginated(domain.Views(users), limit, offset, total))
}

// SearchUsers finds accounts whose name contains the given text.
// GET /users/search?name=
func (h *AdminHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	users, total, err := h.service.SearchUsers(r.Context(), r.URL.Query().Get("name"), limit, offset)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, paginated(domain.Views(users), limit, offset, total))
}

// SetUserStatus activates or blocks an account.
// PUT /users/{userID}/{action}
func (h *AdminHandler) SetUserStatus(w http.ResponseWriter, r *http.Request) {
	caller, err := callerEmail(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	change, err := h.service.SetUserStatus(r.Context(), caller, chi.URLParam(r, "userID"), chi.URLParam(r, "action"))
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	body := map[string]any{
		"message": "User status updated",
		"user":    change.User.View(),
	}
	if change.Bonus != nil {
		body["bonus"] = change.Bonus
	}
	h.respondWithJSON(w, http.StatusOK, body)
}

// AllTransactions returns every transaction, optionally filtered.
// GET /all-transactions?type=&status=&mobile=
func (h *AdminHandler) AllTransactions(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	query := r.URL.Query()
	transactions, total, err := h.service.ListAllTransactions(r.Context(), domain.TransactionFilter{
		PartyMobile: query.Get("mobile"),
		Type:        domain.TransactionType(query.Get("type")),
		Status:      domain.TransactionStatus(query.Get("status")),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, paginated(transactions, limit, offset, total))
}
