// internal/api/handler/response.go
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pocketcash-wallet/internal/api/middleware"
	"pocketcash-wallet/internal/api/types"
	"pocketcash-wallet/internal/util"
)

// DefaultTimeout bounds the processing time of a single request.
const DefaultTimeout = 15 * time.Second

// Pagination bounds for list endpoints.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

const maxBodyBytes = 1 << 20

// errorMapping ties sentinel errors to HTTP status codes, checked in order.
var errorMapping = []struct {
	target error
	code   int
}{
	{util.ErrUnauthenticated, http.StatusUnauthorized},
	{util.ErrForbidden, http.StatusForbidden},
	{util.ErrInvalidInput, http.StatusBadRequest},
	{util.ErrDuplicateEmail, http.StatusBadRequest},
	{util.ErrDuplicateMobile, http.StatusBadRequest},
	{util.ErrInvalidCredentials, http.StatusBadRequest},
	{util.ErrAccountBlocked, http.StatusBadRequest},
	{util.ErrAccountInactive, http.StatusBadRequest},
	{util.ErrSelfTransfer, http.StatusBadRequest},
	{util.ErrWrongTransferChannel, http.StatusBadRequest},
	{util.ErrBelowMinimumAmount, http.StatusBadRequest},
	{util.ErrInsufficientFunds, http.StatusBadRequest},
	{util.ErrSenderNotFound, http.StatusNotFound},
	{util.ErrReceiverNotFound, http.StatusNotFound},
	{util.ErrTransactionNotFound, http.StatusNotFound},
	{util.ErrUserNotFound, http.StatusNotFound},
	{util.ErrNotFound, http.StatusNotFound},
	{util.ErrFeatureUnavailable, http.StatusServiceUnavailable},
}

// responder carries the JSON helpers shared by all handlers.
type responder struct {
	logger *slog.Logger
}

func (h responder) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondWithError maps err onto a status code. Only unmapped errors are logged.
func (h responder) respondWithError(w http.ResponseWriter, err error) {
	for _, m := range errorMapping {
		if util.IsError(err, m.target) {
			h.respondWithJSON(w, m.code, map[string]string{"error": clientMessage(err, m.target)})
			return
		}
	}
	h.logger.Error("Unhandled service error", "error", err)
	h.respondWithJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
}

// clientMessage drops the operation prefixes added while the error crossed
// layers, keeping the sentinel text and any detail after it.
func clientMessage(err, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()); i >= 0 {
		return msg[i:]
	}
	return sentinel.Error()
}

// decodeJSON reads a single JSON object from the request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", util.ErrInvalidInput)
		}
		return fmt.Errorf("%w: malformed request body", util.ErrInvalidInput)
	}
	return nil
}

// pagination reads limit and offset query parameters. Missing or invalid
// values fall back to the defaults; limit is capped at MaxPageLimit.
func pagination(r *http.Request) (limit, offset int) {
	limit = DefaultPageLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = min(v, MaxPageLimit)
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

func paginated[T any](data []T, limit, offset int, total int64) types.PaginatedResponse[T] {
	if data == nil {
		data = []T{}
	}
	return types.PaginatedResponse[T]{Data: data, Limit: limit, Offset: offset, TotalCount: total}
}

// callerEmail returns the authenticated email placed in the context by middleware.Authenticate.
func callerEmail(r *http.Request) (string, error) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok || claims.Email == "" {
		return "", util.ErrUnauthenticated
	}
	return claims.Email, nil
}
