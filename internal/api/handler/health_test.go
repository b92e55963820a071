package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestHealthHandler(t *testing.T) {
	t.Run("Root", func(t *testing.T) {
		h := NewHealthHandler(new(mockPinger), discardLogger())
		rec := httptest.NewRecorder()
		h.Root(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Server is running...", rec.Body.String())
	})

	t.Run("DatabaseUp", func(t *testing.T) {
		db := new(mockPinger)
		db.On("PingContext", mock.Anything).Return(nil).Once()
		h := NewHealthHandler(db, discardLogger())

		rec := httptest.NewRecorder()
		h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok","database":"up"}`, rec.Body.String())
		db.AssertExpectations(t)
	})

	t.Run("DatabaseDown", func(t *testing.T) {
		db := new(mockPinger)
		db.On("PingContext", mock.Anything).Return(errors.New("connection refused")).Once()
		h := NewHealthHandler(db, discardLogger())

		rec := httptest.NewRecorder()
		h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
