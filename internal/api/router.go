// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"pocketcash-wallet/internal/api/handler"
	authmw "pocketcash-wallet/internal/api/middleware"
)

// Handlers groups the HTTP handlers mounted by NewRouter.
type Handlers struct {
	Auth   *handler.AuthHandler
	Wallet *handler.WalletHandler
	Admin  *handler.AdminHandler
	Health *handler.HealthHandler
}

// RouterConfig carries the cross-cutting dependencies of the router.
type RouterConfig struct {
	Tokens         authmw.TokenVerifier
	Users          authmw.UserLookup
	AllowedOrigins []string
	Timeout        time.Duration // handler.DefaultTimeout when zero
}

// NewRouter sets up and returns a new HTTP router.
func NewRouter(h Handlers, cfg RouterConfig, logger *slog.Logger) http.Handler {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = handler.DefaultTimeout
	}

	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	// Auth is a bearer header, never a cookie, so credentials stay disallowed
	// and an empty origin list cannot turn into a credentialed wildcard.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/", h.Health.Root)
	r.Get("/health", h.Health.Health)

	// Public endpoints
	r.Post("/userRegister", h.Auth.Register)
	r.Post("/userLogin", h.Auth.Login)
	r.Post("/userCheck", h.Auth.UserCheck)
	r.Post("/logout", h.Auth.Logout)

	// Authenticated endpoints
	r.Group(func(r chi.Router) {
		r.Use(authmw.Authenticate(cfg.Tokens))

		r.Post("/profile-update", h.Auth.UpdateProfile)
		r.Post("/profile-photo-url", h.Auth.ProfilePhotoURL)

		r.Post("/send-money", h.Wallet.SendMoney)
		r.Post("/cash-out-request", h.Wallet.CashOutRequest)
		r.Post("/cash-out-accept", h.Wallet.CashOutAccept)
		r.Get("/cash-out-request-transactions", h.Wallet.ListCashOutRequests)
		r.Post("/cash-in-request", h.Wallet.CashInRequest)
		r.Post("/cash-in-accept", h.Wallet.CashInAccept)
		r.Get("/cash-in-request-transactions", h.Wallet.ListCashInRequests)
		r.Get("/my-transactions", h.Wallet.MyTransactions)

		adminOnly := authmw.RequireAdmin(cfg.Users, logger)
		r.Route("/users", func(r chi.Router) {
			r.With(adminOnly).Get("/", h.Admin.ListUsers)
			r.With(adminOnly).Get("/search", h.Admin.SearchUsers)
			r.With(adminOnly).Put("/{userID}/{action}", h.Admin.SetUserStatus)
			r.Get("/{email}", h.Auth.GetUserByEmail)
		})
		r.With(adminOnly).Get("/all-transactions", h.Admin.AllTransactions)
	})

	return r
}
