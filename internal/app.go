// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	router "pocketcash-wallet/internal/api"
	"pocketcash-wallet/internal/api/handler"
	"pocketcash-wallet/internal/auth"
	"pocketcash-wallet/internal/config"
	"pocketcash-wallet/internal/repository"
	"pocketcash-wallet/internal/repository/postgres"
	"pocketcash-wallet/internal/service"
	"pocketcash-wallet/internal/storage"
	"pocketcash-wallet/internal/util"
	"pocketcash-wallet/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB

	// Repositories
	UserRepository        repository.UserRepository
	TransactionRepository repository.TransactionRepository

	// Collaborators
	Tokens  *auth.TokenManager
	Hasher  *auth.PinHasher
	Avatars *storage.AvatarStore

	// Services
	AuthService   service.AuthService
	WalletService service.WalletService
	AdminService  service.AdminService

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components including the HTTP router.
func (app *Application) Initialize(ctx context.Context) error {
	if err := app.InitializeCore(ctx); err != nil {
		return err
	}

	handlers := router.Handlers{
		Auth:   handler.NewAuthHandler(app.AuthService, app.Logger),
		Wallet: handler.NewWalletHandler(app.WalletService, app.Logger),
		Admin:  handler.NewAdminHandler(app.AdminService, app.Logger),
		Health: handler.NewHealthHandler(app.DB, app.Logger),
	}
	app.HTTPHandler = router.NewRouter(handlers, router.RouterConfig{
		Tokens:         app.Tokens,
		Users:          app.AuthService,
		AllowedOrigins: app.Config.AllowedOrigins,
		Timeout:        app.Config.RequestTimeout,
	}, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// InitializeCore sets up configuration, logging, the database and the
// services, without the HTTP layer. The operator CLI stops here.
func (app *Application) InitializeCore(ctx context.Context) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	// 2. Initialize Logger
	util.InitLogger(cfg.LogLevel, cfg.LogFormat)
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.")
	if cfg.UsingDevSecret {
		app.Logger.Warn("JWT_SECRET is not set, using the development secret")
	}

	// 3. Connect to Database
	database, err := db.NewPostgresDB(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	if cfg.DBMigrate {
		if err := db.RunMigrations(ctx, app.DB); err != nil {
			return err
		}
		app.Logger.Info("Database migrations applied.")
	}

	// 4. Initialize Repositories
	app.UserRepository = postgres.NewUserRepository(app.DB)
	app.TransactionRepository = postgres.NewTransactionRepository(app.DB)
	app.Logger.Info("Repositories initialized.")

	// 5. Initialize Collaborators
	app.Tokens, err = auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return fmt.Errorf("failed to create token manager: %w", err)
	}
	app.Hasher = auth.NewPinHasher(cfg.PinHashCost)
	app.Avatars = storage.NewAvatarStore(cfg.S3)
	if !app.Avatars.Enabled() {
		app.Logger.Info("S3_BUCKET is not set, avatar uploads are disabled")
	}

	// 6. Initialize Services
	// Pass the concrete db.BeginTx, db.CommitTx, db.RollbackTx functions from pkg/db
	app.AuthService = service.NewAuthService(
		app.DB, // This is the DBTxBeginner
		app.DB, // This is the DBExecutor
		app.UserRepository,
		app.Hasher,
		app.Tokens,
		app.Avatars,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.WalletService = service.NewWalletService(
		app.DB,
		app.DB,
		app.UserRepository,
		app.TransactionRepository,
		app.Hasher,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.AdminService = service.NewAdminService(
		app.DB,
		app.DB,
		app.UserRepository,
		app.TransactionRepository,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.Logger.Info("Services initialized.")

	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
