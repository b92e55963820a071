// cmd/walletctl/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	app "pocketcash-wallet/internal"
	"pocketcash-wallet/internal/config"
	"pocketcash-wallet/internal/domain"
	"pocketcash-wallet/internal/util"
	"pocketcash-wallet/pkg/db"
)

const usage = `usage: walletctl <command> [flags]

commands:
  migrate                                  apply database migrations
  create-admin -name N -email E -mobile M  create an active admin account (PIN is prompted)
`

var errUsage = errors.New("invalid usage")

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// adminCreator is the part of service.AuthService used by create-admin.
type adminCreator interface {
	CreateAdmin(ctx context.Context, reg domain.Registration) (*domain.User, error)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		fmt.Fprintln(os.Stderr, "walletctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "migrate":
		return migrate(ctx, out)
	case "create-admin":
		reg, err := parseCreateAdmin(args[1:], out)
		if err != nil {
			return err
		}
		if reg.PIN, err = promptPIN(out); err != nil {
			return err
		}

		application := app.NewApplication()
		if err := application.InitializeCore(ctx); err != nil {
			return err
		}
		defer func() { _ = application.Shutdown(context.Background()) }()
		return createAdmin(ctx, application.AuthService, reg, out)
	case "help", "-h", "--help":
		_, err := fmt.Fprint(out, usage)
		return err
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

func migrate(ctx context.Context, out io.Writer) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	util.InitLogger(cfg.LogLevel, cfg.LogFormat)

	database, err := db.NewPostgresDB(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.RunMigrations(ctx, database); err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, "migrations applied")
	return err
}

func parseCreateAdmin(args []string, out io.Writer) (domain.Registration, error) {
	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	fs.SetOutput(out)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	mobile := fs.String("mobile", "", "mobile number")
	photo := fs.String("photo-url", "", "optional avatar URL")

	if err := fs.Parse(args); err != nil {
		return domain.Registration{}, fmt.Errorf("%w: %v", errUsage, err)
	}
	if *name == "" || *email == "" || *mobile == "" {
		return domain.Registration{}, fmt.Errorf("%w: -name, -email and -mobile are required", errUsage)
	}

	return domain.Registration{
		Name:         *name,
		PhotoURL:     *photo,
		Email:        *email,
		MobileNumber: *mobile,
		Role:         domain.RoleAdmin,
	}, nil
}

// promptPIN reads the PIN twice without echo.
func promptPIN(out io.Writer) (string, error) {
	fmt.Fprint(out, "Enter PIN: ")
	first, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read pin: %w", err)
	}

	fmt.Fprint(out, "Confirm PIN: ")
	second, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read pin: %w", err)
	}

	if string(first) != string(second) {
		return "", errors.New("pins do not match")
	}
	pin := string(first)
	if err := domain.ValidatePIN(pin); err != nil {
		return "", err
	}
	return pin, nil
}

func createAdmin(ctx context.Context, svc adminCreator, reg domain.Registration, out io.Writer) error {
	user, err := svc.CreateAdmin(ctx, reg)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	_, err = fmt.Fprintf(out, "admin %s created (id %s, status %s)\n", user.Email, user.ID, user.Status)
	return err
}
