// Command scenectl bootstraps the SceneVault database and manages accounts offline.
//
// Usage:
//
//	scenectl init
//	scenectl check
//	scenectl create-user -username alice -email alice@example.com -password secret
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/scenevault/scenevault/internal/config"
	"github.com/scenevault/scenevault/internal/model"
	"github.com/scenevault/scenevault/internal/repository"
	"github.com/scenevault/scenevault/internal/service"
)

const usage = `usage: scenectl <command> [flags]

commands:
  init          create the database and tables if missing
  check         report whether the tables exist
  create-user   register an account
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New(strings.TrimSpace(usage))
	}

	cfg, err := config.LoadDatabase()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch args[0] {
	case "init":
		return runInit(ctx, cfg, out)
	case "check":
		return runCheck(ctx, cfg, out)
	case "create-user":
		return runCreateUser(ctx, cfg, args[1:], out)
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

func runInit(ctx context.Context, cfg *config.Config, out io.Writer) error {
	created, err := repository.EnsureDatabase(ctx, cfg.AdminDSN(), cfg.DatabaseName())
	if err != nil {
		return fmt.Errorf("ensure database: %w", err)
	}
	if created {
		fmt.Fprintf(out, "database %s created\n", cfg.DatabaseName())
	} else {
		fmt.Fprintf(out, "database %s already exists\n", cfg.DatabaseName())
	}

	repo, err := repository.New(ctx, cfg.DSN())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer repo.Close()

	exists, err := repo.TablesExist(ctx)
	if err != nil {
		return fmt.Errorf("check tables: %w", err)
	}
	if exists {
		fmt.Fprintln(out, "tables already exist")
		return nil
	}

	if err := repo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	fmt.Fprintln(out, "tables created")
	return nil
}

func runCheck(ctx context.Context, cfg *config.Config, out io.Writer) error {
	repo, err := repository.New(ctx, cfg.DSN())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer repo.Close()

	exists, err := repo.TablesExist(ctx)
	if err != nil {
		return fmt.Errorf("check tables: %w", err)
	}
	if !exists {
		return errors.New("tables users and user_data are missing; run scenectl init")
	}
	fmt.Fprintln(out, "tables users and user_data exist")
	return nil
}

type createdUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func runCreateUser(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		username = fs.String("username", "", "account username")
		email    = fs.String("email", "", "account email")
		password = fs.String("password", "", "account password")
		format   = fs.String("format", "plain", "output format: plain or json")
	)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("create-user: %w", err)
	}

	req := model.RegisterRequest{Username: *username, Email: *email, Password: *password}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("create-user: %w", err)
	}
	if f := strings.ToLower(*format); f != "plain" && f != "json" {
		return errors.New("invalid format; use plain or json")
	}

	repo, err := repository.New(ctx, cfg.DSN())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer repo.Close()

	// Registration never issues tokens, so no signer is needed.
	accounts := service.NewAccountService(repo, nil, nil)
	user, err := accounts.Register(ctx, req)
	if err != nil {
		return fmt.Errorf("create-user: %w", err)
	}

	return writeUser(out, *format, user)
}

func writeUser(out io.Writer, format string, user *model.User) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(createdUser{ID: user.ID, Username: user.Username, Email: user.Email})
	default:
		_, err := fmt.Fprintln(out, user.ID)
		return err
	}
}
