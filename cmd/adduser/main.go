package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/farukx11/server-10/internal/auth"
	"github.com/farukx11/server-10/internal/config"
	"github.com/farukx11/server-10/internal/models"
	"github.com/farukx11/server-10/internal/storage"
	"github.com/farukx11/server-10/internal/validation"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const defaultDBPath = "finease.db"

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd := newCommand(stdin)
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.ExecuteContext(context.Background())
}

func newCommand(stdin io.Reader) *cobra.Command {
	var (
		email    string
		name     string
		password string
		dbPath   string
	)

	cmd := &cobra.Command{
		Use:           "adduser --email <email> --name <name> [--password <password>] [--db <db_path>]",
		Short:         "Create a local user account",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			if password == "" {
				fmt.Fprint(out, "Password: ")
				var err error
				password, err = readPassword(stdin)
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				fmt.Fprintln(out)
			}

			if strings.TrimSpace(password) == "" {
				return errors.New("password cannot be empty")
			}

			p := validation.RegisterPayload{Name: name, Email: email, Password: password}
			if err := validation.ValidateRegister(&p); err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.BcryptCost < auth.MinCost || cfg.BcryptCost > auth.MaxCost {
				return fmt.Errorf("invalid bcrypt cost %d: must be between %d and %d", cfg.BcryptCost, auth.MinCost, auth.MaxCost)
			}
			// DB_PATH applies unless --db was given explicitly.
			if !cmd.Flags().Changed("db") {
				dbPath = cfg.DBPath
			}

			return createUser(cmd.Context(), out, dbPath, cfg.BcryptCost, p)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&password, "password", "", "Password (optional, will prompt if omitted)")
	cmd.Flags().StringVar(&dbPath, "db", defaultDBPath, "Path to database file")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func createUser(ctx context.Context, out io.Writer, dbPath string, cost int, p validation.RegisterPayload) error {
	db, err := storage.NewDB(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if _, err := db.GetUserByEmail(ctx, p.Email); err == nil {
		return fmt.Errorf("user %s already exists", storage.NormalizeEmail(p.Email))
	} else if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := auth.HashPassword(p.Password, cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         p.Name,
		Email:        p.Email,
		PasswordHash: hash,
		PhotoURL:     p.PhotoURL,
		Provider:     models.ProviderLocal,
	}
	if err := db.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicateEmail) {
			return fmt.Errorf("user %s already exists", user.Email)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(out, "User %s created successfully with ID %s\n", user.Email, user.ID)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Fallback for non-terminal (e.g. tests, pipes)
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
