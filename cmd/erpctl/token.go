package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/stemsi/unierp-backend/internal/config"
	"github.com/stemsi/unierp-backend/internal/database"
	"github.com/stemsi/unierp-backend/internal/model"
	"github.com/stemsi/unierp-backend/internal/repository"
	"github.com/stemsi/unierp-backend/internal/service"
)

func newTokenCmd(cfg *config.Config) *cobra.Command {
	var (
		email  string
		userID string
		role   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token signed with JWT_SECRET",
		Long: `Mint a bearer token signed with JWT_SECRET for local development.

With --email the user is looked up in the database and its id and role are
used. With --user-id no database is needed and --role is required.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				id uuid.UUID
				r  = model.Role(role)
			)
			switch {
			case email != "" && userID != "":
				return errors.New("use either --email or --user-id")
			case userID != "":
				parsed, err := uuid.Parse(userID)
				if err != nil {
					return fmt.Errorf("invalid --user-id: %w", err)
				}
				if !r.Valid() {
					return fmt.Errorf("--role must be student, professor or admin, got %q", role)
				}
				id = parsed
			case email != "":
				u, err := lookupUser(cmd.Context(), cfg, email)
				if err != nil {
					return err
				}
				id, r = u.ID, u.Role
			default:
				return errors.New("one of --email or --user-id is required")
			}

			token, err := service.NewAuthService(cfg).GenerateToken(id, email, r, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email of an existing user")
	cmd.Flags().StringVar(&userID, "user-id", "", "User id to put in the token")
	cmd.Flags().StringVar(&role, "role", "", "Role for --user-id (student, professor, admin)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (default JWT_EXPIRY_HOURS)")
	return cmd
}

func lookupUser(ctx context.Context, cfg *config.Config, email string) (*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, cliLogger(cfg))
	if err != nil {
		return nil, fmt.Errorf("connect to PostgreSQL: %w", err)
	}
	defer pool.Close()

	u, err := repository.NewUserRepository(pool).GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("no user with email %q", email)
	}
	return u, err
}
