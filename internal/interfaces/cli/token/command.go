// Package token mints access tokens for local testing and operator scripts.
package token

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/bodrix-ai/bodrix/internal/infrastructure/auth"
	"github.com/bodrix-ai/bodrix/internal/infrastructure/config"
	"github.com/bodrix-ai/bodrix/internal/shared/authorization"
	"github.com/bodrix-ai/bodrix/internal/shared/constants"
)

var (
	env         string
	configPath  string
	userID      string
	role        string
	permissions []string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token",
		Long: `Issue an access token signed with the configured JWT secret. Extra
permissions are granted on top of those the role carries.`,
		RunE: run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", constants.EnvDevelopment, "Environment (development, staging, production)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.Flags().StringVar(&userID, "user", "", "User ID placed in the token (required)")
	cmd.Flags().StringVar(&role, "role", string(authorization.RoleUser), "Role: admin, premium or user")
	cmd.Flags().StringSliceVar(&permissions, "permission", nil, "Extra permission, repeatable (e.g. --permission design:preview)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if env == constants.EnvProduction {
		return fmt.Errorf("refusing to issue tokens for the production environment")
	}

	cfg, err := config.Load(env, configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	parsed := authorization.ParseUserRole(strings.ToLower(role))
	if string(parsed) != strings.ToLower(role) {
		return fmt.Errorf("unknown role %q", role)
	}

	svc := auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.AccessExpMinutes)
	token, err := svc.Generate(userID, uuid.NewString(), parsed, permissions)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
