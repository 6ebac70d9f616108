package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"example.com/chat-relay/internal/auth"
	"example.com/chat-relay/internal/config"
)

// NewTokenCommand собирает команду выпуска access-токена по настройкам сервера.
func NewTokenCommand() *cobra.Command {
	var subject string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:          "token",
		Short:        "Issue an access token for a protected relay",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadAuth()
			if err != nil {
				return fmt.Errorf("load auth config: %w", err)
			}
			if !cfg.Enabled() {
				return errors.New("JWT_SECRET is not set, the relay does not require tokens")
			}

			accessTTL := cfg.AccessTokenTTL
			if ttl > 0 {
				accessTTL = ttl
			}

			manager := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, accessTTL)
			token, expiresAt, err := manager.NewAccessToken(subject)
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			infoColor.Fprintf(cmd.ErrOrStderr(), "subject %s, expires %s\n", subject, expiresAt.Format(time.RFC3339))
			return nil
		},
	}

	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.Flags().StringVarP(&subject, "subject", "s", "operator", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to JWT_ACCESS_TTL)")

	return cmd
}
