package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/adapters/driven/auth"
	"github.com/custodia-labs/folio/internal/core/domain"
)

func newPushTokenCmd(c *cli) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "push-token",
		Short: "Mint a bearer token for the dashboard push endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.PushSecret == "" {
				return errors.New("PUSH_SECRET must be set to mint push tokens")
			}

			claims := &domain.PushClaims{
				Subject: subject,
				Scope:   domain.PushScope,
			}
			if ttl > 0 {
				claims.ExpiresAt = time.Now().Add(ttl).Unix()
			}

			token, err := auth.NewAdapter(c.cfg.PushSecret).GenerateToken(claims)
			if err != nil {
				return fmt.Errorf("generate token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "dashboard", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime; 0 never expires")
	return cmd
}
