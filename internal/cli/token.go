package cli

import (
	"fmt"
	"time"

	"github.com/mintlabs/mint-backend/internal/auth"
	"github.com/spf13/cobra"
)

// NewTokenCommand creates the token command, which mints ingest tokens
// signed with JWT_SECRET.
func NewTokenCommand(opts *RootOptions) *cobra.Command {
	var (
		source string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a token for the websocket ingest endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			issuer, err := auth.NewIssuer(opts.Config.JWTSecret)
			if err != nil {
				return fmt.Errorf("JWT_SECRET must be set to issue tokens: %w", err)
			}
			token, err := issuer.Generate(source, ttl)
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}
			if opts.Format == "json" {
				return printMessage(cmd.OutOrStdout(), opts.Format, token)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&source, "source", "device", "name of the device the token is for")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")

	return cmd
}
