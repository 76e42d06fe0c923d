// Copyright (c) 2026 Sleepora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/taibuivan/sleepora/internal/platform/sec"
)

// newTokenCommand mints RS256 tokens for local development and smoke tests.
// Production tokens come from the identity provider.
func newTokenCommand(state *app) *cobra.Command {
	var (
		keyPath string
		email   string
		name    string
		ttl     time.Duration
	)

	command := &cobra.Command{
		Use:   "token <subject>",
		Short: "Sign a development access token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if keyPath == "" {
				return fmt.Errorf("--key is required")
			}
			signer, err := sec.LoadSigner(keyPath, state.settings.IdentityIssuer)
			if err != nil {
				return err
			}
			token, err := signer.Sign(args[0], email, name, ttl)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "%s\n", token)
			return nil
		},
	}

	command.Flags().StringVar(&keyPath, "key", "", "PEM-encoded RSA private key")
	command.Flags().StringVar(&email, "email", "", "email claim")
	command.Flags().StringVar(&name, "name", "", "name claim")
	command.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	command.Flags().StringVar(&state.settings.IdentityIssuer, "issuer", state.settings.IdentityIssuer, "issuer claim (IDENTITY_ISSUER)")
	return command
}
