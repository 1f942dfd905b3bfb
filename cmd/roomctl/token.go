package main

import (
	"interviewroom/internal/service"
	"time"

	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var (
		name  string
		email string
		ttl   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token <userId>",
		Short: "Print a signed bearer token for a user",
		Long:  `Signs a development token with JWT_SECRET. A zero --ttl issues a token that never expires.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			token, err := service.NewAuthService(cfg.JWTSecret).GenerateToken(args[0], name, email, ttl)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "%s\n", token)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name claim")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
