package main

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/todmy/topic-miner/internal/auth"
)

var tokenTTL time.Duration

var tokenCmd = &cobra.Command{
	Use:   "token [merchant]",
	Short: "Issue an API token for a merchant",
	Args:  cobra.ExactArgs(1),
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 30*24*time.Hour, "token lifetime")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Server.JWTSecret == "" {
		return errors.New("server.jwt_secret (or JWT_SECRET) must be set to issue tokens")
	}

	service := auth.NewJWTService(auth.Config{
		SecretKey:     cfg.Server.JWTSecret,
		TokenDuration: tokenTTL,
	})

	token, err := service.IssueToken(args[0])
	if err != nil {
		return err
	}
	cmd.Println(token)
	return nil
}
