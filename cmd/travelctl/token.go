package main

import (
	"fmt"
	"time"

	"boundless-travel/internal/middleware"
	"boundless-travel/internal/utils"
	"boundless-travel/internal/wallet"

	"github.com/spf13/cobra"
)

var tokenConnector string

var tokenCmd = &cobra.Command{
	Use:   "token <address>",
	Short: "Issue a session token for local testing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Auth.JWTSecret == "" {
			return fmt.Errorf("auth.jwt_secret (JWT_SECRET) is required")
		}
		addr, err := utils.NormalizeAddress(args[0])
		if err != nil {
			return err
		}
		kind, err := wallet.ParseConnectorKind(tokenConnector)
		if err != nil {
			return err
		}
		tokens := middleware.NewTokenManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
		token, expiresAt, err := tokens.Issue(addr.Hex(), kind.String())
		if err != nil {
			return err
		}
		fmt.Println(token)
		fmt.Printf("# account=%s connector=%s expires=%s\n", addr.Hex(), kind, expiresAt.Format(time.RFC3339))
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenConnector, "connector", "metamask", "connector recorded in the token")
	rootCmd.AddCommand(tokenCmd)
}
