package main

import (
	"fmt"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/spf13/cobra"
)

var adminSecretCmd = &cobra.Command{
	Use:   "admin-secret",
	Short: "Generate a TOTP secret for the operator login",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Admin.TOTPSecret != "" {
			return fmt.Errorf("ADMIN_TOTP_SECRET is already set")
		}
		key, err := totp.Generate(totp.GenerateOpts{
			Issuer:      "Boundless Travel",
			AccountName: cfg.Admin.Username,
			Period:      30,
			Digits:      otp.DigitsSix,
			Algorithm:   otp.AlgorithmSHA1,
		})
		if err != nil {
			return fmt.Errorf("generate TOTP secret: %w", err)
		}
		fmt.Printf("ADMIN_TOTP_SECRET=%s\n", key.Secret())
		fmt.Printf("# authenticator URL: %s\n", key.URL())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(adminSecretCmd)
}
