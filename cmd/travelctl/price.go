package main

import (
	"fmt"

	"boundless-travel/internal/models"
	"boundless-travel/internal/services"
	"boundless-travel/internal/utils"

	"github.com/spf13/cobra"
)

var priceCmd = &cobra.Command{
	Use:   "price [inviteCode]",
	Short: "Mint price with or without an invite code",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code := models.EmptyInviteCode
		if len(args) == 1 {
			parsed, err := models.ParseInviteCode(args[0])
			if err != nil {
				return err
			}
			code = parsed
		}
		price := services.MintPrice(code)
		fmt.Printf("price: %s ETH (%s wei)\n", utils.FormatEther(price), price)
		if !code.IsEmpty() {
			fmt.Printf("discount: %d%% OFF\n", services.InvitedDiscountPercent)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(priceCmd)
}
