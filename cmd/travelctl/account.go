package main

import (
	"fmt"
	"time"

	"boundless-travel/internal/services"
	"boundless-travel/internal/utils"

	"github.com/spf13/cobra"
)

var balancesCmd = &cobra.Command{
	Use:   "balances <address>",
	Short: "Native balance of address on every chain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := utils.NewChainRegistry(cfg.Environment, cfg.Chains.RPCOverrides)
		balances := services.NewBalanceService(services.DialChainClient,
			time.Duration(cfg.Chains.BalanceTimeout)*time.Second, cfg.Chains.BalanceMaxConcurrency)
		vpass := services.NewVPassService(registry, balances, services.DialChainClient,
			cfg.Contracts.ForEnvironment(cfg.Environment), cfg.ExternalURLs.ForEnvironment(cfg.Environment))

		rows, err := vpass.Balances(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(rows)
	},
}

var shortcutCmd = &cobra.Command{
	Use:   "shortcut <address>",
	Short: "Display forms of an address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !utils.IsEvmAddress(args[0]) {
			return fmt.Errorf("%q is not an EVM address", args[0])
		}
		fmt.Printf("account:  %s\n", utils.AddressShortcut(args[0]))
		fmt.Printf("contract: %s\n", utils.ContractAddressShortcut(args[0]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(balancesCmd, shortcutCmd)
}
