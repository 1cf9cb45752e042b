package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"boundless-travel/internal/utils"

	"github.com/spf13/cobra"
)

var chainsCmd = &cobra.Command{
	Use:   "chains",
	Short: "List the chains of the active environment",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := utils.NewChainRegistry(cfg.Environment, cfg.Chains.RPCOverrides)
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tID\tSYMBOL\tHOME\tRPC")
		for _, c := range registry.Chains() {
			fmt.Fprintf(w, "%s\t%d\t%s\t%t\t%s\n", c.Name, c.ID, c.NativeCurrency.Symbol, registry.IsHome(c.ID), c.RPCURL)
		}
		return w.Flush()
	},
}

var chainCmd = &cobra.Command{
	Use:   "chain <name|id>",
	Short: "Show one chain of the active environment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := utils.NewChainRegistry(cfg.Environment, cfg.Chains.RPCOverrides)
		chain, ok := registry.ByName(args[0])
		if !ok {
			var id int64
			if _, err := fmt.Sscan(args[0], &id); err == nil {
				chain, ok = registry.ByID(id)
			}
		}
		if !ok {
			return fmt.Errorf("chain %q not found in %s", args[0], cfg.Environment)
		}
		return printJSON(chain)
	},
}

func init() {
	rootCmd.AddCommand(chainsCmd, chainCmd)
}
