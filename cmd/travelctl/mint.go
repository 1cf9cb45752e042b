package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"boundless-travel/internal/app"

	"github.com/spf13/cobra"
)

var (
	mintChain string
	mintWait  bool
)

var mintCmd = &cobra.Command{
	Use:   "mint --chain <name>",
	Short: "Mint a VPass with the operator wallet",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		container, err := app.NewServiceContainer(cfg)
		if err != nil {
			return err
		}
		defer container.Cleanup()

		w, err := container.OperatorWallet(ctx)
		if err != nil {
			return fmt.Errorf("connect operator wallet: %w", err)
		}

		attempt, err := container.Mint.Mint(ctx, w, mintChain)
		if attempt != nil {
			_ = printJSON(attempt)
		}
		if err != nil {
			return err
		}
		if attempt == nil {
			return fmt.Errorf("operator wallet has no account")
		}
		if !mintWait {
			return nil
		}

		fmt.Fprintln(os.Stderr, "⏳ Waiting for receipt...")
		container.Mint.Wait()
		final, err := container.Mint.Get(context.Background(), attempt.ID)
		if err != nil {
			return err
		}
		return printJSON(final)
	},
}

func init() {
	mintCmd.Flags().StringVar(&mintChain, "chain", "", "source chain name")
	mintCmd.Flags().BoolVar(&mintWait, "wait", false, "wait for the transaction receipt")
	_ = mintCmd.MarkFlagRequired("chain")
	rootCmd.AddCommand(mintCmd)
}
