package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"boundless-travel/internal/clients"
	"boundless-travel/internal/events"

	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Tail mint events from NATS",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.NATS.URL == "" {
			return fmt.Errorf("nats.url (NATS_URL) is required")
		}
		client, err := clients.NewNATSClient(cfg.NATS)
		if err != nil {
			return err
		}
		defer client.Close()

		sub, err := client.SubscribeToMintEvents(func(e events.MintEvent, subject string) {
			fmt.Printf("%s %-10s %s %s state=%s outcome=%s tx=%s\n",
				e.Timestamp.Format("15:04:05"), e.Type, e.AttemptID, e.ChainName, e.State, e.Outcome, e.TxHash)
		})
		if err != nil {
			return err
		}
		defer sub.Unsubscribe()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}
