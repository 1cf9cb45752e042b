// Command travelctl inspects the campaign configuration and drives mints from a terminal.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"boundless-travel/internal/config"

	"github.com/spf13/cobra"
)

var (
	configPath string
	envFlag    string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "travelctl",
	Short:         "Boundless Travel operator CLI",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if envFlag != "" {
			env, err := config.ParseEnvironment(envFlag)
			if err != nil {
				return err
			}
			loaded.Environment = env
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml")
	rootCmd.PersistentFlags().StringVar(&envFlag, "env", "", "environment override (development|test|production)")
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}
