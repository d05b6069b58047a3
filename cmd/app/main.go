package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "ratebot",
		Short: "LINE bot that replies with a Bitfinex funding-rate table",
		Long: `ratebot listens for LINE messages containing the trigger word, fetches the
latest Bitfinex funding rates and pushes back a rendered table image.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.yaml", "config file path")

	rootCmd.AddCommand(serveCmd(&configPath))
	rootCmd.AddCommand(renderCmd(&configPath))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
