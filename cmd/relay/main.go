package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// @title           Webhook Relay API
// @version         1.0
// @description     Receives provider webhooks, stores meeting data and forwards short notifications to the agent gateway

// @BasePath  /

// @securityDefinitions.apikey SharedSecret
// @in header
// @name X-Webhook-Secret

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "relay",
		Short:         "Webhook relay for GitHub, Krisp and HubSpot",
		Long:          "Receives provider webhooks, keeps an audit log, stores Krisp meetings on disk and wakes the agent gateway with a short summary.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMeetingsCmd())

	return rootCmd
}
