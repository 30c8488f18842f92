package main

import (
	"fmt"
	"os"

	"github.com/novalxp/novalxp-bot/internal/cli"
	"github.com/novalxp/novalxp-bot/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "novalxp",
		Short: "NovaLXP CLI - Learning assistant client",
		Long: `NovaLXP CLI talks to the learning assistant API.

Environment variables:
  NOVALXP_API_KEY   API key for authentication (optional unless server auth is enabled)
  NOVALXP_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-key", "", "API key for authentication (overrides env)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.ChatCmd())
	rootCmd.AddCommand(client.HealthCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
