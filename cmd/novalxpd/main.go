package main

import (
	"fmt"
	"os"

	"github.com/novalxp/novalxp-bot/internal/cli"
	"github.com/novalxp/novalxp-bot/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "novalxpd",
		Short: "NovaLXP assistant daemon",
		Long:  "NovaLXP assistant daemon for running the API server and smoke-checking the pipeline",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.SmokeCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
