package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// HealthCmd creates the health command.
func HealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check API health",
		Long:  "Checks whether the assistant API is reachable and healthy.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runHealth(cmd, outputJSON)
		},
	}
}

func runHealth(cmd *cobra.Command, outputJSON bool) error {
	apiClient, err := NewAPIClient(cmd)
	if err != nil {
		return err
	}

	var resp map[string]bool
	if err := apiClient.Get("/healthz", &resp); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if resp["ok"] {
		fmt.Println("OK")
	} else {
		fmt.Println("NOT OK")
	}
	return nil
}
