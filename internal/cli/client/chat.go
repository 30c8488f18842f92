package client

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/novalxp/novalxp-bot/internal/api"
	"github.com/novalxp/novalxp-bot/internal/domain"
	"github.com/spf13/cobra"
)

// ChatCmd creates the chat command.
func ChatCmd() *cobra.Command {
	var (
		tenantID  string
		userID    string
		userRole  string
		courseID  string
		sectionID string
		maxTokens int
		fallback  bool
	)

	cmd := &cobra.Command{
		Use:   "chat <text>",
		Short: "Ask the assistant a question",
		Long:  "Sends a question to the assistant API and prints the grounded answer.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			req := domain.ChatRequest{
				RequestID: uuid.New().String(),
				TenantID:  tenantID,
				User:      domain.ChatUser{ID: userID, Role: userRole},
				Context:   domain.ChatContext{CourseID: courseID, SectionID: sectionID},
				Query:     domain.ChatQuery{Text: strings.Join(args, " ")},
				Options: domain.ChatOptions{
					MaxOutputTokens:    maxTokens,
					AllowModelFallback: fallback,
				},
			}
			return runChat(cmd, req, outputJSON)
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "novalxp", "Tenant identifier")
	cmd.Flags().StringVarP(&userID, "user", "u", "cli", "User identifier")
	cmd.Flags().StringVar(&userRole, "role", "student", "User role")
	cmd.Flags().StringVar(&courseID, "course", "", "Course context identifier")
	cmd.Flags().StringVar(&sectionID, "section", "", "Section context identifier")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "Cap on model output tokens (0 uses the server default)")
	cmd.Flags().BoolVar(&fallback, "fallback", false, "Allow fallback to the secondary model on failure")

	return cmd
}

func runChat(cmd *cobra.Command, req domain.ChatRequest, outputJSON bool) error {
	apiClient, err := NewAPIClient(cmd)
	if err != nil {
		return err
	}

	var resp api.ChatResponse
	if err := apiClient.Post("/v1/chat", req, &resp); err != nil {
		if apiErr, ok := err.(*APIError); ok {
			fmt.Fprintf(os.Stderr, "[%s] %s\n", apiErr.Code, apiErr.Message)
			if apiErr.Retryable {
				fmt.Fprintln(os.Stderr, "This error is retryable; try again shortly.")
			}
		}
		return err
	}

	if outputJSON {
		output, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(resp.Answer.Text)
	if len(resp.Actions) > 0 {
		fmt.Println()
		for _, action := range resp.Actions {
			fmt.Printf("  %s\n    %s\n", action.Label, action.URL)
		}
	}
	fmt.Printf("\n(intent: %s, model: %s, %dms)\n", resp.Intent, resp.Meta.ModelID, resp.Meta.LatencyMS)
	if resp.Meta.FallbackUsed {
		fmt.Println("(fallback model used)")
	}
	return nil
}
