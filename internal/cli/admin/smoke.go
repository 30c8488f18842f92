package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/novalxp/novalxp-bot/internal/config"
	"github.com/novalxp/novalxp-bot/internal/domain"
	"github.com/novalxp/novalxp-bot/internal/generation"
	"github.com/novalxp/novalxp-bot/internal/orchestrator"
	"github.com/novalxp/novalxp-bot/internal/retrieval"
	"github.com/spf13/cobra"
)

// SmokeCmd returns the smoke command: it drives one canned recommendation
// request through the full in-process pipeline, without an HTTP server or
// any cloud model, and prints the result.
func SmokeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Run an in-process pipeline smoke check",
		Long:  "Run a canned recommendation request through the assistant pipeline using the stub generation provider",
		RunE:  runSmoke,
	}

	cmd.Flags().String("text", "Can you recommend what to study next?", "Query text to send")

	return cmd
}

func runSmoke(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	// The smoke check never talks to a model provider.
	cfg.GenerationProvider = generation.ProviderStub

	text, _ := cmd.Flags().GetString("text")

	orch := orchestrator.New(cfg, retrieval.NewEngine(cfg), generation.NewStubGenerator())

	req := domain.ChatRequest{
		RequestID: "req-001",
		TenantID:  "novalxp",
		User:      domain.ChatUser{ID: "u-123", Role: "student", Locale: "en-GB"},
		Context:   domain.ChatContext{CourseID: "101", SectionID: "2"},
		Query:     domain.ChatQuery{Text: text},
		Options:   domain.ChatOptions{MaxOutputTokens: 400, RequireCitations: true, AllowModelFallback: true},
	}

	result, err := orch.Handle(context.Background(), req)
	if err != nil {
		botErr := domain.AsBotError(err)
		fmt.Fprintf(os.Stderr, "smoke check failed: [%s] %s\n", botErr.Code, botErr.Message)
		return err
	}

	out, err := json.MarshalIndent(map[string]interface{}{
		"request_id": req.RequestID,
		"intent":     result.Intent,
		"answer":     result.Answer,
		"actions":    result.Actions,
		"model_id":   result.ModelID,
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
