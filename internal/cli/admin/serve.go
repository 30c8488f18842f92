package admin

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/novalxp/novalxp-bot/internal/api/handlers"
	"github.com/novalxp/novalxp-bot/internal/config"
	"github.com/novalxp/novalxp-bot/internal/generation"
	"github.com/novalxp/novalxp-bot/internal/orchestrator"
	"github.com/novalxp/novalxp-bot/internal/retrieval"
	"github.com/novalxp/novalxp-bot/internal/server"
	"github.com/novalxp/novalxp-bot/internal/telemetry"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the assistant API server",
		Long:  "Start the novalxp assistant API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	engine := retrieval.NewEngine(cfg)
	log.Printf("retrieval provider: %s", cfg.RetrievalProvider)

	generator, err := generation.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to build generation provider: %w", err)
	}
	log.Printf("generation provider: %s", cfg.GenerationProvider)

	orch := orchestrator.New(cfg, engine, generator)

	router := server.NewRouter(server.RouterConfig{
		ChatHandler:    handlers.NewChatHandler(orch, cfg.Region),
		APIAuthEnabled: cfg.APIAuthEnabled,
		APIKeys:        cfg.APIKeys,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}
