// Patchwright server — provides the conversation HTTP API, manages queue
// workers, and drives the autonomous code-modification workflow.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/patchwright/patchwright/pkg/api"
	"github.com/patchwright/patchwright/pkg/build"
	"github.com/patchwright/patchwright/pkg/cleanup"
	"github.com/patchwright/patchwright/pkg/config"
	"github.com/patchwright/patchwright/pkg/database"
	"github.com/patchwright/patchwright/pkg/events"
	"github.com/patchwright/patchwright/pkg/graph"
	"github.com/patchwright/patchwright/pkg/hosting"
	"github.com/patchwright/patchwright/pkg/index"
	"github.com/patchwright/patchwright/pkg/llm"
	"github.com/patchwright/patchwright/pkg/masking"
	"github.com/patchwright/patchwright/pkg/parser"
	"github.com/patchwright/patchwright/pkg/queue"
	"github.com/patchwright/patchwright/pkg/retrieval"
	"github.com/patchwright/patchwright/pkg/services"
	"github.com/patchwright/patchwright/pkg/vector"
	"github.com/patchwright/patchwright/pkg/workflow"
	"github.com/patchwright/patchwright/pkg/workspace"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// resolvePodID determines the pod identifier for multi-replica coordination.
// Priority: POD_ID env > HOSTNAME env > "local"
func resolvePodID() string {
	if id := os.Getenv("POD_ID"); id != "" {
		return id
	}
	if hostname := os.Getenv("HOSTNAME"); hostname != "" {
		return hostname
	}
	return "local"
}

func setupLogging() {
	level := slog.LevelInfo
	switch strings.ToLower(getEnv("LOG_LEVEL", "info")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}

func main() {
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./deploy/config"),
		"Path to configuration directory")
	flag.Parse()

	setupLogging()
	logger := slog.Default()

	// Load .env file from config directory
	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		slog.Warn("Could not load .env file, continuing with existing environment",
			"path", envPath, "error", err)
	} else {
		slog.Info("Loaded environment", "path", envPath)
	}

	httpPort := getEnv("HTTP_PORT", "8080")
	podID := resolvePodID()

	slog.Info("Starting patchwright",
		"http_port", httpPort,
		"pod_id", podID,
		"config_dir", *configDir)

	ctx := context.Background()

	// 1. Configuration
	cfg, err := config.Initialize(ctx, *configDir)
	if err != nil {
		slog.Error("Failed to initialize configuration", "error", err)
		os.Exit(1)
	}

	// 2. Database
	dbConfig, err := database.LoadConfigFromEnv()
	if err != nil {
		slog.Error("Failed to load database config", "error", err)
		os.Exit(1)
	}
	dbClient, err := database.NewClient(ctx, dbConfig)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			slog.Error("Error closing database client", "error", err)
		}
	}()
	slog.Info("Connected to PostgreSQL database")

	// 3. One-time startup orphan cleanup: re-queue conversations this pod
	// left running on its previous incarnation.
	if err := queue.CleanupStartupOrphans(ctx, dbClient.Client, podID); err != nil {
		slog.Error("Failed to cleanup startup orphans", "error", err)
		// Non-fatal — continue
	}

	// 4. Masking and relational services
	masker := masking.NewMaskingService()
	conversationService := services.NewConversationService(dbClient.Client)
	messageService := services.NewMessageService(dbClient.Client)
	buildService := services.NewBuildService(dbClient.Client)
	eventService := services.NewEventService(dbClient.DB())
	interactionService := services.NewInteractionService(dbClient.Client, logger)
	slog.Info("Services initialized")

	// 5. LLM provider with audit instrumentation.
	// Note: the gRPC provider dials lazily; the connection happens on first call.
	baseProvider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		slog.Error("Failed to initialize LLM provider", "error", err)
		os.Exit(1)
	}
	provider := llm.NewInstrumentedProvider(
		baseProvider, interactionService, logger,
		cfg.LLM.Routing.ChatTimeout, cfg.LLM.Routing.EmbedTimeout)
	defer func() {
		if err := provider.Close(); err != nil {
			slog.Error("Error closing LLM provider", "error", err)
		}
	}()
	slog.Info("LLM provider initialized", "provider", provider.Name())

	// 6. Knowledge layer: vector index, code graph, parser, indexer, retrieval
	vectorIndex := vector.NewMemoryIndex(cfg.Index.EmbeddingDim)
	codeGraph := graph.NewMemoryStore()
	sourceParser := parser.NewJavaParser()
	indexer := index.NewIndexer(vectorIndex, codeGraph, sourceParser, provider, *cfg.Index, logger)
	retriever := retrieval.NewEngine(provider, vectorIndex, codeGraph, *cfg.Retrieval, cfg.Index.EmbeddingDim, logger)

	// 7. Working copies, build driver, hosting
	workspaceManager := workspace.NewManager(*cfg.Workspace, logger)
	buildDriver := build.NewExecDriver(*cfg.Build, logger)
	hostingClient, err := hosting.NewClient(*cfg.Hosting)
	if err != nil {
		slog.Error("Failed to initialize hosting client", "error", err)
		os.Exit(1)
	}

	// 8. Streaming: multiplexer plus persist-then-dispatch publisher
	mux := events.NewStreamMultiplexer(*cfg.Stream, logger)
	defer mux.Close()
	publisher := events.NewPublisher(mux, eventService, logger)
	slog.Info("Streaming infrastructure initialized")

	// 9. Workflow runtime
	runtime := workflow.NewRuntime(&workflow.Services{
		Provider:   provider,
		Retrieval:  retriever,
		Workspaces: workflow.ManagerWorkspaces{Manager: workspaceManager},
		Indexer:    indexer,
		Compiler:   buildDriver,
		Hosting:    hostingClient,
		Persistence: workflow.EntPersistence{
			Conversations: conversationService,
			Messages:      messageService,
			Builds:        buildService,
		},
		Notifier: publisher,
		BuildCfg: *cfg.Build,
		Logger:   logger,
	})

	// 10. Worker pool (before the HTTP server, so claims start immediately)
	executor := queue.NewWorkflowExecutor(runtime, conversationService, messageService, logger)
	workerPool := queue.NewWorkerPool(podID, dbClient.Client, cfg.Queue, executor)
	if err := workerPool.Start(ctx); err != nil {
		slog.Error("Failed to start worker pool", "error", err)
		os.Exit(1)
	}

	// 11. Retention
	cleanupService := cleanup.NewService(cfg.Retention, conversationService, eventService)
	cleanupService.Start(ctx)
	defer cleanupService.Stop()

	// 12. HTTP server
	apiServer := api.NewServer(cfg, dbClient,
		conversationService, messageService, eventService,
		mux, workerPool, masker, logger)
	httpServer := &http.Server{
		Addr:              ":" + httpPort,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			errCh <- err
		}
	}()

	slog.Info("Patchwright started successfully",
		"pod_id", podID,
		"workers", cfg.Queue.WorkerCount)

	// 13. Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig)
	case err := <-errCh:
		slog.Error("Server error triggered shutdown", "error", err)
	}

	// 14. Graceful shutdown: stop accepting requests first, then wait for
	// active conversations within the configured budget.
	httpShutdownCtx, httpCancel := context.WithTimeout(ctx, 5*time.Second)
	defer httpCancel()
	if err := httpServer.Shutdown(httpShutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	workerShutdownCtx, workerCancel := context.WithTimeout(ctx, cfg.Queue.GracefulShutdownTimeout)
	defer workerCancel()

	done := make(chan struct{})
	go func() {
		workerPool.Stop()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("Worker pool stopped gracefully")
	case <-workerShutdownCtx.Done():
		slog.Warn("Shutdown timeout exceeded, incomplete conversations will be orphan-recovered")
	}

	slog.Info("Shutdown complete")
}
