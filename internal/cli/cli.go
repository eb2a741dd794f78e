// Package cli provides the Cobra-based command line interface for
// productmcp: a serve command running the MCP server over stdio or SSE, and
// a seed command loading the demo catalog.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"product-catalog-mcp/internal/api"
	"product-catalog-mcp/internal/config"
	"product-catalog-mcp/internal/store"
)

const (
	serverName    = "product-mcp-server"
	serverVersion = "1.0.0"
)

var rootCmd = &cobra.Command{
	Use:           "productmcp",
	Short:         "MCP server for product catalog management",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(newServeCmd(), newSeedCmd())
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// setup loads configuration and opens the store. The caller owns the
// returned store and must Close it. A failed database connection is an
// error here and fatal for every command.
func setup(ctx context.Context) (*config.Config, *log.Logger, *store.MongoStore, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("INFO: .env file not found or error loading, relying on system environment variables.")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading configuration: %w", err)
	}

	// Logs go to stderr: on the stdio transport, stdout belongs to the
	// protocol stream.
	logOut := io.Writer(os.Stderr)
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("opening log file %s: %w", cfg.LogFile, err)
		}
		logOut = f
	}
	logger := log.New(logOut, "[productmcp] ", log.LstdFlags|log.Lmicroseconds)

	client, err := store.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connecting to MongoDB: %w", err)
	}
	logger.Printf("INFO: Database connection established: %s", cfg.DatabaseName)

	st := store.NewMongoStore(client, cfg.DatabaseName, cfg.LowStockThreshold, logger)
	return cfg, logger, st, nil
}

func closeStore(st *store.MongoStore, logger *log.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := st.Close(ctx); err != nil {
		logger.Printf("WARN: Error closing database connection: %v", err)
	} else {
		logger.Println("INFO: Database connection closed.")
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server (stdio or SSE transport per MCP_TRANSPORT)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, logger, st, err := setup(ctx)
			if err != nil {
				return err
			}
			defer closeStore(st, logger)

			st.EnsureIndexes(ctx)

			s := server.NewMCPServer(serverName, serverVersion,
				server.WithToolCapabilities(true),
				server.WithResourceCapabilities(true, true),
				server.WithPromptCapabilities(true),
				server.WithRecovery(),
			)
			api.NewProductTools(st).Register(s)
			api.NewInventoryTools(st, cfg.LowStockThreshold).Register(s)
			api.NewAnalyticsTools(st).Register(s)
			api.NewResources(st, cfg).Register(s)
			api.RegisterPrompts(s)
			logger.Println("INFO: Tools, resources, and prompts registered.")

			if !cfg.Server.Remote() {
				logger.Println("INFO: Starting MCP server (stdio transport)")
				return server.ServeStdio(s)
			}
			return serveRemote(cfg, logger, st, s)
		},
	}
}

// serveRemote runs the SSE transport inside an HTTP shell with health and
// metrics endpoints, and blocks until a shutdown signal arrives.
func serveRemote(cfg *config.Config, logger *log.Logger, st *store.MongoStore, s *server.MCPServer) error {
	sse := server.NewSSEServer(s)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	// No request timeout middleware: SSE connections are long-lived.

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		health := st.HealthCheck(ctx)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    health.Status,
			"server":    serverName,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"database":  health,
		}); err != nil {
			logger.Printf("ERROR: Failed to encode health response: %v", err)
		}
	})

	router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		summary := st.InventorySummary(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]interface{}{
			"products": map[string]interface{}{
				"total":       summary.TotalProducts,
				"total_value": summary.TotalValue,
			},
			"categories":   len(summary.CategoriesBreakdown),
			"last_updated": summary.LastUpdated,
		}); err != nil {
			logger.Printf("ERROR: Failed to encode metrics response: %v", err)
		}
	})

	router.Mount("/", sse)

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Printf("INFO: MCP server listening on %s (%s transport)", cfg.Server.Addr(), cfg.Server.Transport)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("FATAL: HTTP server ListenAndServe error: %v", err)
		}
		logger.Println("INFO: HTTP server has stopped.")
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-sigChan
	logger.Printf("INFO: Received signal: %s. Starting graceful shutdown...", receivedSignal)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("WARN: HTTP server graceful shutdown failed: %v", err)
		return err
	}
	logger.Println("INFO: HTTP server gracefully shut down.")
	return nil
}
