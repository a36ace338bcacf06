/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the shift scheduling engine. Handles configuration,
  dependency injection, and graceful shutdown.

COMMANDS:
  serve   Start the HTTP server (default)
  seed    Load a demo scenario into the database and exit

STARTUP SEQUENCE (serve):
  1. Load TOML config, apply flag overrides
  2. Initialize SQLite store
  3. Create API handler with dependencies
  4. Configure HTTP router
  5. Start server with graceful shutdown

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server serve --db=./data/shifts.db

  # Run with in-memory database, pre-seeded
  ./server serve --db=:memory: --seed

  # Seed the demo dataset into a file database
  ./server seed --db=./data/shifts.db --scenario=hospital

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - config/config.go: TOML configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/warp/shift-engine/api"
	"github.com/warp/shift-engine/config"
	"github.com/warp/shift-engine/store/sqlite"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		dbPath     string
		port       int
	)

	root := &cobra.Command{
		Use:   "server",
		Short: "Skill-based shift scheduling engine",
		Long: `A day-level constraint scheduler for skilled workforces.

Covers tasks with the people holding the required skills while honoring
PTO and a rolling five-of-seven workday cap, and answers whether a PTO
request can be approved without breaking coverage.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "config.toml", "Config file path")
	root.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides config)")
	root.PersistentFlags().IntVar(&port, "port", 0, "HTTP port (overrides config)")

	loadConfig := func() (*config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		if dbPath != "" {
			cfg.Storage.DBPath = dbPath
		}
		if port != 0 {
			cfg.Server.Port = port
		}
		return cfg, nil
	}

	var seedOnStart bool
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, seedOnStart)
		},
	}
	serve.Flags().BoolVar(&seedOnStart, "seed", false, "Load the demo scenario on startup")

	var scenario string
	seed := &cobra.Command{
		Use:   "seed",
		Short: "Load a demo scenario into the database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := sqlite.New(cfg.Storage.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := api.LoadDemoScenario(cmd.Context(), store, scenario); err != nil {
				return err
			}
			log.Printf("[Seed] loaded scenario %q into %s", scenario, cfg.Storage.DBPath)
			return nil
		},
	}
	seed.Flags().StringVar(&scenario, "scenario", api.ScenarioHospital, "Scenario name (hospital, minimal)")

	root.AddCommand(serve)
	root.AddCommand(seed)
	root.RunE = serve.RunE
	return root
}

func runServe(ctx context.Context, cfg *config.Config, seedOnStart bool) error {
	store, err := sqlite.New(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	if seedOnStart {
		if err := api.LoadDemoScenario(ctx, store, api.ScenarioHospital); err != nil {
			return fmt.Errorf("failed to seed demo scenario: %w", err)
		}
		log.Printf("[Seed] demo scenario loaded")
	}

	handler := api.NewHandler(store)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("[Server] listening on http://localhost:%d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("Server stopped")
	return nil
}
