/*
main.go - Application entry point

PURPOSE:
  Starts the airline engine: HTTP API plus the wall-clock tick driver, or
  a headless simulation run.

COMMANDS:
  serve      Start the HTTP server and tick driver
  simulate   Run N ticks without a server and print the books

STARTUP SEQUENCE (serve):
  1. Load config (defaults, YAML file, AIRLINE_* env, then flags)
  2. Set up logging
  3. Open SQLite store
  4. Load the game, seed a scenario into an empty save if configured
  5. Start the tick driver and the HTTP server
  6. On SIGINT/SIGTERM: stop the driver, drain requests, close the store

EXAMPLES:
  ./server serve --db ./data/airline.db --port 3000
  ./server simulate --ticks 10080 --scenario starter-hub

SEE ALSO:
  - config/config.go: Configuration sources
  - api/server.go: Router configuration
  - api/driver.go: Tick loop
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/warp/airline-engine/api"
	"github.com/warp/airline-engine/config"
	"github.com/warp/airline-engine/logging"
	"github.com/warp/airline-engine/store/sqlite"
	"github.com/warp/airline-engine/telemetry"
)

var (
	logger zerolog.Logger
	cfg    config.Config

	flagPort     int
	flagDB       string
	flagScenario string
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Airline engine - weekly flight scheduling simulation",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and tick driver",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (\":memory:\" for in-memory)")
	rootCmd.PersistentFlags().StringVar(&flagScenario, "scenario", "", "demo scenario to seed an empty save with")
	serveCmd.Flags().IntVar(&flagPort, "port", 0, "HTTP server port")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(simulateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration and applies flag overrides.
func loadConfig() error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if flagDB != "" {
		cfg.DB.Path = flagDB
	}
	if flagPort != 0 {
		cfg.Server.Port = flagPort
	}
	if flagScenario != "" {
		cfg.Sim.Scenario = flagScenario
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger = logging.Setup(cfg.Environment, cfg.Log.Level)
	return nil
}

// openGame opens the store and loads the save, seeding the configured
// scenario if the save has no fleet yet.
func openGame(ctx context.Context, metrics *telemetry.Metrics) (*api.Game, *sqlite.Store, error) {
	store, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	game := api.NewGame(store, metrics, logger)
	if err := game.Load(ctx); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("load game: %w", err)
	}

	if cfg.Sim.Scenario != "" && len(game.Fleet.All()) == 0 {
		if err := game.LoadScenario(ctx, cfg.Sim.Scenario); err != nil {
			store.Close()
			return nil, nil, err
		}
	}
	return game, store, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	ctx := context.Background()

	logger.Info().Str("db", cfg.DB.Path).Msg("airline engine starting")

	game, store, err := openGame(ctx, telemetry.New())
	if err != nil {
		return err
	}
	defer store.Close()

	driver := api.NewTickDriver(game, logger)
	driver.Interval = cfg.Sim.TickInterval
	driver.MaxCatchUp = cfg.Sim.MaxCatchUpTicks
	if cfg.Sim.StartPaused {
		driver.Pause()
	}
	driver.Start(ctx)

	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      api.NewRouter(api.NewHandler(game, driver)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Addr()).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down gracefully...")
	driver.Stop()

	timeoutCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(timeoutCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("airline engine stopped")
	return nil
}
