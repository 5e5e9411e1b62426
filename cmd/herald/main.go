// Package main provides the herald server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/herald-audio/herald/internal/api/httpctl"
	"github.com/herald-audio/herald/internal/app/player"
	"github.com/herald-audio/herald/internal/app/presentation"
	"github.com/herald-audio/herald/internal/infra/beepaudio"
	"github.com/herald-audio/herald/internal/infra/config"
	"github.com/herald-audio/herald/internal/infra/logger"
	"github.com/herald-audio/herald/internal/infra/opentts"
)

var (
	app        = kingpin.New("herald", "herald announced media player daemon")
	configPath = app.Flag("config", "Path to config file").Default("config/herald.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()

	// list-providers command
	listProvidersCmd = app.Command("list-providers", "List available catalog providers and exit")
)

func init() {
	// start command (default) - no need to store the command
	app.Command("start", "Start the server (default)").Default()
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Handle list-providers command
	if command == listProvidersCmd.FullCommand() {
		printProviders()
		return
	}

	// Initialize logger
	loggerConfig := logger.Config{
		Output: "stdout",
		Level:  "info",
	}
	// Override with command-line flags if specified
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	// Load config
	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	// Config-file log settings apply unless flags overrode them.
	if !*verbose && *logfile == "" {
		if err := logger.Init(logger.Config{Output: cfg.Log.Output, Level: cfg.Log.Level}); err != nil {
			zlog.Fatal().Msgf("Failed to initialize logger: %v", err)
		}
	}

	// Run server (defer ensures shutdown hook is called)
	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Server error: %v", err)
		os.Exit(1)
	}
}

// run executes the main server logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	ctx := context.Background()

	// Build the catalog provider chain
	cat, err := buildCatalog(ctx, cfg.Catalog.Providers)
	if err != nil {
		return fmt.Errorf("failed to build catalog: %w", err)
	}

	// Create speech synthesizer client
	synth, err := opentts.New(opentts.Config{
		BaseURL: cfg.Speech.BaseURL,
		Voice:   cfg.Speech.Voice,
	})
	if err != nil {
		return fmt.Errorf("failed to create speech client: %w", err)
	}

	// Two channels to the shared speaker: one for announcements, one for
	// the primary track.
	announce := beepaudio.NewChannel("announce")
	primary := beepaudio.NewChannel("primary")
	defer announce.Close()
	defer primary.Close()

	// Create player
	sink := presentation.NewFanout(presentation.LogSink{})
	pl := player.New(announce, primary, cat, synth, sink, player.Config{
		RetryDelay:           cfg.Playback.RetryDelay(),
		AnnouncementTemplate: cfg.Playback.AnnouncementTemplate,
	})
	pl.Start()
	defer pl.Close()

	// Create control API with h2c (HTTP/2 cleartext) support
	router := httpctl.NewRouter(pl, cat, cfg.Playback.SearchLimit)
	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: h2c.NewHandler(router, &http2.Server{}),
	}

	// Channel to capture server startup errors
	serverErrCh := make(chan error, 1)
	serverStartedCh := make(chan struct{})

	// Start server
	go func() {
		zlog.Info().Msgf("Starting server: addr=%s session=%s", cfg.Server.Addr, pl.SessionID())
		// Signal that we're about to start listening
		close(serverStartedCh)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	// Wait for server to start listening
	<-serverStartedCh
	// Give the server a moment to fully initialize
	time.Sleep(100 * time.Millisecond)

	// Execute startup hook if configured (after server is running)
	executeHooks(cfg.Server.Hooks.OnStarted, "on_started")

	// Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
		pl.Stop()
	case err := <-serverErrCh:
		return fmt.Errorf("server error: %w", err)
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}

	zlog.Info().Msg("Server stopped")

	// Execute shutdown hook if configured
	executeHooks(cfg.Server.Hooks.OnStopped, "on_stopped")

	return nil
}

// printProviders prints available catalog providers.
func printProviders() {
	fmt.Println("Available Catalog Providers:")
	for _, p := range registeredProviders() {
		fmt.Printf("  %-12s - %s\n", p.name, p.description)
	}
}

// executeHooks executes lifecycle hook commands.
func executeHooks(hooks []string, stage string) {
	if len(hooks) == 0 {
		return
	}

	zlog.Info().Msgf("Executing %s hooks (%d commands)", stage, len(hooks))

	for _, hook := range hooks {
		zlog.Info().Msgf("Executing hook: %s", hook)
		// Use sh -c to allow shell features like redirection or pipes
		cmd := exec.Command("sh", "-c", hook)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			zlog.Error().Err(err).Msgf("Failed to execute hook: %s", hook)
		}
	}
}
