package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/sweeparr/sweeparr/internal/config"
	"github.com/sweeparr/sweeparr/internal/controllers"
	"github.com/sweeparr/sweeparr/internal/models"
	"github.com/sweeparr/sweeparr/internal/scheduler"
	"github.com/sweeparr/sweeparr/internal/services/plex"
	"github.com/sweeparr/sweeparr/internal/services/radarr"
	"github.com/sweeparr/sweeparr/internal/services/sonarr"
	"github.com/sweeparr/sweeparr/internal/services/tautulli"
	"github.com/sweeparr/sweeparr/internal/utils"
)

type options struct {
	configPath  string
	limit       int
	months      int
	verbose     bool
	debug       bool
	tui         bool
	deleteFiles bool
	mode        string
	schedule    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:          "sweeparr",
		Short:        "Report and clean up unwatched Sonarr/Radarr library items",
		Long:         "sweeparr cross-references your Sonarr or Radarr library with Tautulli (or Plex) watch history and reports the largest items nobody has watched recently.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "config.ini", "Path to config file")
	flags.IntVarP(&opts.limit, "limit", "l", 0, "Limit to top N items by size (0 uses the configured count)")
	flags.IntVarP(&opts.months, "months", "m", 2, "Check if watched in the past N months")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output")
	flags.BoolVarP(&opts.debug, "debug", "d", false, "Enable debug output with API request details")
	flags.BoolVarP(&opts.tui, "tui", "t", false, "Interactive deletion of unwatched items")
	flags.BoolVar(&opts.deleteFiles, "delete-files", false, "Delete files when removing items (only with --tui)")
	flags.StringVar(&opts.mode, "mode", "sonarr", "Select mode: sonarr for TV shows, radarr for movies")
	flags.StringVar(&opts.schedule, "schedule", "", "Cron schedule for repeated report generation (report mode only)")

	return cmd
}

func run(opts *options) error {
	mode := models.Mode(opts.mode)
	if !mode.Valid() {
		return fmt.Errorf("invalid mode %q, must be 'sonarr' or 'radarr'", opts.mode)
	}
	if opts.tui && opts.schedule != "" {
		return fmt.Errorf("--schedule cannot be combined with --tui")
	}

	logger := utils.NewLogger(opts.verbose, opts.debug)

	if opts.deleteFiles && !opts.tui {
		logger.Warn("--delete-files has no effect without --tui")
	}

	// 1. Load configuration
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(mode); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.EnsureReportPath(); err != nil {
		return err
	}
	logger.WithField("config", opts.configPath).Info("Configuration loaded")

	// 2. Initialize service clients
	var catalog controllers.CatalogService
	if mode == models.ModeSonarr {
		catalog, err = sonarr.NewClient(cfg, logger)
	} else {
		catalog, err = radarr.NewClient(cfg, logger)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize %s client: %w", mode, err)
	}

	tautulliClient, err := tautulli.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize Tautulli client: %w", err)
	}

	// Plex is optional; without a token there is no fallback history source
	var fallback controllers.HistoryService
	if cfg.PlexURL != "" && cfg.PlexToken != "" {
		plexClient, err := plex.NewClient(cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize Plex client: %w", err)
		}
		fallback = plexClient
	} else {
		logger.Debug("Plex not configured, history fallback disabled")
	}

	// 3. Initialize controllers
	analyzeCtrl := controllers.NewAnalyzeController(catalog, tautulliClient, fallback, cfg, mode, logger)

	ctx := context.Background()

	// 4. Run the requested workflow
	if opts.tui {
		cleanupCtrl := controllers.NewCleanupController(analyzeCtrl, catalog, os.Stdin, os.Stdout, logger)
		return cleanupCtrl.Run(ctx, opts.months, opts.limit, opts.deleteFiles)
	}

	if opts.schedule != "" {
		sched := scheduler.NewScheduler(analyzeCtrl, opts.months, opts.limit, logger)
		if err := sched.Start(opts.schedule); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer sched.Stop()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		sig := <-sigChan
		logger.WithField("signal", sig).Info("Received shutdown signal")
		return nil
	}

	rep, err := analyzeCtrl.GenerateReport(ctx, opts.months, opts.limit)
	if err != nil {
		return err
	}

	itemType := "movies"
	if mode == models.ModeSonarr {
		itemType = "series"
	}
	fmt.Printf("\nFound %d %s that haven't been watched in %d months.\n", rep.UnwatchedCount, itemType, opts.months)
	fmt.Printf("Total space that could be freed: %s\n", rep.TotalHuman)

	return nil
}
