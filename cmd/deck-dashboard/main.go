// Command deck-dashboard serves charts over a Hearthstone deck dataset or
// renders them to static HTML files.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/api"
	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/config"
	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/dashboard"
	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/events"
	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/export"
	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/stats"
	"github.com/Sovbaka/Hearthstone-deck-analysis/internal/version"
)

var (
	// Global flags
	configPath  string
	verbose     bool
	catalogPath string
	decksPath   string
	eventsPath  string

	// serve flags
	port        int
	openBrowser bool

	// render flags
	outDir     string
	class      string
	window     int
	showEvents bool
	cards      []string
	dataFormat string
	fromDate   string
	toDate     string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "deck-dashboard",
	Short: "Charts over user-submitted Hearthstone decks",
	Long: `deck-dashboard loads a card catalog and a deck table, derives rarity and
mechanic statistics per deck and presents them as charts: class popularity,
craft cost distribution, decks per day, rarity structure over time and card
popularity.`,
	Version:      version.String(),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web dashboard",
	RunE:  runServe,
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Write every chart to static HTML files",
	Example: `  deck-dashboard render --out charts --class Warrior --events \
    --card "Leeroy Jenkins" --card Fireball`,
	RunE: runRender,
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config [path]",
	Short: "Write the default configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "deck-dashboard.toml"
		if len(args) == 1 {
			path = args[0]
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		if err := config.DefaultConfig().Save(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "deck-dashboard.toml", "Configuration file (defaults apply if missing)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "Card catalog JSON (overrides config)")
	rootCmd.PersistentFlags().StringVar(&decksPath, "decks", "", "Deck table CSV (overrides config)")
	rootCmd.PersistentFlags().StringVar(&eventsPath, "events-file", "", "YAML event calendar (overrides config)")

	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP port (overrides config)")
	serveCmd.Flags().BoolVar(&openBrowser, "open", false, "Open the dashboard in the default browser")

	renderCmd.Flags().StringVarP(&outDir, "out", "o", "charts", "Output directory")
	renderCmd.Flags().StringVar(&class, "class", dashboard.AllClasses, "Class for the rarity and mechanic charts")
	renderCmd.Flags().IntVar(&window, "window", 0, "Rolling window in observed days (default from config)")
	renderCmd.Flags().BoolVar(&showEvents, "events", false, "Mark adventures and expansions")
	renderCmd.Flags().StringArrayVar(&cards, "card", nil, "Card for a popularity chart (repeatable)")
	renderCmd.Flags().StringVar(&fromDate, "from", "", "First date shown on time series charts (YYYY-MM-DD)")
	renderCmd.Flags().StringVar(&toDate, "to", "", "Last date shown on time series charts (YYYY-MM-DD)")
	renderCmd.Flags().StringVar(&dataFormat, "data", "", "Also write the chart data as csv or json")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(initConfigCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if catalogPath != "" {
		cfg.Data.CatalogPath = catalogPath
	}
	if decksPath != "" {
		cfg.Data.DeckTablePath = decksPath
	}
	if eventsPath != "" {
		cfg.Data.EventsPath = eventsPath
	}
	if port != 0 {
		cfg.Server.Port = port
	}
	if openBrowser {
		cfg.Server.OpenBrowser = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newService builds the dashboard service and loads the dataset once, so
// that unreadable inputs fail at startup.
func newService(cfg *config.Config) (*dashboard.Service, error) {
	calendar, err := events.LoadCalendar(cfg.Data.EventsPath)
	if err != nil {
		return nil, err
	}

	svc := dashboard.NewService(cfg, calendar, logger)
	if _, err := svc.Dataset(); err != nil {
		return nil, err
	}
	return svc, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Warn("failed to stop file watcher", zap.Error(err))
		}
	}()

	if cfg.Cache.Enabled && cfg.Cache.Watch {
		if err := svc.Watch(); err != nil {
			// Signature checks on every request still catch changes.
			logger.Warn("file watching disabled", zap.Error(err))
		}
	}

	server := api.NewServer(&api.Config{
		Port:        cfg.Server.Port,
		OpenBrowser: cfg.Server.OpenBrowser,
		RenderRate:  cfg.Server.RenderRate,
		RenderBurst: cfg.Server.RenderBurst,
	}, svc, logger.Named("api"))

	if err := server.Start(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Dashboard running at %s\nPress Ctrl+C to stop\n", server.URL())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	rng, err := stats.ParseRange(fromDate, toDate)
	if err != nil {
		return err
	}
	var format export.Format
	if dataFormat != "" {
		if format, err = export.ParseFormat(dataFormat); err != nil {
			return err
		}
	}

	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	q := dashboard.Query{
		Class:      class,
		Window:     window,
		ShowEvents: showEvents,
		Range:      rng,
	}
	files, err := svc.RenderAll(outDir, q, cards)
	if err != nil {
		return err
	}
	if format != "" {
		data, err := svc.ExportAll(outDir, format, q, cards)
		if err != nil {
			return err
		}
		files = append(files, data...)
	}

	for _, f := range files {
		fmt.Fprintln(cmd.OutOrStdout(), f)
	}
	return nil
}
