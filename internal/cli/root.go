// Package cli provides the command-line interface for the pricer.
package cli

import (
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"idb-pricer/internal/config"
	"idb-pricer/internal/logging"
	"idb-pricer/internal/marketdata"
	"idb-pricer/internal/parse"
	"idb-pricer/internal/pricer"
	"idb-pricer/internal/resilience"
	"idb-pricer/internal/store"
	"idb-pricer/pkg/utils"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-01-01"
)

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Source marketdata.Source
	Store  store.Sink
	Engine *pricer.Engine
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// Data source: the simulator is the only built-in feed; terminal
	// mode falls back to it until a terminal bridge is configured.
	sim := marketdata.NewSimSource(cfg.Pricing.RiskFreeRate, cfg.Pricing.DividendYield)
	breaker := resilience.NewCircuitBreaker("marketdata", resilience.DefaultCircuitBreakerConfig())
	app.Source = marketdata.WithBreaker(
		marketdata.WithRetry(sim, utils.DefaultRetryConfig()),
		breaker,
	)
	if !cfg.IsSimMode() {
		logger.Warn().Msg("Terminal data mode not configured, using simulator")
	}

	// Order store
	dbPath := cfg.Store.Path
	if dbPath == "" {
		dbPath = config.DefaultStorePath()
	}
	orderStore, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, saving disabled")
	} else {
		app.Store = orderStore
		logger.Debug().Str("path", filepath.Clean(dbPath)).Msg("Order store initialized")
	}

	app.Engine = pricer.NewEngine(
		app.Source,
		parse.NewParser(parserOptions(cfg)),
		cfg.Pricing.RiskFreeRate,
		cfg.Pricing.DividendYield,
		logger,
	)

	rootCmd := &cobra.Command{
		Use:   "pricer",
		Short: "IDB Pricer - broker shorthand parser and options pricer",
		Long: `IDB Pricer parses interdealer broker shorthand for equity option
structures and prices them against live or simulated market data.

Paste a broker message and get back the parsed structure, per-leg
quotes, the implied structure market and net Greeks.

Use 'pricer help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/idb-pricer)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newPriceCmd(app))
	rootCmd.AddCommand(newParseCmd(app))
	rootCmd.AddCommand(newPayoffCmd(app))
	rootCmd.AddCommand(newOrdersCmd(app))

	return rootCmd
}

func parserOptions(cfg *config.Config) parse.Options {
	opts := parse.DefaultOptions()
	if cfg.Parsing.RiskReversalOver == "put" {
		opts.RiskReversalOver = "PUT"
	}
	return opts
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("IDB Pricer v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			return showConfig(output, app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Pricing Configuration")
	output.Printf("  Risk-Free Rate:  %.2f%%\n", cfg.Pricing.RiskFreeRate*100)
	output.Printf("  Dividend Yield:  %.2f%%\n", cfg.Pricing.DividendYield*100)
	output.Println()

	output.Bold("Parsing Configuration")
	output.Printf("  RR Over Default: %s\n", cfg.Parsing.RiskReversalOver)
	output.Println()

	output.Bold("Data Configuration")
	output.Printf("  Mode:            %s\n", cfg.Data.Mode)
	output.Printf("  Host:            %s:%d\n", cfg.Data.Host, cfg.Data.Port)
	output.Println()

	output.Bold("Store Configuration")
	output.Printf("  Path:            %s\n", cfg.Store.Path)

	return nil
}
