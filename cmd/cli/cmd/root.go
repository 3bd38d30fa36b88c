// Package cmd provides the CLI commands for tariffkey.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tariffkey/internal/config"
	"tariffkey/internal/logging"
)

var (
	cfgFile      string
	verbose      bool
	rateFile     string
	databaseFlag string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tariffkey",
	Short: "Quote import duties from historical tariff rates",
	Long: `tariffkey resolves which tariff rates applied during a calculation
window and allocates quantity and price proportionally across the
sub-intervals where the rate changed.

Rates come from an HCL schedule file of route overrides and product
defaults, or from a Postgres database when --database (or the
configured database URL) is set; overrides always outrank defaults.

Examples:
  tariffkey quote --rates rates.hcl --product 847130 --origin SGP --destination USA \
    --quantity 100 --unit-price 2.00 --from 2024-01-01T00:00:00Z --to 2024-01-01T12:00:00Z
  tariffkey history --rates rates.hcl --product 847130 --origin SGP --destination USA
  tariffkey fees --rates rates.hcl`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.tariffkey.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&rateFile, "rates", "", "HCL rate schedule file (default from config)")
	rootCmd.PersistentFlags().StringVar(&databaseFlag, "database", "", "Postgres connection URL (default from config)")

	// Add subcommands
	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(feesCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		config.Set(cfg)
	}

	// Initialize logging
	cfg := config.Get()
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// schedulePath resolves the rate schedule location from flag or config
func schedulePath() string {
	if rateFile != "" {
		return rateFile
	}
	return config.Get().Rates.SchedulePath
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("tariffkey version 0.1.0")
	},
}
