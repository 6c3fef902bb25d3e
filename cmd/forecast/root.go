package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/warp/inventory-forecast/config"
	"github.com/warp/inventory-forecast/generic"
)

var (
	flagConfig    string
	flagSchedules string
	flagUnit      string
	flagVerbose   bool
)

var rootCmd = &cobra.Command{
	Use:           "forecast",
	Short:         "Chemical inventory depletion forecaster",
	Long:          "Predict the last day recurring scheduled uses can be met from the stock on hand.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "TOML config file")
	rootCmd.PersistentFlags().StringVarP(&flagSchedules, "schedules", "s", "", "Schedule file (.json or .toml)")
	rootCmd.PersistentFlags().StringVarP(&flagUnit, "unit", "u", "", "Unit label for amounts without one")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log excluded schedules and engine decisions")
}

// loadSettings reads config and builds the logger shared by subcommands.
func loadSettings() (config.Config, *logrus.Entry, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, nil, err
	}
	if flagVerbose {
		cfg.Log.Level = "debug"
	}
	logger := cfg.Log.NewLogger()
	logger.SetOutput(os.Stderr)
	return cfg, logrus.NewEntry(logger), nil
}

func unitFor(cfg config.Config) generic.Unit {
	if flagUnit != "" {
		return generic.Unit(flagUnit)
	}
	return generic.Unit(cfg.Forecast.DefaultUnit)
}
