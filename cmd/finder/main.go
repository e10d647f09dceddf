package main

import (
	"fmt"
	"os"

	"github.com/matst80/slask-homes/pkg/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	logLevel string
	apiUrl   string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "finder",
	Short: "Property search filter engine",
	Long: `finder maps property search filters to canonical query strings and
fetches result pages from the marketplace search endpoint.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if logger != nil {
			return nil
		}
		var err error
		logger, err = common.NewLogger(resolveLogLevel(cmd.Flags().Changed("log-level")))
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// resolveLogLevel prefers an explicit --log-level over LOG_LEVEL.
func resolveLogLevel(flagSet bool) string {
	if flagSet {
		return logLevel
	}
	if cfg, err := common.LoadConfig(); err == nil && cfg.LogLevel != "" {
		return cfg.LogLevel
	}
	return logLevel
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&apiUrl, "api", "", "search endpoint base url, overrides API_URL")

	rootCmd.AddCommand(serveCmd, encodeCmd, canonicalCmd, searchCmd, watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
