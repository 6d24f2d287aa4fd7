package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"menuboard/internal/config"
	"menuboard/internal/logging"
)

var (
	cfgFile  string
	logLevel string

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "menuboard",
	Short: "Restaurant menu and promo signage driven by a spreadsheet",
	Long: `menuboard reads the menu spreadsheet, normalizes it into menu items and
promotions, and serves the menu page and the rotating TV screen.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadFile(cfgFile)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		logger, err = logging.New(cfg.LogLevel, cfg.LogFormat)
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

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml or json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL")

	rootCmd.AddCommand(menuCmd, promosCmd, runCmd, exportCmd, publishCmd, serveCmd)
}
