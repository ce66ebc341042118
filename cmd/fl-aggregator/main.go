// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the fl-aggregator CLI.
// See docs/ARCHITECTURE § Pipeline Interface.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time via ldflags.
var version = "dev"

// Process exit codes.
const (
	exitFailure  = 1
	exitMismatch = 2
)

// logger is replaced in PersistentPreRunE once --verbose is known.
var logger = zap.NewNop()

// exitError carries a process exit code through cobra's RunE.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitFailure
}

// rootCmd is the base command for the fl-aggregator CLI.
var rootCmd = &cobra.Command{
	Use:   "fl-aggregator",
	Short: "Recover weight vectors from client updates and average them",
	Long: `fl-aggregator reads a directory of federated-learning client update files,
recovers one flat numeric vector from each regardless of how the client encoded
it (nested arrays, objects of numbers, JSON or CSV strings, base64 float buffers),
and writes the elementwise mean together with a per-file audit list.

Use inspect to see every candidate vector a file contains, and history to browse
runs recorded in the SQLite ledger.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		l, err := newLogger(verbose)
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./fl-aggregator.yaml or ~/.config/fl-aggregator/fl-aggregator.yaml)")
	pf.Bool("verbose", false, "enable debug logging")
	pf.String("ledger", "", "SQLite run ledger path (empty disables recording)")

	_ = viper.BindPFlag("ledger.path", pf.Lookup("ledger"))
	viper.SetDefault("ledger.max_results", 20)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("fl-aggregator")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "fl-aggregator"))
		}
	}

	viper.SetEnvPrefix("FL_AGGREGATOR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}
