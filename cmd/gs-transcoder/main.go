// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the gs-transcoder CLI, which renders
// documents to images or rewrites them as PDFs through Ghostscript.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/gs-transcoder/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// appConfig is decoded from viper before any subcommand runs.
	appConfig types.Config

	logger = zap.NewNop()
)

// rootCmd is the base command for the gs-transcoder CLI.
var rootCmd = &cobra.Command{
	Use:   "gs-transcoder",
	Short: "Convert documents to images or PDFs with Ghostscript",
	Long: `gs-transcoder drives the Ghostscript command-line program to render
documents to raster images (PNG, JPEG, TIFF and any other Ghostscript device)
or to rewrite them as PDFs, optionally restricted to a page range.

Single conversions use the image and pdf subcommands. batch, split and run
process many documents at once, and history lists past runs when a history
database is configured.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		appConfig = cfg

		l, err := newLogger(cfg.Log.Level)
		if err != nil {
			return err
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

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./gs-transcoder.yaml or ~/.config/gs-transcoder/config.yaml)")
	flags.StringSlice("binary", nil, "Ghostscript executables to try, in order (default [gs])")
	flags.Duration("timeout", 0, "maximum duration of one Ghostscript run (default none)")
	flags.String("history", "", "SQLite database recording every run (default: disabled)")
	flags.String("log-level", "", "log level: debug, info, warn, error (default warn)")

	_ = viper.BindPFlag("gs.binaries", flags.Lookup("binary"))
	_ = viper.BindPFlag("gs.timeout", flags.Lookup("timeout"))
	_ = viper.BindPFlag("history.path", flags.Lookup("history"))
	_ = viper.BindPFlag("log.level", flags.Lookup("log-level"))
}

// configDefaults lists every key of types.Config. Viper only consults the
// environment for keys it already knows, so each one needs a default.
var configDefaults = map[string]any{
	"gs.binaries":         []string{types.DefaultBinary},
	"gs.timeout":          time.Duration(0),
	"gs.workdir":          "",
	"gs.env":              []string{},
	"history.path":        "",
	"history.max_results": 0,
	"log.level":           "warn",
}

func initConfig() {
	for key, value := range configDefaults {
		viper.SetDefault(key, value)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("gs-transcoder")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "gs-transcoder"))
		}
	}

	viper.SetEnvPrefix("GS_TRANSCODER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
