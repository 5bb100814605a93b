package main

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/gs-transcoder/internal/batch"
	"github.com/pdiddy/gs-transcoder/internal/history"
	"github.com/pdiddy/gs-transcoder/internal/transcoder"
	"github.com/pdiddy/gs-transcoder/pkg/types"
)

// loadConfig decodes the merged flags, environment and config file.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	cfg.GS = cfg.GS.WithDefaults()
	return cfg, nil
}

// newLogger builds a production zap logger writing to stderr at level.
func newLogger(level string) (*zap.Logger, error) {
	if level == "" {
		level = "warn"
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

func newTranscoder() (*transcoder.Transcoder, error) {
	return transcoder.New(appConfig.GS, logger)
}

// openRecorder returns the history store as a batch.Recorder, or nil when no
// history database is configured. The returned close function is never nil.
func openRecorder() (batch.Recorder, func(), error) {
	if !appConfig.History.Enabled() {
		return nil, func() {}, nil
	}
	s, err := history.Open(appConfig.History)
	if err != nil {
		return nil, nil, err
	}
	return s, func() { s.Close() }, nil
}
