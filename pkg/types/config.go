// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// DefaultBinary is the Ghostscript executable tried when no candidates are configured.
const DefaultBinary = "gs"

// TranscoderConfig holds the settings consumed when a Transcoder is created.
// Binaries is examined by binary resolution; the remaining fields are passed
// through to process invocation unexamined.
type TranscoderConfig struct {
	// Binaries is the ordered list of executable names or paths to try
	// (default ["gs"]). The first one found wins.
	Binaries []string `json:"binaries" yaml:"binaries" mapstructure:"binaries"`

	// Timeout bounds a single Ghostscript run. Zero means no limit.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// WorkDir is the working directory for the process. Empty inherits the
	// caller's working directory.
	WorkDir string `json:"workdir,omitempty" yaml:"workdir,omitempty" mapstructure:"workdir"`

	// Env lists extra KEY=VALUE pairs appended to the inherited environment.
	Env []string `json:"env,omitempty" yaml:"env,omitempty" mapstructure:"env"`
}

// WithDefaults returns a copy of c with unset fields filled in.
func (c TranscoderConfig) WithDefaults() TranscoderConfig {
	if len(c.Binaries) == 0 {
		c.Binaries = []string{DefaultBinary}
	}
	return c
}

// HistoryConfig holds settings for the run history store.
type HistoryConfig struct {
	// Path is the SQLite database file. Empty disables history.
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// MaxResults is the default number of runs listed (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// Enabled reports whether a history database is configured.
func (c HistoryConfig) Enabled() bool {
	return c.Path != ""
}

// LogConfig selects the logger verbosity.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default warn).
	Level string `json:"level" yaml:"level" mapstructure:"level"`
}

// Config groups all settings read from the config file and environment.
type Config struct {
	GS      TranscoderConfig `json:"gs" yaml:"gs" mapstructure:"gs"`
	History HistoryConfig    `json:"history" yaml:"history" mapstructure:"history"`
	Log     LogConfig        `json:"log" yaml:"log" mapstructure:"log"`
}
