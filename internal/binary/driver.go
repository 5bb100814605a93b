// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package binary resolves an external executable from a list of candidates
// and runs it synchronously, capturing its output and exit status.
package binary

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/gs-transcoder/pkg/types"
)

var (
	// ErrNotFound is returned by Load when none of the candidates resolves
	// to an executable.
	ErrNotFound = errors.New("executable not found")

	// ErrNoCandidates is returned by Load when the candidate list is empty.
	ErrNoCandidates = errors.New("no executable candidates configured")
)

// ExecutionError reports a process that could not be started or that exited
// with a non-zero status.
type ExecutionError struct {
	Path string
	Args []string

	// ExitCode is the process exit status, or -1 when the process never
	// started or was terminated by a signal.
	ExitCode int

	// Output is the combined stdout and stderr of the process.
	Output string

	Err error
}

func (e *ExecutionError) Error() string {
	msg := fmt.Sprintf("running %s: %v", e.Path, e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + lastLine(out)
	}
	return msg
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// lastLine returns the final line of s; Ghostscript prints its fatal
// diagnostic last.
func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// command is a fully prepared process invocation.
type command struct {
	path string
	args []string
	dir  string
	env  []string
}

// executor abstracts process execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, c command) ([]byte, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Run(ctx context.Context, c command) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.path, c.args...)
	cmd.Dir = c.dir
	if len(c.env) > 0 {
		cmd.Env = append(os.Environ(), c.env...)
	}
	return cmd.CombinedOutput()
}

// exitCoder is satisfied by *exec.ExitError.
type exitCoder interface {
	ExitCode() int
}

// Driver runs one resolved executable with fixed invocation settings. A
// Driver is immutable and safe for concurrent use.
type Driver struct {
	path   string
	cfg    types.TranscoderConfig
	exec   executor
	logger *zap.Logger
}

var defaultExec = &osExecutor{}

// Load returns a Driver for the first candidate that resolves to an
// executable on PATH (or as a path). cfg supplies the timeout, working
// directory and environment applied to every run.
func Load(candidates []string, cfg types.TranscoderConfig, logger *zap.Logger) (*Driver, error) {
	return load(defaultExec, candidates, cfg, logger)
}

func load(exec executor, candidates []string, cfg types.TranscoderConfig, logger *zap.Logger) (*Driver, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	for _, c := range candidates {
		if c == "" {
			continue
		}
		path, err := exec.LookPath(c)
		if err != nil {
			logger.Debug("binary candidate not usable", zap.String("candidate", c), zap.Error(err))
			continue
		}
		logger.Debug("binary resolved", zap.String("candidate", c), zap.String("path", path))
		return &Driver{path: path, cfg: cfg, exec: exec, logger: logger}, nil
	}

	return nil, fmt.Errorf("%w: tried %s", ErrNotFound, strings.Join(candidates, ", "))
}

// Path returns the resolved executable path.
func (d *Driver) Path() string { return d.path }

// Run executes the binary with args and returns its combined output. A
// non-zero exit, a launch failure or an expired timeout yields an
// *ExecutionError.
func (d *Driver) Run(ctx context.Context, args []string) (string, error) {
	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}

	c := command{
		path: d.path,
		args: args,
		dir:  d.cfg.WorkDir,
		env:  d.cfg.Env,
	}

	d.logger.Debug("running command", zap.String("path", d.path), zap.Strings("args", args))
	out, err := d.exec.Run(ctx, c)
	if err == nil {
		return string(out), nil
	}

	execErr := &ExecutionError{
		Path:     d.path,
		Args:     args,
		ExitCode: -1,
		Output:   string(out),
		Err:      err,
	}
	var ec exitCoder
	if errors.As(err, &ec) {
		execErr.ExitCode = ec.ExitCode()
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		execErr.Err = ctxErr
		execErr.ExitCode = -1
	}

	d.logger.Warn("command failed",
		zap.String("path", d.path),
		zap.Strings("args", args),
		zap.Int("exit_code", execErr.ExitCode),
		zap.String("output", execErr.Output),
		zap.Error(execErr.Err),
	)
	return execErr.Output, execErr
}
