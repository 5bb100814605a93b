// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package binary

import (
	"context"
	"errors"
	"os/exec"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/gs-transcoder/pkg/types"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	availableBins map[string]bool // candidate -> whether LookPath succeeds
	runFunc       func(ctx context.Context, c command) ([]byte, error)
	calls         []command
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) Run(ctx context.Context, c command) ([]byte, error) {
	m.calls = append(m.calls, c)
	if m.runFunc != nil {
		return m.runFunc(ctx, c)
	}
	return nil, nil
}

// exitError mimics *exec.ExitError for a given status.
type exitError struct{ code int }

func (e exitError) Error() string { return "exit status " + strconv.Itoa(e.code) }
func (e exitError) ExitCode() int { return e.code }

func TestLoad(t *testing.T) {
	tests := []struct {
		name       string
		candidates []string
		available  map[string]bool
		wantPath   string
		wantErr    error
	}{
		{
			name:       "first candidate found",
			candidates: []string{"gs", "gswin64c"},
			available:  map[string]bool{"gs": true, "gswin64c": true},
			wantPath:   "/usr/bin/gs",
		},
		{
			name:       "falls back to later candidate",
			candidates: []string{"gswin64c", "gs"},
			available:  map[string]bool{"gs": true},
			wantPath:   "/usr/bin/gs",
		},
		{
			name:       "empty candidate skipped",
			candidates: []string{"", "gs"},
			available:  map[string]bool{"gs": true},
			wantPath:   "/usr/bin/gs",
		},
		{
			name:       "no candidate found",
			candidates: []string{"nonexistent-binary"},
			available:  map[string]bool{},
			wantErr:    ErrNotFound,
		},
		{
			name:       "empty candidate list",
			candidates: nil,
			wantErr:    ErrNoCandidates,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &mockExecutor{availableBins: tt.available}
			d, err := load(exec, tt.candidates, types.TranscoderConfig{}, nil)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				for _, c := range tt.candidates {
					assert.Contains(t, err.Error(), c)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, d.Path())
		})
	}
}

func TestRunSuccess(t *testing.T) {
	exec := &mockExecutor{
		availableBins: map[string]bool{"gs": true},
		runFunc: func(ctx context.Context, c command) ([]byte, error) {
			return []byte("GPL Ghostscript 10.02.1\n"), nil
		},
	}
	cfg := types.TranscoderConfig{WorkDir: "/tmp/work", Env: []string{"GS_LIB=/opt/gs/lib"}}
	d, err := load(exec, []string{"gs"}, cfg, nil)
	require.NoError(t, err)

	out, err := d.Run(context.Background(), []string{"-dBATCH", "in.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "GPL Ghostscript 10.02.1\n", out)

	require.Len(t, exec.calls, 1)
	got := exec.calls[0]
	assert.Equal(t, "/usr/bin/gs", got.path)
	assert.Equal(t, []string{"-dBATCH", "in.pdf"}, got.args)
	assert.Equal(t, "/tmp/work", got.dir)
	assert.Equal(t, []string{"GS_LIB=/opt/gs/lib"}, got.env)
}

func TestRunFailure(t *testing.T) {
	tests := []struct {
		name     string
		runErr   error
		output   string
		wantCode int
	}{
		{
			name:     "non-zero exit preserves code and output",
			runErr:   exitError{code: 1},
			output:   "Error: /undefinedfilename in (missing.pdf)\n",
			wantCode: 1,
		},
		{
			name:     "launch failure has no exit code",
			runErr:   errors.New("fork/exec /usr/bin/gs: permission denied"),
			wantCode: -1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &mockExecutor{
				availableBins: map[string]bool{"gs": true},
				runFunc: func(context.Context, command) ([]byte, error) {
					return []byte(tt.output), tt.runErr
				},
			}
			d, err := load(exec, []string{"gs"}, types.TranscoderConfig{}, nil)
			require.NoError(t, err)

			out, err := d.Run(context.Background(), []string{"missing.pdf"})
			require.Error(t, err)
			assert.Equal(t, tt.output, out)

			var execErr *ExecutionError
			require.ErrorAs(t, err, &execErr)
			assert.Equal(t, tt.wantCode, execErr.ExitCode)
			assert.Equal(t, tt.output, execErr.Output)
			assert.Equal(t, []string{"missing.pdf"}, execErr.Args)
			assert.ErrorIs(t, err, tt.runErr)
		})
	}
}

func TestRunTimeout(t *testing.T) {
	exec := &mockExecutor{
		availableBins: map[string]bool{"gs": true},
		runFunc: func(ctx context.Context, c command) ([]byte, error) {
			<-ctx.Done()
			return nil, errors.New("signal: killed")
		},
	}
	d, err := load(exec, []string{"gs"}, types.TranscoderConfig{Timeout: 10 * time.Millisecond}, nil)
	require.NoError(t, err)

	_, err = d.Run(context.Background(), []string{"in.pdf"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, -1, execErr.ExitCode)
}

func TestRunLogsFailure(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	exec := &mockExecutor{
		availableBins: map[string]bool{"gs": true},
		runFunc: func(context.Context, command) ([]byte, error) {
			return []byte("boom"), exitError{code: 2}
		},
	}
	d, err := load(exec, []string{"gs"}, types.TranscoderConfig{}, zap.New(core))
	require.NoError(t, err)

	_, err = d.Run(context.Background(), []string{"in.pdf"})
	require.Error(t, err)

	failures := logs.FilterMessage("command failed").All()
	require.Len(t, failures, 1)
	assert.Equal(t, zapcore.WarnLevel, failures[0].Level)
	assert.EqualValues(t, 2, failures[0].ContextMap()["exit_code"])
	assert.Equal(t, 1, logs.FilterMessage("running command").Len())
}

func TestExecutionErrorMessage(t *testing.T) {
	err := &ExecutionError{
		Path:   "/usr/bin/gs",
		Output: "GPL Ghostscript 10.02.1\nUnrecoverable error, exit code 1\n",
		Err:    errors.New("exit status 1"),
	}
	assert.Equal(t, "running /usr/bin/gs: exit status 1: Unrecoverable error, exit code 1", err.Error())
}

func TestOSExecutor(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	d, err := Load([]string{"nonexistent-binary-7f3a", "sh"}, types.TranscoderConfig{}, nil)
	require.NoError(t, err)

	out, err := d.Run(context.Background(), []string{"-c", "echo converted"})
	require.NoError(t, err)
	assert.Equal(t, "converted\n", out)

	out, err = d.Run(context.Background(), []string{"-c", "echo failing; exit 3"})
	require.Error(t, err)
	assert.Equal(t, "failing\n", out)
	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, 3, execErr.ExitCode)

	_, err = Load([]string{"nonexistent-binary-7f3a"}, types.TranscoderConfig{}, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}
