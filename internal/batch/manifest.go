// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/gs-transcoder/internal/transcoder"
	"github.com/pdiddy/gs-transcoder/pkg/types"
)

// Manifest is the on-disk list of conversions executed by the run command.
// Relative input and output paths are resolved against the manifest's
// directory.
type Manifest struct {
	Jobs []types.Job `yaml:"jobs"`

	dir string
}

// LoadManifest reads and validates a YAML manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	m.dir = filepath.Dir(path)

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return &m, nil
}

// WriteManifest saves m as YAML.
func WriteManifest(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest %s: %w", path, err)
	}
	return nil
}

// Validate checks every job and reports all problems at once.
func (m *Manifest) Validate() error {
	if len(m.Jobs) == 0 {
		return errors.New("no jobs")
	}
	var errs []error
	for i, j := range m.Jobs {
		if err := j.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("job %d: %w", i+1, err))
		}
	}
	return errors.Join(errs...)
}

// Execute runs the jobs in order. A failed job does not stop the ones after
// it; existing outputs are not skipped since manifests name outputs exactly.
func (m *Manifest) Execute(ctx context.Context, t *transcoder.Transcoder, w io.Writer, rec Recorder) Result {
	var result Result
	for i, j := range m.Jobs {
		result.add(m.execute(ctx, t, i+1, j, w, rec))
	}
	result.summarize(w)
	return result
}

func (m *Manifest) execute(ctx context.Context, t *transcoder.Transcoder, n int, j types.Job, w io.Writer, rec Recorder) status {
	input, output := m.resolve(j.Input), m.resolve(j.Output)

	run := types.Run{
		Operation: j.Op,
		Input:     input,
		Output:    output,
	}

	var fn func() error
	switch j.Op {
	case types.OpImage:
		opts := transcoder.ImageOptions{Resolution: j.Resolution, Device: j.Device}
		run.Device = opts.Device
		if run.Device == "" {
			run.Device = transcoder.DefaultImageDevice
		}
		run.Resolution = opts.Resolution
		if run.Resolution == 0 {
			run.Resolution = transcoder.DefaultResolution
		}
		fn = func() error {
			_, err := t.ToImage(ctx, input, output, opts)
			return err
		}
	case types.OpPDF:
		var pages *transcoder.PageRange
		if j.HasPageRange() {
			pages = &transcoder.PageRange{Start: j.FirstPage, Count: j.PageCount}
			run.FirstPage, run.LastPage = pages.Start, pages.Last()
		}
		fn = func() error {
			_, err := t.ToPDF(ctx, input, output, pages)
			return err
		}
	default:
		fmt.Fprintf(w, "failed:  job %d (unknown op %q)\n", n, j.Op)
		return statusFailed
	}

	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(w, "failed:  job %d %s (%v)\n", n, j.Output, err)
			return statusFailed
		}
	}

	if err := track(ctx, rec, &run, w, fn); err != nil {
		fmt.Fprintf(w, "failed:  job %d %s (%v)\n", n, j.Output, err)
		return statusFailed
	}
	fmt.Fprintf(w, "converted: job %d %s\n", n, j.Output)
	return statusConverted
}

func (m *Manifest) resolve(path string) string {
	if m.dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.dir, path)
}
