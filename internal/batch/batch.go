// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch drives a Transcoder over many documents: whole directories,
// page-range splits and YAML manifests. Per-document status lines go to an
// io.Writer and each Ghostscript run can be recorded to the history store.
package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/gs-transcoder/internal/transcoder"
	"github.com/pdiddy/gs-transcoder/pkg/types"
)

// Recorder persists one run. history.Store implements it.
type Recorder interface {
	Record(ctx context.Context, run types.Run) error
}

// Result holds the outcome of a batch run.
type Result struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the total number of documents processed.
func (r Result) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any document failed.
func (r Result) HasFailures() bool {
	return r.Failed > 0
}

func (r *Result) add(s status) {
	switch s {
	case statusConverted:
		r.Converted++
	case statusSkipped:
		r.Skipped++
	case statusFailed:
		r.Failed++
	}
}

func (r Result) summarize(w io.Writer) {
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		r.Converted, r.Skipped, r.Failed, r.Total())
}

type status int

const (
	statusConverted status = iota
	statusSkipped
	statusFailed
)

// DiscoverPDFs lists the PDF files directly inside dir, matching the
// extension case-insensitively.
func DiscoverPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}

// RasterizeDir renders every PDF in dir to per-page images under outDir.
func RasterizeDir(ctx context.Context, t *transcoder.Transcoder, dir, outDir string, opts transcoder.ImageOptions, w io.Writer, rec Recorder) (Result, error) {
	paths, err := DiscoverPDFs(dir)
	if err != nil {
		return Result{}, err
	}
	return RasterizePaths(ctx, t, paths, outDir, opts, w, rec), nil
}

// RasterizePaths renders each input to outDir/<base>-NNN<ext>, one image per
// page. Inputs whose first page image already exists are skipped.
func RasterizePaths(ctx context.Context, t *transcoder.Transcoder, paths []string, outDir string, opts transcoder.ImageOptions, w io.Writer, rec Recorder) Result {
	var result Result
	for _, p := range paths {
		result.add(rasterize(ctx, t, p, outDir, opts, w, rec))
	}
	result.summarize(w)
	return result
}

func rasterize(ctx context.Context, t *transcoder.Transcoder, input, outDir string, opts transcoder.ImageOptions, w io.Writer, rec Recorder) status {
	base := baseName(input)
	device := opts.Device
	if device == "" {
		device = transcoder.DefaultImageDevice
	}
	ext := transcoder.ImageExtension(device)

	first := filepath.Join(outDir, base+"-001"+ext)
	if _, err := os.Stat(first); err == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", base)
		return statusSkipped
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return statusFailed
	}

	// Ghostscript expands %03d per page; a literal % in the name is doubled.
	dest := filepath.Join(outDir, strings.ReplaceAll(base, "%", "%%")+"-%03d"+ext)

	run := types.Run{
		Operation:  types.OpImage,
		Input:      input,
		Output:     dest,
		Device:     device,
		Resolution: opts.Resolution,
	}
	if run.Resolution == 0 {
		run.Resolution = transcoder.DefaultResolution
	}

	err := track(ctx, rec, &run, w, func() error {
		_, err := t.ToImage(ctx, input, dest, opts)
		return err
	})
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return statusFailed
	}

	fmt.Fprintf(w, "converted: %s\n", base)
	return statusConverted
}

// track times fn, fills in the run outcome and hands it to rec. A recorder
// failure is reported to w and otherwise ignored.
func track(ctx context.Context, rec Recorder, run *types.Run, w io.Writer, fn func() error) error {
	run.StartedAt = time.Now().UTC()
	err := fn()
	run.Duration = time.Since(run.StartedAt)
	run.Status = types.RunOK
	if err != nil {
		run.Status = types.RunFailed
		run.Error = err.Error()
	}

	if rec != nil {
		if recErr := rec.Record(ctx, *run); recErr != nil {
			fmt.Fprintf(w, "warning: could not record run for %s: %v\n", run.Input, recErr)
		}
	}
	return err
}

// Track runs fn as a single recorded transcoding call. It is used by callers
// outside this package that issue one-off conversions.
func Track(ctx context.Context, rec Recorder, run types.Run, w io.Writer, fn func() error) error {
	return track(ctx, rec, &run, w, fn)
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
