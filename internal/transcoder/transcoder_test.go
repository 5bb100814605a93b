// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package transcoder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/gs-transcoder/internal/binary"
	"github.com/pdiddy/gs-transcoder/pkg/types"
)

// fakeRunner records argument vectors and returns a canned result. When
// writeOutput is set it creates the -sOutputFile destination like
// Ghostscript would.
type fakeRunner struct {
	mu          sync.Mutex
	calls       [][]string
	err         error
	writeOutput bool
}

func (f *fakeRunner) Path() string { return "/usr/bin/gs" }

func (f *fakeRunner) Run(ctx context.Context, args []string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, args)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	if f.writeOutput {
		for _, a := range args {
			if dest, ok := strings.CutPrefix(a, "-sOutputFile="); ok {
				if err := os.WriteFile(dest, []byte("%PDF-1.7"), 0o644); err != nil {
					return "", err
				}
			}
		}
	}
	return "", nil
}

func (f *fakeRunner) lastCall(t *testing.T) []string {
	t.Helper()
	require.NotEmpty(t, f.calls, "runner was not called")
	return f.calls[len(f.calls)-1]
}

func execFailure(code int) error {
	return &binary.ExecutionError{
		Path:     "/usr/bin/gs",
		ExitCode: code,
		Output:   "Unrecoverable error, exit code 1",
		Err:      errors.New("exit status 1"),
	}
}

func TestToImageArgs(t *testing.T) {
	tests := []struct {
		name string
		opts ImageOptions
		want []string
	}{
		{
			name: "defaults",
			want: []string{"-sDEVICE=png16m", "-dNOPAUSE", "-dBATCH", "-dSAFER", "-r200", "-sOutputFile=out.png", "in.pdf"},
		},
		{
			name: "jpeg at 72 dpi",
			opts: ImageOptions{Resolution: 72, Device: "jpeg"},
			want: []string{"-sDEVICE=jpeg", "-dNOPAUSE", "-dBATCH", "-dSAFER", "-r72", "-sOutputFile=out.png", "in.pdf"},
		},
		{
			name: "device passed through verbatim",
			opts: ImageOptions{Resolution: 600, Device: "tiffg4"},
			want: []string{"-sDEVICE=tiffg4", "-dNOPAUSE", "-dBATCH", "-dSAFER", "-r600", "-sOutputFile=out.png", "in.pdf"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRunner{}
			tc := NewWithRunner(r)

			got, err := tc.ToImage(context.Background(), "in.pdf", "out.png", tt.opts)
			require.NoError(t, err)
			assert.Same(t, tc, got)
			assert.Equal(t, tt.want, r.lastCall(t))
		})
	}
}

func TestToPDFArgs(t *testing.T) {
	tests := []struct {
		name  string
		pages *PageRange
		want  []string
	}{
		{
			name: "whole document",
			want: []string{"-sDEVICE=pdfwrite", "-dNOPAUSE", "-dBATCH", "-dSAFER", "-sOutputFile=OUT", "in.pdf"},
		},
		{
			name:  "pages 3 to 7",
			pages: &PageRange{Start: 3, Count: 5},
			want:  []string{"-sDEVICE=pdfwrite", "-dNOPAUSE", "-dBATCH", "-dSAFER", "-sOutputFile=OUT", "-dFirstPage=3", "-dLastPage=7", "in.pdf"},
		},
		{
			name:  "single page",
			pages: &PageRange{Start: 1, Count: 1},
			want:  []string{"-sDEVICE=pdfwrite", "-dNOPAUSE", "-dBATCH", "-dSAFER", "-sOutputFile=OUT", "-dFirstPage=1", "-dLastPage=1", "in.pdf"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "out.pdf")
			r := &fakeRunner{writeOutput: true}
			tc := NewWithRunner(r)

			got, err := tc.ToPDF(context.Background(), "in.pdf", out, tt.pages)
			require.NoError(t, err)
			assert.Same(t, tc, got)

			want := make([]string, len(tt.want))
			for i, a := range tt.want {
				if a == "-sOutputFile=OUT" {
					a = "-sOutputFile=" + out
				}
				want[i] = a
			}
			assert.Equal(t, want, r.lastCall(t))
		})
	}
}

func TestPDFArgsPageRangeProperty(t *testing.T) {
	for start := 1; start <= 20; start++ {
		for count := 1; count <= 20; count++ {
			args, err := PDFArgs("in.pdf", "out.pdf", &PageRange{Start: start, Count: count})
			require.NoError(t, err)
			require.Len(t, args, 8)
			first, last := args[5], args[6]
			var s, l int
			_, err = fmt.Sscanf(first, "-dFirstPage=%d", &s)
			require.NoError(t, err)
			_, err = fmt.Sscanf(last, "-dLastPage=%d", &l)
			require.NoError(t, err)
			assert.Equal(t, start, s)
			assert.Equal(t, start+count-1, l)
			assert.GreaterOrEqual(t, l, s)
			assert.Equal(t, "in.pdf", args[len(args)-1])
		}
	}
}

func TestPDFArgsWithoutRangeHasNoPageFlags(t *testing.T) {
	args, err := PDFArgs("in.pdf", "out.pdf", nil)
	require.NoError(t, err)
	for _, a := range args {
		assert.NotContains(t, a, "FirstPage")
		assert.NotContains(t, a, "LastPage")
	}
}

func TestExecutionFailure(t *testing.T) {
	ops := map[string]func(*Transcoder, string) error{
		"image": func(tc *Transcoder, dir string) error {
			_, err := tc.ToImage(context.Background(), "in.pdf", filepath.Join(dir, "out.png"), ImageOptions{})
			return err
		},
		"pdf": func(tc *Transcoder, dir string) error {
			_, err := tc.ToPDF(context.Background(), "in.pdf", filepath.Join(dir, "out.pdf"), nil)
			return err
		},
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			cause := execFailure(1)
			tc := NewWithRunner(&fakeRunner{err: cause})

			err := op(tc, t.TempDir())
			require.Error(t, err)

			var tErr *Error
			require.ErrorAs(t, err, &tErr)
			assert.Equal(t, KindExecutionFailure, tErr.Kind)
			assert.Equal(t, name, tErr.Op)
			assert.ErrorIs(t, err, cause)
			assert.Equal(t, 1, tErr.Code())
			assert.Contains(t, err.Error(), "Unrecoverable error")
			assert.True(t, IsKind(err, KindExecutionFailure))
		})
	}
}

func TestMissingOutputAsymmetry(t *testing.T) {
	dir := t.TempDir()
	r := &fakeRunner{} // succeeds without writing anything
	tc := NewWithRunner(r)

	got, err := tc.ToImage(context.Background(), "in.pdf", filepath.Join(dir, "out.png"), ImageOptions{})
	require.NoError(t, err, "ToImage must not check the destination")
	assert.Same(t, tc, got)

	_, err = tc.ToPDF(context.Background(), "in.pdf", filepath.Join(dir, "out.pdf"), nil)
	require.Error(t, err)
	var tErr *Error
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, KindMissingOutput, tErr.Kind)
	assert.Nil(t, errors.Unwrap(err), "missing output carries no cause")
	assert.Equal(t, 0, tErr.Code())
	assert.Equal(t, "ghostscript was unable to transcode to PDF", err.Error())
}

func TestToPDFResolvesAgainstWorkDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "out.pdf"), []byte("%PDF"), 0o644))

	tc := NewWithRunner(&fakeRunner{})
	tc.cfg.WorkDir = dir

	_, err := tc.ToPDF(context.Background(), "in.pdf", "out.pdf", nil)
	require.NoError(t, err)
}

func TestInvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		call func(*Transcoder) error
	}{
		{
			name: "negative resolution",
			call: func(tc *Transcoder) error {
				_, err := tc.ToImage(context.Background(), "in.pdf", "out.png", ImageOptions{Resolution: -1})
				return err
			},
		},
		{
			name: "empty input",
			call: func(tc *Transcoder) error {
				_, err := tc.ToImage(context.Background(), "", "out.png", ImageOptions{})
				return err
			},
		},
		{
			name: "empty destination",
			call: func(tc *Transcoder) error {
				_, err := tc.ToPDF(context.Background(), "in.pdf", "", nil)
				return err
			},
		},
		{
			name: "zero page count",
			call: func(tc *Transcoder) error {
				_, err := tc.ToPDF(context.Background(), "in.pdf", "out.pdf", &PageRange{Start: 1})
				return err
			},
		},
		{
			name: "negative start page",
			call: func(tc *Transcoder) error {
				_, err := tc.ToPDF(context.Background(), "in.pdf", "out.pdf", &PageRange{Start: -2, Count: 3})
				return err
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRunner{}
			err := tt.call(NewWithRunner(r))
			require.Error(t, err)
			assert.True(t, IsKind(err, KindInvalidArgument), "got %v", err)
			assert.Empty(t, r.calls, "process must not start")
		})
	}
}

func TestNewUnknownBinary(t *testing.T) {
	_, err := New(types.TranscoderConfig{Binaries: []string{"nonexistent-binary"}}, nil)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindConfiguration))
	assert.ErrorIs(t, err, binary.ErrNotFound)
	assert.Contains(t, err.Error(), "nonexistent-binary")
}

func TestNewResolvesCandidate(t *testing.T) {
	dir := t.TempDir()
	fake := filepath.Join(dir, "gs-fake")
	require.NoError(t, os.WriteFile(fake, []byte("#!/bin/sh\nexit 0\n"), 0o755))

	tc, err := New(types.TranscoderConfig{Binaries: []string{"nonexistent-binary", fake}}, nil)
	require.NoError(t, err)
	assert.Equal(t, fake, tc.BinaryPath())
	assert.Equal(t, []string{"nonexistent-binary", fake}, tc.Config().Binaries)
}

func TestChaining(t *testing.T) {
	dir := t.TempDir()
	r := &fakeRunner{writeOutput: true}
	tc := NewWithRunner(r)

	got, err := tc.ToImage(context.Background(), "in.pdf", filepath.Join(dir, "a.png"), ImageOptions{})
	require.NoError(t, err)
	got, err = got.ToPDF(context.Background(), "in.pdf", filepath.Join(dir, "a.pdf"), &PageRange{Start: 2, Count: 2})
	require.NoError(t, err)
	assert.Same(t, tc, got)
	assert.Len(t, r.calls, 2)
}

func TestImageExtension(t *testing.T) {
	tests := map[string]string{
		"png16m":   ".png",
		"pngalpha": ".png",
		"jpeg":     ".jpg",
		"jpeggray": ".jpg",
		"tiff24nc": ".tif",
		"bmp16m":   ".bmp",
		"pdfwrite": ".pdf",
		"pxlcolor": ".img",
	}
	for device, want := range tests {
		assert.Equal(t, want, ImageExtension(device), device)
	}
}

func TestNilRunner(t *testing.T) {
	tc := NewWithRunner(nil)
	assert.Empty(t, tc.BinaryPath())

	_, err := tc.ToImage(context.Background(), "in.pdf", "out.png", ImageOptions{})
	assert.True(t, IsKind(err, KindConfiguration), "got %v", err)

	_, err = tc.ToPDF(context.Background(), "in.pdf", "out.pdf", nil)
	assert.True(t, IsKind(err, KindConfiguration), "got %v", err)
}

func TestConcurrentConversions(t *testing.T) {
	dir := t.TempDir()
	r := &fakeRunner{writeOutput: true}
	tc := NewWithRunner(r)

	const n = 16
	var wg sync.WaitGroup
	errs := make(chan error, 2*n)
	for i := range n {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := tc.ToPDF(context.Background(), "in.pdf", filepath.Join(dir, fmt.Sprintf("out-%d.pdf", i)), &PageRange{Start: i + 1, Count: 1})
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := tc.ToImage(context.Background(), "in.pdf", filepath.Join(dir, fmt.Sprintf("out-%d.png", i)), ImageOptions{Resolution: 72 + i})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	require.Len(t, r.calls, 2*n)

	seen := make(map[string]bool)
	for _, call := range r.calls {
		seen[strings.Join(call, " ")] = true
	}
	assert.Len(t, seen, 2*n, "each call keeps its own argument vector")
}
