// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package transcoder converts documents to raster images or PDFs by running
// Ghostscript with a fixed argument vector per operation.
package transcoder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/gs-transcoder/internal/binary"
	"github.com/pdiddy/gs-transcoder/pkg/types"
)

const (
	// DefaultResolution is the sampling resolution in DPI used when
	// ImageOptions.Resolution is zero.
	DefaultResolution = 200

	// DefaultImageDevice is the 24-bit color PNG device.
	DefaultImageDevice = "png16m"

	// pdfDevice is the Ghostscript PDF writer.
	pdfDevice = "pdfwrite"

	opImage = "image"
	opPDF   = "pdf"
)

// Runner executes the Ghostscript binary with an argument vector and returns
// its combined output. binary.Driver is the production implementation.
type Runner interface {
	Run(ctx context.Context, args []string) (string, error)
	Path() string
}

// ImageOptions controls raster output. Zero fields take the defaults.
type ImageOptions struct {
	// Resolution is the sampling resolution in DPI (default 200).
	Resolution int

	// Device is the Ghostscript output device, passed through uninterpreted
	// (default "png16m"; "jpeg" for JPEG).
	Device string
}

func (o ImageOptions) withDefaults() ImageOptions {
	if o.Resolution == 0 {
		o.Resolution = DefaultResolution
	}
	if o.Device == "" {
		o.Device = DefaultImageDevice
	}
	return o
}

// PageRange selects Count pages starting at the 1-based page Start.
type PageRange struct {
	Start int
	Count int
}

// Last returns the final page of the range, inclusive.
func (p PageRange) Last() int {
	return p.Start + p.Count - 1
}

// Transcoder drives one resolved Ghostscript binary. It holds no per-call
// state and is safe for concurrent use. It does not log; the binary layer
// logs each invocation.
type Transcoder struct {
	runner Runner
	cfg    types.TranscoderConfig
}

// New resolves the first available binary in cfg.Binaries (default ["gs"])
// and returns a Transcoder bound to it. logger is handed to the binary layer;
// nil disables logging.
func New(cfg types.TranscoderConfig, logger *zap.Logger) (*Transcoder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.WithDefaults()

	d, err := binary.Load(cfg.Binaries, cfg, logger)
	if err != nil {
		return nil, &Error{
			Kind: KindConfiguration,
			Op:   "create",
			Msg:  "no usable ghostscript binary",
			Err:  err,
		}
	}

	return &Transcoder{runner: d, cfg: cfg}, nil
}

// NewWithRunner returns a Transcoder that invokes r instead of resolving a
// binary from configuration. With a nil r every conversion fails with
// KindConfiguration.
func NewWithRunner(r Runner) *Transcoder {
	t := &Transcoder{runner: r}
	if r != nil {
		t.cfg.Binaries = []string{r.Path()}
	}
	return t
}

// BinaryPath returns the path of the Ghostscript executable in use, or ""
// when there is none.
func (t *Transcoder) BinaryPath() string {
	if t.runner == nil {
		return ""
	}
	return t.runner.Path()
}

// Config returns the configuration the Transcoder was created with.
func (t *Transcoder) Config() types.TranscoderConfig { return t.cfg }

// ToImage renders input to a raster image at destination. The destination is
// not checked after Ghostscript exits.
func (t *Transcoder) ToImage(ctx context.Context, input, destination string, opts ImageOptions) (*Transcoder, error) {
	args, err := ImageArgs(input, destination, opts)
	if err != nil {
		return nil, err
	}
	if err := t.checkRunner(opImage); err != nil {
		return nil, err
	}

	if _, err := t.runner.Run(ctx, args); err != nil {
		return nil, &Error{
			Kind: KindExecutionFailure,
			Op:   opImage,
			Msg:  "ghostscript was unable to transcode to image",
			Err:  err,
		}
	}
	return t, nil
}

// ToPDF rewrites input as a PDF at destination, restricted to pages when it
// is non-nil. Unlike ToImage, the destination must exist afterwards.
func (t *Transcoder) ToPDF(ctx context.Context, input, destination string, pages *PageRange) (*Transcoder, error) {
	args, err := PDFArgs(input, destination, pages)
	if err != nil {
		return nil, err
	}
	if err := t.checkRunner(opPDF); err != nil {
		return nil, err
	}

	if _, err := t.runner.Run(ctx, args); err != nil {
		return nil, &Error{
			Kind: KindExecutionFailure,
			Op:   opPDF,
			Msg:  "ghostscript was unable to transcode to PDF",
			Err:  err,
		}
	}

	if _, err := os.Stat(t.resolve(destination)); err != nil {
		return nil, &Error{
			Kind: KindMissingOutput,
			Op:   opPDF,
			Msg:  "ghostscript was unable to transcode to PDF",
		}
	}
	return t, nil
}

func (t *Transcoder) checkRunner(op string) error {
	if t.runner == nil {
		return &Error{Kind: KindConfiguration, Op: op, Msg: "no ghostscript runner"}
	}
	return nil
}

// resolve interprets a relative destination against the configured working
// directory, where Ghostscript wrote it.
func (t *Transcoder) resolve(path string) string {
	if t.cfg.WorkDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(t.cfg.WorkDir, path)
}

// ImageArgs returns the Ghostscript arguments ToImage runs with.
func ImageArgs(input, destination string, opts ImageOptions) ([]string, error) {
	if err := checkPaths(opImage, input, destination); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	if opts.Resolution < 0 {
		return nil, invalidArgument(opImage, "resolution must be positive, got %d", opts.Resolution)
	}

	return []string{
		"-sDEVICE=" + opts.Device,
		"-dNOPAUSE",
		"-dBATCH",
		"-dSAFER",
		"-r" + strconv.Itoa(opts.Resolution),
		"-sOutputFile=" + destination,
		input,
	}, nil
}

// PDFArgs returns the Ghostscript arguments ToPDF runs with.
func PDFArgs(input, destination string, pages *PageRange) ([]string, error) {
	if err := checkPaths(opPDF, input, destination); err != nil {
		return nil, err
	}

	args := []string{
		"-sDEVICE=" + pdfDevice,
		"-dNOPAUSE",
		"-dBATCH",
		"-dSAFER",
		"-sOutputFile=" + destination,
	}
	if pages != nil {
		if pages.Start <= 0 || pages.Count <= 0 {
			return nil, invalidArgument(opPDF, "page range must be positive, got start=%d count=%d", pages.Start, pages.Count)
		}
		args = append(args,
			fmt.Sprintf("-dFirstPage=%d", pages.Start),
			fmt.Sprintf("-dLastPage=%d", pages.Last()),
		)
	}
	return append(args, input), nil
}

func checkPaths(op, input, destination string) error {
	if input == "" {
		return invalidArgument(op, "input path is empty")
	}
	if destination == "" {
		return invalidArgument(op, "destination path is empty")
	}
	return nil
}

// ImageExtension returns the conventional file extension, with leading dot,
// for files written by a Ghostscript device.
func ImageExtension(device string) string {
	switch {
	case strings.HasPrefix(device, "png"):
		return ".png"
	case strings.HasPrefix(device, "jpeg"):
		return ".jpg"
	case strings.HasPrefix(device, "tiff"):
		return ".tif"
	case strings.HasPrefix(device, "bmp"):
		return ".bmp"
	case device == pdfDevice:
		return ".pdf"
	default:
		return ".img"
	}
}
