// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/pagetree"

	"github.com/pdiddy/gs-transcoder/internal/transcoder"
	"github.com/pdiddy/gs-transcoder/pkg/types"
)

// countPages reads the page count from the document's page tree. Tests
// override it to avoid building real PDF files.
var countPages = func(path string) (int, error) {
	r, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer r.Close()

	n, err := pagetree.NumPages(r)
	if err != nil {
		return 0, fmt.Errorf("reading page tree of %s: %w", path, err)
	}
	return n, nil
}

// Split writes input as consecutive PDFs of at most chunk pages each, named
// outDir/<base>-p<first>-<last>.pdf. Chunks that already exist are skipped.
func Split(ctx context.Context, t *transcoder.Transcoder, input, outDir string, chunk int, w io.Writer, rec Recorder) (Result, error) {
	if chunk <= 0 {
		return Result{}, fmt.Errorf("chunk size must be positive, got %d", chunk)
	}

	total, err := countPages(input)
	if err != nil {
		return Result{}, err
	}
	if total == 0 {
		return Result{}, fmt.Errorf("%s has no pages", input)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("creating %s: %w", outDir, err)
	}

	base := baseName(input)
	var result Result
	for start := 1; start <= total; start += chunk {
		pages := transcoder.PageRange{Start: start, Count: min(chunk, total-start+1)}
		result.add(splitChunk(ctx, t, input, base, outDir, pages, w, rec))
	}
	result.summarize(w)
	return result, nil
}

func splitChunk(ctx context.Context, t *transcoder.Transcoder, input, base, outDir string, pages transcoder.PageRange, w io.Writer, rec Recorder) status {
	name := fmt.Sprintf("%s-p%d-%d.pdf", base, pages.Start, pages.Last())
	dest := filepath.Join(outDir, name)

	if _, err := os.Stat(dest); err == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", name)
		return statusSkipped
	}

	run := types.Run{
		Operation: types.OpPDF,
		Input:     input,
		Output:    dest,
		FirstPage: pages.Start,
		LastPage:  pages.Last(),
	}
	err := track(ctx, rec, &run, w, func() error {
		_, err := t.ToPDF(ctx, input, dest, &pages)
		return err
	})
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", name, err)
		return statusFailed
	}

	fmt.Fprintf(w, "converted: %s\n", name)
	return statusConverted
}
