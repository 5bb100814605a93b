package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/gs-transcoder/internal/batch"
	"github.com/pdiddy/gs-transcoder/internal/transcoder"
	"github.com/pdiddy/gs-transcoder/pkg/types"
)

var pdfCmd = &cobra.Command{
	Use:   "pdf <input> <output>",
	Short: "Rewrite a document as a PDF, optionally restricted to a page range",
	Long: `PDF rewrites the input document through Ghostscript's pdfwrite device.
With --first-page and --page-count only that inclusive range of 1-based pages
is kept. The command fails if Ghostscript exits without writing the output.`,
	Args: cobra.ExactArgs(2),
	RunE: runPDF,
}

func init() {
	pdfCmd.Flags().Int("first-page", 0, "first page to keep (1-based)")
	pdfCmd.Flags().Int("page-count", 0, "number of pages to keep")
	pdfCmd.Flags().Bool("dry-run", false, "print the Ghostscript command instead of running it")
	pdfCmd.MarkFlagsRequiredTogether("first-page", "page-count")

	rootCmd.AddCommand(pdfCmd)
}

func runPDF(cmd *cobra.Command, args []string) error {
	input, output := args[0], args[1]
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	var pages *transcoder.PageRange
	if cmd.Flags().Changed("first-page") {
		first, _ := cmd.Flags().GetInt("first-page")
		count, _ := cmd.Flags().GetInt("page-count")
		if first <= 0 || count <= 0 {
			return fmt.Errorf("--first-page and --page-count must be positive, got %d and %d", first, count)
		}
		pages = &transcoder.PageRange{Start: first, Count: count}
	}

	if dryRun {
		gsArgs, err := transcoder.PDFArgs(input, output, pages)
		if err != nil {
			return err
		}
		printCommand(cmd, gsArgs)
		return nil
	}

	t, err := newTranscoder()
	if err != nil {
		return err
	}
	rec, closeRec, err := openRecorder()
	if err != nil {
		return err
	}
	defer closeRec()

	run := types.Run{
		Operation: types.OpPDF,
		Input:     input,
		Output:    output,
	}
	if pages != nil {
		run.FirstPage, run.LastPage = pages.Start, pages.Last()
	}
	err = batch.Track(cmd.Context(), rec, run, cmd.ErrOrStderr(), func() error {
		_, err := t.ToPDF(cmd.Context(), input, output, pages)
		return err
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "converted: %s -> %s\n", input, output)
	return nil
}
