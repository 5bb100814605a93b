package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/gs-transcoder/internal/batch"
)

var splitCmd = &cobra.Command{
	Use:   "split <input>",
	Short: "Split a PDF into documents of at most N pages",
	Long: `Split counts the pages of input and writes consecutive page ranges as
separate PDFs named <name>-p<first>-<last>.pdf under --out-dir.`,
	Args: cobra.ExactArgs(1),
	RunE: runSplit,
}

func init() {
	splitCmd.Flags().String("out-dir", "", "directory for the split documents")
	splitCmd.Flags().Int("pages", 1, "maximum number of pages per document")
	_ = splitCmd.MarkFlagRequired("out-dir")

	rootCmd.AddCommand(splitCmd)
}

func runSplit(cmd *cobra.Command, args []string) error {
	outDir, _ := cmd.Flags().GetString("out-dir")
	pages, _ := cmd.Flags().GetInt("pages")

	t, err := newTranscoder()
	if err != nil {
		return err
	}
	rec, closeRec, err := openRecorder()
	if err != nil {
		return err
	}
	defer closeRec()

	result, err := batch.Split(cmd.Context(), t, args[0], outDir, pages, cmd.OutOrStdout(), rec)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d chunk(s) failed conversion", result.Failed)
	}
	return nil
}
