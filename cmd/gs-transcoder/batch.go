package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/gs-transcoder/internal/batch"
	"github.com/pdiddy/gs-transcoder/internal/transcoder"
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Render every PDF in a directory to per-page images",
	Long: `Batch renders each PDF directly inside dir to images named
<name>-001.png, <name>-002.png, ... under --out-dir. Documents whose first
page image already exists are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().String("out-dir", "", "directory for rendered images")
	batchCmd.Flags().Int("resolution", transcoder.DefaultResolution, "sampling resolution in DPI")
	batchCmd.Flags().String("device", transcoder.DefaultImageDevice, "Ghostscript output device")
	_ = batchCmd.MarkFlagRequired("out-dir")

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	outDir, _ := cmd.Flags().GetString("out-dir")
	resolution, _ := cmd.Flags().GetInt("resolution")
	device, _ := cmd.Flags().GetString("device")
	if resolution <= 0 {
		return fmt.Errorf("--resolution must be positive, got %d", resolution)
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

	opts := transcoder.ImageOptions{Resolution: resolution, Device: device}
	result, err := batch.RasterizeDir(cmd.Context(), t, args[0], outDir, opts, cmd.OutOrStdout(), rec)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d document(s) failed conversion", result.Failed)
	}
	return nil
}
