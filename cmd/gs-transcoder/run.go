package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/gs-transcoder/internal/batch"
	"github.com/pdiddy/gs-transcoder/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run <manifest.yaml>",
	Short: "Execute the conversions listed in a YAML manifest",
	Long: `Run reads a manifest of image and pdf jobs and executes them in order.
A failing job does not stop the remaining ones. Example manifest:

  jobs:
    - op: image
      input: scans/letter.pdf
      output: out/letter-%03d.jpg
      device: jpeg
      resolution: 300
    - op: pdf
      input: scans/report.pdf
      output: out/report-p3-7.pdf
      first_page: 3
      page_count: 5

Relative paths are resolved against the manifest's directory. With --init,
run writes this example to the given path instead of executing it.`,
	Args: cobra.ExactArgs(1),
	RunE: runManifest,
}

func init() {
	runCmd.Flags().Bool("init", false, "write a sample manifest to the path and exit")

	rootCmd.AddCommand(runCmd)
}

// sampleManifest is the scaffold written by run --init.
func sampleManifest() *batch.Manifest {
	return &batch.Manifest{Jobs: []types.Job{
		{Op: types.OpImage, Input: "scans/letter.pdf", Output: "out/letter-%03d.jpg", Device: "jpeg", Resolution: 300},
		{Op: types.OpPDF, Input: "scans/report.pdf", Output: "out/report-p3-7.pdf", FirstPage: 3, PageCount: 5},
	}}
}

func runManifest(cmd *cobra.Command, args []string) error {
	if scaffold, _ := cmd.Flags().GetBool("init"); scaffold {
		if _, err := os.Stat(args[0]); err == nil {
			return fmt.Errorf("%s already exists", args[0])
		}
		if err := batch.WriteManifest(args[0], sampleManifest()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample manifest to %s\n", args[0])
		return nil
	}

	m, err := batch.LoadManifest(args[0])
	if err != nil {
		return err
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

	result := m.Execute(cmd.Context(), t, cmd.OutOrStdout(), rec)
	if result.HasFailures() {
		return fmt.Errorf("%d job(s) failed", result.Failed)
	}
	return nil
}
