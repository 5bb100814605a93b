package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/gs-transcoder/internal/batch"
	"github.com/pdiddy/gs-transcoder/internal/transcoder"
	"github.com/pdiddy/gs-transcoder/pkg/types"
)

var imageCmd = &cobra.Command{
	Use:   "image <input> <output>",
	Short: "Render a document to a raster image",
	Long: `Image renders the input document to a raster image with the chosen
Ghostscript device (png16m by default, jpeg for JPEG). Multi-page documents
need a %d in the output name, for example page-%03d.png; otherwise each page
overwrites the previous one.`,
	Args: cobra.ExactArgs(2),
	RunE: runImage,
}

func init() {
	imageCmd.Flags().Int("resolution", transcoder.DefaultResolution, "sampling resolution in DPI")
	imageCmd.Flags().String("device", transcoder.DefaultImageDevice, "Ghostscript output device (png16m, jpeg, tiff24nc, ...)")
	imageCmd.Flags().Bool("dry-run", false, "print the Ghostscript command instead of running it")

	rootCmd.AddCommand(imageCmd)
}

func runImage(cmd *cobra.Command, args []string) error {
	input, output := args[0], args[1]
	resolution, _ := cmd.Flags().GetInt("resolution")
	device, _ := cmd.Flags().GetString("device")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	if resolution <= 0 {
		return fmt.Errorf("--resolution must be positive, got %d", resolution)
	}
	opts := transcoder.ImageOptions{Resolution: resolution, Device: device}

	if dryRun {
		gsArgs, err := transcoder.ImageArgs(input, output, opts)
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
		Operation:  types.OpImage,
		Input:      input,
		Output:     output,
		Device:     device,
		Resolution: resolution,
	}
	err = batch.Track(cmd.Context(), rec, run, cmd.ErrOrStderr(), func() error {
		_, err := t.ToImage(cmd.Context(), input, output, opts)
		return err
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "converted: %s -> %s\n", input, output)
	return nil
}

// printCommand writes the command line that would be run, using the first
// configured binary candidate.
func printCommand(cmd *cobra.Command, gsArgs []string) {
	bin := types.DefaultBinary
	if len(appConfig.GS.Binaries) > 0 {
		bin = appConfig.GS.Binaries[0]
	}
	fmt.Fprintln(cmd.OutOrStdout(), bin+" "+strings.Join(gsArgs, " "))
}
