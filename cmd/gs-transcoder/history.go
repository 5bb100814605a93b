package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/gs-transcoder/internal/history"
	"github.com/pdiddy/gs-transcoder/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded conversions",
	Long: `History lists past Ghostscript runs, newest first. It requires a history
database, set with --history or history.path in the config file.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 0, "maximum number of runs (default history.max_results or 20)")
	historyCmd.Flags().String("format", "table", "output format: table, yaml, or json")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if !appConfig.History.Enabled() {
		return fmt.Errorf("no history database configured (set --history or history.path)")
	}
	limit, _ := cmd.Flags().GetInt("limit")
	format, _ := cmd.Flags().GetString("format")

	s, err := history.Open(appConfig.History)
	if err != nil {
		return err
	}
	defer s.Close()

	if format != "table" {
		return s.Export(cmd.Context(), cmd.OutOrStdout(), history.Format(format), limit)
	}

	runs, err := s.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tOP\tSTATUS\tDURATION\tINPUT\tOUTPUT\tDETAIL")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Operation, r.Status, r.Duration, r.Input, r.Output, runDetail(r))
	}
	return tw.Flush()
}

func runDetail(r types.Run) string {
	if r.Status == types.RunFailed {
		return r.Error
	}
	switch {
	case r.Operation == types.OpImage:
		return fmt.Sprintf("%s @ %d dpi", r.Device, r.Resolution)
	case r.FirstPage > 0:
		return fmt.Sprintf("pages %d-%d", r.FirstPage, r.LastPage)
	default:
		return "all pages"
	}
}
