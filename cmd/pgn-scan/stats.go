package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/lgbarn/pgn-scan/internal/search"
)

func newStatsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats [files...]",
		Short: "Summarize tempos and time controls",
		Long: `Count the games of the inputs by tempo and by the common lichess time
controls (blitz 3+0, 3+2, 5+3 and rapid 10+0, 10+5, 15+10), together with
how many carry clock and evaluation comments.

With no files, or "-", standard input is read.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, args, a)
		},
	}
}

func runStats(cmd *cobra.Command, args []string, a *app) error {
	if len(args) == 0 {
		args = []string{"-"}
	}

	summary := search.NewSummary()
	var bytesRead int64
	var refills uint64

	for _, name := range args {
		r, err := a.open(name)
		if err != nil {
			return err
		}
		err = search.Summarize(cmd.Context(), r, summary)
		bytesRead += r.BytesRead()
		refills += r.Refills()
		r.Close() //nolint:errcheck,gosec // G104: read-only input
		if err != nil {
			return err
		}
	}

	return printSummary(a.stdout, summary, bytesRead, refills)
}

// printSummary writes the summary as aligned columns.
func printSummary(w io.Writer, s *search.Summary, bytesRead int64, refills uint64) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "games\t%s\n", humanize.Comma(int64(s.Games)))
	fmt.Fprintf(tw, "with clocks\t%s\t%s\n", humanize.Comma(int64(s.WithClocks)), percent(s.WithClocks, s.Games))
	fmt.Fprintf(tw, "with evals\t%s\t%s\n", humanize.Comma(int64(s.WithEvals)), percent(s.WithEvals, s.Games))
	fmt.Fprintf(tw, "record bytes\t%s\n", humanize.Bytes(uint64(s.Bytes)))
	fmt.Fprintf(tw, "bytes read\t%s\t%s reads\n", humanize.Bytes(uint64(bytesRead)), humanize.Comma(int64(refills)))

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "tempo\tgames")
	for _, b := range s.Tempos() {
		fmt.Fprintf(tw, "%s\t%s\n", b.Label, humanize.Comma(int64(b.Count)))
	}

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "time control\tgames")
	for _, b := range s.TimeControlDistribution() {
		fmt.Fprintf(tw, "%s\t%s\n", b.Label, humanize.Comma(int64(b.Count)))
	}

	return tw.Flush()
}

func percent(n, total int) string {
	if total == 0 {
		return "-"
	}
	return humanize.FtoaWithDigits(100*float64(n)/float64(total), 1) + "%"
}
