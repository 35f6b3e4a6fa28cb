package main

import (
	"github.com/spf13/cobra"

	"github.com/lgbarn/pgn-scan/internal/chess"
	"github.com/lgbarn/pgn-scan/internal/output"
)

// dataOptions holds command-line options for the data command.
type dataOptions struct {
	format      string
	json        bool
	jsonArray   bool
	stripClocks bool
}

func newDataCommand(a *app) *cobra.Command {
	opts := &dataOptions{}

	cmd := &cobra.Command{
		Use:   "data [files...]",
		Short: "Print the records of PGN inputs",
		Long: `Print every record of the inputs, in order.

With no files, or "-", standard input is read. The pgn format writes each
record's text followed by a blank line, tags writes only the tag pairs and
json writes one object per line holding tags, flags and the record text.
With --json-array the json objects are collected into one document,
{"games": [...]}, written once every input has been read.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runData(cmd, args, a, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "pgn", "Output format (pgn|tags|json)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Shorthand for --format json")
	cmd.Flags().BoolVar(&opts.jsonArray, "json-array", false, "Write json output as one document instead of one object per line")
	cmd.Flags().BoolVar(&opts.stripClocks, "strip-clocks", false, "Remove [%clk] annotations from pgn output")

	return cmd
}

func runData(cmd *cobra.Command, args []string, a *app, opts *dataOptions) error {
	name := opts.format
	if opts.json {
		name = string(output.FormatJSON)
	}
	format, err := output.ParseFormat(name)
	if err != nil {
		return err
	}

	var writerOpts []output.Option
	if opts.stripClocks {
		writerOpts = append(writerOpts, output.WithStripClocks())
	}
	if format == output.FormatJSON && !opts.jsonArray {
		writerOpts = append(writerOpts, output.WithJSONLines())
	}
	w, err := output.New(a.stdout, format, writerOpts...)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		args = []string{"-"}
	}
	for _, name := range args {
		if err := dataFromInput(cmd, a, name, w); err != nil {
			w.Close() //nolint:errcheck,gosec // G104: already failing
			return err
		}
	}
	return w.Close()
}

func dataFromInput(cmd *cobra.Command, a *app, name string, w output.GameWriter) error {
	r, err := a.open(name)
	if err != nil {
		return err
	}
	defer r.Close() //nolint:errcheck

	return r.Each(cmd.Context(), func(g *chess.Game) error {
		return w.WriteGame(g)
	})
}
