package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cptaffe/acme-brackets"
	"github.com/spf13/cobra"
)

func newScanCmd(opts *options) *cobra.Command {
	var asJSON, timing bool
	cmd := &cobra.Command{
		Use:   "scan FILE",
		Short: "List every bracket with its level and partner",
		Long: `List every bracket in FILE that takes part in nesting, with its kind,
nesting level, color slot and the offset of its partner (-1 if unmatched).

Examples:
  # Scan a Go file
  brackets scan main.go

  # Treat a file as plain text, ignoring angle brackets
  brackets scan --lang text notes.txt

  # How long the scan took, on stderr
  brackets scan --time main.go

  # Machine-readable output
  brackets scan --json main.go`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := opts.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			marks, took := brackets.Measure(func() []brackets.Mark { return d.marks(cmd.Context()) })
			if timing {
				fmt.Fprintf(cmd.ErrOrStderr(), "scanned %d brackets in %s\n", len(marks), took)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), marks)
			}
			return writeMarks(cmd.OutOrStdout(), marks)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print marks as JSON")
	cmd.Flags().BoolVar(&timing, "time", false, "report scan time on stderr")
	return cmd
}

func writeMarks(w io.Writer, marks []brackets.Mark) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "OFFSET\tRUNE\tKIND\tLEVEL\tCOLOR\tMATCH")
	for _, m := range marks {
		fmt.Fprintf(tw, "%d\t%c\t%s\t%d\t%d\t%d\n",
			m.Offset, m.Rune(), m.Kind, m.Level, m.ColorIndex(), m.Match)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
