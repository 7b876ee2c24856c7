package main

import (
	"fmt"
	"strconv"

	"github.com/cptaffe/acme-brackets"
	"github.com/spf13/cobra"
)

func newEncloseCmd(opts *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "enclose FILE START [END]",
		Short: "Show the bracket pairs enclosing a selection",
		Long: `Show the bracket pairs whose span covers the selection [START, END),
outermost first, marking the innermost one.  With END omitted, START is a
caret and the smallest pair strictly around it is shown.  An explicit empty
selection (END equal to START) is enclosed by nothing.

Examples:
  # Pairs around runes 120 through 134
  brackets enclose main.go 120 135

  # The block the caret at rune 120 sits in
  brackets enclose main.go 120`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("START: %w", err)
			}
			end, caret := start, len(args) == 2
			if !caret {
				if end, err = strconv.Atoi(args[2]); err != nil {
					return fmt.Errorf("END: %w", err)
				}
			}

			d, err := opts.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			marks := d.marks(cmd.Context())

			pairs, _ := brackets.Timed(cmd.Context(), d.gov, brackets.OpSelection, func() []brackets.Pair {
				if caret {
					if p, ok := brackets.InnermostEnclosingPair(marks, start); ok {
						return []brackets.Pair{p}
					}
					return nil
				}
				return brackets.EnclosingPairs(marks, start, end)
			})
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), pairs)
			}

			out := cmd.OutOrStdout()
			if len(pairs) == 0 {
				fmt.Fprintln(out, "no enclosing pair")
				return nil
			}
			inner, _ := brackets.Innermost(pairs)
			for _, p := range pairs {
				flag := ""
				if p == inner {
					flag = " innermost"
				}
				fmt.Fprintf(out, "%s %d-%d level %d interior [%d,%d)%s\n",
					p.Kind, p.Open, p.Close, p.Level, p.InnerStart, p.InnerEnd, flag)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print pairs as JSON")
	return cmd
}
