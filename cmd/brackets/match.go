package main

import (
	"fmt"
	"strconv"

	"github.com/cptaffe/acme-brackets"
	"github.com/spf13/cobra"
)

func newMatchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "match FILE OFFSET",
		Short: "Show the bracket at OFFSET and its partner",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			off, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("OFFSET: %w", err)
			}
			d, err := opts.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !d.safe {
				fmt.Fprintln(out, "document too large")
				return nil
			}

			cache := brackets.NewCache[string, int](nil)
			m, ok := cache.At(d.path, 0, d.text, off, d.admit)
			if !ok {
				fmt.Fprintf(out, "no bracket at %d\n", off)
				return nil
			}
			if !m.Matched() {
				fmt.Fprintf(out, "%c at %d (%s, level %d) is unmatched\n", m.Rune(), m.Offset, m.Kind, m.Level)
				return nil
			}
			p, _ := cache.At(d.path, 0, d.text, m.Match, d.admit)
			fmt.Fprintf(out, "%c at %d matches %c at %d (%s, level %d)\n",
				m.Rune(), m.Offset, p.Rune(), p.Offset, m.Kind, m.Level)
			return nil
		},
	}
}
