package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/pqls/format"
	"github.com/dhamidi/pqls/pq"
	"github.com/dhamidi/pqls/pq/parser"
)

func newInspectCmd(opts *options) *cobra.Command {
	var outputFormat string
	var line, column int

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show scope and completions at a position",
		Long: `Inspect a file at a position: the identifiers in scope, their types,
the completions the position allows and the function call it sits in.

Lines and columns start at 1. Columns count bytes.

Examples:
  pqls inspect query.pq -l 3 --column 12
  echo 'let a = 1 in ' | pqls inspect - --column 14`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if line < 1 || column < 1 {
				return fmt.Errorf("line and column start at 1, got %d:%d", line, column)
			}
			p, err := opts.project()
			if err != nil {
				return err
			}
			text, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			enc, err := format.New(outputFormat, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			pos := parser.Position{Line: line - 1, Column: column - 1}
			lp, in, err := pq.TryLexParseInspect(cmd.Context(), p.Config.Settings(), text, pos)
			var lexErr *parser.LexError
			if errors.As(err, &lexErr) {
				if err := enc.EncodeDiagnostics(args[0], format.DiagnosticsFor(nil, err)); err != nil {
					return fmt.Errorf("encode: %w", err)
				}
				return fmt.Errorf("lex %s: %w", args[0], err)
			}
			if err != nil {
				return fmt.Errorf("inspect %s: %w", args[0], err)
			}
			if err := enc.EncodeInspection(lp, in); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "output format (json, text, color)")
	cmd.Flags().IntVarP(&line, "line", "l", 1, "line of the position")
	cmd.Flags().IntVar(&column, "column", 1, "column of the position")

	return cmd
}
