package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/pqls/format"
	"github.com/dhamidi/pqls/pq"
	"github.com/dhamidi/pqls/pq/parser"
)

func newParseCmd(opts *options) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a file and dump the syntax tree",
		Long: `Parse a section document or expression and dump the syntax tree.

When parsing fails the partial tree is printed along with the error, and
the command exits with a non-zero status.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			lp, err := pq.TryLexParse(cmd.Context(), p.Config.Settings(), text)
			var lexErr *parser.LexError
			if errors.As(err, &lexErr) {
				if err := enc.EncodeDiagnostics(args[0], format.DiagnosticsFor(nil, err)); err != nil {
					return fmt.Errorf("encode: %w", err)
				}
				return fmt.Errorf("lex %s: %w", args[0], err)
			}
			if err != nil {
				return err
			}

			if err := enc.EncodeParse(lp); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			if lp.ParseErr != nil {
				return fmt.Errorf("parse %s: %w", args[0], lp.ParseErr)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "output format (json, text, color)")

	return cmd
}
