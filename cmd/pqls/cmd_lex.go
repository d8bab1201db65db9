package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/pqls/format"
	"github.com/dhamidi/pqls/pq/parser"
)

func newLexCmd(opts *options) *cobra.Command {
	var outputFormat string
	var snapshot bool

	cmd := &cobra.Command{
		Use:   "lex <file>",
		Short: "Tokenize a file and print the lexer state",
		Long: `Tokenize a file and print the lexer state line by line.

With --snapshot the lines are flattened into a token stream with the
comments set aside, as the parser sees it. A file with lexer errors has no
snapshot; its errors are printed instead.

Use - to read from standard input.`,
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

			settings := p.Config.Settings()
			state, err := parser.Lex(cmd.Context(), settings.Parser, text)
			if err != nil {
				return fmt.Errorf("lex %s: %w", args[0], err)
			}
			if !snapshot {
				if err := enc.EncodeState(state); err != nil {
					return fmt.Errorf("encode: %w", err)
				}
				return nil
			}

			snap, err := state.Snapshot()
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
			if err := enc.EncodeSnapshot(snap); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "output format (json, text, color)")
	cmd.Flags().BoolVarP(&snapshot, "snapshot", "s", false, "print the token stream the parser reads")

	return cmd
}
