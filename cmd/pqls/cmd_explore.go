package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/pqls/ui"
)

func newExploreCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "explore [file]",
		Short: "Type an expression and watch scope and completions update",
		Long: `Open an interactive prompt that inspects the expression under the cursor
as you type. Tab accepts the highlighted completion; the arrow keys move
between completions.

A file, when given, is loaded into the prompt with its line breaks folded
into spaces.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.project()
			if err != nil {
				return err
			}
			var text string
			if len(args) > 0 {
				text, err = readSource(cmd, args[0])
				if err != nil {
					return err
				}
			}
			return ui.RunExplorer(cmd.Context(), p.Config.Settings(), text)
		},
	}
}
