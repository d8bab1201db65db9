package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dhamidi/pqls/format"
	"github.com/dhamidi/pqls/pq/codebase"
)

func newScanCmd(opts *options) *cobra.Command {
	var timeout time.Duration
	var outputFormat string
	var watch bool

	cmd := &cobra.Command{
		Use:   "scan [directory]",
		Short: "Check every Power Query file under a directory",
		Long: `Lex and parse every Power Query file under a directory and print the
problems found in each. Hidden directories are skipped.

With --watch the directory is polled for changes and files are checked
again as they are saved.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolve directory: %w", err)
			}
			p, err := opts.projectFor(absDir)
			if err != nil {
				return err
			}
			enc, err := format.New(outputFormat, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			cbOpts := append(p.Options(), codebase.WithFileTimeout(timeout))
			cb := codebase.New(absDir, cbOpts...)
			ctx := cmd.Context()

			if watch {
				interval, err := p.Config.Interval()
				if err != nil {
					return err
				}
				watcher := codebase.NewFileWatcher(cb, interval)
				watcher.OnChange = func(path string, removed bool) {
					if removed {
						fmt.Fprintf(cmd.OutOrStdout(), "%s\tremoved\n", relPath(absDir, path))
						return
					}
					if _, err := report(cmd, enc, cb, absDir, path); err != nil {
						log.Errorf("report %s: %s", path, err)
					}
				}
				watcher.Start(ctx)
				defer watcher.Stop()
				fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s every %s\n", absDir, interval)
				<-ctx.Done()
				return nil
			}

			scanErr := cb.ScanAll(ctx)
			if ctx.Err() != nil {
				return scanErr
			}

			failed := 0
			for _, path := range cb.Paths() {
				bad, err := report(cmd, enc, cb, absDir, path)
				if err != nil {
					return err
				}
				if bad {
					failed++
				}
			}
			if scanErr != nil {
				return scanErr
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files have errors", failed, len(cb.Paths()))
			}
			return nil
		},
	}

	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 10*time.Second, "timeout per file")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "output format (json, text, color)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep watching the directory for changes")

	return cmd
}

// report prints the diagnostics of one file and reports whether any of
// them is an error.
func report(cmd *cobra.Command, enc format.Encoder, cb *codebase.Codebase, root, path string) (bool, error) {
	diags, err := cb.Diagnostics(cmd.Context(), path)
	if err != nil {
		return false, err
	}
	if err := enc.EncodeDiagnostics(relPath(root, path), diags); err != nil {
		return false, fmt.Errorf("encode: %w", err)
	}
	for _, d := range diags {
		if d.Severity == format.SeverityError {
			return true, nil
		}
	}
	return false, nil
}

func relPath(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return rel
	}
	return path
}
