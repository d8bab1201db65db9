package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/pqls/project"

	_ "github.com/tliron/commonlog/simple"
)

const version = "0.1.0"

var log = commonlog.GetLogger("pqls")

// options holds the persistent flags shared by every command.
type options struct {
	verbose     int
	logFile     string
	config      string
	profile     string
	profilePath string

	stopProfile func()
}

// project loads the --config file, or the closest pqls.yaml above the
// working directory.
func (o *options) project() (*project.Project, error) {
	return o.projectFor(".")
}

func (o *options) projectFor(dir string) (*project.Project, error) {
	if o.config != "" {
		return project.LoadFile(o.config)
	}
	return project.LoadFrom(dir)
}

func (o *options) setup(cmd *cobra.Command) error {
	verbosity := o.verbose
	logFile := o.logFile
	if p, err := o.project(); err == nil {
		if !cmd.Flags().Changed("verbose") {
			if v, err := p.Config.Verbosity(); err == nil {
				verbosity = v
			}
		}
		if logFile == "" {
			logFile = p.Config.Log.File
		}
	}
	if logFile != "" {
		commonlog.Configure(verbosity, &logFile)
	} else {
		commonlog.Configure(verbosity, nil)
	}

	stop, err := startProfile(o.profile, o.profilePath)
	if err != nil {
		return err
	}
	o.stopProfile = stop
	return nil
}

func (o *options) teardown() {
	if o.stopProfile != nil {
		o.stopProfile()
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "pqls",
		Short:         "Power Query M lexer, parser and language server",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			opts.teardown()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&opts.verbose, "verbose", "v", "increase log verbosity")
	flags.StringVar(&opts.logFile, "log", "", "write logs to this file")
	flags.StringVarP(&opts.config, "config", "c", "", "path to "+project.FileName)
	flags.StringVar(&opts.profile, "profile", "", "profile mode ("+profileModeList()+")")
	flags.StringVar(&opts.profilePath, "profile-path", ".", "directory for profile output")

	rootCmd.AddCommand(newLexCmd(opts))
	rootCmd.AddCommand(newParseCmd(opts))
	rootCmd.AddCommand(newInspectCmd(opts))
	rootCmd.AddCommand(newScanCmd(opts))
	rootCmd.AddCommand(newLSPCmd(opts))
	rootCmd.AddCommand(newExploreCmd(opts))
	rootCmd.AddCommand(newUICmd(opts))
	rootCmd.AddCommand(newInitCmd())

	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "pqls:", err)
		os.Exit(1)
	}
}

// readSource reads a file, or standard input for "-".
func readSource(cmd *cobra.Command, path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
