package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/pqls/pq/codebase"
)

func newLSPCmd(opts *options) *cobra.Command {
	var tcpAddr string

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Start the Language Server Protocol server on standard input and output,
or on a TCP address with --tcp.

The server publishes lexer and parser errors as diagnostics and answers
completion and hover requests. Logs go to the --log file, never to
standard output.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.project()
			if err != nil {
				return err
			}
			server := codebase.NewLSPServer(version, codebase.WithSettings(p.Config.Settings()))
			if tcpAddr != "" {
				log.Noticef("listening on %s", tcpAddr)
				return server.RunTCP(tcpAddr)
			}
			return server.RunStdio()
		},
	}

	cmd.Flags().StringVar(&tcpAddr, "tcp", "", "listen on this address instead of stdio")

	return cmd
}
