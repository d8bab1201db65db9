package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/pqls/ui"
)

func newUICmd(opts *options) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Start the web UI server",
		Long: `Start a web UI listing the Power Query files of the project with their
problems, and a form for inspecting an expression at a position.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.project()
			if err != nil {
				return err
			}
			cb := p.Codebase()
			if err := cb.ScanAll(cmd.Context()); err != nil {
				log.Warningf("scan %s: %s", p.RootDir, err)
			}
			server, err := ui.NewServer(cb)
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}
			displayAddr := addr
			if strings.HasPrefix(addr, ":") {
				displayAddr = "localhost" + addr
			}
			fmt.Printf("Starting server at http://%s\n", displayAddr)
			return http.ListenAndServe(addr, server)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "address to listen on")

	return cmd
}
