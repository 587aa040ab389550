package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"auditor/internal/tui"
	"auditor/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web front end",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr := strings.TrimSpace(listen)
			if addr == "" {
				addr = a.cfg.ListenAddr
			}
			srv, err := web.New(web.Options{
				Backend:  a.client,
				Session:  a.sessionOptions(),
				Locale:   a.cfg.Locale,
				Logger:   a.logger,
				Gatherer: a.registry,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Serving on http://%s (backend %s)\n", addr, a.client.BaseURL())
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from config listen_addr)")
	return cmd
}

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the terminal front end",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runTUI(cmd)
		},
	}
}

func (a *app) runTUI(cmd *cobra.Command) error {
	return tui.Run(tui.Options{
		Context: cmd.Context(),
		Backend: a.client,
		Session: a.sessionOptions(),
		Locale:  a.cfg.Locale,
	})
}
