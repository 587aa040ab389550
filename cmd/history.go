package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"auditor/internal/audit"
	"auditor/internal/report"
	"auditor/internal/sanitize"
	"auditor/internal/session"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse stored audits",
	}
	cmd.AddCommand(newHistoryListCmd(a), newHistoryShowCmd(a))
	return cmd
}

func newHistoryListCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored audits, newest order as returned by the backend",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format = strings.ToLower(strings.TrimSpace(format))
			if format != "text" && format != "json" {
				return fmt.Errorf("unsupported format %q (use text or json)", format)
			}

			list := session.NewHistoryList(a.sessionOptions())
			defer list.Close()
			view := list.Load(cmd.Context(), a.client)

			if format == "json" {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(view.Projects)
			}
			if view.Display == session.DisplayEmpty {
				_, err := fmt.Fprintln(a.stdout, session.EmptyHistoryMessage)
				return err
			}
			return printProjects(a, view.Projects)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text or json")
	return cmd
}

func printProjects(a *app, projects []audit.StoredProject) error {
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPROJECT\tLEVEL\tSCORE\tDATE")
	for _, p := range projects {
		name := sanitize.Inline(p.Name)
		if name == "" {
			name = "-"
		}
		level := sanitize.Inline(p.RiskLevel)
		if level == "" {
			level = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", sanitize.Inline(p.ID), name, level, p.RiskScore, audit.FormatDate(p.CreatedAt, a.cfg.Locale))
	}
	return tw.Flush()
}

func newHistoryShowCmd(a *app) *cobra.Command {
	var export exportFlags
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one stored audit report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.resolve()
			if err != nil {
				return err
			}
			project, err := loadProject(a, cmd, args[0])
			if err != nil {
				return err
			}

			opts := report.Options{Locale: a.cfg.Locale}
			if export.out != "" {
				if err := report.WriteProject(export.out, format, project, opts); err != nil {
					return err
				}
				a.logger.Info("project exported", zap.String("id", project.ID), zap.String("path", export.out))
				_, err := fmt.Fprintf(a.stdout, "Wrote %s report to %s\n", format, export.out)
				return err
			}
			return report.RenderProject(a.stdout, format, project, opts)
		},
	}
	export.register(cmd)
	return cmd
}

// loadProject runs one detail load. Absence and fetch failures both surface as not found.
func loadProject(a *app, cmd *cobra.Command, id string) (audit.StoredProject, error) {
	detail := session.NewHistoryDetail(id, a.sessionOptions())
	defer detail.Close()
	view := detail.Load(cmd.Context(), a.client)
	if view.State != session.DetailLoaded {
		return audit.StoredProject{}, errors.New(session.NotFoundMessage)
	}
	return view.Project, nil
}
