package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"auditor/internal/badge"
	"auditor/internal/safefile"
)

func newBadgeCmd(a *app) *cobra.Command {
	var (
		svg     bool
		shields bool
		label   string
		out     string
	)
	cmd := &cobra.Command{
		Use:   "badge <id>",
		Short: "Render a stored audit's score as an SVG gauge or a shields.io endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if svg && shields {
				return errors.New("use either --svg or --shields, not both")
			}
			project, err := loadProject(a, cmd, args[0])
			if err != nil {
				return err
			}
			r := project.Report()

			var data string
			if shields {
				data = badge.ShieldsJSON(label, r.RiskLevel, r.OverallRiskScore)
			} else {
				data = badge.RenderGaugeSVG(r.OverallRiskScore)
			}
			data += "\n"

			if out != "" {
				if err := safefile.WriteFileAtomic(out, []byte(data), safefile.PublicMode); err != nil {
					return err
				}
				_, err := fmt.Fprintf(a.stdout, "Wrote badge to %s\n", out)
				return err
			}
			_, err = fmt.Fprint(a.stdout, data)
			return err
		},
	}
	cmd.Flags().BoolVar(&svg, "svg", false, "emit an SVG score gauge (default)")
	cmd.Flags().BoolVar(&shields, "shields", false, "emit shields.io endpoint JSON")
	cmd.Flags().StringVar(&label, "label", "ethics risk", "badge label for --shields")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the badge to this file")
	return cmd
}
