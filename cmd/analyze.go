package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"auditor/internal/audit"
	"auditor/internal/report"
	"auditor/internal/session"
)

type exportFlags struct {
	format string
	out    string
}

func (f *exportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "output format: text, markdown, json, yaml or html (default from --out extension, else text)")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "write the report to this file instead of stdout")
}

func (f *exportFlags) resolve() (report.Format, error) {
	if strings.TrimSpace(f.format) == "" && f.out != "" {
		if guessed, ok := report.FormatForPath(f.out); ok {
			return guessed, nil
		}
	}
	return report.ParseFormat(f.format)
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		req             audit.AuditRequest
		descriptionFile string
		export          exportFlags
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Submit a project description and print its risk report",
		Example: `  auditor analyze --name "Face ID Kiosk" --industry Retail --description "Identifies shoppers by face"
  auditor analyze --description-file project.txt --out report.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if descriptionFile != "" {
				if cmd.Flags().Changed("description") {
					return errors.New("use either --description or --description-file, not both")
				}
				text, err := readDescription(descriptionFile, a.stdin)
				if err != nil {
					return err
				}
				req.Description = text
			}
			format, err := export.resolve()
			if err != nil {
				return err
			}

			sub := session.NewSubmission(a.sessionOptions())
			defer sub.Close()
			sub.SetRequest(req)

			view, ok := sub.Run(cmd.Context(), a.client)
			if !ok {
				return fmt.Errorf("a project description is required (--description or --description-file): %w", audit.ErrEmptyDescription)
			}
			if view.State == session.SubmitFailed {
				return errors.New(session.SubmitFailedMessage)
			}

			opts := report.Options{Locale: a.cfg.Locale}
			if export.out != "" {
				if err := report.WriteReport(export.out, format, view.Report, opts); err != nil {
					return err
				}
				a.logger.Info("report exported", zap.String("path", export.out), zap.String("format", string(format)))
				_, err := fmt.Fprintf(a.stdout, "Wrote %s report to %s\n", format, export.out)
				return err
			}
			return report.Render(a.stdout, format, view.Report, opts)
		},
	}
	cmd.Flags().StringVar(&req.ProjectName, "name", "", "project name")
	cmd.Flags().StringVar(&req.Industry, "industry", "", "industry the project operates in")
	cmd.Flags().StringVarP(&req.Description, "description", "d", "", "project description (required)")
	cmd.Flags().StringVar(&descriptionFile, "description-file", "", "read the description from a file, - for stdin")
	export.register(cmd)
	return cmd
}

func readDescription(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(io.LimitReader(stdin, 1<<20))
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read description: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}
