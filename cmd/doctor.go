package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"auditor/internal/doctor"
)

func newDoctorCmd(a *app) *cobra.Command {
	var (
		jsonOut bool
		strict  bool
	)
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, backend reachability and the log directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rep := doctor.BuildReport(cmd.Context(), doctor.Options{
				APIURL: a.cfg.APIURL,
				Pinger: a.client,
			})
			if jsonOut {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(rep); err != nil {
					return err
				}
			} else {
				printDoctorReport(a, rep)
			}
			if rep.Failed(strict) {
				return errors.New("doctor found problems")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as failures")
	return cmd
}

func printDoctorReport(a *app, rep doctor.Report) {
	for _, chk := range rep.Checks {
		fmt.Fprintf(a.stdout, "[%s] %s: %s\n", strings.ToUpper(string(chk.Status)), chk.ID, chk.Message)
		keys := make([]string, 0, len(chk.Metadata))
		for k := range chk.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(a.stdout, "    %s: %s\n", k, chk.Metadata[k])
		}
	}
	fmt.Fprintf(a.stdout, "\n%d passed, %d warnings, %d failed\n", rep.Summary.Pass, rep.Summary.Warning, rep.Summary.Fail)
}
