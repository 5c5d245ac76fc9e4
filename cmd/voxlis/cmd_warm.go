package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"voxlis/internal/format"
	"voxlis/internal/pipeline"
	"voxlis/internal/report"
)

var warmFlags struct {
	parallel int
	kind     string
	output   string
}

var warmCmd = &cobra.Command{
	Use:   "warm [executor...]",
	Short: "Fetch reports for many executors in parallel and print a summary",
	Long: `Runs the report pipeline for each named executor, or for every executor in
the text_reports table when none are given. Both kinds are fetched unless
--type is set. Failures are listed per executor and do not stop the run.`,
	RunE: runWarm,
}

func init() {
	warmCmd.Flags().IntVar(&warmFlags.parallel, "parallel", 4, "maximum concurrent fetches")
	warmCmd.Flags().StringVar(&warmFlags.kind, "type", "", "only this kind: sunc or unc (default: both)")
	warmCmd.Flags().StringVarP(&warmFlags.output, "format", "f", "table", "output format: table or md")
}

func runWarm(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	names := args
	if len(names) == 0 {
		names = tableNames(cfg.TextReports)
	}
	kinds := []report.Kind{report.KindSecure, report.KindBasic}
	if warmFlags.kind != "" {
		kinds = []report.Kind{report.ParseKind(warmFlags.kind)}
	}

	results := a.svc.Warm(cmd.Context(), pipeline.Jobs(names, kinds...), warmFlags.parallel)
	_, err = fmt.Fprint(cmd.OutOrStdout(), format.Warm(results, format.ParseMode(warmFlags.output)))
	return err
}

func tableNames(slugs map[string]string) []string {
	names := make([]string, 0, len(slugs))
	for name := range slugs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
