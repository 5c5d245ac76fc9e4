package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"voxlis/internal/format"
	"voxlis/internal/report"
)

var reportFlags struct {
	kind   string
	output string
}

var reportCmd = &cobra.Command{
	Use:   "report <executor>",
	Short: "Fetch and print one executor's report",
	Args:  cobra.ExactArgs(1),
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportFlags.kind, "type", "sunc", "report kind: sunc or unc")
	reportCmd.Flags().StringVarP(&reportFlags.output, "format", "f", "table", "output format: json, table or md")
}

func runReport(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	r, _, err := a.svc.Report(cmd.Context(), args[0], report.ParseKind(reportFlags.kind))
	if err != nil {
		return err
	}
	return writeReport(cmd.OutOrStdout(), r, reportFlags.output)
}

func writeReport(w io.Writer, r *report.Report, output string) error {
	switch output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "table", "md", "markdown":
		_, err := fmt.Fprint(w, format.Report(r, format.ParseMode(output), time.Now()))
		return err
	}
	return fmt.Errorf("unknown format %q (want json, table or md)", output)
}
