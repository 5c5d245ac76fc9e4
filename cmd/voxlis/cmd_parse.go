package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"voxlis/internal/format"
	"voxlis/internal/logging"
	"voxlis/internal/report"
	"voxlis/internal/structreport"
	"voxlis/internal/textreport"
)

var parseFlags struct {
	kind   string
	output string
	deep   bool
	name   string
}

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a local text dump or deep report JSON without fetching anything",
	Long: `Runs a parser on a local file. Text dumps go through the text parser for
the chosen kind. With --deep, or for a .json file holding a deep report, the
structured parser is used.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVar(&parseFlags.kind, "type", "sunc", "report kind for text dumps: sunc or unc")
	parseCmd.Flags().StringVarP(&parseFlags.output, "format", "f", "json", "output format: json, table or md")
	parseCmd.Flags().BoolVar(&parseFlags.deep, "deep", false, "parse as a deep report JSON document")
	parseCmd.Flags().StringVar(&parseFlags.name, "name", "", "executor name (default: file name)")
}

func runParse(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	name := parseFlags.name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	isJSON := strings.EqualFold(filepath.Ext(path), ".json")
	r, err := parseFile(data, name, parseFlags.deep, isJSON, report.ParseKind(parseFlags.kind))
	if err != nil {
		return err
	}
	logging.New("parse").Debug("parsed", "file", path, "size", format.Size(len(data)), "results", len(r.Results))
	return writeReport(cmd.OutOrStdout(), r, parseFlags.output)
}

// parseFile tries the structured parser first when deep or isJSON is set.
// Only an explicit deep request turns a structured parse error into a
// failure; otherwise the text parser takes over.
func parseFile(data []byte, name string, deep, isJSON bool, kind report.Kind) (*report.Report, error) {
	if deep || isJSON {
		r, err := structreport.Parse(data, name, nil)
		if err != nil && deep {
			return nil, err
		}
		if r != nil {
			r.Source = "file"
			return r, nil
		}
	}
	r := textreport.Parse(string(data), kind)
	r.ExecutorName = name
	r.Source = "file"
	return r, nil
}
