// voxlis serves normalized executor compatibility reports over HTTP and MCP,
// and runs the same pipeline from the command line.
//
// Usage:
//
//	voxlis serve [--config voxlis.yaml] [--addr :3000]
//	voxlis report <executor> [--type unc|sunc] [--format json|table|md]
//	voxlis parse <file> [--type unc|sunc] [--deep]
//	voxlis warm [--parallel 4]
//	voxlis config
//	voxlis mcp
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"voxlis/internal/config"
	"voxlis/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

// cfg is the effective configuration, loaded before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "voxlis",
	Short: "Executor compatibility status service",
	Long: "voxlis fetches executor compatibility test reports from the status listing,\n" +
		"the deep report service and the static text dumps, normalizes them and\n" +
		"serves them over HTTP or MCP.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.configPath, "config", os.Getenv("VOXLIS_CONFIG"), "path to a YAML or JSON config file")
	pf.StringVar(&rootFlags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&rootFlags.logFormat, "log-format", "", "log format: text or json")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(warmCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.Version = version
}

// loadConfig layers defaults, file, environment and flags, then validates
// and initializes logging.
func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := config.LoadFromPath(rootFlags.configPath)
	if err != nil {
		return err
	}
	c.ApplyEnv(os.LookupEnv)
	if rootFlags.logLevel != "" {
		c.Logging.Level = rootFlags.logLevel
	}
	if rootFlags.logFormat != "" {
		c.Logging.Format = strings.ToLower(rootFlags.logFormat)
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, _ := logging.ParseLevel(c.Logging.Level)
	logging.Init(level, c.Logging.Format, cmd.ErrOrStderr())
	cfg = c
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
