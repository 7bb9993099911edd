package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"framemap/internal/output"
	"framemap/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "framemap",
	Short: "Resolve cross-frame DOM and accessibility trees over the DevTools protocol",
	Long: `framemap attaches to a running Chromium browser, fuses each frame's DOM and
accessibility trees into one addressable tree, and gives every element a
stable identifier ({frameOrdinal}-{backendNodeId}) plus an XPath within its
owning frame's document.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("ws", "", "DevTools endpoint (default http://127.0.0.1:9222)")
	rootCmd.PersistentFlags().String("target", "", "Page target ID (default: first page)")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.framemap.yaml)")
	rootCmd.PersistentFlags().String("format", "", "Output format: yaml, json, text")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-file", "", "Log to file instead of stderr")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		format, _ := rootCmd.PersistentFlags().GetString("format")
		if format == "" {
			format = "yaml"
		}
		switch format {
		case "yaml":
			output.OutputFormat = output.FormatYAML
		case "json":
			output.OutputFormat = output.FormatJSON
		case "text":
			output.OutputFormat = output.FormatText
		default:
			return fmt.Errorf("unsupported format: %s (use yaml, json, or text)", format)
		}
		if prettyFlag := cmd.Flags().Lookup("pretty"); prettyFlag != nil {
			if pretty, err := cmd.Flags().GetBool("pretty"); err == nil && pretty {
				output.PrettyOutput = true
			}
		}
		return nil
	}
}
