package cmd

import (
	"github.com/spf13/cobra"

	"framemap/internal/output"
)

var tabsCmd = &cobra.Command{
	Use:   "tabs",
	Short: "List debuggable browser targets",
	Long:  "List the browser's debuggable targets (pages, out-of-process iframes, workers) with their IDs, titles, and URLs.",
	RunE:  runTabs,
}

func init() {
	rootCmd.AddCommand(tabsCmd)
	tabsCmd.Flags().Bool("all", false, "Include non-page targets (iframes, workers)")
	tabsCmd.Flags().Bool("pretty", false, "Pretty-print JSON output")
}

func runTabs(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	all, _ := cmd.Flags().GetBool("all")

	infos, err := a.bridge.Targets(ctx)
	if err != nil {
		return err
	}

	tabs := []output.Tab{}
	for _, info := range infos {
		if !all && info.Type != "page" {
			continue
		}
		tabs = append(tabs, output.Tab{
			ID:    string(info.TargetID),
			Type:  info.Type,
			Title: info.Title,
			URL:   info.URL,
		})
	}
	return output.Print(tabs)
}
