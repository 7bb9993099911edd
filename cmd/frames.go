package cmd

import (
	"github.com/spf13/cobra"

	"framemap/internal/output"
)

var framesCmd = &cobra.Command{
	Use:   "frames",
	Short: "List frames discovered during resolution",
	Long:  "Resolve the page and list every browsing context with its ordinal, frame ID, parent, and URL.",
	RunE:  runFrames,
}

func init() {
	rootCmd.AddCommand(framesCmd)
	framesCmd.Flags().Int("max-depth", 0, "Max frame nesting depth (0 = unlimited)")
	framesCmd.Flags().Bool("pretty", false, "Pretty-print JSON output")
}

func runFrames(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	rctx, cancel := a.commandContext(ctx, 4)
	defer cancel()

	maxDepth, _ := cmd.Flags().GetInt("max-depth")
	if _, err := a.engine.Resolve(rctx, resolveOptionsWith(true, maxDepth)); err != nil {
		return err
	}

	entries := []output.FrameEntry{}
	for _, f := range a.frames.Frames() {
		entries = append(entries, output.FrameEntry{
			Ordinal: f.Ordinal,
			ID:      f.ID,
			Parent:  f.ParentID,
			URL:     f.URL,
		})
	}
	return output.Print(entries)
}
