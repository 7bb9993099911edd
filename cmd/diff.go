package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"framemap/internal/fusion"
	"framemap/internal/output"
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Report how the page changed between two resolutions",
	Long: `Resolve the page, wait, resolve again, and print the nodes that were added,
removed, or changed. Encoded IDs are stable while the page does not navigate,
so matching is exact.`,
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)
	addResolveFlags(diffCmd)
	diffCmd.Flags().Int("wait", 500, "Pause between resolutions in milliseconds")
	diffCmd.Flags().Bool("pretty", false, "Pretty-print JSON output")
}

func runDiff(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	rctx, cancel := a.commandContext(ctx, 8)
	defer cancel()

	opts := resolveOptions(cmd)
	before, err := a.engine.Resolve(rctx, opts)
	if err != nil {
		return err
	}

	wait, _ := cmd.Flags().GetInt("wait")
	select {
	case <-time.After(time.Duration(wait) * time.Millisecond):
	case <-rctx.Done():
		return rctx.Err()
	}

	after, err := a.engine.Resolve(rctx, opts)
	if err != nil {
		return err
	}
	return output.Print(fusion.Diff(before, after))
}
