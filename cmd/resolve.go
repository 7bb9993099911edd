package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"framemap/internal/output"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve the page into a fused cross-frame tree",
	Long: `Resolve the current page: snapshot every frame's DOM and accessibility
trees, fuse them, and print the result. Each node line is

  [frameOrdinal-backendNodeId] role: name

indented by depth. The bracketed IDs feed the xpath, click, and screenshot
commands.`,
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	addResolveFlags(resolveCmd)
	resolveCmd.Flags().Bool("flat", false, "Print a flat node list with XPaths instead of the tree")
	resolveCmd.Flags().Bool("interactive", false, "With --flat: only interactive or named nodes")
	resolveCmd.Flags().Bool("pretty", false, "Pretty-print JSON output")
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	rctx, cancel := a.commandContext(ctx, 4)
	defer cancel()

	tree, err := a.engine.Resolve(rctx, resolveOptions(cmd))
	if err != nil {
		return err
	}

	res := output.ResolveResult{
		TS:          time.Now().Unix(),
		Simplified:  tree.Simplified,
		Iframes:     tree.Iframes,
		Diagnostics: tree.Diagnostics,
	}
	if flat, _ := cmd.Flags().GetBool("flat"); flat {
		if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
			res.Nodes = tree.Interactive()
		} else {
			res.Nodes = tree.Flatten()
		}
	}
	return output.Print(res)
}
