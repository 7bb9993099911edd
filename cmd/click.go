package cmd

import (
	"github.com/spf13/cobra"

	"framemap/internal/action"
	"framemap/internal/fusion"
	"framemap/internal/output"
)

var clickCmd = &cobra.Command{
	Use:   "click <id>",
	Short: "Click a resolved node",
	Long:  "Resolve the page, locate the node by its encoded ID, and synthesize a click at its center.",
	Args:  cobra.ExactArgs(1),
	RunE:  runClick,
}

func init() {
	rootCmd.AddCommand(clickCmd)
	clickCmd.Flags().String("button", "left", "Mouse button: left, right, middle")
	clickCmd.Flags().Bool("double", false, "Double-click")
	clickCmd.Flags().Bool("pretty", false, "Pretty-print JSON output")
}

func runClick(cmd *cobra.Command, args []string) error {
	id := args[0]
	if _, _, err := fusion.ParseEncodedID(id); err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	rctx, cancel := a.commandContext(ctx, 4)
	defer cancel()

	// resolution populates the frame registry behind the encoded id
	if _, err := a.engine.Resolve(rctx, resolveOptionsWith(true, 0)); err != nil {
		return err
	}

	button, _ := cmd.Flags().GetString("button")
	opts := action.ClickOptions{Button: button}
	if double, _ := cmd.Flags().GetBool("double"); double {
		opts.Count = 2
	}

	x, y, err := a.actions.Click(rctx, id, opts)
	if err != nil {
		return err
	}
	return output.Print(output.ClickResult{ID: id, X: x, Y: y, OK: true})
}
