package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"framemap/internal/overlay"
)

var screenshotCmd = &cobra.Command{
	Use:   "screenshot",
	Short: "Capture the page, optionally annotating resolved nodes",
	Long: `Capture the page as PNG. With --highlight, resolve the page first and draw
a box plus the encoded ID over each named node.`,
	RunE: runScreenshot,
}

func init() {
	rootCmd.AddCommand(screenshotCmd)
	screenshotCmd.Flags().StringP("out", "o", "screenshot.png", "Output file")
	screenshotCmd.Flags().StringSlice("highlight", nil, "Encoded node IDs to annotate (repeatable)")
	screenshotCmd.Flags().Float64("scale", 1.0, "Page-to-pixel scale for annotation placement")
}

func runScreenshot(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	rctx, cancel := a.commandContext(ctx, 4)
	defer cancel()

	img, err := a.actions.Screenshot(rctx)
	if err != nil {
		return err
	}

	highlight, _ := cmd.Flags().GetStringSlice("highlight")
	if len(highlight) > 0 {
		if _, err := a.engine.Resolve(rctx, resolveOptionsWith(true, 0)); err != nil {
			return err
		}
		var marks []overlay.Mark
		for _, id := range highlight {
			box, err := a.actions.NodeBox(rctx, id)
			if err != nil {
				return err
			}
			marks = append(marks, overlay.Mark{ID: id, X: box.X, Y: box.Y, W: box.W, H: box.H})
		}
		scale, _ := cmd.Flags().GetFloat64("scale")
		img, err = overlay.Annotate(img, marks, scale)
		if err != nil {
			return err
		}
	}

	out, _ := cmd.Flags().GetString("out")
	if err := os.WriteFile(out, img, 0o644); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
