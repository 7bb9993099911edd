package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"framemap/internal/fusion"
	"framemap/internal/output"
)

var xpathCmd = &cobra.Command{
	Use:   "xpath <id>",
	Short: "Print the XPath for a resolved node",
	Long: `Resolve the page and print the XPath for an encoded node ID. The path is
relative to the node's own document; for nodes inside an iframe, evaluate
the hosting chain from the frames listing first.`,
	Args: cobra.ExactArgs(1),
	RunE: runXPath,
}

func init() {
	rootCmd.AddCommand(xpathCmd)
	addResolveFlags(xpathCmd)
	xpathCmd.Flags().Bool("pretty", false, "Pretty-print JSON output")
}

func runXPath(cmd *cobra.Command, args []string) error {
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

	tree, err := a.engine.Resolve(rctx, resolveOptions(cmd))
	if err != nil {
		return err
	}

	xpath, ok := tree.XPathMap[fusion.EncodedID(id)]
	if !ok {
		return fmt.Errorf("no node %s in the resolved tree", id)
	}
	return output.Print(output.XPathResult{
		ID:    id,
		XPath: xpath,
		Tag:   tree.TagMap[fusion.EncodedID(id)],
	})
}
