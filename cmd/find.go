package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"framemap/internal/observe"
	"framemap/internal/output"
)

var findCmd = &cobra.Command{
	Use:   "find <query>",
	Short: "Find nodes matching a text query",
	Long: `Resolve the page and list nodes whose name, value, role, or tag contains
every word of the query. Matching is case-insensitive.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFind,
}

func init() {
	rootCmd.AddCommand(findCmd)
	addResolveFlags(findCmd)
	findCmd.Flags().Int("limit", 5, "Maximum number of matches")
	findCmd.Flags().Bool("pretty", false, "Pretty-print JSON output")
}

func runFind(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

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

	limit, _ := cmd.Flags().GetInt("limit")
	found, err := observe.NewTextFinder(limit).Find(rctx, query, tree)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		return fmt.Errorf("no nodes match %q", query)
	}
	return output.Print(found)
}
