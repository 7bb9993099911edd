package cmd

import (
	"github.com/spf13/cobra"

	"framemap/internal/output"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Show protocol sessions after a resolution",
	Long: `Resolve the page and list the protocol sessions the registry holds: one
owned session per separate target, plus aliases for same-process iframes that
share their ancestor's session.`,
	RunE: runSessions,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	addResolveFlags(sessionsCmd)
	sessionsCmd.Flags().Bool("pretty", false, "Pretty-print JSON output")
}

func runSessions(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	rctx, cancel := a.commandContext(ctx, 4)
	defer cancel()

	if _, err := a.engine.Resolve(rctx, resolveOptions(cmd)); err != nil {
		return err
	}

	entries := []output.SessionEntry{}
	for _, s := range a.sessions.Sessions() {
		entries = append(entries, output.SessionEntry{
			ID:      s.ID,
			Frame:   s.FrameID,
			State:   s.State().String(),
			Aliased: s.AliasOf != nil,
		})
	}
	return output.Print(entries)
}
