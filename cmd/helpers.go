package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"framemap/internal/action"
	"framemap/internal/cdp"
	"framemap/internal/config"
	"framemap/internal/frames"
	"framemap/internal/fusion"
	"framemap/internal/logging"
	"framemap/internal/snapshot"
)

// app bundles the wired-up stack behind every command: one browser
// connection, one session registry, one engine.
type app struct {
	cfg      config.Config
	log      *zap.SugaredLogger
	bridge   *cdp.Bridge
	sessions *cdp.Registry
	exec     *cdp.Executor
	frames   *frames.Registry
	engine   *fusion.Engine
	actions  *action.Dispatcher
}

// loadConfig reads the config file and applies root-flag overrides.
func loadConfig() (config.Config, error) {
	path, _ := rootCmd.PersistentFlags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if ws, _ := rootCmd.PersistentFlags().GetString("ws"); ws != "" {
		cfg.WSURL = ws
	}
	if target, _ := rootCmd.PersistentFlags().GetString("target"); target != "" {
		cfg.TargetID = target
	}
	if level, _ := rootCmd.PersistentFlags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if file, _ := rootCmd.PersistentFlags().GetString("log-file"); file != "" {
		cfg.LogFile = file
	}
	return cfg, nil
}

// newApp connects to the browser and wires the full stack.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, err
	}

	bridge, err := cdp.Dial(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	sessions := cdp.NewRegistry(bridge, cfg, log)
	exec := cdp.NewExecutor(sessions, log)
	snaps := snapshot.NewClient(exec, cfg.Methods, log)
	fr := frames.NewRegistry()

	return &app{
		cfg:      cfg,
		log:      log,
		bridge:   bridge,
		sessions: sessions,
		exec:     exec,
		frames:   fr,
		engine:   fusion.NewEngine(sessions, snaps, fr, cfg, log),
		actions:  action.NewDispatcher(sessions, exec, fr, cfg.Methods, log),
	}, nil
}

func (a *app) close(ctx context.Context) {
	a.sessions.ReleaseAll(ctx)
	a.bridge.Close()
	_ = a.log.Sync()
}

// commandContext returns a context bounded by the configured command
// timeout, scaled up for whole-page resolution which spans many commands.
func (a *app) commandContext(parent context.Context, n int) (context.Context, context.CancelFunc) {
	if n < 1 {
		n = 1
	}
	return context.WithTimeout(parent, time.Duration(n)*a.cfg.CommandTimeout())
}

// resolveOptions reads the shared resolution flags.
func resolveOptions(cmd *cobra.Command) fusion.Options {
	iframes, _ := cmd.Flags().GetBool("iframes")
	maxDepth, _ := cmd.Flags().GetInt("max-depth")
	return fusion.Options{IncludeIframes: iframes, MaxDepth: maxDepth}
}

func resolveOptionsWith(iframes bool, maxDepth int) fusion.Options {
	return fusion.Options{IncludeIframes: iframes, MaxDepth: maxDepth}
}

func addResolveFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("iframes", true, "Resolve nested iframes")
	cmd.Flags().Int("max-depth", 0, "Max frame nesting depth (0 = unlimited)")
}
