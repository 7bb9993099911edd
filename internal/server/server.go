// Package server exposes the resolution engine over the Model Context
// Protocol so agents can call it as tools instead of shelling out.
package server

import (
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"framemap/internal/action"
	"framemap/internal/cdp"
	"framemap/internal/fusion"
	"framemap/internal/observe"
	"framemap/internal/version"
)

const finderCacheSize = 64

// Config holds MCP server configuration.
type Config struct {
	Transport string
	Port      int
	CacheTTL  time.Duration
}

// Server wraps the MCP server with the engine, dispatcher and tree cache.
type Server struct {
	engine   *fusion.Engine
	actions  *action.Dispatcher
	sessions *cdp.Registry
	cache    *treeCache
	finder   *observe.Cache
	log      *zap.SugaredLogger
	mcp      *mcpserver.MCPServer
}

// New creates and configures an MCP server with all framemap tools.
func New(engine *fusion.Engine, actions *action.Dispatcher, sessions *cdp.Registry, cfg Config, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	finder, _ := observe.NewCache(observe.NewTextFinder(0), finderCacheSize)
	s := &Server{
		engine:   engine,
		actions:  actions,
		sessions: sessions,
		cache:    newTreeCache(cfg.CacheTTL),
		finder:   finder,
		log:      log,
	}
	s.mcp = mcpserver.NewMCPServer("framemap", version.Version)
	s.registerTools()
	return s
}

// Serve starts the MCP server with the configured transport.
func (s *Server) Serve(cfg Config) error {
	switch cfg.Transport {
	case "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		return httpServer.Start(fmt.Sprintf(":%d", cfg.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

func (s *Server) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("browser_resolve",
			mcp.WithDescription("Resolve the page into a fused DOM/accessibility tree spanning all frames. Returns one line per node: [frameOrdinal-backendNodeId] role: name, indented by depth. Use the bracketed IDs with the other browser tools."),
			mcp.WithBoolean("iframes", mcp.Description("Resolve nested iframes (default true)")),
			mcp.WithNumber("max_depth", mcp.Description("Max frame nesting depth (0 = unlimited)")),
			mcp.WithBoolean("flat", mcp.Description("Return a flat node list with XPaths instead of the tree")),
			mcp.WithBoolean("interactive", mcp.Description("With flat: only interactive or named nodes")),
		),
		s.handleResolve,
	)

	s.mcp.AddTool(
		mcp.NewTool("browser_frames",
			mcp.WithDescription("List the frames discovered by the last resolution: ordinal, frame ID, parent, URL, and whether each nested frame shares its parent's session"),
		),
		s.handleFrames,
	)

	s.mcp.AddTool(
		mcp.NewTool("browser_xpath",
			mcp.WithDescription("Return the XPath for a resolved node ID, relative to the node's own frame document"),
			mcp.WithString("id", mcp.Description("Encoded node ID, e.g. 0-42"), mcp.Required()),
		),
		s.handleXPath,
	)

	s.mcp.AddTool(
		mcp.NewTool("browser_click",
			mcp.WithDescription("Click a resolved node by its encoded ID"),
			mcp.WithString("id", mcp.Description("Encoded node ID, e.g. 0-42"), mcp.Required()),
			mcp.WithString("button", mcp.Description("Mouse button: left, right, middle")),
			mcp.WithBoolean("double", mcp.Description("Double-click")),
		),
		s.handleClick,
	)

	s.mcp.AddTool(
		mcp.NewTool("browser_screenshot",
			mcp.WithDescription("Capture the page as PNG, optionally drawing boxes and ID labels over resolved nodes"),
			mcp.WithString("highlight", mcp.Description("Comma-separated encoded node IDs to annotate")),
			mcp.WithNumber("scale", mcp.Description("Page-to-pixel scale for annotation placement (default 1.0)")),
		),
		s.handleScreenshot,
	)

	s.mcp.AddTool(
		mcp.NewTool("browser_find",
			mcp.WithDescription("Find nodes whose name, value, role, or tag matches every word of the query. Returns encoded IDs usable with the other browser tools"),
			mcp.WithString("query", mcp.Description("Words to match, e.g. 'submit button'"), mcp.Required()),
		),
		s.handleFind,
	)

	s.mcp.AddTool(
		mcp.NewTool("browser_diff",
			mcp.WithDescription("Resolve the page twice with a pause in between and report added, removed, and changed nodes"),
			mcp.WithNumber("wait_ms", mcp.Description("Pause between resolutions in milliseconds (default 500)")),
		),
		s.handleDiff,
	)
}
