package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"gopkg.in/yaml.v3"

	"framemap/internal/action"
	"framemap/internal/fusion"
	"framemap/internal/output"
	"framemap/internal/overlay"
)

func stringParam(params map[string]interface{}, key, def string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return def
}

func intParam(params map[string]interface{}, key string, def int) int {
	if v, ok := params[key].(float64); ok {
		return int(v)
	}
	return def
}

func floatParam(params map[string]interface{}, key string, def float64) float64 {
	if v, ok := params[key].(float64); ok {
		return v
	}
	return def
}

func boolParam(params map[string]interface{}, key string, def bool) bool {
	if v, ok := params[key].(bool); ok {
		return v
	}
	return def
}

func optionsFromParams(params map[string]interface{}) fusion.Options {
	return fusion.Options{
		IncludeIframes: boolParam(params, "iframes", true),
		MaxDepth:       intParam(params, "max_depth", 0),
	}
}

func yamlText(v interface{}) (*mcp.CallToolResult, error) {
	b, err := yaml.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func (s *Server) handleResolve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()

	tree, err := s.cache.resolve(ctx, s.engine, optionsFromParams(params))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if boolParam(params, "flat", false) {
		nodes := tree.Flatten()
		if boolParam(params, "interactive", false) {
			nodes = tree.Interactive()
		}
		return yamlText(output.ResolveResult{
			TS:          time.Now().Unix(),
			Simplified:  tree.Simplified,
			Nodes:       nodes,
			Diagnostics: tree.Diagnostics,
		})
	}

	text := tree.Simplified
	if len(tree.Diagnostics) > 0 {
		b, _ := yaml.Marshal(tree.Diagnostics)
		text += "\nomitted subtrees:\n" + string(b)
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleFrames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tree, err := s.cache.resolve(ctx, s.engine, fusion.Options{IncludeIframes: true})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return yamlText(tree.Iframes)
}

func (s *Server) handleXPath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	id := stringParam(params, "id", "")
	if _, _, err := fusion.ParseEncodedID(id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	tree, err := s.cache.resolve(ctx, s.engine, fusion.Options{IncludeIframes: true})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	xpath, ok := tree.XPathMap[fusion.EncodedID(id)]
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no node %s in the resolved tree", id)), nil
	}
	return yamlText(output.XPathResult{ID: id, XPath: xpath, Tag: tree.TagMap[fusion.EncodedID(id)]})
}

func (s *Server) handleClick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	id := stringParam(params, "id", "")

	// a resolution must have populated the frame registry for this id
	if _, err := s.cache.resolve(ctx, s.engine, fusion.Options{IncludeIframes: true}); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	opts := action.ClickOptions{Button: stringParam(params, "button", "")}
	if boolParam(params, "double", false) {
		opts.Count = 2
	}
	x, y, err := s.actions.Click(ctx, id, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// the click may have changed the page
	s.cache.invalidateAll()

	return yamlText(output.ClickResult{ID: id, X: x, Y: y, OK: true})
}

func (s *Server) handleScreenshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()

	img, err := s.actions.Screenshot(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if highlight := stringParam(params, "highlight", ""); highlight != "" {
		if _, err := s.cache.resolve(ctx, s.engine, fusion.Options{IncludeIframes: true}); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		var marks []overlay.Mark
		for _, id := range strings.Split(highlight, ",") {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			box, err := s.actions.NodeBox(ctx, id)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			marks = append(marks, overlay.Mark{ID: id, X: box.X, Y: box.Y, W: box.W, H: box.H})
		}
		img, err = overlay.Annotate(img, marks, floatParam(params, "scale", 1.0))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	return mcp.NewToolResultImage("screenshot", base64.StdEncoding.EncodeToString(img), "image/png"), nil
}

func (s *Server) handleFind(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	query := stringParam(params, "query", "")
	if query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	tree, err := s.cache.resolve(ctx, s.engine, fusion.Options{IncludeIframes: true})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	found, err := s.finder.Find(ctx, query, tree)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(found) == 0 {
		return mcp.NewToolResultText("no matches"), nil
	}
	return yamlText(found)
}

func (s *Server) handleDiff(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	wait := time.Duration(intParam(params, "wait_ms", 500)) * time.Millisecond

	before, err := s.engine.Resolve(ctx, fusion.Options{IncludeIframes: true})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	select {
	case <-time.After(wait):
	case <-ctx.Done():
		return mcp.NewToolResultError(ctx.Err().Error()), nil
	}
	after, err := s.engine.Resolve(ctx, fusion.Options{IncludeIframes: true})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	d := fusion.Diff(before, after)
	if d.Empty() {
		return mcp.NewToolResultText("no changes"), nil
	}
	return yamlText(d)
}
