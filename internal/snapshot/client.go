package snapshot

import (
	"context"

	"go.uber.org/zap"

	"framemap/internal/cdp"
	"framemap/internal/config"
)

// FrameInfo is the protocol's frame descriptor, trimmed to identity fields.
type FrameInfo struct {
	ID       string `json:"id"`
	ParentID string `json:"parentId"`
	URL      string `json:"url"`
}

// FrameTreeNode is one node of a Page.getFrameTree response.
type FrameTreeNode struct {
	Frame       FrameInfo        `json:"frame"`
	ChildFrames []*FrameTreeNode `json:"childFrames"`
}

// Client issues snapshot commands through the executor. Each method returns
// the session the command ran on, which differs from the input only after a
// transparent stale-session recreation.
type Client struct {
	exec    *cdp.Executor
	methods config.Methods
	log     *zap.SugaredLogger
}

func NewClient(exec *cdp.Executor, methods config.Methods, log *zap.SugaredLogger) *Client {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Client{exec: exec, methods: methods, log: log}
}

// Document captures the full DOM of the session's context. depth -1 with
// pierce retrieves the whole tree, shadow roots included, in one round trip;
// nested documents of same-process iframes come back inline as
// contentDocument.
func (c *Client) Document(ctx context.Context, s *cdp.Session) (*DOMNode, *cdp.Session, error) {
	params := map[string]any{"depth": -1, "pierce": true}
	var res struct {
		Root *DOMNode `json:"root"`
	}
	s, err := c.exec.Execute(ctx, s, c.methods.GetDocument, params, &res)
	if err != nil {
		return nil, s, &cdp.SnapshotError{FrameID: s.FrameID, Op: "dom", Err: err}
	}
	return res.Root, s, nil
}

// AXTree captures the flattened accessibility tree. frameID scopes the query
// when the session is an alias serving a same-process iframe; for a session
// that owns its target it must be empty, the tree is the target's own.
func (c *Client) AXTree(ctx context.Context, s *cdp.Session, frameID string) ([]*AXNode, *cdp.Session, error) {
	params := map[string]any{}
	if frameID != "" {
		params["frameId"] = frameID
	}
	var res axTreeResult
	s, err := c.exec.Execute(ctx, s, c.methods.GetAXTree, params, &res)
	if err != nil {
		return nil, s, &cdp.SnapshotError{FrameID: s.FrameID, Op: "ax", Err: err}
	}
	return res.flatten(), s, nil
}

// FrameTree returns the frame hierarchy visible to the session's target.
func (c *Client) FrameTree(ctx context.Context, s *cdp.Session) (*FrameTreeNode, *cdp.Session, error) {
	var res struct {
		FrameTree *FrameTreeNode `json:"frameTree"`
	}
	s, err := c.exec.Execute(ctx, s, c.methods.GetFrameTree, nil, &res)
	if err != nil {
		return nil, s, err
	}
	return res.FrameTree, s, nil
}

// FrameOwner resolves the backend node ID of the element hosting a frame.
// Asked of the parent's session, since the owner element lives there.
func (c *Client) FrameOwner(ctx context.Context, s *cdp.Session, frameID string) (int64, *cdp.Session, error) {
	params := map[string]any{"frameId": frameID}
	var res struct {
		BackendNodeID int64 `json:"backendNodeId"`
	}
	s, err := c.exec.Execute(ctx, s, c.methods.GetFrameOwner, params, &res)
	if err != nil {
		return 0, s, err
	}
	return res.BackendNodeID, s, nil
}
