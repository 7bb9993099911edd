package fusion

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"framemap/internal/cdp"
	"framemap/internal/config"
	"framemap/internal/frames"
	"framemap/internal/snapshot"
)

// Options control one resolution call.
type Options struct {
	// IncludeIframes resolves nested browsing contexts and splices their
	// subtrees under the hosting element. Off, hosts appear as leaves.
	IncludeIframes bool
	// MaxDepth bounds frame nesting; 0 means unbounded. 1 resolves only
	// the main frame.
	MaxDepth int
}

// Engine runs cross-frame resolution: it discovers frames, snapshots each
// one, fuses the snapshots, and splices child subtrees into their hosts.
//
// Resolution proceeds level by level. Snapshots for all frames of a level
// are fetched concurrently; discovery of the next level then runs
// sequentially in document order, so frame ordinals come out identical on
// every resolution of an unchanged page no matter how fetches interleave.
type Engine struct {
	sessions *cdp.Registry
	snaps    *snapshot.Client
	frames   *frames.Registry
	cfg      config.Config
	log      *zap.SugaredLogger
}

func NewEngine(sessions *cdp.Registry, snaps *snapshot.Client, reg *frames.Registry, cfg config.Config, log *zap.SugaredLogger) *Engine {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Engine{sessions: sessions, snaps: snaps, frames: reg, cfg: cfg, log: log}
}

// frameJob carries one frame through a resolution level. doc is pre-filled
// for same-process frames, whose document arrives inline in the parent's
// pierced snapshot; an aliased session cannot fetch it on its own because
// the retrieval command always answers for the owning target.
type frameJob struct {
	frameID string
	ordinal int
	session *cdp.Session
	depth   int

	doc    *snapshot.DOMNode
	ax     []*snapshot.AXNode
	err    error
	attach *Node // host node in the parent tree, nil for the main frame
	refIdx int   // index into the iframe list, -1 for the main frame
}

// fetch performs the frame's protocol round-trips. Safe to run concurrently
// with other frames' fetches; sessions serialize their own commands.
func (j *frameJob) fetch(ctx context.Context, snaps *snapshot.Client) {
	s := j.session
	var err error
	if j.doc == nil {
		j.doc, s, err = snaps.Document(ctx, s)
		if err != nil {
			j.err = err
			return
		}
	}
	axFrame := ""
	if s.AliasOf != nil {
		axFrame = j.frameID
	}
	j.ax, _, err = snaps.AXTree(ctx, s, axFrame)
	if err != nil {
		j.err = err
	}
}

// Resolve builds the fused tree for the current page. Failures inside a
// nested frame become Diagnostics and omit that subtree; only a main-frame
// failure fails the call. A caller timeout on ctx likewise turns unfinished
// subtrees into diagnostics rather than discarding what completed.
func (e *Engine) Resolve(ctx context.Context, opts Options) (*ResolvedTree, error) {
	main, err := e.sessions.Acquire(ctx, "", true)
	if err != nil {
		return nil, err
	}
	ft, main, err := e.snaps.FrameTree(ctx, main)
	if err != nil {
		return nil, fmt.Errorf("frame tree: %w", err)
	}
	mf := e.frames.RegisterMain(ft.Frame.ID, ft.Frame.URL)

	col := newCollector()
	level := []*frameJob{{
		frameID: ft.Frame.ID,
		ordinal: mf.Ordinal,
		session: main,
		refIdx:  -1,
	}}

	var rootNode *Node
	for len(level) > 0 {
		var g errgroup.Group
		for _, j := range level {
			j := j
			g.Go(func() error {
				j.fetch(ctx, e.snaps)
				return nil
			})
		}
		_ = g.Wait()

		var next []*frameJob
		for _, j := range level {
			if j.err != nil {
				if j.refIdx < 0 {
					return nil, j.err
				}
				e.log.Warnw("subtree omitted", "frame", j.frameID, "err", j.err)
				col.diag(Diagnostic{FrameID: j.frameID, Stage: stageOf(j.err), Err: j.err.Error()})
				continue
			}
			root := e.fuseFrame(ctx, j, col, &next, opts)
			if j.refIdx < 0 {
				rootNode = root
				continue
			}
			// a frame that fused to nothing still resolved; only failures
			// leave Resolved false, paired with a diagnostic
			col.markResolved(j.refIdx)
			if root != nil {
				j.attach.Children = append(j.attach.Children, root)
			}
		}
		level = next
	}

	tree := col.tree
	tree.Root = rootNode
	tree.Simplified = Simplify(rootNode, e.cfg.TruncateNames)
	return tree, nil
}

// fuseFrame indexes and fuses one fetched frame, registers its child frames
// in document order, and queues their jobs. Returns the frame's fused root.
func (e *Engine) fuseFrame(ctx context.Context, j *frameJob, col *collector, next *[]*frameJob, opts Options) *Node {
	idx := indexDocument(j.doc, j.ordinal)

	hosts := make(map[int64]bool, len(idx.iframes))
	for _, h := range idx.iframes {
		hosts[h.node.BackendNodeID] = true
	}
	root := prune(buildFusedTree(j.ax, idx), hosts)
	col.merge(idx)

	for _, h := range idx.iframes {
		childID := h.node.FrameID
		var url string
		if cd := h.node.ContentDocument; cd != nil {
			url = cd.DocumentURL
			if childID == "" {
				childID = cd.FrameID
			}
		}
		if childID == "" {
			// host element with no attached browsing context
			continue
		}
		f, ferr := e.frames.Register(childID, j.frameID, url)
		if ferr != nil {
			col.diag(Diagnostic{FrameID: childID, Stage: "owner", Err: ferr.Error()})
			continue
		}
		hid := idx.enc[h.node.BackendNodeID]
		if url != "" {
			col.setURL(hid, url)
		}
		ref := IframeRef{HostID: hid, FrameID: childID, Ordinal: f.Ordinal, URL: url, XPath: h.xpath}

		if !opts.IncludeIframes || (opts.MaxDepth > 0 && j.depth+1 >= opts.MaxDepth) {
			col.addRef(ref)
			continue
		}

		host := hostNode(root, h.node.BackendNodeID)
		if host == nil {
			// host absent from the accessibility tree, anchor the subtree
			// on a synthesized node
			host = &Node{ID: hid, BackendID: h.node.BackendNodeID, Role: "Iframe", Tag: h.node.Tag()}
			if root == nil {
				root = host
			} else {
				root.Children = append(root.Children, host)
			}
		}
		host.FrameID = childID

		cs, serr := e.sessions.Acquire(ctx, childID, false)
		if serr != nil {
			col.addRef(ref)
			col.diag(Diagnostic{FrameID: childID, Stage: "session", Err: serr.Error()})
			continue
		}
		ref.Aliased = cs.AliasOf != nil

		child := &frameJob{
			frameID: childID,
			ordinal: f.Ordinal,
			session: cs,
			depth:   j.depth + 1,
			attach:  host,
		}
		if cs.AliasOf != nil {
			if h.node.ContentDocument == nil {
				col.addRef(ref)
				col.diag(Diagnostic{FrameID: childID, Stage: "dom",
					Err: "same-process frame without inline document"})
				continue
			}
			child.doc = h.node.ContentDocument
		}
		child.refIdx = col.addRef(ref)
		*next = append(*next, child)
	}
	return root
}

func stageOf(err error) string {
	var se *cdp.SnapshotError
	if errors.As(err, &se) {
		return se.Op
	}
	var ce *cdp.SessionCreationError
	if errors.As(err, &ce) {
		return "session"
	}
	var ste *cdp.StaleSessionError
	if errors.As(err, &ste) {
		return "session"
	}
	return "dom"
}

// collector accumulates page-wide output under one lock.
type collector struct {
	mu   sync.Mutex
	tree *ResolvedTree
}

func newCollector() *collector {
	return &collector{tree: &ResolvedTree{
		XPathMap: make(map[EncodedID]string),
		TagMap:   make(map[EncodedID]string),
		URLMap:   make(map[EncodedID]string),
	}}
}

func (c *collector) merge(idx *domIndex) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range idx.xpath {
		c.tree.XPathMap[k] = v
	}
	for k, v := range idx.tag {
		c.tree.TagMap[k] = v
	}
}

func (c *collector) setURL(id EncodedID, url string) {
	c.mu.Lock()
	c.tree.URLMap[id] = url
	c.mu.Unlock()
}

func (c *collector) addRef(ref IframeRef) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tree.Iframes = append(c.tree.Iframes, ref)
	return len(c.tree.Iframes) - 1
}

func (c *collector) markResolved(i int) {
	c.mu.Lock()
	c.tree.Iframes[i].Resolved = true
	c.mu.Unlock()
}

func (c *collector) diag(d Diagnostic) {
	c.mu.Lock()
	c.tree.Diagnostics = append(c.tree.Diagnostics, d)
	c.mu.Unlock()
}
