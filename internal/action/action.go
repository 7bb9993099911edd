// Package action dispatches input to resolved nodes. It is a thin consumer
// of the resolution output: given an encoded identifier it finds the owning
// frame's session, asks the browser for the node's box, and synthesizes
// mouse events at the center.
package action

import (
	"context"
	"encoding/base64"
	"fmt"

	"go.uber.org/zap"

	"framemap/internal/cdp"
	"framemap/internal/config"
	"framemap/internal/frames"
	"framemap/internal/fusion"
)

// Box is a node's content box in the owning frame's coordinate space.
type Box struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	W float64 `yaml:"w" json:"w"`
	H float64 `yaml:"h" json:"h"`
}

// Center returns the box midpoint.
func (b Box) Center() (float64, float64) {
	return b.X + b.W/2, b.Y + b.H/2
}

// ClickOptions tune a click dispatch.
type ClickOptions struct {
	Button string // left, right, middle; left when empty
	Count  int    // click count; 1 when zero
}

// Dispatcher issues node-targeted commands. A resolution must have run
// first so the frame registry knows the ordinal behind each identifier.
type Dispatcher struct {
	sessions *cdp.Registry
	exec     *cdp.Executor
	frames   *frames.Registry
	methods  config.Methods
	log      *zap.SugaredLogger
}

func NewDispatcher(sessions *cdp.Registry, exec *cdp.Executor, reg *frames.Registry, methods config.Methods, log *zap.SugaredLogger) *Dispatcher {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Dispatcher{sessions: sessions, exec: exec, frames: reg, methods: methods, log: log}
}

// sessionFor maps an encoded identifier to the session owning its frame and
// the backend node identity within it.
func (d *Dispatcher) sessionFor(ctx context.Context, id string) (*cdp.Session, int64, error) {
	ordinal, backendID, err := fusion.ParseEncodedID(id)
	if err != nil {
		return nil, 0, err
	}
	f, err := d.frames.ByOrdinal(ordinal)
	if err != nil {
		return nil, 0, err
	}
	s, err := d.sessions.Acquire(ctx, f.ID, f.ParentID == "")
	if err != nil {
		return nil, 0, err
	}
	return s, backendID, nil
}

// NodeBox returns the content box of a resolved node.
func (d *Dispatcher) NodeBox(ctx context.Context, id string) (Box, error) {
	s, backendID, err := d.sessionFor(ctx, id)
	if err != nil {
		return Box{}, err
	}
	params := map[string]any{"backendNodeId": backendID}
	var res struct {
		Model struct {
			Content []float64 `json:"content"`
			Width   float64   `json:"width"`
			Height  float64   `json:"height"`
		} `json:"model"`
	}
	if _, err := d.exec.Execute(ctx, s, d.methods.GetBoxModel, params, &res); err != nil {
		return Box{}, fmt.Errorf("box model for %s: %w", id, err)
	}
	q := res.Model.Content
	if len(q) < 8 {
		return Box{}, fmt.Errorf("node %s has no layout box", id)
	}
	minX, minY := q[0], q[1]
	maxX, maxY := q[0], q[1]
	for i := 2; i+1 < 8; i += 2 {
		minX = min(minX, q[i])
		maxX = max(maxX, q[i])
		minY = min(minY, q[i+1])
		maxY = max(maxY, q[i+1])
	}
	return Box{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}, nil
}

// Click synthesizes a press/release pair at a node's center and returns the
// point clicked.
func (d *Dispatcher) Click(ctx context.Context, id string, opts ClickOptions) (float64, float64, error) {
	box, err := d.NodeBox(ctx, id)
	if err != nil {
		return 0, 0, err
	}
	s, _, err := d.sessionFor(ctx, id)
	if err != nil {
		return 0, 0, err
	}
	button := opts.Button
	if button == "" {
		button = "left"
	}
	count := opts.Count
	if count == 0 {
		count = 1
	}
	x, y := box.Center()
	for _, typ := range []string{"mousePressed", "mouseReleased"} {
		params := map[string]any{
			"type":       typ,
			"x":          x,
			"y":          y,
			"button":     button,
			"clickCount": count,
		}
		if _, err := d.exec.Execute(ctx, s, d.methods.DispatchMouseEvent, params, nil); err != nil {
			return x, y, fmt.Errorf("dispatch %s on %s: %w", typ, id, err)
		}
	}
	d.log.Debugw("clicked", "id", id, "x", x, "y", y, "button", button)
	return x, y, nil
}

// Screenshot captures the main frame's viewport as PNG bytes.
func (d *Dispatcher) Screenshot(ctx context.Context) ([]byte, error) {
	s, err := d.sessions.Acquire(ctx, "", true)
	if err != nil {
		return nil, err
	}
	params := map[string]any{"format": "png"}
	var res struct {
		Data string `json:"data"`
	}
	if _, err := d.exec.Execute(ctx, s, d.methods.CaptureScreenshot, params, &res); err != nil {
		return nil, err
	}
	return base64.StdEncoding.DecodeString(res.Data)
}
