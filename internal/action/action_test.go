package action

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framemap/internal/cdp"
	"framemap/internal/config"
	"framemap/internal/frames"
	"framemap/internal/fusion"
)

type fakeTransport struct {
	mu     sync.Mutex
	handle func(method string, params []byte) (string, error)
	mouse  []string
}

func (f *fakeTransport) Call(ctx context.Context, method string, params, result any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var raw []byte
	if params != nil {
		raw, _ = json.Marshal(params)
	}
	res, err := f.handle(method, raw)
	if err != nil {
		return err
	}
	if result != nil && res != "" {
		return json.Unmarshal([]byte(res), result)
	}
	return nil
}

func (f *fakeTransport) Detach(ctx context.Context) error { return nil }

type fakeAttacher struct{ page *fakeTransport }

func (a *fakeAttacher) AttachPage(ctx context.Context) (cdp.Transport, error) {
	return a.page, nil
}

func (a *fakeAttacher) AttachFrame(ctx context.Context, frameID string) (cdp.Transport, error) {
	return nil, fmt.Errorf("%w", cdp.ErrNoSeparateTarget)
}

func newTestDispatcher(tr *fakeTransport) (*Dispatcher, *frames.Registry) {
	cfg := config.Default()
	reg := cdp.NewRegistry(&fakeAttacher{page: tr}, cfg, nil)
	exec := cdp.NewExecutor(reg, nil)
	fr := frames.NewRegistry()
	return NewDispatcher(reg, exec, fr, cfg.Methods, nil), fr
}

func boxTransport() *fakeTransport {
	tr := &fakeTransport{}
	tr.handle = func(method string, params []byte) (string, error) {
		switch method {
		case "Runtime.evaluate":
			return `{"result":{"value":1}}`, nil
		case "DOM.getBoxModel":
			var p struct {
				BackendNodeID int64 `json:"backendNodeId"`
			}
			_ = json.Unmarshal(params, &p)
			if p.BackendNodeID != 42 {
				return "", fmt.Errorf("no node with backend id %d", p.BackendNodeID)
			}
			return `{"model":{"content":[10,20,110,20,110,60,10,60],"width":100,"height":40}}`, nil
		case "Input.dispatchMouseEvent":
			var p struct {
				Type string `json:"type"`
			}
			_ = json.Unmarshal(params, &p)
			tr.mouse = append(tr.mouse, p.Type)
			return "", nil
		}
		return "", fmt.Errorf("unexpected method %s", method)
	}
	return tr
}

func TestNodeBox(t *testing.T) {
	tr := boxTransport()
	d, fr := newTestDispatcher(tr)
	fr.RegisterMain("main", "")

	box, err := d.NodeBox(context.Background(), "0-42")
	require.NoError(t, err)
	assert.Equal(t, Box{X: 10, Y: 20, W: 100, H: 40}, box)

	cx, cy := box.Center()
	assert.Equal(t, 60.0, cx)
	assert.Equal(t, 40.0, cy)
}

func TestClickDispatchesPressRelease(t *testing.T) {
	tr := boxTransport()
	d, fr := newTestDispatcher(tr)
	fr.RegisterMain("main", "")

	x, y, err := d.Click(context.Background(), "0-42", ClickOptions{})
	require.NoError(t, err)
	assert.Equal(t, 60.0, x)
	assert.Equal(t, 40.0, y)
	assert.Equal(t, []string{"mousePressed", "mouseReleased"}, tr.mouse)
}

func TestClickRejectsMalformedID(t *testing.T) {
	d, _ := newTestDispatcher(boxTransport())
	_, _, err := d.Click(context.Background(), "nope", ClickOptions{})
	var me *fusion.MalformedEncodedIDError
	assert.ErrorAs(t, err, &me)
}

func TestClickUnknownOrdinal(t *testing.T) {
	d, fr := newTestDispatcher(boxTransport())
	fr.RegisterMain("main", "")
	_, _, err := d.Click(context.Background(), "5-42", ClickOptions{})
	var uf *frames.UnknownFrameError
	assert.ErrorAs(t, err, &uf)
}

func TestNodeBoxWithoutLayout(t *testing.T) {
	tr := &fakeTransport{}
	tr.handle = func(method string, params []byte) (string, error) {
		switch method {
		case "Runtime.evaluate":
			return `{"result":{"value":1}}`, nil
		case "DOM.getBoxModel":
			return `{"model":{"content":[]}}`, nil
		}
		return "", fmt.Errorf("unexpected method %s", method)
	}
	d, fr := newTestDispatcher(tr)
	fr.RegisterMain("main", "")

	_, err := d.NodeBox(context.Background(), "0-42")
	assert.ErrorContains(t, err, "no layout box")
}
