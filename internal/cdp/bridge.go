package cdp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	cdpproto "github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/mailru/easyjson"
	"go.uber.org/zap"

	"framemap/internal/config"
)

// Bridge connects to a running browser over its DevTools endpoint and hands
// out per-target transports. It never launches a browser itself: framemap
// attaches to whatever Chrome was started with --remote-debugging-port.
type Bridge struct {
	cfg config.Config
	log *zap.SugaredLogger

	allocCtx    context.Context
	allocCancel context.CancelFunc

	browserCtx    context.Context
	browserCancel context.CancelFunc

	pageID target.ID
}

// Dial connects to the browser and picks the page target to work against:
// cfg.TargetID when set, otherwise the first page target.
func Dial(ctx context.Context, cfg config.Config, log *zap.SugaredLogger) (*Bridge, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	allocCtx, allocCancel := chromedp.NewRemoteAllocator(context.Background(), cfg.WSURL)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	b := &Bridge{
		cfg:           cfg,
		log:           log,
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}

	infos, err := b.Targets(ctx)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("connect to browser at %s: %w", cfg.WSURL, err)
	}

	if cfg.TargetID != "" {
		b.pageID = target.ID(cfg.TargetID)
	} else {
		for _, info := range infos {
			if info.Type == "page" {
				b.pageID = info.TargetID
				break
			}
		}
	}
	if b.pageID == "" {
		b.Close()
		return nil, fmt.Errorf("no page target at %s", cfg.WSURL)
	}
	log.Debugw("bridge connected", "url", cfg.WSURL, "page", b.pageID)
	return b, nil
}

// Targets lists the browser's debuggable targets.
func (b *Bridge) Targets(ctx context.Context) ([]*target.Info, error) {
	return chromedp.Targets(b.browserCtx)
}

// AttachPage attaches to the selected page target.
func (b *Bridge) AttachPage(ctx context.Context) (Transport, error) {
	return b.attach(b.pageID)
}

// AttachFrame attaches to a frame's own target. Out-of-process iframes
// surface as targets whose ID equals their frame ID; a frame with no such
// target is same-process and the returned error wraps ErrNoSeparateTarget.
func (b *Bridge) AttachFrame(ctx context.Context, frameID string) (Transport, error) {
	infos, err := b.Targets(ctx)
	if err != nil {
		return nil, err
	}
	var found bool
	for _, info := range infos {
		if string(info.TargetID) == frameID {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("no devtools target for frame %s: %w", frameID, ErrNoSeparateTarget)
	}
	return b.attach(target.ID(frameID))
}

func (b *Bridge) attach(id target.ID) (Transport, error) {
	tctx, tcancel := chromedp.NewContext(b.browserCtx, chromedp.WithTargetID(id))
	// Run with no actions forces the attach so failures surface here, not
	// on the first command.
	if err := chromedp.Run(tctx); err != nil {
		tcancel()
		return nil, fmt.Errorf("attach to target %s: %w", id, err)
	}
	return &targetTransport{ctx: tctx, cancel: tcancel, timeout: b.cfg.CommandTimeout()}, nil
}

// Close tears down the browser connection and every attached target.
func (b *Bridge) Close() {
	b.browserCancel()
	b.allocCancel()
}

// targetTransport sends raw protocol commands to one attached target through
// chromedp's executor. Arbitrary method names ride cdp.Execute via
// easyjson.RawMessage, so the method set stays configurable.
type targetTransport struct {
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
}

func (t *targetTransport) Call(ctx context.Context, method string, params, result any) error {
	var runCtx context.Context
	var cancel context.CancelFunc
	if dl, ok := ctx.Deadline(); ok {
		runCtx, cancel = context.WithDeadline(t.ctx, dl)
	} else {
		runCtx, cancel = context.WithTimeout(t.ctx, t.timeout)
	}
	defer cancel()

	var pm easyjson.Marshaler
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("marshal %s params: %w", method, err)
		}
		rm := easyjson.RawMessage(raw)
		pm = &rm
	}

	var res easyjson.RawMessage
	var rp easyjson.Unmarshaler
	if result != nil {
		rp = &res
	}

	err := chromedp.Run(runCtx, chromedp.ActionFunc(func(cctx context.Context) error {
		return cdpproto.Execute(cctx, method, pm, rp)
	}))
	if err != nil {
		return err
	}
	if result != nil && len(res) > 0 {
		if err := json.Unmarshal(res, result); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
	}
	return nil
}

func (t *targetTransport) Detach(ctx context.Context) error {
	t.cancel()
	return nil
}
