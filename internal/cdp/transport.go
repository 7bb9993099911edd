package cdp

import "context"

// Transport executes raw protocol commands against one attached target.
// params and result are marshalled to/from JSON; a nil result discards the
// response body.
type Transport interface {
	Call(ctx context.Context, method string, params, result any) error
	// Detach tears down the underlying channel. Best-effort: the target may
	// already be gone.
	Detach(ctx context.Context) error
}

// Attacher produces transports for browsing contexts. The production
// implementation is Bridge; tests substitute fakes.
type Attacher interface {
	// AttachPage returns a transport bound to the page's top-level target.
	AttachPage(ctx context.Context) (Transport, error)
	// AttachFrame returns a transport bound to the frame's own target.
	// Same-process iframes have no target of their own; those attachments
	// fail with an error wrapping ErrNoSeparateTarget.
	AttachFrame(ctx context.Context, frameID string) (Transport, error)
}
