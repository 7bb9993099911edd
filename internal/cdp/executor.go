package cdp

import (
	"context"

	"go.uber.org/zap"
)

// Executor is the typed command layer over a session. It pre-checks
// liveness before sending so a dead target surfaces as a StaleSessionError
// naming the attempted method instead of an opaque transport failure, and
// makes one transparent recreation attempt before giving up. Results are
// returned unmodified: no batching, no retry, no reordering.
type Executor struct {
	reg *Registry
	log *zap.SugaredLogger
}

// NewExecutor builds an executor over the session registry.
func NewExecutor(reg *Registry, log *zap.SugaredLogger) *Executor {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Executor{reg: reg, log: log}
}

// Execute sends one command through the session, decoding the response into
// result (which may be nil). The session returned is the one the command
// actually ran on: it differs from s only when a stale session was
// transparently recreated.
func (e *Executor) Execute(ctx context.Context, s *Session, method string, params, result any) (*Session, error) {
	if !e.reg.IsValid(ctx, s) {
		fresh, err := e.reg.Refresh(ctx, s)
		if err != nil || !e.reg.IsValid(ctx, fresh) {
			e.log.Debugw("session stale and not recoverable", "frame", s.FrameID, "method", method)
			return s, &StaleSessionError{Method: method, FrameID: s.FrameID}
		}
		e.log.Debugw("stale session recreated", "frame", s.FrameID)
		s = fresh
	}
	if err := s.call(ctx, method, params, result); err != nil {
		return s, err
	}
	return s, nil
}
