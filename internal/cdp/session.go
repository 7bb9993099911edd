package cdp

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"framemap/internal/config"
)

// State describes session liveness.
type State int

const (
	StateLive State = iota
	StateStale
	StateDetached
)

func (s State) String() string {
	switch s {
	case StateLive:
		return "live"
	case StateStale:
		return "stale"
	case StateDetached:
		return "detached"
	}
	return "unknown"
}

// Session is a live protocol channel bound to one browsing context. For a
// same-process iframe the session is an alias: it carries the frame's
// identity but borrows its ancestor's transport, and is never detached
// independently.
type Session struct {
	ID      string
	FrameID string // "" for the main frame
	AliasOf *Session

	mu    sync.Mutex // serializes commands on the owned transport
	state State
	tr    Transport
}

// Owner follows the alias link to the session that owns the transport.
func (s *Session) Owner() *Session {
	if s.AliasOf != nil {
		return s.AliasOf
	}
	return s
}

// State reports liveness of the owning session.
func (s *Session) State() State {
	o := s.Owner()
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (s *Session) setState(st State) {
	o := s.Owner()
	o.mu.Lock()
	o.state = st
	o.mu.Unlock()
}

// call sends one command through the owning transport, holding the owner's
// lock so each target sees at most one outstanding request.
func (s *Session) call(ctx context.Context, method string, params, result any) error {
	o := s.Owner()
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.tr.Call(ctx, method, params, result)
}

// Registry owns one session per browsing context. Same-process iframes
// resolve to aliases of the main-frame session; the aliasing decision is
// cached so the failed attach is not retried.
type Registry struct {
	mu       sync.Mutex
	attacher Attacher
	cfg      config.Config
	sessions map[string]*Session // frameID -> session, "" = main
	log      *zap.SugaredLogger
}

// NewRegistry builds a registry over the given attacher.
func NewRegistry(att Attacher, cfg config.Config, log *zap.SugaredLogger) *Registry {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Registry{
		attacher: att,
		cfg:      cfg,
		sessions: make(map[string]*Session),
		log:      log,
	}
}

// Acquire returns the session for a browsing context, creating it on first
// use. Repeated calls for the same context return the same session while it
// stays attached. mainFrame marks the page's top-level context; its frameID
// may be "" when unknown to the caller.
func (r *Registry) Acquire(ctx context.Context, frameID string, mainFrame bool) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.acquireLocked(ctx, frameID, mainFrame)
}

func (r *Registry) acquireLocked(ctx context.Context, frameID string, mainFrame bool) (*Session, error) {
	key := frameID
	if mainFrame {
		key = ""
	}
	if s, ok := r.sessions[key]; ok && s.State() != StateDetached {
		return s, nil
	}

	if mainFrame {
		tr, err := r.attacher.AttachPage(ctx)
		if err != nil {
			return nil, &SessionCreationError{FrameID: frameID, Err: err}
		}
		s := &Session{ID: uuid.NewString(), FrameID: frameID, state: StateLive, tr: tr}
		r.sessions[key] = s
		if frameID != "" {
			// also reachable under its real frame ID
			r.sessions[frameID] = s
		}
		r.log.Debugw("session attached", "frame", "main", "session", s.ID)
		return s, nil
	}

	tr, err := r.attacher.AttachFrame(ctx, frameID)
	switch {
	case err == nil:
		s := &Session{ID: uuid.NewString(), FrameID: frameID, state: StateLive, tr: tr}
		r.sessions[key] = s
		r.log.Debugw("session attached", "frame", frameID, "session", s.ID)
		return s, nil
	case r.isAliasError(err):
		// Same-process iframe: borrow the main-frame session and remember
		// the decision so the attach is not attempted again.
		main, merr := r.acquireLocked(ctx, "", true)
		if merr != nil {
			return nil, &SessionCreationError{FrameID: frameID, Err: merr}
		}
		alias := &Session{ID: uuid.NewString(), FrameID: frameID, AliasOf: main}
		r.sessions[key] = alias
		r.log.Debugw("session aliased to main frame", "frame", frameID)
		return alias, nil
	default:
		return nil, &SessionCreationError{FrameID: frameID, Err: err}
	}
}

// isAliasError recognizes the "no separate target" condition, either as the
// typed sentinel or by the configured error-message signatures. The string
// match is a documented heuristic; the protocol has no capability probe.
func (r *Registry) isAliasError(err error) bool {
	if errors.Is(err, ErrNoSeparateTarget) {
		return true
	}
	msg := err.Error()
	for _, sig := range r.cfg.AliasErrorSignatures {
		if sig != "" && strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}

// IsValid probes a session with a trivial command. Any failure, whether a timeout,
// a transport error, or a detached target, means invalid. Never returns an error.
func (r *Registry) IsValid(ctx context.Context, s *Session) bool {
	if s == nil || s.State() == StateDetached {
		return false
	}
	pctx, cancel := context.WithTimeout(ctx, r.cfg.ProbeTimeout())
	defer cancel()
	var discard struct {
		Result struct {
			Value any `json:"value"`
		} `json:"result"`
	}
	err := s.call(pctx, r.cfg.Methods.Probe, map[string]any{"expression": "1"}, &discard)
	if err != nil {
		s.setState(StateStale)
		return false
	}
	s.setState(StateLive)
	return true
}

// Refresh drops a stale session and acquires a fresh one for the same
// context. Used by the executor for its single transparent retry.
// Refreshing an alias invalidates the owning session: the alias is only a
// view onto the owner's transport, so the owner is detached and every entry
// it serves is purged before the re-acquire.
func (r *Registry) Refresh(ctx context.Context, s *Session) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	mainFrame := s.AliasOf == nil && (s.FrameID == "" || r.sessions[""] == s)
	owner := s.Owner()
	_ = owner.tr.Detach(ctx)
	owner.setState(StateDetached)
	for k, v := range r.sessions {
		if v.Owner() == owner {
			delete(r.sessions, k)
		}
	}
	return r.acquireLocked(ctx, s.FrameID, mainFrame)
}

// Release detaches the session owned by a context. Detach failures are
// swallowed; the target may already be gone. Releasing an alias only drops
// the mapping; the owner stays attached.
func (r *Registry) Release(ctx context.Context, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.AliasOf == nil {
		_ = s.tr.Detach(ctx)
		s.setState(StateDetached)
	}
	for k, v := range r.sessions {
		if v == s {
			delete(r.sessions, k)
		}
	}
}

// ReleaseAll detaches the deduplicated set of owned sessions (aliases are
// not detached twice) and clears the registry.
func (r *Registry) ReleaseAll(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[*Session]bool)
	for _, s := range r.sessions {
		owner := s.Owner()
		if seen[owner] {
			continue
		}
		seen[owner] = true
		_ = owner.tr.Detach(ctx)
		owner.setState(StateDetached)
	}
	r.sessions = make(map[string]*Session)
}

// Sessions returns a snapshot of the registry for diagnostics.
func (r *Registry) Sessions() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Session, 0, len(r.sessions))
	seen := make(map[*Session]bool)
	for _, s := range r.sessions {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
