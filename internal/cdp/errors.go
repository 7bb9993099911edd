package cdp

import (
	"errors"
	"fmt"
)

// ErrNoSeparateTarget marks an attach failure that means the frame runs in
// its parent's process and shares its DevTools session. The registry turns
// it into an alias rather than a failure.
var ErrNoSeparateTarget = errors.New("frame has no separate devtools target")

// SessionCreationError reports a non-recoverable failure to create a session
// for a browsing context. Fatal for that context's subtree, not for siblings.
type SessionCreationError struct {
	FrameID string
	Err     error
}

func (e *SessionCreationError) Error() string {
	return fmt.Sprintf("create session for frame %q: %v", e.FrameID, e.Err)
}

func (e *SessionCreationError) Unwrap() error { return e.Err }

// StaleSessionError reports a command attempted on a session that failed its
// liveness probe and could not be transparently recreated.
type StaleSessionError struct {
	Method  string
	FrameID string
}

func (e *StaleSessionError) Error() string {
	return fmt.Sprintf("session for frame %q is stale, refusing to send %s", e.FrameID, e.Method)
}

// SnapshotError reports a failed DOM or accessibility snapshot. The subtree
// for the named frame is omitted; resolution of sibling frames continues.
type SnapshotError struct {
	FrameID string
	Op      string
	Err     error
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("%s snapshot for frame %q: %v", e.Op, e.FrameID, e.Err)
}

func (e *SnapshotError) Unwrap() error { return e.Err }
