// Package frames tracks browsing contexts discovered during resolution and
// assigns each a small stable ordinal. Ordinals are first-seen: the main
// frame is 0, every later frame gets the next integer the first time it is
// registered, and re-registering is a no-op. They are never reset, so encoded
// identifiers stay comparable across consecutive resolutions of the same
// page.
package frames

import (
	"fmt"
	"sort"
	"sync"
)

// Frame is one registered browsing context.
type Frame struct {
	ID       string
	ParentID string // "" for the main frame
	Ordinal  int
	URL      string
}

// UnknownFrameError reports a lookup for a frame that was never registered.
type UnknownFrameError struct {
	FrameID string
}

func (e *UnknownFrameError) Error() string {
	return fmt.Sprintf("unknown frame %q", e.FrameID)
}

// Registry assigns ordinals and records frame parentage. Safe for concurrent
// use; subframes of different parents are discovered in parallel.
type Registry struct {
	mu     sync.Mutex
	frames map[string]*Frame
	next   int
}

func NewRegistry() *Registry {
	return &Registry{frames: make(map[string]*Frame)}
}

// RegisterMain registers the page's top-level frame as ordinal 0. Calling it
// again with the same ID is a no-op; a different ID means the page navigated
// to a new top-level context and gets a fresh ordinal like any other frame.
func (r *Registry) RegisterMain(frameID, url string) *Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.frames[frameID]; ok {
		if url != "" {
			f.URL = url
		}
		return f
	}
	f := &Frame{ID: frameID, Ordinal: r.next, URL: url}
	r.next++
	r.frames[frameID] = f
	return f
}

// Register records a child frame under its parent, assigning the next ordinal
// on first sight. The parent must already be registered.
func (r *Registry) Register(frameID, parentID, url string) (*Frame, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.frames[frameID]; ok {
		if url != "" {
			f.URL = url
		}
		return f, nil
	}
	if _, ok := r.frames[parentID]; !ok {
		return nil, &UnknownFrameError{FrameID: parentID}
	}
	f := &Frame{ID: frameID, ParentID: parentID, Ordinal: r.next, URL: url}
	r.next++
	r.frames[frameID] = f
	return f, nil
}

// OrdinalOf returns the ordinal assigned to a frame.
func (r *Registry) OrdinalOf(frameID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.frames[frameID]
	if !ok {
		return 0, &UnknownFrameError{FrameID: frameID}
	}
	return f.Ordinal, nil
}

// ParentOf returns the parent frame ID, "" for the main frame.
func (r *Registry) ParentOf(frameID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.frames[frameID]
	if !ok {
		return "", &UnknownFrameError{FrameID: frameID}
	}
	return f.ParentID, nil
}

// ByOrdinal finds the frame assigned a given ordinal.
func (r *Registry) ByOrdinal(ordinal int) (Frame, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.frames {
		if f.Ordinal == ordinal {
			return *f, nil
		}
	}
	return Frame{}, &UnknownFrameError{FrameID: fmt.Sprintf("ordinal %d", ordinal)}
}

// Frames returns all registered frames ordered by ordinal.
func (r *Registry) Frames() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Frame, 0, len(r.frames))
	for _, f := range r.frames {
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ordinal < out[j].Ordinal })
	return out
}
