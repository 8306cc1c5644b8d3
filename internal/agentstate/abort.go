package agentstate

import "sync"

// AbortHandle is a single cancellation token shared by every suspension
// point in an agent's current turn (spec §3 "abortHandle"). Grounded on
// the teacher's session.ActiveSession.AbortCh channel-close pattern,
// wrapped so repeated Abort calls are safe and Done is always valid to
// select on even before the first turn starts.
type AbortHandle struct {
	mu      sync.Mutex
	ch      chan struct{}
	aborted bool
}

// NewAbortHandle returns a fresh, non-aborted handle.
func NewAbortHandle() *AbortHandle {
	return &AbortHandle{ch: make(chan struct{})}
}

// Abort signals cancellation. Safe to call more than once.
func (h *AbortHandle) Abort() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.aborted {
		return
	}
	h.aborted = true
	close(h.ch)
}

// Done returns a channel closed once Abort has been called.
func (h *AbortHandle) Done() <-chan struct{} {
	return h.ch
}

// IsAborted reports whether Abort has been called.
func (h *AbortHandle) IsAborted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.aborted
}
