package notify

import (
	"sync"
)

// Registry is the volatile map from user ID to that user's live push
// channel. It is owned by the process: every API instance has its own, so a
// user connected to another instance simply misses the live push and reads
// the durable notification log instead.
//
// At most one channel per user. A reconnect replaces the previous entry
// without telling the displaced session; the old session discovers the
// eviction when its own read loop dies.
type Registry struct {
	mu    sync.Mutex
	conns map[string]chan []byte
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]chan []byte),
	}
}

// Register installs ch as the live channel for userID, silently replacing
// any existing entry.
func (r *Registry) Register(userID string, ch chan []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[userID] = ch
}

// Remove deletes the entry for userID, but only if it still points at ch.
// A session tearing down after being replaced by a reconnect must not evict
// its replacement.
func (r *Registry) Remove(userID string, ch chan []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.conns[userID]; ok && current == ch {
		delete(r.conns, userID)
	}
}

// Deliver attempts a non-blocking push to userID's live channel.
// Returns false, never an error, when the user has no connection or the
// channel's buffer is full (a stalled or dead session); a full channel is
// also deregistered so the next delivery short-circuits.
func (r *Registry) Deliver(userID string, payload []byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch, ok := r.conns[userID]
	if !ok {
		return false
	}

	select {
	case ch <- payload:
		return true
	default:
		// The session's writer stopped draining. Drop the entry; the
		// session cleans up its own goroutines when the socket dies.
		delete(r.conns, userID)
		return false
	}
}

// Connected reports whether userID currently has a live channel.
func (r *Registry) Connected(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.conns[userID]
	return ok
}
