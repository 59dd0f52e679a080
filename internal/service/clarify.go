package service

import (
	"sync"
	"time"

	"mentrachess/internal/voice"
)

// ClarifyRegistry holds at most one pending clarification per game. A game
// with no entry is in the normal state; a game with an entry is awaiting
// the speaker's selection. Expiry timers are explicit per-game objects
// owned here, not ambient globals: when one fires the candidate list is
// discarded and the game simply returns to normal, with no move executed.
type ClarifyRegistry struct {
	mu      sync.Mutex
	pending map[string]*pendingClarification
}

type pendingClarification struct {
	data  *voice.ClarificationData
	timer *time.Timer
}

func NewClarifyRegistry() *ClarifyRegistry {
	return &ClarifyRegistry{
		pending: make(map[string]*pendingClarification),
	}
}

// Put stores the candidate list for a game, replacing any previous one,
// and arms the expiry timer.
func (r *ClarifyRegistry) Put(gameID string, data *voice.ClarificationData, ttl time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.pending[gameID]; ok {
		prev.timer.Stop()
	}

	entry := &pendingClarification{data: data}
	entry.timer = time.AfterFunc(ttl, func() {
		r.expire(gameID, entry)
	})
	r.pending[gameID] = entry
}

// Get returns the pending clarification for a game, if any.
func (r *ClarifyRegistry) Get(gameID string) (*voice.ClarificationData, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.pending[gameID]
	if !ok {
		return nil, false
	}
	return entry.data, true
}

// Resolve removes and returns the pending clarification, cancelling its
// timer. Called when a selection has been accepted.
func (r *ClarifyRegistry) Resolve(gameID string) (*voice.ClarificationData, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.pending[gameID]
	if !ok {
		return nil, false
	}
	entry.timer.Stop()
	delete(r.pending, gameID)
	return entry.data, true
}

// Discard drops any pending clarification without executing anything.
func (r *ClarifyRegistry) Discard(gameID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.pending[gameID]; ok {
		entry.timer.Stop()
		delete(r.pending, gameID)
	}
}

// expire is the timer callback. The entry comparison guards against a
// replacement racing the old timer.
func (r *ClarifyRegistry) expire(gameID string, entry *pendingClarification) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.pending[gameID]; ok && current == entry {
		delete(r.pending, gameID)
	}
}

// Shutdown stops all timers and clears the registry.
func (r *ClarifyRegistry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, entry := range r.pending {
		entry.timer.Stop()
		delete(r.pending, id)
	}
}
