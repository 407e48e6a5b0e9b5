// Package block tracks per-username authentication lockouts.
package block

import (
	"sync"
	"time"

	"github.com/mcoot/bluetrace-go/internal/dependencies/clock"
)

// Registry records which usernames are locked out and until when. Entries are
// evicted lazily on lookup; there is no background sweep.
type Registry struct {
	clock clock.Clock

	mu      sync.Mutex
	blocked map[string]time.Time
}

// NewRegistry creates a new block registry
func NewRegistry(clock clock.Clock) *Registry {
	return &Registry{
		clock:   clock,
		blocked: make(map[string]time.Time),
	}
}

// IsBlocked reports whether the user's lockout is still in force. An entry
// whose unblock time has been reached is evicted under the same lock as the
// check, so a concurrent Block for the same user cannot race the eviction.
// At exactly the unblock time the user is no longer blocked.
func (r *Registry) IsBlocked(username string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	unblockAt, ok := r.blocked[username]
	if !ok {
		return false
	}
	if !unblockAt.After(r.clock.Now()) {
		delete(r.blocked, username)
		return false
	}
	return true
}

// Block locks the user out for the given duration from now, overwriting any
// existing entry.
func (r *Registry) Block(username string, duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blocked[username] = r.clock.Now().Add(duration)
}
