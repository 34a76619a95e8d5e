package moor

import (
	"context"
	"sync"
)

// RecoverableState is a position in the Recoverable lifecycle DAG:
// Initializing -> Attached; Attached <-> Suspended (Suspend/Resume);
// Suspended -> Recovering -> Attached (RecoverAsync then Resume); any state
// -> Closed (terminal).
type RecoverableState int

const (
	StateInitializing RecoverableState = iota
	StateAttached
	StateSuspended
	StateRecovering
	StateClosed
)

func (s RecoverableState) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateAttached:
		return "attached"
	case StateSuspended:
		return "suspended"
	case StateRecovering:
		return "recovering"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Recoverable is any resource whose lifecycle must be re-established after a
// connection drop. The supervisor is the sole caller of Suspend, RecoverAsync,
// and Resume; application code only calls Close.
type Recoverable interface {
	// Suspend parks in-flight and future application operations. It must
	// not block on network I/O.
	Suspend()
	// RecoverAsync re-opens this recoverable's link against the new
	// connection. A returned error is treated by the supervisor as a
	// fresh connect-command.
	RecoverAsync(ctx context.Context, conn *Connection) error
	// Resume unparks application operations onto the newly recovered link.
	Resume()
	// Close tears the recoverable down permanently and removes it from
	// whatever registry holds it.
	Close() error
	// State reports the current lifecycle position, for diagnostics and
	// the supervisor's fast-path idempotence check.
	State() RecoverableState
}

// Registry is the set of producer/consumer handles attached to a logical
// connection. Add/Remove happen from application goroutines; the supervisor
// iterates a consistent snapshot. Additions concurrent with an in-progress
// iteration need not be visible until the next cycle.
type Registry struct {
	mu      sync.Mutex
	members map[Recoverable]struct{}
	notify  func()
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{members: make(map[Recoverable]struct{})}
}

// Add registers r. Safe to call concurrently with Snapshot.
func (reg *Registry) Add(r Recoverable) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.members[r] = struct{}{}
}

// Remove deregisters r. A double-Remove is a no-op, matching the "removed
// exactly once" invariant from the caller's perspective.
func (reg *Registry) Remove(r Recoverable) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.members, r)
}

// Snapshot returns a stable copy of the currently registered recoverables
// for the supervisor to iterate without holding the registry lock across
// Suspend/RecoverAsync/Resume calls.
func (reg *Registry) Snapshot() []Recoverable {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	out := make([]Recoverable, 0, len(reg.members))
	for r := range reg.members {
		out = append(out, r)
	}
	return out
}

// Len reports the number of currently registered recoverables.
func (reg *Registry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.members)
}

// SetReconnectNotifier installs the callback RequestReconnect invokes. Called
// once by a Supervisor at construction time to wire itself up as the
// registry's reconnect trigger, without the registry depending on the
// Supervisor type.
func (reg *Registry) SetReconnectNotifier(f func()) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.notify = f
}

// RequestReconnect asks whatever owns this registry to run a reconnect
// cycle. A no-op when no notifier is installed, so a bare Registry built
// without a Supervisor (as in tests) stays safe to use.
func (reg *Registry) RequestReconnect() {
	reg.mu.Lock()
	f := reg.notify
	reg.mu.Unlock()
	if f != nil {
		f()
	}
}
