// Package guard provides scoped cleanup handles with exactly-once semantics.
package guard

import "sync/atomic"

// Guard runs a cleanup function at most once. A dismissed guard never runs.
// The zero value and the nil guard are inert.
type Guard struct {
	fn   func()
	done atomic.Bool
}

// New arms a guard with the given cleanup function.
func New(fn func()) *Guard {
	return &Guard{fn: fn}
}

// Run executes the cleanup function if the guard is still armed.
// Subsequent calls are no-ops.
func (g *Guard) Run() {
	if g == nil || g.fn == nil {
		return
	}
	if g.done.CompareAndSwap(false, true) {
		g.fn()
	}
}

// Dismiss disarms the guard without running it. Typically called when
// ownership of the guarded resource transfers elsewhere. Idempotent.
func (g *Guard) Dismiss() {
	if g == nil {
		return
	}
	g.done.Store(true)
}

// Armed reports whether the guard would still run its cleanup.
func (g *Guard) Armed() bool {
	if g == nil {
		return false
	}
	return g.fn != nil && !g.done.Load()
}
