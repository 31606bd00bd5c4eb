package auction

import "sync"

// Guard is the single shared reentrancy lock. Every mutating entry point
// acquires it on entry; a second acquisition while held fails immediately
// rather than blocking, so a ledger callback re-entering the engine is
// rejected instead of deadlocking or double-spending.
type Guard struct {
	mu sync.Mutex
}

// TryAcquire takes the guard, reporting false if it is already held.
func (g *Guard) TryAcquire() bool {
	return g.mu.TryLock()
}

// Release frees the guard. It must only be called after a successful
// TryAcquire.
func (g *Guard) Release() {
	g.mu.Unlock()
}
