package authz

import (
	"context"
	"sync"
	"time"

	"github.com/clearbid/auctiond/internal/core/account"
	"github.com/clearbid/auctiond/internal/core/auction"
)

// pendingKey identifies one scheduled grant.
type pendingKey struct {
	caller account.ID
	action auction.Action
}

// PendingAction describes a scheduled grant awaiting its delay.
type PendingAction struct {
	Caller  account.ID
	Action  auction.Action
	ReadyAt time.Time
}

// DelayedAuthorizer wraps another authorizer with a two-phase timelock. The
// first authorized attempt schedules the action and answers no; attempts
// after the delay has elapsed answer yes exactly once. Callers denied by
// the inner authorizer never enter the schedule.
type DelayedAuthorizer struct {
	inner auction.Authorizer
	delay time.Duration
	clock auction.Clock

	mu      sync.Mutex
	pending map[pendingKey]time.Time
}

// NewDelayedAuthorizer wraps inner with the given grant delay. A nil clock
// defaults to the system clock.
func NewDelayedAuthorizer(inner auction.Authorizer, delay time.Duration, clock auction.Clock) *DelayedAuthorizer {
	if clock == nil {
		clock = auction.SystemClock{}
	}
	return &DelayedAuthorizer{
		inner:   inner,
		delay:   delay,
		clock:   clock,
		pending: make(map[pendingKey]time.Time),
	}
}

// IsAuthorized implements auction.Authorizer.
func (d *DelayedAuthorizer) IsAuthorized(ctx context.Context, caller account.ID, action auction.Action) (bool, error) {
	ok, err := d.inner.IsAuthorized(ctx, caller, action)
	if err != nil || !ok {
		return false, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	key := pendingKey{caller: caller, action: action}
	now := d.clock.Now()
	readyAt, scheduled := d.pending[key]
	if !scheduled {
		d.pending[key] = now.Add(d.delay)
		return false, nil
	}
	if now.Before(readyAt) {
		return false, nil
	}
	delete(d.pending, key)
	return true, nil
}

// Cancel drops a scheduled grant, reporting whether one existed.
func (d *DelayedAuthorizer) Cancel(caller account.ID, action auction.Action) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := pendingKey{caller: caller, action: action}
	_, ok := d.pending[key]
	delete(d.pending, key)
	return ok
}

// Pending lists the scheduled grants still awaiting their delay.
func (d *DelayedAuthorizer) Pending() []PendingAction {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]PendingAction, 0, len(d.pending))
	for key, readyAt := range d.pending {
		out = append(out, PendingAction{Caller: key.caller, Action: key.action, ReadyAt: readyAt})
	}
	return out
}
