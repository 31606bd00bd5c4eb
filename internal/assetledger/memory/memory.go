// Package memory provides in-process reference implementations of the
// fungible and non-fungible asset ledgers. The standalone daemon uses them
// as its payment and custody backends; tests use them to observe
// conservation of funds.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/clearbid/auctiond/internal/core/account"
	"github.com/clearbid/auctiond/internal/core/asset"
)

// FungibleLedger is a balance map with a fixed escrow account. Transfers
// fail closed: on error no balance moved.
type FungibleLedger struct {
	mu       sync.Mutex
	escrow   account.ID
	balances map[account.ID]uint64
}

// NewFungibleLedger creates a ledger whose escrow side of TransferIn and
// TransferOut is the given account.
func NewFungibleLedger(escrow account.ID) *FungibleLedger {
	return &FungibleLedger{
		escrow:   escrow,
		balances: make(map[account.ID]uint64),
	}
}

// Mint credits an account out of thin air. Genesis and test setup only.
func (l *FungibleLedger) Mint(acct account.ID, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[acct] += amount
}

// TransferIn implements asset.FungibleLedger.
func (l *FungibleLedger) TransferIn(_ context.Context, from account.ID, amount uint64) error {
	return l.move(from, l.escrow, amount)
}

// TransferOut implements asset.FungibleLedger.
func (l *FungibleLedger) TransferOut(_ context.Context, to account.ID, amount uint64) error {
	return l.move(l.escrow, to, amount)
}

// BalanceOf implements asset.FungibleLedger.
func (l *FungibleLedger) BalanceOf(_ context.Context, acct account.ID) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[acct], nil
}

func (l *FungibleLedger) move(from, to account.ID, amount uint64) error {
	if from.IsZero() || to.IsZero() {
		return fmt.Errorf("%w: zero account", asset.ErrTransferFailed)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[from] < amount {
		return fmt.Errorf("%w: %s has %d, needs %d: %w",
			asset.ErrTransferFailed, from, l.balances[from], amount, asset.ErrInsufficientFunds)
	}
	l.balances[from] -= amount
	l.balances[to] += amount
	return nil
}

// NonFungibleLedger is an owner map per asset key. Custody transfers from a
// non-holder fail closed.
type NonFungibleLedger struct {
	mu     sync.Mutex
	owners map[asset.Key]account.ID
}

// NewNonFungibleLedger creates an empty custody ledger.
func NewNonFungibleLedger() *NonFungibleLedger {
	return &NonFungibleLedger{owners: make(map[asset.Key]account.ID)}
}

// Mint creates an asset owned by acct. Genesis and test setup only.
func (l *NonFungibleLedger) Mint(key asset.Key, acct account.ID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.owners[key] = acct
}

// TransferCustody implements asset.NonFungibleLedger.
func (l *NonFungibleLedger) TransferCustody(_ context.Context, from, to account.ID, key asset.Key) error {
	if to.IsZero() {
		return fmt.Errorf("%w: zero destination", asset.ErrTransferFailed)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	owner, ok := l.owners[key]
	if !ok {
		return fmt.Errorf("%w: %s: %w", asset.ErrTransferFailed, key, asset.ErrUnknownAsset)
	}
	if owner != from {
		return fmt.Errorf("%w: %s held by %s, not %s: %w",
			asset.ErrTransferFailed, key, owner, from, asset.ErrNotOwner)
	}
	l.owners[key] = to
	return nil
}

// OwnerOf implements asset.NonFungibleLedger.
func (l *NonFungibleLedger) OwnerOf(_ context.Context, key asset.Key) (account.ID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	owner, ok := l.owners[key]
	if !ok {
		return account.Zero, fmt.Errorf("%s: %w", key, asset.ErrUnknownAsset)
	}
	return owner, nil
}
