// Package asset defines asset identifiers and the collaborator contracts of
// the external fungible and non-fungible ledgers the auction engine settles
// against.
package asset

import (
	"context"
	"errors"
	"fmt"

	"github.com/clearbid/auctiond/internal/core/account"
)

// Class identifies a class of non-fungible assets (a collection).
type Class string

// Key identifies a single non-fungible asset: one unit of a class.
type Key struct {
	Class Class
	ID    uint64
}

// String renders the key as "class/id".
func (k Key) String() string {
	return fmt.Sprintf("%s/%d", k.Class, k.ID)
}

var (
	// ErrTransferFailed is the base error for any ledger transfer that did
	// not complete. Ledger implementations wrap it so callers can detect
	// transfer failure regardless of backend.
	ErrTransferFailed = errors.New("transfer failed")

	// ErrUnknownAsset is returned when a non-fungible asset does not exist.
	ErrUnknownAsset = errors.New("unknown asset")

	// ErrInsufficientFunds is returned by fungible transfers that exceed
	// the source balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNotOwner is returned by custody transfers where from is not the
	// current holder.
	ErrNotOwner = errors.New("account does not hold asset")
)

// FungibleLedger is the payment-asset ledger the engine moves bid deposits,
// refunds, and settlement proceeds through. The escrow account is fixed by
// the ledger implementation; TransferIn moves funds from an account into
// escrow and TransferOut releases escrowed funds to an account. Every call
// either completes synchronously or returns an error wrapping
// ErrTransferFailed, in which case the caller must abort the whole operation.
type FungibleLedger interface {
	// TransferIn pulls amount from the given account into escrow.
	TransferIn(ctx context.Context, from account.ID, amount uint64) error

	// TransferOut releases amount from escrow to the given account.
	TransferOut(ctx context.Context, to account.ID, amount uint64) error

	// BalanceOf reports the spendable balance of an account.
	BalanceOf(ctx context.Context, acct account.ID) (uint64, error)
}

// NonFungibleLedger is the asset ledger the engine moves auctioned assets
// through. Custody transfers fail closed: on error nothing moved.
type NonFungibleLedger interface {
	// TransferCustody moves the asset from one holder to another. It fails
	// with an error wrapping ErrTransferFailed (or ErrNotOwner) if from is
	// not the current holder.
	TransferCustody(ctx context.Context, from, to account.ID, key Key) error

	// OwnerOf reports the current holder of the asset.
	OwnerOf(ctx context.Context, key Key) (account.ID, error)
}

// BalanceSource is the subset of FungibleLedger needed for exemption checks.
// The exemption asset lives on its own ledger, so fee policies take this
// narrow view rather than a full payment ledger.
type BalanceSource interface {
	BalanceOf(ctx context.Context, acct account.ID) (uint64, error)
}
