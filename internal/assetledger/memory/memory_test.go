package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clearbid/auctiond/internal/core/account"
	"github.com/clearbid/auctiond/internal/core/asset"
)

var (
	escrow = account.FromPubKey([]byte("escrow"))
	alice  = account.FromPubKey([]byte("alice"))
	bob    = account.FromPubKey([]byte("bob"))
)

func TestFungibleTransfers(t *testing.T) {
	ctx := context.Background()
	l := NewFungibleLedger(escrow)
	l.Mint(alice, 100)

	require.NoError(t, l.TransferIn(ctx, alice, 60))

	bal, err := l.BalanceOf(ctx, alice)
	require.NoError(t, err)
	require.EqualValues(t, 40, bal)

	bal, err = l.BalanceOf(ctx, escrow)
	require.NoError(t, err)
	require.EqualValues(t, 60, bal)

	require.NoError(t, l.TransferOut(ctx, bob, 60))
	bal, err = l.BalanceOf(ctx, bob)
	require.NoError(t, err)
	require.EqualValues(t, 60, bal)
}

func TestFungibleFailsClosed(t *testing.T) {
	ctx := context.Background()
	l := NewFungibleLedger(escrow)
	l.Mint(alice, 10)

	err := l.TransferIn(ctx, alice, 11)
	require.ErrorIs(t, err, asset.ErrTransferFailed)
	require.ErrorIs(t, err, asset.ErrInsufficientFunds)

	// Nothing moved.
	bal, err2 := l.BalanceOf(ctx, alice)
	require.NoError(t, err2)
	require.EqualValues(t, 10, bal)

	err = l.TransferIn(ctx, account.Zero, 1)
	require.ErrorIs(t, err, asset.ErrTransferFailed)
}

func TestCustodyTransfers(t *testing.T) {
	ctx := context.Background()
	l := NewNonFungibleLedger()
	key := asset.Key{Class: "art", ID: 7}
	l.Mint(key, alice)

	require.NoError(t, l.TransferCustody(ctx, alice, escrow, key))

	owner, err := l.OwnerOf(ctx, key)
	require.NoError(t, err)
	require.Equal(t, escrow, owner)

	// Transfer by a non-holder fails closed.
	err = l.TransferCustody(ctx, alice, bob, key)
	require.ErrorIs(t, err, asset.ErrNotOwner)
	owner, err = l.OwnerOf(ctx, key)
	require.NoError(t, err)
	require.Equal(t, escrow, owner)

	// Unknown asset.
	err = l.TransferCustody(ctx, alice, bob, asset.Key{Class: "art", ID: 8})
	require.ErrorIs(t, err, asset.ErrUnknownAsset)
}
