package archive

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clearbid/auctiond/internal/core/account"
	"github.com/clearbid/auctiond/internal/core/asset"
	"github.com/clearbid/auctiond/internal/core/auction"
)

// capturingArchiver records settlements in memory.
type capturingArchiver struct {
	recorded []Settlement
}

func (c *capturingArchiver) Record(_ context.Context, s *Settlement) error {
	s.Seq = uint64(len(c.recorded) + 1)
	c.recorded = append(c.recorded, *s)
	return nil
}

func (c *capturingArchiver) Recent(_ context.Context, limit int) ([]Settlement, error) {
	return nil, nil
}

func (c *capturingArchiver) Close() error { return nil }

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func TestNotifierRecordsClosedListing(t *testing.T) {
	seller := account.FromPubKey([]byte("seller"))
	winner := account.FromPubKey([]byte("winner"))
	key := asset.Key{Class: "art", ID: 9}
	now := time.Unix(1_700_000_000, 0).UTC()

	arch := &capturingArchiver{}
	n := NewNotifier(arch, fixedClock{now: now}, nil)

	closed := auction.Listing{
		Seller:       seller,
		LastBidder:   winner,
		ListedAt:     1_699_990_000,
		EndsAt:       1_699_999_000,
		StartPrice:   100,
		CurrentPrice: 106,
		AccruedFee:   2,
		Status:       auction.StatusActive,
	}
	n.AssetWithdrawn(key, winner, true, 106, closed)

	require.Len(t, arch.recorded, 1)
	s := arch.recorded[0]
	require.Equal(t, key, s.Asset)
	require.Equal(t, seller, s.Seller)
	require.Equal(t, winner, s.Winner)
	require.True(t, s.Sold)
	require.EqualValues(t, 106, s.FinalPrice)
	require.EqualValues(t, 2, s.AccruedFee)
	require.EqualValues(t, 1_699_990_000, s.ListedAt)
	require.EqualValues(t, 1_699_999_000, s.EndedAt)
	require.Equal(t, now, s.SettledAt)
	require.Equal(t, winner, s.Recipient())
}

func TestNotifierUnsoldHasNoWinner(t *testing.T) {
	seller := account.FromPubKey([]byte("seller"))
	key := asset.Key{Class: "art", ID: 10}

	arch := &capturingArchiver{}
	n := NewNotifier(arch, nil, nil)

	closed := auction.Listing{
		Seller:     seller,
		ListedAt:   1_699_990_100,
		EndsAt:     1_699_999_100,
		StartPrice: 100,
		Status:     auction.StatusActive,
	}
	n.AssetWithdrawn(key, seller, false, 0, closed)

	require.Len(t, arch.recorded, 1)
	s := arch.recorded[0]
	require.Equal(t, seller, s.Seller)
	require.True(t, s.Winner.IsZero())
	require.False(t, s.Sold)
	require.Equal(t, seller, s.Recipient())
}
