package auction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clearbid/auctiond/internal/core/account"
	"github.com/clearbid/auctiond/internal/core/asset"
	storemem "github.com/clearbid/auctiond/internal/storage/keyValueDb/memory"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(storemem.NewDB())
	require.NoError(t, err)
	return s
}

func TestStoreListingRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	key := asset.Key{Class: "art", ID: 7}

	// Unknown keys read as the Inactive zero record.
	got, err := s.GetListing(ctx, key)
	require.NoError(t, err)
	require.Equal(t, &Listing{}, got)

	want := &Listing{
		Seller:       account.FromPubKey([]byte("seller")),
		LastBidder:   account.FromPubKey([]byte("bidder")),
		ListedAt:     1_700_000_000,
		EndsAt:       1_700_003_600,
		StartPrice:   100,
		CurrentPrice: 106,
		AccruedFee:   2,
		Status:       StatusActive,
	}
	require.NoError(t, s.PutListing(ctx, key, want))

	got, err = s.GetListing(ctx, key)
	require.NoError(t, err)
	require.Equal(t, want, got)

	// The cache hands out copies, not aliases of the stored record.
	got.CurrentPrice = 9999
	again, err := s.GetListing(ctx, key)
	require.NoError(t, err)
	require.EqualValues(t, 106, again.CurrentPrice)

	require.NoError(t, s.DeleteListing(ctx, key))
	got, err = s.GetListing(ctx, key)
	require.NoError(t, err)
	require.Equal(t, &Listing{}, got)
}

func TestStoreListingSurvivesCacheMiss(t *testing.T) {
	ctx := context.Background()
	db := storemem.NewDB()
	s, err := NewStore(db)
	require.NoError(t, err)

	key := asset.Key{Class: "art", ID: 8}
	want := &Listing{Seller: account.FromPubKey([]byte("s")), Status: StatusActive, StartPrice: 1, CurrentPrice: 1, EndsAt: 10}
	require.NoError(t, s.PutListing(ctx, key, want))

	// A fresh Store over the same backend has a cold cache and must
	// decode from disk.
	fresh, err := NewStore(db)
	require.NoError(t, err)
	got, err := fresh.GetListing(ctx, key)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestStoreAllowList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	allowed, err := s.IsAllowed(ctx, "art")
	require.NoError(t, err)
	require.False(t, allowed)

	changed, err := s.SetAllowed(ctx, "art", true)
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = s.SetAllowed(ctx, "art", true)
	require.NoError(t, err)
	require.False(t, changed)

	allowed, err = s.IsAllowed(ctx, "art")
	require.NoError(t, err)
	require.True(t, allowed)

	changed, err = s.SetAllowed(ctx, "art", false)
	require.NoError(t, err)
	require.True(t, changed)

	allowed, err = s.IsAllowed(ctx, "art")
	require.NoError(t, err)
	require.False(t, allowed)
}

func TestStoreServiceConfig(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	cfg, err := s.GetServiceConfig(ctx)
	require.NoError(t, err)
	require.Equal(t, DefaultServiceConfig(), cfg)

	want := ServiceConfig{FeeRatePercent: 5, BidIncreaseRatePercent: 10, ExtensionDuration: 300, ExtensionWindow: 60}
	require.NoError(t, s.PutServiceConfig(ctx, want))

	cfg, err = s.GetServiceConfig(ctx)
	require.NoError(t, err)
	require.Equal(t, want, cfg)
}

func TestStoreEnsureServiceConfig(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	// First write lands on the empty store.
	initial := ServiceConfig{FeeRatePercent: 5, BidIncreaseRatePercent: 10, ExtensionDuration: 300, ExtensionWindow: 60}
	written, err := s.EnsureServiceConfig(ctx, initial)
	require.NoError(t, err)
	require.True(t, written)

	cfg, err := s.GetServiceConfig(ctx)
	require.NoError(t, err)
	require.Equal(t, initial, cfg)

	// A later ensure must not clobber what is stored.
	written, err = s.EnsureServiceConfig(ctx, ServiceConfig{FeeRatePercent: 50})
	require.NoError(t, err)
	require.False(t, written)

	cfg, err = s.GetServiceConfig(ctx)
	require.NoError(t, err)
	require.Equal(t, initial, cfg)
}

func TestStoreFeeTotal(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	total, err := s.FeeTotal(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 0, total)

	require.NoError(t, s.AddFeeTotal(ctx, 2))
	require.NoError(t, s.AddFeeTotal(ctx, 0))
	require.NoError(t, s.AddFeeTotal(ctx, 40))

	total, err = s.FeeTotal(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 42, total)
}
