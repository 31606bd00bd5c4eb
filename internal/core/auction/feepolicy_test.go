package auction

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clearbid/auctiond/internal/core/account"
)

func TestFixedFeePolicy(t *testing.T) {
	ctx := context.Background()
	bidder := account.FromPubKey([]byte("someone"))

	tests := []struct {
		price uint64
		rate  uint64
		want  uint64
	}{
		{price: 100, rate: 2, want: 2},
		{price: 103, rate: 2, want: 2},   // floor of 2.06
		{price: 149, rate: 2, want: 2},   // floor of 2.98
		{price: 49, rate: 2, want: 0},    // floor of 0.98
		{price: 1000, rate: 0, want: 0},  // fee disabled
		{price: 200, rate: 100, want: 200},
	}
	for _, tc := range tests {
		fee, err := FixedFeePolicy{}.ComputeFee(ctx, tc.price, tc.rate, bidder)
		require.NoError(t, err)
		require.Equal(t, tc.want, fee, "price=%d rate=%d", tc.price, tc.rate)
	}
}

type failingBalances struct{}

func (failingBalances) BalanceOf(context.Context, account.ID) (uint64, error) {
	return 0, errors.New("ledger unreachable")
}

func TestExemptFeePolicyHoldings(t *testing.T) {
	ctx := context.Background()
	holder := account.FromPubKey([]byte("holder"))
	other := account.FromPubKey([]byte("other"))

	holdings := &exemptBalances{holdings: map[account.ID]uint64{holder: 1}}
	policy := ExemptFeePolicy{Holdings: holdings}

	fee, err := policy.ComputeFee(ctx, 103, 2, holder)
	require.NoError(t, err)
	require.EqualValues(t, 0, fee)

	fee, err = policy.ComputeFee(ctx, 103, 2, other)
	require.NoError(t, err)
	require.EqualValues(t, 2, fee)

	// A failing holdings query propagates rather than silently charging.
	_, err = ExemptFeePolicy{Holdings: failingBalances{}}.ComputeFee(ctx, 103, 2, other)
	require.Error(t, err)
}
