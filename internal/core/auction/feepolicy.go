package auction

import (
	"context"
	"fmt"

	"github.com/clearbid/auctiond/internal/core/account"
	"github.com/clearbid/auctiond/internal/core/asset"
)

// FeePolicy computes the service fee owed on a refunded bid. The rate comes
// from the service configuration in effect at refund time, not at bid time.
type FeePolicy interface {
	// ComputeFee returns the fee skimmed from a refund of price to bidder.
	ComputeFee(ctx context.Context, price, ratePercent uint64, bidder account.ID) (uint64, error)
}

// FixedFeePolicy charges price*rate/100 with integer floor division,
// unconditionally.
type FixedFeePolicy struct{}

// ComputeFee implements FeePolicy.
func (FixedFeePolicy) ComputeFee(_ context.Context, price, ratePercent uint64, _ account.ID) (uint64, error) {
	return price * ratePercent / 100, nil
}

// ExemptFeePolicy waives the fee for holders of a designated exemption
// asset. The holding is queried at the moment of the refund computation, so
// a bidder's exemption status can change between bidding and being refunded.
type ExemptFeePolicy struct {
	// Holdings is the ledger of the exemption asset.
	Holdings asset.BalanceSource
}

// ComputeFee implements FeePolicy.
func (p ExemptFeePolicy) ComputeFee(ctx context.Context, price, ratePercent uint64, bidder account.ID) (uint64, error) {
	balance, err := p.Holdings.BalanceOf(ctx, bidder)
	if err != nil {
		return 0, fmt.Errorf("exemption balance query: %w", err)
	}
	if balance > 0 {
		return 0, nil
	}
	return price * ratePercent / 100, nil
}
