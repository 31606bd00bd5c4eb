package auction

import (
	"errors"
	"fmt"

	"github.com/ugorji/go/codec"
)

// Bounds enforced on admin configuration changes.
const (
	// MaxFeeRatePercent caps the service fee rate.
	MaxFeeRatePercent = 100

	// MaxBidIncreaseRatePercent caps the minimum-increment rate.
	MaxBidIncreaseRatePercent = 1000
)

// ErrBadServiceConfig is returned for out-of-range configuration values.
var ErrBadServiceConfig = errors.New("invalid service configuration")

// ServiceConfig holds the mutable auction parameters. It is a process-wide
// singleton read by every bid; changes take effect immediately for all
// listings, including refund fees on bids deposited under a prior
// configuration.
type ServiceConfig struct {
	// FeeRatePercent is the service fee skimmed from refunded bids,
	// integer percent with floor division.
	FeeRatePercent uint64 `codec:"feeRatePercent"`

	// BidIncreaseRatePercent sets the minimum increment: the next
	// acceptable price is currentPrice + currentPrice*rate/100.
	BidIncreaseRatePercent uint64 `codec:"bidIncreaseRatePercent"`

	// ExtensionDuration is how far EndsAt moves forward on a late bid,
	// in seconds.
	ExtensionDuration uint64 `codec:"extensionDuration"`

	// ExtensionWindow is how close to EndsAt a bid must land to trigger
	// the extension, in seconds.
	ExtensionWindow uint64 `codec:"extensionWindow"`
}

// DefaultServiceConfig returns the parameters used until an admin sets
// others.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		FeeRatePercent:         2,
		BidIncreaseRatePercent: 3,
		ExtensionDuration:      1200,
		ExtensionWindow:        600,
	}
}

// Validate range-checks the configuration.
func (c *ServiceConfig) Validate() error {
	if c.FeeRatePercent > MaxFeeRatePercent {
		return fmt.Errorf("%w: fee rate %d%% exceeds %d%%", ErrBadServiceConfig,
			c.FeeRatePercent, MaxFeeRatePercent)
	}
	if c.BidIncreaseRatePercent > MaxBidIncreaseRatePercent {
		return fmt.Errorf("%w: bid increase rate %d%% exceeds %d%%", ErrBadServiceConfig,
			c.BidIncreaseRatePercent, MaxBidIncreaseRatePercent)
	}
	// An extension window without a duration (or vice versa) would make
	// late bids extend by nothing or never trigger.
	if (c.ExtensionWindow == 0) != (c.ExtensionDuration == 0) {
		return fmt.Errorf("%w: extension window and duration must both be set or both be zero",
			ErrBadServiceConfig)
	}
	return nil
}

// NextPrice computes the minimum acceptable next bid over current.
func (c *ServiceConfig) NextPrice(current uint64) uint64 {
	return current + current*c.BidIncreaseRatePercent/100
}

// EncodeServiceConfig serializes the configuration for storage.
func EncodeServiceConfig(c *ServiceConfig) ([]byte, error) {
	var buf []byte
	enc := codec.NewEncoderBytes(&buf, listingCodecHandle)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encode service config: %w", err)
	}
	return buf, nil
}

// DecodeServiceConfig deserializes the configuration from storage.
func DecodeServiceConfig(data []byte) (*ServiceConfig, error) {
	var c ServiceConfig
	dec := codec.NewDecoderBytes(data, listingCodecHandle)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode service config: %w", err)
	}
	return &c, nil
}
