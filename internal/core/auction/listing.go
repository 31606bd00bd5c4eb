package auction

import (
	"fmt"

	"github.com/ugorji/go/codec"

	"github.com/clearbid/auctiond/internal/core/account"
)

// Status is the lifecycle state of a listing.
type Status uint8

const (
	// StatusInactive means no auction exists for the key. All other
	// listing fields are zero.
	StatusInactive Status = iota

	// StatusActive means the asset is held in escrow and the auction is
	// open or awaiting finalization.
	StatusActive
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusInactive:
		return "inactive"
	case StatusActive:
		return "active"
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// Listing is the escrow record for one asset under auction.
//
// Invariants:
//   - StatusInactive implies every other field is zero.
//   - StatusActive implies the asset is in escrow custody and CurrentPrice
//     equals the amount deposited by LastBidder (or equals StartPrice with
//     no deposit when LastBidder is zero).
//   - EndsAt never decreases.
//   - CurrentPrice >= StartPrice.
type Listing struct {
	// Seller owns the auction while it is active.
	Seller account.ID `codec:"seller"`

	// LastBidder is the highest current bidder; zero if no bid yet.
	LastBidder account.ID `codec:"lastBidder"`

	// ListedAt and EndsAt are unix seconds.
	ListedAt uint64 `codec:"listedAt"`
	EndsAt   uint64 `codec:"endsAt"`

	StartPrice   uint64 `codec:"startPrice"`
	CurrentPrice uint64 `codec:"currentPrice"`

	// AccruedFee is the running total of service fee skimmed from
	// refunded bids, collected at finalization.
	AccruedFee uint64 `codec:"accruedFee"`

	Status Status `codec:"status"`
}

// HasBid reports whether at least one bid has been placed.
func (l *Listing) HasBid() bool {
	return !l.LastBidder.IsZero()
}

// IsActive reports whether the listing is live.
func (l *Listing) IsActive() bool {
	return l.Status == StatusActive
}

// Reset returns the listing to the all-zero Inactive form.
func (l *Listing) Reset() {
	*l = Listing{}
}

var listingCodecHandle = func() *codec.CborHandle {
	var h codec.CborHandle
	h.Canonical = true
	return &h
}()

// EncodeListing serializes a listing record for storage.
func EncodeListing(l *Listing) ([]byte, error) {
	var buf []byte
	enc := codec.NewEncoderBytes(&buf, listingCodecHandle)
	if err := enc.Encode(l); err != nil {
		return nil, fmt.Errorf("encode listing: %w", err)
	}
	return buf, nil
}

// DecodeListing deserializes a listing record from storage.
func DecodeListing(data []byte) (*Listing, error) {
	var l Listing
	dec := codec.NewDecoderBytes(data, listingCodecHandle)
	if err := dec.Decode(&l); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	return &l, nil
}
