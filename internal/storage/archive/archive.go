// Package archive persists settlement history. The live auction state only
// remembers what is still open; the archive is the durable record of every
// closed auction, kept in a relational store for reporting.
package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/ugorji/go/codec"

	"github.com/clearbid/auctiond/internal/core/account"
	"github.com/clearbid/auctiond/internal/core/asset"
	"github.com/clearbid/auctiond/internal/core/auction"
	"github.com/clearbid/auctiond/internal/logging"
	"github.com/clearbid/auctiond/internal/storage/compression"
)

// Settlement is the archived record of one closed auction: a sale, an
// unsold expiry, or a cancellation.
type Settlement struct {
	// Seq is the archive-assigned sequence number, ascending in
	// settlement order. Zero until recorded.
	Seq uint64 `codec:"seq"`

	// Asset is the auctioned asset.
	Asset asset.Key `codec:"asset"`

	// Seller listed the asset.
	Seller account.ID `codec:"seller"`

	// Winner took the asset on a sale; zero when unsold.
	Winner account.ID `codec:"winner"`

	// Sold reports whether the auction closed with a winning bid.
	Sold bool `codec:"sold"`

	// FinalPrice is the winning price; zero when unsold.
	FinalPrice uint64 `codec:"finalPrice"`

	// AccruedFee is the service fee total collected over the auction's
	// refunded bids.
	AccruedFee uint64 `codec:"accruedFee"`

	// ListedAt and EndedAt are the listing's lifecycle bounds in unix
	// seconds. EndedAt is the deadline in force at settlement.
	ListedAt uint64 `codec:"listedAt"`
	EndedAt  uint64 `codec:"endedAt"`

	// SettledAt is when the settlement was recorded.
	SettledAt time.Time `codec:"settledAt"`
}

// Recipient is where the asset went: the winner on a sale, the seller
// otherwise.
func (s *Settlement) Recipient() account.ID {
	if s.Sold {
		return s.Winner
	}
	return s.Seller
}

// Archiver is the durable settlement log.
type Archiver interface {
	// Record appends one settlement and assigns its sequence number.
	Record(ctx context.Context, s *Settlement) error

	// Recent returns up to limit settlements, newest first.
	Recent(ctx context.Context, limit int) ([]Settlement, error)

	// Close releases the underlying store.
	Close() error
}

var detailCodecHandle = func() *codec.CborHandle {
	var h codec.CborHandle
	h.Canonical = true
	return &h
}()

// EncodeDetail serializes a settlement into the compressed detail frame
// stored alongside the queryable columns.
func EncodeDetail(s *Settlement) ([]byte, error) {
	var buf []byte
	enc := codec.NewEncoderBytes(&buf, detailCodecHandle)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encode settlement: %w", err)
	}
	return compression.Compress(buf)
}

// DecodeDetail reverses EncodeDetail.
func DecodeDetail(frame []byte) (*Settlement, error) {
	raw, err := compression.Decompress(frame)
	if err != nil {
		return nil, fmt.Errorf("settlement detail: %w", err)
	}
	var s Settlement
	dec := codec.NewDecoderBytes(raw, detailCodecHandle)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode settlement: %w", err)
	}
	return &s, nil
}

// Notifier adapts an Archiver into an auction.Notifier: every withdrawal
// event becomes an archived settlement. Archive failures are logged, never
// surfaced, since the settlement itself has already committed.
type Notifier struct {
	archiver Archiver
	clock    auction.Clock
	log      logging.Logger
}

// NewNotifier builds the archiving notifier. A nil clock defaults to the
// system clock.
func NewNotifier(a Archiver, clock auction.Clock, log logging.Logger) *Notifier {
	if clock == nil {
		clock = auction.SystemClock{}
	}
	if log == nil {
		log = logging.Disabled
	}
	return &Notifier{archiver: a, clock: clock, log: log}
}

func (n *Notifier) AllowListChanged(asset.Class, bool)                   {}
func (n *Notifier) ServiceConfigChanged(auction.ServiceConfig)           {}
func (n *Notifier) BidPlaced(asset.Key, account.ID, uint64, uint64)      {}
func (n *Notifier) AssetDeposited(asset.Key, account.ID, uint64, uint64) {}

func (n *Notifier) AssetWithdrawn(key asset.Key, to account.ID, sold bool, finalPrice uint64, closed auction.Listing) {
	s := &Settlement{
		Asset:      key,
		Seller:     closed.Seller,
		Sold:       sold,
		FinalPrice: finalPrice,
		AccruedFee: closed.AccruedFee,
		ListedAt:   closed.ListedAt,
		EndedAt:    closed.EndsAt,
		SettledAt:  n.clock.Now().UTC(),
	}
	if sold {
		s.Winner = to
	}
	if err := n.archiver.Record(context.Background(), s); err != nil {
		n.log.Errorf("archive settlement %s: %v", key, err)
	}
}
