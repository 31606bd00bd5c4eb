package auction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	ledgermem "github.com/clearbid/auctiond/internal/assetledger/memory"
	"github.com/clearbid/auctiond/internal/core/account"
	"github.com/clearbid/auctiond/internal/core/asset"
	storemem "github.com/clearbid/auctiond/internal/storage/keyValueDb/memory"
)

var (
	escrow = account.FromPubKey([]byte("escrow"))
	admin  = account.FromPubKey([]byte("admin"))
	seller = account.FromPubKey([]byte("seller"))
	bidA   = account.FromPubKey([]byte("bidder-a"))
	bidB   = account.FromPubKey([]byte("bidder-b"))
	bidC   = account.FromPubKey([]byte("bidder-c"))
)

// adminOnly authorizes exactly one account for every action.
type adminOnly struct {
	id account.ID
}

func (a adminOnly) IsAuthorized(_ context.Context, caller account.ID, _ Action) (bool, error) {
	return caller == a.id, nil
}

// fakeClock is a settable time source.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

// recorder captures notifier events in order, plus the listing snapshots
// handed out at withdrawal.
type recorder struct {
	events []string
	closed []Listing
}

func (r *recorder) AllowListChanged(class asset.Class, allowed bool) {
	r.events = append(r.events, "allowlist")
}
func (r *recorder) ServiceConfigChanged(ServiceConfig) {
	r.events = append(r.events, "config")
}
func (r *recorder) BidPlaced(asset.Key, account.ID, uint64, uint64) {
	r.events = append(r.events, "bid")
}
func (r *recorder) AssetDeposited(asset.Key, account.ID, uint64, uint64) {
	r.events = append(r.events, "deposited")
}
func (r *recorder) AssetWithdrawn(_ asset.Key, _ account.ID, _ bool, _ uint64, closed Listing) {
	r.events = append(r.events, "withdrawn")
	r.closed = append(r.closed, closed)
}

type fixture struct {
	engine *Engine
	store  *Store
	funds  *ledgermem.FungibleLedger
	assets *ledgermem.NonFungibleLedger
	clock  *fakeClock
	events *recorder
	t0     time.Time
}

func newFixture(t *testing.T, fees FeePolicy) *fixture {
	t.Helper()

	store, err := NewStore(storemem.NewDB())
	require.NoError(t, err)

	funds := ledgermem.NewFungibleLedger(escrow)
	assets := ledgermem.NewNonFungibleLedger()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	events := &recorder{}

	engine, err := NewEngine(Params{
		Store:  store,
		Funds:  funds,
		Assets: assets,
		Fees:   fees,
		Auth:   adminOnly{id: admin},
		Notify: events,
		Clock:  clock,
		Escrow: escrow,
	})
	require.NoError(t, err)

	// Baseline parameters used throughout: 2% fee, 3% increment,
	// 1200s extension inside a 600s window.
	res := engine.SetServiceConfig(context.Background(), admin, ServiceConfig{
		FeeRatePercent:         2,
		BidIncreaseRatePercent: 3,
		ExtensionDuration:      1200,
		ExtensionWindow:        600,
	})
	require.True(t, res.Applied, res.Message)

	res = engine.SetAssetAllowed(context.Background(), admin, "art", true)
	require.True(t, res.Applied, res.Message)

	return &fixture{
		engine: engine,
		store:  store,
		funds:  funds,
		assets: assets,
		clock:  clock,
		events: events,
		t0:     clock.now,
	}
}

// list mints the asset for the seller and opens a one-hour auction at 100.
func (f *fixture) list(t *testing.T, key asset.Key) {
	t.Helper()
	f.assets.Mint(key, seller)
	res := f.engine.List(context.Background(), seller, key, 100, uint64(f.t0.Unix())+3600)
	require.Equal(t, Success, res.Result, res.Message)
}

func (f *fixture) balance(t *testing.T, acct account.ID) uint64 {
	t.Helper()
	bal, err := f.funds.BalanceOf(context.Background(), acct)
	require.NoError(t, err)
	return bal
}

func (f *fixture) owner(t *testing.T, key asset.Key) account.ID {
	t.Helper()
	owner, err := f.assets.OwnerOf(context.Background(), key)
	require.NoError(t, err)
	return owner
}

func TestListValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	key := asset.Key{Class: "art", ID: 1}
	f.assets.Mint(key, seller)
	endsAt := uint64(f.t0.Unix()) + 3600

	tests := []struct {
		name       string
		caller     account.ID
		key        asset.Key
		startPrice uint64
		endsAt     uint64
		want       Result
	}{
		{name: "empty class", caller: seller, key: asset.Key{ID: 1}, startPrice: 100, endsAt: endsAt, want: ResInvalidParams},
		{name: "zero caller", key: key, startPrice: 100, endsAt: endsAt, want: ResInvalidParams},
		{name: "zero start price", caller: seller, key: key, endsAt: endsAt, want: ResInvalidParams},
		{name: "deadline in the past", caller: seller, key: key, startPrice: 100, endsAt: uint64(f.t0.Unix()), want: ResInvalidParams},
		{name: "class not allowed", caller: seller, key: asset.Key{Class: "junk", ID: 1}, startPrice: 100, endsAt: endsAt, want: ResAssetNotAllowed},
		{name: "caller does not hold asset", caller: bidA, key: key, startPrice: 100, endsAt: endsAt, want: ResTransferFailed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := f.engine.List(ctx, tc.caller, tc.key, tc.startPrice, tc.endsAt)
			require.Equal(t, tc.want, res.Result, res.Message)
			require.False(t, res.Applied)
		})
	}
}

func TestListTakesCustodyAndWritesListing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	key := asset.Key{Class: "art", ID: 1}
	f.list(t, key)

	require.Equal(t, escrow, f.owner(t, key))

	listing, err := f.engine.GetListing(ctx, key)
	require.NoError(t, err)
	require.Equal(t, StatusActive, listing.Status)
	require.Equal(t, seller, listing.Seller)
	require.False(t, listing.HasBid())
	require.EqualValues(t, 100, listing.StartPrice)
	require.EqualValues(t, 100, listing.CurrentPrice)
	require.EqualValues(t, 0, listing.AccruedFee)
	require.Contains(t, f.events.events, "deposited")
}

func TestListRejectsActiveKey(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	key := asset.Key{Class: "art", ID: 1}
	f.list(t, key)

	// A second list on the same key must not clobber the first listing.
	res := f.engine.List(ctx, bidA, key, 50, uint64(f.t0.Unix())+7200)
	require.Equal(t, ResAlreadyListed, res.Result)

	listing, err := f.engine.GetListing(ctx, key)
	require.NoError(t, err)
	require.Equal(t, seller, listing.Seller)
	require.EqualValues(t, 100, listing.StartPrice)
}

// TestAuctionScenario walks the full happy path: two bids, refund with fee
// skim, finalize settling asset and payment.
func TestAuctionScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	key := asset.Key{Class: "art", ID: 9}
	f.list(t, key)

	f.funds.Mint(bidA, 1000)
	f.funds.Mint(bidB, 1000)

	// First bid: next price is 100 + 100*3/100 = 103. No refund yet.
	f.clock.advance(10 * time.Second)
	res := f.engine.Bid(ctx, bidA, key, 103)
	require.Equal(t, Success, res.Result, res.Message)
	require.EqualValues(t, 103, res.Listing.CurrentPrice)
	require.Equal(t, bidA, res.Listing.LastBidder)
	require.EqualValues(t, 1000-103, f.balance(t, bidA))
	require.EqualValues(t, 103, f.balance(t, escrow))

	// Second bid: next price 103 + floor(103*3/100) = 106. A is refunded
	// 103 minus the 2% fee, floor(103*2/100) = 2.
	f.clock.advance(10 * time.Second)
	res = f.engine.Bid(ctx, bidB, key, 106)
	require.Equal(t, Success, res.Result, res.Message)
	require.EqualValues(t, 106, res.Listing.CurrentPrice)
	require.Equal(t, bidB, res.Listing.LastBidder)
	require.EqualValues(t, 2, res.Listing.AccruedFee)
	require.EqualValues(t, 1000-103+101, f.balance(t, bidA)) // refunded 103-2
	require.EqualValues(t, 1000-106, f.balance(t, bidB))
	// Escrow holds the lead deposit plus the skimmed fee.
	require.EqualValues(t, 106+2, f.balance(t, escrow))

	// Early finalize fails.
	res = f.engine.Finalize(ctx, seller, key)
	require.Equal(t, ResAuctionNotEnded, res.Result)

	// After the deadline the seller settles: asset to B, price to seller.
	f.clock.advance(time.Hour)
	res = f.engine.Finalize(ctx, seller, key)
	require.Equal(t, Success, res.Result, res.Message)

	require.Equal(t, bidB, f.owner(t, key))
	require.EqualValues(t, 106, f.balance(t, seller))
	require.EqualValues(t, 2, f.balance(t, escrow)) // collected fee remains

	total, err := f.engine.FeeTotal(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)

	listing, err := f.engine.GetListing(ctx, key)
	require.NoError(t, err)
	require.Equal(t, &Listing{}, listing)

	// The withdrawal notification carries the settled listing as it
	// stood, so downstream consumers can record the full outcome.
	require.Len(t, f.events.closed, 1)
	closed := f.events.closed[0]
	require.Equal(t, seller, closed.Seller)
	require.Equal(t, bidB, closed.LastBidder)
	require.EqualValues(t, 106, closed.CurrentPrice)
	require.EqualValues(t, 2, closed.AccruedFee)
	require.EqualValues(t, f.t0.Unix(), closed.ListedAt)
}

func TestBidPreconditions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	key := asset.Key{Class: "art", ID: 2}
	f.list(t, key)
	f.funds.Mint(bidA, 1000)

	// Not allow-listed class.
	res := f.engine.Bid(ctx, bidA, asset.Key{Class: "junk", ID: 2}, 103)
	require.Equal(t, ResAssetNotAllowed, res.Result)

	// No active listing.
	res = f.engine.Bid(ctx, bidA, asset.Key{Class: "art", ID: 99}, 103)
	require.Equal(t, ResNotListed, res.Result)

	// Below the required increment.
	res = f.engine.Bid(ctx, bidA, key, 102)
	require.Equal(t, ResBidTooLow, res.Result)

	// Consecutive self-raise.
	res = f.engine.Bid(ctx, bidA, key, 103)
	require.Equal(t, Success, res.Result, res.Message)
	res = f.engine.Bid(ctx, bidA, key, 200)
	require.Equal(t, ResSelfOutbid, res.Result)

	// After another bidder takes the lead, A may raise again.
	f.funds.Mint(bidB, 1000)
	res = f.engine.Bid(ctx, bidB, key, 107)
	require.Equal(t, Success, res.Result, res.Message)
	res = f.engine.Bid(ctx, bidA, key, 200)
	require.Equal(t, Success, res.Result, res.Message)

	// Ended auction.
	f.clock.advance(2 * time.Hour)
	res = f.engine.Bid(ctx, bidB, key, 300)
	require.Equal(t, ResAuctionEnded, res.Result)
}

func TestBidDepositFailureAborts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	key := asset.Key{Class: "art", ID: 3}
	f.list(t, key)

	// bidA has no funds at all.
	res := f.engine.Bid(ctx, bidA, key, 103)
	require.Equal(t, ResTransferFailed, res.Result)

	listing, err := f.engine.GetListing(ctx, key)
	require.NoError(t, err)
	require.False(t, listing.HasBid())
	require.EqualValues(t, 100, listing.CurrentPrice)
	require.EqualValues(t, 0, f.balance(t, escrow))
}

// TestMonotonicPriceAndDeadline drives a sequence of bids and asserts the
// price and deadline never move backwards.
func TestMonotonicPriceAndDeadline(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	key := asset.Key{Class: "art", ID: 4}
	f.list(t, key)

	for _, b := range []account.ID{bidA, bidB, bidC} {
		f.funds.Mint(b, 1_000_000)
	}

	listing, err := f.engine.GetListing(ctx, key)
	require.NoError(t, err)
	lastPrice := listing.CurrentPrice
	lastEndsAt := listing.EndsAt

	bidders := []account.ID{bidA, bidB, bidC}
	for i := 0; i < 12; i++ {
		f.clock.advance(45 * time.Second)
		res := f.engine.Bid(ctx, bidders[i%3], key, 1_000_000)
		require.Equal(t, Success, res.Result, res.Message)

		require.Greater(t, res.Listing.CurrentPrice, lastPrice)
		require.GreaterOrEqual(t, res.Listing.CurrentPrice, res.Listing.StartPrice)
		require.GreaterOrEqual(t, res.Listing.EndsAt, lastEndsAt)
		lastPrice = res.Listing.CurrentPrice
		lastEndsAt = res.Listing.EndsAt

		// The lead deposit plus all accrued fees is exactly escrow's
		// balance: conservation of funds.
		require.EqualValues(t, res.Listing.CurrentPrice+res.Listing.AccruedFee, f.balance(t, escrow))
	}
}

func TestAntiSnipeExtension(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	key := asset.Key{Class: "art", ID: 5}

	// endsAt = T+1000 with window 600, duration 1200.
	f.assets.Mint(key, seller)
	endsAt := uint64(f.t0.Unix()) + 1000
	res := f.engine.List(ctx, seller, key, 100, endsAt)
	require.Equal(t, Success, res.Result, res.Message)

	f.funds.Mint(bidA, 10_000)
	f.funds.Mint(bidB, 10_000)

	// A bid well before the window leaves the deadline alone.
	f.clock.advance(200 * time.Second) // T+200: 200+600 <= 1000
	res = f.engine.Bid(ctx, bidA, key, 103)
	require.Equal(t, Success, res.Result, res.Message)
	require.Equal(t, endsAt, res.Listing.EndsAt)

	// A bid at T+500 already lands inside the window: 500+600 > 1000,
	// so the deadline moves out by the duration.
	f.clock.advance(300 * time.Second) // T+500
	res = f.engine.Bid(ctx, bidB, key, 107)
	require.Equal(t, Success, res.Result, res.Message)
	require.Equal(t, endsAt+1200, res.Listing.EndsAt)

	// A bid inside the extended window pushes the new deadline out again.
	f.clock.advance(1200 * time.Second) // T+1700: 1700+600 > 2200
	res = f.engine.Bid(ctx, bidA, key, 111)
	require.Equal(t, Success, res.Result, res.Message)
	require.Equal(t, endsAt+2400, res.Listing.EndsAt)
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	key := asset.Key{Class: "art", ID: 6}
	f.list(t, key)

	// Only the seller may cancel.
	res := f.engine.Cancel(ctx, bidA, key)
	require.Equal(t, ResUnauthorized, res.Result)

	res = f.engine.Cancel(ctx, seller, key)
	require.Equal(t, Success, res.Result, res.Message)
	require.Equal(t, seller, f.owner(t, key))

	listing, err := f.engine.GetListing(ctx, key)
	require.NoError(t, err)
	require.Equal(t, &Listing{}, listing)

	// Cancelling again: nothing there.
	res = f.engine.Cancel(ctx, seller, key)
	require.Equal(t, ResNotListed, res.Result)
}

func TestCancelRejectedAfterBid(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	key := asset.Key{Class: "art", ID: 7}
	f.list(t, key)
	f.funds.Mint(bidA, 1000)

	res := f.engine.Bid(ctx, bidA, key, 103)
	require.Equal(t, Success, res.Result, res.Message)

	res = f.engine.Cancel(ctx, seller, key)
	require.Equal(t, ResAlreadyBidOn, res.Result)
	require.Equal(t, escrow, f.owner(t, key))
}

func TestCancelRejectedAfterEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	key := asset.Key{Class: "art", ID: 8}
	f.list(t, key)

	f.clock.advance(2 * time.Hour)
	res := f.engine.Cancel(ctx, seller, key)
	require.Equal(t, ResAuctionEnded, res.Result)

	// The ended, unbid auction exits through the unsold finalize path.
	res = f.engine.Finalize(ctx, seller, key)
	require.Equal(t, Success, res.Result, res.Message)
	require.Equal(t, seller, f.owner(t, key))
	require.EqualValues(t, 0, f.balance(t, seller))

	total, err := f.engine.FeeTotal(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 0, total)
}

func TestFinalizeRequiresSeller(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	key := asset.Key{Class: "art", ID: 10}
	f.list(t, key)

	f.clock.advance(2 * time.Hour)
	res := f.engine.Finalize(ctx, bidA, key)
	require.Equal(t, ResUnauthorized, res.Result)
}

// failingPayout wraps a fungible ledger and fails TransferOut to a chosen
// account.
type failingPayout struct {
	asset.FungibleLedger
	deny account.ID
}

func (f *failingPayout) TransferOut(ctx context.Context, to account.ID, amount uint64) error {
	if to == f.deny {
		return errors.New("ledger offline")
	}
	return f.FungibleLedger.TransferOut(ctx, to, amount)
}

func TestFinalizePaymentFailureRestoresEscrow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	key := asset.Key{Class: "art", ID: 11}
	f.list(t, key)
	f.funds.Mint(bidA, 1000)

	res := f.engine.Bid(ctx, bidA, key, 103)
	require.Equal(t, Success, res.Result, res.Message)

	// Swap in a payment ledger that refuses to pay the seller.
	broken, err := NewEngine(Params{
		Store:  f.store,
		Funds:  &failingPayout{FungibleLedger: f.funds, deny: seller},
		Assets: f.assets,
		Auth:   adminOnly{id: admin},
		Clock:  f.clock,
		Escrow: escrow,
	})
	require.NoError(t, err)

	f.clock.advance(2 * time.Hour)
	res = broken.Finalize(ctx, seller, key)
	require.Equal(t, ResTransferFailed, res.Result)

	// Custody rolled back to escrow; the listing is still live state.
	require.Equal(t, escrow, f.owner(t, key))
	listing, err := f.engine.GetListing(ctx, key)
	require.NoError(t, err)
	require.Equal(t, StatusActive, listing.Status)

	// The unbroken engine settles fine afterwards.
	res = f.engine.Finalize(ctx, seller, key)
	require.Equal(t, Success, res.Result, res.Message)
	require.Equal(t, bidA, f.owner(t, key))
}

// reentrantRefund wraps the payment ledger and re-enters the engine during
// the refund callback, emulating a malicious ledger contract.
type reentrantRefund struct {
	asset.FungibleLedger
	engine *Engine
	key    asset.Key
	result *ApplyResult
}

func (r *reentrantRefund) TransferOut(ctx context.Context, to account.ID, amount uint64) error {
	if r.engine != nil {
		res := r.engine.Bid(ctx, to, r.key, 1_000_000)
		r.result = &res
	}
	return r.FungibleLedger.TransferOut(ctx, to, amount)
}

func TestReentrantBidRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	key := asset.Key{Class: "art", ID: 12}

	hostile := &reentrantRefund{FungibleLedger: f.funds, key: key}
	engine, err := NewEngine(Params{
		Store:  f.store,
		Funds:  hostile,
		Assets: f.assets,
		Auth:   adminOnly{id: admin},
		Clock:  f.clock,
		Escrow: escrow,
	})
	require.NoError(t, err)
	hostile.engine = engine

	f.assets.Mint(key, seller)
	res := engine.List(ctx, seller, key, 100, uint64(f.t0.Unix())+3600)
	require.Equal(t, Success, res.Result, res.Message)

	f.funds.Mint(bidA, 1_000_000)
	f.funds.Mint(bidB, 1_000_000)

	res = engine.Bid(ctx, bidA, key, 103)
	require.Equal(t, Success, res.Result, res.Message)

	// The second bid triggers a refund to A, during which the hostile
	// ledger re-enters Bid. The inner call must fail on the guard while
	// the outer call completes normally.
	res = engine.Bid(ctx, bidB, key, 107)
	require.Equal(t, Success, res.Result, res.Message)

	require.NotNil(t, hostile.result)
	require.Equal(t, ResReentrancy, hostile.result.Result)

	listing, err := engine.GetListing(ctx, key)
	require.NoError(t, err)
	require.Equal(t, bidB, listing.LastBidder)
	require.EqualValues(t, 106, listing.CurrentPrice)
}

func TestAdminOperations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	// Non-admin rejected.
	res := f.engine.SetAssetAllowed(ctx, seller, "music", true)
	require.Equal(t, ResUnauthorized, res.Result)
	res = f.engine.SetServiceConfig(ctx, seller, DefaultServiceConfig())
	require.Equal(t, ResUnauthorized, res.Result)

	// Empty class rejected before the authorization check result matters.
	res = f.engine.SetAssetAllowed(ctx, admin, "", true)
	require.Equal(t, ResInvalidParams, res.Result)

	// Idempotent allow-list set only notifies on change.
	before := len(f.events.events)
	res = f.engine.SetAssetAllowed(ctx, admin, "music", true)
	require.Equal(t, Success, res.Result)
	res = f.engine.SetAssetAllowed(ctx, admin, "music", true)
	require.Equal(t, Success, res.Result)
	require.Equal(t, before+1, len(f.events.events))

	allowed, err := f.engine.IsAllowed(ctx, "music")
	require.NoError(t, err)
	require.True(t, allowed)

	// Range checks.
	res = f.engine.SetServiceConfig(ctx, admin, ServiceConfig{FeeRatePercent: 101})
	require.Equal(t, ResInvalidParams, res.Result)
	res = f.engine.SetServiceConfig(ctx, admin, ServiceConfig{BidIncreaseRatePercent: 1001})
	require.Equal(t, ResInvalidParams, res.Result)
	res = f.engine.SetServiceConfig(ctx, admin, ServiceConfig{ExtensionWindow: 60})
	require.Equal(t, ResInvalidParams, res.Result)
}

// TestConfigChangeAffectsRefunds covers the documented retroactive refund
// economics: the fee on a refund uses the rate at refund time, not the rate
// when the outbid deposit was placed.
func TestConfigChangeAffectsRefunds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	key := asset.Key{Class: "art", ID: 13}
	f.list(t, key)
	f.funds.Mint(bidA, 1000)
	f.funds.Mint(bidB, 1000)

	res := f.engine.Bid(ctx, bidA, key, 103)
	require.Equal(t, Success, res.Result, res.Message)

	// Raise the fee to 10% after A's deposit.
	res = f.engine.SetServiceConfig(ctx, admin, ServiceConfig{
		FeeRatePercent:         10,
		BidIncreaseRatePercent: 3,
		ExtensionDuration:      1200,
		ExtensionWindow:        600,
	})
	require.Equal(t, Success, res.Result, res.Message)

	// A's refund is now skimmed at 10%: floor(103*10/100) = 10.
	res = f.engine.Bid(ctx, bidB, key, 106)
	require.Equal(t, Success, res.Result, res.Message)
	require.EqualValues(t, 10, res.Listing.AccruedFee)
	require.EqualValues(t, 1000-103+93, f.balance(t, bidA))
}

// exemptBalances is a BalanceSource for the exemption asset.
type exemptBalances struct {
	holdings map[account.ID]uint64
}

func (e *exemptBalances) BalanceOf(_ context.Context, acct account.ID) (uint64, error) {
	return e.holdings[acct], nil
}

func TestExemptFeePolicy(t *testing.T) {
	ctx := context.Background()
	holdings := &exemptBalances{holdings: map[account.ID]uint64{}}
	f := newFixture(t, ExemptFeePolicy{Holdings: holdings})
	key := asset.Key{Class: "art", ID: 14}
	f.list(t, key)
	f.funds.Mint(bidA, 1000)
	f.funds.Mint(bidB, 1000)
	f.funds.Mint(bidC, 1000)

	res := f.engine.Bid(ctx, bidA, key, 103)
	require.Equal(t, Success, res.Result, res.Message)

	// A acquires the exemption asset after bidding. Exemption is checked
	// at refund time, so A's refund is fee-free.
	holdings.holdings[bidA] = 5

	res = f.engine.Bid(ctx, bidB, key, 106)
	require.Equal(t, Success, res.Result, res.Message)
	require.EqualValues(t, 0, res.Listing.AccruedFee)
	require.EqualValues(t, 1000, f.balance(t, bidA)) // full refund

	// B holds none, so B's refund is skimmed normally.
	res = f.engine.Bid(ctx, bidC, key, 110)
	require.Equal(t, Success, res.Result, res.Message)
	require.EqualValues(t, 2, res.Listing.AccruedFee) // floor(106*2/100)
	require.EqualValues(t, 1000-106+104, f.balance(t, bidB))
}

func TestIsEnded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	key := asset.Key{Class: "art", ID: 15}

	_, err := f.engine.IsEnded(ctx, asset.Key{Class: "junk", ID: 15})
	require.ErrorIs(t, err, ErrClassNotAllowed)

	_, err = f.engine.IsEnded(ctx, key)
	require.ErrorIs(t, err, ErrNoActiveListing)

	f.list(t, key)
	ended, err := f.engine.IsEnded(ctx, key)
	require.NoError(t, err)
	require.False(t, ended)

	f.clock.advance(2 * time.Hour)
	ended, err = f.engine.IsEnded(ctx, key)
	require.NoError(t, err)
	require.True(t, ended)
}
