package auction

import (
	"context"
	"errors"
	"fmt"

	"github.com/clearbid/auctiond/internal/core/account"
	"github.com/clearbid/auctiond/internal/core/asset"
	"github.com/clearbid/auctiond/internal/logging"
)

// Query errors. Mutating entry points report failures through Result codes;
// the read-only queries return plain errors.
var (
	// ErrNoActiveListing is returned by queries on a key with no active
	// auction.
	ErrNoActiveListing = errors.New("no active listing")

	// ErrClassNotAllowed is returned by queries on a class that is not
	// allow-listed.
	ErrClassNotAllowed = errors.New("asset class not allowed")
)

// Engine orchestrates the auction lifecycle: list, bid, cancel, finalize.
// It owns no assets itself; custody and payment movements go through the
// injected ledgers against a designated escrow account, and every mutating
// entry point runs under the shared reentrancy guard.
type Engine struct {
	store  *Store
	funds  asset.FungibleLedger
	assets asset.NonFungibleLedger
	fees   FeePolicy
	auth   Authorizer
	notify Notifier
	clock  Clock
	guard  Guard

	// escrow is the account holding custody and deposits while auctions
	// are live.
	escrow account.ID

	log logging.Logger
}

// Params collects the collaborators an Engine needs.
type Params struct {
	Store  *Store
	Funds  asset.FungibleLedger
	Assets asset.NonFungibleLedger

	// Fees defaults to FixedFeePolicy.
	Fees FeePolicy

	// Auth defaults to DenyAll.
	Auth Authorizer

	// Notify defaults to NopNotifier.
	Notify Notifier

	// Clock defaults to SystemClock.
	Clock Clock

	// Escrow is the custody account. Required.
	Escrow account.ID

	// Logger defaults to a disabled logger.
	Logger logging.Logger
}

// NewEngine creates an auction engine.
func NewEngine(p Params) (*Engine, error) {
	if p.Store == nil {
		return nil, errors.New("auction: Store is required")
	}
	if p.Funds == nil || p.Assets == nil {
		return nil, errors.New("auction: both asset ledgers are required")
	}
	if p.Escrow.IsZero() {
		return nil, errors.New("auction: escrow account is required")
	}
	if p.Fees == nil {
		p.Fees = FixedFeePolicy{}
	}
	if p.Auth == nil {
		p.Auth = DenyAll{}
	}
	if p.Notify == nil {
		p.Notify = NopNotifier{}
	}
	if p.Clock == nil {
		p.Clock = SystemClock{}
	}
	if p.Logger == nil {
		p.Logger = logging.Disabled
	}
	return &Engine{
		store:  p.Store,
		funds:  p.Funds,
		assets: p.Assets,
		fees:   p.Fees,
		auth:   p.Auth,
		notify: p.Notify,
		clock:  p.Clock,
		escrow: p.Escrow,
		log:    p.Logger,
	}, nil
}

// now reads the clock once, as unix seconds.
func (e *Engine) now() uint64 {
	return uint64(e.clock.Now().Unix())
}

// List opens an auction: custody of the asset moves from the seller into
// escrow and an Active listing is written. A key that already has an active
// listing is rejected rather than overwritten.
func (e *Engine) List(ctx context.Context, caller account.ID, key asset.Key, startPrice, endsAt uint64) ApplyResult {
	if !e.guard.TryAcquire() {
		return failed(ResReentrancy)
	}
	defer e.guard.Release()

	now := e.now()
	if key.Class == "" {
		return failedf(ResInvalidParams, "asset class must not be empty")
	}
	if caller.IsZero() {
		return failedf(ResInvalidParams, "caller must not be the zero account")
	}
	if startPrice == 0 {
		return failedf(ResInvalidParams, "start price must be positive")
	}
	if endsAt <= now {
		return failedf(ResInvalidParams, "auction deadline must be in the future")
	}

	allowed, err := e.store.IsAllowed(ctx, key.Class)
	if err != nil {
		return e.internal("list", err)
	}
	if !allowed {
		return failed(ResAssetNotAllowed)
	}

	listing, err := e.store.GetListing(ctx, key)
	if err != nil {
		return e.internal("list", err)
	}
	if listing.IsActive() {
		return failed(ResAlreadyListed)
	}

	if err := e.assets.TransferCustody(ctx, caller, e.escrow, key); err != nil {
		return e.transferFailed("list custody", err)
	}

	listing = &Listing{
		Seller:       caller,
		ListedAt:     now,
		EndsAt:       endsAt,
		StartPrice:   startPrice,
		CurrentPrice: startPrice,
		Status:       StatusActive,
	}
	if err := e.store.PutListing(ctx, key, listing); err != nil {
		// Undo the custody move so the asset is not stranded in escrow
		// with no listing record.
		if rbErr := e.assets.TransferCustody(ctx, e.escrow, caller, key); rbErr != nil {
			e.log.Criticalf("list %s: store write failed (%v) and custody rollback failed (%v): asset stranded in escrow",
				key, err, rbErr)
		}
		return e.internal("list", err)
	}

	e.notify.AssetDeposited(key, caller, startPrice, endsAt)
	return applied(listing)
}

// Bid places a bid. The deposit pulled into escrow is exactly the required
// next price; bidPrice is the bidder's offer cap and must meet it. The
// previous bidder is refunded their deposit minus the service fee computed
// under the configuration in effect now.
func (e *Engine) Bid(ctx context.Context, caller account.ID, key asset.Key, bidPrice uint64) ApplyResult {
	if !e.guard.TryAcquire() {
		return failed(ResReentrancy)
	}
	defer e.guard.Release()

	now := e.now()
	if caller.IsZero() {
		return failedf(ResInvalidParams, "caller must not be the zero account")
	}

	allowed, err := e.store.IsAllowed(ctx, key.Class)
	if err != nil {
		return e.internal("bid", err)
	}
	if !allowed {
		return failed(ResAssetNotAllowed)
	}

	listing, err := e.store.GetListing(ctx, key)
	if err != nil {
		return e.internal("bid", err)
	}
	if !listing.IsActive() {
		return failed(ResNotListed)
	}
	if now >= listing.EndsAt {
		return failed(ResAuctionEnded)
	}
	if listing.LastBidder == caller {
		return failed(ResSelfOutbid)
	}

	cfg, err := e.store.GetServiceConfig(ctx)
	if err != nil {
		return e.internal("bid", err)
	}
	nextPrice := cfg.NextPrice(listing.CurrentPrice)
	if bidPrice < nextPrice {
		return failedf(ResBidTooLow, fmt.Sprintf("bid %d is below required price %d", bidPrice, nextPrice))
	}

	// Pull the deposit first; any later failure compensates by returning
	// it, so a failed bid never leaves funds in escrow.
	if err := e.funds.TransferIn(ctx, caller, nextPrice); err != nil {
		return e.transferFailed("bid deposit", err)
	}

	var fee uint64
	if listing.HasBid() {
		fee, err = e.fees.ComputeFee(ctx, listing.CurrentPrice, cfg.FeeRatePercent, listing.LastBidder)
		if err != nil {
			e.compensateDeposit(ctx, key, caller, nextPrice)
			return e.transferFailed("bid fee query", err)
		}
		refund := listing.CurrentPrice - fee
		if refund > 0 {
			if err := e.funds.TransferOut(ctx, listing.LastBidder, refund); err != nil {
				e.compensateDeposit(ctx, key, caller, nextPrice)
				return e.transferFailed("bid refund", err)
			}
		}
	}

	// Anti-snipe: a bid landing inside the extension window pushes the
	// deadline forward. EndsAt only ever moves forward.
	endsAt := listing.EndsAt
	if cfg.ExtensionWindow > 0 && now+cfg.ExtensionWindow > endsAt {
		endsAt += cfg.ExtensionDuration
	}

	listing.CurrentPrice = nextPrice
	listing.LastBidder = caller
	listing.EndsAt = endsAt
	listing.AccruedFee += fee
	if err := e.store.PutListing(ctx, key, listing); err != nil {
		e.log.Criticalf("bid %s: transfers committed but store write failed: %v", key, err)
		return e.internal("bid", err)
	}

	e.notify.BidPlaced(key, caller, nextPrice, endsAt)
	return applied(listing)
}

// Cancel closes an auction that has never been bid on, before its deadline,
// returning the asset to the seller.
func (e *Engine) Cancel(ctx context.Context, caller account.ID, key asset.Key) ApplyResult {
	if !e.guard.TryAcquire() {
		return failed(ResReentrancy)
	}
	defer e.guard.Release()

	now := e.now()
	listing, err := e.store.GetListing(ctx, key)
	if err != nil {
		return e.internal("cancel", err)
	}
	if !listing.IsActive() {
		return failed(ResNotListed)
	}
	if listing.Seller != caller {
		return failed(ResUnauthorized)
	}
	if listing.HasBid() {
		return failed(ResAlreadyBidOn)
	}
	if now >= listing.EndsAt {
		// An ended, unbid auction exits through the unsold finalize path.
		return failed(ResAuctionEnded)
	}

	if err := e.assets.TransferCustody(ctx, e.escrow, listing.Seller, key); err != nil {
		return e.transferFailed("cancel custody", err)
	}
	if err := e.store.DeleteListing(ctx, key); err != nil {
		return e.internal("cancel", err)
	}

	e.notify.AssetWithdrawn(key, listing.Seller, false, 0, *listing)
	return applied(&Listing{})
}

// Finalize settles an ended auction. With a bid: the asset goes to the
// winning bidder, the full current price is paid to the seller, and the
// accrued fee joins the global collected total. Without a bid, the asset
// returns to the seller unsold.
func (e *Engine) Finalize(ctx context.Context, caller account.ID, key asset.Key) ApplyResult {
	if !e.guard.TryAcquire() {
		return failed(ResReentrancy)
	}
	defer e.guard.Release()

	now := e.now()
	listing, err := e.store.GetListing(ctx, key)
	if err != nil {
		return e.internal("finalize", err)
	}
	if !listing.IsActive() {
		return failed(ResNotListed)
	}
	if listing.Seller != caller {
		return failed(ResUnauthorized)
	}
	if now < listing.EndsAt {
		return failed(ResAuctionNotEnded)
	}

	if !listing.HasBid() {
		// Unsold: the asset returns to the seller, no payment moves and
		// no fee is collected.
		if err := e.assets.TransferCustody(ctx, e.escrow, listing.Seller, key); err != nil {
			return e.transferFailed("finalize custody", err)
		}
		if err := e.store.DeleteListing(ctx, key); err != nil {
			return e.internal("finalize", err)
		}
		e.notify.AssetWithdrawn(key, listing.Seller, false, 0, *listing)
		return applied(&Listing{})
	}

	winner := listing.LastBidder
	if err := e.assets.TransferCustody(ctx, e.escrow, winner, key); err != nil {
		return e.transferFailed("finalize custody", err)
	}
	if err := e.funds.TransferOut(ctx, listing.Seller, listing.CurrentPrice); err != nil {
		// Pull the asset back so a failed settlement leaves everything
		// in escrow, exactly as before the call.
		if rbErr := e.assets.TransferCustody(ctx, winner, e.escrow, key); rbErr != nil {
			e.log.Criticalf("finalize %s: payment failed (%v) and custody rollback failed (%v)",
				key, err, rbErr)
		}
		return e.transferFailed("finalize payment", err)
	}

	if err := e.store.AddFeeTotal(ctx, listing.AccruedFee); err != nil {
		return e.internal("finalize", err)
	}
	if err := e.store.DeleteListing(ctx, key); err != nil {
		return e.internal("finalize", err)
	}

	e.notify.AssetWithdrawn(key, winner, true, listing.CurrentPrice, *listing)
	return applied(&Listing{})
}

// SetAssetAllowed is the admin operation toggling allow-list membership.
func (e *Engine) SetAssetAllowed(ctx context.Context, caller account.ID, class asset.Class, allowed bool) ApplyResult {
	if class == "" {
		return failedf(ResInvalidParams, "asset class must not be empty")
	}

	ok, err := e.auth.IsAuthorized(ctx, caller, ActionSetAllowList)
	if err != nil {
		return e.internal("setAssetAllowed", err)
	}
	if !ok {
		return failed(ResUnauthorized)
	}

	changed, err := e.store.SetAllowed(ctx, class, allowed)
	if err != nil {
		return e.internal("setAssetAllowed", err)
	}
	if changed {
		e.notify.AllowListChanged(class, allowed)
	}
	return ApplyResult{Result: Success, Applied: true, Message: Success.Message()}
}

// SetServiceConfig is the admin operation atomically replacing all four
// auction parameters. Values are range-checked before the write.
func (e *Engine) SetServiceConfig(ctx context.Context, caller account.ID, cfg ServiceConfig) ApplyResult {
	ok, err := e.auth.IsAuthorized(ctx, caller, ActionSetConfig)
	if err != nil {
		return e.internal("setServiceConfig", err)
	}
	if !ok {
		return failed(ResUnauthorized)
	}

	if err := cfg.Validate(); err != nil {
		return failedf(ResInvalidParams, err.Error())
	}

	if err := e.store.PutServiceConfig(ctx, cfg); err != nil {
		return e.internal("setServiceConfig", err)
	}
	e.notify.ServiceConfigChanged(cfg)
	return ApplyResult{Result: Success, Applied: true, Message: Success.Message()}
}

// IsEnded reports whether the auction deadline has passed. It requires an
// allow-listed class and an active listing.
func (e *Engine) IsEnded(ctx context.Context, key asset.Key) (bool, error) {
	allowed, err := e.store.IsAllowed(ctx, key.Class)
	if err != nil {
		return false, err
	}
	if !allowed {
		return false, ErrClassNotAllowed
	}
	listing, err := e.store.GetListing(ctx, key)
	if err != nil {
		return false, err
	}
	if !listing.IsActive() {
		return false, ErrNoActiveListing
	}
	return e.now() >= listing.EndsAt, nil
}

// GetListing returns the listing record for an asset. Inactive keys yield
// the all-zero record.
func (e *Engine) GetListing(ctx context.Context, key asset.Key) (*Listing, error) {
	return e.store.GetListing(ctx, key)
}

// ServiceConfig returns the configuration currently in effect.
func (e *Engine) ServiceConfig(ctx context.Context) (ServiceConfig, error) {
	return e.store.GetServiceConfig(ctx)
}

// IsAllowed reports allow-list membership.
func (e *Engine) IsAllowed(ctx context.Context, class asset.Class) (bool, error) {
	return e.store.IsAllowed(ctx, class)
}

// FeeTotal returns the global total of collected service fees.
func (e *Engine) FeeTotal(ctx context.Context) (uint64, error) {
	return e.store.FeeTotal(ctx)
}

// compensateDeposit returns a deposit pulled earlier in a bid that
// subsequently failed.
func (e *Engine) compensateDeposit(ctx context.Context, key asset.Key, bidder account.ID, amount uint64) {
	if err := e.funds.TransferOut(ctx, bidder, amount); err != nil {
		e.log.Criticalf("bid %s: deposit compensation of %d to %s failed: %v",
			key, amount, bidder, err)
	}
}

func (e *Engine) internal(op string, err error) ApplyResult {
	e.log.Errorf("%s: %v", op, err)
	return failedf(ResInternal, err.Error())
}

func (e *Engine) transferFailed(op string, err error) ApplyResult {
	e.log.Debugf("%s: %v", op, err)
	return failedf(ResTransferFailed, fmt.Sprintf("%s: %v", op, err))
}
