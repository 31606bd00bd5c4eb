package auction

import (
	"github.com/clearbid/auctiond/internal/core/account"
	"github.com/clearbid/auctiond/internal/core/asset"
	"github.com/clearbid/auctiond/internal/logging"
)

// Notifier observes engine state changes. Callbacks fire synchronously
// after a successful commit, never on failed attempts.
type Notifier interface {
	// AllowListChanged fires when an asset class's eligibility actually
	// changed (idempotent re-sets do not fire).
	AllowListChanged(class asset.Class, allowed bool)

	// ServiceConfigChanged fires after an admin replaces the parameters.
	ServiceConfigChanged(cfg ServiceConfig)

	// BidPlaced fires after a successful bid commit.
	BidPlaced(key asset.Key, bidder account.ID, price, endsAt uint64)

	// AssetDeposited fires when a listing takes the asset into escrow.
	AssetDeposited(key asset.Key, seller account.ID, startPrice, endsAt uint64)

	// AssetWithdrawn fires when escrow releases the asset: to the winner
	// on a sold finalize, or back to the seller on cancel/unsold. The
	// closed snapshot is the listing as it stood at settlement, before
	// the record was cleared.
	AssetWithdrawn(key asset.Key, to account.ID, sold bool, finalPrice uint64, closed Listing)
}

// NopNotifier discards all events.
type NopNotifier struct{}

func (NopNotifier) AllowListChanged(asset.Class, bool)                          {}
func (NopNotifier) ServiceConfigChanged(ServiceConfig)                          {}
func (NopNotifier) BidPlaced(asset.Key, account.ID, uint64, uint64)             {}
func (NopNotifier) AssetDeposited(asset.Key, account.ID, uint64, uint64)        {}
func (NopNotifier) AssetWithdrawn(asset.Key, account.ID, bool, uint64, Listing) {}

// MultiNotifier fans events out to several observers in order.
type MultiNotifier []Notifier

func (m MultiNotifier) AllowListChanged(class asset.Class, allowed bool) {
	for _, n := range m {
		n.AllowListChanged(class, allowed)
	}
}

func (m MultiNotifier) ServiceConfigChanged(cfg ServiceConfig) {
	for _, n := range m {
		n.ServiceConfigChanged(cfg)
	}
}

func (m MultiNotifier) BidPlaced(key asset.Key, bidder account.ID, price, endsAt uint64) {
	for _, n := range m {
		n.BidPlaced(key, bidder, price, endsAt)
	}
}

func (m MultiNotifier) AssetDeposited(key asset.Key, seller account.ID, startPrice, endsAt uint64) {
	for _, n := range m {
		n.AssetDeposited(key, seller, startPrice, endsAt)
	}
}

func (m MultiNotifier) AssetWithdrawn(key asset.Key, to account.ID, sold bool, finalPrice uint64, closed Listing) {
	for _, n := range m {
		n.AssetWithdrawn(key, to, sold, finalPrice, closed)
	}
}

// LogNotifier writes every event to a subsystem logger.
type LogNotifier struct {
	Log logging.Logger
}

func (l LogNotifier) AllowListChanged(class asset.Class, allowed bool) {
	l.Log.Infof("allow-list changed: class=%s allowed=%v", class, allowed)
}

func (l LogNotifier) ServiceConfigChanged(cfg ServiceConfig) {
	l.Log.Infof("service config changed: fee=%d%% increase=%d%% extension=%ds window=%ds",
		cfg.FeeRatePercent, cfg.BidIncreaseRatePercent, cfg.ExtensionDuration, cfg.ExtensionWindow)
}

func (l LogNotifier) BidPlaced(key asset.Key, bidder account.ID, price, endsAt uint64) {
	l.Log.Infof("bid placed: asset=%s bidder=%s price=%d endsAt=%d", key, bidder, price, endsAt)
}

func (l LogNotifier) AssetDeposited(key asset.Key, seller account.ID, startPrice, endsAt uint64) {
	l.Log.Infof("asset deposited: asset=%s seller=%s startPrice=%d endsAt=%d", key, seller, startPrice, endsAt)
}

func (l LogNotifier) AssetWithdrawn(key asset.Key, to account.ID, sold bool, finalPrice uint64, closed Listing) {
	l.Log.Infof("asset withdrawn: asset=%s to=%s sold=%v finalPrice=%d accruedFee=%d",
		key, to, sold, finalPrice, closed.AccruedFee)
}
