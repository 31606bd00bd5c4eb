package rpc

import (
	"github.com/clearbid/auctiond/internal/core/account"
	"github.com/clearbid/auctiond/internal/core/asset"
	"github.com/clearbid/auctiond/internal/core/auction"
)

// Event type tags carried in every feed message.
const (
	EventBidPlaced      = "bidPlaced"
	EventAssetDeposited = "assetDeposited"
	EventAssetWithdrawn = "assetWithdrawn"
	EventAllowList      = "allowListChanged"
	EventConfig         = "configChanged"
)

// BidPlacedEvent announces a committed bid.
type BidPlacedEvent struct {
	Type    string `json:"type"` // Always "bidPlaced"
	Class   string `json:"class"`
	AssetID uint64 `json:"asset_id"`
	Bidder  string `json:"bidder"`
	Price   uint64 `json:"price"`
	EndsAt  uint64 `json:"ends_at"`
}

// AssetDepositedEvent announces a new listing taking custody.
type AssetDepositedEvent struct {
	Type       string `json:"type"` // Always "assetDeposited"
	Class      string `json:"class"`
	AssetID    uint64 `json:"asset_id"`
	Seller     string `json:"seller"`
	StartPrice uint64 `json:"start_price"`
	EndsAt     uint64 `json:"ends_at"`
}

// AssetWithdrawnEvent announces escrow releasing an asset.
type AssetWithdrawnEvent struct {
	Type       string `json:"type"` // Always "assetWithdrawn"
	Class      string `json:"class"`
	AssetID    uint64 `json:"asset_id"`
	Recipient  string `json:"recipient"`
	Seller     string `json:"seller"`
	Winner     string `json:"winner,omitempty"`
	Sold       bool   `json:"sold"`
	FinalPrice uint64 `json:"final_price"`
	AccruedFee uint64 `json:"accrued_fee"`
	ListedAt   uint64 `json:"listed_at"`
	EndedAt    uint64 `json:"ended_at"`
}

// AllowListChangedEvent announces an allow-list membership change.
type AllowListChangedEvent struct {
	Type    string `json:"type"` // Always "allowListChanged"
	Class   string `json:"class"`
	Allowed bool   `json:"allowed"`
}

// ConfigChangedEvent announces a service configuration replacement.
type ConfigChangedEvent struct {
	Type                   string `json:"type"` // Always "configChanged"
	FeeRatePercent         uint64 `json:"fee_rate_percent"`
	BidIncreaseRatePercent uint64 `json:"bid_increase_rate_percent"`
	ExtensionDuration      uint64 `json:"extension_duration"`
	ExtensionWindow        uint64 `json:"extension_window"`
}

func newBidPlacedEvent(key asset.Key, bidder account.ID, price, endsAt uint64) *BidPlacedEvent {
	return &BidPlacedEvent{
		Type:    EventBidPlaced,
		Class:   string(key.Class),
		AssetID: key.ID,
		Bidder:  bidder.String(),
		Price:   price,
		EndsAt:  endsAt,
	}
}

func newAssetDepositedEvent(key asset.Key, seller account.ID, startPrice, endsAt uint64) *AssetDepositedEvent {
	return &AssetDepositedEvent{
		Type:       EventAssetDeposited,
		Class:      string(key.Class),
		AssetID:    key.ID,
		Seller:     seller.String(),
		StartPrice: startPrice,
		EndsAt:     endsAt,
	}
}

func newAssetWithdrawnEvent(key asset.Key, to account.ID, sold bool, finalPrice uint64, closed auction.Listing) *AssetWithdrawnEvent {
	ev := &AssetWithdrawnEvent{
		Type:       EventAssetWithdrawn,
		Class:      string(key.Class),
		AssetID:    key.ID,
		Recipient:  to.String(),
		Seller:     closed.Seller.String(),
		Sold:       sold,
		FinalPrice: finalPrice,
		AccruedFee: closed.AccruedFee,
		ListedAt:   closed.ListedAt,
		EndedAt:    closed.EndsAt,
	}
	if sold {
		ev.Winner = to.String()
	}
	return ev
}

func newConfigChangedEvent(cfg auction.ServiceConfig) *ConfigChangedEvent {
	return &ConfigChangedEvent{
		Type:                   EventConfig,
		FeeRatePercent:         cfg.FeeRatePercent,
		BidIncreaseRatePercent: cfg.BidIncreaseRatePercent,
		ExtensionDuration:      cfg.ExtensionDuration,
		ExtensionWindow:        cfg.ExtensionWindow,
	}
}
