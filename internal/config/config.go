// Package config loads and validates the auctiond configuration.
package config

import (
	"github.com/clearbid/auctiond/internal/core/account"
	"github.com/clearbid/auctiond/internal/core/auction"
)

// Config is the complete auctiond configuration.
type Config struct {
	// Escrow is the hex address of the custody account.
	Escrow string `toml:"escrow" mapstructure:"escrow"`

	// Admins are the hex addresses permitted to run admin operations.
	Admins []string `toml:"admins" mapstructure:"admins"`

	// Auction holds the initial service parameters. They are written to
	// the state store on first startup; admins change them at runtime.
	Auction AuctionConfig `toml:"auction" mapstructure:"auction"`

	// Auth selects how admin operations are authorized.
	Auth AuthConfig `toml:"auth" mapstructure:"auth"`

	// Database is the live auction state store.
	Database DatabaseConfig `toml:"database" mapstructure:"database"`

	// Archive is the settlement history store.
	Archive ArchiveConfig `toml:"archive" mapstructure:"archive"`

	// RPC is the JSON-RPC HTTP server.
	RPC RPCConfig `toml:"rpc" mapstructure:"rpc"`

	// GRPC is the gRPC query server.
	GRPC GRPCConfig `toml:"grpc" mapstructure:"grpc"`

	// LogLevel is either a single level name or a comma-separated list of
	// subsystem=level pairs.
	LogLevel string `toml:"log_level" mapstructure:"log_level"`

	// DebugLogfile, when set, duplicates log output into a file.
	DebugLogfile string `toml:"debug_logfile" mapstructure:"debug_logfile"`

	configPath string
}

// AuctionConfig holds the initial auction parameters and the fee
// exemption asset.
type AuctionConfig struct {
	// FeeRatePercent is the service fee skimmed from refunded bids.
	FeeRatePercent uint64 `toml:"fee_rate_percent" mapstructure:"fee_rate_percent"`

	// BidIncreaseRatePercent sets the minimum bid increment.
	BidIncreaseRatePercent uint64 `toml:"bid_increase_rate_percent" mapstructure:"bid_increase_rate_percent"`

	// ExtensionDurationSeconds is how far the deadline moves on a late
	// bid.
	ExtensionDurationSeconds uint64 `toml:"extension_duration_seconds" mapstructure:"extension_duration_seconds"`

	// ExtensionWindowSeconds is how close to the deadline a bid must
	// land to trigger the extension.
	ExtensionWindowSeconds uint64 `toml:"extension_window_seconds" mapstructure:"extension_window_seconds"`

	// ExemptionAsset names the asset class whose holders pay no refund
	// fee. Empty charges every bidder the fixed rate.
	ExemptionAsset string `toml:"exemption_asset" mapstructure:"exemption_asset"`
}

// AuthConfig selects the admin authorizer.
type AuthConfig struct {
	// Mode is "static", "sig", or "delayed".
	Mode string `toml:"mode" mapstructure:"mode"`

	// DelaySeconds is the timelock applied in delayed mode.
	DelaySeconds uint64 `toml:"delay_seconds" mapstructure:"delay_seconds"`
}

// DatabaseConfig selects the key-value backend for live auction state.
type DatabaseConfig struct {
	// Backend is "memory", "pebble", or "leveldb".
	Backend string `toml:"backend" mapstructure:"backend"`

	// Path is the on-disk location for persistent backends.
	Path string `toml:"path" mapstructure:"path"`
}

// ArchiveConfig selects the settlement archive backend.
type ArchiveConfig struct {
	// Backend is "none", "sqlite", or "postgres".
	Backend string `toml:"backend" mapstructure:"backend"`

	// Path is the sqlite file location.
	Path string `toml:"path" mapstructure:"path"`

	// DSN is the postgres connection string.
	DSN string `toml:"dsn" mapstructure:"dsn"`
}

// RPCConfig configures the JSON-RPC HTTP server and WebSocket feed.
type RPCConfig struct {
	// Address is the listen address.
	Address string `toml:"address" mapstructure:"address"`

	// TimeoutSeconds bounds request handling.
	TimeoutSeconds uint64 `toml:"timeout_seconds" mapstructure:"timeout_seconds"`

	// EnableEvents exposes the WebSocket event feed on /events.
	EnableEvents bool `toml:"enable_events" mapstructure:"enable_events"`
}

// GRPCConfig configures the gRPC query server.
type GRPCConfig struct {
	// Enabled turns the gRPC listener on.
	Enabled bool `toml:"enabled" mapstructure:"enabled"`

	// Address is the listen address.
	Address string `toml:"address" mapstructure:"address"`
}

// ConfigPath returns where the configuration was loaded from, empty when
// running on pure defaults.
func (c *Config) ConfigPath() string {
	return c.configPath
}

// ServiceConfig converts the auction section into engine parameters.
func (c *Config) ServiceConfig() auction.ServiceConfig {
	return auction.ServiceConfig{
		FeeRatePercent:         c.Auction.FeeRatePercent,
		BidIncreaseRatePercent: c.Auction.BidIncreaseRatePercent,
		ExtensionDuration:      c.Auction.ExtensionDurationSeconds,
		ExtensionWindow:        c.Auction.ExtensionWindowSeconds,
	}
}

// EscrowID parses the configured escrow address.
func (c *Config) EscrowID() (account.ID, error) {
	return account.Parse(c.Escrow)
}

// AdminIDs parses the configured admin addresses.
func (c *Config) AdminIDs() ([]account.ID, error) {
	out := make([]account.ID, 0, len(c.Admins))
	for _, s := range c.Admins {
		id, err := account.Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
