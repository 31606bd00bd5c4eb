package config

import "github.com/spf13/viper"

// setDefaults installs the defaults used when neither the config file nor
// the environment overrides a key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("auction.fee_rate_percent", 2)
	v.SetDefault("auction.bid_increase_rate_percent", 3)
	v.SetDefault("auction.extension_duration_seconds", 1200)
	v.SetDefault("auction.extension_window_seconds", 600)
	v.SetDefault("auction.exemption_asset", "")

	v.SetDefault("auth.mode", "static")
	v.SetDefault("auth.delay_seconds", 3600)

	v.SetDefault("database.backend", "pebble")
	v.SetDefault("database.path", "auctiond.db")

	v.SetDefault("archive.backend", "none")
	v.SetDefault("archive.path", "settlements.db")

	v.SetDefault("rpc.address", "127.0.0.1:7780")
	v.SetDefault("rpc.timeout_seconds", 30)
	v.SetDefault("rpc.enable_events", true)

	v.SetDefault("grpc.enabled", false)
	v.SetDefault("grpc.address", "127.0.0.1:50051")

	v.SetDefault("log_level", "info")
}
