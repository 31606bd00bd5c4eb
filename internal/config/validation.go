package config

import (
	"fmt"
	"net"
)

// ValidateConfig checks the configuration for values that would fail at
// startup.
func ValidateConfig(cfg *Config) error {
	if cfg.Escrow != "" {
		if _, err := cfg.EscrowID(); err != nil {
			return fmt.Errorf("escrow: %w", err)
		}
	}
	if _, err := cfg.AdminIDs(); err != nil {
		return fmt.Errorf("admins: %w", err)
	}

	svc := cfg.ServiceConfig()
	if err := svc.Validate(); err != nil {
		return fmt.Errorf("auction: %w", err)
	}

	switch cfg.Auth.Mode {
	case "static", "sig", "delayed":
	default:
		return fmt.Errorf("auth.mode must be static, sig, or delayed, got %q", cfg.Auth.Mode)
	}

	switch cfg.Database.Backend {
	case "memory":
	case "pebble", "leveldb":
		if cfg.Database.Path == "" {
			return fmt.Errorf("database.path is required for the %s backend", cfg.Database.Backend)
		}
	default:
		return fmt.Errorf("database.backend must be memory, pebble, or leveldb, got %q", cfg.Database.Backend)
	}

	switch cfg.Archive.Backend {
	case "none":
	case "sqlite":
		if cfg.Archive.Path == "" {
			return fmt.Errorf("archive.path is required for the sqlite backend")
		}
	case "postgres":
		if cfg.Archive.DSN == "" {
			return fmt.Errorf("archive.dsn is required for the postgres backend")
		}
	default:
		return fmt.Errorf("archive.backend must be none, sqlite, or postgres, got %q", cfg.Archive.Backend)
	}

	if err := validateAddress("rpc.address", cfg.RPC.Address); err != nil {
		return err
	}
	if cfg.RPC.TimeoutSeconds == 0 {
		return fmt.Errorf("rpc.timeout_seconds must be positive")
	}
	if cfg.GRPC.Enabled {
		if err := validateAddress("grpc.address", cfg.GRPC.Address); err != nil {
			return err
		}
	}
	return nil
}

func validateAddress(key, addr string) error {
	if addr == "" {
		return fmt.Errorf("%s is required", key)
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("%s: invalid address %q: %v", key, addr, err)
	}
	return nil
}
