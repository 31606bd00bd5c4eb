package auction

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/clearbid/auctiond/internal/core/asset"
	"github.com/clearbid/auctiond/internal/storage/keyValueDb"
)

// defaultCacheSize is the number of hot listings kept in memory.
const defaultCacheSize = 512

// Store is the authoritative state of every auction: listing records keyed
// by keylet, allow-list membership, the service configuration singleton,
// and the collected fee total. It is a thin layer over a keyValueDb backend
// with a write-through cache for listings.
type Store struct {
	db    keyValueDb.DB
	cache *lru.Cache[Keylet, *Listing]
}

// NewStore creates a Store over the given backend.
func NewStore(db keyValueDb.DB) (*Store, error) {
	cache, err := lru.New[Keylet, *Listing](defaultCacheSize)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, cache: cache}, nil
}

// GetListing returns the listing for an asset. A key with no stored record
// yields the all-zero Inactive listing.
func (s *Store) GetListing(ctx context.Context, key asset.Key) (*Listing, error) {
	k := ListingKeylet(key)
	if cached, ok := s.cache.Get(k); ok {
		copied := *cached
		return &copied, nil
	}

	data, err := s.db.Read(ctx, k[:])
	if errors.Is(err, keyValueDb.ErrKeyNotFound) {
		return &Listing{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read listing %s: %w", key, err)
	}

	listing, err := DecodeListing(data)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", key, err)
	}
	cached := *listing
	s.cache.Add(k, &cached)
	return listing, nil
}

// PutListing persists the listing for an asset.
func (s *Store) PutListing(ctx context.Context, key asset.Key, l *Listing) error {
	data, err := EncodeListing(l)
	if err != nil {
		return err
	}
	k := ListingKeylet(key)
	if err := s.db.Write(ctx, k[:], data); err != nil {
		return fmt.Errorf("write listing %s: %w", key, err)
	}
	cached := *l
	s.cache.Add(k, &cached)
	return nil
}

// DeleteListing removes the listing record, returning the key to the
// Inactive default.
func (s *Store) DeleteListing(ctx context.Context, key asset.Key) error {
	k := ListingKeylet(key)
	if err := s.db.Delete(ctx, k[:]); err != nil {
		return fmt.Errorf("delete listing %s: %w", key, err)
	}
	s.cache.Remove(k)
	return nil
}

// IsAllowed reports allow-list membership for an asset class.
func (s *Store) IsAllowed(ctx context.Context, class asset.Class) (bool, error) {
	k := AllowedKeylet(class)
	_, err := s.db.Read(ctx, k[:])
	if errors.Is(err, keyValueDb.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read allow-list entry %s: %w", class, err)
	}
	return true, nil
}

// SetAllowed idempotently sets allow-list membership, reporting whether the
// membership actually changed.
func (s *Store) SetAllowed(ctx context.Context, class asset.Class, allowed bool) (changed bool, err error) {
	current, err := s.IsAllowed(ctx, class)
	if err != nil {
		return false, err
	}
	if current == allowed {
		return false, nil
	}

	k := AllowedKeylet(class)
	if allowed {
		err = s.db.Write(ctx, k[:], []byte{1})
	} else {
		err = s.db.Delete(ctx, k[:])
	}
	if err != nil {
		return false, fmt.Errorf("set allow-list entry %s: %w", class, err)
	}
	return true, nil
}

// GetServiceConfig returns the stored configuration, or the default when
// none has been set yet.
func (s *Store) GetServiceConfig(ctx context.Context) (ServiceConfig, error) {
	k := ConfigKeylet()
	data, err := s.db.Read(ctx, k[:])
	if errors.Is(err, keyValueDb.ErrKeyNotFound) {
		return DefaultServiceConfig(), nil
	}
	if err != nil {
		return ServiceConfig{}, fmt.Errorf("read service config: %w", err)
	}
	cfg, err := DecodeServiceConfig(data)
	if err != nil {
		return ServiceConfig{}, err
	}
	return *cfg, nil
}

// PutServiceConfig atomically replaces the configuration singleton.
func (s *Store) PutServiceConfig(ctx context.Context, cfg ServiceConfig) error {
	data, err := EncodeServiceConfig(&cfg)
	if err != nil {
		return err
	}
	k := ConfigKeylet()
	if err := s.db.Write(ctx, k[:], data); err != nil {
		return fmt.Errorf("write service config: %w", err)
	}
	return nil
}

// EnsureServiceConfig writes cfg only when no configuration has been stored
// yet, so startup parameters never clobber a later admin change.
func (s *Store) EnsureServiceConfig(ctx context.Context, cfg ServiceConfig) (written bool, err error) {
	k := ConfigKeylet()
	if _, err = s.db.Read(ctx, k[:]); err == nil {
		return false, nil
	}
	if !errors.Is(err, keyValueDb.ErrKeyNotFound) {
		return false, fmt.Errorf("read service config: %w", err)
	}
	if err := s.PutServiceConfig(ctx, cfg); err != nil {
		return false, err
	}
	return true, nil
}

// FeeTotal returns the global total of collected service fees.
func (s *Store) FeeTotal(ctx context.Context) (uint64, error) {
	k := FeeTotalKeylet()
	data, err := s.db.Read(ctx, k[:])
	if errors.Is(err, keyValueDb.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read fee total: %w", err)
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("fee total entry has %d bytes, want 8", len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}

// AddFeeTotal adds amount to the global collected fee total.
func (s *Store) AddFeeTotal(ctx context.Context, amount uint64) error {
	total, err := s.FeeTotal(ctx)
	if err != nil {
		return err
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, total+amount)
	k := FeeTotalKeylet()
	if err := s.db.Write(ctx, k[:], buf); err != nil {
		return fmt.Errorf("write fee total: %w", err)
	}
	return nil
}
