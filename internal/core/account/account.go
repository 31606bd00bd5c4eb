// Package account defines account identifiers and their derivation from
// public keys.
package account

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/decred/dcrd/crypto/ripemd160"
)

// IDSize is the length of an account identifier in bytes.
const IDSize = 20

// ID is a 160-bit account identifier derived from a public key.
// The zero value is reserved and never owns assets or funds.
type ID [IDSize]byte

// Zero is the reserved empty account identifier.
var Zero ID

var (
	// ErrBadAddress is returned when an address string cannot be parsed.
	ErrBadAddress = errors.New("malformed account address")
)

// IsZero reports whether the ID is the reserved empty identifier.
func (id ID) IsZero() bool {
	return id == Zero
}

// String renders the ID as a 40-character lowercase hex string.
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// FromPubKey derives an account ID from a serialized public key as
// RIPEMD160(SHA256(pubkey)).
func FromPubKey(pubKey []byte) ID {
	sha := sha256.Sum256(pubKey)
	h := ripemd160.New()
	h.Write(sha[:])
	var id ID
	copy(id[:], h.Sum(nil))
	return id
}

// Parse decodes a 40-character hex address into an ID.
func Parse(s string) (ID, error) {
	var id ID
	if len(s) != IDSize*2 {
		return id, fmt.Errorf("%w: want %d hex chars, got %d", ErrBadAddress, IDSize*2, len(s))
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("%w: %v", ErrBadAddress, err)
	}
	copy(id[:], raw)
	return id, nil
}
