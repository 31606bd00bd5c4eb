package auction

import (
	"encoding/binary"

	"github.com/clearbid/auctiond/internal/core/asset"
	crypto "github.com/clearbid/auctiond/internal/crypto/common"
)

// Space identifiers for keylet generation. Each state entry family hashes
// under its own space so keys from different families can never collide.
const (
	spaceListing  uint16 = 'l' // Listing record
	spaceAllowed  uint16 = 'w' // Allow-list membership entry
	spaceConfig   uint16 = 'c' // Service configuration (singleton)
	spaceFeeTotal uint16 = 'f' // Collected fee total (singleton)
)

// Keylet is the addressable location of one state entry: a 256-bit
// collision-resistant key.
type Keylet [32]byte

// indexHash computes a keylet by hashing the space identifier and data.
func indexHash(space uint16, data ...[]byte) Keylet {
	spaceBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(spaceBytes, space)

	inputs := make([][]byte, 0, len(data)+1)
	inputs = append(inputs, spaceBytes)
	inputs = append(inputs, data...)

	return Keylet(crypto.Sha512Half(inputs...))
}

// ListingKeylet returns the keylet of the listing for one asset. The class
// is length-prefixed so ("ab","c") and ("a","bc") hash differently.
func ListingKeylet(key asset.Key) Keylet {
	classBytes := []byte(key.Class)
	classLen := make([]byte, 2)
	binary.BigEndian.PutUint16(classLen, uint16(len(classBytes)))

	idBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(idBytes, key.ID)

	return indexHash(spaceListing, classLen, classBytes, idBytes)
}

// AllowedKeylet returns the keylet of the allow-list entry for a class.
func AllowedKeylet(class asset.Class) Keylet {
	return indexHash(spaceAllowed, []byte(class))
}

// ConfigKeylet returns the keylet of the service configuration singleton.
func ConfigKeylet() Keylet {
	return indexHash(spaceConfig)
}

// FeeTotalKeylet returns the keylet of the collected fee total singleton.
func FeeTotalKeylet() Keylet {
	return indexHash(spaceFeeTotal)
}
