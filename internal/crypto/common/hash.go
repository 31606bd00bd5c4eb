package crypto

import "crypto/sha512"

// Sha512Half returns the first 32 bytes of a SHA-512 hash of the
// concatenation of the given byte slices.
func Sha512Half(data ...[]byte) [32]byte {
	h := sha512.New()
	for _, d := range data {
		h.Write(d)
	}
	var result [32]byte
	copy(result[:], h.Sum(nil)[:32])
	return result
}
