// Package keccak256 implements the Keccak-256 hash used by the EVM,
// along with the two derived values the macro library needs:
// 4-byte ABI selectors and "hash minus one" storage slots.
//
// Keccak-256 is the pre-FIPS variant of SHA3-256; it differs from
// sha3.Sum256 only in its padding byte.
package keccak256

import (
	"hash"

	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"
)

// Size is the size of a Keccak-256 checksum in bytes.
const Size = 32

// SelectorSize is the size of an ABI function or error selector.
const SelectorSize = 4

// New returns a new hash.Hash computing the Keccak-256 checksum.
func New() hash.Hash {
	return sha3.NewLegacyKeccak256()
}

// Sum returns the Keccak-256 checksum of the concatenated data.
func Sum(data ...[]byte) [Size]byte {
	var sum [Size]byte
	h := New()
	for _, b := range data {
		h.Write(b)
	}
	h.Sum(sum[:0])
	return sum
}

// Selector returns the first four bytes of the hash of a canonical
// function or error signature, such as "transfer(address,uint256)".
func Selector(signature string) [SelectorSize]byte {
	var sel [SelectorSize]byte
	sum := Sum([]byte(signature))
	copy(sel[:], sum[:SelectorSize])
	return sel
}

// Slot returns keccak256(name) - 1. Subtracting one means the slot
// has no known preimage, so it cannot collide with a mapping or
// dynamic-array slot derived by hashing.
func Slot(name string) [Size]byte {
	sum := Sum([]byte(name))
	v := new(uint256.Int).SetBytes(sum[:])
	v.Sub(v, uint256.NewInt(1))
	return v.Bytes32()
}
