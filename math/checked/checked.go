/*
Package checked implements the overflow-checked arithmetic the
interpreter uses for memory offsets, sizes and gas.
*/
package checked

import (
	"errors"
	"math"
)

var ErrOverflow = errors.New("arithmetic overflow")

// AddUint64 returns a + b
// with an integer overflow check.
func AddUint64(a, b uint64) (sum uint64, ok bool) {
	if math.MaxUint64-a < b {
		return 0, false
	}
	return a + b, true
}

// MemoryEnd returns the first byte past the region [offset, offset+size).
// A zero-size region touches no memory and ends at 0 regardless of
// offset.
func MemoryEnd(offset, size uint64) (end uint64, ok bool) {
	if size == 0 {
		return 0, true
	}
	return AddUint64(offset, size)
}

// WordCount returns the number of 32-byte words needed to hold size
// bytes.
func WordCount(size uint64) (words uint64, ok bool) {
	n, ok := AddUint64(size, 31)
	if !ok {
		return 0, false
	}
	return n / 32, true
}
