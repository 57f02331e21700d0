package vm

import (
	"github.com/holiman/uint256"

	"github.com/jtriley-eth/libhuff/errors"
	"github.com/jtriley-eth/libhuff/math/checked"
)

// maxMemory bounds a frame's memory independently of gas, so a large
// gas allowance cannot make the interpreter allocate without limit.
const maxMemory = 1 << 25

const gasMemoryWord = 3

func memoryCost(words uint64) uint64 {
	return gasMemoryWord*words + words*words/512
}

// expandMemory grows memory to cover [offset, offset+size), charging
// gas for any new words, and returns the region as integers. A
// zero-size region never expands memory, whatever its offset.
func (vm *virtualMachine) expandMemory(offset, size *uint256.Int) (off, n uint64, err error) {
	if size.IsZero() {
		return 0, 0, nil
	}
	if !offset.IsUint64() || !size.IsUint64() {
		return 0, 0, ErrMemoryLimit
	}
	off, n = offset.Uint64(), size.Uint64()
	end, ok := checked.MemoryEnd(off, n)
	if !ok || end > maxMemory {
		return 0, 0, errors.WithDetailf(ErrMemoryLimit, "region [%d, +%d)", off, n)
	}
	err = vm.growMemory(end)
	return off, n, err
}

func (vm *virtualMachine) growMemory(end uint64) error {
	if end <= uint64(len(vm.memory)) {
		return nil
	}
	words, _ := checked.WordCount(end) // end <= maxMemory
	oldWords := uint64(len(vm.memory)) / 32
	err := vm.applyCost(memoryCost(words) - memoryCost(oldWords))
	if err != nil {
		return err
	}
	grown := make([]byte, words*32)
	copy(grown, vm.memory)
	vm.memory = grown
	return nil
}

func (vm *virtualMachine) memoryCopy(off, n uint64) []byte {
	if n == 0 {
		return nil
	}
	out := make([]byte, n)
	copy(out, vm.memory[off:off+n])
	return out
}

var word = uint256.NewInt(32)

func opMload(vm *virtualMachine) error {
	offset := vm.peek(0)
	off, _, err := vm.expandMemory(offset, word)
	if err != nil {
		return err
	}
	offset.SetBytes32(vm.memory[off : off+32])
	return nil
}

func opMstore(vm *virtualMachine) error {
	offset := vm.pop()
	value := vm.pop()
	off, _, err := vm.expandMemory(&offset, word)
	if err != nil {
		return err
	}
	value.WriteToSlice(vm.memory[off : off+32])
	return nil
}

func opMstore8(vm *virtualMachine) error {
	offset := vm.pop()
	value := vm.pop()
	off, _, err := vm.expandMemory(&offset, uint256.NewInt(1))
	if err != nil {
		return err
	}
	vm.memory[off] = byte(value.Uint64())
	return nil
}

func opMsize(vm *virtualMachine) error {
	vm.pushUint64(uint64(len(vm.memory)))
	return nil
}

// copyToMemory copies src[srcOff:srcOff+n] to memory at destOff,
// zero-filling past the end of src.
func (vm *virtualMachine) copyToMemory(destOff uint64, src []byte, srcOff *uint256.Int, n uint64) {
	dest := vm.memory[destOff : destOff+n]
	for i := range dest {
		dest[i] = 0
	}
	if !srcOff.IsUint64() || srcOff.Uint64() >= uint64(len(src)) {
		return
	}
	copy(dest, src[srcOff.Uint64():])
}
