package vm

import (
	"github.com/holiman/uint256"

	"github.com/jtriley-eth/libhuff/crypto/keccak256"
	"github.com/jtriley-eth/libhuff/errors"
	"github.com/jtriley-eth/libhuff/math/checked"
)

const (
	gasKeccakWord = 6
	gasCopyWord   = 3
)

func opAddress(vm *virtualMachine) error {
	vm.push(new(uint256.Int).SetBytes(vm.contract[:]))
	return nil
}

func opCaller(vm *virtualMachine) error {
	vm.push(new(uint256.Int).SetBytes(vm.caller[:]))
	return nil
}

func opCallValue(vm *virtualMachine) error {
	v := vm.value
	vm.push(&v)
	return nil
}

func opCallDataLoad(vm *virtualMachine) error {
	x := vm.peek(0)
	var buf [32]byte
	if x.IsUint64() && x.Uint64() < uint64(len(vm.input)) {
		copy(buf[:], vm.input[x.Uint64():])
	}
	x.SetBytes32(buf[:])
	return nil
}

func opCallDataSize(vm *virtualMachine) error {
	vm.pushUint64(uint64(len(vm.input)))
	return nil
}

func opCallDataCopy(vm *virtualMachine) error {
	destOffset := vm.pop()
	srcOffset := vm.pop()
	size := vm.pop()
	off, n, err := vm.expandMemory(&destOffset, &size)
	if err != nil {
		return err
	}
	if err = vm.chargeWords(gasCopyWord, n); err != nil {
		return err
	}
	vm.copyToMemory(off, vm.input, &srcOffset, n)
	return nil
}

func opReturnDataSize(vm *virtualMachine) error {
	vm.pushUint64(uint64(len(vm.returnData)))
	return nil
}

// opReturnDataCopy faults, rather than zero-filling, when asked for
// bytes past the end of the return data.
func opReturnDataCopy(vm *virtualMachine) error {
	destOffset := vm.pop()
	srcOffset := vm.pop()
	size := vm.pop()
	if !srcOffset.IsUint64() || !size.IsUint64() {
		return ErrReturnDataOutOfBounds
	}
	end, ok := checked.AddUint64(srcOffset.Uint64(), size.Uint64())
	if !ok || end > uint64(len(vm.returnData)) {
		return errors.WithDetailf(ErrReturnDataOutOfBounds, "want %d bytes, have %d", end, len(vm.returnData))
	}
	off, n, err := vm.expandMemory(&destOffset, &size)
	if err != nil {
		return err
	}
	if err = vm.chargeWords(gasCopyWord, n); err != nil {
		return err
	}
	vm.copyToMemory(off, vm.returnData, &srcOffset, n)
	return nil
}

func opGas(vm *virtualMachine) error {
	vm.pushUint64(vm.gas)
	return nil
}

func opKeccak256(vm *virtualMachine) error {
	offset := vm.pop()
	size := vm.pop()
	off, n, err := vm.expandMemory(&offset, &size)
	if err != nil {
		return err
	}
	if err = vm.chargeWords(gasKeccakWord, n); err != nil {
		return err
	}
	sum := keccak256.Sum(vm.memoryCopy(off, n))
	vm.push(new(uint256.Int).SetBytes32(sum[:]))
	return nil
}

func (vm *virtualMachine) chargeWords(perWord, size uint64) error {
	words, _ := checked.WordCount(size) // size <= maxMemory
	return vm.applyCost(perWord * words)
}
