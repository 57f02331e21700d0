package vm

func opStop(vm *virtualMachine) error {
	vm.halted = true
	return nil
}

func opJump(vm *virtualMachine) error {
	dest := vm.pop()
	return vm.jumpTo(dest.Uint64(), dest.IsUint64())
}

func opJumpI(vm *virtualMachine) error {
	dest := vm.pop()
	cond := vm.pop()
	if cond.IsZero() {
		return nil
	}
	return vm.jumpTo(dest.Uint64(), dest.IsUint64())
}

func (vm *virtualMachine) jumpTo(dest uint64, fits bool) error {
	if !fits || dest >= uint64(len(vm.jumpdests)) || !vm.jumpdests[dest] {
		return ErrInvalidJump
	}
	vm.nextPC = uint32(dest)
	return nil
}

func opJumpDest(vm *virtualMachine) error {
	return nil
}

func opPC(vm *virtualMachine) error {
	vm.pushUint64(uint64(vm.pc))
	return nil
}

func opReturn(vm *virtualMachine) error {
	out, err := vm.popRegion()
	if err != nil {
		return err
	}
	vm.output = out
	vm.halted = true
	return nil
}

// opRevert ends the frame like RETURN, but the caller rolls back the
// frame's state changes. Unused gas is kept.
func opRevert(vm *virtualMachine) error {
	out, err := vm.popRegion()
	if err != nil {
		return err
	}
	vm.output = out
	vm.halted = true
	vm.reverted = true
	return nil
}

func opInvalid(vm *virtualMachine) error {
	return ErrInvalidOpcode
}

// popRegion pops an offset and a size, expands memory to cover them
// and returns a copy of the bytes.
func (vm *virtualMachine) popRegion() ([]byte, error) {
	offset := vm.pop()
	size := vm.pop()
	off, n, err := vm.expandMemory(&offset, &size)
	if err != nil {
		return nil, err
	}
	return vm.memoryCopy(off, n), nil
}
