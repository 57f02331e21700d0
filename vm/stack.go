package vm

import "github.com/holiman/uint256"

func opPop(vm *virtualMachine) error {
	vm.pop()
	return nil
}

func opPush0(vm *virtualMachine) error {
	vm.pushUint64(0)
	return nil
}

func opPush(vm *virtualMachine) error {
	vm.push(new(uint256.Int).SetBytes(vm.data))
	return nil
}

func opDup(vm *virtualMachine) error {
	n := int(vm.op-OP_DUP1) + 1
	v := *vm.peek(n - 1)
	vm.push(&v)
	return nil
}

func opSwap(vm *virtualMachine) error {
	n := int(vm.op-OP_SWAP1) + 1
	top := vm.peek(0)
	other := vm.peek(n)
	*top, *other = *other, *top
	return nil
}
