package vm

import (
	"github.com/ethereum/go-ethereum/common"
)

func opSload(vm *virtualMachine) error {
	key := vm.peek(0)
	v := vm.state.Storage(vm.contract, common.Hash(key.Bytes32()))
	key.SetBytes32(v[:])
	return nil
}

func opSstore(vm *virtualMachine) error {
	key := vm.pop()
	value := vm.pop()
	vm.state.SetStorage(vm.contract, common.Hash(key.Bytes32()), common.Hash(value.Bytes32()))
	return nil
}

func opTload(vm *virtualMachine) error {
	key := vm.peek(0)
	v := vm.state.Transient(vm.contract, common.Hash(key.Bytes32()))
	key.SetBytes32(v[:])
	return nil
}

func opTstore(vm *virtualMachine) error {
	key := vm.pop()
	value := vm.pop()
	vm.state.SetTransient(vm.contract, common.Hash(key.Bytes32()), common.Hash(value.Bytes32()))
	return nil
}
