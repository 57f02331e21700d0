package vm

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/jtriley-eth/libhuff/errors"
)

// opCall runs the code at the target address in a child frame that
// shares the world state.
//
// The child receives the requested gas, capped at all but 1/64 of
// what this frame has left after memory expansion. A child that
// returns or reverts gives back its unused gas; a child that faults
// consumes all of it. In both the revert and fault cases the child's
// state changes are rolled back and 0 is pushed. Nothing this frame
// did before the call is affected.
func opCall(vm *virtualMachine) error {
	gasReq := vm.pop()
	addr := vm.pop()
	value := vm.pop()
	argsOffset := vm.pop()
	argsSize := vm.pop()
	retOffset := vm.pop()
	retSize := vm.pop()

	argsOff, argsN, err := vm.expandMemory(&argsOffset, &argsSize)
	if err != nil {
		return err
	}
	retOff, retN, err := vm.expandMemory(&retOffset, &retSize)
	if err != nil {
		return err
	}

	vm.returnData = nil
	if vm.depth+1 > maxCallDepth {
		vm.pushUint64(0)
		return nil
	}

	gas := vm.gas - vm.gas/64
	if gasReq.IsUint64() && gasReq.Uint64() < gas {
		gas = gasReq.Uint64()
	}
	vm.gas -= gas

	to := common.Address(addr.Bytes20())
	input := vm.memoryCopy(argsOff, argsN)

	snap := vm.state.Snapshot()
	child := newVM(vm.ctx, vm.state, vm.contract, to, input, &value, gas, vm.depth+1)
	err = child.run()
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		vm.state.RevertToSnapshot(snap)
		vm.pushUint64(0)
		return nil
	}

	vm.gas += child.gas
	vm.returnData = child.output
	if child.reverted {
		vm.state.RevertToSnapshot(snap)
	}
	n := uint64(len(child.output))
	if n > retN {
		n = retN
	}
	copy(vm.memory[retOff:retOff+n], child.output)
	vm.pushBool(!child.reverted)
	return nil
}
