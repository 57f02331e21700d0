package vm

import "github.com/holiman/uint256"

// Binary operations pop their first operand (the top of the stack)
// and overwrite the second in place.

func opAdd(vm *virtualMachine) error {
	x := vm.pop()
	y := vm.peek(0)
	y.Add(&x, y)
	return nil
}

func opMul(vm *virtualMachine) error {
	x := vm.pop()
	y := vm.peek(0)
	y.Mul(&x, y)
	return nil
}

func opSub(vm *virtualMachine) error {
	x := vm.pop()
	y := vm.peek(0)
	y.Sub(&x, y)
	return nil
}

// opDiv and opMod yield zero for a zero divisor, as the EVM does.
func opDiv(vm *virtualMachine) error {
	x := vm.pop()
	y := vm.peek(0)
	y.Div(&x, y)
	return nil
}

func opMod(vm *virtualMachine) error {
	x := vm.pop()
	y := vm.peek(0)
	y.Mod(&x, y)
	return nil
}

func opLt(vm *virtualMachine) error {
	x := vm.pop()
	y := vm.peek(0)
	setBool(y, x.Lt(y))
	return nil
}

func opGt(vm *virtualMachine) error {
	x := vm.pop()
	y := vm.peek(0)
	setBool(y, x.Gt(y))
	return nil
}

func opEq(vm *virtualMachine) error {
	x := vm.pop()
	y := vm.peek(0)
	setBool(y, x.Eq(y))
	return nil
}

func opIsZero(vm *virtualMachine) error {
	x := vm.peek(0)
	setBool(x, x.IsZero())
	return nil
}

func opAnd(vm *virtualMachine) error {
	x := vm.pop()
	y := vm.peek(0)
	y.And(&x, y)
	return nil
}

func opOr(vm *virtualMachine) error {
	x := vm.pop()
	y := vm.peek(0)
	y.Or(&x, y)
	return nil
}

func opXor(vm *virtualMachine) error {
	x := vm.pop()
	y := vm.peek(0)
	y.Xor(&x, y)
	return nil
}

func opNot(vm *virtualMachine) error {
	x := vm.peek(0)
	x.Not(x)
	return nil
}

// opShl and opShr take the shift amount from the top of the stack.
// Shifting by 256 or more yields zero.
func opShl(vm *virtualMachine) error {
	shift := vm.pop()
	value := vm.peek(0)
	if shift.LtUint64(256) {
		value.Lsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil
}

func opShr(vm *virtualMachine) error {
	shift := vm.pop()
	value := vm.peek(0)
	if shift.LtUint64(256) {
		value.Rsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil
}

func setBool(z *uint256.Int, b bool) {
	if b {
		z.SetOne()
	} else {
		z.Clear()
	}
}
