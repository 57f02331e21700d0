package macro

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/jtriley-eth/libhuff/errors"
	"github.com/jtriley-eth/libhuff/vm"
	"github.com/jtriley-eth/libhuff/vm/vmutil"
)

// ErrBitSize is returned, when building, by cast templates given a
// size that is not a multiple of 8 between 8 and 256.
var ErrBitSize = errors.New("bit size must be a multiple of 8 from 8 to 256")

// Cast templates come in two flavors. The plain ones push the mask as
// a constant; the MINI_ ones compute it with a shift, trading runtime
// gas for code size on wide types. The UNSAFE_ ones truncate instead
// of reverting.

// Mask pushes 2**bits - 1.
func Mask(bits int) vmutil.Macro {
	return vmutil.Macro{
		Name:    fmt.Sprintf("U%d_MASK", bits),
		Takes:   0,
		Returns: 1,
		Body: func(b *vmutil.Builder) {
			if !checkBits(b, bits) {
				return
			}
			b.AddUint256(mask(bits))
		},
	}
}

// MiniMask computes 2**bits - 1 at run time.
//
//	PUSH1 1 DUP1 PUSH bits SHL SUB
func MiniMask(bits int) vmutil.Macro {
	return vmutil.Macro{
		Name:    fmt.Sprintf("MINI_U%d_MASK", bits),
		Takes:   0,
		Returns: 1,
		Body: func(b *vmutil.Builder) {
			if !checkBits(b, bits) {
				return
			}
			b.AddUint64(1).AddOp(vm.OP_DUP1)           // [1, 1]
			b.AddUint64(uint64(bits)).AddOp(vm.OP_SHL) // [1 << bits, 1]
			b.AddOp(vm.OP_SUB)                         // [mask]
		},
	}
}

// ToUint reverts with Overflow() unless the value on top of the stack
// fits in bits bits.
//
//	takes:   [value]
//	returns: [value]
func ToUint(bits int) vmutil.Macro {
	return toUint(fmt.Sprintf("TO_U%d", bits), Mask(bits))
}

// MiniToUint is ToUint using MiniMask.
func MiniToUint(bits int) vmutil.Macro {
	return toUint(fmt.Sprintf("MINI_TO_U%d", bits), MiniMask(bits))
}

// UnsafeToUint truncates the value on top of the stack to bits bits.
//
//	takes:   [value]
//	returns: [value & mask]
func UnsafeToUint(bits int) vmutil.Macro {
	return unsafeToUint(fmt.Sprintf("UNSAFE_TO_U%d", bits), Mask(bits))
}

// UnsafeMiniToUint is UnsafeToUint using MiniMask.
func UnsafeMiniToUint(bits int) vmutil.Macro {
	return unsafeToUint(fmt.Sprintf("UNSAFE_MINI_TO_U%d", bits), MiniMask(bits))
}

func toUint(name string, mask vmutil.Macro) vmutil.Macro {
	return vmutil.Macro{
		Name:    name,
		Takes:   1,
		Returns: 1,
		Body: func(b *vmutil.Builder) {
			isSafe := b.NewJumpTarget()
			b.AddOp(vm.OP_DUP1).Expand(mask).AddOp(vm.OP_AND) // [masked, value]
			b.AddOp(vm.OP_DUP2).AddOp(vm.OP_EQ)               // [is_safe, value]
			b.AddJumpIf(isSafe)
			b.Expand(Revert(OverflowSelector, 0))
			b.SetJumpTarget(isSafe)
		},
	}
}

func unsafeToUint(name string, mask vmutil.Macro) vmutil.Macro {
	return vmutil.Macro{
		Name:    name,
		Takes:   1,
		Returns: 1,
		Body: func(b *vmutil.Builder) {
			b.Expand(mask).AddOp(vm.OP_AND)
		},
	}
}

func checkBits(b *vmutil.Builder, bits int) bool {
	if bits < 8 || bits > 256 || bits%8 != 0 {
		b.Fail(errors.WithDetailf(ErrBitSize, "%d", bits))
		return false
	}
	return true
}

func mask(bits int) *uint256.Int {
	m := new(uint256.Int).Lsh(uint256.NewInt(1), uint(bits))
	return m.Sub(m, uint256.NewInt(1))
}
