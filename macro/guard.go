package macro

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/jtriley-eth/libhuff/crypto/keccak256"
	"github.com/jtriley-eth/libhuff/vm"
	"github.com/jtriley-eth/libhuff/vm/vmutil"
)

// Sentinel values of the guard slot. A slot that has never been
// written reads as zero, which the guard treats like Unlocked: entry
// is refused only when the slot equals Locked.
const (
	Unlocked = 1
	Locked   = 2
)

// GuardSlot is the persistent storage key of the reentrancy guard,
// keccak256("libhuff.reentrancy.guard") - 1. Programs using the guard
// must not use this slot for anything else.
var GuardSlot = common.Hash(keccak256.Slot("libhuff.reentrancy.guard"))

// Lock reverts with Reentrant() if the guard is held and otherwise
// takes it.
//
//	[GuardSlot] SLOAD [Locked] EQ ISZERO JUMPI(ok) REVERT(Reentrant) ok: [Locked] [GuardSlot] SSTORE
func Lock() vmutil.Macro {
	return vmutil.Macro{
		Name:    "LOCK",
		Takes:   0,
		Returns: 0,
		Body: func(b *vmutil.Builder) {
			ok := b.NewJumpTarget()
			b.AddData(GuardSlot[:]).AddOp(vm.OP_SLOAD)
			b.AddUint64(Locked).AddOp(vm.OP_EQ).AddOp(vm.OP_ISZERO)
			b.AddJumpIf(ok)
			b.Expand(Revert(ReentrantSelector, 0))
			b.SetJumpTarget(ok)
			b.AddUint64(Locked).AddData(GuardSlot[:]).AddOp(vm.OP_SSTORE)
		},
	}
}

// Unlock releases the guard.
func Unlock() vmutil.Macro {
	return vmutil.Macro{
		Name:    "UNLOCK",
		Takes:   0,
		Returns: 0,
		Body: func(b *vmutil.Builder) {
			b.AddUint64(Unlocked).AddData(GuardSlot[:]).AddOp(vm.OP_SSTORE)
		},
	}
}

// NonReentrant runs inner while holding the guard. A call that
// re-enters the program while inner runs and reaches NonReentrant
// again reverts with Reentrant().
//
// inner must return control to the guard; if it halts the program
// successfully (STOP or RETURN) the guard is left locked for good. If
// it reverts, the guard's own write is rolled back with everything
// else, so no unlock is needed on that path.
func NonReentrant(inner vmutil.Macro) vmutil.Macro {
	return vmutil.Macro{
		Name:    "NON_REENTRANT",
		Takes:   inner.Takes,
		Returns: inner.Returns,
		Body: func(b *vmutil.Builder) {
			b.Expand(Lock()).Expand(inner).Expand(Unlock())
		},
	}
}
