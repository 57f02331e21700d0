package macro

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/jtriley-eth/libhuff/crypto/keccak256"
	"github.com/jtriley-eth/libhuff/vm"
	"github.com/jtriley-eth/libhuff/vm/vmutil"
)

var (
	transferSelector     = keccak256.Selector("transfer(address,uint256)")
	transferFromSelector = keccak256.Selector("transferFrom(address,address,uint256)")
)

// Scratch sizes of the transfer templates: a selector and two or
// three words of arguments.
const (
	TransferScratchSize     = 4 + 2*32
	TransferFromScratchSize = 4 + 3*32
)

// SafeTransfer calls token.transfer(receiver, amount) and reverts
// with TransferFail() unless the call succeeds and either returns
// nothing or returns true.
//
// The call data is laid out in memory at scratch and the first word
// of return data is copied back there; no memory outside
// [scratch, scratch+68) is written.
//
//	takes:   [receiver, amount]
//	returns: []
func SafeTransfer(token common.Address, scratch uint64) vmutil.Macro {
	return vmutil.Macro{
		Name:    "SAFE_TRANSFER",
		Takes:   2,
		Returns: 0,
		Body: func(b *vmutil.Builder) {
			storeSelector(b, transferSelector, scratch)
			b.AddUint64(scratch + 4).AddOp(vm.OP_MSTORE)  // [amount]
			b.AddUint64(scratch + 36).AddOp(vm.OP_MSTORE) // []
			callToken(b, token, scratch, TransferScratchSize)
		},
	}
}

// SafeTransferFrom calls token.transferFrom(sender, receiver, amount)
// with the same checks as SafeTransfer. No memory outside
// [scratch, scratch+100) is written.
//
//	takes:   [sender, receiver, amount]
//	returns: []
func SafeTransferFrom(token common.Address, scratch uint64) vmutil.Macro {
	return vmutil.Macro{
		Name:    "SAFE_TRANSFER_FROM",
		Takes:   3,
		Returns: 0,
		Body: func(b *vmutil.Builder) {
			storeSelector(b, transferFromSelector, scratch)
			b.AddUint64(scratch + 4).AddOp(vm.OP_MSTORE)  // [receiver, amount]
			b.AddUint64(scratch + 36).AddOp(vm.OP_MSTORE) // [amount]
			b.AddUint64(scratch + 68).AddOp(vm.OP_MSTORE) // []
			callToken(b, token, scratch, TransferFromScratchSize)
		},
	}
}

func storeSelector(b *vmutil.Builder, sel [4]byte, scratch uint64) {
	b.AddData(sel[:]).AddUint64(0xe0).AddOp(vm.OP_SHL)
	b.AddUint64(scratch).AddOp(vm.OP_MSTORE)
}

// callToken calls token with the size bytes at scratch as input and
// checks
//
//	success && (RETURNDATASIZE == 0 || (RETURNDATASIZE > 31 && mload(scratch) == 1))
func callToken(b *vmutil.Builder, token common.Address, scratch, size uint64) {
	b.AddUint64(32).AddUint64(scratch)           // [retOffset, retSize]
	b.AddUint64(size).AddUint64(scratch)         // [argsOffset, argsSize, ...]
	b.AddUint64(0).AddAddress(token)             // [token, value, ...]
	b.AddOp(vm.OP_GAS).AddOp(vm.OP_CALL)         // [success]
	b.AddOps(vm.OP_RETURNDATASIZE, vm.OP_ISZERO) // [rds == 0, success]
	b.AddUint64(31).AddOps(vm.OP_RETURNDATASIZE, vm.OP_GT)
	b.AddUint64(scratch).AddOp(vm.OP_MLOAD).AddUint64(1).AddOp(vm.OP_EQ)
	b.AddOps(vm.OP_AND, vm.OP_OR, vm.OP_AND) // [ok]

	ok := b.NewJumpTarget()
	b.AddJumpIf(ok)
	b.Expand(Revert(TransferFailSelector, scratch))
	b.SetJumpTarget(ok)
}
