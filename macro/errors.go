package macro

import (
	"github.com/jtriley-eth/libhuff/crypto/keccak256"
	"github.com/jtriley-eth/libhuff/errors"
	"github.com/jtriley-eth/libhuff/vm"
	"github.com/jtriley-eth/libhuff/vm/vmutil"
)

// Errors signalled by the templates at run time. A reverting program
// carries one of their 4-byte selectors as its entire revert payload;
// DecodeError maps the payload back.
var (
	ErrReentrant     = errors.New("reentrant call")
	ErrTransferFail  = errors.New("token transfer failed")
	ErrOverflow      = errors.New("cast overflow")
	ErrUnknownRevert = errors.New("unknown revert reason")
)

var (
	ReentrantSelector    = keccak256.Selector("Reentrant()")
	TransferFailSelector = keccak256.Selector("TransferFail()")
	OverflowSelector     = keccak256.Selector("Overflow()")
)

var selectorErrs = map[[4]byte]error{
	ReentrantSelector:    ErrReentrant,
	TransferFailSelector: ErrTransferFail,
	OverflowSelector:     ErrOverflow,
}

// Revert aborts with selector as the 4-byte revert payload, written
// to memory at offset. It overwrites the 32 bytes at offset.
//
//	PUSH4 selector PUSH1 0xe0 SHL PUSH offset MSTORE PUSH1 4 PUSH offset REVERT
func Revert(selector [4]byte, offset uint64) vmutil.Macro {
	return vmutil.Macro{
		Name:    "REVERT",
		Takes:   0,
		Returns: 0,
		Body: func(b *vmutil.Builder) {
			b.AddData(selector[:]).AddUint64(0xe0).AddOp(vm.OP_SHL) // [selector << 224]
			b.AddUint64(offset).AddOp(vm.OP_MSTORE)                 // []
			b.AddUint64(4).AddUint64(offset).AddOp(vm.OP_REVERT)
		},
	}
}

// DecodeError returns the error whose selector is the revert payload
// data. Payloads other than a known bare selector yield
// ErrUnknownRevert.
func DecodeError(data []byte) error {
	if len(data) == 4 {
		var sel [4]byte
		copy(sel[:], data)
		if err, ok := selectorErrs[sel]; ok {
			return err
		}
	}
	if len(data) == 0 {
		return errors.WithDetail(ErrUnknownRevert, "empty revert data")
	}
	return errors.WithDetailf(ErrUnknownRevert, "revert data 0x%x", data)
}
