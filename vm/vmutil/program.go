package vmutil

import (
	"github.com/holiman/uint256"

	"github.com/jtriley-eth/libhuff/errors"
	"github.com/jtriley-eth/libhuff/vm"
)

// ContractProgram returns a complete program that runs m against its
// calldata. Calldata word i becomes the ith stack item from the top
// on entry to m, and the ith item from the top on exit is returned as
// output word i. The result is:
//
//	<CALLDATALOAD(32*i)>... m <PUSH(32*i) MSTORE>... PUSH(32*m.Returns) PUSH0 RETURN
func ContractProgram(m Macro) ([]byte, error) {
	b := NewBuilder()
	for i := m.Takes - 1; i >= 0; i-- {
		b.AddUint64(uint64(32 * i)).AddOp(vm.OP_CALLDATALOAD)
	}
	b.Expand(m)
	for i := 0; i < m.Returns; i++ {
		b.AddUint64(uint64(32 * i)).AddOp(vm.OP_MSTORE)
	}
	b.AddUint64(uint64(32 * m.Returns)).AddUint64(0).AddOp(vm.OP_RETURN)
	return b.Build()
}

// EncodeWords encodes args as calldata for a program made by
// ContractProgram.
func EncodeWords(args ...*uint256.Int) []byte {
	out := make([]byte, 0, 32*len(args))
	for _, a := range args {
		w := a.Bytes32()
		out = append(out, w[:]...)
	}
	return out
}

// DecodeWords splits the output of a program made by ContractProgram
// into words.
func DecodeWords(data []byte) ([]*uint256.Int, error) {
	if len(data)%32 != 0 {
		return nil, errors.WithDetailf(ErrBadValue, "%d bytes is not a whole number of words", len(data))
	}
	words := make([]*uint256.Int, 0, len(data)/32)
	for i := 0; i < len(data); i += 32 {
		words = append(words, new(uint256.Int).SetBytes32(data[i:i+32]))
	}
	return words, nil
}
