package macro

import (
	"context"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/jtriley-eth/libhuff/testutil"
	"github.com/jtriley-eth/libhuff/vm"
	"github.com/jtriley-eth/libhuff/vm/vmutil"
)

var (
	testContract = common.HexToAddress("0xc0de")
	testToken    = common.HexToAddress("0x70c3e4")
	testCaller   = common.HexToAddress("0xca11e4")
)

const testGas = 10000000

// deploy builds m into a contract with vmutil.ContractProgram and
// deploys it at testContract.
func deploy(t testing.TB, st *vm.State, m vmutil.Macro) {
	t.Helper()
	prog, err := vmutil.ContractProgram(m)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	st.SetCode(testContract, prog)
}

func deploySrc(t testing.TB, st *vm.State, addr common.Address, src string) {
	t.Helper()
	prog, err := vm.Assemble(src)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	st.SetCode(addr, prog)
}

// call calls testContract with args as calldata words and returns the
// result and, unless it reverted, the returned words.
func call(t testing.TB, st *vm.State, args ...*uint256.Int) (*vm.Result, []*uint256.Int) {
	t.Helper()
	res, err := vm.Call(context.Background(), st, vm.CallParams{
		Caller: testCaller,
		To:     testContract,
		Input:  vmutil.EncodeWords(args...),
		Gas:    testGas,
	})
	if err != nil {
		testutil.FatalErr(t, err)
	}
	if res.Reverted {
		return res, nil
	}
	words, err := vmutil.DecodeWords(res.ReturnData)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	return res, words
}

func u(n uint64) *uint256.Int {
	return uint256.NewInt(n)
}

func slot(n uint64) common.Hash {
	return common.Hash(u(n).Bytes32())
}

func load(st *vm.State, addr common.Address, key common.Hash) uint64 {
	v := st.Storage(addr, key)
	return new(uint256.Int).SetBytes32(v[:]).Uint64()
}

// push is a template leaving the constant n.
func push(n uint64) vmutil.Macro {
	return vmutil.Macro{Name: "push", Returns: 1, Body: func(b *vmutil.Builder) {
		b.AddUint64(n)
	}}
}

// incr adds one to storage slot k, so tests can observe which
// templates ran and how often.
func incr(k uint64) vmutil.Macro {
	return vmutil.Macro{Name: "incr", Body: func(b *vmutil.Builder) {
		b.AddUint64(k).AddOp(vm.OP_SLOAD).AddUint64(1).AddOp(vm.OP_ADD)
		b.AddUint64(k).AddOp(vm.OP_SSTORE)
	}}
}

// slotLess leaves 1 while storage slot k is less than n.
func slotLess(k, n uint64) vmutil.Macro {
	return vmutil.Macro{Name: "slotLess", Returns: 1, Body: func(b *vmutil.Builder) {
		b.AddUint64(k).AddOp(vm.OP_SLOAD).AddUint64(n).AddOp(vm.OP_GT)
	}}
}

// arg leaves calldata word i.
func arg(i uint64) vmutil.Macro {
	return vmutil.Macro{Name: "arg", Returns: 1, Body: func(b *vmutil.Builder) {
		b.AddUint64(32 * i).AddOp(vm.OP_CALLDATALOAD)
	}}
}

func seq(name string, takes, returns int, ms ...vmutil.Macro) vmutil.Macro {
	return vmutil.Macro{Name: name, Takes: takes, Returns: returns, Body: func(b *vmutil.Builder) {
		for _, m := range ms {
			b.Expand(m)
		}
	}}
}

func dumpStorage(st *vm.State, addrs ...common.Address) string {
	m := make(map[common.Address]map[common.Hash]common.Hash)
	for _, a := range addrs {
		m[a] = make(map[common.Hash]common.Hash)
		for i := uint64(0); i < 8; i++ {
			if v := st.Storage(a, slot(i)); v != (common.Hash{}) {
				m[a][slot(i)] = v
			}
		}
		if v := st.Storage(a, GuardSlot); v != (common.Hash{}) {
			m[a][GuardSlot] = v
		}
	}
	return spew.Sdump(m)
}
