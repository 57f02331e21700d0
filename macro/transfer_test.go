package macro

import (
	"bytes"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/jtriley-eth/libhuff/testutil"
	"github.com/jtriley-eth/libhuff/vm"
	"github.com/jtriley-eth/libhuff/vm/vmutil"
)

// recordCall stores what the token was called with: selector in slot
// 0, argument words in slots 1 to 3, calldata size in 4 and caller in
// 5.
const recordCall = `
	0 CALLDATALOAD 224 SHR 0 SSTORE
	4 CALLDATALOAD 1 SSTORE
	36 CALLDATALOAD 2 SSTORE
	68 CALLDATALOAD 3 SSTORE
	CALLDATASIZE 4 SSTORE
	CALLER 5 SSTORE
`

var (
	testReceiver = common.HexToAddress("0x4ece1e4")
	testSender   = common.HexToAddress("0x5e4de4")
)

func addrWord(a common.Address) *uint256.Int {
	return new(uint256.Int).SetBytes(a[:])
}

func TestSafeTransferResults(t *testing.T) {
	cases := []struct {
		name    string
		token   string // empty means no code at the token address
		wantErr error
	}{
		{"returns true", "1 0 MSTORE 32 0 RETURN", nil},
		{"returns nothing", "STOP", nil},
		{"returns true and more", "1 0 MSTORE 64 0 RETURN", nil},
		{"no code", "", nil},
		{"returns false", "0 0 MSTORE 32 0 RETURN", ErrTransferFail},
		{"returns two", "2 0 MSTORE 32 0 RETURN", ErrTransferFail},
		{"returns short", "1 0 MSTORE 31 1 RETURN", ErrTransferFail},
		{"reverts with true", "1 0 MSTORE 32 0 REVERT", ErrTransferFail},
		{"reverts empty", "0 0 REVERT", ErrTransferFail},
		{"faults", "INVALID", ErrTransferFail},
	}

	for _, c := range cases {
		for _, from := range []bool{false, true} {
			st := vm.NewState()
			if c.token != "" {
				deploySrc(t, st, testToken, recordCall+c.token)
			}
			var args []*uint256.Int
			if from {
				deploy(t, st, SafeTransferFrom(testToken, 0x80))
				args = []*uint256.Int{addrWord(testSender), addrWord(testReceiver), u(1000)}
			} else {
				deploy(t, st, SafeTransfer(testToken, 0x80))
				args = []*uint256.Int{addrWord(testReceiver), u(1000)}
			}

			res, _ := call(t, st, args...)
			if c.wantErr == nil {
				if res.Reverted {
					t.Errorf("%s (from=%v): reverted with %v", c.name, from, DecodeError(res.ReturnData))
				}
				testutil.ExpectEqual(t, res.ReturnData, []byte(nil), c.name+" return data")
				continue
			}
			if !res.Reverted {
				t.Errorf("%s (from=%v): succeeded\n%s", c.name, from, dumpStorage(st, testToken))
				continue
			}
			testutil.ExpectEqual(t, res.ReturnData, TransferFailSelector[:], c.name+" revert payload")
			testutil.ExpectEqual(t, load(st, testToken, slot(4)), uint64(0), c.name+" token state rolled back")
		}
	}
}

func TestSafeTransferCalldata(t *testing.T) {
	st := vm.NewState()
	deploySrc(t, st, testToken, recordCall+"1 0 MSTORE 32 0 RETURN")
	deploy(t, st, SafeTransfer(testToken, 0))
	call(t, st, addrWord(testReceiver), u(1000))

	testutil.ExpectEqual(t, load(st, testToken, slot(0)), uint64(0xa9059cbb), "selector")
	testutil.ExpectEqual(t, common.BytesToAddress(st.Storage(testToken, slot(1)).Bytes()), testReceiver, "receiver")
	testutil.ExpectEqual(t, load(st, testToken, slot(2)), uint64(1000), "amount")
	testutil.ExpectEqual(t, load(st, testToken, slot(4)), uint64(TransferScratchSize), "calldata size")
	testutil.ExpectEqual(t, common.BytesToAddress(st.Storage(testToken, slot(5)).Bytes()), testContract, "caller")
}

func TestSafeTransferFromCalldata(t *testing.T) {
	st := vm.NewState()
	deploySrc(t, st, testToken, recordCall+"STOP")
	deploy(t, st, SafeTransferFrom(testToken, 0x20))
	call(t, st, addrWord(testSender), addrWord(testReceiver), u(77))

	testutil.ExpectEqual(t, load(st, testToken, slot(0)), uint64(0x23b872dd), "selector")
	testutil.ExpectEqual(t, common.BytesToAddress(st.Storage(testToken, slot(1)).Bytes()), testSender, "sender")
	testutil.ExpectEqual(t, common.BytesToAddress(st.Storage(testToken, slot(2)).Bytes()), testReceiver, "receiver")
	testutil.ExpectEqual(t, load(st, testToken, slot(3)), uint64(77), "amount")
	testutil.ExpectEqual(t, load(st, testToken, slot(4)), uint64(TransferFromScratchSize), "calldata size")
}

// scratchProgram fills the first 256 bytes of memory with 0xff, runs
// m on its calldata arguments and returns those 256 bytes.
func scratchProgram(t *testing.T, m vmutil.Macro) []byte {
	b := vmutil.NewBuilder()
	for off := uint64(0); off < 256; off += 32 {
		b.AddUint64(0).AddOp(vm.OP_NOT).AddUint64(off).AddOp(vm.OP_MSTORE)
	}
	for i := m.Takes - 1; i >= 0; i-- {
		b.AddUint64(uint64(32 * i)).AddOp(vm.OP_CALLDATALOAD)
	}
	b.Expand(m)
	b.AddUint64(256).AddUint64(0).AddOp(vm.OP_RETURN)
	prog, err := b.Build()
	if err != nil {
		testutil.FatalErr(t, err)
	}
	return prog
}

func TestTransferScratchBounds(t *testing.T) {
	const scratch = 0x40
	cases := []struct {
		m    vmutil.Macro
		size int
		args []*uint256.Int
	}{
		{SafeTransfer(testToken, scratch), 68, []*uint256.Int{addrWord(testReceiver), u(1000)}},
		{SafeTransferFrom(testToken, scratch), 100, []*uint256.Int{addrWord(testSender), addrWord(testReceiver), u(1000)}},
	}
	for _, c := range cases {
		for _, ret := range []string{"1 0 MSTORE 32 0 RETURN", "STOP"} {
			st := vm.NewState()
			deploySrc(t, st, testToken, ret)
			st.SetCode(testContract, scratchProgram(t, c.m))

			res, _ := call(t, st, c.args...)
			if res.Reverted {
				t.Fatalf("%s: reverted with %v", c.m.Name, DecodeError(res.ReturnData))
			}
			mem := res.ReturnData
			for i, v := range mem {
				inside := i >= scratch && i < scratch+c.size
				if !inside && v != 0xff {
					t.Errorf("%s: byte %d outside scratch changed to %#x", c.m.Name, i, v)
				}
			}
			// The tail of the calldata is still in place.
			tail := vmutil.EncodeWords(c.args...)
			tail = tail[len(tail)-(c.size-32):]
			if !bytes.Equal(mem[scratch+32:scratch+c.size], tail) {
				t.Errorf("%s: scratch tail = %x want %x", c.m.Name, mem[scratch+32:scratch+c.size], tail)
			}
		}
	}
}
