package macro

import (
	"fmt"
	"testing"

	"github.com/holiman/uint256"

	"github.com/jtriley-eth/libhuff/errors"
	"github.com/jtriley-eth/libhuff/testutil"
	"github.com/jtriley-eth/libhuff/vm"
	"github.com/jtriley-eth/libhuff/vm/vmutil"
)

func TestCastCode(t *testing.T) {
	cases := []struct {
		m    vmutil.Macro
		want string
	}{
		{Mask(8), "0xff"},
		{Mask(256), "PUSH32 0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"},
		{MiniMask(32), "1 DUP1 32 SHL SUB"},
		{UnsafeToUint(16), "0xffff AND"},
		{UnsafeMiniToUint(64), "1 DUP1 64 SHL SUB AND"},
		{ToUint(8), fmt.Sprintf("DUP1 0xff AND DUP2 EQ is_safe JUMPI PUSH4 0x%x 0xe0 SHL 0 MSTORE 4 0 REVERT is_safe:", OverflowSelector)},
		{MiniToUint(8), fmt.Sprintf("DUP1 1 DUP1 8 SHL SUB AND DUP2 EQ is_safe JUMPI PUSH4 0x%x 0xe0 SHL 0 MSTORE 4 0 REVERT is_safe:", OverflowSelector)},
	}
	for _, c := range cases {
		got, err := c.m.Build()
		if err != nil {
			testutil.FatalErr(t, err)
		}
		want, err := vm.Assemble(c.want)
		if err != nil {
			t.Fatal(err)
		}
		testutil.ExpectProgramEqual(t, got, want, c.m.Name)
	}
}

func TestCastNames(t *testing.T) {
	names := []string{
		Mask(32).Name,
		MiniMask(32).Name,
		ToUint(32).Name,
		UnsafeToUint(32).Name,
		MiniToUint(32).Name,
		UnsafeMiniToUint(32).Name,
	}
	want := []string{"U32_MASK", "MINI_U32_MASK", "TO_U32", "UNSAFE_TO_U32", "MINI_TO_U32", "UNSAFE_MINI_TO_U32"}
	testutil.ExpectEqual(t, names, want, "names")
}

func TestCastBitSize(t *testing.T) {
	for _, bits := range []int{-8, 0, 7, 12, 257, 264} {
		for _, m := range []vmutil.Macro{Mask(bits), MiniMask(bits), ToUint(bits), UnsafeToUint(bits), MiniToUint(bits), UnsafeMiniToUint(bits)} {
			_, err := m.Build()
			if errors.Root(err) != ErrBitSize {
				t.Errorf("%s: err = %v want %v", m.Name, err, ErrBitSize)
			}
		}
	}
}

func TestCast(t *testing.T) {
	allOnes := new(uint256.Int).SetAllOne()
	for bits := 8; bits <= 256; bits += 8 {
		m := mask(bits)
		over := new(uint256.Int).Add(m, u(1)) // zero when bits is 256

		for _, mm := range []vmutil.Macro{Mask(bits), MiniMask(bits)} {
			st := vm.NewState()
			deploy(t, st, mm)
			_, out := call(t, st)
			testutil.ExpectEqual(t, out, []*uint256.Int{m}, mm.Name)
		}

		for _, cast := range []vmutil.Macro{ToUint(bits), MiniToUint(bits)} {
			st := vm.NewState()
			deploy(t, st, cast)

			for _, v := range []*uint256.Int{u(0), m} {
				res, out := call(t, st, v)
				if res.Reverted {
					t.Errorf("%s(%s) reverted with %v", cast.Name, v.Hex(), DecodeError(res.ReturnData))
					continue
				}
				testutil.ExpectEqual(t, out, []*uint256.Int{v}, cast.Name)
			}

			if bits == 256 {
				continue
			}
			for _, v := range []*uint256.Int{over, allOnes} {
				res, _ := call(t, st, v)
				if !res.Reverted {
					t.Errorf("%s(%s) did not revert", cast.Name, v.Hex())
					continue
				}
				testutil.ExpectEqual(t, DecodeError(res.ReturnData), ErrOverflow, cast.Name)
			}
		}

		for _, cast := range []vmutil.Macro{UnsafeToUint(bits), UnsafeMiniToUint(bits)} {
			st := vm.NewState()
			deploy(t, st, cast)
			_, out := call(t, st, allOnes)
			testutil.ExpectEqual(t, out, []*uint256.Int{m}, cast.Name+" truncates")
			_, out = call(t, st, over)
			testutil.ExpectEqual(t, out, []*uint256.Int{u(0)}, cast.Name+" wraps")
		}
	}
}
