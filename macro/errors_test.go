package macro

import (
	"encoding/hex"
	"testing"

	"github.com/jtriley-eth/libhuff/errors"
	"github.com/jtriley-eth/libhuff/testutil"
	"github.com/jtriley-eth/libhuff/vm"
	"github.com/jtriley-eth/libhuff/vm/vmutil"
)

func TestSelectors(t *testing.T) {
	cases := []struct {
		sel  [4]byte
		want string
	}{
		{transferSelector, "a9059cbb"},
		{transferFromSelector, "23b872dd"},
		{OverflowSelector, "35278d12"},
	}
	for _, c := range cases {
		if got := hex.EncodeToString(c.sel[:]); got != c.want {
			t.Errorf("selector = %s want %s", got, c.want)
		}
	}
}

func TestRevert(t *testing.T) {
	m := seq("main", 0, 0, Revert(TransferFailSelector, 0x40))
	prog, err := m.Build()
	if err != nil {
		testutil.FatalErr(t, err)
	}
	want, err := vm.Assemble("PUSH4 0x" + hex.EncodeToString(TransferFailSelector[:]) + " 0xe0 SHL 0x40 MSTORE 4 0x40 REVERT")
	if err != nil {
		t.Fatal(err)
	}
	testutil.ExpectProgramEqual(t, prog, want, "Revert")

	st := vm.NewState()
	deploy(t, st, m)
	res, _ := call(t, st)
	if !res.Reverted {
		t.Fatal("expected revert")
	}
	testutil.ExpectEqual(t, res.ReturnData, TransferFailSelector[:], "revert payload")
	testutil.ExpectEqual(t, DecodeError(res.ReturnData), ErrTransferFail, "DecodeError")
}

func TestDecodeError(t *testing.T) {
	cases := []struct {
		data []byte
		want error
	}{
		{ReentrantSelector[:], ErrReentrant},
		{TransferFailSelector[:], ErrTransferFail},
		{OverflowSelector[:], ErrOverflow},
		{nil, ErrUnknownRevert},
		{[]byte{1, 2, 3, 4}, ErrUnknownRevert},
		{append(ReentrantSelector[:], 0), ErrUnknownRevert},
	}
	for _, c := range cases {
		got := DecodeError(c.data)
		if errors.Root(got) != c.want {
			t.Errorf("DecodeError(%x) = %v want %v", c.data, got, c.want)
		}
	}
}

// An error deep inside nested templates is the one Build reports,
// not the arity errors that follow from it.
func TestNestedBuildError(t *testing.T) {
	m := While(push(1), vmutil.Macro{Name: "bad", Body: func(b *vmutil.Builder) {
		b.Expand(Mask(7))
		b.AddOp(vm.OP_POP)
	}})
	_, err := m.Build()
	if errors.Root(err) != ErrBitSize {
		t.Errorf("err = %v want %v", err, ErrBitSize)
	}
}
