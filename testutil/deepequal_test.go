package testutil

import (
	"testing"

	"github.com/holiman/uint256"
)

func TestDeepEqual(t *testing.T) {
	type result struct {
		ReturnData []byte
		Reverted   bool
		GasUsed    uint64
	}

	cases := []struct {
		a, b interface{}
		want bool
	}{
		{nil, nil, true},
		{[]byte(nil), []byte{}, true},
		{nil, []byte{}, true},
		{nil, []byte{0xf3}, false},
		{[]byte{0x5f, 0xf3}, []byte{0x5f, 0xf3}, true},
		{[]byte{0x5f}, []byte{0x5f, 0xf3}, false},
		{[]byte{1}, []uint16{1}, false},
		{[4]byte{0xa9, 0x05, 0x9c, 0xbb}, [4]byte{0xa9, 0x05, 0x9c, 0xbb}, true},
		{[4]byte{}, [3]byte{}, false},
		{result{}, result{ReturnData: []byte{}}, true},
		{result{Reverted: true}, result{}, false},
		{result{GasUsed: 21}, result{GasUsed: 21}, true},
		{uint256.NewInt(7), uint256.NewInt(7), true},
		{uint256.NewInt(7), uint256.NewInt(8), false},
		{[]*uint256.Int{uint256.NewInt(1)}, []*uint256.Int{uint256.NewInt(1)}, true},
		{[]*uint256.Int{uint256.NewInt(1)}, []*uint256.Int{nil}, false},
		{(*uint256.Int)(nil), (*uint256.Int)(nil), true},
		{map[string][]byte{"a": nil}, map[string][]byte{"a": {}}, true},
		{map[string][]byte{"a": nil}, map[string][]byte{"b": nil}, false},
		{"PUSH0", "PUSH0", true},
		{"PUSH0", nil, false},
	}

	for i, c := range cases {
		if got := DeepEqual(c.a, c.b); got != c.want {
			t.Errorf("case %d: DeepEqual(%v, %v) = %v want %v", i, c.a, c.b, got, c.want)
		}
	}
}
