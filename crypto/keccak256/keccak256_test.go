package keccak256

import (
	"encoding/hex"
	"testing"
)

func TestSum(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"},
		{"abc", "4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45"},
	}
	for _, c := range cases {
		got := Sum([]byte(c.in))
		if hex.EncodeToString(got[:]) != c.want {
			t.Errorf("Sum(%q) = %x want %s", c.in, got, c.want)
		}
	}
}

func TestSumConcatenates(t *testing.T) {
	whole := Sum([]byte("transfer(address,uint256)"))
	parts := Sum([]byte("transfer("), []byte("address,uint256)"))
	if whole != parts {
		t.Errorf("Sum(parts) = %x want %x", parts, whole)
	}
}

func TestSelector(t *testing.T) {
	cases := []struct {
		sig  string
		want string
	}{
		{"transfer(address,uint256)", "a9059cbb"},
		{"transferFrom(address,address,uint256)", "23b872dd"},
		{"balanceOf(address)", "70a08231"},
	}
	for _, c := range cases {
		got := Selector(c.sig)
		if hex.EncodeToString(got[:]) != c.want {
			t.Errorf("Selector(%q) = %x want %s", c.sig, got, c.want)
		}
	}
}

func TestSlot(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"libhuff.reentrancy.guard", "4d73f9582d17895669e8506788a959f3bfc7b56095697a10d72aab1657189bfe"},
		{"", "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a46f"},
	}
	for _, c := range cases {
		slot := Slot(c.name)
		if got := hex.EncodeToString(slot[:]); got != c.want {
			t.Errorf("Slot(%q) = %s want %s", c.name, got, c.want)
		}
	}
}
