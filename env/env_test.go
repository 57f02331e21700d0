package env

import (
	"testing"
)

func TestUint64(t *testing.T) {
	t.Setenv("HUFFKIT_TEST_GAS", "0x10")

	result := Uint64("HUFFKIT_TEST_GAS", 1)
	Parse()

	if *result != 16 {
		t.Fatalf("expected result=16, got result=%d", *result)
	}
}

func TestUint64Invalid(t *testing.T) {
	t.Setenv("HUFFKIT_TEST_BAD_GAS", "lots")
	defer func() { funcs = nil }()

	var result uint64
	Uint64Var(&result, "HUFFKIT_TEST_BAD_GAS", 7)
	if parse() {
		t.Fatal("parse() = true want false")
	}
	if result != 7 {
		t.Fatalf("expected default to survive, got %d", result)
	}
}

func TestBool(t *testing.T) {
	result := Bool("HUFFKIT_TEST_NONEXISTENT", true)
	Parse()

	if *result != true {
		t.Fatalf("expected result=true, got result=%t", *result)
	}

	t.Setenv("HUFFKIT_TEST_BOOL", "false")

	result = Bool("HUFFKIT_TEST_BOOL", true)
	Parse()

	if *result != false {
		t.Fatalf("expected result=false, got result=%t", *result)
	}
}

func TestString(t *testing.T) {
	result := String("HUFFKIT_TEST_NONEXISTENT", "default")
	Parse()

	if *result != "default" {
		t.Fatalf("expected result=default, got result=%s", *result)
	}

	t.Setenv("HUFFKIT_TEST_STRING", "other-value")

	result = String("HUFFKIT_TEST_STRING", "default")
	Parse()

	if *result != "other-value" {
		t.Fatalf("expected result=other-value, got result=%s", *result)
	}
}
