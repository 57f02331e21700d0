// Package env converts environment variables into Go values.
// It is similar in design to package flag: register variables,
// then call Parse once at startup.
package env

import (
	"fmt"
	"os"
	"strconv"
)

var funcs []func() bool

// Uint64 returns a new uint64 pointer, filled in by Parse.
// Values may be written in decimal or with a 0x prefix.
func Uint64(name string, value uint64) *uint64 {
	p := new(uint64)
	Uint64Var(p, name, value)
	return p
}

// Uint64Var defines a uint64 var with the specified
// name and default value.
func Uint64Var(p *uint64, name string, value uint64) {
	*p = value
	funcs = append(funcs, func() bool {
		if s := os.Getenv(name); s != "" {
			v, err := strconv.ParseUint(s, 0, 64)
			if err != nil {
				fmt.Fprintln(os.Stderr, name, err)
				return false
			}
			*p = v
		}
		return true
	})
}

// Bool returns a new bool pointer.
// When Parse is called,
// env var name will be parsed
// and the resulting value
// will be assigned to the returned location.
// Parsing uses strconv.ParseBool.
func Bool(name string, value bool) *bool {
	p := new(bool)
	BoolVar(p, name, value)
	return p
}

// BoolVar defines a bool var with the specified
// name and default value. The argument p points
// to a bool variable in which to store the value
// of the environment variable.
func BoolVar(p *bool, name string, value bool) {
	*p = value
	funcs = append(funcs, func() bool {
		if s := os.Getenv(name); s != "" {
			v, err := strconv.ParseBool(s)
			if err != nil {
				fmt.Fprintln(os.Stderr, name, err)
				return false
			}
			*p = v
		}
		return true
	})
}

// String returns a new string pointer.
// When Parse is called,
// env var name will be assigned
// to the returned location.
func String(name string, value string) *string {
	p := new(string)
	StringVar(p, name, value)
	return p
}

// StringVar defines a string with the
// specified name and default value.
func StringVar(p *string, name string, value string) {
	*p = value
	funcs = append(funcs, func() bool {
		if s := os.Getenv(name); s != "" {
			*p = s
		}
		return true
	})
}

// Parse parses known env vars
// and assigns the values to the variables
// that were previously registered.
// If any values cannot be parsed,
// Parse prints an error message for each one
// and exits the process with status 1.
func Parse() {
	if !parse() {
		os.Exit(1)
	}
}

func parse() bool {
	ok := true
	for _, f := range funcs {
		ok = f() && ok
	}
	return ok
}
