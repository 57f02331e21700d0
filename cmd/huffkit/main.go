/*

Command huffkit assembles, disassembles and runs EVM bytecode, and
prints the code produced by the macro templates.

Usage:

    huffkit asm [source...]
    huffkit disasm <hex>
    huffkit expand <template> [--token addr] [--scratch n] [--hex]
    huffkit run <hex> [--input hex] [--gas n] [--trace]
    huffkit selector <signature>

Environment:

    HUFFKIT_GAS         gas limit for run (default 10000000)
    HUFFKIT_TRACE       trace every step of run to stderr
    HUFFKIT_LOG_PREFIX  value of the app= field on every log line

Flags override the environment.

Examples

Assemble a program that returns the number 42:

    huffkit asm '42 0 MSTORE 32 0 RETURN'

Run it:

    huffkit run 0x602a5f5260205ff3

*/
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/jtriley-eth/libhuff/env"
	"github.com/jtriley-eth/libhuff/log"
)

var (
	// config vars
	gas       = env.Uint64("HUFFKIT_GAS", 10000000)
	trace     = env.Bool("HUFFKIT_TRACE", false)
	logPrefix = env.String("HUFFKIT_LOG_PREFIX", "")
)

func main() {
	env.Parse()
	if *logPrefix != "" {
		log.SetPrefix("app", *logPrefix)
	}

	ctx := log.NewContext(context.Background(), runID())
	cmd := newRootCommand(ctx, config{Gas: *gas, Trace: *trace})
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "huffkit:", err)
		os.Exit(1)
	}
}

func runID() string {
	var b [6]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "-"
	}
	return hex.EncodeToString(b[:])
}
