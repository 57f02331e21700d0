/*
Package vm implements a reference interpreter for the subset of the
EVM instruction set that the macro library emits, plus an assembler
and disassembler for that subset.

The entry point is Call, which runs the code stored at an address in a
State with some input and a gas allowance. Each call, including nested
CALLs, constructs a disposable virtualMachine object.

The program is interpreted byte-by-byte by the main loop in
virtualMachine.run(). Opcodes fall into these categories, each with
a corresponding .go file:
  - numeric (arithmetic, comparison, bitwise)
  - stack (PUSH, DUP, SWAP, POP)
  - control (JUMP, JUMPI, STOP, RETURN, REVERT)
  - memory
  - storage (persistent and transient)
  - introspection (call data, return data, addresses, gas)
  - call

Each instruction has a static gas cost, charged in step before the
opcode runs, and some have a dynamic cost (memory growth, hashing,
copying, gas forwarded to a callee) charged by the opcode itself.

There are two ways for a frame to end abnormally. REVERT ends it with
a payload and refunds the unused gas. A fault (stack underflow, bad
jump, out of gas and so on) ends it with no payload and consumes all
of its gas. Either way every storage write the frame made, including
writes made by frames it called, is undone through the State journal.
A caller that sees a nested CALL fail decides for itself whether to
propagate the failure; the macros in this repository always do.

A State is not safe for concurrent use. Execution is synchronous: a
CALL runs the callee to completion before the caller continues.
*/
package vm
