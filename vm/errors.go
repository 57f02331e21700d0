package vm

import "github.com/jtriley-eth/libhuff/errors"

// Faults. Any of these aborts the current frame, consumes all of its
// gas and rolls back its state changes.
var (
	ErrInvalidJump           = errors.New("invalid jump destination")
	ErrInvalidOpcode         = errors.New("invalid opcode")
	ErrMemoryLimit           = errors.New("memory limit exceeded")
	ErrOutOfGas              = errors.New("out of gas")
	ErrReturnDataOutOfBounds = errors.New("return data out of bounds")
	ErrShortProgram          = errors.New("unexpected end of program")
	ErrStackOverflow         = errors.New("stack overflow")
	ErrStackUnderflow        = errors.New("stack underflow")
)

// Assembler errors.
var (
	ErrToken       = errors.New("unrecognized token")
	ErrPushSize    = errors.New("push data too large")
	ErrLabel       = errors.New("bad label")
	ErrLongProgram = errors.New("program too long for 2-byte jump targets")
)
