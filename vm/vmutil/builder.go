package vmutil

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/jtriley-eth/libhuff/errors"
	"github.com/jtriley-eth/libhuff/vm"
)

var (
	ErrUnresolvedJump = errors.New("unresolved jump target")
	ErrArity          = errors.New("stack effect does not match declared arity")
	ErrStackMismatch  = errors.New("stack depth differs between paths to a jump target")
	ErrStackUnderflow = errors.New("stack underflow")
	ErrProgramTooLong = errors.New("program too long for 2-byte jump targets")
	ErrBadValue       = errors.New("bad value")
)

// Builder assembles a program while tracking the static depth of the
// stack, so that templates which disagree with their declared arity
// are rejected when the program is built rather than misbehaving when
// it runs.
//
// Depth is tracked along the straight-line path through the program.
// After an instruction that never falls through (JUMP, STOP, RETURN,
// REVERT, INVALID) the depth is unknown until the next jump target
// whose depth is already known from a jump to it.
//
// The first error encountered is kept and returned by Build; later
// ones are dropped.
type Builder struct {
	program     []byte
	jumpCounter int

	// Maps a jump target number to its absolute address.
	jumpAddr map[int]uint32

	// Maps a jump target number to the list of places where its
	// absolute address must be filled in once known.
	jumpPlaceholders map[int][]int

	// Maps a jump target number to the stack depth every path to it
	// must agree on.
	jumpDepth map[int]int

	depth int
	live  bool // depth is known and the next instruction is reachable
	err   error
}

func NewBuilder() *Builder {
	return &Builder{
		jumpAddr:         make(map[int]uint32),
		jumpPlaceholders: make(map[int][]int),
		jumpDepth:        make(map[int]int),
		live:             true,
	}
}

// Assume declares that n items are on the stack at this point, for
// example the arguments of a template built on its own.
func (b *Builder) Assume(n int) *Builder {
	b.depth = n
	b.live = true
	return b
}

// Depth returns the current static stack depth, and false if it is
// not known because the current position is unreachable by falling
// through.
func (b *Builder) Depth() (int, bool) {
	return b.depth, b.live
}

// Fail records err as the builder's error, unless one is already
// recorded. Templates use it to reject bad arguments.
func (b *Builder) Fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Err returns the first error recorded so far.
func (b *Builder) Err() error {
	return b.err
}

// AddOp adds the given opcode to the program. Use the Add methods
// below for PUSH instructions and jumps.
func (b *Builder) AddOp(op vm.Op) *Builder {
	if op.IsPush() {
		return b.Fail(errors.WithDetailf(ErrBadValue, "%s needs immediate data; use AddData", op))
	}
	pops, pushes := vm.StackEffect(op)
	b.effect(op.String(), pops, pushes)
	b.program = append(b.program, byte(op))
	if vm.Halts(op) {
		b.live = false
	}
	return b
}

// AddOps adds each of ops in order.
func (b *Builder) AddOps(ops ...vm.Op) *Builder {
	for _, op := range ops {
		b.AddOp(op)
	}
	return b
}

// AddData adds a PUSH instruction whose immediate is exactly data.
// Empty data adds PUSH0.
func (b *Builder) AddData(data []byte) *Builder {
	if len(data) > 32 {
		return b.Fail(errors.WithDetailf(ErrBadValue, "%d bytes of push data", len(data)))
	}
	b.effect("PUSH", 0, 1)
	if len(data) == 0 {
		b.program = append(b.program, byte(vm.OP_PUSH0))
		return b
	}
	b.program = append(b.program, byte(vm.PushOp(len(data))))
	b.program = append(b.program, data...)
	return b
}

// AddUint64 adds the shortest push of n.
func (b *Builder) AddUint64(n uint64) *Builder {
	return b.AddUint256(uint256.NewInt(n))
}

// AddUint256 adds the shortest push of n.
func (b *Builder) AddUint256(n *uint256.Int) *Builder {
	return b.AddData(n.Bytes())
}

// AddAddress adds a PUSH20 of addr.
func (b *Builder) AddAddress(addr common.Address) *Builder {
	return b.AddData(addr[:])
}

// NewJumpTarget allocates a number that can be used as a jump target
// in AddJump and AddJumpIf. Call SetJumpTarget to associate the
// number with a program location.
func (b *Builder) NewJumpTarget() int {
	b.jumpCounter++
	return b.jumpCounter
}

// AddJump adds an unconditional jump to the given target number. The
// actual program location of the target does not need to be known
// yet, as long as SetJumpTarget is called before Build.
func (b *Builder) AddJump(target int) *Builder {
	b.addJump(vm.OP_JUMP, target)
	b.live = false
	return b
}

// AddJumpIf adds a jump to the given target number, taken when the
// item on top of the stack is nonzero. The item is consumed either
// way.
func (b *Builder) AddJumpIf(target int) *Builder {
	return b.addJump(vm.OP_JUMPI, target)
}

func (b *Builder) addJump(op vm.Op, target int) *Builder {
	b.program = append(b.program, byte(vm.OP_PUSH2))
	b.jumpPlaceholders[target] = append(b.jumpPlaceholders[target], len(b.program))
	b.program = append(b.program, 0, 0, byte(op))

	pops, _ := vm.StackEffect(op)
	b.effect(op.String(), pops-1, 0) // the destination is pushed and popped here
	if b.live {
		b.reach(target)
	}
	return b
}

// SetJumpTarget associates the given jump-target number with the
// current position in the program and adds the JUMPDEST that marks
// it. There must be a call to SetJumpTarget for every jump target
// used before any call to Build.
func (b *Builder) SetJumpTarget(target int) *Builder {
	if _, ok := b.jumpAddr[target]; ok {
		return b.Fail(errors.WithDetailf(ErrBadValue, "jump target %d set twice", target))
	}
	b.jumpAddr[target] = uint32(len(b.program))
	b.program = append(b.program, byte(vm.OP_JUMPDEST))
	if b.live {
		b.reach(target)
	} else if d, ok := b.jumpDepth[target]; ok {
		b.depth = d
		b.live = true
	}
	return b
}

// reach records that the current depth reaches target.
func (b *Builder) reach(target int) {
	d, ok := b.jumpDepth[target]
	if !ok {
		b.jumpDepth[target] = b.depth
		return
	}
	if d != b.depth {
		b.Fail(errors.WithDetailf(ErrStackMismatch, "target %d reached with depth %d and %d", target, d, b.depth))
	}
}

func (b *Builder) effect(name string, pops, pushes int) {
	if !b.live {
		return
	}
	if b.depth < pops {
		b.Fail(errors.WithDetailf(ErrStackUnderflow, "%s needs %d items, have %d", name, pops, b.depth))
	}
	b.depth += pushes - pops
}

// Expand adds the code of m, checking that it finds at least m.Takes
// items on the stack and, if its end is reachable, leaves exactly
// m.Returns in their place.
func (b *Builder) Expand(m Macro) *Builder {
	start, live := b.depth, b.live
	if live && start < m.Takes {
		b.Fail(errors.WithDetailf(ErrStackUnderflow, "%s takes %d items, have %d", m.Name, m.Takes, start))
	}
	if m.Body != nil {
		m.Body(b)
	}
	if live && b.live {
		if got, want := b.depth-start, m.Returns-m.Takes; got != want {
			b.Fail(errors.WithDetailf(ErrArity, "%s has net stack effect %d, declared %d", m.Name, got, want))
		}
	}
	return b
}

// Build produces the bytecode of the program. It first resolves any
// jumps in the program by filling in the addresses of their
// targets. This requires SetJumpTarget to be called prior to Build
// for each jump target used (in a call to AddJump or AddJumpIf). If
// any target's address hasn't been set in this way, this function
// produces ErrUnresolvedJump. Any error recorded while adding code is
// returned first.
func (b *Builder) Build() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.jumpPlaceholders) > 0 && len(b.program) > 0xffff {
		return nil, errors.WithDetailf(ErrProgramTooLong, "%d bytes", len(b.program))
	}
	for target, placeholders := range b.jumpPlaceholders {
		addr, ok := b.jumpAddr[target]
		if !ok {
			return nil, errors.Wrapf(ErrUnresolvedJump, "target %d", target)
		}
		for _, placeholder := range placeholders {
			binary.BigEndian.PutUint16(b.program[placeholder:placeholder+2], uint16(addr))
		}
	}
	return b.program, nil
}
