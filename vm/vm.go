package vm

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/jtriley-eth/libhuff/errors"
	"github.com/jtriley-eth/libhuff/metrics"
)

const (
	maxStack     = 1024
	maxCallDepth = 1024

	// Check the context for cancellation every this many steps.
	ctxCheckInterval = 1024
)

type virtualMachine struct {
	ctx   context.Context
	state *State

	program   []byte
	jumpdests []bool
	pc        uint32
	nextPC    uint32
	gas       uint64

	// The opcode being executed and the data parsed out of it, if it
	// is a PUSH.
	op   Op
	data []byte

	// CALL spawns a child vm with depth+1
	depth int

	// stack[len(stack)-1] is the top element.
	stack  []uint256.Int
	memory []byte

	contract common.Address
	caller   common.Address
	value    uint256.Int
	input    []byte

	// returnData holds the output of the most recent nested call.
	returnData []byte

	output   []byte
	halted   bool
	reverted bool
	steps    uint64
}

// TraceOut - if non-nil - will receive trace output during
// execution.
var TraceOut io.Writer

// CallParams describes a top-level call.
type CallParams struct {
	Caller common.Address
	To     common.Address
	Input  []byte
	Value  *uint256.Int // nil means zero
	Gas    uint64
}

// Result is the outcome of a call that ran to completion, either
// returning or reverting.
type Result struct {
	ReturnData []byte
	Reverted   bool
	GasUsed    uint64
	GasLeft    uint64
}

// Call executes the code at p.To as a top-level transaction.
//
// If the code returns or stops, its state changes are kept and Call
// returns a Result. If it reverts, its state changes are undone and
// Call returns a Result with Reverted set and the revert payload in
// ReturnData. If it faults, its state changes are undone and Call
// returns an error whose root is one of the fault errors in this
// package, wrapped in an Error. Transient storage is cleared before
// Call returns in every case.
func Call(ctx context.Context, st *State, p CallParams) (*Result, error) {
	defer st.EndTransaction()

	vm := newVM(ctx, st, p.Caller, p.To, p.Input, p.Value, p.Gas, 0)
	snap := st.Snapshot()
	err := vm.run()
	if err != nil {
		st.RevertToSnapshot(snap)
		metrics.RecordCall(metrics.Faulted, p.Gas)
		return nil, wrapErr(err, vm)
	}

	res := &Result{
		ReturnData: vm.output,
		Reverted:   vm.reverted,
		GasUsed:    p.Gas - vm.gas,
		GasLeft:    vm.gas,
	}
	if vm.reverted {
		st.RevertToSnapshot(snap)
		metrics.RecordCall(metrics.Reverted, res.GasUsed)
	} else {
		metrics.RecordCall(metrics.Returned, res.GasUsed)
	}
	return res, nil
}

func newVM(ctx context.Context, st *State, caller, to common.Address, input []byte, value *uint256.Int, gas uint64, depth int) *virtualMachine {
	prog := st.Code(to)
	vm := &virtualMachine{
		ctx:       ctx,
		state:     st,
		program:   prog,
		jumpdests: analyzeJumpDests(prog),
		gas:       gas,
		depth:     depth,
		contract:  to,
		caller:    caller,
		input:     input,
	}
	if value != nil {
		vm.value = *value
	}
	return vm
}

func (vm *virtualMachine) run() error {
	for vm.pc = 0; !vm.halted && vm.pc < uint32(len(vm.program)); { // handle vm.pc updates in step
		err := vm.step()
		if err != nil {
			return err
		}
	}
	return nil
}

func (vm *virtualMachine) step() error {
	vm.steps++
	if vm.steps%ctxCheckInterval == 0 {
		if err := vm.ctx.Err(); err != nil {
			return err
		}
	}

	inst, err := ParseOp(vm.program, vm.pc)
	if err != nil {
		return err
	}

	vm.nextPC = vm.pc + inst.Len

	if TraceOut != nil {
		fmt.Fprintf(TraceOut, "vm %d pc %d gas %d %s", vm.depth, vm.pc, vm.gas, inst.Op)
		if len(inst.Data) > 0 {
			fmt.Fprintf(TraceOut, " 0x%x", inst.Data)
		}
		fmt.Fprint(TraceOut, "\n")
	}

	info := ops[inst.Op]
	if info.fn == nil {
		return errors.WithDetailf(ErrInvalidOpcode, "0x%02x", byte(inst.Op))
	}
	if len(vm.stack) < info.pops {
		return errors.WithDetailf(ErrStackUnderflow, "%s needs %d items, have %d", inst.Op, info.pops, len(vm.stack))
	}
	if len(vm.stack)-info.pops+info.pushes > maxStack {
		return ErrStackOverflow
	}
	err = vm.applyCost(info.gas)
	if err != nil {
		return err
	}

	vm.op = inst.Op
	vm.data = inst.Data
	err = info.fn(vm)
	if err != nil {
		return err
	}
	vm.pc = vm.nextPC

	if TraceOut != nil {
		for i := len(vm.stack) - 1; i >= 0; i-- {
			fmt.Fprintf(TraceOut, "  stack %d: %s\n", len(vm.stack)-1-i, vm.stack[i].Hex())
		}
	}

	return nil
}

// push and pop assume step has already checked the stack bounds for
// the current opcode.
func (vm *virtualMachine) push(v *uint256.Int) {
	vm.stack = append(vm.stack, *v)
}

func (vm *virtualMachine) pushUint64(n uint64) {
	vm.stack = append(vm.stack, *uint256.NewInt(n))
}

func (vm *virtualMachine) pushBool(b bool) {
	var n uint64
	if b {
		n = 1
	}
	vm.pushUint64(n)
}

func (vm *virtualMachine) pop() uint256.Int {
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v
}

// peek returns a pointer to the nth item from the top, so binary
// operations can write their result in place.
func (vm *virtualMachine) peek(n int) *uint256.Int {
	return &vm.stack[len(vm.stack)-1-n]
}

func (vm *virtualMachine) applyCost(n uint64) error {
	if n > vm.gas {
		vm.gas = 0
		return ErrOutOfGas
	}
	vm.gas -= n
	return nil
}

// analyzeJumpDests marks every JUMPDEST byte that is an opcode
// rather than part of a PUSH immediate.
func analyzeJumpDests(prog []byte) []bool {
	dests := make([]bool, len(prog))
	for pc := 0; pc < len(prog); {
		op := Op(prog[pc])
		if op == OP_JUMPDEST {
			dests[pc] = true
		}
		pc += 1 + op.PushSize()
	}
	return dests
}

// Error is a fault together with the program and location that
// produced it.
type Error struct {
	Err   error
	Prog  []byte
	PC    uint32
	Depth int
}

func (e Error) Error() string {
	dis, err := Disassemble(e.Prog)
	if err != nil {
		dis = "0x" + hex.EncodeToString(e.Prog)
	}
	return fmt.Sprintf("%s [depth %d pc %d; prog %s]", e.Err.Error(), e.Depth, e.PC, dis)
}

func (e Error) Unwrap() error {
	return e.Err
}

func wrapErr(err error, vm *virtualMachine) error {
	if err == nil {
		return nil
	}
	return Error{
		Err:   err,
		Prog:  vm.program,
		PC:    vm.pc,
		Depth: vm.depth,
	}
}
