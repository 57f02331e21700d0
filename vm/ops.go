package vm

import (
	"fmt"

	"github.com/jtriley-eth/libhuff/errors"
	"github.com/jtriley-eth/libhuff/math/checked"
)

type Op uint8

func (op Op) String() string {
	return ops[op].name
}

// Instruction is one decoded opcode plus its immediate data.
// Only the PUSH family carries data.
type Instruction struct {
	Op   Op
	Len  uint32
	Data []byte
}

const (
	OP_STOP Op = 0x00
	OP_ADD  Op = 0x01
	OP_MUL  Op = 0x02
	OP_SUB  Op = 0x03
	OP_DIV  Op = 0x04
	OP_MOD  Op = 0x06

	OP_LT     Op = 0x10
	OP_GT     Op = 0x11
	OP_EQ     Op = 0x14
	OP_ISZERO Op = 0x15
	OP_AND    Op = 0x16
	OP_OR     Op = 0x17
	OP_XOR    Op = 0x18
	OP_NOT    Op = 0x19
	OP_SHL    Op = 0x1b
	OP_SHR    Op = 0x1c

	OP_KECCAK256 Op = 0x20

	OP_ADDRESS        Op = 0x30
	OP_CALLER         Op = 0x33
	OP_CALLVALUE      Op = 0x34
	OP_CALLDATALOAD   Op = 0x35
	OP_CALLDATASIZE   Op = 0x36
	OP_CALLDATACOPY   Op = 0x37
	OP_RETURNDATASIZE Op = 0x3d
	OP_RETURNDATACOPY Op = 0x3e

	OP_POP      Op = 0x50
	OP_MLOAD    Op = 0x51
	OP_MSTORE   Op = 0x52
	OP_MSTORE8  Op = 0x53
	OP_SLOAD    Op = 0x54
	OP_SSTORE   Op = 0x55
	OP_JUMP     Op = 0x56
	OP_JUMPI    Op = 0x57
	OP_PC       Op = 0x58
	OP_MSIZE    Op = 0x59
	OP_GAS      Op = 0x5a
	OP_JUMPDEST Op = 0x5b
	OP_TLOAD    Op = 0x5c
	OP_TSTORE   Op = 0x5d

	OP_PUSH0  Op = 0x5f
	OP_PUSH1  Op = 0x60
	OP_PUSH2  Op = 0x61
	OP_PUSH3  Op = 0x62
	OP_PUSH4  Op = 0x63
	OP_PUSH5  Op = 0x64
	OP_PUSH6  Op = 0x65
	OP_PUSH7  Op = 0x66
	OP_PUSH8  Op = 0x67
	OP_PUSH9  Op = 0x68
	OP_PUSH10 Op = 0x69
	OP_PUSH11 Op = 0x6a
	OP_PUSH12 Op = 0x6b
	OP_PUSH13 Op = 0x6c
	OP_PUSH14 Op = 0x6d
	OP_PUSH15 Op = 0x6e
	OP_PUSH16 Op = 0x6f
	OP_PUSH17 Op = 0x70
	OP_PUSH18 Op = 0x71
	OP_PUSH19 Op = 0x72
	OP_PUSH20 Op = 0x73
	OP_PUSH21 Op = 0x74
	OP_PUSH22 Op = 0x75
	OP_PUSH23 Op = 0x76
	OP_PUSH24 Op = 0x77
	OP_PUSH25 Op = 0x78
	OP_PUSH26 Op = 0x79
	OP_PUSH27 Op = 0x7a
	OP_PUSH28 Op = 0x7b
	OP_PUSH29 Op = 0x7c
	OP_PUSH30 Op = 0x7d
	OP_PUSH31 Op = 0x7e
	OP_PUSH32 Op = 0x7f

	OP_DUP1  Op = 0x80
	OP_DUP2  Op = 0x81
	OP_DUP3  Op = 0x82
	OP_DUP4  Op = 0x83
	OP_DUP5  Op = 0x84
	OP_DUP6  Op = 0x85
	OP_DUP7  Op = 0x86
	OP_DUP8  Op = 0x87
	OP_DUP9  Op = 0x88
	OP_DUP10 Op = 0x89
	OP_DUP11 Op = 0x8a
	OP_DUP12 Op = 0x8b
	OP_DUP13 Op = 0x8c
	OP_DUP14 Op = 0x8d
	OP_DUP15 Op = 0x8e
	OP_DUP16 Op = 0x8f

	OP_SWAP1  Op = 0x90
	OP_SWAP2  Op = 0x91
	OP_SWAP3  Op = 0x92
	OP_SWAP4  Op = 0x93
	OP_SWAP5  Op = 0x94
	OP_SWAP6  Op = 0x95
	OP_SWAP7  Op = 0x96
	OP_SWAP8  Op = 0x97
	OP_SWAP9  Op = 0x98
	OP_SWAP10 Op = 0x99
	OP_SWAP11 Op = 0x9a
	OP_SWAP12 Op = 0x9b
	OP_SWAP13 Op = 0x9c
	OP_SWAP14 Op = 0x9d
	OP_SWAP15 Op = 0x9e
	OP_SWAP16 Op = 0x9f

	OP_CALL    Op = 0xf1
	OP_RETURN  Op = 0xf3
	OP_REVERT  Op = 0xfd
	OP_INVALID Op = 0xfe
)

// Static gas costs. Dynamic costs (memory growth, hashing, copying,
// forwarded call gas) are charged by the opcode implementations.
const (
	gasZero     = 0
	gasJumpDest = 1
	gasBase     = 2
	gasVeryLow  = 3
	gasLow      = 5
	gasMid      = 8
	gasHigh     = 10
	gasKeccak   = 30
	gasStorage  = 100
	gasCall     = 100
)

type opInfo struct {
	op     Op
	name   string
	fn     func(*virtualMachine) error
	pops   int
	pushes int
	gas    uint64
	halts  bool // control never falls through to the next instruction
}

var (
	ops = [256]opInfo{
		OP_STOP: {OP_STOP, "STOP", opStop, 0, 0, gasZero, true},
		OP_ADD:  {OP_ADD, "ADD", opAdd, 2, 1, gasVeryLow, false},
		OP_MUL:  {OP_MUL, "MUL", opMul, 2, 1, gasLow, false},
		OP_SUB:  {OP_SUB, "SUB", opSub, 2, 1, gasVeryLow, false},
		OP_DIV:  {OP_DIV, "DIV", opDiv, 2, 1, gasLow, false},
		OP_MOD:  {OP_MOD, "MOD", opMod, 2, 1, gasLow, false},

		OP_LT:     {OP_LT, "LT", opLt, 2, 1, gasVeryLow, false},
		OP_GT:     {OP_GT, "GT", opGt, 2, 1, gasVeryLow, false},
		OP_EQ:     {OP_EQ, "EQ", opEq, 2, 1, gasVeryLow, false},
		OP_ISZERO: {OP_ISZERO, "ISZERO", opIsZero, 1, 1, gasVeryLow, false},
		OP_AND:    {OP_AND, "AND", opAnd, 2, 1, gasVeryLow, false},
		OP_OR:     {OP_OR, "OR", opOr, 2, 1, gasVeryLow, false},
		OP_XOR:    {OP_XOR, "XOR", opXor, 2, 1, gasVeryLow, false},
		OP_NOT:    {OP_NOT, "NOT", opNot, 1, 1, gasVeryLow, false},
		OP_SHL:    {OP_SHL, "SHL", opShl, 2, 1, gasVeryLow, false},
		OP_SHR:    {OP_SHR, "SHR", opShr, 2, 1, gasVeryLow, false},

		OP_KECCAK256: {OP_KECCAK256, "KECCAK256", opKeccak256, 2, 1, gasKeccak, false},

		OP_ADDRESS:        {OP_ADDRESS, "ADDRESS", opAddress, 0, 1, gasBase, false},
		OP_CALLER:         {OP_CALLER, "CALLER", opCaller, 0, 1, gasBase, false},
		OP_CALLVALUE:      {OP_CALLVALUE, "CALLVALUE", opCallValue, 0, 1, gasBase, false},
		OP_CALLDATALOAD:   {OP_CALLDATALOAD, "CALLDATALOAD", opCallDataLoad, 1, 1, gasVeryLow, false},
		OP_CALLDATASIZE:   {OP_CALLDATASIZE, "CALLDATASIZE", opCallDataSize, 0, 1, gasBase, false},
		OP_CALLDATACOPY:   {OP_CALLDATACOPY, "CALLDATACOPY", opCallDataCopy, 3, 0, gasVeryLow, false},
		OP_RETURNDATASIZE: {OP_RETURNDATASIZE, "RETURNDATASIZE", opReturnDataSize, 0, 1, gasBase, false},
		OP_RETURNDATACOPY: {OP_RETURNDATACOPY, "RETURNDATACOPY", opReturnDataCopy, 3, 0, gasVeryLow, false},

		OP_POP:      {OP_POP, "POP", opPop, 1, 0, gasBase, false},
		OP_MLOAD:    {OP_MLOAD, "MLOAD", opMload, 1, 1, gasVeryLow, false},
		OP_MSTORE:   {OP_MSTORE, "MSTORE", opMstore, 2, 0, gasVeryLow, false},
		OP_MSTORE8:  {OP_MSTORE8, "MSTORE8", opMstore8, 2, 0, gasVeryLow, false},
		OP_SLOAD:    {OP_SLOAD, "SLOAD", opSload, 1, 1, gasStorage, false},
		OP_SSTORE:   {OP_SSTORE, "SSTORE", opSstore, 2, 0, gasStorage, false},
		OP_JUMP:     {OP_JUMP, "JUMP", opJump, 1, 0, gasMid, true},
		OP_JUMPI:    {OP_JUMPI, "JUMPI", opJumpI, 2, 0, gasHigh, false},
		OP_PC:       {OP_PC, "PC", opPC, 0, 1, gasBase, false},
		OP_MSIZE:    {OP_MSIZE, "MSIZE", opMsize, 0, 1, gasBase, false},
		OP_GAS:      {OP_GAS, "GAS", opGas, 0, 1, gasBase, false},
		OP_JUMPDEST: {OP_JUMPDEST, "JUMPDEST", opJumpDest, 0, 0, gasJumpDest, false},
		OP_TLOAD:    {OP_TLOAD, "TLOAD", opTload, 1, 1, gasStorage, false},
		OP_TSTORE:   {OP_TSTORE, "TSTORE", opTstore, 2, 0, gasStorage, false},

		OP_PUSH0: {OP_PUSH0, "PUSH0", opPush0, 0, 1, gasBase, false},

		OP_CALL:    {OP_CALL, "CALL", nil, 7, 1, gasCall, false},
		OP_RETURN:  {OP_RETURN, "RETURN", opReturn, 2, 0, gasZero, true},
		OP_REVERT:  {OP_REVERT, "REVERT", opRevert, 2, 0, gasZero, true},
		OP_INVALID: {OP_INVALID, "INVALID", opInvalid, 0, 0, gasZero, true},
	}

	opsByName map[string]opInfo
)

// IsDefined reports whether op is implemented by the interpreter.
func (op Op) IsDefined() bool {
	return ops[op].fn != nil
}

// IsPush reports whether op is one of PUSH1 through PUSH32.
func (op Op) IsPush() bool {
	return op >= OP_PUSH1 && op <= OP_PUSH32
}

// PushSize returns the number of immediate bytes that follow op.
func (op Op) PushSize() int {
	if !op.IsPush() {
		return 0
	}
	return int(op-OP_PUSH1) + 1
}

// PushOp returns the PUSHn opcode for an n-byte immediate.
// n must be between 1 and 32.
func PushOp(n int) Op {
	return OP_PUSH1 + Op(n-1)
}

// StackEffect returns how many stack items op requires and how many
// it leaves in their place. DUPn requires n and leaves n+1; SWAPn
// requires and leaves n+1.
func StackEffect(op Op) (pops, pushes int) {
	info := ops[op]
	return info.pops, info.pushes
}

// Halts reports whether op ends straight-line execution, meaning the
// next instruction is reachable only as a jump target.
func Halts(op Op) bool {
	return ops[op].halts
}

// OpByName looks up an opcode by its mnemonic, for example "MSTORE"
// or "PUSH32".
func OpByName(name string) (Op, bool) {
	info, ok := opsByName[name]
	return info.op, ok
}

// ParseOp parses the op at position pc in prog, returning the parsed
// instruction (opcode plus any immediate data).
func ParseOp(prog []byte, pc uint32) (inst Instruction, err error) {
	l := uint32(len(prog))
	if pc >= l {
		err = ErrShortProgram
		return
	}
	opcode := Op(prog[pc])
	inst.Op = opcode
	inst.Len = 1
	if n := opcode.PushSize(); n > 0 {
		inst.Len += uint32(n)
		end, ok := checked.AddUint64(uint64(pc), uint64(inst.Len))
		if !ok {
			err = errors.WithDetail(checked.ErrOverflow, "push data exceeds max program size")
			return
		}
		if end > uint64(l) {
			err = errors.WithDetailf(ErrShortProgram, "%s at pc %d needs %d bytes, %d remain", opcode, pc, n, l-pc-1)
			return
		}
		inst.Data = prog[pc+1 : end]
	}
	return
}

// ParseProgram decodes every instruction in prog.
func ParseProgram(prog []byte) ([]Instruction, error) {
	var result []Instruction
	for pc := uint32(0); pc < uint32(len(prog)); { // update pc inside the loop
		inst, err := ParseOp(prog, pc)
		if err != nil {
			return nil, err
		}
		result = append(result, inst)
		pc += inst.Len
	}
	return result, nil
}

func init() {
	for i := 1; i <= 32; i++ {
		op := PushOp(i)
		ops[op] = opInfo{op, fmt.Sprintf("PUSH%d", i), opPush, 0, 1, gasVeryLow, false}
	}
	for i := 1; i <= 16; i++ {
		op := OP_DUP1 + Op(i-1)
		ops[op] = opInfo{op, fmt.Sprintf("DUP%d", i), opDup, i, i + 1, gasVeryLow, false}

		op = OP_SWAP1 + Op(i-1)
		ops[op] = opInfo{op, fmt.Sprintf("SWAP%d", i), opSwap, i + 1, i + 1, gasVeryLow, false}
	}

	// This is here to break an initialization cycle: opCall runs the
	// interpreter, which reads ops.
	ops[OP_CALL].fn = opCall

	opsByName = make(map[string]opInfo)
	for i, info := range ops {
		if info.fn == nil {
			ops[i] = opInfo{op: Op(i), name: fmt.Sprintf("UNKNOWNx%02x", i)}
			continue
		}
		opsByName[info.name] = info
	}
	opsByName["SHA3"] = ops[OP_KECCAK256]
}
