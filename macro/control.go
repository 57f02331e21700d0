package macro

import (
	"github.com/jtriley-eth/libhuff/errors"
	"github.com/jtriley-eth/libhuff/vm"
	"github.com/jtriley-eth/libhuff/vm/vmutil"
)

// The declared arity of a control-flow template is derived from its
// arguments: it takes as many items as the most demanding argument
// and its net effect is that of the construct as a whole.

// While runs body for as long as cond leaves a nonzero value. cond
// must have net effect +1 and body net effect 0. If cond is zero on
// the first check, body never runs.
//
//	start: JUMPDEST cond ISZERO JUMPI(end) body JUMP(start) end: JUMPDEST
func While(cond, body vmutil.Macro) vmutil.Macro {
	takes := maxTakes(cond, body)
	return vmutil.Macro{
		Name:    "WHILE",
		Takes:   takes,
		Returns: takes,
		Body: func(b *vmutil.Builder) {
			if !checkArity(b, "WHILE", cond, 1) || !checkArity(b, "WHILE", body, 0) {
				return
			}
			start, end := b.NewJumpTarget(), b.NewJumpTarget()
			b.SetJumpTarget(start)
			b.Expand(cond).AddOp(vm.OP_ISZERO).AddJumpIf(end)
			b.Expand(body).AddJump(start)
			b.SetJumpTarget(end)
		},
	}
}

// DoWhile runs body, then repeats it for as long as cond leaves a
// nonzero value. body always runs at least once.
//
//	start: JUMPDEST body cond JUMPI(start)
func DoWhile(body, cond vmutil.Macro) vmutil.Macro {
	takes := maxTakes(cond, body)
	return vmutil.Macro{
		Name:    "DO_WHILE",
		Takes:   takes,
		Returns: takes,
		Body: func(b *vmutil.Builder) {
			if !checkArity(b, "DO_WHILE", cond, 1) || !checkArity(b, "DO_WHILE", body, 0) {
				return
			}
			start := b.NewJumpTarget()
			b.SetJumpTarget(start)
			b.Expand(body).Expand(cond).AddJumpIf(start)
		},
	}
}

// If runs body when cond leaves a nonzero value.
//
//	cond ISZERO JUMPI(end) body end: JUMPDEST
func If(cond, body vmutil.Macro) vmutil.Macro {
	takes := maxTakes(cond, body)
	return vmutil.Macro{
		Name:    "IF",
		Takes:   takes,
		Returns: takes,
		Body: func(b *vmutil.Builder) {
			if !checkArity(b, "IF", cond, 1) || !checkArity(b, "IF", body, 0) {
				return
			}
			end := b.NewJumpTarget()
			b.Expand(cond).AddOp(vm.OP_ISZERO).AddJumpIf(end)
			b.Expand(body)
			b.SetJumpTarget(end)
		},
	}
}

// Ternary runs exactly one of t and f: t when cond leaves a nonzero
// value, f otherwise. t and f must have the same net effect, which
// becomes the net effect of the whole.
//
//	cond JUMPI(T) f JUMP(end) T: JUMPDEST t end: JUMPDEST
func Ternary(cond, t, f vmutil.Macro) vmutil.Macro {
	takes := maxTakes(cond, t, f)
	return vmutil.Macro{
		Name:    "TERNARY",
		Takes:   takes,
		Returns: takes + t.Net(),
		Body: func(b *vmutil.Builder) {
			if !checkArity(b, "TERNARY", cond, 1) || !checkArity(b, "TERNARY", f, t.Net()) {
				return
			}
			truthy, end := b.NewJumpTarget(), b.NewJumpTarget()
			b.Expand(cond).AddJumpIf(truthy)
			b.Expand(f).AddJump(end)
			b.SetJumpTarget(truthy)
			b.Expand(t)
			b.SetJumpTarget(end)
		},
	}
}

// BranchlessTernary leaves t's value when cond is nonzero and f's
// otherwise, without jumping. Both t and f always run, side effects
// included; only their values are selected between. cond, t and f
// must each have net effect +1. t and f run above the mask, so they
// may not take items from the caller's stack.
//
//	cond ISZERO ISZERO t DUP2 MUL SWAP1 ISZERO f MUL ADD
func BranchlessTernary(cond, t, f vmutil.Macro) vmutil.Macro {
	return vmutil.Macro{
		Name:    "BRANCHLESS_TERNARY",
		Takes:   cond.Takes,
		Returns: cond.Takes + 1,
		Body: func(b *vmutil.Builder) {
			for _, m := range []vmutil.Macro{cond, t, f} {
				if !checkArity(b, "BRANCHLESS_TERNARY", m, 1) {
					return
				}
			}
			for _, m := range []vmutil.Macro{t, f} {
				if m.Takes != 0 {
					b.Fail(errors.WithDetailf(vmutil.ErrArity, "BRANCHLESS_TERNARY: argument %s takes %d items, want 0", m, m.Takes))
					return
				}
			}
			b.Expand(cond).AddOps(vm.OP_ISZERO, vm.OP_ISZERO)            // [mask]
			b.Expand(t).AddOps(vm.OP_DUP2, vm.OP_MUL, vm.OP_SWAP1)       // [mask, t*mask]
			b.AddOp(vm.OP_ISZERO).Expand(f).AddOps(vm.OP_MUL, vm.OP_ADD) // [t*mask + f*!mask]
		},
	}
}

func checkArity(b *vmutil.Builder, template string, arg vmutil.Macro, net int) bool {
	if arg.Net() == net {
		return true
	}
	b.Fail(errors.WithDetailf(vmutil.ErrArity, "%s: argument %s has net stack effect %d, want %d", template, arg, arg.Net(), net))
	return false
}

func maxTakes(args ...vmutil.Macro) int {
	var n int
	for _, m := range args {
		if m.Takes > n {
			n = m.Takes
		}
	}
	return n
}
