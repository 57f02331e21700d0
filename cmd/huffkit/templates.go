package main

import (
	"sort"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/jtriley-eth/libhuff/errors"
	"github.com/jtriley-eth/libhuff/macro"
	"github.com/jtriley-eth/libhuff/vm"
	"github.com/jtriley-eth/libhuff/vm/vmutil"
)

// ErrTemplate is returned for template names expand does not know.
var ErrTemplate = errors.New("unknown template")

type templateOptions struct {
	Token   common.Address
	Scratch uint64
}

// Sample arguments for the control-flow templates. They operate on a
// counter on top of the stack.
var (
	dupCounter = vmutil.Macro{Name: "DUP", Takes: 1, Returns: 2, Body: func(b *vmutil.Builder) {
		b.AddOp(vm.OP_DUP1)
	}}
	decrCounter = vmutil.Macro{Name: "DECR", Takes: 1, Returns: 1, Body: func(b *vmutil.Builder) {
		b.AddUint64(1).AddOp(vm.OP_SWAP1).AddOp(vm.OP_SUB)
	}}
	pushOne = vmutil.Macro{Name: "ONE", Returns: 1, Body: func(b *vmutil.Builder) {
		b.AddUint64(1)
	}}
	pushTwo = vmutil.Macro{Name: "TWO", Returns: 1, Body: func(b *vmutil.Builder) {
		b.AddUint64(2)
	}}
)

var templates = map[string]func(templateOptions) vmutil.Macro{
	"while":      func(templateOptions) vmutil.Macro { return macro.While(dupCounter, decrCounter) },
	"dowhile":    func(templateOptions) vmutil.Macro { return macro.DoWhile(decrCounter, dupCounter) },
	"if":         func(templateOptions) vmutil.Macro { return macro.If(dupCounter, decrCounter) },
	"ternary":    func(templateOptions) vmutil.Macro { return macro.Ternary(dupCounter, pushOne, pushTwo) },
	"branchless": func(templateOptions) vmutil.Macro { return macro.BranchlessTernary(dupCounter, pushOne, pushTwo) },
	"guard":      func(templateOptions) vmutil.Macro { return macro.NonReentrant(vmutil.Macro{Name: "BODY"}) },
	"lock":       func(templateOptions) vmutil.Macro { return macro.Lock() },
	"unlock":     func(templateOptions) vmutil.Macro { return macro.Unlock() },
	"transfer": func(o templateOptions) vmutil.Macro {
		return macro.SafeTransfer(o.Token, o.Scratch)
	},
	"transferfrom": func(o templateOptions) vmutil.Macro {
		return macro.SafeTransferFrom(o.Token, o.Scratch)
	},
}

// Sized templates are named prefix:bits, as in cast:64.
var sizedTemplates = map[string]func(bits int) vmutil.Macro{
	"cast":           macro.ToUint,
	"minicast":       macro.MiniToUint,
	"unsafecast":     macro.UnsafeToUint,
	"unsafeminicast": macro.UnsafeMiniToUint,
	"mask":           macro.Mask,
	"minimask":       macro.MiniMask,
}

func lookupTemplate(name string, opts templateOptions) (vmutil.Macro, error) {
	name = strings.ToLower(name)
	if f, ok := templates[name]; ok {
		return f(opts), nil
	}
	if i := strings.IndexByte(name, ':'); i >= 0 {
		if f, ok := sizedTemplates[name[:i]]; ok {
			bits, err := strconv.Atoi(name[i+1:])
			if err != nil {
				return vmutil.Macro{}, errors.WithDetailf(macro.ErrBitSize, "%q", name[i+1:])
			}
			return f(bits), nil
		}
	}
	return vmutil.Macro{}, errors.WithDetailf(ErrTemplate, "%q", name)
}

func templateNames() []string {
	var names []string
	for name := range templates {
		names = append(names, name)
	}
	for prefix := range sizedTemplates {
		names = append(names, prefix+":<bits>")
	}
	sort.Strings(names)
	return names
}
