package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/jtriley-eth/libhuff/crypto/keccak256"
	"github.com/jtriley-eth/libhuff/errors"
	"github.com/jtriley-eth/libhuff/log"
	"github.com/jtriley-eth/libhuff/macro"
	"github.com/jtriley-eth/libhuff/metrics"
	"github.com/jtriley-eth/libhuff/vm"
)

// ErrHex is returned for arguments that are not valid hex.
var ErrHex = errors.New("invalid hex")

var (
	runContract = common.HexToAddress("0xc0de")
	runCaller   = common.HexToAddress("0xca11e4")
)

// config holds the defaults taken from the environment. Flags
// override them per invocation.
type config struct {
	Gas   uint64
	Trace bool
}

func newRootCommand(ctx context.Context, cfg config) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "huffkit",
		Short:         "EVM macro templates and a small interpreter",
		Long:          "Assemble, disassemble and run EVM bytecode, and print the code produced by the macro templates.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetContext(ctx)

	cmd.AddCommand(newAsmCommand())
	cmd.AddCommand(newDisasmCommand())
	cmd.AddCommand(newExpandCommand())
	cmd.AddCommand(newRunCommand(cfg))
	cmd.AddCommand(newSelectorCommand())
	return cmd
}

func newAsmCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "asm [source...]",
		Short: "Assemble source text to hex",
		Long: `Assemble source text to hex.

The arguments are joined with spaces. With no arguments, the source
is read from standard input.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			src := strings.Join(args, " ")
			if len(args) == 0 {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return errors.Wrap(err, "reading source")
				}
				src = string(b)
			}
			prog, err := vm.Assemble(src)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "0x%x\n", prog)
			return nil
		},
	}
}

func newDisasmCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "disasm <hex>",
		Short: "Disassemble hex bytecode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := decodeHex(args[0])
			if err != nil {
				return err
			}
			dis, err := vm.Disassemble(prog)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dis)
			return nil
		},
	}
}

func newExpandCommand() *cobra.Command {
	var (
		opts    templateOptions
		token   string
		showHex bool
	)
	cmd := &cobra.Command{
		Use:   "expand <template>",
		Short: "Print the code produced by a macro template",
		Long: fmt.Sprintf(`Print the code produced by a macro template.

Control-flow templates are shown with small sample arguments that
count down a value on the stack. Templates: %s.`, strings.Join(templateNames(), ", ")),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !common.IsHexAddress(token) {
				return errors.WithDetailf(ErrHex, "token address %q", token)
			}
			opts.Token = common.HexToAddress(token)

			m, err := lookupTemplate(args[0], opts)
			if err != nil {
				return err
			}
			prog, err := m.Build()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if showHex {
				fmt.Fprintf(out, "0x%x\n", prog)
				return nil
			}
			dis, err := vm.Disassemble(prog)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s\n%s\n", m, dis)
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", common.Address{}.Hex(), "token address for transfer templates")
	cmd.Flags().Uint64Var(&opts.Scratch, "scratch", 0, "scratch memory offset for transfer templates")
	cmd.Flags().BoolVar(&showHex, "hex", false, "print bytecode instead of disassembly")
	return cmd
}

func newRunCommand(cfg config) *cobra.Command {
	var (
		input string
		gas   uint64
		trace bool
	)
	cmd := &cobra.Command{
		Use:   "run <hex>",
		Short: "Run bytecode in a fresh state",
		Long: `Run bytecode in a fresh state.

The code is deployed at 0xc0de and called once. The return data is
printed in hex; a revert is printed with its decoded reason. A
summary of the interpreter metrics follows.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := decodeHex(args[0])
			if err != nil {
				return err
			}
			in, err := decodeHex(input)
			if err != nil {
				return errors.Wrap(err, "input")
			}
			if trace {
				vm.TraceOut = cmd.ErrOrStderr()
				defer func() { vm.TraceOut = nil }()
			}
			return run(cmd.Context(), cmd.OutOrStdout(), prog, in, gas)
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "calldata in hex")
	cmd.Flags().Uint64Var(&gas, "gas", cfg.Gas, "gas limit")
	cmd.Flags().BoolVar(&trace, "trace", cfg.Trace, "trace every step to stderr")
	return cmd
}

func run(ctx context.Context, out io.Writer, prog, input []byte, gas uint64) error {
	st := vm.NewState()
	st.SetCode(runContract, prog)

	res, err := vm.Call(ctx, st, vm.CallParams{
		Caller: runCaller,
		To:     runContract,
		Input:  input,
		Gas:    gas,
	})
	if err != nil {
		log.Error(ctx, err, fmt.Sprintf("run 0x%x", prog))
		return err
	}
	log.Write(ctx, "prog", fmt.Sprintf("0x%x", prog), "gas-used", res.GasUsed, "reverted", res.Reverted)

	if res.Reverted {
		fmt.Fprintf(out, "revert 0x%x: %s\n", res.ReturnData, macro.DecodeError(res.ReturnData))
	} else {
		fmt.Fprintf(out, "0x%x\n", res.ReturnData)
	}
	fmt.Fprintf(out, "gas used %d\n", res.GasUsed)
	fmt.Fprintf(out, "metrics %s\n", metrics.Snapshot())
	return nil
}

func newSelectorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "selector <signature>",
		Short: "Print the 4-byte selector of a function or error signature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "0x%x\n", keccak256.Selector(args[0]))
			return nil
		},
	}
}

// decodeHex accepts hex with or without a 0x prefix.
func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.WithDetail(ErrHex, err.Error())
	}
	return b, nil
}
