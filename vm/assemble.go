package vm

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/holiman/uint256"

	"github.com/jtriley-eth/libhuff/errors"
)

// Assemble converts a textual program to bytecode.
//
// Notation:
//
//	ADD, add      opcode mnemonic (case-insensitive)
//	42, 0x2a      number, pushed with the shortest PUSH that holds it
//	PUSH2 0x2a    explicit push; the immediate is left-padded to 2 bytes
//	loop:         label; emits JUMPDEST
//	loop          label reference; emits PUSH2 <offset of loop>
//	UNKNOWNxef    raw byte for an opcode the interpreter does not define
//	// ...        comment to end of line
func Assemble(src string) ([]byte, error) {
	var (
		prog   []byte
		labels = make(map[string]int)
		fixups = make(map[int]string) // offset of PUSH2 immediate -> label
	)
	tokens := tokenize(src)
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		if strings.HasSuffix(tok, ":") {
			name := strings.TrimSuffix(tok, ":")
			if !isIdent(name) {
				return nil, errors.WithDetailf(ErrLabel, "bad label name %q", name)
			}
			if _, ok := OpByName(strings.ToUpper(name)); ok {
				return nil, errors.WithDetailf(ErrLabel, "label %q shadows an opcode", name)
			}
			if _, ok := labels[name]; ok {
				return nil, errors.WithDetailf(ErrLabel, "label %q defined twice", name)
			}
			labels[name] = len(prog)
			prog = append(prog, byte(OP_JUMPDEST))
			continue
		}

		if isNumber(tok) {
			v, err := parseNumber(tok)
			if err != nil {
				return nil, err
			}
			prog = appendPush(prog, v.Bytes())
			continue
		}

		upper := strings.ToUpper(tok)
		if op, ok := OpByName(upper); ok {
			if !op.IsPush() {
				prog = append(prog, byte(op))
				continue
			}
			i++
			if i >= len(tokens) || !isNumber(tokens[i]) {
				return nil, errors.WithDetailf(ErrToken, "%s needs an immediate", op)
			}
			data, err := parseImmediate(tokens[i], op.PushSize())
			if err != nil {
				return nil, err
			}
			prog = append(prog, byte(op))
			prog = append(prog, data...)
			continue
		}

		if strings.HasPrefix(upper, "UNKNOWNX") {
			b, err := strconv.ParseUint(upper[len("UNKNOWNX"):], 16, 8)
			if err != nil {
				return nil, errors.WithDetail(ErrToken, tok)
			}
			prog = append(prog, byte(b))
			continue
		}

		if isIdent(tok) {
			prog = append(prog, byte(OP_PUSH2))
			fixups[len(prog)] = tok
			prog = append(prog, 0, 0)
			continue
		}

		return nil, errors.WithDetail(ErrToken, tok)
	}

	if len(fixups) > 0 && len(prog) > 0xffff {
		return nil, errors.WithDetailf(ErrLongProgram, "%d bytes", len(prog))
	}
	for pos, name := range fixups {
		dest, ok := labels[name]
		if !ok {
			return nil, errors.WithDetailf(ErrLabel, "undefined label %q", name)
		}
		binary.BigEndian.PutUint16(prog[pos:], uint16(dest))
	}
	return prog, nil
}

// Disassemble converts bytecode to the notation accepted by
// Assemble. Pushes are always written as explicit PUSHn, so
// Assemble(Disassemble(prog)) reproduces prog exactly.
func Disassemble(prog []byte) (string, error) {
	var out []string
	insts, err := ParseProgram(prog)
	if err != nil {
		return "", err
	}
	for _, inst := range insts {
		if inst.Op.IsPush() {
			out = append(out, fmt.Sprintf("%s 0x%x", inst.Op, inst.Data))
			continue
		}
		out = append(out, inst.Op.String())
	}
	return strings.Join(out, " "), nil
}

func tokenize(src string) []string {
	var tokens []string
	for _, line := range strings.Split(src, "\n") {
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		tokens = append(tokens, strings.Fields(line)...)
	}
	return tokens
}

func isNumber(tok string) bool {
	return tok[0] >= '0' && tok[0] <= '9'
}

func isIdent(s string) bool {
	if s == "" || s[0] >= '0' && s[0] <= '9' {
		return false
	}
	for _, c := range s {
		switch {
		case c == '_', c == '.':
		case '0' <= c && c <= '9', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		default:
			return false
		}
	}
	return true
}

func parseNumber(tok string) (*uint256.Int, error) {
	if strings.HasPrefix(tok, "0x") || strings.HasPrefix(tok, "0X") {
		b, err := decodeHex(tok[2:])
		if err != nil {
			return nil, err
		}
		if len(b) > 32 {
			return nil, errors.WithDetail(ErrPushSize, tok)
		}
		return new(uint256.Int).SetBytes(b), nil
	}
	v, err := uint256.FromDecimal(tok)
	if err != nil {
		return nil, errors.WithDetail(ErrToken, tok)
	}
	return v, nil
}

// parseImmediate returns tok as exactly size big-endian bytes.
func parseImmediate(tok string, size int) ([]byte, error) {
	v, err := parseNumber(tok)
	if err != nil {
		return nil, err
	}
	b := v.Bytes()
	if len(b) > size {
		return nil, errors.WithDetailf(ErrPushSize, "%s does not fit in %d bytes", tok, size)
	}
	data := make([]byte, size)
	copy(data[size-len(b):], b)
	return data, nil
}

func decodeHex(s string) ([]byte, error) {
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.WithDetail(ErrToken, "0x"+s)
	}
	return b, nil
}

// appendPush appends the shortest push of the big-endian value b,
// which has no leading zero bytes.
func appendPush(prog, b []byte) []byte {
	if len(b) == 0 {
		return append(prog, byte(OP_PUSH0))
	}
	prog = append(prog, byte(PushOp(len(b))))
	return append(prog, b...)
}
