// Package spvtext renders a SPIR-V module as readable assembly text.
//
// The output follows the spirv-dis layout closely enough to be diffed by
// eye; it is a diagnostic aid, not an assembler input. Instructions outside
// the built-in table are printed by number with raw operands.
package spvtext

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Magic is the SPIR-V magic number in the first word of a module.
const Magic = 0x07230203

const headerWords = 5

// ErrInvalid is returned for data that is not a well-formed SPIR-V module.
var ErrInvalid = errors.New("spvtext: invalid SPIR-V")

// Disassemble writes the text form of the little-endian SPIR-V module spv
// to w.
func Disassemble(w io.Writer, spv []byte) error {
	if len(spv)%4 != 0 {
		return fmt.Errorf("%w: length %d is not a multiple of 4", ErrInvalid, len(spv))
	}
	words := make([]uint32, len(spv)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spv[i*4:])
	}
	if len(words) < headerWords {
		return fmt.Errorf("%w: module too small", ErrInvalid)
	}
	if words[0] != Magic {
		return fmt.Errorf("%w: magic 0x%08X", ErrInvalid, words[0])
	}

	var sb strings.Builder
	version := words[1]
	fmt.Fprintf(&sb, "; SPIR-V\n; Version: %d.%d\n; Generator: 0x%08X\n; Bound: %d\n; Schema: %d\n\n",
		(version>>16)&0xFF, (version>>8)&0xFF, words[2], words[3], words[4])

	for pos := headerWords; pos < len(words); {
		count := int(words[pos] >> 16)
		opcode := uint16(words[pos] & 0xFFFF)
		if count == 0 || pos+count > len(words) {
			return fmt.Errorf("%w: bad word count %d at word %d", ErrInvalid, count, pos)
		}
		if err := formatInstruction(&sb, opcode, words[pos+1:pos+count]); err != nil {
			return fmt.Errorf("%w: word %d: %v", ErrInvalid, pos, err)
		}
		pos += count
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func formatInstruction(sb *strings.Builder, opcode uint16, ops []uint32) error {
	info, known := opcodes[opcode]
	if !known {
		fmt.Fprintf(sb, "%15sOp%d", "", opcode)
		for _, op := range ops {
			fmt.Fprintf(sb, " %d", op)
		}
		sb.WriteByte('\n')
		return nil
	}

	var typ, result uint32
	if info.typed {
		if len(ops) == 0 {
			return fmt.Errorf("%s: missing result type", info.name)
		}
		typ, ops = ops[0], ops[1:]
	}
	if info.result {
		if len(ops) == 0 {
			return fmt.Errorf("%s: missing result id", info.name)
		}
		result, ops = ops[0], ops[1:]
		fmt.Fprintf(sb, "%12s = %s", id(result), info.name)
	} else {
		fmt.Fprintf(sb, "%15s%s", "", info.name)
	}
	if info.typed {
		fmt.Fprintf(sb, " %s", id(typ))
	}

	operands, err := formatOperands(info.operands, ops)
	if err != nil {
		return fmt.Errorf("%s: %w", info.name, err)
	}
	for _, s := range operands {
		sb.WriteByte(' ')
		sb.WriteString(s)
	}
	sb.WriteByte('\n')
	return nil
}

// formatOperands renders ops according to layout. Trailing optional
// operands may be absent; surplus words are an error.
func formatOperands(layout string, ops []uint32) ([]string, error) {
	var out []string
	for _, code := range layout {
		switch code {
		case 'I':
			for _, op := range ops {
				out = append(out, id(op))
			}
			return out, nil
		case 'N':
			for _, op := range ops {
				out = append(out, fmt.Sprint(op))
			}
			return out, nil
		}

		if len(ops) == 0 {
			return nil, errors.New("missing operand")
		}
		switch code {
		case 'i':
			out = append(out, id(ops[0]))
		case 'n':
			out = append(out, fmt.Sprint(ops[0]))
		case 's':
			s, used, err := literalString(ops)
			if err != nil {
				return nil, err
			}
			out = append(out, fmt.Sprintf("%q", s))
			ops = ops[used:]
			continue
		case 'C':
			out = append(out, lookup(capabilities, ops[0]))
		case 'S':
			out = append(out, lookup(storageClasses, ops[0]))
		case 'A':
			out = append(out, lookup(addressingModels, ops[0]))
		case 'M':
			out = append(out, lookup(memoryModels, ops[0]))
		case 'X':
			out = append(out, lookup(executionModels, ops[0]))
		case 'E':
			out = append(out, lookup(executionModes, ops[0]))
		case 'd':
			out = append(out, lookup(dims, ops[0]))
		case 'D':
			out = append(out, lookup(decorations, ops[0]))
			rest := ops[1:]
			if ops[0] == decorationBuiltIn && len(rest) > 0 {
				out = append(out, lookup(builtins, rest[0]))
				rest = rest[1:]
			}
			for _, op := range rest {
				out = append(out, fmt.Sprint(op))
			}
			return out, nil
		}
		ops = ops[1:]
	}
	if len(ops) != 0 {
		return nil, fmt.Errorf("%d unexpected operand words", len(ops))
	}
	return out, nil
}

// literalString decodes a nul-terminated string packed into words and
// returns the number of words it occupies.
func literalString(ops []uint32) (string, int, error) {
	var sb strings.Builder
	for i, word := range ops {
		for shift := 0; shift < 32; shift += 8 {
			b := byte(word >> shift)
			if b == 0 {
				return sb.String(), i + 1, nil
			}
			sb.WriteByte(b)
		}
	}
	return "", 0, errors.New("unterminated string")
}

func id(n uint32) string {
	return fmt.Sprintf("%%%d", n)
}

func lookup(m map[uint32]string, v uint32) string {
	if s, ok := m[v]; ok {
		return s
	}
	return fmt.Sprint(v)
}
