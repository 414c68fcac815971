package cpu

import (
	"fmt"
	"strings"
)

// Opcode is the 4-bit operation selector in the low nibble of an instruction word.
type Opcode uint8

const (
	OP_LOAD_CONST = Opcode(1)  // load_const
	OP_READ       = Opcode(4)  // read
	OP_LT         = Opcode(9)  // lt
	OP_WRITE      = Opcode(15) // write
)

const (
	OPCODE_WIDTH = 4   // Width of the opcode field.
	OPCODE_MASK  = 0xf // Mask of the opcode in the first byte.
)

// Opcodes lists the instruction set in opcode order.
var Opcodes = []Opcode{OP_LOAD_CONST, OP_READ, OP_LT, OP_WRITE}

// String returns the canonical mnemonic of the opcode.
func (op Opcode) String() string {
	switch op {
	case OP_LOAD_CONST:
		return "load_const"
	case OP_READ:
		return "read"
	case OP_LT:
		return "lt"
	case OP_WRITE:
		return "write"
	}
	return fmt.Sprintf("Opcode(%d)", uint8(op))
}

// Valid returns true if the opcode is part of the instruction set.
func (op Opcode) Valid() bool {
	switch op {
	case OP_LOAD_CONST, OP_READ, OP_LT, OP_WRITE:
		return true
	}
	return false
}

// Size returns the encoded length in bytes of an instruction with this opcode.
func (op Opcode) Size() int {
	switch op {
	case OP_LOAD_CONST, OP_READ, OP_LT:
		return 4
	default:
		return 3
	}
}

// Widths returns the bit widths of the B, C and D operand fields.
// Operands the opcode does not use have width zero.
func (op Opcode) Widths() (b, c, d uint, err error) {
	switch op {
	case OP_LOAD_CONST:
		b, c = 16, 7
	case OP_READ:
		b, c = 17, 7
	case OP_WRITE:
		b, c = 7, 7
	case OP_LT:
		b, c, d = 7, 7, 8
	default:
		err = ErrOpcode(op)
	}
	return
}

// WordLength returns the length of the instruction word starting with 'first'.
func WordLength(first byte) int {
	return Opcode(first & OPCODE_MASK).Size()
}

// mnemonicMap maps the accepted (lower case) mnemonics to opcodes.
var mnemonicMap = map[string]Opcode{
	"load_const": OP_LOAD_CONST,
	"ldc":        OP_LOAD_CONST,
	"const":      OP_LOAD_CONST,
	"read":       OP_READ,
	"write":      OP_WRITE,
	"lt":         OP_LT,
	"<":          OP_LT,
}

// ParseMnemonic returns the opcode for a case-insensitive mnemonic.
func ParseMnemonic(mnemonic string) (op Opcode, err error) {
	op, ok := mnemonicMap[strings.ToLower(strings.TrimSpace(mnemonic))]
	if !ok {
		err = ErrMnemonic(mnemonic)
		return
	}
	return
}

// Instruction is a single decoded instruction.
//
// B, C and D hold the operand fields; which of them are meaningful, and how
// many bits of each are encoded, depends on Op.
type Instruction struct {
	Op Opcode
	B  uint32
	C  uint32
	D  uint32
}

// MakeLoadConst creates a LOAD_CONST instruction: r[c] = value.
func MakeLoadConst(value, c uint32) Instruction {
	return Instruction{Op: OP_LOAD_CONST, B: value, C: c}
}

// MakeRead creates a READ instruction: r[c] = mem[addr].
func MakeRead(addr, c uint32) Instruction {
	return Instruction{Op: OP_READ, B: addr, C: c}
}

// MakeWrite creates a WRITE instruction: mem[r[c]] = r[b].
func MakeWrite(b, c uint32) Instruction {
	return Instruction{Op: OP_WRITE, B: b, C: c}
}

// MakeLt creates an LT instruction: mem[r[c]+d] = mem[r[c]+d] < mem[addr].
func MakeLt(addr, c, d uint32) Instruction {
	return Instruction{Op: OP_LT, B: addr, C: c, D: d}
}

// Encode returns the encoded instruction word.
// Operands wider than their fields are truncated.
func (ins Instruction) Encode() (word []byte, err error) {
	bw, cw, dw, err := ins.Op.Widths()
	if err != nil {
		return
	}

	fields := []Field{
		{uint32(ins.Op), OPCODE_WIDTH},
		{ins.B, bw},
		{ins.C, cw},
	}
	if dw != 0 {
		fields = append(fields, Field{ins.D, dw})
	}

	word = Pack(ins.Op.Size(), fields...)
	return
}

// Masked returns the instruction as it will be after an encode and decode.
func (ins Instruction) Masked() Instruction {
	bw, cw, dw, err := ins.Op.Widths()
	if err != nil {
		return ins
	}
	return Instruction{
		Op: ins.Op,
		B:  mask(ins.B, bw),
		C:  mask(ins.C, cw),
		D:  mask(ins.D, dw),
	}
}

// DecodeWord decodes a single instruction word.
// The word must be exactly as long as its opcode requires.
func DecodeWord(word []byte) (ins Instruction, err error) {
	if len(word) == 0 {
		err = ErrTruncated{Need: 1}
		return
	}

	op := Opcode(word[0] & OPCODE_MASK)
	if len(word) < op.Size() {
		err = ErrTruncated{Need: op.Size(), Have: len(word)}
		return
	}

	bw, cw, dw, err := op.Widths()
	if err != nil {
		return
	}

	values := Unpack(word[:op.Size()], OPCODE_WIDTH, bw, cw, dw)
	ins = Instruction{
		Op: op,
		B:  values[1],
		C:  values[2],
		D:  values[3],
	}

	return
}

// String returns the assembly representation of the instruction.
func (ins Instruction) String() (out string) {
	switch ins.Op {
	case OP_LOAD_CONST:
		out = fmt.Sprintf("%v r%d, %d", ins.Op, ins.C, ins.B)
	case OP_READ:
		out = fmt.Sprintf("%v r%d, [%d]", ins.Op, ins.C, ins.B)
	case OP_WRITE:
		out = fmt.Sprintf("%v [r%d], r%d", ins.Op, ins.C, ins.B)
	case OP_LT:
		out = fmt.Sprintf("%v [r%d+%d], [%d]", ins.Op, ins.C, ins.D, ins.B)
	default:
		out = fmt.Sprintf("%v b:%d c:%d d:%d", ins.Op, ins.B, ins.C, ins.D)
	}
	return
}
