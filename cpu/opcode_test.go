package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpcodeEncode(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name string
		ins  Instruction
		word []byte
	}){
		{"ldc_42_r0", MakeLoadConst(42, 0), []byte{0xa1, 0x02, 0x00, 0x00}},
		{"ldc_99_r2", MakeLoadConst(99, 2), []byte{0x31, 0x06, 0x20, 0x00}},
		{"ldc_max", MakeLoadConst(0xffff, 0x7f), []byte{0xf1, 0xff, 0xff, 0x07}},
		{"read_10_r4", MakeRead(10, 4), []byte{0xa4, 0x00, 0x80, 0x00}},
		{"read_max", MakeRead(0x1ffff, 0x7f), []byte{0xf4, 0xff, 0xff, 0x0f}},
		{"write_r2_r3", MakeWrite(2, 3), []byte{0x2f, 0x18, 0x00}},
		{"write_max", MakeWrite(0x7f, 0x7f), []byte{0xff, 0xff, 0x03}},
		{"lt_5_r1_2", MakeLt(5, 1, 2), []byte{0x59, 0x08, 0x08, 0x00}},
		{"lt_max", MakeLt(0x7f, 0x7f, 0xff), []byte{0xf9, 0xff, 0xff, 0x03}},
	}

	for _, entry := range table {
		word, err := entry.ins.Encode()
		assert.NoError(err, entry.name)
		assert.Equal(entry.word, word, entry.name)
		assert.Equal(entry.ins.Op.Size(), len(word), entry.name)
		assert.Equal(byte(entry.ins.Op), word[0]&OPCODE_MASK, entry.name)

		ins, err := DecodeWord(word)
		assert.NoError(err, entry.name)
		assert.Equal(entry.ins, ins, entry.name)
	}
}

func TestOpcodeTruncation(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name     string
		ins      Instruction
		expected Instruction
	}){
		{"ldc_b17", MakeLoadConst(0x1ffff, 1), MakeLoadConst(0xffff, 1)},
		{"ldc_c8", MakeLoadConst(7, 0x80), MakeLoadConst(7, 0)},
		{"read_b18", MakeRead(0x3ffff, 5), MakeRead(0x1ffff, 5)},
		{"write_b8", MakeWrite(0x85, 0x103), MakeWrite(0x05, 0x03)},
		{"lt_d9", MakeLt(0x80, 0x81, 0x1ff), MakeLt(0x00, 0x01, 0xff)},
		{"ldc_unused_d", Instruction{Op: OP_LOAD_CONST, B: 1, C: 2, D: 3}, MakeLoadConst(1, 2)},
	}

	for _, entry := range table {
		assert.Equal(entry.expected, entry.ins.Masked(), entry.name)

		word, err := entry.ins.Encode()
		assert.NoError(err, entry.name)
		assert.Equal(entry.ins.Op.Size(), len(word), entry.name)

		ins, err := DecodeWord(word)
		assert.NoError(err, entry.name)
		assert.Equal(entry.expected, ins, entry.name)
	}
}

func TestOpcodeUnknown(t *testing.T) {
	assert := assert.New(t)

	for _, op := range []Opcode{0, 2, 3, 5, 6, 7, 8, 10, 11, 12, 13, 14, 16} {
		assert.False(op.Valid(), op.String())

		_, err := Instruction{Op: op}.Encode()
		assert.ErrorIs(err, ErrUnknownOpcode, op.String())
		assert.Equal(ErrOpcode(op), err)
	}

	for _, op := range Opcodes {
		assert.True(op.Valid(), op.String())
	}
}

func TestWordLength(t *testing.T) {
	assert := assert.New(t)

	for first := range 256 {
		expected := 3
		switch first & 0xf {
		case 1, 4, 9:
			expected = 4
		}
		assert.Equal(expected, WordLength(byte(first)), "first byte 0x%02x", first)
	}
}

func TestParseMnemonic(t *testing.T) {
	assert := assert.New(t)

	table := map[string]Opcode{
		"load_const": OP_LOAD_CONST,
		"LOAD_CONST": OP_LOAD_CONST,
		"ldc":        OP_LOAD_CONST,
		"Const":      OP_LOAD_CONST,
		"read":       OP_READ,
		"READ":       OP_READ,
		"write":      OP_WRITE,
		"lt":         OP_LT,
		"LT":         OP_LT,
		"<":          OP_LT,
		" write ":    OP_WRITE,
	}

	for mnemonic, expected := range table {
		op, err := ParseMnemonic(mnemonic)
		assert.NoError(err, mnemonic)
		assert.Equal(expected, op, mnemonic)
	}

	for _, mnemonic := range []string{"", "jump", "gt", ">", "load", "ldc2"} {
		_, err := ParseMnemonic(mnemonic)
		assert.ErrorIs(err, ErrUnknownOpcode, mnemonic)
		assert.Equal(ErrMnemonic(mnemonic), err)
	}
}

func TestDecodeWord(t *testing.T) {
	assert := assert.New(t)

	_, err := DecodeWord(nil)
	assert.ErrorIs(err, ErrTruncatedStream)

	_, err = DecodeWord([]byte{0x01, 0x00, 0x00})
	assert.ErrorIs(err, ErrTruncatedStream)
	var et ErrTruncated
	assert.True(errors.As(err, &et))
	assert.Equal(4, et.Need)
	assert.Equal(3, et.Have)

	_, err = DecodeWord([]byte{0x02, 0x00, 0x00})
	assert.ErrorIs(err, ErrUnknownOpcode)

	// High garbage in the opcode byte of a WRITE is part of the B field.
	ins, err := DecodeWord([]byte{0xff, 0x07, 0x00})
	assert.NoError(err)
	assert.Equal(MakeWrite(0x7f, 0), ins)

	// Unused high bits of the final byte are dropped.
	ins, err = DecodeWord([]byte{0x2f, 0x18, 0xfc})
	assert.NoError(err)
	assert.Equal(MakeWrite(2, 3), ins)
}

func TestInstructionString(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("load_const r2, 99", MakeLoadConst(99, 2).String())
	assert.Equal("read r4, [10]", MakeRead(10, 4).String())
	assert.Equal("write [r3], r2", MakeWrite(2, 3).String())
	assert.Equal("lt [r1+2], [5]", MakeLt(5, 1, 2).String())
	assert.Equal("Opcode(3) b:1 c:2 d:3", Instruction{Op: 3, B: 1, C: 2, D: 3}.String())
}
