package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func FuzzEncode(f *testing.F) {
	for _, op := range Opcodes {
		f.Add(uint8(op), uint32(0), uint32(0), uint32(0))
		f.Add(uint8(op), uint32(0xffffffff), uint32(0xffffffff), uint32(0xffffffff))
		f.Add(uint8(op), uint32(0x12345), uint32(0x45), uint32(0x67))
	}

	f.Fuzz(func(t *testing.T, opcode uint8, b, c, d uint32) {
		assert := assert.New(t)

		ins := Instruction{Op: Opcode(opcode), B: b, C: c, D: d}

		word, err := ins.Encode()
		if !ins.Op.Valid() {
			assert.ErrorIs(err, ErrUnknownOpcode)
			return
		}
		assert.NoError(err)
		assert.Equal(ins.Op.Size(), len(word))
		assert.Equal(ins.Op.Size(), WordLength(word[0]))

		decoded, err := DecodeWord(word)
		assert.NoError(err)
		assert.Equal(ins.Masked(), decoded)

		// In-width instructions round trip exactly.
		masked := ins.Masked()
		word, err = masked.Encode()
		assert.NoError(err)
		decoded, err = DecodeWord(word)
		assert.NoError(err)
		assert.Equal(masked, decoded)
	})
}

func FuzzDecode(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{0x31, 0x06, 0x20, 0x00, 0x2f, 0x18, 0x00})
	f.Add([]byte{0x01, 0x02})
	f.Add([]byte{0x03, 0x00, 0x00})

	f.Fuzz(func(t *testing.T, stream []byte) {
		assert := assert.New(t)

		insts, err := Decode(stream)
		if err != nil {
			assert.Nil(insts)
			return
		}

		// A clean decode re-encodes to the same length, and to the same
		// bytes after unused high bits are cleared.
		prog := NewProgram(insts...)
		bin, err := prog.Binary()
		assert.NoError(err)
		assert.Equal(len(stream), len(bin))

		again, err := Decode(bin)
		assert.NoError(err)
		assert.Equal(insts, again)
	})
}
