package cpu

import (
	"iter"
)

// Statement is one assembled program record.
type Statement struct {
	LineNo      int    // Source line of the record, 0 if unknown.
	Mnemonic    string // Mnemonic as written in the source.
	Instruction Instruction
}

// Program is an ordered list of statements.
type Program struct {
	Statements []Statement
}

// NewProgram creates a program from bare instructions.
func NewProgram(insts ...Instruction) (prog *Program) {
	prog = &Program{}
	for _, ins := range insts {
		prog.Statements = append(prog.Statements, Statement{
			Mnemonic:    ins.Op.String(),
			Instruction: ins,
		})
	}
	return
}

// Instructions iterates over the program instructions with their index.
func (prog *Program) Instructions() iter.Seq2[int, Instruction] {
	return func(yield func(index int, ins Instruction) bool) {
		for n, st := range prog.Statements {
			if !yield(n, st.Instruction) {
				return
			}
		}
	}
}

// Binary encodes the program into a byte stream.
// No bytes are returned if any statement fails to encode.
func (prog *Program) Binary() (bin []byte, err error) {
	for _, st := range prog.Statements {
		var word []byte
		word, err = st.Instruction.Encode()
		if err != nil {
			if st.LineNo != 0 {
				err = ErrSyntax{LineNo: st.LineNo, Err: err}
			}
			bin = nil
			return
		}
		bin = append(bin, word...)
	}

	return
}

// Decode splits a byte stream into its instructions.
func Decode(stream []byte) (insts []Instruction, err error) {
	for _, word := range Words(stream) {
		if word.Err != nil {
			err = word.Err
			insts = nil
			return
		}
		insts = append(insts, word.Instruction)
	}

	return
}

// Word is an instruction decoded from a stream along with its location.
type Word struct {
	Offset      int // Byte offset of the word in the stream.
	Instruction Instruction
	Err         error // Set on the final word when decoding fails.
}

// Words iterates over the instruction words of a byte stream.
// On a decode failure the last item yielded carries the error.
func Words(stream []byte) iter.Seq2[int, Word] {
	return func(yield func(index int, word Word) bool) {
		pc := 0
		for index := 0; pc < len(stream); index++ {
			size := WordLength(stream[pc])
			if len(stream)-pc < size {
				err := ErrTruncated{Offset: pc, Need: size, Have: len(stream) - pc}
				yield(index, Word{Offset: pc, Err: err})
				return
			}

			ins, err := DecodeWord(stream[pc : pc+size])
			if err != nil {
				yield(index, Word{Offset: pc, Err: ErrDecode{Offset: pc, Err: err}})
				return
			}

			if !yield(index, Word{Offset: pc, Instruction: ins}) {
				return
			}
			pc += size
		}
	}
}
