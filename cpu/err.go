package cpu

import (
	"errors"

	"github.com/ezrec/uvm/translate"
)

var f = translate.From

var (
	// Instruction set errors
	ErrUnknownOpcode   = errors.New(f("unknown opcode"))
	ErrTruncatedStream = errors.New(f("truncated stream"))
	ErrOutOfBounds     = errors.New(f("out of bounds"))

	// Assembler errors
	ErrProgramSyntax   = errors.New(f("program must be a sequence of records"))
	ErrRecordSyntax    = errors.New(f("record must be a mapping"))
	ErrMnemonicMissing = errors.New(f("mnemonic missing"))
	ErrOpcodeMismatch  = errors.New(f("opcode does not match mnemonic"))
)

// ErrMnemonic is a mnemonic outside of the instruction set.
type ErrMnemonic string

func (em ErrMnemonic) Error() string {
	return f("unknown mnemonic '%v'", string(em))
}

func (em ErrMnemonic) Is(err error) bool {
	return err == ErrUnknownOpcode
}

// ErrOpcode is an opcode nibble outside of the instruction set.
type ErrOpcode Opcode

func (eo ErrOpcode) Error() string {
	return f("bad opcode 0x%x", uint8(eo))
}

func (eo ErrOpcode) Is(err error) bool {
	return err == ErrUnknownOpcode
}

// ErrTruncated reports an instruction word cut short by the end of the stream.
type ErrTruncated struct {
	Offset int // Byte offset of the instruction word.
	Need   int // Length of the instruction word.
	Have   int // Bytes remaining in the stream.
}

func (err ErrTruncated) Error() string {
	return f("offset %d needs %d bytes, %d remain", err.Offset, err.Need, err.Have)
}

func (err ErrTruncated) Is(target error) bool {
	return target == ErrTruncatedStream
}

// ErrDecode locates a decode error in the byte stream.
type ErrDecode struct {
	Offset int
	Err    error
}

func (err ErrDecode) Error() string {
	return f("offset %d %v", err.Offset, err.Err)
}

func (err ErrDecode) Unwrap() error {
	return err.Err
}

// Space identifies the register bank or memory.
type Space int

const (
	SPACE_REGISTER = Space(0) // register
	SPACE_MEMORY   = Space(1) // memory
)

func (s Space) String() string {
	switch s {
	case SPACE_REGISTER:
		return "register"
	case SPACE_MEMORY:
		return "memory"
	}
	return f("Space(%d)", int(s))
}

// ErrBounds is an access outside of the register bank or memory.
type ErrBounds struct {
	Space Space
	Index uint32
}

func (err ErrBounds) Error() string {
	return f("%v index %d out of bounds", err.Space.String(), err.Index)
}

func (err ErrBounds) Is(target error) bool {
	return target == ErrOutOfBounds
}

// ErrSyntax locates an assembler error in the program source.
type ErrSyntax struct {
	LineNo int
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d %v", err.LineNo, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

// ErrField locates an error in a record operand.
type ErrField struct {
	Field string
	Err   error
}

func (err ErrField) Error() string {
	return f("field %v %v", err.Field, err.Err)
}

func (err ErrField) Unwrap() error {
	return err.Err
}

// ErrFieldMissing is a required operand absent from a record.
type ErrFieldMissing string

func (err ErrFieldMissing) Error() string {
	return f("field %v missing", string(err))
}

// ErrFieldUnknown is a record key that is not an operand of the instruction.
type ErrFieldUnknown string

func (err ErrFieldUnknown) Error() string {
	return f("field %v unknown", string(err))
}

// ErrParseNumber is an operand that is not a 32-bit value.
type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

// ErrParseExpression is an operand expression that did not evaluate to an integer.
type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("'%v' is not a valid expression", string(err))
}
