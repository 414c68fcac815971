package emulator

import (
	"github.com/ezrec/uvm/translate"
)

var f = translate.From

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Index  int // Index of the faulting instruction.
	Offset int // Byte offset of the faulting instruction word.
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("instruction %d (offset %d) %v", err.Index, err.Offset, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
