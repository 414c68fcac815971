// Package dump serializes memory snapshots of a UVM run.
//
// Every snapshot records whether the run completed. A snapshot taken after a
// runtime fault is written with Complete unset and the fault text, so partial
// memory is never mistaken for a finished run.
package dump

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ezrec/uvm/cpu"
	"github.com/ezrec/uvm/translate"
)

var f = translate.From

var (
	ErrFormat = errors.New(f("unknown dump format"))
)

// Format is a snapshot serialization.
type Format int

const (
	FORMAT_XML  = Format(0) // xml
	FORMAT_CBOR = Format(1) // cbor
)

func (format Format) String() string {
	switch format {
	case FORMAT_XML:
		return "xml"
	case FORMAT_CBOR:
		return "cbor"
	}
	return fmt.Sprintf("Format(%d)", int(format))
}

// ParseFormat returns the format for a case-insensitive name.
func ParseFormat(name string) (format Format, err error) {
	switch strings.ToLower(name) {
	case "xml":
		format = FORMAT_XML
	case "cbor":
		format = FORMAT_CBOR
	default:
		err = fmt.Errorf("%w: %q", ErrFormat, name)
	}
	return
}

// Cell is a single memory word of a snapshot.
type Cell struct {
	Addr  uint32 `cbor:"1,keyasint"`
	Value uint32 `cbor:"2,keyasint"`
}

// Snapshot is a memory range captured after a run.
type Snapshot struct {
	Start    uint32 `cbor:"1,keyasint"`
	End      uint32 `cbor:"2,keyasint"`
	Complete bool   `cbor:"3,keyasint"`
	Error    string `cbor:"4,keyasint,omitempty"`
	Cells    []Cell `cbor:"5,keyasint"`
}

// Capture takes a snapshot of [start, end) from the CPU memory.
// The range is clamped to memory. A non-nil runErr marks the snapshot
// incomplete.
func Capture(cp *cpu.Cpu, start, end int, runErr error) (snap *Snapshot) {
	snap = &Snapshot{
		Complete: runErr == nil,
		Cells:    []Cell{},
	}
	if runErr != nil {
		snap.Error = runErr.Error()
	}

	for cell := range cp.Cells(start, end) {
		snap.Cells = append(snap.Cells, Cell{Addr: cell.Addr, Value: cell.Value})
	}

	snap.Start = clamp(start)
	snap.End = clamp(end)
	if snap.End < snap.Start {
		snap.End = snap.Start
	}

	return
}

func clamp(bound int) uint32 {
	switch {
	case bound < 0:
		return 0
	case bound > cpu.MEMORY_SIZE:
		return cpu.MEMORY_SIZE
	}
	return uint32(bound)
}

// Write serializes the snapshot in the given format.
func (snap *Snapshot) Write(w io.Writer, format Format) (err error) {
	switch format {
	case FORMAT_XML:
		err = snap.WriteXML(w)
	case FORMAT_CBOR:
		err = snap.WriteCBOR(w)
	default:
		err = fmt.Errorf("%w: %v", ErrFormat, format)
	}
	return
}
