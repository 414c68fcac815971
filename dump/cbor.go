package dump

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// cborEncMode is canonical so identical snapshots encode identically.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("dump: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// WriteCBOR writes the snapshot as a single CBOR item.
func (snap *Snapshot) WriteCBOR(w io.Writer) (err error) {
	err = cborEncMode.NewEncoder(w).Encode(snap)
	return
}

// ReadCBOR reads a snapshot written by WriteCBOR.
func ReadCBOR(r io.Reader) (snap *Snapshot, err error) {
	snap = &Snapshot{}
	err = cbor.NewDecoder(r).Decode(snap)
	if err != nil {
		snap = nil
		err = fmt.Errorf("dump: unmarshal snapshot: %w", err)
		return
	}
	return
}
