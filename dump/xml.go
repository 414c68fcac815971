package dump

import (
	"encoding/xml"
	"io"
)

type xmlCell struct {
	Addr  uint32 `xml:"addr,attr"`
	Value uint32 `xml:",chardata"`
}

type xmlMemory struct {
	XMLName  xml.Name  `xml:"memory"`
	Start    uint32    `xml:"start,attr"`
	End      uint32    `xml:"end,attr"`
	Complete bool      `xml:"complete,attr"`
	Error    string    `xml:"error,attr,omitempty"`
	Cells    []xmlCell `xml:"cell"`
}

// WriteXML writes the snapshot as an XML document:
//
//	<memory start="0" end="2" complete="true">
//	  <cell addr="0">99</cell>
//	  <cell addr="1">0</cell>
//	</memory>
func (snap *Snapshot) WriteXML(w io.Writer) (err error) {
	doc := xmlMemory{
		Start:    snap.Start,
		End:      snap.End,
		Complete: snap.Complete,
		Error:    snap.Error,
		Cells:    make([]xmlCell, len(snap.Cells)),
	}
	for n, cell := range snap.Cells {
		doc.Cells[n] = xmlCell{Addr: cell.Addr, Value: cell.Value}
	}

	_, err = io.WriteString(w, xml.Header)
	if err != nil {
		return
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	err = enc.Encode(&doc)
	if err != nil {
		return
	}

	_, err = io.WriteString(w, "\n")
	return
}

// ReadXML reads a snapshot written by WriteXML.
func ReadXML(r io.Reader) (snap *Snapshot, err error) {
	var doc xmlMemory
	err = xml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return
	}

	snap = &Snapshot{
		Start:    doc.Start,
		End:      doc.End,
		Complete: doc.Complete,
		Error:    doc.Error,
		Cells:    make([]Cell, len(doc.Cells)),
	}
	for n, cell := range doc.Cells {
		snap.Cells[n] = Cell{Addr: cell.Addr, Value: cell.Value}
	}

	return
}
