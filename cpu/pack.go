package cpu

// Field is a value and its width in bits within an instruction word.
type Field struct {
	Value uint32
	Width uint
}

// mask returns the low 'width' bits of value.
func mask(value uint32, width uint) uint32 {
	if width >= 32 {
		return value
	}
	return value & ((1 << width) - 1)
}

// Pack packs fields LSB first into a little-endian buffer of 'size' bytes.
//
// Each value is truncated to its width. Bits past the last field are zero.
// Fields that do not fit in 'size' bytes are truncated at the buffer end.
func Pack(size int, fields ...Field) (word []byte) {
	var acc uint64
	var shift uint
	for _, field := range fields {
		acc |= uint64(mask(field.Value, field.Width)) << shift
		shift += field.Width
	}

	word = make([]byte, size)
	for n := range word {
		word[n] = byte(acc >> (8 * n))
	}

	return
}

// Unpack extracts fields LSB first from a little-endian word, in the order and
// widths given.
func Unpack(word []byte, widths ...uint) (values []uint32) {
	var acc uint64
	for n, b := range word {
		acc |= uint64(b) << (8 * n)
	}

	values = make([]uint32, len(widths))
	var shift uint
	for n, width := range widths {
		values[n] = mask(uint32(acc>>shift), width)
		shift += width
	}

	return
}
