package ebml

import (
	"errors"
	"math/bits"
)

// ErrSizeTooLarge is returned when a value or element size does not fit in
// the largest VINT this package is willing to emit (7 bytes of payload, the
// same ceiling FFmpeg's matroskaenc.c uses for put_ebml_size).
var ErrSizeTooLarge = errors.New("ebml: size exceeds maximum encodable VINT")

// maxSizeBytes bounds the unknown-size placeholder and every size VINT this
// package writes to 8 bytes total (1 length-marker byte is folded into the
// first payload byte), matching AV_EBML_UNKNOWN_LENGTH's width in the
// original encoder.
const maxSizeBytes = 8

// idSize returns the number of bytes needed to encode id as an EBML
// element ID, following the original's ebml_id_size: the ID already carries
// its own length marker in the top bits, so this is just its byte length.
func idSize(id uint32) int {
	switch {
	case id < 1<<8:
		return 1
	case id < 1<<16:
		return 2
	case id < 1<<24:
		return 3
	default:
		return 4
	}
}

// sizeBytes returns the minimal number of VINT bytes needed to encode size
// as an EBML data size, i.e. the smallest n such that size+1 fits in 7n
// bits (the all-ones payload of each width is the reserved unknown size).
func sizeBytes(size uint64) int {
	if size == 0 {
		return 1
	}
	bitsNeeded := bits.Len64(size + 1)
	n := (bitsNeeded + 6) / 7
	if n < 1 {
		n = 1
	}
	return n
}

// encodeID appends the big-endian byte representation of an element ID
// (already including its length-marker bits, as all the constants in
// ids.go do) to dst.
func encodeID(dst []byte, id uint32) []byte {
	n := idSize(id)
	for i := n - 1; i >= 0; i-- {
		dst = append(dst, byte(id>>(8*uint(i))))
	}
	return dst
}

// encodeSize appends size as an EBML VINT of exactly width bytes (or the
// minimal width if width is 0) to dst. The leading length-marker bit is set
// according to width.
func encodeSize(dst []byte, size uint64, width int) ([]byte, error) {
	if width == 0 {
		width = sizeBytes(size)
	}
	if width > maxSizeBytes {
		return nil, ErrSizeTooLarge
	}
	// The marker bit is bit 7*width counted from the least significant bit
	// of the width-byte value; everything below it carries size's bits.
	marker := uint64(1) << uint(7*width)
	if size >= marker {
		return nil, ErrSizeTooLarge
	}
	v := size | marker
	for i := width - 1; i >= 0; i-- {
		dst = append(dst, byte(v>>(8*uint(i))))
	}
	return dst, nil
}

// unknownSizeBytes is the 8-byte "size unknown" placeholder EBML masters
// are opened with, per put_ebml_size_unknown(pb, 8) in the original writer:
// all data bits set to 1 with an 8-byte length marker.
var unknownSizeBytes = []byte{0x01, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
