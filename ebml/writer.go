package ebml

import (
	"errors"
	"fmt"
	"io"
	"math"
)

// ErrNotSeekable is returned by operations that need to patch a
// previously-written size (closing a master element, rewriting Duration)
// when the underlying writer cannot seek.
var ErrNotSeekable = errors.New("ebml: writer is not seekable")

// Writer emits EBML elements to an underlying seekable stream, tracking
// its own write position the way the teacher's EBMLReader tracks its read
// position, and keeping a stack of open master elements so their sizes can
// be patched once their children are known.
type Writer struct {
	w   io.WriteSeeker
	pos int64

	masters []masterFrame
}

// masterFrame records where a master element's size VINT lives so Close
// can seek back and patch it once the element's contents are known.
type masterFrame struct {
	id         uint32
	sizePos    int64 // offset of the first byte of the size VINT
	sizeWidth  int   // width reserved for that VINT (8 for unknown-size placeholders)
	bodyStart  int64 // offset of the first byte after the size VINT
	reserved   bool  // true if sizeWidth was fixed up front rather than computed from content
}

// NewWriter wraps w, whose current position is assumed to be offset 0 of
// the stream ebml positions are reported relative to.
func NewWriter(w io.WriteSeeker) *Writer {
	return &Writer{w: w}
}

// Tell returns the writer's current position.
func (w *Writer) Tell() int64 {
	return w.pos
}

func (w *Writer) write(p []byte) error {
	n, err := w.w.Write(p)
	w.pos += int64(n)
	if err != nil {
		return fmt.Errorf("ebml: write: %w", err)
	}
	return nil
}

// WriteRaw writes p verbatim, advancing the writer's position. Used by
// callers (the mkv trailer) that render a sub-structure off to the side
// and then splice its already-encoded bytes into place.
func (w *Writer) WriteRaw(p []byte) error {
	return w.write(p)
}

// WriteID writes a bare element ID with no size or payload; used by
// BlockGroup/SimpleBlock callers that build the payload separately.
func (w *Writer) WriteID(id uint32) error {
	return w.write(encodeID(nil, id))
}

// WriteVoid writes a Void element whose total on-wire length (ID + size +
// payload) is exactly n bytes. n must be large enough to hold the smallest
// possible Void element (2 bytes); this mirrors put_ebml_void in the
// original encoder, used both for small alignment gaps and for the large
// reserved regions ahead of the SeekHead/SegmentUID/Duration.
func (w *Writer) WriteVoid(n int) error {
	if n < 2 {
		return fmt.Errorf("ebml: void element must be at least 2 bytes, got %d", n)
	}
	idLen := idSize(IDVoid)
	// Find a size-VINT width such that idLen + width + payload == n exactly;
	// a wider-than-minimal size VINT just wastes bits inside the marker
	// byte, which is harmless and is how the original reserves exact byte
	// counts ahead of content it hasn't written yet.
	width := -1
	payload := 0
	for tryWidth := 1; tryWidth < maxSizeBytes; tryWidth++ {
		tryPayload := n - idLen - tryWidth
		if tryPayload < 0 {
			break
		}
		if sizeBytes(uint64(tryPayload)) <= tryWidth {
			width = tryWidth
			payload = tryPayload
			break
		}
	}
	if width == -1 {
		return fmt.Errorf("ebml: void element of %d bytes too small for its own header", n)
	}
	buf := encodeID(nil, IDVoid)
	buf, err := encodeSize(buf, uint64(payload), width)
	if err != nil {
		return err
	}
	buf = append(buf, make([]byte, payload)...)
	if len(buf) != n {
		return fmt.Errorf("ebml: internal void sizing error: wanted %d got %d", n, len(buf))
	}
	return w.write(buf)
}

// WriteUint writes a fixed-size-minimal unsigned integer element, as
// put_ebml_uint does: the value's big-endian byte representation, trimmed
// to the minimum number of bytes (at least 1) that holds it.
func (w *Writer) WriteUint(id uint32, v uint64) error {
	n := 1
	for shift := uint(56); shift > 0; shift -= 8 {
		if v>>shift != 0 {
			n = int(shift/8) + 1
			break
		}
	}
	buf := encodeID(nil, id)
	buf, err := encodeSize(buf, uint64(n), 0)
	if err != nil {
		return err
	}
	for i := n - 1; i >= 0; i-- {
		buf = append(buf, byte(v>>(8*uint(i))))
	}
	return w.write(buf)
}

// WriteSignedInt writes an element whose payload is the minimal two's
// complement big-endian encoding of v wide enough to round-trip its sign,
// as put_ebml_sint does for the (currently unused by a positive-only
// muxer) signed fields like ReferenceBlock.
func (w *Writer) WriteSignedInt(id uint32, v int64) error {
	n := 1
	uv := uint64(v)
	if v < 0 {
		uv = uint64(-v - 1)
	}
	for shift := uint(56); shift > 0; shift -= 8 {
		if uv>>(shift-1) != 0 {
			n = int(shift/8) + 1
			break
		}
	}
	buf := encodeID(nil, id)
	buf, err := encodeSize(buf, uint64(n), 0)
	if err != nil {
		return err
	}
	for i := n - 1; i >= 0; i-- {
		buf = append(buf, byte(v>>(8*uint(i))))
	}
	return w.write(buf)
}

// WriteFloat writes a float element as a big-endian IEEE 754 double,
// matching put_ebml_float's 8-byte form (the original also supports a
// 4-byte float form but the muxer never needs it).
func (w *Writer) WriteFloat(id uint32, v float64) error {
	buf := encodeID(nil, id)
	buf, err := encodeSize(buf, 8, 0)
	if err != nil {
		return err
	}
	bits64 := math.Float64bits(v)
	for i := 7; i >= 0; i-- {
		buf = append(buf, byte(bits64>>(8*uint(i))))
	}
	return w.write(buf)
}

// WriteString writes a UTF-8 string element verbatim, with no trailing
// NUL, matching put_ebml_string.
func (w *Writer) WriteString(id uint32, s string) error {
	return w.WriteBinary(id, []byte(s))
}

// WriteBinary writes an opaque binary element, used for CodecPrivate,
// SegmentUID, and similar fields.
func (w *Writer) WriteBinary(id uint32, data []byte) error {
	buf := encodeID(nil, id)
	buf, err := encodeSize(buf, uint64(len(data)), 0)
	if err != nil {
		return err
	}
	buf = append(buf, data...)
	return w.write(buf)
}

// StartMaster opens a master element with an unknown-size placeholder
// (matching start_ebml_master) and pushes it on the open-master stack.
// Close must be called once all of the element's children have been
// written, patching the real size in place of the placeholder.
func (w *Writer) StartMaster(id uint32) error {
	if err := w.write(encodeID(nil, id)); err != nil {
		return err
	}
	sizePos := w.pos
	if err := w.write(unknownSizeBytes); err != nil {
		return err
	}
	w.masters = append(w.masters, masterFrame{
		id:        id,
		sizePos:   sizePos,
		sizeWidth: len(unknownSizeBytes),
		bodyStart: w.pos,
	})
	return nil
}

// CloseMaster patches the most recently opened master element's size to
// cover everything written since its StartMaster call, then seeks back to
// the writer's current end-of-stream position, matching
// end_ebml_master_size/end_ebml_master's save-seek-restore dance.
func (w *Writer) CloseMaster() error {
	if len(w.masters) == 0 {
		return errors.New("ebml: CloseMaster with no open master element")
	}
	f := w.masters[len(w.masters)-1]
	w.masters = w.masters[:len(w.masters)-1]
	return w.patchMasterSize(f, w.pos-f.bodyStart)
}

func (w *Writer) patchMasterSize(f masterFrame, size int64) error {
	seeker, ok := w.w.(io.WriteSeeker)
	if !ok {
		return ErrNotSeekable
	}
	end := w.pos
	if _, err := seeker.Seek(f.sizePos, io.SeekStart); err != nil {
		return fmt.Errorf("ebml: seek to patch size: %w", err)
	}
	buf, err := encodeSize(nil, uint64(size), f.sizeWidth)
	if err != nil {
		return err
	}
	if _, err := seeker.Write(buf); err != nil {
		return fmt.Errorf("ebml: write patched size: %w", err)
	}
	if _, err := seeker.Seek(end, io.SeekStart); err != nil {
		return fmt.Errorf("ebml: restore cursor after patch: %w", err)
	}
	return nil
}

// ReserveMaster opens a master element whose size VINT is pre-sized to
// width bytes so the caller can keep writing elsewhere and patch the size
// later via PatchReservedSize, without disturbing everything written after
// it. This is how the main SeekHead reserves numElements*28+13 bytes ahead
// of its final size being known.
func (w *Writer) ReserveMaster(id uint32, width int) (int64, error) {
	if err := w.write(encodeID(nil, id)); err != nil {
		return 0, err
	}
	sizePos := w.pos
	placeholder := make([]byte, width)
	placeholder[0] = 1 << uint(8-width)
	if err := w.write(placeholder); err != nil {
		return 0, err
	}
	return sizePos, nil
}

// PatchReservedSize patches the size VINT at sizePos (as returned by
// ReserveMaster) to size, using the same width it was reserved with, then
// restores the writer's cursor to its current end-of-stream position.
func (w *Writer) PatchReservedSize(sizePos int64, width int, size uint64) error {
	return w.patchMasterSize(masterFrame{sizePos: sizePos, sizeWidth: width, bodyStart: sizePos + int64(width)}, int64(size))
}

// Seek repositions the writer without affecting any open master frame
// bookkeeping; callers are responsible for restoring the cursor themselves
// (used by the trailer's Duration/SegmentUID rewrite and by SeekHead
// reservation patches).
func (w *Writer) Seek(offset int64, whence int) (int64, error) {
	n, err := w.w.Seek(offset, whence)
	if err != nil {
		return n, fmt.Errorf("ebml: seek: %w", err)
	}
	w.pos = n
	return n, nil
}
