package mkv

import "github.com/kvintar/avcontainer/ebml"

// seekHeadEntrySize is the largest on-wire size of one Seek element when its
// SeekID is a 4-byte ID and its SeekPosition is written at 8 bytes wide:
// Seek master (2-byte ID + 8-byte size, as every master is opened) +
// SeekID (2+1+4) + SeekPosition (2+1+8) = 10+7+11 = 28. This module
// reserves exactly what matroskaenc.c's mkv_start_seekhead does:
// numElements*28+13.
const (
	seekHeadEntrySize     = 28
	seekHeadReserveExtra  = 13
	seekHeadMaxReservable = 10
)

// seekHeadBuilder accumulates element-ID -> segment-relative-offset
// entries for one SeekHead, matching mkv_add_seekhead_entry/
// mkv_write_seekhead. The main SeekHead (reserved right after the Segment
// opens, ahead of Info) is
// reserved up front for up to seekHeadMaxReservable entries so it can be
// patched once its targets (Tracks, Cues, the cluster SeekHead) are known;
// the cluster SeekHead (entries for Cluster positions) is written
// unreserved at trailer time once every cluster offset is already known.
type seekHeadBuilder struct {
	entries []seekHeadEntry
}

type seekHeadEntry struct {
	id     uint32
	offset uint64 // segment-relative
}

func newSeekHeadBuilder() *seekHeadBuilder {
	return &seekHeadBuilder{}
}

// add records an entry. offset must be relative to the first byte after
// the Segment element's own ID+size, per Matroska's SeekPosition semantics.
func (b *seekHeadBuilder) add(id uint32, segmentRelativeOffset uint64) {
	b.entries = append(b.entries, seekHeadEntry{id: id, offset: segmentRelativeOffset})
}

// reservedSize returns the byte count mkv_start_seekhead reserves for a
// SeekHead meant to hold at most n entries, or 0 if n exceeds what this
// module is willing to pre-reserve (in which case the SeekHead must be
// written unreserved, after all its entries are known).
func reservedSeekHeadSize(n int) int {
	if n > seekHeadMaxReservable {
		return 0
	}
	return n*seekHeadEntrySize + seekHeadReserveExtra
}

// write emits the SeekHead master and its Seek children directly (no
// deferred size patch machinery beyond what StartMaster/CloseMaster already
// give every master element), used for the trailer-time cluster SeekHead
// that the muxer writes once it's fully known.
func (b *seekHeadBuilder) write(w *ebml.Writer) error {
	if err := w.StartMaster(ebml.IDSeekHead); err != nil {
		return err
	}
	if err := b.writeEntries(w); err != nil {
		return err
	}
	return w.CloseMaster()
}

func (b *seekHeadBuilder) writeEntries(w *ebml.Writer) error {
	for _, e := range b.entries {
		if err := w.StartMaster(ebml.IDSeek); err != nil {
			return err
		}
		idBytes := seekIDBytes(e.id)
		if err := w.WriteBinary(ebml.IDSeekID, idBytes); err != nil {
			return err
		}
		if err := w.WriteUint(ebml.IDSeekPos, e.offset); err != nil {
			return err
		}
		if err := w.CloseMaster(); err != nil {
			return err
		}
	}
	return nil
}

// seekIDBytes returns id's big-endian encoding at its natural EBML ID
// width, which is what SeekID stores (the raw element ID bytes, not a
// VINT-decoded integer).
func seekIDBytes(id uint32) []byte {
	switch {
	case id < 1<<8:
		return []byte{byte(id)}
	case id < 1<<16:
		return []byte{byte(id >> 8), byte(id)}
	case id < 1<<24:
		return []byte{byte(id >> 16), byte(id >> 8), byte(id)}
	default:
		return []byte{byte(id >> 24), byte(id >> 16), byte(id >> 8), byte(id)}
	}
}
