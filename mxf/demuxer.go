package mxf

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/kvintar/avcontainer/stream"
)

// ErrNotMXF is returned by Open when the input does not begin with a
// recognizable MXF header partition pack key.
var ErrNotMXF = errors.New("mxf: input does not start with a header partition pack")

// DemuxerOptions configures a Demuxer at construction time, following the
// same small-constructor-flags idiom as the mkv package's MuxerOptions.
type DemuxerOptions struct{}

// Demuxer reads one SMPTE-377M OP1a file's structural metadata up front,
// then serves essence KLVs one packet at a time as ReadPacket is called.
// It never seeks: every byte is consumed exactly once, in stream order,
// matching spec.md's sequential/no-suspension concurrency model.
type Demuxer struct {
	kr  *klvReader
	log zerolog.Logger

	streams []linkedStream

	pending   *klvPacket
	frameIdx  []int64
	closed    bool
}

// Probe reports whether header (the first 14+ bytes of a candidate file)
// carries the MXF header partition pack key prefix, the 14 bytes every
// header partition pack key shares ahead of its status byte.
func Probe(header []byte) bool {
	if len(header) < 14 {
		return false
	}
	var uid UID
	copy(uid[:], header)
	return hasPrefix14(uid, stream.MXFProbeKey)
}

// Open reads r's header partition: the partition pack itself (skipped,
// since this demuxer only needs its presence, not its fields) followed by
// a run of structural metadata local sets, stopping at the first essence
// element key. That first essence KLV is buffered for the first
// ReadPacket call, mirroring mxf_read_header's rewind-on-essence-key
// behavior without requiring the underlying reader to support seeking.
func Open(r io.Reader, opts DemuxerOptions, log zerolog.Logger) (*Demuxer, error) {
	kr := newKLVReader(r)

	first, err := kr.readPacket()
	if err != nil {
		return nil, fmt.Errorf("mxf: reading first KLV packet: %w", err)
	}
	if !hasPrefix14(first.key, stream.MXFProbeKey) {
		return nil, ErrNotMXF
	}

	ctx := newMetadataContext()
	var pending *klvPacket

	for {
		pkt, err := kr.readPacket()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("mxf: reading header metadata: %w", err)
		}
		if hasPrefix12(pkt.key, essenceElementPrefix) {
			p := pkt
			pending = &p
			break
		}
		ctx.decodeSet(pkt.key, pkt.value)
	}

	ctx.resolve()
	streams, err := linkStructuralMetadata(ctx, log)
	if err != nil {
		return nil, err
	}

	return &Demuxer{
		kr:       kr,
		log:      log,
		streams:  streams,
		pending:  pending,
		frameIdx: make([]int64, len(streams)),
	}, nil
}

// Streams returns the demuxed output streams in Material Package track
// order.
func (d *Demuxer) Streams() []stream.Info {
	out := make([]stream.Info, len(d.streams))
	for i, s := range d.streams {
		out[i] = s.info
	}
	return out
}

// ReadPacket returns the next essence packet belonging to any recognized
// stream, routing by matching the essence-element key's last 4 bytes
// against each stream's recorded track number (mxf_get_stream_index).
// Essence belonging to a track this demuxer didn't link to any output
// stream is skipped rather than erroring, since an MXF file may carry
// tracks (e.g. unsupported data essence) this demuxer has no stream for.
func (d *Demuxer) ReadPacket() (*stream.Packet, error) {
	for {
		var pkt klvPacket
		if d.pending != nil {
			pkt = *d.pending
			d.pending = nil
		} else {
			var err error
			pkt, err = d.kr.readPacket()
			if err != nil {
				return nil, err
			}
		}

		if !hasPrefix12(pkt.key, essenceElementPrefix) {
			// A footer partition pack, random index pack, or similar
			// trailer structure ends the essence stream.
			return nil, io.EOF
		}

		idx := d.streamIndexForKey(pkt.key)
		if idx < 0 {
			continue
		}

		frame := d.frameIdx[idx]
		d.frameIdx[idx]++

		return &stream.Packet{
			StreamIndex: idx,
			Data:        pkt.value,
			PTS:         frame,
			DTS:         frame,
			IsKeyframe:  true, // every essence element in OP1a picture/sound tracks is independently accessible at the edit-unit granularity this demuxer reads
		}, nil
	}
}

// streamIndexForKey matches the last 4 bytes of an essence element key
// against each linked stream's recorded 4-byte track number.
func (d *Demuxer) streamIndexForKey(key UID) int {
	var trackNumber [4]byte
	copy(trackNumber[:], key[12:16])
	for i, s := range d.streams {
		if s.trackNumber == trackNumber {
			return i
		}
	}
	return -1
}

// Close releases resources held by the demuxer. It is guarded against
// being called on a Demuxer whose Open failed partway through (where
// d.streams or d.frameIdx may be nil) since orphaned partial state is
// legal input here, the same orphan-tolerance spec.md's design notes call
// for in mxf_read_close.
func (d *Demuxer) Close() error {
	if d == nil || d.closed {
		return nil
	}
	d.closed = true
	return nil
}
