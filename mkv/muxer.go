// Package mkv implements a sequential, single-pass Matroska/WebM muxer:
// EBML Header, Segment, SeekHead/Info/Tracks, a sequence of Clusters driven
// by incoming packets, and a Cues/SeekHead/Duration trailer written once
// the caller closes the muxer. It never reads a file back, and it never
// edits a file already on disk; every size that isn't known up front is
// either reserved ahead of time or patched in at Close.
package mkv

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/kvintar/avcontainer/ebml"
	"github.com/kvintar/avcontainer/stream"
)

const (
	timecodeScale = 1_000_000 // ns per Matroska timecode tick; pins tracks to 1ms resolution
	maxClusterBytes = 5 * 1024 * 1024
	maxClusterMillis = 5000

	segmentUIDVoidSize = 19 // SegmentUID element: 2-byte ID + 1-byte size + 16-byte UID
	durationVoidSize   = 11 // Duration element: 2-byte ID + 1-byte size + 8-byte float
)

// MuxerOptions configures a Muxer at construction time, in the teacher's
// style of a handful of constructor flags rather than a config struct.
type MuxerOptions struct {
	// BitExact suppresses the MD5-derived SegmentUID (and any other
	// timing- or environment-derived metadata) so two runs over identical
	// input produce byte-identical output.
	BitExact bool
}

// Muxer writes one Matroska Segment to w, which must support Seek because
// every non-trivial size in the format (Segment, Cluster, Tracks, the main
// SeekHead's targets) is only known after its contents are written.
type Muxer struct {
	w      *ebml.Writer
	format stream.Format
	opts   MuxerOptions
	log    zerolog.Logger

	streams []stream.Info
	tracks  []*trackWriter

	headerWritten bool
	closed        bool

	segmentBodyStart int64 // byte offset of the first byte inside Segment

	mainSeekHead       *seekHeadBuilder
	mainSeekHeadPos    int64
	mainSeekHeadWidth  int

	infoPos          int64 // segment-relative offset of Info, for the main SeekHead
	tracksPos        int64
	segmentUIDVoidAt int64 // absolute offset of the Void standing in for SegmentUID
	durationVoidAt   int64 // absolute offset of the Void standing in for Duration

	clusterSeekHead *seekHeadBuilder
	cues            *cuesBuilder
	uidHasher       *segmentUIDHasher

	clusterOpen       bool
	clusterStartAt    int64 // segment-relative offset of the open Cluster
	clusterStartMS    int64
	clusterBytes      int
	haveClusterStartMS bool

	duration int64 // running max of pkt.PTS+pkt.Duration across every packet written
}

// NewMuxer creates a Muxer that will write format's container shape to w.
func NewMuxer(w io.WriteSeeker, format stream.Format, opts MuxerOptions, log zerolog.Logger) *Muxer {
	return &Muxer{
		w:               ebml.NewWriter(w),
		format:          format,
		opts:            opts,
		log:             log,
		mainSeekHead:    newSeekHeadBuilder(),
		clusterSeekHead: newSeekHeadBuilder(),
		cues:            newCuesBuilder(),
		uidHasher:       newSegmentUIDHasher(),
	}
}

// AddStream registers a stream to be muxed and returns its track index
// (and 1-based Matroska TrackNumber is index+1). Must be called before
// WriteHeader.
func (m *Muxer) AddStream(info stream.Info) (int, error) {
	if m.headerWritten {
		return 0, fmt.Errorf("mkv: AddStream called after WriteHeader")
	}
	if !m.format.Accepts(info.Type) {
		return 0, &stream.ErrUnsupportedStreamType{Format: m.format.Name, Type: info.Type}
	}
	idx := len(m.streams)
	info.Index = idx
	tw, err := newTrackWriter(uint64(idx+1), info, m.log)
	if err != nil {
		return 0, err
	}
	m.streams = append(m.streams, info)
	m.tracks = append(m.tracks, tw)
	return idx, nil
}

// WriteHeader writes the EBML Header, opens the Segment, writes Info (with
// Void placeholders reserved for SegmentUID and Duration), writes Tracks,
// and opens the first Cluster, per spec.md §4.4.
func (m *Muxer) WriteHeader() error {
	if m.headerWritten {
		return fmt.Errorf("mkv: WriteHeader called twice")
	}
	if len(m.tracks) == 0 {
		return fmt.Errorf("mkv: WriteHeader called with no streams added")
	}

	if err := m.writeEBMLHeader(); err != nil {
		return err
	}

	if err := m.w.StartMaster(ebml.IDSegment); err != nil {
		return err
	}
	m.segmentBodyStart = m.w.Tell()

	if err := m.reserveMainSeekHead(); err != nil {
		return err
	}

	m.infoPos = m.segmentRelative()
	if err := m.writeInfo(); err != nil {
		return err
	}

	m.tracksPos = m.segmentRelative()
	if err := m.writeTracks(); err != nil {
		return err
	}

	if err := m.openCluster(0); err != nil {
		return err
	}

	m.headerWritten = true
	return nil
}

func (m *Muxer) writeEBMLHeader() error {
	if err := m.w.StartMaster(ebml.IDEBMLHeader); err != nil {
		return err
	}
	if err := m.w.WriteUint(ebml.IDEBMLVersion, 1); err != nil {
		return err
	}
	if err := m.w.WriteUint(ebml.IDEBMLReadVersion, 1); err != nil {
		return err
	}
	if err := m.w.WriteUint(ebml.IDEBMLMaxIDLength, 4); err != nil {
		return err
	}
	if err := m.w.WriteUint(ebml.IDEBMLMaxSizeLength, 8); err != nil {
		return err
	}
	// Both registered variants (matroska, matroska_audio) share the same
	// DocType string; only their accepted stream types and file extension
	// differ.
	if err := m.w.WriteString(ebml.IDDocType, "matroska"); err != nil {
		return err
	}
	if err := m.w.WriteUint(ebml.IDDocTypeVersion, 4); err != nil {
		return err
	}
	if err := m.w.WriteUint(ebml.IDDocTypeReadVersion, 2); err != nil {
		return err
	}
	return m.w.CloseMaster()
}

func (m *Muxer) reserveMainSeekHead() error {
	size := reservedSeekHeadSize(seekHeadMaxReservable) // Close adds Info, Tracks, Cues, cluster SeekHead
	width := sizeWidthFor(size)
	pos, err := m.w.ReserveMaster(ebml.IDSeekHead, width)
	if err != nil {
		return err
	}
	m.mainSeekHeadPos = pos
	m.mainSeekHeadWidth = width
	// Skip over the reserved body now; it is filled with a Void element so
	// the bytes are well-formed EBML until the real SeekHead is patched in
	// at Close.
	if err := m.w.WriteVoid(size); err != nil {
		return err
	}
	return nil
}

// sizeWidthFor returns the minimal VINT width able to hold size, used for
// reservations where the final content is not yet known but its maximum
// byte count is.
func sizeWidthFor(size int) int {
	width := 1
	for (1 << uint(7*width)) <= size {
		width++
	}
	return width
}

func (m *Muxer) writeInfo() error {
	if err := m.w.StartMaster(ebml.IDInfo); err != nil {
		return err
	}

	m.segmentUIDVoidAt = m.w.Tell()
	if err := m.w.WriteVoid(segmentUIDVoidSize); err != nil {
		return err
	}

	if err := m.w.WriteUint(ebml.IDTimecodeScale, timecodeScale); err != nil {
		return err
	}

	m.durationVoidAt = m.w.Tell()
	if err := m.w.WriteVoid(durationVoidSize); err != nil {
		return err
	}

	if err := m.w.WriteString(ebml.IDMuxingApp, "avcontainer"); err != nil {
		return err
	}
	if err := m.w.WriteString(ebml.IDWritingApp, "avcontainer"); err != nil {
		return err
	}

	return m.w.CloseMaster()
}

func (m *Muxer) writeTracks() error {
	if err := m.w.StartMaster(ebml.IDTracks); err != nil {
		return err
	}
	for _, tw := range m.tracks {
		if err := tw.write(m.w); err != nil {
			return err
		}
	}
	return m.w.CloseMaster()
}

func (m *Muxer) segmentRelative() uint64 {
	return uint64(m.w.Tell() - m.segmentBodyStart)
}

// openCluster starts a new Cluster at timecode startMS and records its
// position for the trailer's cluster SeekHead.
func (m *Muxer) openCluster(startMS int64) error {
	offset := m.segmentRelative()
	if err := m.w.StartMaster(ebml.IDCluster); err != nil {
		return err
	}
	if err := m.w.WriteUint(ebml.IDTimecode, uint64(startMS)); err != nil {
		return err
	}
	m.clusterOpen = true
	m.clusterStartAt = offset
	m.clusterStartMS = startMS
	m.haveClusterStartMS = true
	m.clusterBytes = 0
	m.clusterSeekHead.addCluster(offset)
	m.uidHasher.onNewCluster()
	return nil
}

// addCluster is a thin adapter so clusterSeekHead (a seekHeadBuilder) can
// record Cluster positions under the IDCluster element ID.
func (b *seekHeadBuilder) addCluster(offset uint64) {
	b.add(ebml.IDCluster, offset)
}

func (m *Muxer) closeCluster() error {
	if !m.clusterOpen {
		return nil
	}
	m.clusterOpen = false
	return m.w.CloseMaster()
}

// WritePacket muxes one packet: it rolls the Cluster when the 5 MiB / 5000
// ms bound is reached, emits a SimpleBlock (or a BlockGroup+BlockDuration
// for subtitle tracks, which benefit from an explicit duration since they
// have no implicit "until next packet" semantics), and records a Cue point
// for video keyframes.
func (m *Muxer) WritePacket(pkt stream.Packet) error {
	if !m.headerWritten {
		return fmt.Errorf("mkv: WritePacket called before WriteHeader")
	}
	if pkt.StreamIndex < 0 || pkt.StreamIndex >= len(m.tracks) {
		return fmt.Errorf("mkv: packet references unknown stream index %d", pkt.StreamIndex)
	}
	info := m.streams[pkt.StreamIndex]

	if m.haveClusterStartMS && (m.clusterBytes >= maxClusterBytes || pkt.PTS-m.clusterStartMS >= maxClusterMillis) {
		if err := m.closeCluster(); err != nil {
			return err
		}
		if err := m.openCluster(pkt.PTS); err != nil {
			return err
		}
	}

	m.uidHasher.observePacket(pkt.Data)

	// The cluster-relative timecode is written as a 16-bit signed value;
	// enforcing the 5000 ms cluster bound above keeps every delta well
	// within int16 range rather than widening the field, preserving the
	// original format's narrow timecode width.
	rel := pkt.PTS - m.clusterStartMS
	if rel < -32768 || rel > 32767 {
		return fmt.Errorf("mkv: relative timecode %d out of int16 range for track %d", rel, pkt.StreamIndex+1)
	}

	before := m.w.Tell()
	if info.Type == stream.CodecSubtitle {
		if err := m.writeBlockGroup(pkt, int16(rel)); err != nil {
			return err
		}
	} else {
		if err := m.writeSimpleBlock(pkt, int16(rel)); err != nil {
			return err
		}
	}
	m.clusterBytes += int(m.w.Tell() - before)

	if info.Type == stream.CodecVideo && pkt.IsKeyframe {
		m.cues.add(uint64(pkt.PTS), uint64(pkt.StreamIndex+1), uint64(m.clusterStartAt))
	}

	if end := pkt.PTS + pkt.Duration; end > m.duration {
		m.duration = end
	}

	return nil
}

func (m *Muxer) writeSimpleBlock(pkt stream.Packet, rel int16) error {
	payload := blockPayload(pkt.StreamIndex+1, rel, pkt.IsKeyframe, pkt.Data)
	return m.w.WriteBinary(ebml.IDSimpleBlock, payload)
}

func (m *Muxer) writeBlockGroup(pkt stream.Packet, rel int16) error {
	if err := m.w.StartMaster(ebml.IDBlockGroup); err != nil {
		return err
	}
	payload := blockPayload(pkt.StreamIndex+1, rel, false, pkt.Data)
	if err := m.w.WriteBinary(ebml.IDBlock, payload); err != nil {
		return err
	}
	if pkt.Duration > 0 {
		if err := m.w.WriteUint(ebml.IDBlockDuration, uint64(pkt.Duration)); err != nil {
			return err
		}
	}
	return m.w.CloseMaster()
}

// blockPayload builds a SimpleBlock/Block content blob: track-number VINT,
// a 16-bit big-endian relative timecode, a flags byte (bit 0x80 set for
// keyframes on SimpleBlock; Block never sets it since keyframe status
// lives outside the Block for BlockGroup tracks), then raw frame data.
// Lacing is a Non-goal, so the flags byte's lacing bits are always 0.
func blockPayload(trackNumber int, rel int16, keyframe bool, data []byte) []byte {
	var buf []byte
	buf = encodeTrackNumberVInt(buf, trackNumber)
	buf = append(buf, byte(uint16(rel)>>8), byte(uint16(rel)))
	var flags byte
	if keyframe {
		flags = 0x80
	}
	buf = append(buf, flags)
	buf = append(buf, data...)
	return buf
}

// encodeTrackNumberVInt appends n as an EBML VINT (not an element ID), the
// form SimpleBlock/Block use for their leading track number.
func encodeTrackNumberVInt(dst []byte, n int) []byte {
	v := uint64(n)
	width := 1
	for (uint64(1) << uint(7*width)) <= v {
		width++
	}
	marker := uint64(1) << uint(7*width)
	full := v | marker
	for i := width - 1; i >= 0; i-- {
		dst = append(dst, byte(full>>(8*uint(i))))
	}
	return dst
}

// Close writes the trailer — Cues, the cluster SeekHead, the patched main
// SeekHead, the Duration rewrite, and the computed SegmentUID — then
// closes the Segment master. The Duration rewrite intentionally does not
// restore the writer's cursor before the SegmentUID rewrite that follows
// it; both rewrites seek independently, matching the original encoder's
// mkv_write_trailer order (duration is patched, then later writes fix the
// cursor up themselves rather than each hop restoring it defensively).
func (m *Muxer) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true

	if err := m.closeCluster(); err != nil {
		return err
	}

	if !m.cues.empty() {
		cuesPos := m.segmentRelative()
		if err := m.cues.write(m.w); err != nil {
			return err
		}
		m.mainSeekHead.add(ebml.IDCues, cuesPos)
	}

	clusterSeekHeadPos := m.segmentRelative()
	if len(m.clusterSeekHead.entries) > 0 {
		if err := m.clusterSeekHead.write(m.w); err != nil {
			return err
		}
		m.mainSeekHead.add(ebml.IDSeekHead, clusterSeekHeadPos)
	}

	m.mainSeekHead.add(ebml.IDInfo, uint64(m.infoPos))
	m.mainSeekHead.add(ebml.IDTracks, uint64(m.tracksPos))

	trailerEnd := m.w.Tell()

	if err := m.patchMainSeekHead(trailerEnd); err != nil {
		return err
	}

	if err := m.rewriteDuration(); err != nil {
		return err
	}

	// The Duration rewrite deliberately leaves the cursor where its own
	// write ended rather than restoring it immediately, matching the
	// original encoder's trailer ordering; the SegmentUID rewrite below
	// (or, if bit-exact output was requested and it's skipped) the seek
	// just after this comment is what actually puts the cursor back
	// before the Segment master is closed.
	if !m.opts.BitExact {
		if err := m.rewriteSegmentUID(); err != nil {
			return err
		}
	}
	if _, err := m.w.Seek(trailerEnd, io.SeekStart); err != nil {
		return err
	}

	return m.w.CloseMaster() // Segment
}

// patchMainSeekHead renders the accumulated main SeekHead entries into a
// scratch buffer, checks the result fits the reservation made back in
// reserveMainSeekHead, and writes it over the reserved placeholder,
// padding any leftover reserved space with Void. The writer's cursor is
// restored to the true end of the stream before returning; the Duration
// and SegmentUID rewrites that follow seek to their own reserved offsets.
func (m *Muxer) patchMainSeekHead(trueEnd int64) error {
	reserved := reservedSeekHeadSize(seekHeadMaxReservable)
	body, err := renderSeekHeadBody(m.mainSeekHead)
	if err != nil {
		return err
	}
	if len(body) > reserved {
		m.log.Warn().Int("needed", len(body)).Int("reserved", reserved).Msg("mkv: main seekhead exceeded its reservation, entries dropped")
		if _, err := m.w.Seek(trueEnd, io.SeekStart); err != nil {
			return err
		}
		return nil
	}

	if err := m.w.PatchReservedSize(m.mainSeekHeadPos, m.mainSeekHeadWidth, uint64(len(body))); err != nil {
		return err
	}
	if _, err := m.w.Seek(m.mainSeekHeadPos+int64(m.mainSeekHeadWidth), io.SeekStart); err != nil {
		return err
	}
	if err := m.w.WriteRaw(body); err != nil {
		return err
	}
	remaining := reserved - len(body)
	if remaining > 0 {
		if err := m.w.WriteVoid(remaining); err != nil {
			return err
		}
	}
	_, err = m.w.Seek(trueEnd, io.SeekStart)
	return err
}

// renderSeekHeadBody writes b's entries into an in-memory buffer so its
// exact size can be checked against the reservation before committing it
// to the real stream.
func renderSeekHeadBody(b *seekHeadBuilder) ([]byte, error) {
	buf := &memWriteSeeker{}
	w := ebml.NewWriter(buf)
	if err := b.writeEntries(w); err != nil {
		return nil, err
	}
	return buf.data, nil
}

// rewriteDuration patches the Duration element reserved in writeInfo with
// the running maximum of pkt.PTS+pkt.Duration observed across every
// packet WritePacket wrote, per spec.md §4.3 step 5.
func (m *Muxer) rewriteDuration() error {
	durationMS := m.duration
	if _, err := m.w.Seek(m.durationVoidAt, io.SeekStart); err != nil {
		return err
	}
	if err := m.w.WriteFloat(ebml.IDDuration, float64(durationMS)); err != nil {
		return err
	}
	remaining := durationVoidSize - 11 // Duration(id 0x4489, 2 bytes)+size(1)+8 bytes float = 11
	if remaining > 0 {
		if err := m.w.WriteVoid(remaining); err != nil {
			return err
		}
	}
	// Per the original's ordering quirk, the cursor is deliberately left
	// wherever the Duration+Void write ended rather than restored here;
	// the SegmentUID rewrite (or Segment close) that follows seeks to its
	// own absolute position regardless.
	return nil
}

func (m *Muxer) rewriteSegmentUID() error {
	uid := m.uidHasher.sum()
	if _, err := m.w.Seek(m.segmentUIDVoidAt, io.SeekStart); err != nil {
		return err
	}
	if err := m.w.WriteBinary(ebml.IDSegmentUID, uid[:]); err != nil {
		return err
	}
	remaining := segmentUIDVoidSize - 19 // SegmentUID(id 0x73A4, 2 bytes)+size(1)+16 bytes
	if remaining > 0 {
		if err := m.w.WriteVoid(remaining); err != nil {
			return err
		}
	}
	// Close restores the cursor to the true trailer end once every
	// trailer rewrite has run; this call leaves it wherever its own
	// write landed.
	return nil
}

// randomUID is kept for callers that want a fresh SegmentUID without
// waiting on the MD5 digest (e.g. a future non-bit-exact "assign eagerly"
// mode); unused by the default Close path but grounded on the same 16-byte
// UID shape as SegmentUID itself.
func randomUID() ([16]byte, error) {
	var uid [16]byte
	_, err := rand.Read(uid[:])
	return uid, err
}
