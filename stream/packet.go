// Package stream holds the data types shared between the mkv muxer and the
// mxf demuxer: the Packet and Info shapes spec.md leaves at interface
// level as external collaborators, and the small registered-format
// descriptor table spec.md's §6 calls for.
package stream

// CodecType classifies what kind of essence a stream carries.
type CodecType int

const (
	CodecUnknown CodecType = iota
	CodecVideo
	CodecAudio
	CodecSubtitle
	CodecData
)

// Info describes one elementary stream, independent of which container it
// came from or is going to.
type Info struct {
	Index      int
	Type       CodecType
	CodecName  string // short name, e.g. "h264", "aac", "pcm_s24le"
	Extradata  []byte // codec-private bytes (SPS/PPS, Xiph headers, AudioSpecificConfig, ...)

	// Video fields.
	Width, Height int

	// Audio fields.
	SampleRate int
	Channels   int
	BitDepth   int

	// Language is a 3-letter ISO 639-2 code, defaulting to "und".
	Language string

	// StartTime and Duration are in TimeBase units (edit-rate ticks for an
	// MXF-sourced stream); TimeBase is edit_rate.num/edit_rate.den, the
	// number of ticks per second. Zero TimeBase means unknown.
	StartTime int64
	Duration  int64
	TimeBase  float64
}

// Packet is one demultiplexed or to-be-multiplexed access unit. Timestamps
// handed to the Matroska muxer are in milliseconds, matching the Matroska
// TimecodeScale of 1,000,000 ns this module always writes. Packets from the
// MXF demuxer carry PTS/DTS as the running count of essence elements read
// for that stream, starting at 0.
type Packet struct {
	StreamIndex int
	Data        []byte
	PTS         int64
	DTS         int64
	Duration    int64
	IsKeyframe  bool
}
