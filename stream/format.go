package stream

import "fmt"

// Format describes one registered container format, the Go analogue of
// FFmpeg's AVOutputFormat/AVInputFormat registration structs spec.md's §6
// asks for.
type Format struct {
	Name      string
	MimeType  string
	Extension string

	// AllowedTypes restricts which stream CodecTypes this format accepts;
	// matroska_audio is video-less, everything else accepts any type.
	AllowedTypes []CodecType
}

// Accepts reports whether t is a stream type this format will mux.
func (f Format) Accepts(t CodecType) bool {
	if len(f.AllowedTypes) == 0 {
		return true
	}
	for _, a := range f.AllowedTypes {
		if a == t {
			return true
		}
	}
	return false
}

// Matroska is the general-purpose muxer: video, audio, and subtitle
// streams, ".mkv" extension.
var Matroska = Format{
	Name:      "matroska",
	MimeType:  "video/x-matroska",
	Extension: ".mkv",
}

// MatroskaAudio is the audio-only muxer variant; its codec-tag table is
// WAV-only in the original encoder, enforced here by rejecting non-audio
// streams up front rather than at CodecID lookup time.
var MatroskaAudio = Format{
	Name:         "matroska_audio",
	MimeType:     "audio/x-matroska",
	Extension:    ".mka",
	AllowedTypes: []CodecType{CodecAudio},
}

// MXFProbeKey is the 14-byte signature mxf.Demuxer's probe matches at
// offset 0 of a candidate file: the first 14 bytes of the well-known MXF
// header partition pack key, common to every header partition pack
// regardless of its status byte.
var MXFProbeKey = [14]byte{
	0x06, 0x0E, 0x2B, 0x34, 0x02, 0x05, 0x01, 0x01,
	0x0D, 0x01, 0x02, 0x01, 0x01, 0x02,
}

// MXF is the registered demuxer descriptor for SMPTE-377M OP1a files.
var MXF = Format{
	Name:      "mxf",
	MimeType:  "application/mxf",
	Extension: ".mxf",
}

// ErrUnsupportedStreamType is returned when a stream's CodecType is not
// accepted by the Format it is being added to (e.g. a video stream handed
// to MatroskaAudio).
type ErrUnsupportedStreamType struct {
	Format string
	Type   CodecType
}

func (e *ErrUnsupportedStreamType) Error() string {
	return fmt.Sprintf("stream: format %q does not accept stream type %v", e.Format, e.Type)
}
