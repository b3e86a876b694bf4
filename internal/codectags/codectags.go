// Package codectags implements the small set of "external collaborator"
// helpers spec.md leaves at interface level: the Matroska native CodecID
// registry, the VFW/ACM fallback header emitters (BITMAPINFOHEADER and
// WAVEFORMATEX), the Xiph triple-header splitter, and AAC sample-rate-index
// lookup. None of these depend on the mkv package's writer; they are pure
// data-shaping helpers a higher-level format layer would otherwise own.
package codectags

import (
	"encoding/binary"
	"errors"
)

// NativeCodecID returns the Matroska native CodecID string for a codec
// name recognized by this module (case-sensitive short names, not FourCCs)
// and whether one exists. Names follow the table in matroskaenc.c's
// ff_mkv_codec_tags, restricted to the codecs this module's callers need.
func NativeCodecID(codec string) (string, bool) {
	id, ok := nativeCodecIDs[codec]
	return id, ok
}

var nativeCodecIDs = map[string]string{
	"h264":       "V_MPEG4/ISO/AVC",
	"hevc":       "V_MPEGH/ISO/HEVC",
	"vp8":        "V_VP8",
	"vp9":        "V_VP9",
	"av1":        "V_AV1",
	"theora":     "V_THEORA",
	"mpeg4":      "V_MPEG4/ISO/ASP",

	"aac":    "A_AAC",
	"vorbis": "A_VORBIS",
	"opus":   "A_OPUS",
	"flac":   "A_FLAC",
	"pcm_s16le": "A_PCM/INT/LIT",
	"pcm_s16be": "A_PCM/INT/BIG",
	"mp3":    "A_MPEG/L3",
	"ac3":    "A_AC3",

	"srt":  "S_TEXT/UTF8",
	"ssa":  "S_TEXT/SSA",
	"ass":  "S_TEXT/ASS",
}

// BITMAPINFOHEADER encodes the 40-byte Microsoft BITMAPINFOHEADER used as
// CodecPrivate for V_MS/VFW/FCC tracks, the video fallback format this
// module uses for codecs with no native Matroska CodecID.
type BITMAPINFOHEADER struct {
	Width, Height int32
	Compression   [4]byte // FourCC, e.g. "H264", "MJPG"
	BitCount      uint16
}

// Marshal serializes h into its 40-byte on-wire form, little-endian as
// Windows media headers always are.
func (h BITMAPINFOHEADER) Marshal() []byte {
	buf := make([]byte, 40)
	binary.LittleEndian.PutUint32(buf[0:4], 40) // biSize
	binary.LittleEndian.PutUint32(buf[4:8], uint32(h.Width))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(h.Height))
	binary.LittleEndian.PutUint16(buf[12:14], 1) // biPlanes
	binary.LittleEndian.PutUint16(buf[14:16], h.BitCount)
	copy(buf[16:20], h.Compression[:])
	// biSizeImage and the remaining reserved fields are left zero, as the
	// original encoder does for compressed (non-raster) formats.
	return buf
}

// WAVEFORMATEX encodes the Microsoft WAVEFORMATEX structure used as
// CodecPrivate for A_MS/ACM tracks.
type WAVEFORMATEX struct {
	FormatTag     uint16
	Channels      uint16
	SampleRate    uint32
	AvgBytesPerSec uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Extra         []byte
}

// Marshal serializes w into its on-wire form: the fixed 18-byte header
// followed by cbSize bytes of codec-specific extra data.
func (w WAVEFORMATEX) Marshal() []byte {
	buf := make([]byte, 18+len(w.Extra))
	binary.LittleEndian.PutUint16(buf[0:2], w.FormatTag)
	binary.LittleEndian.PutUint16(buf[2:4], w.Channels)
	binary.LittleEndian.PutUint32(buf[4:8], w.SampleRate)
	binary.LittleEndian.PutUint32(buf[8:12], w.AvgBytesPerSec)
	binary.LittleEndian.PutUint16(buf[12:14], w.BlockAlign)
	binary.LittleEndian.PutUint16(buf[14:16], w.BitsPerSample)
	binary.LittleEndian.PutUint16(buf[16:18], uint16(len(w.Extra)))
	copy(buf[18:], w.Extra)
	return buf
}

// ErrMalformedXiphHeaders is returned by SplitXiphHeaders when the input
// does not look like a valid two-length-prefixed Xiph header blob.
var ErrMalformedXiphHeaders = errors.New("codectags: malformed xiph header blob")

// SplitXiphHeaders splits a concatenated Vorbis/Theora codec-private blob
// (identification + comment + setup headers, the first two prefixed with a
// Xiph lacing-style byte count) into its three constituent headers, as
// put_xiph_codecpriv in the original encoder expects its caller to have
// already done. The count-encoding itself (a run of 0xFF bytes followed by
// a final remainder byte) follows Xiph lacing: a header's true length is
// the sum of all bytes in its run.
func SplitXiphHeaders(data []byte) (ident, comment, setup []byte, err error) {
	pos := 0
	readLen := func() (int, error) {
		n := 0
		for {
			if pos >= len(data) {
				return 0, ErrMalformedXiphHeaders
			}
			b := data[pos]
			pos++
			n += int(b)
			if b != 0xFF {
				return n, nil
			}
		}
	}
	l1, err := readLen()
	if err != nil {
		return nil, nil, nil, err
	}
	l2, err := readLen()
	if err != nil {
		return nil, nil, nil, err
	}
	if pos+l1+l2 > len(data) {
		return nil, nil, nil, ErrMalformedXiphHeaders
	}
	ident = data[pos : pos+l1]
	pos += l1
	comment = data[pos : pos+l2]
	pos += l2
	setup = data[pos:]
	return ident, comment, setup, nil
}

// aacSampleRates is the 12-entry AAC sampling-frequency-index table (MPEG-4
// Audio §1.6.3.4), in the get_aac_sample_rates order.
var aacSampleRates = [12]int{
	96000, 88200, 64000, 48000, 44100, 32000,
	24000, 22050, 16000, 12000, 11025, 8000,
}

// AACSampleRateIndex returns the 4-bit sampling-frequency-index for a given
// rate and whether the rate is one of the 12 standard AAC rates.
func AACSampleRateIndex(rate int) (int, bool) {
	for i, r := range aacSampleRates {
		if r == rate {
			return i, true
		}
	}
	return 0, false
}

// AACSampleRateForIndex is the inverse of AACSampleRateIndex: the Hz value
// a 4-bit sampling-frequency-index decodes to, and whether idx is in range.
func AACSampleRateForIndex(idx int) (int, bool) {
	if idx < 0 || idx >= len(aacSampleRates) {
		return 0, false
	}
	return aacSampleRates[idx], true
}

// AACExtradataSampleRate decodes the optional SBR (HE-AAC) output sample
// rate carried in a 5-byte AudioSpecificConfig extension, returning the
// index from aacSampleRates and true if present, mirroring
// get_aac_sample_rates' handling of extradata_size == 5.
func AACExtradataSampleRate(extradata []byte) (int, bool) {
	if len(extradata) != 5 {
		return 0, false
	}
	// The SBR extension's sampling-frequency-index is read from bits 6..3
	// of byte 4 (the last byte), i.e. (extradata[4]>>3)&0x0F, matching the
	// 5-byte case FFmpeg special-cases.
	idx := int(extradata[4]>>3) & 0x0F
	if idx >= len(aacSampleRates) {
		return 0, false
	}
	return idx, true
}
