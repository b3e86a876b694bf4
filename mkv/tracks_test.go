package mkv

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvintar/avcontainer/ebml"
	"github.com/kvintar/avcontainer/stream"
)

// findFloatElement walks the TrackEntry in raw element by element,
// descending into its Audio master, and decodes the first element with the
// given ID (idLen bytes wide) written via WriteFloat (1-byte size 0x88,
// 8-byte big-endian float). It follows element boundaries instead of
// searching for the ID bytes, since a short ID such as SamplingFrequency's
// 0xB5 also occurs inside longer IDs (TrackLanguage 0x22B59C,
// OutputSamplingFrequency 0x78B5).
func findFloatElement(t *testing.T, raw []byte, id uint32, idLen int) (float64, bool) {
	t.Helper()
	idBytes := make([]byte, idLen)
	for i := 0; i < idLen; i++ {
		idBytes[idLen-1-i] = byte(id >> (8 * uint(i)))
	}
	vintLen := func(b byte) int {
		n := 1
		for mask := byte(0x80); mask != 0 && b&mask == 0; mask >>= 1 {
			n++
		}
		return n
	}
	pos := 0
	for pos < len(raw) {
		idx := pos
		elemIDLen := vintLen(raw[pos])
		pos += elemIDLen
		sizeLen := vintLen(raw[pos])
		size := uint64(raw[pos]) &^ (uint64(0x80) >> uint(sizeLen-1))
		for i := 1; i < sizeLen; i++ {
			size = size<<8 | uint64(raw[pos+i])
		}
		if bytes.Equal(raw[idx:idx+elemIDLen], idBytes) {
			require.Equal(t, byte(0x88), raw[idx+idLen], "expected an 8-byte float size VINT")
			bits := binary.BigEndian.Uint64(raw[idx+idLen+1 : idx+idLen+9])
			return math.Float64frombits(bits), true
		}
		pos += sizeLen
		if elemIDLen == 1 && (raw[idx] == byte(ebml.IDTrackEntry) || raw[idx] == byte(ebml.IDAudio)) {
			continue // descend into the master's children
		}
		pos += int(size)
	}
	return 0, false
}

func TestTrackWriterAACBaseRateUsesIndexTableNoSBR(t *testing.T) {
	tw, err := newTrackWriter(1, stream.Info{
		Type: stream.CodecAudio, CodecName: "aac", SampleRate: 44100, Channels: 2,
		Extradata: []byte{0x12, 0x10}, // plain 2-byte AudioSpecificConfig, no SBR extension
	}, zerolog.Nop())
	require.NoError(t, err)

	buf := &seekBufferForTest{}
	w := ebml.NewWriter(buf)
	require.NoError(t, tw.write(w))

	rate, ok := findFloatElement(t, buf.data, ebml.IDSamplingFrequency, 1)
	require.True(t, ok)
	assert.Equal(t, float64(44100), rate)

	_, ok = findFloatElement(t, buf.data, ebml.IDOutputSamplingFreq, 2)
	assert.False(t, ok, "OutputSamplingFrequency must not be written for non-SBR AAC")
}

func TestTrackWriterAACSBRWritesDecodedOutputRate(t *testing.T) {
	tw, err := newTrackWriter(1, stream.Info{
		Type: stream.CodecAudio, CodecName: "aac", SampleRate: 24000, Channels: 2,
		Extradata: []byte{0x13, 0x08, 0x56, 0xE5, 0x18}, // 5-byte SBR extension, output index 3 -> 48000 Hz
	}, zerolog.Nop())
	require.NoError(t, err)

	buf := &seekBufferForTest{}
	w := ebml.NewWriter(buf)
	require.NoError(t, tw.write(w))

	rate, ok := findFloatElement(t, buf.data, ebml.IDSamplingFrequency, 1)
	require.True(t, ok)
	assert.Equal(t, float64(24000), rate)

	outRate, ok := findFloatElement(t, buf.data, ebml.IDOutputSamplingFreq, 2)
	require.True(t, ok)
	assert.Equal(t, float64(48000), outRate)
}

func TestNewTrackWriterNativeCodec(t *testing.T) {
	tw, err := newTrackWriter(1, stream.Info{Type: stream.CodecVideo, CodecName: "h264", Width: 1280, Height: 720}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "V_MPEG4/ISO/AVC", tw.codecID)
	assert.False(t, tw.vfwFallback)
}

func TestNewTrackWriterVFWFallback(t *testing.T) {
	tw, err := newTrackWriter(1, stream.Info{Type: stream.CodecVideo, CodecName: "mjpg", Width: 320, Height: 240}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "V_MS/VFW/FOURCC", tw.codecID)
	assert.True(t, tw.vfwFallback)
	assert.Len(t, tw.codecPrivate, 40)
}

func TestNewTrackWriterACMFallback(t *testing.T) {
	tw, err := newTrackWriter(1, stream.Info{Type: stream.CodecAudio, CodecName: "exotic_codec", SampleRate: 8000, Channels: 1, BitDepth: 16}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "A_MS/ACM", tw.codecID)
	assert.True(t, tw.vfwFallback)
}

func TestNewTrackWriterFLACPassesThroughStreamInfo(t *testing.T) {
	extradata := make([]byte, 34)
	tw, err := newTrackWriter(1, stream.Info{Type: stream.CodecAudio, CodecName: "flac", SampleRate: 44100, Channels: 2, Extradata: extradata}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, extradata, tw.codecPrivate)
}

func TestNewTrackWriterFLACRejectsShortStreamInfo(t *testing.T) {
	_, err := newTrackWriter(1, stream.Info{Type: stream.CodecAudio, CodecName: "flac", Extradata: make([]byte, 10)}, zerolog.Nop())
	assert.Error(t, err)
}

func TestBuildXiphCodecPrivate(t *testing.T) {
	ident := make([]byte, 30)
	comment := make([]byte, 10)
	setup := make([]byte, 5)
	out := buildXiphCodecPrivate(ident, comment, setup)
	assert.Equal(t, byte(2), out[0]) // 3 headers -> count byte is len-1
	assert.Equal(t, byte(30), out[1])
	assert.Equal(t, byte(10), out[2])
}
