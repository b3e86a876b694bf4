package mxf

// Data Definition labels (SMPTE 326M), used by Sequence to say what kind
// of essence its components carry, matching mxf_data_definition_uls.
var (
	dataDefPicture = UID{0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x01, 0x01, 0x03, 0x02, 0x02, 0x01, 0x00, 0x00, 0x00}
	dataDefSound   = UID{0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x01, 0x01, 0x03, 0x02, 0x02, 0x02, 0x00, 0x00, 0x00}
	dataDefData    = UID{0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x01, 0x01, 0x03, 0x02, 0x02, 0x03, 0x00, 0x00, 0x00}
)

func dataDefinitionType(def UID) streamType {
	switch {
	case def == dataDefPicture:
		return streamPicture
	case def == dataDefSound:
		return streamSound
	case def == dataDefData:
		return streamDataEssence
	default:
		return streamUnknown
	}
}

type streamType int

const (
	streamUnknown streamType = iota
	streamPicture
	streamSound
	streamDataEssence
)

// codecULEntry pairs an essence container/codec UL (matched by its first n
// bytes, the rest treated as don't-care the way mxf_codec_uls does for
// sub-variant bytes) with a short codec name this module's stream package
// uses elsewhere.
type codecULEntry struct {
	prefixLen int
	ul        UID
	codecName string
}

// essenceCodecULs mirrors a slice of ff_mxf_codec_uls: only the codecs
// this demuxer needs to recognize to build a usable stream.Info are
// listed, not FFmpeg's full table.
var essenceCodecULs = []codecULEntry{
	{prefixLen: 13, ul: UID{0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x01, 0x04, 0x01, 0x02, 0x02, 0x01}, codecName: "mpeg2video"},
	{prefixLen: 13, ul: UID{0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x01, 0x04, 0x01, 0x02, 0x02, 0x02}, codecName: "h264"},
	{prefixLen: 13, ul: UID{0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x01, 0x04, 0x01, 0x02, 0x01, 0x02}, codecName: "dvvideo"},
	{prefixLen: 13, ul: UID{0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x01, 0x04, 0x02, 0x02, 0x01, 0x7F}, codecName: "pcm_s16le"},
	{prefixLen: 13, ul: UID{0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x01, 0x04, 0x02, 0x02, 0x01, 0x01}, codecName: "pcm_s16le"},
	{prefixLen: 13, ul: UID{0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x01, 0x04, 0x02, 0x02, 0x02, 0x01}, codecName: "mp2"},
	{prefixLen: 13, ul: UID{0x06, 0x0E, 0x2B, 0x34, 0x04, 0x01, 0x01, 0x01, 0x04, 0x02, 0x02, 0x03, 0x01}, codecName: "ac3"},
}

// essenceCodecName returns the codec name whose UL prefix matches ul, or
// "" if none does, mirroring mxf_get_codec_id's linear scan.
func essenceCodecName(ul UID) string {
	for _, e := range essenceCodecULs {
		if matchPrefix(ul, e.ul, e.prefixLen) {
			return e.codecName
		}
	}
	return ""
}

func matchPrefix(a, b UID, n int) bool {
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// promotedPCMBitDepth maps a PCM sample size to one of three container
// depths (unknown or up to 16 bits, including 8-bit, reports 16; 20-bit
// and 24-bit packed audio both promote to 24-bit containers; anything
// wider promotes to 32-bit), matching the original demuxer's handling of non-byte-aligned
// AES3/WAV PCM descriptors.
func promotedPCMBitDepth(quantBits int) int {
	switch {
	case quantBits <= 0:
		return 16
	case quantBits <= 16:
		return 16
	case quantBits <= 24:
		return 24
	default:
		return 32
	}
}
