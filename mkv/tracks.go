package mkv

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kvintar/avcontainer/ebml"
	"github.com/kvintar/avcontainer/internal/codectags"
	"github.com/kvintar/avcontainer/stream"
)

// minFLACStreamInfo is the minimum extradata length this muxer accepts for
// a FLAC track: a bare STREAMINFO block, 34 bytes, with no "fLaC" marker or
// METADATA_BLOCK_HEADER expected (the encoder handing us extradata is
// responsible for stripping those, matching spec.md §4.4's "FLAC
// pass-through if extradata >= 34 bytes" rule).
const minFLACStreamInfo = 34

// trackTypeFor maps a stream.CodecType to the Matroska TrackType value
// (track_type in matroskaenc.c: 1=video, 2=audio, 0x11=subtitle).
func trackTypeFor(t stream.CodecType) uint64 {
	switch t {
	case stream.CodecVideo:
		return 1
	case stream.CodecAudio:
		return 2
	case stream.CodecSubtitle:
		return 0x11
	default:
		return 0x20 // "control"/generic, matching MATROSKA_TRACK_TYPE_METADATA
	}
}

// trackWriter holds everything the muxer needs to remember about one
// stream's Matroska track after Tracks has been written.
type trackWriter struct {
	info        stream.Info
	trackNumber uint64 // 1-based, Matroska TrackNumber
	codecID     string
	codecPrivate []byte
	vfwFallback bool // true if codecID is V_MS/VFW/FOURCC or A_MS/ACM
}

// newTrackWriter resolves a stream's codec into a Matroska CodecID and
// CodecPrivate blob, preferring a native Matroska CodecID and falling back
// to the VFW (video) or ACM (audio) wrapper the way mkv_write_tracks does
// for codecs with no native string, per spec.md §4.3.
func newTrackWriter(trackNumber uint64, info stream.Info, log zerolog.Logger) (*trackWriter, error) {
	tw := &trackWriter{info: info, trackNumber: trackNumber}

	if id, ok := codectags.NativeCodecID(info.CodecName); ok {
		tw.codecID = id
		priv, err := nativeCodecPrivate(info, log)
		if err != nil {
			return nil, err
		}
		tw.codecPrivate = priv
		return tw, nil
	}

	tw.vfwFallback = true
	switch info.Type {
	case stream.CodecVideo:
		tw.codecID = "V_MS/VFW/FOURCC"
		var fourcc [4]byte
		copy(fourcc[:], info.CodecName)
		tw.codecPrivate = codectags.BITMAPINFOHEADER{
			Width:       int32(info.Width),
			Height:      int32(info.Height),
			Compression: fourcc,
			BitCount:    24,
		}.Marshal()
	case stream.CodecAudio:
		tw.codecID = "A_MS/ACM"
		tw.codecPrivate = codectags.WAVEFORMATEX{
			FormatTag:      1, // WAVE_FORMAT_PCM; callers needing a real ACM tag set info.CodecName to a recognized native codec instead
			Channels:       uint16(info.Channels),
			SampleRate:     uint32(info.SampleRate),
			AvgBytesPerSec: uint32(info.SampleRate * info.Channels * info.BitDepth / 8),
			BlockAlign:     uint16(info.Channels * info.BitDepth / 8),
			BitsPerSample:  uint16(info.BitDepth),
			Extra:          info.Extradata,
		}.Marshal()
	default:
		return nil, fmt.Errorf("mkv: no VFW/ACM fallback for stream type %v", info.Type)
	}
	return tw, nil
}

// nativeCodecPrivate builds the CodecPrivate blob for codecs whose native
// Matroska CodecID still requires reshaping the incoming extradata: Xiph
// header splitting for Vorbis/Theora, verbatim STREAMINFO pass-through for
// FLAC, and nothing extra for codecs that pass extradata through as-is
// (AVC/HEVC/AV1/AAC/Opus).
func nativeCodecPrivate(info stream.Info, log zerolog.Logger) ([]byte, error) {
	switch info.CodecName {
	case "vorbis", "theora":
		ident, comment, setup, err := codectags.SplitXiphHeaders(info.Extradata)
		if err != nil {
			return nil, fmt.Errorf("mkv: splitting xiph headers for %s track: %w", info.CodecName, err)
		}
		return buildXiphCodecPrivate(ident, comment, setup), nil
	case "flac":
		if len(info.Extradata) < minFLACStreamInfo {
			return nil, fmt.Errorf("mkv: flac extradata too small for a STREAMINFO block: got %d bytes, want >= %d", len(info.Extradata), minFLACStreamInfo)
		}
		// put_flac_codecpriv logs this line at error level even on this,
		// its only success path; demoted to informational here per
		// spec.md's redesign note.
		log.Info().Int("streaminfo_bytes", len(info.Extradata)).Msg("mkv: wrote FLAC STREAMINFO codec private (only one packet)")
		return info.Extradata, nil
	default:
		return info.Extradata, nil
	}
}

// buildXiphCodecPrivate re-assembles three Xiph headers into Matroska's
// CodecPrivate form: a header count byte, lacing-style sizes for all but
// the last header, then the headers back to back — matching
// put_xiph_codecpriv.
func buildXiphCodecPrivate(headers ...[]byte) []byte {
	var out []byte
	out = append(out, byte(len(headers)-1))
	for _, h := range headers[:len(headers)-1] {
		n := len(h)
		for n >= 255 {
			out = append(out, 0xFF)
			n -= 255
		}
		out = append(out, byte(n))
	}
	for _, h := range headers {
		out = append(out, h...)
	}
	return out
}

// write emits this track's TrackEntry master.
func (tw *trackWriter) write(w *ebml.Writer) error {
	if err := w.StartMaster(ebml.IDTrackEntry); err != nil {
		return err
	}
	if err := w.WriteUint(ebml.IDTrackNumber, tw.trackNumber); err != nil {
		return err
	}
	if err := w.WriteUint(ebml.IDTrackUID, tw.trackNumber); err != nil {
		return err
	}
	if err := w.WriteUint(ebml.IDTrackType, trackTypeFor(tw.info.Type)); err != nil {
		return err
	}
	if err := w.WriteUint(ebml.IDFlagEnabled, 1); err != nil {
		return err
	}
	if err := w.WriteUint(ebml.IDFlagDefault, 1); err != nil {
		return err
	}
	// Lacing is a muxer Non-goal; every track declares it unsupported.
	if err := w.WriteUint(ebml.IDFlagLacing, 0); err != nil {
		return err
	}
	lang := tw.info.Language
	if lang == "" {
		lang = "und"
	}
	if err := w.WriteString(ebml.IDTrackLanguage, lang); err != nil {
		return err
	}
	if err := w.WriteString(ebml.IDCodecID, tw.codecID); err != nil {
		return err
	}
	if len(tw.codecPrivate) > 0 {
		if err := w.WriteBinary(ebml.IDCodecPrivate, tw.codecPrivate); err != nil {
			return err
		}
	}

	switch tw.info.Type {
	case stream.CodecVideo:
		if err := w.StartMaster(ebml.IDVideo); err != nil {
			return err
		}
		if err := w.WriteUint(ebml.IDPixelWidth, uint64(tw.info.Width)); err != nil {
			return err
		}
		if err := w.WriteUint(ebml.IDPixelHeight, uint64(tw.info.Height)); err != nil {
			return err
		}
		if err := w.CloseMaster(); err != nil {
			return err
		}
	case stream.CodecAudio:
		if err := w.StartMaster(ebml.IDAudio); err != nil {
			return err
		}
		rate := float64(tw.info.SampleRate)
		if tw.info.CodecName == "aac" {
			if idx, ok := codectags.AACSampleRateIndex(tw.info.SampleRate); ok {
				if hz, ok := codectags.AACSampleRateForIndex(idx); ok {
					rate = float64(hz)
				}
			}
			// SBR: only the 5-byte AudioSpecificConfig extension carries an
			// explicit output sample-rate index; non-SBR AAC never writes
			// OutputSamplingFrequency, per get_aac_sample_rates' handling of
			// extradata_size == 5.
			if outIdx, ok := codectags.AACExtradataSampleRate(tw.info.Extradata); ok {
				if outHz, ok := codectags.AACSampleRateForIndex(outIdx); ok {
					if err := w.WriteFloat(ebml.IDOutputSamplingFreq, float64(outHz)); err != nil {
						return err
					}
				}
			}
		}
		if err := w.WriteFloat(ebml.IDSamplingFrequency, rate); err != nil {
			return err
		}
		if err := w.WriteUint(ebml.IDChannels, uint64(tw.info.Channels)); err != nil {
			return err
		}
		if tw.info.BitDepth > 0 {
			if err := w.WriteUint(ebml.IDBitDepth, uint64(tw.info.BitDepth)); err != nil {
				return err
			}
		}
		if err := w.CloseMaster(); err != nil {
			return err
		}
	}

	return w.CloseMaster()
}
