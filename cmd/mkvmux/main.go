// Command mkvmux muxes raw elementary streams described by a JSON manifest
// into a Matroska (.mkv/.mka) file, exercising the mkv package end to end
// the way a real encoder's output stage would.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/kvintar/avcontainer/mkv"
	"github.com/kvintar/avcontainer/stream"
)

// manifestStream is one entry of the manifest's "streams" array.
type manifestStream struct {
	Type          string `json:"type"` // "video", "audio", or "subtitle"
	Codec         string `json:"codec"`
	Width         int    `json:"width,omitempty"`
	Height        int    `json:"height,omitempty"`
	SampleRate    int    `json:"sample_rate,omitempty"`
	Channels      int    `json:"channels,omitempty"`
	BitDepth      int    `json:"bit_depth,omitempty"`
	Language      string `json:"language,omitempty"`
	ExtradataFile string `json:"extradata_file,omitempty"`
}

// manifestPacket is one entry of the manifest's "packets" array, in output
// order.
type manifestPacket struct {
	Stream   int    `json:"stream"`
	PTS      int64  `json:"pts"`
	DTS      int64  `json:"dts"`
	Duration int64  `json:"duration"`
	Keyframe bool   `json:"keyframe"`
	File     string `json:"file"`
}

type manifest struct {
	Streams []manifestStream `json:"streams"`
	Packets []manifestPacket `json:"packets"`
}

func codecType(t string) stream.CodecType {
	switch t {
	case "video":
		return stream.CodecVideo
	case "audio":
		return stream.CodecAudio
	case "subtitle":
		return stream.CodecSubtitle
	default:
		return stream.CodecUnknown
	}
}

func run() error {
	manifestPath := flag.String("manifest", "", "path to a JSON stream/packet manifest")
	outPath := flag.String("out", "", "output .mkv/.mka path")
	audioOnly := flag.Bool("audio-only", false, "write the matroska_audio variant instead of matroska")
	bitExact := flag.Bool("bit-exact", false, "omit the MD5-derived SegmentUID for reproducible output")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if *manifestPath == "" || *outPath == "" {
		return fmt.Errorf("mkvmux: -manifest and -out are required")
	}

	raw, err := os.ReadFile(*manifestPath)
	if err != nil {
		return fmt.Errorf("mkvmux: reading manifest: %w", err)
	}
	var man manifest
	if err := json.Unmarshal(raw, &man); err != nil {
		return fmt.Errorf("mkvmux: parsing manifest: %w", err)
	}

	out, err := os.Create(*outPath)
	if err != nil {
		return fmt.Errorf("mkvmux: creating output file: %w", err)
	}
	defer out.Close()

	format := stream.Matroska
	if *audioOnly {
		format = stream.MatroskaAudio
	}

	m := mkv.NewMuxer(out, format, mkv.MuxerOptions{BitExact: *bitExact}, log)

	for _, s := range man.Streams {
		info := stream.Info{
			Type:       codecType(s.Type),
			CodecName:  s.Codec,
			Width:      s.Width,
			Height:     s.Height,
			SampleRate: s.SampleRate,
			Channels:   s.Channels,
			BitDepth:   s.BitDepth,
			Language:   s.Language,
		}
		if s.ExtradataFile != "" {
			info.Extradata, err = os.ReadFile(s.ExtradataFile)
			if err != nil {
				return fmt.Errorf("mkvmux: reading extradata for stream %q: %w", s.Codec, err)
			}
		}
		if _, err := m.AddStream(info); err != nil {
			return fmt.Errorf("mkvmux: adding stream %q: %w", s.Codec, err)
		}
	}

	if err := m.WriteHeader(); err != nil {
		return fmt.Errorf("mkvmux: writing header: %w", err)
	}

	for _, p := range man.Packets {
		data, err := os.ReadFile(p.File)
		if err != nil {
			return fmt.Errorf("mkvmux: reading packet data %q: %w", p.File, err)
		}
		pkt := stream.Packet{
			StreamIndex: p.Stream,
			Data:        data,
			PTS:         p.PTS,
			DTS:         p.DTS,
			Duration:    p.Duration,
			IsKeyframe:  p.Keyframe,
		}
		if err := m.WritePacket(pkt); err != nil {
			return fmt.Errorf("mkvmux: writing packet on stream %d: %w", p.Stream, err)
		}
	}

	if err := m.Close(); err != nil {
		return fmt.Errorf("mkvmux: closing muxer: %w", err)
	}

	log.Info().Str("out", *outPath).Int("streams", len(man.Streams)).Int("packets", len(man.Packets)).Msg("mkvmux: wrote file")
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
