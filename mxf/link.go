package mxf

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kvintar/avcontainer/stream"
)

// linkedStream is one output stream the linker produced, carrying the
// 4-byte track number essence-element keys will be matched against during
// essence reading, alongside the stream.Info a caller sees.
type linkedStream struct {
	info        stream.Info
	trackNumber [4]byte
}

// linkStructuralMetadata walks the resolved object graph from the single
// Material Package OP1a guarantees, through each track's Sequence to its
// first SourceClip component (Timecode components and any clip after the
// first are skipped — multiple source clips per sequence and timecode
// semantics are both Non-goals, matching gaps the original source itself
// never closed), to the matching SourcePackage/track/Descriptor, producing
// one linkedStream per successfully linked track.
func linkStructuralMetadata(ctx *metadataContext, log zerolog.Logger) ([]linkedStream, error) {
	material := findMaterialPackage(ctx)
	if material == nil {
		return nil, fmt.Errorf("mxf: no Material Package found in header metadata")
	}

	var streams []linkedStream
	for _, track := range material.tracks {
		if track == nil {
			continue
		}
		if track.sequence == nil {
			log.Info().Uint32("track_id", track.trackID).Msg("mxf: material track has no resolved sequence, skipping")
			continue
		}

		clip := firstSourceClip(track.sequence)
		if clip == nil {
			log.Info().Uint32("track_id", track.trackID).Msg("mxf: material track sequence has no source clip, skipping")
			continue
		}

		srcPkg, srcTrack := findSourceTrack(ctx, clip.sourcePackageID, clip.sourceTrackID)
		if srcPkg == nil || srcTrack == nil {
			log.Info().Uint32("track_id", track.trackID).Msg("mxf: material track's source clip target is missing, skipping")
			continue
		}

		desc := selectDescriptor(srcPkg.descriptor, srcTrack.trackID)
		if desc == nil {
			log.Info().Uint32("track_id", track.trackID).Msg("mxf: source package has no matching descriptor, skipping")
			continue
		}

		info := buildStreamInfo(len(streams), track.sequence.dataDefinition, desc, clip, track, log)
		streams = append(streams, linkedStream{info: info, trackNumber: srcTrack.trackNumber})
	}

	return streams, nil
}

func findMaterialPackage(ctx *metadataContext) *mxfPackage {
	for _, p := range ctx.packages {
		if p.kind == packageMaterial {
			return p
		}
	}
	return nil
}

// firstSourceClip returns the first SourceClip among seq's components,
// skipping any TimecodeComponent (and logging nothing for it — a leading
// timecode component is the common, expected case, not an anomaly).
func firstSourceClip(seq *sequence) *structuralComponent {
	for _, c := range seq.components {
		if c == nil {
			continue
		}
		if c.kind == componentSourceClip {
			return c
		}
	}
	return nil
}

func findSourceTrack(ctx *metadataContext, sourcePackageID UID, sourceTrackID uint32) (*mxfPackage, *mxfTrack) {
	for _, p := range ctx.packages {
		if p.kind != packageSource || p.packageUID != sourcePackageID {
			continue
		}
		for _, t := range p.tracks {
			if t != nil && t.trackID == sourceTrackID {
				return p, t
			}
		}
	}
	return nil, nil
}

// selectDescriptor returns the Descriptor that applies to a given source
// track: for a MultipleDescriptor, the sub-descriptor whose LinkedTrackID
// matches trackID, falling back to the lone descriptor otherwise, per
// spec.md §4.8's described fallback.
func selectDescriptor(d *descriptor, trackID uint32) *descriptor {
	if d == nil {
		return nil
	}
	if d.kind != descriptorMultiple {
		return d
	}
	for _, sub := range d.subDescriptors {
		if sub.linkedTrackID == trackID {
			return sub
		}
	}
	if len(d.subDescriptors) == 1 {
		return d.subDescriptors[0]
	}
	return nil
}

// buildStreamInfo fills a stream.Info from a track's selected Descriptor,
// plus the time metadata spec.md §4.8 derives from the linked SourceClip
// and the Material track's own edit rate: duration = clip.duration,
// start_time = clip.startPosition, time base = material_track.edit_rate.
func buildStreamInfo(index int, dataDefinition UID, d *descriptor, clip *structuralComponent, materialTrack *mxfTrack, log zerolog.Logger) stream.Info {
	info := stream.Info{Index: index}

	switch dataDefinitionType(dataDefinition) {
	case streamPicture:
		info.Type = stream.CodecVideo
		info.Width = d.width
		info.Height = d.height
	case streamSound:
		info.Type = stream.CodecAudio
		info.SampleRate = int(d.sampleRate)
		info.Channels = d.channels
		info.BitDepth = promotedPCMBitDepth(d.quantBits)
	default:
		info.Type = stream.CodecData
	}

	info.CodecName = essenceCodecName(d.essenceUL)
	if info.CodecName == "" {
		log.Debug().Hex("essence_ul", d.essenceUL[:]).Msg("mxf: unrecognized essence codec UL")
	}

	info.Duration = clip.duration
	info.StartTime = clip.startPosition
	if materialTrack.editRateDen != 0 {
		info.TimeBase = float64(materialTrack.editRateNum) / float64(materialTrack.editRateDen)
	}

	return info
}
