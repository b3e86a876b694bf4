package mxf

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvintar/avcontainer/stream"
)

func TestLinkStructuralMetadataVideoTrack(t *testing.T) {
	ctx := newMetadataContext()

	srcPackageUID := UID{0xAA}
	descriptor := &descriptor{
		instanceUID: UID{0x01},
		kind:        descriptorSingle,
		essenceUL:   essenceCodecULs[1].ul, // h264
		width:       1920,
		height:      1080,
	}
	ctx.descriptors[descriptor.instanceUID] = descriptor

	srcTrack := &mxfTrack{instanceUID: UID{0x02}, trackID: 1, trackNumber: [4]byte{0, 1, 1, 1}}
	ctx.tracks[srcTrack.instanceUID] = srcTrack

	srcPackage := &mxfPackage{
		instanceUID:   UID{0x03},
		kind:          packageSource,
		packageUID:    srcPackageUID,
		trackUIDs:     []UID{srcTrack.instanceUID},
		descriptorRef: descriptor.instanceUID,
	}
	ctx.packages[srcPackage.instanceUID] = srcPackage

	clip := &structuralComponent{
		instanceUID:     UID{0x04},
		kind:            componentSourceClip,
		sourcePackageID: srcPackageUID,
		sourceTrackID:   1,
		duration:        250,
		startPosition:   10,
	}
	ctx.components[clip.instanceUID] = clip

	seq := &sequence{
		instanceUID:    UID{0x05},
		dataDefinition: dataDefPicture,
		componentUIDs:  []UID{clip.instanceUID},
	}
	ctx.sequences[seq.instanceUID] = seq

	matTrack := &mxfTrack{instanceUID: UID{0x06}, trackID: 1, sequenceUID: seq.instanceUID, editRateNum: 25, editRateDen: 1}
	ctx.tracks[matTrack.instanceUID] = matTrack

	matPackage := &mxfPackage{
		instanceUID: UID{0x07},
		kind:        packageMaterial,
		trackUIDs:   []UID{matTrack.instanceUID},
	}
	ctx.packages[matPackage.instanceUID] = matPackage

	ctx.resolve()

	streams, err := linkStructuralMetadata(ctx, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, streams, 1)
	assert.Equal(t, stream.CodecVideo, streams[0].info.Type)
	assert.Equal(t, 1920, streams[0].info.Width)
	assert.Equal(t, "h264", streams[0].info.CodecName)
	assert.Equal(t, [4]byte{0, 1, 1, 1}, streams[0].trackNumber)
	assert.Equal(t, int64(250), streams[0].info.Duration)
	assert.Equal(t, int64(10), streams[0].info.StartTime)
	assert.Equal(t, 25.0, streams[0].info.TimeBase)
}

func TestLinkStructuralMetadataSkipsOrphanTrack(t *testing.T) {
	ctx := newMetadataContext()

	// A material track whose sequence never arrives in the header.
	matTrack := &mxfTrack{instanceUID: UID{0x01}, trackID: 9}
	ctx.tracks[matTrack.instanceUID] = matTrack
	matPackage := &mxfPackage{instanceUID: UID{0x02}, kind: packageMaterial, trackUIDs: []UID{matTrack.instanceUID}}
	ctx.packages[matPackage.instanceUID] = matPackage

	ctx.resolve()

	streams, err := linkStructuralMetadata(ctx, zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, streams)
}

func TestLinkStructuralMetadataMultipleDescriptorByLinkedTrackID(t *testing.T) {
	ctx := newMetadataContext()

	videoDesc := &descriptor{instanceUID: UID{0x10}, kind: descriptorSingle, linkedTrackID: 1, essenceUL: essenceCodecULs[0].ul, width: 720, height: 480}
	audioDesc := &descriptor{instanceUID: UID{0x11}, kind: descriptorSingle, linkedTrackID: 2, essenceUL: essenceCodecULs[3].ul, sampleRate: 48000, channels: 2, quantBits: 16}
	ctx.descriptors[videoDesc.instanceUID] = videoDesc
	ctx.descriptors[audioDesc.instanceUID] = audioDesc

	multi := &descriptor{instanceUID: UID{0x12}, kind: descriptorMultiple, subDescriptorUIDs: []UID{videoDesc.instanceUID, audioDesc.instanceUID}}
	ctx.descriptors[multi.instanceUID] = multi

	srcPackageUID := UID{0xBB}
	videoTrack := &mxfTrack{instanceUID: UID{0x20}, trackID: 1, trackNumber: [4]byte{0, 1, 1, 1}}
	audioTrack := &mxfTrack{instanceUID: UID{0x21}, trackID: 2, trackNumber: [4]byte{0, 2, 1, 1}}
	ctx.tracks[videoTrack.instanceUID] = videoTrack
	ctx.tracks[audioTrack.instanceUID] = audioTrack

	srcPackage := &mxfPackage{
		instanceUID:   UID{0x22},
		kind:          packageSource,
		packageUID:    srcPackageUID,
		trackUIDs:     []UID{videoTrack.instanceUID, audioTrack.instanceUID},
		descriptorRef: multi.instanceUID,
	}
	ctx.packages[srcPackage.instanceUID] = srcPackage

	videoClip := &structuralComponent{instanceUID: UID{0x30}, kind: componentSourceClip, sourcePackageID: srcPackageUID, sourceTrackID: 1}
	audioClip := &structuralComponent{instanceUID: UID{0x31}, kind: componentSourceClip, sourcePackageID: srcPackageUID, sourceTrackID: 2}
	ctx.components[videoClip.instanceUID] = videoClip
	ctx.components[audioClip.instanceUID] = audioClip

	videoSeq := &sequence{instanceUID: UID{0x40}, dataDefinition: dataDefPicture, componentUIDs: []UID{videoClip.instanceUID}}
	audioSeq := &sequence{instanceUID: UID{0x41}, dataDefinition: dataDefSound, componentUIDs: []UID{audioClip.instanceUID}}
	ctx.sequences[videoSeq.instanceUID] = videoSeq
	ctx.sequences[audioSeq.instanceUID] = audioSeq

	matVideoTrack := &mxfTrack{instanceUID: UID{0x50}, trackID: 1, sequenceUID: videoSeq.instanceUID}
	matAudioTrack := &mxfTrack{instanceUID: UID{0x51}, trackID: 2, sequenceUID: audioSeq.instanceUID}
	ctx.tracks[matVideoTrack.instanceUID] = matVideoTrack
	ctx.tracks[matAudioTrack.instanceUID] = matAudioTrack

	matPackage := &mxfPackage{instanceUID: UID{0x60}, kind: packageMaterial, trackUIDs: []UID{matVideoTrack.instanceUID, matAudioTrack.instanceUID}}
	ctx.packages[matPackage.instanceUID] = matPackage

	ctx.resolve()

	streams, err := linkStructuralMetadata(ctx, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, streams, 2)
	assert.Equal(t, stream.CodecVideo, streams[0].info.Type)
	assert.Equal(t, stream.CodecAudio, streams[1].info.Type)
	assert.Equal(t, 48000, streams[1].info.SampleRate)
}
