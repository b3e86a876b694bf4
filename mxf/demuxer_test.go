package mxf

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvintar/avcontainer/stream"
)

// writeKLV appends a short-form-length KLV packet (value must be < 127
// bytes, which every fixture set below is) to buf.
func writeKLV(buf *bytes.Buffer, key UID, value []byte) {
	buf.Write(key[:])
	buf.WriteByte(byte(len(value)))
	buf.Write(value)
}

func localSetValue(entries ...[]byte) []byte {
	var out []byte
	for _, e := range entries {
		out = append(out, e...)
	}
	return out
}

func uidListValue(uids ...UID) []byte {
	out := make([]byte, 8)
	binary.BigEndian.PutUint32(out[0:4], uint32(len(uids)))
	binary.BigEndian.PutUint32(out[4:8], 16)
	for _, u := range uids {
		out = append(out, u[:]...)
	}
	return out
}

func uint32Value(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

func TestOpenAndReadPacketEndToEnd(t *testing.T) {
	var buf bytes.Buffer

	var partitionKey UID
	copy(partitionKey[:], stream.MXFProbeKey[:])
	partitionKey[14] = 0x01
	writeKLV(&buf, partitionKey, nil)

	prefaceUID := UID{0x01}
	csUID := UID{0x02}
	matPkgUID := UID{0x03}
	srcPkgUID := UID{0x04}
	matTrackUID := UID{0x05}
	srcTrackUID := UID{0x06}
	seqUID := UID{0x07}
	clipUID := UID{0x08}
	descUID := UID{0x09}
	srcPackageIdentity := UID{0xFE}

	writeKLV(&buf, keyPreface, localSetValue(
		encodeLocalSetEntry(tagInstanceUID, 16, prefaceUID[:]),
		encodeLocalSetEntry(tagPrefaceContentStorage, 16, csUID[:]),
	))
	writeKLV(&buf, keyContentStorage, localSetValue(
		encodeLocalSetEntry(tagInstanceUID, 16, csUID[:]),
		encodeLocalSetEntry(tagContentStoragePackages, 40, uidListValue(matPkgUID, srcPkgUID)),
	))
	writeKLV(&buf, keyMaterialPackage, localSetValue(
		encodeLocalSetEntry(tagInstanceUID, 16, matPkgUID[:]),
		encodeLocalSetEntry(tagPackageTracks, 24, uidListValue(matTrackUID)),
	))
	writeKLV(&buf, keySourcePackage, localSetValue(
		encodeLocalSetEntry(tagInstanceUID, 16, srcPkgUID[:]),
		encodeLocalSetEntry(tagPackageUID, 16, srcPackageIdentity[:]),
		encodeLocalSetEntry(tagPackageTracks, 24, uidListValue(srcTrackUID)),
		encodeLocalSetEntry(tagSourcePackageDescriptor, 16, descUID[:]),
	))
	writeKLV(&buf, keyTrack, localSetValue(
		encodeLocalSetEntry(tagInstanceUID, 16, matTrackUID[:]),
		encodeLocalSetEntry(tagTrackID, 4, uint32Value(1)),
		encodeLocalSetEntry(tagTrackSequence, 16, seqUID[:]),
	))
	trackNumber := [4]byte{0, 1, 1, 1}
	writeKLV(&buf, keyTrack, localSetValue(
		encodeLocalSetEntry(tagInstanceUID, 16, srcTrackUID[:]),
		encodeLocalSetEntry(tagTrackID, 4, uint32Value(1)),
		encodeLocalSetEntry(tagTrackNumber, 4, trackNumber[:]),
	))
	writeKLV(&buf, keySequence, localSetValue(
		encodeLocalSetEntry(tagInstanceUID, 16, seqUID[:]),
		encodeLocalSetEntry(tagSequenceDataDefinition, 16, dataDefSound[:]),
		encodeLocalSetEntry(tagSequenceComponents, 24, uidListValue(clipUID)),
	))
	writeKLV(&buf, keySourceClip, localSetValue(
		encodeLocalSetEntry(tagInstanceUID, 16, clipUID[:]),
		encodeLocalSetEntry(tagSourceClipSourcePackageID, 16, srcPackageIdentity[:]),
		encodeLocalSetEntry(tagSourceClipSourceTrackID, 4, uint32Value(1)),
	))
	writeKLV(&buf, keyGenericSoundDescriptor, localSetValue(
		encodeLocalSetEntry(tagInstanceUID, 16, descUID[:]),
		encodeLocalSetEntry(tagDescriptorEssenceUL, 16, essenceCodecULs[3].ul[:]),
		encodeLocalSetEntry(tagDescriptorSampleRate, 8, append(uint32Value(48000), uint32Value(1)...)),
		encodeLocalSetEntry(tagDescriptorChannels, 2, []byte{0, 2}),
		encodeLocalSetEntry(tagDescriptorQuantBits, 4, uint32Value(16)),
	))

	essenceKey := UID{}
	copy(essenceKey[:12], essenceElementPrefix[:])
	copy(essenceKey[12:], trackNumber[:])
	writeKLV(&buf, essenceKey, []byte("audio-frame-1"))

	d, err := Open(&buf, DemuxerOptions{}, zerolog.Nop())
	require.NoError(t, err)
	defer d.Close()

	streams := d.Streams()
	require.Len(t, streams, 1)
	assert.Equal(t, stream.CodecAudio, streams[0].Type)
	assert.Equal(t, 48000, streams[0].SampleRate)
	assert.Equal(t, 2, streams[0].Channels)

	pkt, err := d.ReadPacket()
	require.NoError(t, err)
	assert.Equal(t, "audio-frame-1", string(pkt.Data))
	assert.Equal(t, 0, pkt.StreamIndex)

	_, err = d.ReadPacket()
	assert.ErrorIs(t, err, io.EOF)
}

func TestProbe(t *testing.T) {
	header := make([]byte, 20)
	copy(header, stream.MXFProbeKey[:])
	assert.True(t, Probe(header))

	assert.False(t, Probe(make([]byte, 20)))
	assert.False(t, Probe(make([]byte, 4)))
}
