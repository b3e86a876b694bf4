package mxf

// Well-known 16-byte metadata-set keys this demuxer dispatches on,
// following the mxf_metadata_*_key constants in the original C source
// (each an SMPTE-registered universal label whose final byte identifies
// the set type).
var (
	keyPreface               = UID{0x06, 0x0E, 0x2B, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0D, 0x01, 0x01, 0x01, 0x01, 0x01, 0x2F, 0x00}
	keyContentStorage        = UID{0x06, 0x0E, 0x2B, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0D, 0x01, 0x01, 0x01, 0x01, 0x01, 0x18, 0x00}
	keyMaterialPackage       = UID{0x06, 0x0E, 0x2B, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0D, 0x01, 0x01, 0x01, 0x01, 0x01, 0x36, 0x00}
	keySourcePackage         = UID{0x06, 0x0E, 0x2B, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0D, 0x01, 0x01, 0x01, 0x01, 0x01, 0x37, 0x00}
	keyTrack                 = UID{0x06, 0x0E, 0x2B, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0D, 0x01, 0x01, 0x01, 0x01, 0x01, 0x3B, 0x00}
	keySequence              = UID{0x06, 0x0E, 0x2B, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0D, 0x01, 0x01, 0x01, 0x01, 0x01, 0x0F, 0x00}
	keyTimecodeComponent     = UID{0x06, 0x0E, 0x2B, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0D, 0x01, 0x01, 0x01, 0x01, 0x01, 0x14, 0x00}
	keySourceClip            = UID{0x06, 0x0E, 0x2B, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0D, 0x01, 0x01, 0x01, 0x01, 0x01, 0x11, 0x00}
	keyMultipleDescriptor    = UID{0x06, 0x0E, 0x2B, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0D, 0x01, 0x01, 0x01, 0x01, 0x01, 0x44, 0x00}
	keyCDCIDescriptor        = UID{0x06, 0x0E, 0x2B, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0D, 0x01, 0x01, 0x01, 0x01, 0x01, 0x28, 0x00}
	keyGenericSoundDescriptor = UID{0x06, 0x0E, 0x2B, 0x34, 0x02, 0x53, 0x01, 0x01, 0x0D, 0x01, 0x01, 0x01, 0x01, 0x01, 0x42, 0x00}

	// essenceElementPrefix matches the first 12 bytes of any generic
	// essence-container element key; the last 4 bytes are the element's
	// track number, matched against each stream's recorded track number
	// during essence reading.
	essenceElementPrefix = [12]byte{
		0x06, 0x0E, 0x2B, 0x34, 0x01, 0x02, 0x01, 0x01, 0x0D, 0x01, 0x03, 0x01,
	}
)

func hasPrefix14(key UID, prefix [14]byte) bool {
	for i, b := range prefix {
		if key[i] != b {
			return false
		}
	}
	return true
}

func hasPrefix12(key UID, prefix [12]byte) bool {
	for i, b := range prefix {
		if key[i] != b {
			return false
		}
	}
	return true
}

// Local tags shared across local-set decoding, per the original's per-type
// tag tables (0x3C0A is InstanceUID everywhere; the rest are set-specific
// but numerically stable across sets in practice, matching the original's
// flat switch/case per set type).
const (
	tagInstanceUID uint16 = 0x3C0A

	// Preface.
	tagPrefaceContentStorage uint16 = 0x3B03

	// ContentStorage.
	tagContentStoragePackages uint16 = 0x1901

	// Package (Material/Source).
	tagPackageUID   uint16 = 0x4401
	tagPackageTracks uint16 = 0x4403

	// Track.
	tagTrackID       uint16 = 0x4801
	tagTrackNumber   uint16 = 0x4804
	tagTrackSequence uint16 = 0x4803
	tagTrackEditRate uint16 = 0x4B01

	// Sequence.
	tagSequenceDataDefinition uint16 = 0x0201
	tagSequenceComponents     uint16 = 0x1001

	// StructuralComponent (SourceClip).
	tagSourceClipSourcePackageID uint16 = 0x1101
	tagSourceClipSourceTrackID   uint16 = 0x1102
	tagComponentDuration         uint16 = 0x0202
	tagComponentStartPosition    uint16 = 0x1201

	// SourcePackage.
	tagSourcePackageDescriptor uint16 = 0x4701

	// MultipleDescriptor.
	tagMultipleDescriptorSubDescriptors uint16 = 0x3F01

	// Generic descriptor fields this demuxer surfaces.
	tagDescriptorLinkedTrackID uint16 = 0x3006
	tagDescriptorSampleRate    uint16 = 0x3001
	tagDescriptorWidth         uint16 = 0x3203
	tagDescriptorHeight        uint16 = 0x3202
	tagDescriptorChannels      uint16 = 0x3D07
	tagDescriptorQuantBits     uint16 = 0x3D01
	tagDescriptorEssenceUL     uint16 = 0x3004
)
