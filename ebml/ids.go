// Package ebml implements the write side of the Extensible Binary Meta
// Language used by Matroska and WebM: variable-length element IDs and
// sizes, typed value encoders, Void padding, and master elements whose
// size is patched in after their children have been written.
//
// The package only writes EBML; nothing in this module reads it back.
package ebml

// Element IDs used by the mkv package. Names and values follow the
// Matroska/WebM element tree; the EBML header IDs are shared with any
// EBML-based format.
const (
	IDEBMLHeader           uint32 = 0x1A45DFA3
	IDEBMLVersion          uint32 = 0x4286
	IDEBMLReadVersion      uint32 = 0x42F7
	IDEBMLMaxIDLength      uint32 = 0x42F2
	IDEBMLMaxSizeLength    uint32 = 0x42F3
	IDDocType              uint32 = 0x4282
	IDDocTypeVersion       uint32 = 0x4287
	IDDocTypeReadVersion   uint32 = 0x4285

	IDVoid  uint32 = 0xEC
	IDCRC32 uint32 = 0xBF

	IDSegment uint32 = 0x18538067

	// Segment children.
	IDSeekHead uint32 = 0x114D9B74
	IDInfo     uint32 = 0x1549A966
	IDTracks   uint32 = 0x1654AE6B
	IDCluster  uint32 = 0x1F43B675
	IDCues     uint32 = 0x1C53BB6B

	// SeekHead children.
	IDSeek     uint32 = 0x4DBB
	IDSeekID   uint32 = 0x53AB
	IDSeekPos  uint32 = 0x53AC

	// Info children.
	IDSegmentUID      uint32 = 0x73A4
	IDSegmentFilename uint32 = 0x7384
	IDTimecodeScale   uint32 = 0x2AD7B1
	IDDuration        uint32 = 0x4489
	IDDateUTC         uint32 = 0x4461
	IDTitle           uint32 = 0x7BA9
	IDMuxingApp       uint32 = 0x4D80
	IDWritingApp      uint32 = 0x5741

	// Tracks children.
	IDTrackEntry            uint32 = 0xAE
	IDTrackNumber            uint32 = 0xD7
	IDTrackUID               uint32 = 0x73C5
	IDTrackType              uint32 = 0x83
	IDFlagEnabled            uint32 = 0xB9
	IDFlagDefault            uint32 = 0x88
	IDFlagLacing             uint32 = 0x9C
	IDCodecID                uint32 = 0x86
	IDCodecPrivate           uint32 = 0x63A2
	IDCodecName              uint32 = 0x258688
	IDTrackName              uint32 = 0x536E
	IDTrackLanguage          uint32 = 0x22B59C
	IDDefaultDuration        uint32 = 0x23E383
	IDVideo                  uint32 = 0xE0
	IDPixelWidth             uint32 = 0xB0
	IDPixelHeight            uint32 = 0xBA
	IDDisplayWidth           uint32 = 0x54B0
	IDDisplayHeight          uint32 = 0x54BA
	IDAudio                  uint32 = 0xE1
	IDSamplingFrequency      uint32 = 0xB5
	IDOutputSamplingFreq     uint32 = 0x78B5
	IDChannels               uint32 = 0x9F
	IDBitDepth               uint32 = 0x6264

	// Cluster children.
	IDTimecode     uint32 = 0xE7
	IDSimpleBlock  uint32 = 0xA3
	IDBlockGroup   uint32 = 0xA0
	IDBlock        uint32 = 0xA1
	IDBlockDuration uint32 = 0x9B
	IDReferenceBlock uint32 = 0xFB

	// Cues children.
	IDCuePoint          uint32 = 0xBB
	IDCueTime           uint32 = 0xB3
	IDCueTrackPositions uint32 = 0xB7
	IDCueTrack          uint32 = 0xF7
	IDCueClusterPosition uint32 = 0xF1
)
