package mxf

// The structural metadata object graph. Every set carries its own
// InstanceUID; cross-references (sourceClipPackageID, trackSequence,
// packageTracks, ...) are recorded as raw UIDs/IDs during decode and
// resolved to pointers in a post-parse pass (resolve.go), since a set can
// reference another set that arrives later in the header byte stream.

type preface struct {
	instanceUID    UID
	contentStorage UID // unresolved until resolve()
	storage        *contentStorage
}

type contentStorage struct {
	instanceUID UID
	packageUIDs []UID
	packages    []*mxfPackage
}

type packageKind int

const (
	packageMaterial packageKind = iota
	packageSource
)

type mxfPackage struct {
	instanceUID UID
	kind        packageKind
	packageUID  UID // the Package's own UMID-derived UID, referenced by SourceClip.sourcePackageID
	trackUIDs   []UID
	tracks      []*mxfTrack
	descriptorRef UID // SourcePackage only; 0 if absent
	descriptor    *descriptor
}

type mxfTrack struct {
	instanceUID  UID
	trackID      uint32
	trackNumber  [4]byte
	sequenceUID  UID
	sequence     *sequence

	// editRateNum/editRateDen are the track's edit units per second, from
	// EditRate (tag 0x4B01). Zero den means absent/unknown.
	editRateNum uint32
	editRateDen uint32
}

type componentKind int

const (
	componentSourceClip componentKind = iota
	componentTimecode
	componentUnknown
)

type structuralComponent struct {
	instanceUID UID
	kind        componentKind

	// SourceClip fields.
	sourcePackageID UID
	sourceTrackID   uint32

	// duration (tag 0x0202) and startPosition (tag 0x1201) are in the
	// enclosing Sequence/Track's edit-rate units.
	duration      int64
	startPosition int64
}

type sequence struct {
	instanceUID    UID
	dataDefinition UID
	componentUIDs  []UID
	components     []*structuralComponent
}

type descriptorKind int

const (
	descriptorSingle descriptorKind = iota
	descriptorMultiple
)

type descriptor struct {
	instanceUID UID
	kind        descriptorKind

	// Single-descriptor fields.
	linkedTrackID uint32 // only meaningful for sub-descriptors of a MultipleDescriptor
	essenceUL     UID
	width, height int
	sampleRate    float64
	channels      int
	quantBits     int

	// MultipleDescriptor fields.
	subDescriptorUIDs []UID
	subDescriptors    []*descriptor
}
