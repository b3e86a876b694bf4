package mxf

// metadataContext accumulates every decoded metadata set by InstanceUID,
// keyed per set type exactly as mxf_read_header populates its MXFContext's
// parallel arrays. Sets are only linked into pointers by resolve(), after
// the whole header partition has been read, since a set can reference
// another set that hasn't arrived yet in the byte stream.
type metadataContext struct {
	prefaces        []*preface
	contentStorages map[UID]*contentStorage
	packages        map[UID]*mxfPackage
	tracks          map[UID]*mxfTrack
	sequences       map[UID]*sequence
	components      map[UID]*structuralComponent
	descriptors     map[UID]*descriptor
}

func newMetadataContext() *metadataContext {
	return &metadataContext{
		contentStorages: make(map[UID]*contentStorage),
		packages:        make(map[UID]*mxfPackage),
		tracks:          make(map[UID]*mxfTrack),
		sequences:       make(map[UID]*sequence),
		components:      make(map[UID]*structuralComponent),
		descriptors:     make(map[UID]*descriptor),
	}
}

// decodeSet dispatches one metadata-set KLV (key, value) to the matching
// set parser, mirroring the key-by-key if/else chain in mxf_read_header.
// An unrecognized key is silently ignored: the format allows (and real
// files carry) metadata sets this demuxer has no use for.
func (ctx *metadataContext) decodeSet(key UID, value []byte) {
	set := decodeLocalSet(value)
	switch {
	case key == keyPreface:
		ctx.decodePreface(set)
	case key == keyContentStorage:
		ctx.decodeContentStorage(set)
	case key == keyMaterialPackage:
		ctx.decodePackage(set, packageMaterial)
	case key == keySourcePackage:
		ctx.decodePackage(set, packageSource)
	case key == keyTrack:
		ctx.decodeTrack(set)
	case key == keySequence:
		ctx.decodeSequence(set)
	case key == keySourceClip:
		ctx.decodeSourceClip(set)
	case key == keyTimecodeComponent:
		ctx.decodeTimecode(set)
	case key == keyMultipleDescriptor:
		ctx.decodeMultipleDescriptor(set)
	case key == keyCDCIDescriptor, key == keyGenericSoundDescriptor:
		ctx.decodeGenericDescriptor(set)
	}
}

func (ctx *metadataContext) decodePreface(set localSet) {
	ctx.prefaces = append(ctx.prefaces, &preface{
		instanceUID:    set.uid(tagInstanceUID),
		contentStorage: set.uid(tagPrefaceContentStorage),
	})
}

func (ctx *metadataContext) decodeContentStorage(set localSet) {
	cs := &contentStorage{
		instanceUID: set.uid(tagInstanceUID),
		packageUIDs: set.uidList(tagContentStoragePackages),
	}
	ctx.contentStorages[cs.instanceUID] = cs
}

func (ctx *metadataContext) decodePackage(set localSet, kind packageKind) {
	p := &mxfPackage{
		instanceUID:   set.uid(tagInstanceUID),
		kind:          kind,
		packageUID:    set.uid(tagPackageUID),
		trackUIDs:     set.uidList(tagPackageTracks),
		descriptorRef: set.uid(tagSourcePackageDescriptor),
	}
	ctx.packages[p.instanceUID] = p
}

func (ctx *metadataContext) decodeTrack(set localSet) {
	t := &mxfTrack{
		instanceUID: set.uid(tagInstanceUID),
		trackID:     set.uint32(tagTrackID),
		sequenceUID: set.uid(tagTrackSequence),
	}
	t.editRateNum, t.editRateDen = set.editRate(tagTrackEditRate)
	raw := set[tagTrackNumber]
	copy(t.trackNumber[:], raw)
	ctx.tracks[t.instanceUID] = t
}

func (ctx *metadataContext) decodeSequence(set localSet) {
	s := &sequence{
		instanceUID:    set.uid(tagInstanceUID),
		dataDefinition: set.uid(tagSequenceDataDefinition),
		componentUIDs:  set.uidList(tagSequenceComponents),
	}
	ctx.sequences[s.instanceUID] = s
}

func (ctx *metadataContext) decodeSourceClip(set localSet) {
	c := &structuralComponent{
		instanceUID:     set.uid(tagInstanceUID),
		kind:            componentSourceClip,
		sourcePackageID: set.uid(tagSourceClipSourcePackageID),
		sourceTrackID:   set.uint32(tagSourceClipSourceTrackID),
		duration:        set.int64(tagComponentDuration),
		startPosition:   set.int64(tagComponentStartPosition),
	}
	ctx.components[c.instanceUID] = c
}

// decodeTimecode records a TimecodeComponent's InstanceUID only, enough
// for the linker to recognize and skip it; timecode semantics are a
// Non-goal, matching the original's own lack of TimecodeComponent support
// (mxf.c's structural-metadata walk also only special-cases SourceClip).
func (ctx *metadataContext) decodeTimecode(set localSet) {
	c := &structuralComponent{
		instanceUID: set.uid(tagInstanceUID),
		kind:        componentTimecode,
	}
	ctx.components[c.instanceUID] = c
}

func (ctx *metadataContext) decodeMultipleDescriptor(set localSet) {
	d := &descriptor{
		instanceUID:       set.uid(tagInstanceUID),
		kind:              descriptorMultiple,
		subDescriptorUIDs: set.uidList(tagMultipleDescriptorSubDescriptors),
	}
	ctx.descriptors[d.instanceUID] = d
}

func (ctx *metadataContext) decodeGenericDescriptor(set localSet) {
	d := &descriptor{
		instanceUID:   set.uid(tagInstanceUID),
		kind:          descriptorSingle,
		linkedTrackID: set.uint32(tagDescriptorLinkedTrackID),
		essenceUL:     set.uid(tagDescriptorEssenceUL),
		width:         int(set.uint32(tagDescriptorWidth)),
		height:        int(set.uint32(tagDescriptorHeight)),
		sampleRate:    set.rational(tagDescriptorSampleRate),
		channels:      int(set.uint16(tagDescriptorChannels)),
		quantBits:     int(set.uint32(tagDescriptorQuantBits)),
	}
	// A descriptor with an explicit LinkedTrackID came from a
	// MultipleDescriptor's sub-descriptor list, but it's still decoded
	// into the flat descriptors map here and attached to its parent only
	// during resolve(), the same two-step attachment the original's
	// mxf_read_generic_descriptor / mxf_read_multi_descriptor pairing
	// relies on.
	ctx.descriptors[d.instanceUID] = d
}
