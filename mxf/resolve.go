package mxf

// resolve turns every raw UID cross-reference recorded during decodeSet()
// into the actual pointer it names. It is a distinct, post-hoc pass over
// the fully-populated metadataContext rather than pointer-patching at
// insert time, because a header partition's metadata sets arrive in
// whatever order the writer emitted them in — a SourceClip's
// SourcePackage, for instance, routinely appears later in the byte stream
// than the SourceClip itself. This mirrors the open design choice
// spec.md's §9 leaves to the implementation; patching at insert time would
// require either two passes over the byte stream or a deferred-fixup list
// per reference, which is exactly what this pass already is, just run
// once at the end instead of interleaved with decoding.
func (ctx *metadataContext) resolve() {
	for _, cs := range ctx.contentStorages {
		cs.packages = cs.packages[:0]
		for _, uid := range cs.packageUIDs {
			if p, ok := ctx.packages[uid]; ok {
				cs.packages = append(cs.packages, p)
			}
		}
	}

	for _, p := range ctx.packages {
		p.tracks = p.tracks[:0]
		for _, uid := range p.trackUIDs {
			if t, ok := ctx.tracks[uid]; ok {
				p.tracks = append(p.tracks, t)
			}
		}
		if d, ok := ctx.descriptors[p.descriptorRef]; ok {
			p.descriptor = d
		}
	}

	for _, t := range ctx.tracks {
		if s, ok := ctx.sequences[t.sequenceUID]; ok {
			t.sequence = s
		}
	}

	for _, s := range ctx.sequences {
		s.components = s.components[:0]
		for _, uid := range s.componentUIDs {
			if c, ok := ctx.components[uid]; ok {
				s.components = append(s.components, c)
			}
		}
	}

	// A MultipleDescriptor's sub-descriptors are attached in the same
	// second pass, the fallback step the original needs because a
	// sub-descriptor set can itself be an ordinary generic descriptor
	// decoded with no idea it belongs to a MultipleDescriptor until this
	// point links it in by membership in the MultipleDescriptor's
	// sub-descriptor UID list (LinkedTrackID is matched later, by
	// selectDescriptor in link.go).
	for _, d := range ctx.descriptors {
		if d.kind != descriptorMultiple {
			continue
		}
		d.subDescriptors = d.subDescriptors[:0]
		for _, uid := range d.subDescriptorUIDs {
			if sub, ok := ctx.descriptors[uid]; ok {
				d.subDescriptors = append(d.subDescriptors, sub)
			}
		}
	}

	for _, p := range ctx.prefaces {
		if cs, ok := ctx.contentStorages[p.contentStorage]; ok {
			p.storage = cs
		}
	}
}
