package mkv

import "github.com/kvintar/avcontainer/ebml"

// cuePosition is one track's position within a cluster at a given pts.
type cuePosition struct {
	track          uint64
	clusterOffset  uint64 // segment-relative
}

// cuePoint is a single timestamp entry in the Cues index, potentially
// covering several tracks when their keyframes coincide exactly, matching
// mkv_add_cuepoint's coalescing of contiguous equal-pts entries into one
// CuePoint with multiple CueTrackPositions children.
type cuePoint struct {
	pts       uint64
	positions []cuePosition
}

// cuesBuilder accumulates cue points in pts order, coalescing an add() call
// whose pts matches the most recently added cue point into that cue point's
// positions rather than starting a new one.
type cuesBuilder struct {
	points []cuePoint
}

func newCuesBuilder() *cuesBuilder {
	return &cuesBuilder{}
}

// add records a cue entry for track at pts/clusterOffset, coalescing into
// the previous cue point when its pts is identical.
func (b *cuesBuilder) add(pts, track, clusterOffset uint64) {
	if n := len(b.points); n > 0 && b.points[n-1].pts == pts {
		b.points[n-1].positions = append(b.points[n-1].positions, cuePosition{track: track, clusterOffset: clusterOffset})
		return
	}
	b.points = append(b.points, cuePoint{
		pts:       pts,
		positions: []cuePosition{{track: track, clusterOffset: clusterOffset}},
	})
}

func (b *cuesBuilder) empty() bool {
	return len(b.points) == 0
}

// write emits the Cues master, one CuePoint per accumulated entry.
func (b *cuesBuilder) write(w *ebml.Writer) error {
	if err := w.StartMaster(ebml.IDCues); err != nil {
		return err
	}
	for _, cp := range b.points {
		if err := w.StartMaster(ebml.IDCuePoint); err != nil {
			return err
		}
		if err := w.WriteUint(ebml.IDCueTime, cp.pts); err != nil {
			return err
		}
		for _, pos := range cp.positions {
			if err := w.StartMaster(ebml.IDCueTrackPositions); err != nil {
				return err
			}
			if err := w.WriteUint(ebml.IDCueTrack, pos.track); err != nil {
				return err
			}
			if err := w.WriteUint(ebml.IDCueClusterPosition, pos.clusterOffset); err != nil {
				return err
			}
			if err := w.CloseMaster(); err != nil {
				return err
			}
		}
		if err := w.CloseMaster(); err != nil {
			return err
		}
	}
	return w.CloseMaster()
}
