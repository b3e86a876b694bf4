package mkv

import (
	"crypto/md5"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegmentUIDHasherOnlyHashesFirstPacketPerCluster(t *testing.T) {
	h := newSegmentUIDHasher()
	h.onNewCluster()
	h.observePacket([]byte("first-packet"))
	h.observePacket([]byte("second-packet-ignored"))
	h.onNewCluster()
	h.observePacket([]byte("third-packet-new-cluster"))

	want := md5.New()
	_, _ = want.Write([]byte("first-packet"))
	_, _ = want.Write([]byte("third-packet-new-cluster"))
	var wantSum [16]byte
	copy(wantSum[:], want.Sum(nil))

	assert.Equal(t, wantSum, h.sum())
}

func TestSegmentUIDHasherTruncatesTo200Bytes(t *testing.T) {
	h := newSegmentUIDHasher()
	h.onNewCluster()
	long := make([]byte, 500)
	for i := range long {
		long[i] = byte(i)
	}
	h.observePacket(long)

	want := md5.New()
	_, _ = want.Write(long[:200])
	var wantSum [16]byte
	copy(wantSum[:], want.Sum(nil))

	assert.Equal(t, wantSum, h.sum())
}
