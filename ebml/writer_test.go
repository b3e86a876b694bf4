package ebml

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seekBuffer adapts a bytes.Buffer into an io.WriteSeeker for tests, the
// same role nonSeekableReader/fakeSeeker play on the read side.
type seekBuffer struct {
	buf []byte
	pos int64
}

func (s *seekBuffer) Write(p []byte) (int, error) {
	end := s.pos + int64(len(p))
	if end > int64(len(s.buf)) {
		grown := make([]byte, end)
		copy(grown, s.buf)
		s.buf = grown
	}
	copy(s.buf[s.pos:end], p)
	s.pos = end
	return len(p), nil
}

func (s *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		s.pos = offset
	case io.SeekCurrent:
		s.pos += offset
	case io.SeekEnd:
		s.pos = int64(len(s.buf)) + offset
	}
	return s.pos, nil
}

func TestEncodeID(t *testing.T) {
	tests := []struct {
		name string
		id   uint32
		want []byte
	}{
		{"Void", IDVoid, []byte{0xEC}},
		{"SeekHead", IDSeekHead, []byte{0x11, 0x4D, 0x9B, 0x74}},
		{"TrackEntry", IDTrackEntry, []byte{0xAE}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, encodeID(nil, tt.id))
		})
	}
}

func TestSizeBytes(t *testing.T) {
	assert.Equal(t, 1, sizeBytes(0))
	assert.Equal(t, 1, sizeBytes(126))
	assert.Equal(t, 2, sizeBytes(127))
	assert.Equal(t, 2, sizeBytes(1<<14-2))
}

func TestWriteUintMinimalWidth(t *testing.T) {
	buf := &seekBuffer{}
	w := NewWriter(buf)
	require.NoError(t, w.WriteUint(IDTrackNumber, 1))
	// ID (1) + size (1, value 1) + payload (1 byte: 0x01)
	assert.Equal(t, []byte{0xD7, 0x81, 0x01}, buf.buf)
}

func TestWriteVoidExactLength(t *testing.T) {
	for _, n := range []int{2, 3, 10, 28, 151} {
		buf := &seekBuffer{}
		w := NewWriter(buf)
		require.NoError(t, w.WriteVoid(n))
		assert.Lenf(t, buf.buf, n, "void(%d) produced wrong length", n)
		assert.Equal(t, byte(IDVoid), buf.buf[0])
	}
}

func TestMasterSizePatchedOnClose(t *testing.T) {
	buf := &seekBuffer{}
	w := NewWriter(buf)
	require.NoError(t, w.StartMaster(IDTracks))
	require.NoError(t, w.WriteUint(IDTrackNumber, 1))
	require.NoError(t, w.WriteUint(IDTrackNumber, 2))
	require.NoError(t, w.CloseMaster())

	r := NewReaderForTest(buf.buf)
	gotID, size := r.readHeader(t)
	assert.Equal(t, IDTracks, gotID)
	assert.EqualValues(t, 6, size) // two 3-byte TrackNumber elements
}

func TestReserveAndPatchMasterSize(t *testing.T) {
	buf := &seekBuffer{}
	w := NewWriter(buf)
	sizePos, err := w.ReserveMaster(IDSeekHead, 2)
	require.NoError(t, err)
	require.NoError(t, w.WriteUint(IDTrackNumber, 1)) // unrelated content after reservation
	require.NoError(t, w.PatchReservedSize(sizePos, 2, 5))

	r := NewReaderForTest(buf.buf)
	gotID, size := r.readHeader(t)
	assert.Equal(t, IDSeekHead, gotID)
	assert.EqualValues(t, 5, size)
}
