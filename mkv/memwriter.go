package mkv

import "io"

// memWriteSeeker is a minimal in-memory io.WriteSeeker used only to render
// a SeekHead body off to the side before it is known to fit a reservation.
// writeEntries closes each Seek master through ebml.Writer.CloseMaster,
// which seeks back to patch the master's size and then returns to the end,
// so Seek is implemented fully.
type memWriteSeeker struct {
	data []byte
	pos  int64
}

func (m *memWriteSeeker) Write(p []byte) (int, error) {
	end := m.pos + int64(len(p))
	if end > int64(len(m.data)) {
		grown := make([]byte, end)
		copy(grown, m.data)
		m.data = grown
	}
	copy(m.data[m.pos:end], p)
	m.pos = end
	return len(p), nil
}

func (m *memWriteSeeker) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		m.pos = offset
	case io.SeekCurrent:
		m.pos += offset
	case io.SeekEnd:
		m.pos = int64(len(m.data)) + offset
	}
	return m.pos, nil
}
